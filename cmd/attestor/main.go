package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"VoteBridge/internal/logger"
)

func main() {
	cfg := parseFlags()
	logger.Init(cfg.LogLevel)

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point with error handling.
func run(cfg *Config) error {
	key, err := loadOrGenerateKey(cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("load key:\n%w", err)
	}
	cfg.PrivateKey = key

	if cfg.PrintIdentity {
		return printIdentity(cfg)
	}

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	node, err := NewNode(cfg)
	if err != nil {
		return fmt.Errorf("create node:\n%w", err)
	}

	logger.Info("starting attestor",
		"signer", node.signer.Address().Hex(),
		"origin", node.origin.Hex(),
		"quic", cfg.QUICAddress,
		"state", cfg.StatePath,
	)

	return node.Run()
}

// printIdentity writes the signer address and public key for bridge configuration.
func printIdentity(cfg *Config) error {
	node := &Node{cfg: cfg}
	node.initSigner()

	fmt.Printf("address: %s\n", node.signer.Address().Hex())
	fmt.Printf("pubkey:  %s\n", base64.StdEncoding.EncodeToString(node.signer.CompressedPublicKey()))

	return nil
}
