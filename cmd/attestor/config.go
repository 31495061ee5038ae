package main

import (
	"crypto/ecdsa"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Config holds the attestor configuration.
type Config struct {
	// KeyPath is the path to the hex secp256k1 key file.
	KeyPath string

	// PrivateKey is the attestation signing key.
	PrivateKey *ecdsa.PrivateKey

	// QUICAddress is the attestation listen address.
	QUICAddress string

	// Origin is the 21-byte origin contract id in hex.
	Origin string

	// StatePath is the origin contract state file.
	StatePath string

	// ReloadInterval rereads the state file periodically; zero disables it.
	ReloadInterval time.Duration

	// PrintIdentity prints the signer address and public key and exits.
	PrintIdentity bool

	// LogLevel is the minimum log level.
	LogLevel string
}

// parseFlags parses command-line flags into Config.
func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.KeyPath, "key", "", "secp256k1 private key path (generates new if missing)")
	flag.StringVar(&cfg.QUICAddress, "quic", ":9100", "QUIC attestation address")
	flag.StringVar(&cfg.Origin, "origin", "", "Origin contract id (21 bytes hex)")
	flag.StringVar(&cfg.StatePath, "state", "", "Origin contract state file (JSON)")
	flag.DurationVar(&cfg.ReloadInterval, "reload", 5*time.Second, "State file reload interval (0 disables)")
	flag.BoolVar(&cfg.PrintIdentity, "print-identity", false, "Print signer address and public key, then exit")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	return cfg
}

// validate checks required flags.
func (c *Config) validate() error {
	if c.Origin == "" {
		return fmt.Errorf("--origin is required")
	}

	if c.StatePath == "" {
		return fmt.Errorf("--state is required")
	}

	return nil
}

// loadOrGenerateKey loads the private key from file or generates a new one.
func loadOrGenerateKey(keyPath string) (*ecdsa.PrivateKey, error) {
	if keyPath == "" {
		return generateNewKey()
	}

	key, err := crypto.LoadECDSA(keyPath)
	if errors.Is(err, os.ErrNotExist) {
		return generateAndSaveKey(keyPath)
	}

	if err != nil {
		return nil, fmt.Errorf("read key file:\n%w", err)
	}

	return key, nil
}

// generateNewKey creates a new secp256k1 private key.
func generateNewKey() (*ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key:\n%w", err)
	}

	return key, nil
}

// generateAndSaveKey creates a new key and saves it to the given path.
func generateAndSaveKey(path string) (*ecdsa.PrivateKey, error) {
	key, err := generateNewKey()
	if err != nil {
		return nil, err
	}

	if err := crypto.SaveECDSA(path, key); err != nil {
		return nil, fmt.Errorf("save key to %s:\n%w", path, err)
	}

	return key, nil
}
