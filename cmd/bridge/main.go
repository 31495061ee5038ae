package main

import (
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
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	node, err := NewNode(cfg)
	if err != nil {
		return fmt.Errorf("create node:\n%w", err)
	}

	if cfg.ExportPath != "" {
		defer node.Close()
		return node.exportSnapshot(cfg.ExportPath)
	}

	printStartupInfo(cfg, node)

	return node.Run()
}

// printStartupInfo displays the bridge configuration at startup.
func printStartupInfo(cfg *Config, n *Node) {
	logger.Info("starting vote bridge",
		"origin", n.origin.Hex(),
		"http", cfg.HTTPAddress,
		"data", cfg.DataPath,
		"quorum", cfg.Quorum,
		"rejectReplays", cfg.RejectReplays,
		"results", n.ledger.Len(),
	)

	for i, addr := range n.registry.Signers() {
		logger.Info("registered signer", "index", i, "address", addr.Hex())
	}
}
