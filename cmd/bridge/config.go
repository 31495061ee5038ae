package main

import (
	"flag"
	"fmt"
	"strings"

	"VoteBridge/internal/registry"
)

// Config holds the bridge configuration.
type Config struct {
	// DataPath is the directory for persistent storage.
	DataPath string

	// HTTPAddress is the HTTP API listen address.
	HTTPAddress string

	// Origin is the 21-byte origin contract id in hex.
	Origin string

	// Signers are the registered signer addresses, in proof order.
	Signers []string

	// SignerPubkeys are encoded secp256k1 public keys, used when Signers is empty.
	SignerPubkeys []string

	// PubkeyEncoding is the encoding of SignerPubkeys: base64 or hex.
	PubkeyEncoding string

	// Quorum is the required number of signers.
	Quorum int

	// RejectReplays refuses results whose vote id was already accepted.
	RejectReplays bool

	// SyncWrites fsyncs every accepted result before answering.
	SyncWrites bool

	// ImportPath restores the results log from a snapshot before starting. The log must be empty.
	ImportPath string

	// ExportPath writes a snapshot of the results log and exits.
	ExportPath string

	// LogLevel is the minimum log level.
	LogLevel string
}

// parseFlags parses command-line flags into Config.
func parseFlags() *Config {
	cfg := &Config{}

	var signers, pubkeys string

	flag.StringVar(&cfg.DataPath, "data", "./data", "Data directory path")
	flag.StringVar(&cfg.HTTPAddress, "http", ":8080", "HTTP API address")
	flag.StringVar(&cfg.Origin, "origin", "", "Origin contract id (21 bytes hex)")
	flag.StringVar(&signers, "signers", "", "Comma-separated signer addresses, in proof order")
	flag.StringVar(&pubkeys, "signer-pubkeys", "", "Comma-separated signer public keys, in proof order")
	flag.StringVar(&cfg.PubkeyEncoding, "pubkey-encoding", "base64", "Encoding of --signer-pubkeys (base64 or hex)")
	flag.IntVar(&cfg.Quorum, "quorum", registry.DefaultSize, "Number of registered signers")
	flag.BoolVar(&cfg.RejectReplays, "reject-replays", false, "Reject results whose vote id was already accepted")
	flag.BoolVar(&cfg.SyncWrites, "sync-writes", false, "Fsync every accepted result")
	flag.StringVar(&cfg.ImportPath, "import", "", "Restore the results log from a snapshot file into an empty data directory")
	flag.StringVar(&cfg.ExportPath, "export", "", "Write a snapshot of the results log to this file and exit")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.Signers = splitList(signers)
	cfg.SignerPubkeys = splitList(pubkeys)

	return cfg
}

// validate checks flag combinations.
func (c *Config) validate() error {
	if c.Origin == "" {
		return fmt.Errorf("--origin is required")
	}

	if len(c.Signers) > 0 && len(c.SignerPubkeys) > 0 {
		return fmt.Errorf("use either --signers or --signer-pubkeys, not both")
	}

	if len(c.Signers) == 0 && len(c.SignerPubkeys) == 0 {
		return fmt.Errorf("--signers or --signer-pubkeys is required")
	}

	if c.ImportPath != "" && c.ExportPath != "" {
		return fmt.Errorf("--import and --export are exclusive")
	}

	return nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string

	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
