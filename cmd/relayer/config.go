package main

import (
	"flag"
	"fmt"
	"math"
	"strings"
	"time"
)

// Config holds the relayer configuration.
type Config struct {
	// BridgeAddress is the bridge HTTP API address.
	BridgeAddress string

	// StatePath is the origin contract state file.
	StatePath string

	// VoteID is the vote to relay.
	VoteID uint64

	// Attestors are QUIC addresses; when set the proof is collected from them
	// instead of read from the state file.
	Attestors []string

	// Origin overrides the origin reported by the bridge.
	Origin string

	// Signers overrides the signer registry reported by the bridge.
	Signers []string

	// Quorum is the expected registry size when Signers is set.
	Quorum int

	// Timeout bounds proof collection.
	Timeout time.Duration

	// LogLevel is the minimum log level.
	LogLevel string
}

// parseFlags parses command-line flags into Config.
func parseFlags() *Config {
	cfg := &Config{}

	var attestors, signers string

	flag.StringVar(&cfg.BridgeAddress, "bridge", "127.0.0.1:8080", "Bridge HTTP API address")
	flag.StringVar(&cfg.StatePath, "state", "", "Origin contract state file (JSON)")
	flag.Uint64Var(&cfg.VoteID, "vote", 0, "Vote id to relay")
	flag.StringVar(&attestors, "attestors", "", "Comma-separated attestor QUIC addresses")
	flag.StringVar(&cfg.Origin, "origin", "", "Origin contract id (default: ask the bridge)")
	flag.StringVar(&signers, "signers", "", "Comma-separated signer addresses (default: ask the bridge)")
	flag.IntVar(&cfg.Quorum, "quorum", 0, "Registry size when --signers is set (default: number of signers)")
	flag.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "Proof collection timeout")
	flag.StringVar(&cfg.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.Attestors = splitList(attestors)
	cfg.Signers = splitList(signers)

	return cfg
}

// validate checks required flags.
func (c *Config) validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("--state is required")
	}

	if c.VoteID == 0 || c.VoteID > math.MaxUint32 {
		return fmt.Errorf("--vote must be a vote id between 1 and 2^32-1")
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
