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

// run relays one result and prints where the bridge stored it.
func run(cfg *Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	accepted, err := relay(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("vote %d accepted at index %d (%d for, %d against)\n",
		accepted.VoteID, accepted.Index, accepted.VotesFor, accepted.VotesAgainst)

	return nil
}
