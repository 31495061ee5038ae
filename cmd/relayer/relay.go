package main

import (
	"context"
	"fmt"

	"VoteBridge/client"
	"VoteBridge/internal/attest"
	"VoteBridge/internal/collector"
	"VoteBridge/internal/logger"
	"VoteBridge/internal/network"
	"VoteBridge/internal/origin"
	"VoteBridge/internal/registry"
)

// relay reads the result from the origin state, obtains its proof and
// submits both to the bridge.
func relay(cfg *Config) (client.Accepted, error) {
	state, err := origin.ReadState(cfg.StatePath)
	if err != nil {
		return client.Accepted{}, err
	}

	record, ok := state.Find(uint32(cfg.VoteID))
	if !ok {
		return client.Accepted{}, fmt.Errorf("vote %d: %w", cfg.VoteID, origin.ErrUnknownVote)
	}

	bridge := client.New(cfg.BridgeAddress)

	var proof []attest.Signature
	if len(cfg.Attestors) > 0 {
		proof, err = collectProof(cfg, bridge, record.Result())
	} else {
		proof, err = record.Signatures()
	}
	if err != nil {
		return client.Accepted{}, fmt.Errorf("obtain proof for vote %d:\n%w", cfg.VoteID, err)
	}

	logger.Info("submitting result", "voteId", record.VoteID, "signatures", len(proof))

	return bridge.Publish(record.Result(), proof)
}

// collectProof asks the attestors to sign the result.
func collectProof(cfg *Config, bridge *client.Client, result attest.VoteResult) ([]attest.Signature, error) {
	o, err := resolveOrigin(cfg, bridge)
	if err != nil {
		return nil, err
	}

	reg, err := resolveRegistry(cfg, bridge)
	if err != nil {
		return nil, err
	}

	node, err := network.NewNode(network.Config{})
	if err != nil {
		return nil, fmt.Errorf("init network:\n%w", err)
	}
	defer node.Close()

	col := collector.New(node, reg, o, cfg.Attestors)
	defer col.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	return col.Collect(ctx, result)
}

// resolveOrigin uses --origin or asks the bridge.
func resolveOrigin(cfg *Config, bridge *client.Client) (attest.OriginID, error) {
	if cfg.Origin != "" {
		return attest.ParseOriginID(cfg.Origin)
	}

	return bridge.Origin()
}

// resolveRegistry uses --signers or asks the bridge.
func resolveRegistry(cfg *Config, bridge *client.Client) (*registry.Registry, error) {
	if len(cfg.Signers) == 0 {
		signers, err := bridge.Signers()
		if err != nil {
			return nil, err
		}

		return registry.New(len(signers), signers)
	}

	addrs, err := registry.ParseAddresses(cfg.Signers)
	if err != nil {
		return nil, err
	}

	quorum := cfg.Quorum
	if quorum == 0 {
		quorum = len(addrs)
	}

	return registry.New(quorum, addrs)
}
