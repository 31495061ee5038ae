package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"VoteBridge/internal/api"
	"VoteBridge/internal/attest"
	"VoteBridge/internal/ledger"
	"VoteBridge/internal/logger"
	"VoteBridge/internal/registry"
	"VoteBridge/internal/storage"
	"VoteBridge/internal/verifier"
)

// Node is a running bridge: results log, signer registry, verifier and API.
type Node struct {
	cfg *Config

	origin   attest.OriginID
	storage  *storage.Storage
	ledger   *ledger.Ledger
	registry *registry.Registry
	verifier *verifier.Verifier
	api      *api.Server
}

// NewNode opens storage and builds the verifier. Nothing listens until Run.
func NewNode(cfg *Config) (*Node, error) {
	n := &Node{cfg: cfg}

	origin, err := attest.ParseOriginID(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin:\n%w", err)
	}
	n.origin = origin

	if err := n.initRegistry(); err != nil {
		return nil, err
	}

	if err := n.initStorage(); err != nil {
		return nil, err
	}

	if err := n.initLedger(); err != nil {
		n.Close()
		return nil, err
	}

	if err := n.initVerifier(); err != nil {
		n.Close()
		return nil, err
	}

	if err := n.checkLedger(); err != nil {
		n.Close()
		return nil, err
	}

	return n, nil
}

// initRegistry builds the signer registry from addresses or public keys.
func (n *Node) initRegistry() error {
	var (
		reg *registry.Registry
		err error
	)

	if len(n.cfg.Signers) > 0 {
		parsed, perr := registry.ParseAddresses(n.cfg.Signers)
		if perr != nil {
			return fmt.Errorf("parse signers:\n%w", perr)
		}

		reg, err = registry.New(n.cfg.Quorum, parsed)
	} else {
		enc, perr := registry.ParseEncoding(n.cfg.PubkeyEncoding)
		if perr != nil {
			return perr
		}

		reg, err = registry.FromPublicKeys(n.cfg.Quorum, n.cfg.SignerPubkeys, enc)
	}

	if err != nil {
		return fmt.Errorf("init registry:\n%w", err)
	}

	n.registry = reg

	return nil
}

// initStorage opens the Pebble store under the data directory.
func (n *Node) initStorage() error {
	if err := os.MkdirAll(n.cfg.DataPath, 0755); err != nil {
		return fmt.Errorf("create data directory:\n%w", err)
	}

	db, err := storage.Open(filepath.Join(n.cfg.DataPath, "db"), storage.Options{SyncWrites: n.cfg.SyncWrites})
	if err != nil {
		return fmt.Errorf("init storage:\n%w", err)
	}

	n.storage = db

	return nil
}

// initLedger opens the results log.
func (n *Node) initLedger() error {
	l, err := ledger.Open(n.storage)
	if err != nil {
		return fmt.Errorf("open results log:\n%w", err)
	}

	n.ledger = l

	return nil
}

// initVerifier builds the quorum verifier over the results log.
func (n *Node) initVerifier() error {
	var opts []verifier.Option
	if n.cfg.RejectReplays {
		opts = append(opts, verifier.WithRejectReplays())
	}

	v, err := verifier.New(n.origin, n.registry, n.ledger, opts...)
	if err != nil {
		return fmt.Errorf("init verifier:\n%w", err)
	}

	n.verifier = v

	return nil
}

// checkLedger restores a snapshot when configured, then re-verifies every
// entry against this bridge's origin and signer registry.
func (n *Node) checkLedger() error {
	if n.cfg.ImportPath != "" {
		snapshot, err := os.ReadFile(n.cfg.ImportPath)
		if err != nil {
			return fmt.Errorf("read snapshot:\n%w", err)
		}

		if err := n.ledger.Import(snapshot, n.verifier.CheckEntry); err != nil {
			return fmt.Errorf("import snapshot:\n%w", err)
		}

		logger.Info("results log restored", "path", n.cfg.ImportPath, "results", n.ledger.Len())
	}

	if err := n.ledger.Verify(n.verifier.CheckEntry); err != nil {
		return fmt.Errorf("results log is corrupt:\n%w", err)
	}

	return nil
}

// exportSnapshot writes the results log to path.
func (n *Node) exportSnapshot(path string) error {
	snapshot, err := n.ledger.Export()
	if err != nil {
		return fmt.Errorf("export snapshot:\n%w", err)
	}

	if err := os.WriteFile(path, snapshot, 0644); err != nil {
		return fmt.Errorf("write snapshot:\n%w", err)
	}

	logger.Info("snapshot written", "path", path, "results", n.ledger.Len(), "bytes", len(snapshot))

	return nil
}

// Run starts the HTTP API and blocks until a shutdown signal.
func (n *Node) Run() error {
	n.api = api.New(n.cfg.HTTPAddress, n.verifier, n.ledger)
	if err := n.api.Start(); err != nil {
		n.Close()
		return fmt.Errorf("start api:\n%w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	return n.Close()
}

// Close shuts down all node components.
func (n *Node) Close() error {
	if n.api != nil {
		n.api.Stop()
	}

	if n.storage != nil {
		return n.storage.Close()
	}

	return nil
}
