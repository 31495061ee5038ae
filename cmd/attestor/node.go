package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/collector"
	"VoteBridge/internal/logger"
	"VoteBridge/internal/network"
	"VoteBridge/internal/origin"
)

// Node is a running attestor: it signs results its origin state reports.
type Node struct {
	cfg *Config

	origin  attest.OriginID
	signer  *attest.Signer
	source  *origin.StateFile
	network *network.Node

	stop chan struct{}
}

// NewNode loads the state file and prepares the QUIC endpoint.
func NewNode(cfg *Config) (*Node, error) {
	n := &Node{cfg: cfg, stop: make(chan struct{})}

	o, err := attest.ParseOriginID(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin:\n%w", err)
	}
	n.origin = o

	n.initSigner()

	if err := n.initSource(); err != nil {
		return nil, err
	}

	if err := n.initNetwork(); err != nil {
		return nil, err
	}

	return n, nil
}

// initSigner wraps the configured key.
func (n *Node) initSigner() {
	n.signer = attest.NewSigner(n.cfg.PrivateKey)
}

// initSource opens the origin state file.
func (n *Node) initSource() error {
	src, err := origin.OpenStateFile(n.cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state file:\n%w", err)
	}

	n.source = src

	return nil
}

// initNetwork creates the QUIC endpoint and registers the sign handler.
func (n *Node) initNetwork() error {
	node, err := network.NewNode(network.Config{ListenAddr: n.cfg.QUICAddress})
	if err != nil {
		return fmt.Errorf("init network:\n%w", err)
	}

	node.OnRequest(collector.NewHandler(n.origin, n.source, n.signer).HandleRequest)
	n.network = node

	return nil
}

// Run starts serving and blocks until a shutdown signal. SIGHUP rereads the state file.
func (n *Node) Run() error {
	if err := n.network.Start(); err != nil {
		return fmt.Errorf("start network:\n%w", err)
	}

	logger.Info("attestor listening", "addr", n.network.Addr())

	if n.cfg.ReloadInterval > 0 {
		go n.reloadLoop(n.cfg.ReloadInterval)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			n.reload()
			continue
		}

		logger.Info("shutting down", "signal", sig.String())
		break
	}

	return n.Close()
}

// reloadLoop rereads the state file every interval.
func (n *Node) reloadLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.reload()
		case <-n.stop:
			return
		}
	}
}

// reload rereads the state file, keeping the previous state on error.
func (n *Node) reload() {
	if err := n.source.Reload(); err != nil {
		logger.Warn("state reload failed", "path", n.cfg.StatePath, "error", err)
	}
}

// Close stops the reload loop and the network.
func (n *Node) Close() error {
	close(n.stop)

	return n.network.Close()
}
