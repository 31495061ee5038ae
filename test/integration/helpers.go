package integration

import (
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"VoteBridge/client"
	"VoteBridge/internal/api"
	"VoteBridge/internal/attest"
	"VoteBridge/internal/collector"
	"VoteBridge/internal/ledger"
	"VoteBridge/internal/network"
	"VoteBridge/internal/origin"
	"VoteBridge/internal/registry"
	"VoteBridge/internal/storage"
	"VoteBridge/internal/verifier"
)

const testOrigin = "0x030000000000000000000000000000000000424242"

// bridge is an in-process bridge node served over httptest.
type bridge struct {
	ledger   *ledger.Ledger
	verifier *verifier.Verifier
	client   *client.Client
	events   chan verifier.VotingCompleted
}

// attestors is a set of loopback attestor nodes sharing one origin source.
type attestors struct {
	signers []*attest.Signer
	addrs   []string
}

// mustOrigin parses testOrigin.
func mustOrigin(t *testing.T) attest.OriginID {
	t.Helper()

	o, err := attest.ParseOriginID(testOrigin)
	if err != nil {
		t.Fatalf("parse origin: %v", err)
	}

	return o
}

// testSigners returns n signers with keys 1..n.
func testSigners(t *testing.T, n int) []*attest.Signer {
	t.Helper()

	signers := make([]*attest.Signer, n)
	for i := range signers {
		key, err := crypto.HexToECDSA(fmt.Sprintf("%064x", i+1))
		if err != nil {
			t.Fatalf("load key: %v", err)
		}
		signers[i] = attest.NewSigner(key)
	}

	return signers
}

// registryOf builds a registry in signer order.
func registryOf(t *testing.T, signers []*attest.Signer) *registry.Registry {
	t.Helper()

	addrs := make([]common.Address, len(signers))
	for i, s := range signers {
		addrs[i] = s.Address()
	}

	reg, err := registry.New(len(signers), addrs)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	return reg
}

// startBridge starts a bridge bound to testOrigin with the given registry.
func startBridge(t *testing.T, reg *registry.Registry, opts ...verifier.Option) *bridge {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "db"), storage.Options{SyncWrites: true})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	l, err := ledger.Open(db)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}

	v, err := verifier.New(mustOrigin(t), reg, l, opts...)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	b := &bridge{ledger: l, verifier: v, events: make(chan verifier.VotingCompleted, 16)}
	v.OnCompleted(func(e verifier.VotingCompleted) { b.events <- e })

	srv := httptest.NewServer(api.New("", v, l).Handler())
	t.Cleanup(srv.Close)

	b.client = client.New(srv.URL)

	return b
}

// startAttestors starts one QUIC attestor per signer, all reading source.
func startAttestors(t *testing.T, signers []*attest.Signer, source origin.Source) *attestors {
	t.Helper()

	a := &attestors{signers: signers}
	o := mustOrigin(t)

	for _, signer := range signers {
		node, err := network.NewNode(network.Config{ListenAddr: "127.0.0.1:0"})
		if err != nil {
			t.Fatalf("create attestor: %v", err)
		}

		node.OnRequest(collector.NewHandler(o, source, signer).HandleRequest)

		if err := node.Start(); err != nil {
			t.Fatalf("start attestor: %v", err)
		}
		t.Cleanup(func() { node.Close() })

		a.addrs = append(a.addrs, node.Addr())
	}

	return a
}

// newCollector creates a relayer-side collector for the attestors.
func newCollector(t *testing.T, reg *registry.Registry, addrs []string) *collector.Collector {
	t.Helper()

	node, err := network.NewNode(network.Config{})
	if err != nil {
		t.Fatalf("create relayer node: %v", err)
	}

	col := collector.New(node, reg, mustOrigin(t), addrs)
	t.Cleanup(func() {
		col.Close()
		node.Close()
	})

	return col
}
