package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/logger"
	"VoteBridge/internal/network"
	"VoteBridge/internal/registry"
)

// defaultTimeout bounds one collection when the context has no deadline.
const defaultTimeout = 10 * time.Second

// ErrIncomplete is returned when a registered signer did not attest.
var ErrIncomplete = errors.New("incomplete proof")

// Attestation is the outcome of one attestor request.
type Attestation struct {
	Address   string           // Address is the attestor's network address
	Signer    common.Address   // Signer is the recovered signer, zero on failure
	Signature attest.Signature // Signature is the returned signature
	Err       error            // Err is set when the attestor did not sign
}

// Collector gathers one signature per registered signer from attestor nodes
// and orders them by registry position.
type Collector struct {
	node      *network.Node      // node dials the attestors
	registry  *registry.Registry // registry fixes the proof order
	origin    attest.OriginID    // origin binds every digest
	attestors []string           // attestors are the QUIC addresses to query

	peers   map[string]*network.Peer // peers caches open connections by address
	peersMu sync.Mutex
}

// New creates a Collector querying the given attestor addresses.
func New(node *network.Node, reg *registry.Registry, o attest.OriginID, attestors []string) *Collector {
	return &Collector{
		node:      node,
		registry:  reg,
		origin:    o,
		attestors: attestors,
		peers:     make(map[string]*network.Peer),
	}
}

// Collect requests signatures over result from every attestor concurrently
// and returns a proof ordered by the registry. It fails with ErrIncomplete
// naming each registered signer that did not produce a valid signature.
func (c *Collector) Collect(ctx context.Context, result attest.VoteResult) ([]attest.Signature, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	start := time.Now()
	digest := attest.ComputeDigest(c.origin, result)
	request := EncodeRequest(&SignRequest{Origin: c.origin, Result: result})

	attestations := make([]Attestation, len(c.attestors))

	var wg sync.WaitGroup
	for i, addr := range c.attestors {
		wg.Add(1)

		go func(i int, addr string) {
			defer wg.Done()
			attestations[i] = c.requestAttestation(ctx, addr, request, digest)
		}(i, addr)
	}
	wg.Wait()

	proof, err := c.assemble(attestations)
	if err != nil {
		return nil, err
	}

	logger.Info("proof collected",
		"voteId", result.VoteID,
		"signatures", len(proof),
		logger.Timed(start),
	)

	return proof, nil
}

// requestAttestation asks one attestor and checks what it returned.
func (c *Collector) requestAttestation(ctx context.Context, addr string, request []byte, digest common.Hash) Attestation {
	att := Attestation{Address: addr}
	log := logger.With("attestor", addr)

	defer func() {
		if att.Err != nil {
			log.Debug("attestation failed", "error", att.Err)
		} else {
			log.Debug("attestation received", "signer", att.Signer.Hex())
		}
	}()

	data, err := c.request(ctx, addr, request)
	if err != nil {
		att.Err = err
		return att
	}

	msgType, err := messageType(data)
	if err != nil {
		att.Err = err
		return att
	}

	switch msgType {
	case msgTypeNegative:
		reason, err := DecodeNegativeResponse(data)
		if err != nil {
			att.Err = err
			return att
		}
		att.Err = fmt.Errorf("attestor refused: %s", ReasonString(reason))

	case msgTypePositive:
		resp, err := DecodePositiveResponse(data)
		if err != nil {
			att.Err = err
			return att
		}

		if resp.Digest != digest {
			att.Err = fmt.Errorf("attestor signed digest %s, want %s", resp.Digest.Hex(), digest.Hex())
			return att
		}

		signer, err := attest.RecoverAddress(digest, resp.Signature[:])
		if err != nil {
			att.Err = err
			return att
		}

		att.Signer = signer
		att.Signature = resp.Signature

	default:
		att.Err = fmt.Errorf("invalid message type: 0x%02x", msgType)
	}

	return att
}

// request sends a request over a cached connection, redialing once if the
// cached one is broken.
func (c *Collector) request(ctx context.Context, addr string, request []byte) ([]byte, error) {
	peer, cached, err := c.peer(ctx, addr)
	if err != nil {
		return nil, err
	}

	data, err := peer.Request(ctx, request)
	if err == nil || !cached {
		return data, err
	}

	c.drop(addr, peer)

	peer, _, err = c.peer(ctx, addr)
	if err != nil {
		return nil, err
	}

	return peer.Request(ctx, request)
}

// peer returns a connection to addr, dialing when none is cached. When two
// callers dial the same address at once, the first connection stored wins
// and the other is closed.
func (c *Collector) peer(ctx context.Context, addr string) (*network.Peer, bool, error) {
	c.peersMu.Lock()
	p, ok := c.peers[addr]
	c.peersMu.Unlock()

	if ok {
		return p, true, nil
	}

	dialed, err := c.node.Dial(ctx, addr)
	if err != nil {
		return nil, false, err
	}

	c.peersMu.Lock()
	existing, ok := c.peers[addr]
	if !ok {
		c.peers[addr] = dialed
	}
	c.peersMu.Unlock()

	if ok {
		dialed.Close()
		return existing, false, nil
	}

	return dialed, false, nil
}

// drop closes and forgets a cached connection.
func (c *Collector) drop(addr string, p *network.Peer) {
	c.peersMu.Lock()
	if c.peers[addr] == p {
		delete(c.peers, addr)
	}
	c.peersMu.Unlock()

	p.Close()
}

// assemble places each valid signature at its signer's registry index.
func (c *Collector) assemble(attestations []Attestation) ([]attest.Signature, error) {
	n := c.registry.Size()
	proof := make([]attest.Signature, n)
	filled := make([]bool, n)

	for _, att := range attestations {
		if att.Err != nil {
			continue
		}

		idx, ok := c.registry.IndexOf(att.Signer)
		if !ok {
			logger.Warn("attestor key is not registered", "attestor", att.Address, "signer", att.Signer.Hex())
			continue
		}

		proof[idx] = att.Signature
		filled[idx] = true
	}

	var missing []string
	for i, ok := range filled {
		if !ok {
			missing = append(missing, fmt.Sprintf("%d:%s", i, c.registry.Signer(i).Hex()))
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing signers %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	return proof, nil
}

// Close closes every cached connection.
func (c *Collector) Close() {
	c.peersMu.Lock()
	peers := c.peers
	c.peers = make(map[string]*network.Peer)
	c.peersMu.Unlock()

	for _, p := range peers {
		p.Close()
	}
}
