package network

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	"VoteBridge/internal/logger"
)

// defaultRequestTimeout applies when the request context has no deadline.
const defaultRequestTimeout = 10 * time.Second

// Peer is one QUIC connection to a remote node.
type Peer struct {
	publicKey ed25519.PublicKey // publicKey is the remote transport key
	address   string            // address is the remote address
	conn      *quic.Conn
	node      *Node
	closed    atomic.Bool
}

// PublicKey returns the remote transport key.
func (p *Peer) PublicKey() ed25519.PublicKey {
	return p.publicKey
}

// Address returns the remote address.
func (p *Peer) Address() string {
	return p.address
}

// Request sends payload on a new bidirectional stream and returns the reply.
func (p *Peer) Request(ctx context.Context, payload []byte) ([]byte, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("peer %s is closed", p.address)
	}

	stream, err := p.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("open stream:\n%w", err)
	}
	defer stream.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultRequestTimeout)
	}
	stream.SetDeadline(deadline)

	if err := writeFrame(stream, payload); err != nil {
		return nil, fmt.Errorf("send request:\n%w", err)
	}

	reply, err := readFrame(stream)
	if err != nil {
		return nil, fmt.Errorf("read reply:\n%w", err)
	}

	return reply, nil
}

// Close closes the connection.
func (p *Peer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	p.node.forget(p)

	return p.conn.CloseWithError(0, "closed")
}

// serve answers requests on incoming streams until the connection ends.
func (p *Peer) serve(ctx context.Context) {
	for {
		stream, err := p.conn.AcceptStream(ctx)
		if err != nil {
			logger.Debug("peer stream loop ended", "peer", p.address, "error", err)
			p.closed.Store(true)
			p.node.forget(p)
			return
		}

		go p.answer(stream)
	}
}

// answer handles one request stream.
func (p *Peer) answer(stream *quic.Stream) {
	defer stream.Close()

	stream.SetDeadline(time.Now().Add(defaultRequestTimeout))

	request, err := readFrame(stream)
	if err != nil {
		logger.Debug("bad request frame", "peer", p.address, "error", err)
		return
	}

	reply, err := p.node.handle(p, request)
	if err != nil {
		logger.Debug("request handler failed", "peer", p.address, "error", err)
		stream.CancelWrite(1)
		return
	}

	if err := writeFrame(stream, reply); err != nil {
		logger.Debug("write reply failed", "peer", p.address, "error", err)
	}
}
