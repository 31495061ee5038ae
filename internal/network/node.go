package network

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
)

// alpnProtocol is negotiated on every connection.
const alpnProtocol = "votebridge-attest/1"

// Handler answers one request from a peer.
type Handler func(peer *Peer, request []byte) ([]byte, error)

// Config holds the configuration for a Node.
type Config struct {
	PrivateKey  ed25519.PrivateKey // PrivateKey is the transport key; a fresh one is generated when nil
	ListenAddr  string             // ListenAddr is the address to listen on, empty for dial-only nodes
	IdleTimeout time.Duration      // IdleTimeout closes silent connections
}

// Node is a QUIC endpoint that serves and sends framed request/response pairs.
type Node struct {
	key        ed25519.PrivateKey
	listenAddr string
	tlsConfig  *tls.Config
	quicConfig *quic.Config

	listener *quic.Listener

	peers   map[*Peer]struct{}
	peersMu sync.Mutex

	handler   Handler
	handlerMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNode creates a node. Call Start to accept connections.
func NewNode(cfg Config) (*Node, error) {
	key := cfg.PrivateKey
	if key == nil {
		var err error
		if _, key, err = ed25519.GenerateKey(rand.Reader); err != nil {
			return nil, fmt.Errorf("generate transport key:\n%w", err)
		}
	}

	cert, err := selfSignedCert(key)
	if err != nil {
		return nil, err
	}

	idle := cfg.IdleTimeout
	if idle == 0 {
		idle = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Node{
		key:        key,
		listenAddr: cfg.ListenAddr,
		tlsConfig: &tls.Config{
			Certificates:       []tls.Certificate{cert},
			ClientAuth:         tls.RequireAnyClientCert,
			InsecureSkipVerify: true, // identity is the ed25519 key, checked in setupPeer
			NextProtos:         []string{alpnProtocol},
			MinVersion:         tls.VersionTLS13,
		},
		quicConfig: &quic.Config{
			MaxIdleTimeout:  idle,
			KeepAlivePeriod: idle / 3,
		},
		peers:  make(map[*Peer]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// PublicKey returns the node's transport key.
func (n *Node) PublicKey() ed25519.PublicKey {
	return n.key.Public().(ed25519.PublicKey)
}

// Addr returns the bound listener address, or "" before Start.
func (n *Node) Addr() string {
	if n.listener == nil {
		return ""
	}

	return n.listener.Addr().String()
}

// OnRequest sets the handler for incoming requests.
func (n *Node) OnRequest(fn Handler) {
	n.handlerMu.Lock()
	n.handler = fn
	n.handlerMu.Unlock()
}

// Start begins accepting connections on ListenAddr.
func (n *Node) Start() error {
	if n.listenAddr == "" {
		return fmt.Errorf("listen address is required")
	}

	listener, err := quic.ListenAddr(n.listenAddr, n.tlsConfig, n.quicConfig)
	if err != nil {
		return fmt.Errorf("listen on %s:\n%w", n.listenAddr, err)
	}

	n.listener = listener

	n.wg.Add(1)
	go n.acceptLoop()

	return nil
}

// Dial connects to the node at addr.
func (n *Node) Dial(ctx context.Context, addr string) (*Peer, error) {
	conn, err := quic.DialAddr(ctx, addr, n.tlsConfig, n.quicConfig)
	if err != nil {
		return nil, fmt.Errorf("dial %s:\n%w", addr, err)
	}

	peer, err := n.setupPeer(conn, addr)
	if err != nil {
		conn.CloseWithError(1, "setup failed")
		return nil, err
	}

	return peer, nil
}

// Close stops accepting, closes every connection and waits for goroutines.
func (n *Node) Close() error {
	n.cancel()

	if n.listener != nil {
		n.listener.Close()
	}

	n.peersMu.Lock()
	peers := make([]*Peer, 0, len(n.peers))
	for p := range n.peers {
		peers = append(peers, p)
	}
	n.peersMu.Unlock()

	for _, p := range peers {
		p.Close()
	}

	n.wg.Wait()

	return nil
}

// acceptLoop accepts incoming connections until the listener closes.
func (n *Node) acceptLoop() {
	defer n.wg.Done()

	for {
		conn, err := n.listener.Accept(n.ctx)
		if err != nil {
			return
		}

		if _, err := n.setupPeer(conn, conn.RemoteAddr().String()); err != nil {
			conn.CloseWithError(1, "setup failed")
		}
	}
}

// setupPeer checks the remote identity and starts serving its streams.
func (n *Node) setupPeer(conn *quic.Conn, addr string) (*Peer, error) {
	pub, err := peerKey(conn.ConnectionState().TLS)
	if err != nil {
		return nil, fmt.Errorf("peer identity:\n%w", err)
	}

	peer := &Peer{
		publicKey: pub,
		address:   addr,
		conn:      conn,
		node:      n,
	}

	n.peersMu.Lock()
	n.peers[peer] = struct{}{}
	n.peersMu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		peer.serve(n.ctx)
	}()

	return peer, nil
}

// forget drops a closed peer.
func (n *Node) forget(p *Peer) {
	n.peersMu.Lock()
	delete(n.peers, p)
	n.peersMu.Unlock()
}

// PeerCount returns the number of open connections.
func (n *Node) PeerCount() int {
	n.peersMu.Lock()
	defer n.peersMu.Unlock()

	return len(n.peers)
}

// handle dispatches a request to the registered handler.
func (n *Node) handle(p *Peer, request []byte) ([]byte, error) {
	n.handlerMu.RLock()
	fn := n.handler
	n.handlerMu.RUnlock()

	if fn == nil {
		return nil, fmt.Errorf("no request handler registered")
	}

	return fn(p, request)
}
