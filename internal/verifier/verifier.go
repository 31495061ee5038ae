package verifier

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/ledger"
	"VoteBridge/internal/logger"
	"VoteBridge/internal/registry"
)

// ResultsLog is the append-only store of accepted results.
type ResultsLog interface {
	Append(result attest.VoteResult, digest common.Hash, proof []attest.Signature) (ledger.Entry, error)
	HasVote(voteID uint32) (bool, error)
}

// VotingCompleted is emitted once per accepted result.
type VotingCompleted struct {
	Index  uint64            // Index is the entry's position in the results log
	Result attest.VoteResult // Result is the accepted tally
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithRejectReplays refuses a result whose vote id is already in the log.
// By default republishing an accepted result appends a second entry.
func WithRejectReplays() Option {
	return func(v *Verifier) {
		v.rejectReplays = true
	}
}

// Verifier accepts a result only when every registered signer signed its
// digest, each at its own position in the proof.
type Verifier struct {
	origin        attest.OriginID    // origin is bound into every digest
	registry      *registry.Registry // registry is the fixed ordered signer set
	log           ResultsLog         // log receives accepted results
	rejectReplays bool               // rejectReplays enables vote id dedup

	mu sync.Mutex // mu serializes the check-and-append step

	listeners   []func(VotingCompleted)
	listenersMu sync.RWMutex
}

// New creates a verifier bound to origin and the signer registry.
func New(origin attest.OriginID, reg *registry.Registry, log ResultsLog, opts ...Option) (*Verifier, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: no signer registry", ErrInvalidSignerCount)
	}

	if log == nil {
		return nil, fmt.Errorf("results log is required")
	}

	v := &Verifier{
		origin:   origin,
		registry: reg,
		log:      log,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// Origin returns the bound origin contract identifier.
func (v *Verifier) Origin() attest.OriginID {
	return v.origin
}

// Registry returns the signer registry.
func (v *Verifier) Registry() *registry.Registry {
	return v.registry
}

// RejectsReplays reports whether vote id dedup is enabled.
func (v *Verifier) RejectsReplays() bool {
	return v.rejectReplays
}

// OnCompleted registers fn to be called for every accepted result, in
// acceptance order. fn runs while the verifier holds its lock and must not
// call Publish.
func (v *Verifier) OnCompleted(fn func(VotingCompleted)) {
	v.listenersMu.Lock()
	v.listeners = append(v.listeners, fn)
	v.listenersMu.Unlock()
}

// Verify checks a proof without touching the log. It returns the digest and
// the decoded signatures when all N positional checks pass.
func (v *Verifier) Verify(result attest.VoteResult, signatures [][]byte) (common.Hash, []attest.Signature, error) {
	n := v.registry.Size()

	if len(signatures) < n {
		return common.Hash{}, nil, fmt.Errorf("%w: expected %d, got %d", ErrInsufficientSignatures, n, len(signatures))
	}

	if len(signatures) > n {
		return common.Hash{}, nil, fmt.Errorf("%w: expected %d, got %d", ErrUnexpectedSignatures, n, len(signatures))
	}

	digest := attest.ComputeDigest(v.origin, result)
	proof := make([]attest.Signature, n)

	for i := 0; i < n; i++ {
		signer, err := attest.RecoverAddress(digest, signatures[i])
		if err != nil {
			return common.Hash{}, nil, fmt.Errorf("%w: signature %d:\n%w", ErrSignatureVerificationFailed, i, err)
		}

		if expected := v.registry.Signer(i); signer != expected {
			return common.Hash{}, nil, fmt.Errorf("%w: signature %d recovers to %s, expected %s",
				ErrSignatureVerificationFailed, i, signer.Hex(), expected.Hex())
		}

		copy(proof[i][:], signatures[i])
	}

	return digest, proof, nil
}

// CheckEntry re-verifies a stored entry: its digest must be the one this
// verifier builds for the result and its proof must pass every positional
// check. It is used to validate the results log on startup and imported
// snapshots.
func (v *Verifier) CheckEntry(e ledger.Entry) error {
	signatures := make([][]byte, len(e.Proof))
	for i := range e.Proof {
		signatures[i] = e.Proof[i][:]
	}

	digest, _, err := v.Verify(e.Result, signatures)
	if err != nil {
		return err
	}

	if digest != e.Digest {
		return fmt.Errorf("%w: stored digest %s, expected %s", ErrSignatureVerificationFailed, e.Digest.Hex(), digest.Hex())
	}

	return nil
}

// Publish verifies a proof and, if it holds, appends the result to the log
// and notifies listeners. A rejected proof leaves the log untouched.
func (v *Verifier) Publish(result attest.VoteResult, signatures [][]byte) (VotingCompleted, error) {
	digest, proof, err := v.Verify(result, signatures)
	if err != nil {
		logger.Warn("result rejected",
			"voteId", result.VoteID,
			"reason", Reason(err),
			"error", err,
		)
		return VotingCompleted{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.rejectReplays {
		seen, err := v.log.HasVote(result.VoteID)
		if err != nil {
			return VotingCompleted{}, fmt.Errorf("check vote %d:\n%w", result.VoteID, err)
		}

		if seen {
			logger.Warn("result rejected", "voteId", result.VoteID, "reason", ReasonDuplicateResult)
			return VotingCompleted{}, fmt.Errorf("%w: vote %d already accepted", ErrDuplicateResult, result.VoteID)
		}
	}

	entry, err := v.log.Append(result, digest, proof)
	if err != nil {
		return VotingCompleted{}, fmt.Errorf("append result:\n%w", err)
	}

	event := VotingCompleted{Index: entry.Index, Result: result}

	logger.Info("voting completed",
		"index", entry.Index,
		"voteId", result.VoteID,
		"votesFor", result.VotesFor,
		"votesAgainst", result.VotesAgainst,
		"digest", digest.Hex(),
	)

	v.notify(event)

	return event, nil
}

// notify calls every registered listener.
func (v *Verifier) notify(event VotingCompleted) {
	v.listenersMu.RLock()
	listeners := v.listeners
	v.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}
