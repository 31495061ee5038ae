package origin

import (
	"errors"

	"VoteBridge/internal/attest"
)

var (
	// ErrAlreadyVoted is returned when a voter casts a second vote in one round.
	ErrAlreadyVoted = errors.New("voter already cast a vote in this round")

	// ErrNotWaiting is returned when votes are cast or counted while a count is being attested.
	ErrNotWaiting = errors.New("ballot is not accepting input")

	// ErrNotCounting is returned when a proof is attached outside of an attestation phase.
	ErrNotCounting = errors.New("no result is awaiting a proof")

	// ErrUnknownVote is returned for a vote id with no counted result.
	ErrUnknownVote = errors.New("unknown vote")
)

// Source answers which result the origin computation produced for a vote.
// Attestors sign a result only when their Source reports exactly that tally.
type Source interface {
	Result(voteID uint32) (attest.VoteResult, bool)
}

// Record is a counted result as the origin contract exposes it. Proof is
// empty until the attestation completes.
type Record struct {
	VoteID       uint32 `json:"voteId"`
	VotesFor     uint32 `json:"votesFor"`
	VotesAgainst uint32 `json:"votesAgainst"`
	Proof        string `json:"proof,omitempty"`
}

// Result returns the tally without the proof.
func (r Record) Result() attest.VoteResult {
	return attest.VoteResult{VoteID: r.VoteID, VotesFor: r.VotesFor, VotesAgainst: r.VotesAgainst}
}

// Signatures parses the attached proof into raw signatures.
func (r Record) Signatures() ([]attest.Signature, error) {
	if r.Proof == "" {
		return nil, errors.New("result has no proof")
	}

	return attest.ParseProof(r.Proof)
}

// State is the public state of the origin contract.
type State struct {
	CurrentVoteID uint32   `json:"currentVoteId"`
	VoteResults   []Record `json:"voteResults"`
}

// Find returns the record for voteID.
func (s *State) Find(voteID uint32) (Record, bool) {
	for _, r := range s.VoteResults {
		if r.VoteID == voteID {
			return r, true
		}
	}

	return Record{}, false
}
