package origin

import (
	"fmt"
	"sync"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/logger"
)

// phase is the ballot's position in the count cycle.
type phase uint8

const (
	phaseWaiting   phase = iota // accepting votes
	phaseAttesting              // counted, waiting for the proof
)

// Ballot is an in-memory origin computation: voters cast secret yes/no votes,
// anyone may close the round, and the counted result waits for its proof
// before the next round opens. The first vote id is 1.
type Ballot struct {
	mu sync.Mutex

	currentID uint32
	phase     phase
	votes     map[string]bool // votes maps voter to its choice for the open round
	results   []Record
}

// NewBallot creates a ballot whose first round has vote id 1.
func NewBallot() *Ballot {
	return &Ballot{
		currentID: 1,
		votes:     make(map[string]bool),
	}
}

// CurrentVoteID returns the id of the round in progress.
func (b *Ballot) CurrentVoteID() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.currentID
}

// Cast records one vote from voter. true is for, false is against.
func (b *Ballot) Cast(voter string, vote bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != phaseWaiting {
		return fmt.Errorf("cast vote %d: %w", b.currentID, ErrNotWaiting)
	}

	if _, ok := b.votes[voter]; ok {
		return fmt.Errorf("cast vote %d by %s: %w", b.currentID, voter, ErrAlreadyVoted)
	}

	b.votes[voter] = vote

	return nil
}

// Count closes the round and publishes its tally. Votes against are the
// number of voters minus the votes for. The ballot refuses input until
// AttachProof is called for the counted vote.
func (b *Ballot) Count() (attest.VoteResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != phaseWaiting {
		return attest.VoteResult{}, fmt.Errorf("count vote %d: %w", b.currentID, ErrNotWaiting)
	}

	var votesFor uint32
	for _, v := range b.votes {
		if v {
			votesFor++
		}
	}

	result := attest.VoteResult{
		VoteID:       b.currentID,
		VotesFor:     votesFor,
		VotesAgainst: uint32(len(b.votes)) - votesFor,
	}

	b.results = append(b.results, Record{
		VoteID:       result.VoteID,
		VotesFor:     result.VotesFor,
		VotesAgainst: result.VotesAgainst,
	})
	b.phase = phaseAttesting

	logger.Info("vote counted", "voteId", result.VoteID, "for", result.VotesFor, "against", result.VotesAgainst)

	return result, nil
}

// AttachProof stores the formatted signatures on the counted result, clears
// the round's votes and opens the next round.
func (b *Ballot) AttachProof(voteID uint32, sigs []attest.Signature) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != phaseAttesting || voteID != b.currentID {
		return fmt.Errorf("attach proof to vote %d: %w", voteID, ErrNotCounting)
	}

	for i := range b.results {
		if b.results[i].VoteID == voteID {
			b.results[i].Proof = attest.FormatProof(sigs)
		}
	}

	b.currentID++
	b.votes = make(map[string]bool)
	b.phase = phaseWaiting

	return nil
}

// Result implements Source.
func (b *Ballot) Result(voteID uint32) (attest.VoteResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.results {
		if r.VoteID == voteID {
			return r.Result(), true
		}
	}

	return attest.VoteResult{}, false
}

// State returns a copy of the ballot's public state.
func (b *Ballot) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	results := make([]Record, len(b.results))
	copy(results, b.results)

	return State{CurrentVoteID: b.currentID, VoteResults: results}
}
