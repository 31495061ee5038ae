package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"VoteBridge/client"
	"VoteBridge/internal/attest"
	"VoteBridge/internal/collector"
	"VoteBridge/internal/origin"
	"VoteBridge/internal/verifier"
)

// runRound casts votes, counts them, collects the proof over QUIC and
// attaches it to the ballot.
func runRound(t *testing.T, ballot *origin.Ballot, col *collector.Collector, votes map[string]bool) attest.VoteResult {
	t.Helper()

	for voter, vote := range votes {
		if err := ballot.Cast(voter, vote); err != nil {
			t.Fatalf("cast: %v", err)
		}
	}

	result, err := ballot.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	proof, err := col.Collect(ctx, result)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if err := ballot.AttachProof(result.VoteID, proof); err != nil {
		t.Fatalf("attach proof: %v", err)
	}

	return result
}

// storedProof reads the proof the ballot recorded for voteID.
func storedProof(t *testing.T, ballot *origin.Ballot, voteID uint32) []attest.Signature {
	t.Helper()

	state := ballot.State()

	record, ok := state.Find(voteID)
	if !ok {
		t.Fatalf("vote %d not in state", voteID)
	}

	sigs, err := record.Signatures()
	if err != nil {
		t.Fatalf("parse proof: %v", err)
	}

	return sigs
}

func TestEndToEnd(t *testing.T) {
	signers := testSigners(t, 4)
	reg := registryOf(t, signers)

	ballot := origin.NewBallot()
	att := startAttestors(t, signers, ballot)
	col := newCollector(t, reg, att.addrs)
	b := startBridge(t, reg)

	result := runRound(t, ballot, col, map[string]bool{"alice": true, "bob": true, "carol": false})

	accepted, err := b.client.Publish(result, storedProof(t, ballot, result.VoteID))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if accepted.Index != 0 || accepted.VotesFor != 2 || accepted.VotesAgainst != 1 {
		t.Errorf("unexpected answer: %+v", accepted)
	}

	select {
	case e := <-b.events:
		if e.Result != result {
			t.Errorf("event result = %v, want %v", e.Result, result)
		}
	case <-time.After(time.Second):
		t.Fatal("no VotingCompleted event")
	}

	entry, err := b.client.Result(0)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	if entry.Result() != result {
		t.Errorf("stored %v, want %v", entry.Result(), result)
	}

	if entry.Digest != attest.ComputeDigest(mustOrigin(t), result).Hex() {
		t.Errorf("stored digest = %s", entry.Digest)
	}
}

func TestSeveralRounds(t *testing.T) {
	signers := testSigners(t, 4)
	reg := registryOf(t, signers)

	ballot := origin.NewBallot()
	att := startAttestors(t, signers, ballot)
	col := newCollector(t, reg, att.addrs)
	b := startBridge(t, reg, verifier.WithRejectReplays())

	for round := 0; round < 3; round++ {
		votes := make(map[string]bool)
		for i := 0; i <= round; i++ {
			votes[fmt.Sprintf("voter-%d", i)] = i%2 == 0
		}

		result := runRound(t, ballot, col, votes)
		if result.VoteID != uint32(round+1) {
			t.Fatalf("round %d has vote id %d", round, result.VoteID)
		}

		if _, err := b.client.Publish(result, storedProof(t, ballot, result.VoteID)); err != nil {
			t.Fatalf("publish round %d: %v", round, err)
		}
	}

	entries, total, err := b.client.Results(0, 10)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}

	if total != 3 || len(entries) != 3 {
		t.Fatalf("got %d of %d entries, want 3", len(entries), total)
	}

	for i, e := range entries {
		if e.VoteID != uint32(i+1) {
			t.Errorf("entry %d has vote id %d", i, e.VoteID)
		}
	}

	// the first round again is a replay
	_, err = b.client.Publish(entries[0].Result(), storedProof(t, ballot, 1))
	if got := client.RejectionReason(err); got != verifier.ReasonDuplicateResult {
		t.Errorf("replay reason = %q, want DuplicateResult", got)
	}
}

func TestTamperedResultRejected(t *testing.T) {
	signers := testSigners(t, 4)
	reg := registryOf(t, signers)

	ballot := origin.NewBallot()
	att := startAttestors(t, signers, ballot)
	col := newCollector(t, reg, att.addrs)
	b := startBridge(t, reg)

	result := runRound(t, ballot, col, map[string]bool{"a": true, "b": false})
	proof := storedProof(t, ballot, result.VoteID)

	tampered := result
	tampered.VotesFor++

	_, err := b.client.Publish(tampered, proof)
	if got := client.RejectionReason(err); got != verifier.ReasonSignatureVerificationFailed {
		t.Errorf("tampered reason = %q", got)
	}

	_, err = b.client.Publish(result, proof[:2])
	if got := client.RejectionReason(err); got != verifier.ReasonInsufficientSignatures {
		t.Errorf("short proof reason = %q", got)
	}

	if status, err := b.client.Status(); err != nil || status.Results != 0 {
		t.Errorf("status = %+v, %v; want no results", status, err)
	}
}

func TestAttestorsRefuseUncountedTally(t *testing.T) {
	signers := testSigners(t, 4)
	reg := registryOf(t, signers)

	ballot := origin.NewBallot()
	att := startAttestors(t, signers, ballot)
	col := newCollector(t, reg, att.addrs)

	runRound(t, ballot, col, map[string]bool{"a": true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	forged := attest.VoteResult{VoteID: 1, VotesFor: 50, VotesAgainst: 0}
	if _, err := col.Collect(ctx, forged); !errors.Is(err, collector.ErrIncomplete) {
		t.Errorf("err = %v, want ErrIncomplete", err)
	}
}

func TestProofForOtherOriginRejected(t *testing.T) {
	signers := testSigners(t, 4)
	reg := registryOf(t, signers)
	b := startBridge(t, reg)

	other, err := attest.ParseOriginID("0x040000000000000000000000000000000000424242")
	if err != nil {
		t.Fatalf("parse origin: %v", err)
	}

	result := attest.VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50}

	proof := make([]attest.Signature, len(signers))
	for i, s := range signers {
		if proof[i], err = s.Attest(other, result); err != nil {
			t.Fatalf("attest: %v", err)
		}
	}

	_, err = b.client.Publish(result, proof)
	if got := client.RejectionReason(err); got != verifier.ReasonSignatureVerificationFailed {
		t.Errorf("cross-origin reason = %q", got)
	}
}

func TestSnapshotMovesResults(t *testing.T) {
	signers := testSigners(t, 4)
	reg := registryOf(t, signers)

	ballot := origin.NewBallot()
	att := startAttestors(t, signers, ballot)
	col := newCollector(t, reg, att.addrs)
	src := startBridge(t, reg)

	result := runRound(t, ballot, col, map[string]bool{"a": true, "b": true})
	if _, err := src.client.Publish(result, storedProof(t, ballot, result.VoteID)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	snapshot, err := src.ledger.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := startBridge(t, reg)
	if err := dst.ledger.Import(snapshot, dst.verifier.CheckEntry); err != nil {
		t.Fatalf("import: %v", err)
	}

	entry, err := dst.client.Result(0)
	if err != nil {
		t.Fatalf("read restored entry: %v", err)
	}

	if entry.Result() != result {
		t.Errorf("restored %v, want %v", entry.Result(), result)
	}
}
