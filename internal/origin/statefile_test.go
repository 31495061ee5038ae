package origin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"VoteBridge/internal/attest"
)

const sampleState = `{
  "currentVoteId": 3,
  "voteResults": [
    {"voteId": 1, "votesFor": 101, "votesAgainst": 50, "proof": "[0x` + zeroSig + `1b]"},
    {"voteId": 2, "votesFor": 7, "votesAgainst": 9}
  ]
}`

const zeroSig = "00000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"

// writeSample writes content to a state file in a temporary directory.
func writeSample(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write state: %v", err)
	}

	return path
}

func TestStateFileResult(t *testing.T) {
	f, err := OpenStateFile(writeSample(t, sampleState))
	if err != nil {
		t.Fatalf("OpenStateFile failed: %v", err)
	}

	got, ok := f.Result(1)
	want := attest.VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50}
	if !ok || got != want {
		t.Errorf("Result(1) = %v, %v, want %v", got, ok, want)
	}

	if _, ok := f.Result(9); ok {
		t.Error("Result(9) should not exist")
	}
}

func TestStateFileRecordProof(t *testing.T) {
	f, err := OpenStateFile(writeSample(t, sampleState))
	if err != nil {
		t.Fatalf("OpenStateFile failed: %v", err)
	}

	r, err := f.Record(1)
	if err != nil {
		t.Fatalf("Record(1) failed: %v", err)
	}

	sigs, err := r.Signatures()
	if err != nil {
		t.Fatalf("Signatures failed: %v", err)
	}

	if len(sigs) != 1 || sigs[0][64] != 0x1b {
		t.Errorf("unexpected proof: %v", sigs)
	}

	pending, _ := f.Record(2)
	if _, err := pending.Signatures(); err == nil {
		t.Error("record without proof should fail to parse")
	}

	if _, err := f.Record(5); !errors.Is(err, ErrUnknownVote) {
		t.Errorf("Record(5) err = %v, want ErrUnknownVote", err)
	}
}

func TestStateFileReloadKeepsStateOnError(t *testing.T) {
	path := writeSample(t, sampleState)

	f, err := OpenStateFile(path)
	if err != nil {
		t.Fatalf("OpenStateFile failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	if err := f.Reload(); err == nil {
		t.Fatal("Reload should fail on invalid JSON")
	}

	if _, ok := f.Result(1); !ok {
		t.Error("previous state should survive a failed reload")
	}
}

func TestWriteStateRoundTrip(t *testing.T) {
	b := NewBallot()
	_ = b.Cast("x", true)
	_, _ = b.Count()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := WriteState(path, b.State()); err != nil {
		t.Fatalf("WriteState failed: %v", err)
	}

	state, err := ReadState(path)
	if err != nil {
		t.Fatalf("ReadState failed: %v", err)
	}

	if state.CurrentVoteID != 1 || len(state.VoteResults) != 1 || state.VoteResults[0].VotesFor != 1 {
		t.Errorf("unexpected state: %+v", state)
	}
}
