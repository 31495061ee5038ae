package ledger

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/storage"
)

// newTestLedger opens a ledger over a fresh store with a fixed clock.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "db"), storage.Options{})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	l, err := Open(db)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}

	l.now = func() time.Time { return time.Unix(1700000000, 0) }

	return l
}

// testProof returns n distinct fake signatures.
func testProof(n int) []attest.Signature {
	proof := make([]attest.Signature, n)
	for i := range proof {
		proof[i][0] = byte(i + 1)
		proof[i][64] = 27
	}

	return proof
}

// appendResult appends r with a dummy digest and proof.
func appendResult(t *testing.T, l *Ledger, r attest.VoteResult) Entry {
	t.Helper()

	e, err := l.Append(r, common.BytesToHash([]byte{byte(r.VoteID)}), testProof(4))
	if err != nil {
		t.Fatalf("append %v: %v", r, err)
	}

	return e
}

func TestAppendAndGet(t *testing.T) {
	l := newTestLedger(t)

	r := attest.VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50}
	e := appendResult(t, l, r)

	if e.Index != 0 {
		t.Errorf("first index = %d, want 0", e.Index)
	}

	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}

	got, err := l.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}

	if got.Result != r {
		t.Errorf("result = %v, want %v", got.Result, r)
	}

	if got.Digest != e.Digest {
		t.Error("digest changed in storage")
	}

	if len(got.Proof) != 4 || got.Proof[2] != e.Proof[2] {
		t.Error("proof changed in storage")
	}

	if !got.AcceptedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("AcceptedAt = %v", got.AcceptedAt)
	}

	if got.PrevHash != ([32]byte{}) {
		t.Error("first entry should have zero prev hash")
	}
}

func TestAppendOrderAndDuplicates(t *testing.T) {
	l := newTestLedger(t)

	results := []attest.VoteResult{
		{VoteID: 1, VotesFor: 3, VotesAgainst: 1},
		{VoteID: 2, VotesFor: 0, VotesAgainst: 5},
		{VoteID: 1, VotesFor: 3, VotesAgainst: 1},
	}

	for i, r := range results {
		if e := appendResult(t, l, r); e.Index != uint64(i) {
			t.Errorf("entry %d got index %d", i, e.Index)
		}
	}

	entries, err := l.Range(0, 10)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}

	if len(entries) != len(results) {
		t.Fatalf("Range returned %d entries, want %d", len(entries), len(results))
	}

	for i, e := range entries {
		if e.Result != results[i] || e.Index != uint64(i) {
			t.Errorf("entry %d = %+v", i, e)
		}
	}

	if entries[1].PrevHash == entries[2].PrevHash {
		t.Error("consecutive entries should chain to different hashes")
	}
}

func TestGetOutOfRange(t *testing.T) {
	l := newTestLedger(t)

	if _, err := l.Get(0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty ledger: got %v, want ErrNotFound", err)
	}
}

func TestRangeBounds(t *testing.T) {
	l := newTestLedger(t)

	for i := 1; i <= 5; i++ {
		appendResult(t, l, attest.VoteResult{VoteID: uint32(i)})
	}

	page, err := l.Range(1, 2)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}

	if len(page) != 2 || page[0].Result.VoteID != 2 || page[1].Result.VoteID != 3 {
		t.Errorf("Range(1, 2) = %+v", page)
	}

	if page, _ := l.Range(4, 10); len(page) != 1 {
		t.Errorf("Range(4, 10) returned %d entries, want 1", len(page))
	}

	if page, _ := l.Range(5, 10); page != nil {
		t.Errorf("Range past end should be empty, got %d", len(page))
	}

	if page, _ := l.Range(0, 0); page != nil {
		t.Error("zero limit should return nothing")
	}
}

func TestHasVote(t *testing.T) {
	l := newTestLedger(t)

	appendResult(t, l, attest.VoteResult{VoteID: 7})
	appendResult(t, l, attest.VoteResult{VoteID: 70})

	for voteID, want := range map[uint32]bool{7: true, 70: true, 8: false, 0: false} {
		got, err := l.HasVote(voteID)
		if err != nil {
			t.Fatalf("HasVote(%d): %v", voteID, err)
		}

		if got != want {
			t.Errorf("HasVote(%d) = %v, want %v", voteID, got, want)
		}
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	db, err := storage.Open(path, storage.Options{})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	l, _ := Open(db)
	appendResult(t, l, attest.VoteResult{VoteID: 1, VotesFor: 2, VotesAgainst: 3})
	appendResult(t, l, attest.VoteResult{VoteID: 2, VotesFor: 4, VotesAgainst: 5})
	db.Close()

	db, err = storage.Open(path, storage.Options{})
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	defer db.Close()

	l, err = Open(db)
	if err != nil {
		t.Fatalf("reopen ledger: %v", err)
	}

	if l.Len() != 2 {
		t.Fatalf("Len() after reopen = %d, want 2", l.Len())
	}

	if err := l.Verify(nil); err != nil {
		t.Errorf("Verify after reopen: %v", err)
	}

	e := appendResult(t, l, attest.VoteResult{VoteID: 3})
	if e.Index != 2 {
		t.Errorf("index after reopen = %d, want 2", e.Index)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	l := newTestLedger(t)

	appendResult(t, l, attest.VoteResult{VoteID: 1, VotesFor: 1})
	appendResult(t, l, attest.VoteResult{VoteID: 2, VotesFor: 2})

	if err := l.Verify(nil); err != nil {
		t.Fatalf("Verify on intact log: %v", err)
	}

	// Rewrite entry 0 with a different tally behind the ledger's back.
	forged := Entry{
		Index:  0,
		Result: attest.VoteResult{VoteID: 1, VotesFor: 999},
		Proof:  testProof(4),
	}
	if err := l.db.Write([]storage.KeyValue{{Key: recordKey(0), Value: encodeRecord(&forged)}}); err != nil {
		t.Fatalf("write forged record: %v", err)
	}

	if err := l.Verify(nil); err == nil {
		t.Error("Verify should detect a rewritten entry")
	}
}

func TestVerifyRunsCheck(t *testing.T) {
	l := newTestLedger(t)

	appendResult(t, l, attest.VoteResult{VoteID: 1})
	appendResult(t, l, attest.VoteResult{VoteID: 2})

	errBad := errors.New("bad entry")

	err := l.Verify(func(e Entry) error {
		if e.Index == 1 {
			return errBad
		}
		return nil
	})
	if !errors.Is(err, errBad) {
		t.Errorf("Verify returned %v, want check error", err)
	}
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	if _, err := decodeRecord([]byte{1, 2, 3}); err == nil {
		t.Error("short record should fail")
	}

	if _, err := decodeRecord([]byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0, 0, 0}); err == nil {
		t.Error("garbage record should fail")
	}
}
