package ledger

import (
	"errors"
	"fmt"
	"testing"

	"VoteBridge/internal/attest"
)

func TestExportImport(t *testing.T) {
	src := newTestLedger(t)

	for i := 1; i <= 3; i++ {
		appendResult(t, src, attest.VoteResult{VoteID: uint32(i), VotesFor: uint32(10 * i)})
	}

	snap, err := src.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newTestLedger(t)

	if err := dst.Import(snap, nil); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if dst.Len() != 3 {
		t.Fatalf("Len() after import = %d, want 3", dst.Len())
	}

	if err := dst.Verify(nil); err != nil {
		t.Errorf("Verify after import: %v", err)
	}

	if has, _ := dst.HasVote(2); !has {
		t.Error("vote index should be restored")
	}

	e, err := dst.Get(2)
	if err != nil {
		t.Fatalf("Get(2): %v", err)
	}

	if e.Result.VotesFor != 30 {
		t.Errorf("entry 2 votesFor = %d, want 30", e.Result.VotesFor)
	}

	next := appendResult(t, dst, attest.VoteResult{VoteID: 4})
	if next.Index != 3 {
		t.Errorf("append after import got index %d, want 3", next.Index)
	}

	if err := dst.Verify(nil); err != nil {
		t.Errorf("Verify after append: %v", err)
	}
}

func TestImportEmptySnapshot(t *testing.T) {
	snap, err := newTestLedger(t).Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newTestLedger(t)
	if err := dst.Import(snap, nil); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if dst.Len() != 0 {
		t.Errorf("Len() = %d, want 0", dst.Len())
	}
}

func TestImportRejectsCorruption(t *testing.T) {
	src := newTestLedger(t)
	appendResult(t, src, attest.VoteResult{VoteID: 1})

	snap, _ := src.Export()
	raw, err := decompress(snap, maxSnapshotSize)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}

	raw[20] ^= 0xff
	corrupted, _ := compress(raw)

	dst := newTestLedger(t)

	if err := dst.Import(corrupted, nil); err == nil {
		t.Fatal("corrupted snapshot should be rejected")
	}

	if dst.Len() != 0 {
		t.Error("failed import must leave the ledger unchanged")
	}

	if err := dst.Import([]byte("not zstd"), nil); err == nil {
		t.Error("non-zstd input should be rejected")
	}
}

func TestImportRefusesNonEmptyLog(t *testing.T) {
	src := newTestLedger(t)
	appendResult(t, src, attest.VoteResult{VoteID: 9, VotesFor: 999999})

	snap, err := src.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newTestLedger(t)
	appendResult(t, dst, attest.VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50})
	appendResult(t, dst, attest.VoteResult{VoteID: 2, VotesFor: 3, VotesAgainst: 4})

	err = dst.Import(snap, nil)
	if !errors.Is(err, ErrNotEmpty) {
		t.Fatalf("Import into non-empty log returned %v, want ErrNotEmpty", err)
	}

	if dst.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", dst.Len())
	}

	for i, want := range []uint32{1, 2} {
		e, err := dst.Get(uint64(i))
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}

		if e.Result.VoteID != want {
			t.Errorf("entry %d vote = %d, want %d", i, e.Result.VoteID, want)
		}
	}

	if has, _ := dst.HasVote(9); has {
		t.Error("refused snapshot must not leak into the vote index")
	}
}

func TestImportRunsCheck(t *testing.T) {
	src := newTestLedger(t)
	appendResult(t, src, attest.VoteResult{VoteID: 1})
	appendResult(t, src, attest.VoteResult{VoteID: 9, VotesFor: 999999})

	snap, err := src.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	errForged := errors.New("forged")
	var checked []uint32

	check := func(e Entry) error {
		checked = append(checked, e.Result.VoteID)
		if e.Result.VoteID == 9 {
			return errForged
		}
		return nil
	}

	dst := newTestLedger(t)

	err = dst.Import(snap, check)
	if !errors.Is(err, errForged) {
		t.Fatalf("Import returned %v, want check error", err)
	}

	if fmt.Sprint(checked) != "[1 9]" {
		t.Errorf("checked %v, want [1 9]", checked)
	}

	if dst.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after refused import", dst.Len())
	}

	if has, _ := dst.HasVote(1); has {
		t.Error("refused import must write nothing")
	}
}

func TestDecompressRespectsLimit(t *testing.T) {
	data, err := compress(make([]byte, 1<<20))
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if _, err := decompress(data, 64<<10); err == nil {
		t.Error("output past the limit should be refused")
	}

	out, err := decompress(data, maxSnapshotSize)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}

	if len(out) != 1<<20 {
		t.Errorf("decompressed %d bytes, want %d", len(out), 1<<20)
	}
}
