package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/storage"
)

// Key layout.
//
//	l/h                    head: be64(length) || blake3(last record)
//	l/r/<be64 index>       record
//	l/v/<be32 voteId><be64 index>  vote index (empty value)
var (
	headKey      = []byte("l/h")
	recordPrefix = []byte("l/r/")
	votePrefix   = []byte("l/v/")
)

// headSize is the encoded size of the head value.
const headSize = 8 + 32

var (
	// ErrNotFound is returned for an index past the end of the log.
	ErrNotFound = errors.New("entry not found")

	// ErrNotEmpty is returned when importing into a log that already has entries.
	ErrNotEmpty = errors.New("results log is not empty")
)

// Check validates one stored entry beyond the log's own structure, for
// example by re-verifying its digest and proof.
type Check func(Entry) error

// Ledger is the append-only results log. Entries are never modified or
// removed; an entry's index is its position in append order.
type Ledger struct {
	db  *storage.Storage
	now func() time.Time

	mu       sync.RWMutex
	length   uint64   // length is the number of entries
	lastHash [32]byte // lastHash is the blake3 hash of the newest record
}

// Open loads the log head from db.
func Open(db *storage.Storage) (*Ledger, error) {
	l := &Ledger{db: db, now: time.Now}

	head, err := db.Get(headKey)
	if err != nil {
		return nil, fmt.Errorf("read ledger head:\n%w", err)
	}

	if head == nil {
		return l, nil
	}

	if len(head) != headSize {
		return nil, fmt.Errorf("corrupt ledger head: %d bytes", len(head))
	}

	l.length = binary.BigEndian.Uint64(head[:8])
	copy(l.lastHash[:], head[8:])

	return l, nil
}

// Append stores an accepted result and returns the new entry.
// The record, the vote index and the head are written in one batch.
func (l *Ledger) Append(result attest.VoteResult, digest common.Hash, proof []attest.Signature) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		Index:      l.length,
		Result:     result,
		Digest:     digest,
		Proof:      proof,
		AcceptedAt: l.now().UTC(),
		PrevHash:   l.lastHash,
	}

	record := encodeRecord(&e)
	hash := hashRecord(record)

	err := l.db.Write([]storage.KeyValue{
		{Key: recordKey(e.Index), Value: record},
		{Key: voteKey(result.VoteID, e.Index), Value: nil},
		{Key: headKey, Value: encodeHead(e.Index+1, hash)},
	})
	if err != nil {
		return Entry{}, fmt.Errorf("append entry %d:\n%w", e.Index, err)
	}

	l.length++
	l.lastHash = hash

	return e, nil
}

// Len returns the number of entries.
func (l *Ledger) Len() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.length
}

// Get returns the entry at index.
func (l *Ledger) Get(index uint64) (Entry, error) {
	if index >= l.Len() {
		return Entry{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}

	data, err := l.db.Get(recordKey(index))
	if err != nil {
		return Entry{}, fmt.Errorf("read entry %d:\n%w", index, err)
	}

	if data == nil {
		return Entry{}, fmt.Errorf("%w: index %d missing from storage", ErrNotFound, index)
	}

	e, err := decodeRecord(data)
	if err != nil {
		return Entry{}, fmt.Errorf("decode entry %d:\n%w", index, err)
	}

	return *e, nil
}

// Range returns up to limit entries starting at from, in append order.
func (l *Ledger) Range(from uint64, limit int) ([]Entry, error) {
	end := l.Len()
	if from >= end || limit <= 0 {
		return nil, nil
	}

	if uint64(limit) < end-from {
		end = from + uint64(limit)
	}

	entries := make([]Entry, 0, end-from)

	err := l.db.Scan(recordKey(from), recordKey(end), func(_, value []byte) error {
		e, err := decodeRecord(value)
		if err != nil {
			return err
		}

		entries = append(entries, *e)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan entries [%d, %d):\n%w", from, end, err)
	}

	return entries, nil
}

// HasVote reports whether any entry carries voteID.
func (l *Ledger) HasVote(voteID uint32) (bool, error) {
	found := false
	errStop := errors.New("stop")

	err := l.db.ScanPrefix(votePrefixFor(voteID), func(_, _ []byte) error {
		found = true
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return false, fmt.Errorf("scan vote index:\n%w", err)
	}

	return found, nil
}

// Verify walks the whole log and checks indices, the hash chain and, when
// check is non-nil, every entry.
func (l *Ledger) Verify(check Check) error {
	l.mu.RLock()
	length, last := l.length, l.lastHash
	l.mu.RUnlock()

	var (
		prev  [32]byte
		count uint64
	)

	err := l.db.ScanPrefix(recordPrefix, func(_, value []byte) error {
		e, err := decodeRecord(value)
		if err != nil {
			return err
		}

		if e.Index != count {
			return fmt.Errorf("entry %d stored at position %d", e.Index, count)
		}

		if e.PrevHash != prev {
			return fmt.Errorf("entry %d: hash chain broken", e.Index)
		}

		if check != nil {
			if err := check(*e); err != nil {
				return fmt.Errorf("entry %d:\n%w", e.Index, err)
			}
		}

		prev = hashRecord(value)
		count++

		return nil
	})
	if err != nil {
		return fmt.Errorf("verify ledger:\n%w", err)
	}

	if count != length {
		return fmt.Errorf("verify ledger: head says %d entries, found %d", length, count)
	}

	if prev != last {
		return fmt.Errorf("verify ledger: head hash does not match last entry")
	}

	return nil
}

// recordKey builds "l/r/" + be64(index).
func recordKey(index uint64) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], index)

	return key
}

// votePrefixFor builds "l/v/" + be32(voteID).
func votePrefixFor(voteID uint32) []byte {
	key := make([]byte, len(votePrefix)+4)
	copy(key, votePrefix)
	binary.BigEndian.PutUint32(key[len(votePrefix):], voteID)

	return key
}

// voteKey builds "l/v/" + be32(voteID) + be64(index).
func voteKey(voteID uint32, index uint64) []byte {
	prefix := votePrefixFor(voteID)

	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], index)

	return key
}

// encodeHead builds the head value.
func encodeHead(length uint64, last [32]byte) []byte {
	head := make([]byte, headSize)
	binary.BigEndian.PutUint64(head[:8], length)
	copy(head[8:], last[:])

	return head
}
