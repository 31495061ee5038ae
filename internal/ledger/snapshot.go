package ledger

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"VoteBridge/internal/storage"
)

const (
	// snapshotVersion is bumped when the snapshot layout changes.
	snapshotVersion = 1

	// maxSnapshotSize caps the decompressed snapshot.
	maxSnapshotSize = 1 << 30
)

// Export serializes the whole log into a compressed snapshot.
// Layout before compression:
//
//	[4B version] [8B count] ([4B len] [record])* [32B blake3 of everything before]
func (l *Ledger) Export() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var buf bytes.Buffer

	var header [12]byte
	binary.BigEndian.PutUint32(header[:4], snapshotVersion)
	binary.BigEndian.PutUint64(header[4:], l.length)
	buf.Write(header[:])

	var count uint64

	err := l.db.ScanPrefix(recordPrefix, func(_, value []byte) error {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(value)))
		buf.Write(lenBuf[:])
		buf.Write(value)
		count++

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan records:\n%w", err)
	}

	if count != l.length {
		return nil, fmt.Errorf("head says %d entries, found %d", l.length, count)
	}

	checksum := blake3.Sum256(buf.Bytes())
	buf.Write(checksum[:])

	if buf.Len() > maxSnapshotSize {
		return nil, fmt.Errorf("snapshot is %d bytes, limit is %d", buf.Len(), maxSnapshotSize)
	}

	return compress(buf.Bytes())
}

// Import restores a snapshot produced by Export into an empty log.
// The snapshot is fully validated before anything is written: structure,
// hash chain, and check on every entry when check is non-nil.
func (l *Ledger) Import(snapshot []byte, check Check) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.length > 0 {
		return fmt.Errorf("%w: log holds %d entries", ErrNotEmpty, l.length)
	}

	raw, err := decompress(snapshot, maxSnapshotSize)
	if err != nil {
		return fmt.Errorf("decompress snapshot:\n%w", err)
	}

	records, err := parseSnapshot(raw)
	if err != nil {
		return err
	}

	pairs := make([]storage.KeyValue, 0, 2*len(records)+1)

	var prev [32]byte

	for i, data := range records {
		e, err := decodeRecord(data)
		if err != nil {
			return fmt.Errorf("snapshot record %d:\n%w", i, err)
		}

		if e.Index != uint64(i) {
			return fmt.Errorf("snapshot record %d has index %d", i, e.Index)
		}

		if e.PrevHash != prev {
			return fmt.Errorf("snapshot record %d: hash chain broken", i)
		}

		if check != nil {
			if err := check(*e); err != nil {
				return fmt.Errorf("snapshot record %d:\n%w", i, err)
			}
		}

		prev = hashRecord(data)

		pairs = append(pairs,
			storage.KeyValue{Key: recordKey(e.Index), Value: data},
			storage.KeyValue{Key: voteKey(e.Result.VoteID, e.Index), Value: nil},
		)
	}

	pairs = append(pairs, storage.KeyValue{Key: headKey, Value: encodeHead(uint64(len(records)), prev)})

	if err := l.db.Write(pairs); err != nil {
		return fmt.Errorf("write snapshot:\n%w", err)
	}

	l.length = uint64(len(records))
	l.lastHash = prev

	return nil
}

// parseSnapshot checks version and checksum and splits out the records.
func parseSnapshot(raw []byte) ([][]byte, error) {
	if len(raw) < 12+32 {
		return nil, fmt.Errorf("snapshot too short: %d bytes", len(raw))
	}

	body, sum := raw[:len(raw)-32], raw[len(raw)-32:]

	if checksum := blake3.Sum256(body); !bytes.Equal(checksum[:], sum) {
		return nil, fmt.Errorf("snapshot checksum mismatch")
	}

	if v := binary.BigEndian.Uint32(body[:4]); v != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", v)
	}

	count := binary.BigEndian.Uint64(body[4:12])
	body = body[12:]

	// Each record needs at least its length prefix.
	if count > uint64(len(body)/4) {
		return nil, fmt.Errorf("snapshot claims %d records in %d bytes", count, len(body))
	}

	records := make([][]byte, 0, count)

	for i := uint64(0); i < count; i++ {
		if len(body) < 4 {
			return nil, fmt.Errorf("snapshot truncated at record %d", i)
		}

		n := binary.BigEndian.Uint32(body[:4])
		body = body[4:]

		if uint64(len(body)) < uint64(n) {
			return nil, fmt.Errorf("snapshot record %d truncated", i)
		}

		records = append(records, body[:n])
		body = body[n:]
	}

	if len(body) != 0 {
		return nil, fmt.Errorf("snapshot has %d trailing bytes", len(body))
	}

	return records, nil
}

// compress compresses snapshot data using zstd.
func compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create encoder:\n%w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

// decompress reverses compress, refusing output larger than maxSize.
func decompress(data []byte, maxSize uint64) ([]byte, error) {
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxSize),
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("create decoder:\n%w", err)
	}
	defer decoder.Close()

	return decoder.DecodeAll(data, nil)
}
