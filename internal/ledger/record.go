package ledger

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/zeebo/blake3"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/types"
)

// Entry is one accepted result as stored in the log.
type Entry struct {
	Index      uint64             // Index is the position in append order
	Result     attest.VoteResult  // Result is the accepted tally
	Digest     common.Hash        // Digest is the attestation digest the proof signs
	Proof      []attest.Signature // Proof holds the signatures in registry order
	AcceptedAt time.Time          // AcceptedAt is when the entry was appended
	PrevHash   [32]byte           // PrevHash is the blake3 hash of the previous record
}

// encodeRecord serializes an entry as a ResultEntry flatbuffer.
func encodeRecord(e *Entry) []byte {
	builder := flatbuffers.NewBuilder(256 + len(e.Proof)*attest.SignatureLength)

	proof := make([]byte, 0, len(e.Proof)*attest.SignatureLength)
	for _, sig := range e.Proof {
		proof = append(proof, sig[:]...)
	}

	prevVec := builder.CreateByteVector(e.PrevHash[:])
	proofVec := builder.CreateByteVector(proof)
	digestVec := builder.CreateByteVector(e.Digest[:])

	types.ResultEntryStart(builder)
	types.ResultEntryAddIndex(builder, e.Index)
	types.ResultEntryAddVoteId(builder, e.Result.VoteID)
	types.ResultEntryAddVotesFor(builder, e.Result.VotesFor)
	types.ResultEntryAddVotesAgainst(builder, e.Result.VotesAgainst)
	types.ResultEntryAddDigest(builder, digestVec)
	types.ResultEntryAddProof(builder, proofVec)
	types.ResultEntryAddAcceptedAt(builder, e.AcceptedAt.UnixNano())
	types.ResultEntryAddPrevHash(builder, prevVec)
	builder.Finish(types.ResultEntryEnd(builder))

	return builder.FinishedBytes()
}

// decodeRecord parses a stored ResultEntry flatbuffer.
func decodeRecord(data []byte) (e *Entry, err error) {
	// Flatbuffer accessors panic on truncated input.
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, fmt.Errorf("corrupt record: %v", r)
		}
	}()

	if len(data) < 8 {
		return nil, fmt.Errorf("record too short: %d bytes", len(data))
	}

	rec := types.GetRootAsResultEntry(data, 0)

	digest := rec.DigestBytes()
	if len(digest) != common.HashLength {
		return nil, fmt.Errorf("invalid digest length: %d", len(digest))
	}

	prev := rec.PrevHashBytes()
	if len(prev) != 32 {
		return nil, fmt.Errorf("invalid prev hash length: %d", len(prev))
	}

	proof := rec.ProofBytes()
	if len(proof)%attest.SignatureLength != 0 {
		return nil, fmt.Errorf("invalid proof length: %d", len(proof))
	}

	e = &Entry{
		Index: rec.Index(),
		Result: attest.VoteResult{
			VoteID:       rec.VoteId(),
			VotesFor:     rec.VotesFor(),
			VotesAgainst: rec.VotesAgainst(),
		},
		Digest:     common.BytesToHash(digest),
		Proof:      make([]attest.Signature, len(proof)/attest.SignatureLength),
		AcceptedAt: time.Unix(0, rec.AcceptedAt()).UTC(),
	}
	copy(e.PrevHash[:], prev)

	for i := range e.Proof {
		copy(e.Proof[i][:], proof[i*attest.SignatureLength:])
	}

	return e, nil
}

// hashRecord returns the chain link for a stored record.
func hashRecord(data []byte) [32]byte {
	return blake3.Sum256(data)
}
