package attest

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// OriginIDLength is the size of an origin contract identifier.
const OriginIDLength = 21

// OriginID identifies the source-chain contract whose result is attested.
// It is mixed into every digest so signatures cannot be replayed across contracts.
type OriginID [OriginIDLength]byte

// ParseOriginID decodes a 21-byte hex identifier, with or without a 0x prefix.
func ParseOriginID(s string) (OriginID, error) {
	var id OriginID

	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return id, fmt.Errorf("decode origin id:\n%w", err)
	}

	if len(raw) != OriginIDLength {
		return id, fmt.Errorf("origin id must be %d bytes, got %d", OriginIDLength, len(raw))
	}

	copy(id[:], raw)

	return id, nil
}

// Hex returns the 0x-prefixed lowercase hex form.
func (o OriginID) Hex() string {
	return "0x" + hex.EncodeToString(o[:])
}

// String implements fmt.Stringer.
func (o OriginID) String() string {
	return o.Hex()
}

// VoteResult is the outcome of one secret ballot as published by the origin contract.
type VoteResult struct {
	VoteID       uint32 `json:"voteId"`       // VoteID identifies the poll on the origin chain
	VotesFor     uint32 `json:"votesFor"`     // VotesFor is the number of accepting votes
	VotesAgainst uint32 `json:"votesAgainst"` // VotesAgainst is the number of rejecting votes
}

// String implements fmt.Stringer.
func (r VoteResult) String() string {
	return fmt.Sprintf("(%d, %d, %d)", r.VoteID, r.VotesFor, r.VotesAgainst)
}
