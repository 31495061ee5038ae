package attest

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DomainSeparator prefixes every attested message.
const DomainSeparator = "ZK_REAL_ATTESTATION"

// packedLength is the size of the packed attestation message.
const packedLength = len(DomainSeparator) + OriginIDLength + 3*4

// EncodePacked returns the exact bytes the attestors sign over:
// separator || origin || be32(voteId) || be32(votesFor) || be32(votesAgainst).
// The layout matches Solidity's abi.encodePacked for (string, bytes21, uint32, uint32, uint32).
func EncodePacked(origin OriginID, r VoteResult) []byte {
	buf := make([]byte, packedLength)

	n := copy(buf, DomainSeparator)
	n += copy(buf[n:], origin[:])

	binary.BigEndian.PutUint32(buf[n:], r.VoteID)
	binary.BigEndian.PutUint32(buf[n+4:], r.VotesFor)
	binary.BigEndian.PutUint32(buf[n+8:], r.VotesAgainst)

	return buf
}

// ComputeDigest returns keccak256(EncodePacked(origin, r)).
func ComputeDigest(origin OriginID, r VoteResult) common.Hash {
	return crypto.Keccak256Hash(EncodePacked(origin, r))
}
