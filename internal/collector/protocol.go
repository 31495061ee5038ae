package collector

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"VoteBridge/internal/attest"
)

// Message types of the attestation protocol.
const (
	msgTypeRequest  = 0x01 // request for a signature over a result
	msgTypePositive = 0x02 // digest and signature
	msgTypeNegative = 0x03 // refusal with a reason
)

// Refusal reasons carried by a negative response.
const (
	ReasonUnknownVote    byte = 0x01 // the attestor has no result for the vote id
	ReasonResultMismatch byte = 0x02 // the attestor's tally differs
	ReasonWrongOrigin    byte = 0x03 // the request names another origin
)

const (
	requestSize  = 1 + attest.OriginIDLength + 12
	positiveSize = 1 + common.HashLength + attest.SignatureLength
	negativeSize = 2
)

// SignRequest asks an attestor to sign a result for an origin.
type SignRequest struct {
	Origin attest.OriginID
	Result attest.VoteResult
}

// EncodeRequest encodes a sign request.
// Format: [1B type] [21B origin] [4B voteId] [4B votesFor] [4B votesAgainst]
func EncodeRequest(req *SignRequest) []byte {
	buf := make([]byte, requestSize)
	buf[0] = msgTypeRequest
	copy(buf[1:22], req.Origin[:])
	binary.BigEndian.PutUint32(buf[22:26], req.Result.VoteID)
	binary.BigEndian.PutUint32(buf[26:30], req.Result.VotesFor)
	binary.BigEndian.PutUint32(buf[30:34], req.Result.VotesAgainst)

	return buf
}

// DecodeRequest decodes a sign request.
func DecodeRequest(data []byte) (*SignRequest, error) {
	if len(data) != requestSize {
		return nil, fmt.Errorf("request size %d, want %d", len(data), requestSize)
	}

	if data[0] != msgTypeRequest {
		return nil, fmt.Errorf("invalid message type: 0x%02x", data[0])
	}

	req := &SignRequest{
		Result: attest.VoteResult{
			VoteID:       binary.BigEndian.Uint32(data[22:26]),
			VotesFor:     binary.BigEndian.Uint32(data[26:30]),
			VotesAgainst: binary.BigEndian.Uint32(data[30:34]),
		},
	}
	copy(req.Origin[:], data[1:22])

	return req, nil
}

// PositiveResponse carries the attestor's digest and signature.
type PositiveResponse struct {
	Digest    common.Hash
	Signature attest.Signature
}

// EncodePositiveResponse encodes a positive response.
// Format: [1B type] [32B digest] [65B signature]
func EncodePositiveResponse(resp *PositiveResponse) []byte {
	buf := make([]byte, positiveSize)
	buf[0] = msgTypePositive
	copy(buf[1:33], resp.Digest[:])
	copy(buf[33:], resp.Signature[:])

	return buf
}

// DecodePositiveResponse decodes a positive response.
func DecodePositiveResponse(data []byte) (*PositiveResponse, error) {
	if len(data) != positiveSize {
		return nil, fmt.Errorf("positive response size %d, want %d", len(data), positiveSize)
	}

	if data[0] != msgTypePositive {
		return nil, fmt.Errorf("invalid message type: 0x%02x", data[0])
	}

	resp := &PositiveResponse{}
	copy(resp.Digest[:], data[1:33])
	copy(resp.Signature[:], data[33:])

	return resp, nil
}

// EncodeNegativeResponse encodes a refusal.
// Format: [1B type] [1B reason]
func EncodeNegativeResponse(reason byte) []byte {
	return []byte{msgTypeNegative, reason}
}

// DecodeNegativeResponse returns the reason of a refusal.
func DecodeNegativeResponse(data []byte) (byte, error) {
	if len(data) != negativeSize {
		return 0, fmt.Errorf("negative response size %d, want %d", len(data), negativeSize)
	}

	if data[0] != msgTypeNegative {
		return 0, fmt.Errorf("invalid message type: 0x%02x", data[0])
	}

	return data[1], nil
}

// messageType returns the type byte of an encoded message.
func messageType(data []byte) (byte, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty message")
	}

	return data[0], nil
}

// ReasonString names a refusal reason.
func ReasonString(reason byte) string {
	switch reason {
	case ReasonUnknownVote:
		return "unknown vote"
	case ReasonResultMismatch:
		return "result mismatch"
	case ReasonWrongOrigin:
		return "wrong origin"
	default:
		return fmt.Sprintf("reason 0x%02x", reason)
	}
}
