package collector

import (
	"fmt"

	"VoteBridge/internal/attest"
	"VoteBridge/internal/logger"
	"VoteBridge/internal/network"
	"VoteBridge/internal/origin"
)

// Handler answers sign requests on an attestor node. It signs only results
// its origin source has produced, for its own origin.
type Handler struct {
	origin attest.OriginID // origin is the contract this attestor serves
	source origin.Source   // source reports the computed results
	signer *attest.Signer  // signer is the attestor's secp256k1 key
}

// NewHandler creates a Handler.
func NewHandler(o attest.OriginID, source origin.Source, signer *attest.Signer) *Handler {
	return &Handler{
		origin: o,
		source: source,
		signer: signer,
	}
}

// HandleRequest decodes a sign request and returns the encoded response.
// It is meant to be registered with network.Node.OnRequest.
func (h *Handler) HandleRequest(peer *network.Peer, data []byte) ([]byte, error) {
	req, err := DecodeRequest(data)
	if err != nil {
		return nil, fmt.Errorf("decode request:\n%w", err)
	}

	resp, err := h.process(req)
	if err != nil {
		return nil, err
	}

	if resp[0] == msgTypeNegative {
		logger.Debug("sign request refused",
			"peer", peer.Address(),
			"voteId", req.Result.VoteID,
			"reason", ReasonString(resp[1]),
		)
	}

	return resp, nil
}

// process checks a request against the source and signs it.
func (h *Handler) process(req *SignRequest) ([]byte, error) {
	if req.Origin != h.origin {
		return EncodeNegativeResponse(ReasonWrongOrigin), nil
	}

	known, ok := h.source.Result(req.Result.VoteID)
	if !ok {
		return EncodeNegativeResponse(ReasonUnknownVote), nil
	}

	if known != req.Result {
		return EncodeNegativeResponse(ReasonResultMismatch), nil
	}

	digest := attest.ComputeDigest(h.origin, req.Result)

	sig, err := h.signer.SignDigest(digest)
	if err != nil {
		return nil, fmt.Errorf("sign vote %d:\n%w", req.Result.VoteID, err)
	}

	return EncodePositiveResponse(&PositiveResponse{Digest: digest, Signature: sig}), nil
}
