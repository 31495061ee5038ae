package collector

import (
	"testing"

	"VoteBridge/internal/attest"
)

// mapSource is a Source backed by a map.
type mapSource map[uint32]attest.VoteResult

func (m mapSource) Result(voteID uint32) (attest.VoteResult, bool) {
	r, ok := m[voteID]
	return r, ok
}

var testResult = attest.VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50}

// newTestHandler returns a handler that knows testResult.
func newTestHandler(t *testing.T) (*Handler, *attest.Signer, attest.OriginID) {
	t.Helper()

	signer, err := attest.GenerateSigner()
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}

	o, err := attest.ParseOriginID("0x030000000000000000000000000000000000424242")
	if err != nil {
		t.Fatalf("parse origin: %v", err)
	}

	return NewHandler(o, mapSource{1: testResult}, signer), signer, o
}

func TestHandlerSignsKnownResult(t *testing.T) {
	h, signer, o := newTestHandler(t)

	data, err := h.process(&SignRequest{Origin: o, Result: testResult})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	resp, err := DecodePositiveResponse(data)
	if err != nil {
		t.Fatalf("expected positive response: %v", err)
	}

	if resp.Digest != attest.ComputeDigest(o, testResult) {
		t.Errorf("digest = %s", resp.Digest.Hex())
	}

	addr, err := attest.RecoverAddress(resp.Digest, resp.Signature[:])
	if err != nil {
		t.Fatalf("recover: %v", err)
	}

	if addr != signer.Address() {
		t.Errorf("recovered %s, want %s", addr.Hex(), signer.Address().Hex())
	}
}

func TestHandlerRefusals(t *testing.T) {
	h, _, o := newTestHandler(t)

	var other attest.OriginID
	other[0] = 0x04

	mismatch := testResult
	mismatch.VotesFor = 102

	cases := []struct {
		name string
		req  SignRequest
		want byte
	}{
		{"wrong origin", SignRequest{Origin: other, Result: testResult}, ReasonWrongOrigin},
		{"unknown vote", SignRequest{Origin: o, Result: attest.VoteResult{VoteID: 9}}, ReasonUnknownVote},
		{"mismatch", SignRequest{Origin: o, Result: mismatch}, ReasonResultMismatch},
	}

	for _, tc := range cases {
		data, err := h.process(&tc.req)
		if err != nil {
			t.Fatalf("%s: process failed: %v", tc.name, err)
		}

		reason, err := DecodeNegativeResponse(data)
		if err != nil {
			t.Fatalf("%s: expected negative response: %v", tc.name, err)
		}

		if reason != tc.want {
			t.Errorf("%s: reason = %s, want %s", tc.name, ReasonString(reason), ReasonString(tc.want))
		}
	}
}

func TestHandleRequestRejectsGarbage(t *testing.T) {
	h, _, _ := newTestHandler(t)

	if _, err := h.HandleRequest(nil, []byte{0x01, 0x02}); err == nil {
		t.Error("garbage request should fail")
	}
}
