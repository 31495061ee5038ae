package collector

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"VoteBridge/internal/attest"
)

func TestRequestRoundTrip(t *testing.T) {
	req := &SignRequest{Result: attest.VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50}}
	req.Origin[0] = 0x03
	req.Origin[20] = 0x42

	data := EncodeRequest(req)
	if len(data) != 34 {
		t.Fatalf("encoded size = %d, want 34", len(data))
	}

	want := []byte{0, 0, 0, 1, 0, 0, 0, 101, 0, 0, 0, 50}
	if !bytes.Equal(data[22:], want) {
		t.Errorf("tally bytes = %x, want %x", data[22:], want)
	}

	got, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}

	if *got != *req {
		t.Errorf("decoded %+v, want %+v", got, req)
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	valid := EncodeRequest(&SignRequest{})

	if _, err := DecodeRequest(valid[:10]); err == nil {
		t.Error("short request should fail")
	}

	wrongType := append([]byte{}, valid...)
	wrongType[0] = msgTypePositive
	if _, err := DecodeRequest(wrongType); err == nil {
		t.Error("wrong type should fail")
	}
}

func TestPositiveResponseRoundTrip(t *testing.T) {
	resp := &PositiveResponse{Digest: common.HexToHash("0x6153f2bba26133502f762056f49cfd6f1e3141be2dc305cb03046ba266cf4e6e")}
	resp.Signature[0] = 0xAA
	resp.Signature[64] = 28

	data := EncodePositiveResponse(resp)
	if len(data) != 98 {
		t.Fatalf("encoded size = %d, want 98", len(data))
	}

	got, err := DecodePositiveResponse(data)
	if err != nil {
		t.Fatalf("DecodePositiveResponse failed: %v", err)
	}

	if *got != *resp {
		t.Errorf("decoded %+v, want %+v", got, resp)
	}

	if _, err := DecodePositiveResponse(data[:97]); err == nil {
		t.Error("truncated response should fail")
	}
}

func TestNegativeResponse(t *testing.T) {
	data := EncodeNegativeResponse(ReasonResultMismatch)

	reason, err := DecodeNegativeResponse(data)
	if err != nil {
		t.Fatalf("DecodeNegativeResponse failed: %v", err)
	}

	if reason != ReasonResultMismatch {
		t.Errorf("reason = %d, want %d", reason, ReasonResultMismatch)
	}

	if ReasonString(reason) != "result mismatch" {
		t.Errorf("ReasonString = %q", ReasonString(reason))
	}

	if _, err := DecodeNegativeResponse([]byte{msgTypePositive, 1}); err == nil {
		t.Error("wrong type should fail")
	}
}
