package attest

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// testOrigin is the origin contract used by the reference scenario.
const testOrigin = "0x030000000000000000000000000000000000424242"

// mustOrigin parses an origin id or fails the test.
func mustOrigin(t *testing.T, s string) OriginID {
	t.Helper()

	id, err := ParseOriginID(s)
	if err != nil {
		t.Fatalf("parse origin: %v", err)
	}

	return id
}

func TestEncodePackedLayout(t *testing.T) {
	origin := mustOrigin(t, testOrigin)

	got := EncodePacked(origin, VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50})

	want, _ := hex.DecodeString("5a4b5f5245414c5f4154544553544154494f4e" + // ZK_REAL_ATTESTATION
		"030000000000000000000000000000000000424242" + // origin
		"00000001" + "00000065" + "00000032")

	if !bytes.Equal(got, want) {
		t.Errorf("packed encoding mismatch:\n got %x\nwant %x", got, want)
	}
}

func TestComputeDigestKnownVector(t *testing.T) {
	origin := mustOrigin(t, testOrigin)

	digest := ComputeDigest(origin, VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50})

	want := "0x6153f2bba26133502f762056f49cfd6f1e3141be2dc305cb03046ba266cf4e6e"
	if digest.Hex() != want {
		t.Errorf("digest = %s, want %s", digest.Hex(), want)
	}
}

func TestComputeDigestDeterministic(t *testing.T) {
	origin := mustOrigin(t, testOrigin)
	r := VoteResult{VoteID: 7, VotesFor: 3, VotesAgainst: 9}

	if ComputeDigest(origin, r) != ComputeDigest(origin, r) {
		t.Error("digest should be deterministic")
	}
}

func TestComputeDigestSensitivity(t *testing.T) {
	origin := mustOrigin(t, testOrigin)
	base := VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 50}
	baseDigest := ComputeDigest(origin, base)

	otherOrigin := origin
	otherOrigin[0] = 0x02

	variants := map[string][32]byte{
		"voteId":       ComputeDigest(origin, VoteResult{VoteID: 2, VotesFor: 101, VotesAgainst: 50}),
		"votesFor":     ComputeDigest(origin, VoteResult{VoteID: 1, VotesFor: 102, VotesAgainst: 50}),
		"votesAgainst": ComputeDigest(origin, VoteResult{VoteID: 1, VotesFor: 101, VotesAgainst: 51}),
		"origin":       ComputeDigest(otherOrigin, base),
	}

	for field, d := range variants {
		if d == baseDigest {
			t.Errorf("changing %s did not change the digest", field)
		}
	}

	want := "0x228a9ebbe724f947633a19be37b20157b9e464d26f989dd49b1c3cd994158405"
	if got := ComputeDigest(origin, VoteResult{VoteID: 1, VotesFor: 102, VotesAgainst: 50}); got.Hex() != want {
		t.Errorf("altered digest = %s, want %s", got.Hex(), want)
	}
}

func TestParseOriginID(t *testing.T) {
	id := mustOrigin(t, testOrigin)

	if id.Hex() != testOrigin {
		t.Errorf("Hex() = %s, want %s", id.Hex(), testOrigin)
	}

	if _, err := ParseOriginID("030000000000000000000000000000000000424242"); err != nil {
		t.Errorf("unprefixed origin should parse: %v", err)
	}

	if _, err := ParseOriginID("0x0300"); err == nil {
		t.Error("short origin should be rejected")
	}

	if _, err := ParseOriginID("0xzz0000000000000000000000000000000000424242"); err == nil {
		t.Error("non-hex origin should be rejected")
	}
}
