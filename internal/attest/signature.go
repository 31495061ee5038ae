package attest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// SignatureLength is the size of an ECDSA signature (r||s||v).
	SignatureLength = 65

	// recoveryIDIndex is the byte position of v in a signature.
	recoveryIDIndex = 64

	// evmRecoveryOffset is added to v by EVM-style signers.
	evmRecoveryOffset = 27
)

// ErrMalformedSignature is returned for signatures that cannot be decoded or recovered.
var ErrMalformedSignature = errors.New("malformed signature")

// Signature is a recoverable secp256k1 signature in EVM layout, v in {27, 28}.
type Signature [SignatureLength]byte

// SignatureFromBytes copies a 65-byte signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature

	if len(b) != SignatureLength {
		return sig, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedSignature, SignatureLength, len(b))
	}

	copy(sig[:], b)

	return sig, nil
}

// ParseSignatureHex decodes a 0x-prefixed (or bare) 130-character hex signature.
func ParseSignatureHex(s string) (Signature, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	return SignatureFromBytes(raw)
}

// Hex returns the 0x-prefixed r||s||v encoding understood by EVM tooling.
func (s Signature) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

// RecoverAddress returns the account that produced sig over digest.
// v may be given as 0/1 or 27/28.
func RecoverAddress(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedSignature, SignatureLength, len(sig))
	}

	normalized := normalizeSignature(sig)

	r := new(big.Int).SetBytes(normalized[:32])
	s := new(big.Int).SetBytes(normalized[32:64])
	if !crypto.ValidateSignatureValues(normalized[recoveryIDIndex], r, s, false) {
		return common.Address{}, fmt.Errorf("%w: invalid r, s or v", ErrMalformedSignature)
	}

	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// normalizeSignature converts v from EVM format (27/28) to the raw
// recovery id (0/1) go-ethereum expects. Other values are left unchanged
// and rejected by ValidateSignatureValues.
func normalizeSignature(sig []byte) []byte {
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)

	if v := normalized[recoveryIDIndex]; v == evmRecoveryOffset || v == evmRecoveryOffset+1 {
		normalized[recoveryIDIndex] = v - evmRecoveryOffset
	}

	return normalized
}

// FormatProof renders signatures as the proof string stored by the origin
// contract: "[0x<r><s><v>, 0x<r><s><v>, ...]".
func FormatProof(sigs []Signature) string {
	parts := make([]string, len(sigs))
	for i, sig := range sigs {
		parts[i] = sig.Hex()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// SplitProof splits a proof string into its raw elements without decoding
// them. Whitespace and optional quotes around each element are removed.
func SplitProof(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("proof must be enclosed in brackets")
	}

	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, nil
	}

	elems := strings.Split(body, ",")
	for i, elem := range elems {
		elems[i] = strings.Trim(strings.TrimSpace(elem), `"`)
	}

	return elems, nil
}

// ParseProof decodes a proof string produced by FormatProof.
func ParseProof(s string) ([]Signature, error) {
	elems, err := SplitProof(s)
	if err != nil {
		return nil, err
	}

	sigs := make([]Signature, 0, len(elems))

	for i, elem := range elems {
		sig, err := ParseSignatureHex(elem)
		if err != nil {
			return nil, fmt.Errorf("proof element %d:\n%w", i, err)
		}

		sigs = append(sigs, sig)
	}

	return sigs, nil
}
