package registry

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Encoding names how a public key is serialized as text.
type Encoding string

const (
	EncodingBase64 Encoding = "base64"
	EncodingHex    Encoding = "hex"
)

// ParseEncoding validates an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(s)) {
	case EncodingBase64:
		return EncodingBase64, nil
	case EncodingHex:
		return EncodingHex, nil
	default:
		return "", fmt.Errorf("unknown public key encoding %q", s)
	}
}

// AddressFromPublicKey derives the account address of an encoded secp256k1 key.
// Both compressed (33 bytes) and uncompressed (65 bytes) forms are accepted.
func AddressFromPublicKey(encoded string, enc Encoding) (common.Address, error) {
	raw, err := decodeKey(strings.TrimSpace(encoded), enc)
	if err != nil {
		return common.Address{}, err
	}

	pub, err := unmarshalPublicKey(raw)
	if err != nil {
		return common.Address{}, err
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// decodeKey turns text into raw key bytes.
func decodeKey(s string, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decode base64 key:\n%w", err)
		}
		return raw, nil
	case EncodingHex:
		raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, fmt.Errorf("decode hex key:\n%w", err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown public key encoding %q", enc)
	}
}

// unmarshalPublicKey parses a compressed or uncompressed secp256k1 point.
func unmarshalPublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	switch len(raw) {
	case 33:
		pub, err := crypto.DecompressPubkey(raw)
		if err != nil {
			return nil, fmt.Errorf("decompress public key:\n%w", err)
		}
		return pub, nil
	case 65:
		pub, err := crypto.UnmarshalPubkey(raw)
		if err != nil {
			return nil, fmt.Errorf("unmarshal public key:\n%w", err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("public key must be 33 or 65 bytes, got %d", len(raw))
	}
}
