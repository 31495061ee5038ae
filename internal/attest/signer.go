package attest

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer produces attestations with a secp256k1 key.
type Signer struct {
	key     *ecdsa.PrivateKey // key is the attestor's private key
	address common.Address    // address is derived from key's public half
}

// NewSigner wraps an existing private key.
func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// GenerateSigner creates a signer with a fresh random key.
func GenerateSigner() (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key:\n%w", err)
	}

	return NewSigner(key), nil
}

// Address returns the signer identity registered on the verifying side.
func (s *Signer) Address() common.Address {
	return s.address
}

// CompressedPublicKey returns the 33-byte compressed public key.
func (s *Signer) CompressedPublicKey() []byte {
	return crypto.CompressPubkey(&s.key.PublicKey)
}

// PrivateKey returns the underlying key.
func (s *Signer) PrivateKey() *ecdsa.PrivateKey {
	return s.key
}

// SignDigest signs a 32-byte digest and returns it with v in EVM form.
func (s *Signer) SignDigest(digest common.Hash) (Signature, error) {
	raw, err := crypto.Sign(digest[:], s.key)
	if err != nil {
		return Signature{}, fmt.Errorf("sign digest:\n%w", err)
	}

	raw[recoveryIDIndex] += evmRecoveryOffset

	return SignatureFromBytes(raw)
}

// Attest signs the digest binding r to origin.
func (s *Signer) Attest(origin OriginID, r VoteResult) (Signature, error) {
	return s.SignDigest(ComputeDigest(origin, r))
}
