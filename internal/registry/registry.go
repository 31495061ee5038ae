package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultSize is the number of computation nodes attesting each result.
const DefaultSize = 4

var (
	// ErrInvalidSignerCount is returned when the signer list length differs from the registry size.
	ErrInvalidSignerCount = errors.New("invalid signer count")

	// ErrDuplicateSigner is returned when the same identity appears twice.
	ErrDuplicateSigner = errors.New("duplicate signer")

	// ErrZeroSigner is returned for the zero address, which ecrecover yields on failure.
	ErrZeroSigner = errors.New("zero signer address")
)

// Registry is the ordered, immutable list of signer identities.
// Position matters: signature i of a proof must come from Signer(i).
// A Registry is safe for concurrent reads.
type Registry struct {
	signers []common.Address
	index   map[common.Address]int
}

// New builds a registry of exactly size signers.
func New(size int, signers []common.Address) (*Registry, error) {
	if size <= 0 || len(signers) != size {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidSignerCount, size, len(signers))
	}

	r := &Registry{
		signers: make([]common.Address, size),
		index:   make(map[common.Address]int, size),
	}

	for i, addr := range signers {
		if addr == (common.Address{}) {
			return nil, fmt.Errorf("%w: position %d", ErrZeroSigner, i)
		}

		if prev, ok := r.index[addr]; ok {
			return nil, fmt.Errorf("%w: %s at positions %d and %d", ErrDuplicateSigner, addr.Hex(), prev, i)
		}

		r.signers[i] = addr
		r.index[addr] = i
	}

	return r, nil
}

// FromPublicKeys derives signer addresses from encoded public keys and builds a registry.
func FromPublicKeys(size int, keys []string, enc Encoding) (*Registry, error) {
	if len(keys) != size {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidSignerCount, size, len(keys))
	}

	addrs := make([]common.Address, len(keys))

	for i, k := range keys {
		addr, err := AddressFromPublicKey(k, enc)
		if err != nil {
			return nil, fmt.Errorf("signer key %d:\n%w", i, err)
		}

		addrs[i] = addr
	}

	return New(size, addrs)
}

// ParseAddresses decodes hex account addresses.
func ParseAddresses(hexAddrs []string) ([]common.Address, error) {
	addrs := make([]common.Address, len(hexAddrs))

	for i, s := range hexAddrs {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid signer address %d: %q", i, s)
		}

		addrs[i] = common.HexToAddress(s)
	}

	return addrs, nil
}

// Size returns N, the number of signatures a proof must carry.
func (r *Registry) Size() int {
	return len(r.signers)
}

// Signer returns the identity registered at position i.
func (r *Registry) Signer(i int) common.Address {
	return r.signers[i]
}

// Signers returns a copy of the ordered identities.
func (r *Registry) Signers() []common.Address {
	out := make([]common.Address, len(r.signers))
	copy(out, r.signers)

	return out
}

// IndexOf returns the position of addr, or false if it is not registered.
func (r *Registry) IndexOf(addr common.Address) (int, bool) {
	i, ok := r.index[addr]
	return i, ok
}
