package verifier

import (
	"errors"

	"VoteBridge/internal/registry"
)

var (
	// ErrInvalidSignerCount is returned at construction when the registry size is wrong.
	ErrInvalidSignerCount = registry.ErrInvalidSignerCount

	// ErrInsufficientSignatures is returned when a proof has fewer than N signatures.
	ErrInsufficientSignatures = errors.New("insufficient signatures")

	// ErrUnexpectedSignatures is returned when a proof has more than N signatures.
	ErrUnexpectedSignatures = errors.New("unexpected signatures")

	// ErrSignatureVerificationFailed is returned when a signature does not recover
	// to the signer registered at its position, or cannot be recovered at all.
	ErrSignatureVerificationFailed = errors.New("signature verification failed")

	// ErrDuplicateResult is returned under RejectReplays for an already accepted vote id.
	ErrDuplicateResult = errors.New("duplicate result")
)

// Reasons reported to submitters. They are stable and part of the API.
const (
	ReasonInvalidSignerCount          = "InvalidSignerCount"
	ReasonInsufficientSignatures      = "InsufficientSignatures"
	ReasonUnexpectedSignatures        = "UnexpectedSignatures"
	ReasonSignatureVerificationFailed = "SignatureVerificationFailed"
	ReasonDuplicateResult             = "DuplicateResult"
	ReasonInternal                    = "Internal"
)

// Reason maps an error returned by this package to its reason string.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSignerCount):
		return ReasonInvalidSignerCount
	case errors.Is(err, ErrInsufficientSignatures):
		return ReasonInsufficientSignatures
	case errors.Is(err, ErrUnexpectedSignatures):
		return ReasonUnexpectedSignatures
	case errors.Is(err, ErrSignatureVerificationFailed):
		return ReasonSignatureVerificationFailed
	case errors.Is(err, ErrDuplicateResult):
		return ReasonDuplicateResult
	default:
		return ReasonInternal
	}
}

// IsRejection reports whether err is a proof rejection rather than an internal failure.
func IsRejection(err error) bool {
	switch Reason(err) {
	case ReasonInsufficientSignatures, ReasonUnexpectedSignatures,
		ReasonSignatureVerificationFailed, ReasonDuplicateResult:
		return true
	default:
		return false
	}
}
