package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Auction errors
var (
	// ErrAuctionNotFound is returned when no auction matches the given id.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrNotEnoughPartners is returned when fewer than two invited partner ids
	// resolve to live providers.
	ErrNotEnoughPartners = errors.New("auction requires at least 2 partners")

	// ErrInsufficientOffers is returned when completion is requested before
	// the minimum offer count has been reached.
	ErrInsufficientOffers = errors.New("insufficient offers to complete auction")

	// ErrAuctionFinal is returned when a transition is attempted on an auction
	// that already reached a terminal status.
	ErrAuctionFinal = errors.New("auction is in a terminal status")
)

// Application / partner errors
var (
	// ErrApplicationNotFound is returned when the referenced financing
	// application does not exist.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrPartnerNotFound is returned when no partner matches the given id.
	ErrPartnerNotFound = errors.New("partner not found")
)

// Normalization errors
var (
	// ErrInvalidTenure is returned when an offer's tenure is zero or negative.
	ErrInvalidTenure = errors.New("offer tenure must be positive")

	// ErrInvalidPrincipal is returned when an offer's principal is not positive.
	ErrInvalidPrincipal = errors.New("offer principal must be positive")

	// ErrFeeExceedsPrincipal is returned when the processing fee leaves no net
	// disbursed amount to annualize against.
	ErrFeeExceedsPrincipal = errors.New("processing fee exceeds principal")
)

// Auth errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenInvalid is returned when a token cannot be parsed or its
	// signature does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrAuctionNotFound,
	ErrApplicationNotFound,
	ErrPartnerNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values
// directly when translating domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsInvalidArgument returns true for errors that represent a structural
// problem with the request rather than a missing entity.
func IsInvalidArgument(err error) bool {
	invalidErrors := []error{
		ErrNotEnoughPartners,
		ErrInsufficientOffers,
		ErrAuctionFinal,
		ErrInvalidTenure,
		ErrInvalidPrincipal,
		ErrFeeExceedsPrincipal,
	}
	for _, target := range invalidErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
