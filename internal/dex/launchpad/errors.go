package launchpad

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrMalformedAccount is returned for buffers that are too short or structurally invalid.
	ErrMalformedAccount = errors.New("malformed account")

	// ErrUnexpectedOwner is returned when an account is not owned by the expected program.
	ErrUnexpectedOwner = errors.New("unexpected account owner")

	// ErrAccountNotFound is returned when a fetched account has no data.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidDiscriminator is returned for empty or oversized instruction tags.
	ErrInvalidDiscriminator = errors.New("invalid discriminator")
)

// CheckOwner verifies the owning program of an account before it is decoded.
func CheckOwner(owner, expected solana.PublicKey) error {
	if !owner.Equals(expected) {
		return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedOwner, expected, owner)
	}
	return nil
}
