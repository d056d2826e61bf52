package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrListingConflict is returned when an NFT already has an active listing,
	// or a listing is already reserved by a pending order
	ErrListingConflict = errors.New("listing conflict")

	// ErrAlreadySold is returned when ordering against a listing that is no longer active
	ErrAlreadySold = errors.New("listing already sold or cancelled")

	// ErrNotOwner is returned when the seller does not own the NFT being listed
	ErrNotOwner = errors.New("seller does not own nft")

	// ErrSelfPurchase is returned when a buyer tries to order their own listing
	ErrSelfPurchase = errors.New("seller cannot buy own listing")

	// ErrInvalidState is returned when an operation targets an entity that is
	// not in the required state, e.g. confirming an already-resolved order
	ErrInvalidState = errors.New("invalid state for operation")
)
