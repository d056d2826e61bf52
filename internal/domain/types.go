package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	// ChainLocalDev is the local development chain (hardhat-style, chain ID 1337)
	ChainLocalDev Chain = "eip155:1337"
	// ChainEthereumMainnet represents Ethereum mainnet
	ChainEthereumMainnet Chain = "eip155:1"
	// ChainEthereumSepolia represents Ethereum Sepolia testnet
	ChainEthereumSepolia Chain = "eip155:11155111"
)

// ChainFromID builds a CAIP-2 chain identifier from a numeric chain ID
func ChainFromID(id int64) Chain {
	return Chain(fmt.Sprintf("eip155:%d", id))
}

// IsDevelopment reports whether the chain is a throwaway development network.
// Deployment output with embedded private keys is only permitted on these.
func (c Chain) IsDevelopment() bool {
	return c == ChainLocalDev
}

// ListingStatus represents the lifecycle state of a listing
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "ACTIVE"
	ListingStatusSold      ListingStatus = "SOLD"
	ListingStatusCancelled ListingStatus = "CANCELLED"
)

// Terminal reports whether the listing can no longer change state
func (s ListingStatus) Terminal() bool {
	return s == ListingStatusSold || s == ListingStatusCancelled
}

// OrderStatus represents the lifecycle state of an order.
// Transitions are monotone: PENDING may move to CONFIRMED or FAILED, never back.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// Terminal reports whether the order has reached a final decision
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusFailed
}

// JournalSubject identifies the entity type a journal entry refers to
type JournalSubject string

const (
	JournalSubjectListing JournalSubject = "listing"
	JournalSubjectOrder   JournalSubject = "order"
)

// IsEthereumAddress checks whether s is a well-formed 0x-prefixed EVM address
func IsEthereumAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	return common.IsHexAddress(s)
}

// ValidPriceWei checks that s is a positive base-10 integer. Prices cross every
// boundary as decimal strings in the smallest currency unit so no floating
// point is ever involved.
func ValidPriceWei(s string) bool {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return false
	}
	return n.Sign() > 0
}
