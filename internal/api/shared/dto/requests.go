package dto

import (
	"fmt"

	"github.com/mintbay/marketplace/internal/domain"
)

// RegisterUserRequest registers (or looks up) a user by wallet address
type RegisterUserRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Name          string `json:"name"`
}

// Validate checks the request fields
func (r *RegisterUserRequest) Validate() error {
	if !domain.IsEthereumAddress(r.WalletAddress) {
		return fmt.Errorf("invalid wallet address: %s", r.WalletAddress)
	}
	return nil
}

// CreateCollectionRequest registers a deployed NFT contract
type CreateCollectionRequest struct {
	ChainID         int64  `json:"chain_id" binding:"required"`
	ContractAddress string `json:"contract_address" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Symbol          string `json:"symbol" binding:"required"`
}

// Validate checks the request fields
func (r *CreateCollectionRequest) Validate() error {
	if !domain.IsEthereumAddress(r.ContractAddress) {
		return fmt.Errorf("invalid contract address: %s", r.ContractAddress)
	}
	if r.ChainID <= 0 {
		return fmt.Errorf("invalid chain id: %d", r.ChainID)
	}
	return nil
}

// MintNFTRequest creates a token record for a user. On the register path
// (POST /nfts) CollectionID and TokenNumber are required; on the mint path
// (POST /nfts/mint) the contract assigns the token number and an omitted
// CollectionID falls back to the bound contract's default collection.
type MintNFTRequest struct {
	CollectionID int64  `json:"collection_id"`
	OwnerID      int64  `json:"owner_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	TokenNumber  string `json:"token_id"`
}

// Validate checks the request fields
func (r *MintNFTRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.CollectionID < 0 {
		return fmt.Errorf("invalid collection id: %d", r.CollectionID)
	}
	return nil
}

// CreateListingRequest offers an NFT for sale at a fixed price
type CreateListingRequest struct {
	NFTID    int64  `json:"nft_id" binding:"required"`
	SellerID int64  `json:"seller_user_id" binding:"required"`
	PriceWei string `json:"price_wei" binding:"required"`
	Currency string `json:"currency"`
}

// Validate checks the request fields
func (r *CreateListingRequest) Validate() error {
	if !domain.ValidPriceWei(r.PriceWei) {
		return fmt.Errorf("price_wei must be a positive base-10 integer, got %q", r.PriceWei)
	}
	return nil
}

// PlaceOrderRequest places an order against an active listing
type PlaceOrderRequest struct {
	ListingID int64 `json:"listing_id" binding:"required"`
	BuyerID   int64 `json:"buyer_user_id" binding:"required"`
}

// Validate checks the request fields
func (r *PlaceOrderRequest) Validate() error {
	if r.ListingID <= 0 {
		return fmt.Errorf("invalid listing id: %d", r.ListingID)
	}
	if r.BuyerID <= 0 {
		return fmt.Errorf("invalid buyer id: %d", r.BuyerID)
	}
	return nil
}

// ConfirmOrderRequest confirms a pending order with its settlement tx hash
type ConfirmOrderRequest struct {
	TxHash string `json:"tx_hash" binding:"required"`
}

// Validate checks the request fields
func (r *ConfirmOrderRequest) Validate() error {
	if r.TxHash == "" {
		return fmt.Errorf("tx_hash is required")
	}
	return nil
}

// FailOrderRequest fails a pending order, releasing its reservation
type FailOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelListingRequest cancels an active listing
type CancelListingRequest struct {
	SellerID int64 `json:"seller_user_id" binding:"required"`
}
