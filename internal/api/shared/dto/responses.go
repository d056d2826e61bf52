package dto

import (
	"encoding/json"
	"time"

	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/store/schema"
)

// UserResponse is the wire representation of a user
type UserResponse struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
}

// CollectionResponse is the wire representation of a collection
type CollectionResponse struct {
	ID              int64        `json:"id"`
	Chain           domain.Chain `json:"chain"`
	ContractAddress string       `json:"contract_address"`
	Name            string       `json:"name"`
	Symbol          string       `json:"symbol"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NFTResponse is the wire representation of an NFT
type NFTResponse struct {
	ID           int64     `json:"id"`
	CollectionID int64     `json:"collection_id"`
	TokenNumber  string    `json:"token_id"`
	OwnerID      int64     `json:"owner_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	MintTxHash   *string   `json:"mint_tx_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListingResponse is the wire representation of a listing
type ListingResponse struct {
	ID              int64                `json:"id"`
	NFTID           int64                `json:"nft_id"`
	SellerID        int64                `json:"seller_user_id"`
	PriceWei        string               `json:"price_wei"`
	Currency        string               `json:"currency"`
	Status          domain.ListingStatus `json:"status"`
	ReservedOrderID *int64               `json:"reserved_order_id,omitempty"`
	NFT             *NFTResponse         `json:"nft,omitempty"`
	Seller          *UserResponse        `json:"seller,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// OrderResponse is the wire representation of an order
type OrderResponse struct {
	ID            int64              `json:"id"`
	ListingID     int64              `json:"listing_id"`
	BuyerID       int64              `json:"buyer_user_id"`
	PriceWei      string             `json:"price_wei"`
	Currency      string             `json:"currency"`
	Status        domain.OrderStatus `json:"status"`
	TxHash        *string            `json:"tx_hash,omitempty"`
	FailureReason *string            `json:"failure_reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	ResolvedAt    *time.Time         `json:"resolved_at,omitempty"`
}

// ListingsResponse is a paginated page of listings
type ListingsResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    uint64            `json:"total"`
	Limit    int               `json:"limit"`
	Offset   uint64            `json:"offset"`
}

// CollectionsResponse is the full set of registered collections
type CollectionsResponse struct {
	Collections []CollectionResponse `json:"collections"`
}

// NFTsResponse is a paginated page of NFTs
type NFTsResponse struct {
	NFTs   []NFTResponse `json:"nfts"`
	Total  uint64        `json:"total"`
	Limit  int           `json:"limit"`
	Offset uint64        `json:"offset"`
}

// JournalEntryResponse is the wire representation of an activity journal entry
type JournalEntryResponse struct {
	Cursor      int64                 `json:"cursor"`
	SubjectType domain.JournalSubject `json:"subject_type"`
	SubjectID   int64                 `json:"subject_id"`
	Action      string                `json:"action"`
	ChangedAt   time.Time             `json:"changed_at"`
	Meta        json.RawMessage       `json:"meta,omitempty"`
}

// JournalResponse is a page of journal entries
type JournalResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// UserFromSchema maps a schema user to its wire representation
func UserFromSchema(u *schema.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:            u.ID,
		WalletAddress: u.WalletAddress,
		Name:          u.Name,
		CreatedAt:     u.CreatedAt,
	}
}

// CollectionFromSchema maps a schema collection to its wire representation
func CollectionFromSchema(c *schema.Collection) *CollectionResponse {
	if c == nil {
		return nil
	}
	return &CollectionResponse{
		ID:              c.ID,
		Chain:           c.Chain,
		ContractAddress: c.ContractAddress,
		Name:            c.Name,
		Symbol:          c.Symbol,
		CreatedAt:       c.CreatedAt,
	}
}

// NFTFromSchema maps a schema NFT to its wire representation
func NFTFromSchema(n *schema.NFT) *NFTResponse {
	if n == nil {
		return nil
	}
	return &NFTResponse{
		ID:           n.ID,
		CollectionID: n.CollectionID,
		TokenNumber:  n.TokenNumber,
		OwnerID:      n.OwnerID,
		Name:         n.Name,
		Description:  n.Description,
		ImageURL:     n.ImageURL,
		MintTxHash:   n.MintTxHash,
		CreatedAt:    n.CreatedAt,
	}
}

// ListingFromSchema maps a schema listing to its wire representation.
// Associations are included only when preloaded.
func ListingFromSchema(l *schema.Listing) *ListingResponse {
	if l == nil {
		return nil
	}
	resp := &ListingResponse{
		ID:              l.ID,
		NFTID:           l.NFTID,
		SellerID:        l.SellerID,
		PriceWei:        l.PriceWei,
		Currency:        l.Currency,
		Status:          l.Status,
		ReservedOrderID: l.ReservedOrderID,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
	if l.NFT.ID != 0 {
		resp.NFT = NFTFromSchema(&l.NFT)
	}
	if l.Seller.ID != 0 {
		resp.Seller = UserFromSchema(&l.Seller)
	}
	return resp
}

// OrderFromSchema maps a schema order to its wire representation
func OrderFromSchema(o *schema.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	return &OrderResponse{
		ID:            o.ID,
		ListingID:     o.ListingID,
		BuyerID:       o.BuyerID,
		PriceWei:      o.PriceWei,
		Currency:      o.Currency,
		Status:        o.Status,
		TxHash:        o.TxHash,
		FailureReason: o.FailureReason,
		CreatedAt:     o.CreatedAt,
		ResolvedAt:    o.ResolvedAt,
	}
}

// JournalEntryFromSchema maps a journal entry to its wire representation
func JournalEntryFromSchema(e *schema.ActivityJournal) JournalEntryResponse {
	return JournalEntryResponse{
		Cursor:      e.Cursor,
		SubjectType: e.SubjectType,
		SubjectID:   e.SubjectID,
		Action:      e.Action,
		ChangedAt:   e.ChangedAt,
		Meta:        json.RawMessage(e.Meta),
	}
}
