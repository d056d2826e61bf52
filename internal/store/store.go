package store

import (
	"context"
	"time"

	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/store/schema"
)

// CreateCollectionInput holds the fields needed to register a collection
type CreateCollectionInput struct {
	Chain           domain.Chain
	ContractAddress string
	Name            string
	Symbol          string
}

// CreateNFTInput holds the fields needed to record a minted token
type CreateNFTInput struct {
	CollectionID int64
	TokenNumber  string
	OwnerID      int64
	Name         string
	Description  string
	ImageURL     string
	MintTxHash   *string
}

// NFTQueryFilter filters the NFT listing query
type NFTQueryFilter struct {
	OwnerID      *int64
	CollectionID *int64
	Chain        *domain.Chain
	Limit        int
	Offset       uint64
}

// CreateListingInput holds the fields needed to create a listing
type CreateListingInput struct {
	NFTID    int64
	SellerID int64
	PriceWei string
	Currency string
}

// ListingQueryFilter filters the active-listings query
type ListingQueryFilter struct {
	SellerID     *int64
	CollectionID *int64
	Limit        int
	Offset       uint64
}

// PlaceOrderInput holds the fields needed to place an order
type PlaceOrderInput struct {
	ListingID int64
	BuyerID   int64
}

// JournalQueryFilter filters the activity journal query
type JournalQueryFilter struct {
	SubjectType *domain.JournalSubject
	SubjectID   *int64
	AfterCursor int64
	Limit       int
}

// Store defines the interface for database operations
type Store interface {
	// GetOrCreateUser returns the user for a wallet address, creating it with
	// the display name on first sight
	GetOrCreateUser(ctx context.Context, walletAddress, name string) (*schema.User, error)
	// GetUserByID retrieves a user by its internal ID
	GetUserByID(ctx context.Context, id int64) (*schema.User, error)

	// CreateCollection registers a deployed NFT contract
	CreateCollection(ctx context.Context, input CreateCollectionInput) (*schema.Collection, error)
	// GetCollectionByID retrieves a collection by its internal ID
	GetCollectionByID(ctx context.Context, id int64) (*schema.Collection, error)
	// ListCollections retrieves all collections, oldest first
	ListCollections(ctx context.Context) ([]schema.Collection, error)
	// FindOrCreateDefaultCollection returns the collection for a contract,
	// creating it with the given identity on first sight
	FindOrCreateDefaultCollection(ctx context.Context, chain domain.Chain, contractAddress, name, symbol string) (*schema.Collection, error)

	// CreateNFT records a minted token
	CreateNFT(ctx context.Context, input CreateNFTInput) (*schema.NFT, error)
	// GetNFTByID retrieves an NFT by its internal ID
	GetNFTByID(ctx context.Context, id int64) (*schema.NFT, error)
	// ListNFTs retrieves NFTs matching the filter, newest first
	ListNFTs(ctx context.Context, filter NFTQueryFilter) ([]schema.NFT, uint64, error)

	// CreateListing creates an ACTIVE listing for an NFT owned by the seller.
	// Returns domain.ErrNotOwner when the seller does not own the NFT and
	// domain.ErrListingConflict when the NFT already has an active listing.
	CreateListing(ctx context.Context, input CreateListingInput) (*schema.Listing, error)
	// GetListingByID retrieves a listing with its NFT and seller preloaded
	GetListingByID(ctx context.Context, id int64) (*schema.Listing, error)
	// ListActiveListings retrieves ACTIVE listings matching the filter, newest first
	ListActiveListings(ctx context.Context, filter ListingQueryFilter) ([]schema.Listing, uint64, error)
	// CancelListing cancels an ACTIVE, unreserved listing owned by the seller
	CancelListing(ctx context.Context, listingID int64, sellerID int64) (*schema.Listing, error)

	// PlaceOrder creates a PENDING order and reserves the listing for it.
	// The reservation is exclusive: while it holds, no other order can be
	// placed against the listing.
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*schema.Order, error)
	// GetOrderByID retrieves an order with its listing preloaded
	GetOrderByID(ctx context.Context, id int64) (*schema.Order, error)
	// ConfirmOrder settles a PENDING order: the order becomes CONFIRMED, the
	// listing SOLD, and NFT ownership moves to the buyer, atomically.
	// Re-confirming with the same tx hash is a no-op returning the order.
	ConfirmOrder(ctx context.Context, orderID int64, txHash string) (*schema.Order, error)
	// FailOrder marks a PENDING order FAILED and releases its reservation
	FailOrder(ctx context.Context, orderID int64, reason string) (*schema.Order, error)
	// ExpireStaleOrders fails PENDING orders created before the cutoff in one
	// pass, returning the IDs of the orders it expired. The sweeper does not
	// use this; it fans ListStaleOrderIDs results out to FailOrder instead.
	ExpireStaleOrders(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)

	// ListStaleOrderIDs returns IDs of PENDING orders created before the cutoff,
	// oldest first
	ListStaleOrderIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)

	// ListJournal retrieves activity journal entries ordered by cursor
	ListJournal(ctx context.Context, filter JournalQueryFilter) ([]schema.ActivityJournal, error)

	// Ping verifies database connectivity
	Ping(ctx context.Context) error
}
