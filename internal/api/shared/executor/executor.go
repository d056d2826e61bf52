package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mintbay/marketplace/internal/api/shared/dto"
	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/providers/ethereum"
	"github.com/mintbay/marketplace/internal/store"
)

var (
	// ErrTokenNumberRequired is returned by RegisterNFT when the request does
	// not carry a token number
	ErrTokenNumberRequired = errors.New("token_id is required when registering an existing token")

	// ErrCollectionRequired is returned when no collection is given and no
	// default can be derived
	ErrCollectionRequired = errors.New("collection_id is required")

	// ErrChainUnavailable is returned by MintNFT when the API runs without
	// chain connectivity
	ErrChainUnavailable = errors.New("chain connectivity is not configured")
)

// The collection auto-created for mints that name no collection, keyed by the
// bound NFT contract's chain and address.
const (
	defaultCollectionName   = "Marketplace NFT"
	defaultCollectionSymbol = "MKT"
)

// Executor contains the business logic shared by every API surface
type Executor interface {
	// RegisterUser registers (or looks up) a user by wallet address
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error)
	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id int64) (*dto.UserResponse, error)

	// CreateCollection registers a deployed NFT contract
	CreateCollection(ctx context.Context, req dto.CreateCollectionRequest) (*dto.CollectionResponse, error)
	// GetCollection retrieves a collection by ID
	GetCollection(ctx context.Context, id int64) (*dto.CollectionResponse, error)
	// ListCollections retrieves all collections
	ListCollections(ctx context.Context) (*dto.CollectionsResponse, error)

	// RegisterNFT records an already-minted token
	RegisterNFT(ctx context.Context, req dto.MintNFTRequest) (*dto.NFTResponse, error)
	// MintNFT mints a token on chain and records it
	MintNFT(ctx context.Context, req dto.MintNFTRequest) (*dto.NFTResponse, error)
	// GetNFT retrieves an NFT by ID
	GetNFT(ctx context.Context, id int64) (*dto.NFTResponse, error)
	// ListNFTs retrieves NFTs with optional filters
	ListNFTs(ctx context.Context, ownerID, collectionID *int64, chain *domain.Chain, limit int, offset uint64) (*dto.NFTsResponse, error)

	// CreateListing creates an ACTIVE listing
	CreateListing(ctx context.Context, req dto.CreateListingRequest) (*dto.ListingResponse, error)
	// GetListing retrieves a listing by ID
	GetListing(ctx context.Context, id int64) (*dto.ListingResponse, error)
	// ListListings retrieves ACTIVE listings with optional filters
	ListListings(ctx context.Context, sellerID, collectionID *int64, limit int, offset uint64) (*dto.ListingsResponse, error)
	// CancelListing cancels an ACTIVE listing on behalf of its seller
	CancelListing(ctx context.Context, listingID, sellerID int64) (*dto.ListingResponse, error)

	// PlaceOrder places a PENDING order against a listing
	PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (*dto.OrderResponse, error)
	// GetOrder retrieves an order by ID
	GetOrder(ctx context.Context, id int64) (*dto.OrderResponse, error)
	// ConfirmOrder settles a pending order with its tx hash
	ConfirmOrder(ctx context.Context, orderID int64, txHash string) (*dto.OrderResponse, error)
	// FailOrder fails a pending order, releasing its reservation
	FailOrder(ctx context.Context, orderID int64, reason string) (*dto.OrderResponse, error)

	// GetChanges retrieves activity journal entries
	GetChanges(ctx context.Context, subjectType *domain.JournalSubject, subjectID *int64, afterCursor int64, limit int) (*dto.JournalResponse, error)

	// HealthCheck reports service health
	HealthCheck(ctx context.Context) (*dto.HealthResponse, error)
}

type executor struct {
	store  store.Store
	market ethereum.Market // nil when the API runs without chain connectivity
}

// NewExecutor creates the shared executor. market may be nil.
func NewExecutor(s store.Store, market ethereum.Market) Executor {
	return &executor{store: s, market: market}
}

// RegisterUser registers (or looks up) a user by wallet address
func (e *executor) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error) {
	// Addresses are stored lowercase so lookups are case-insensitive
	user, err := e.store.GetOrCreateUser(ctx, strings.ToLower(req.WalletAddress), req.Name)
	if err != nil {
		return nil, err
	}
	return dto.UserFromSchema(user), nil
}

// GetUser retrieves a user by ID
func (e *executor) GetUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := e.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.UserFromSchema(user), nil
}

// CreateCollection registers a deployed NFT contract
func (e *executor) CreateCollection(ctx context.Context, req dto.CreateCollectionRequest) (*dto.CollectionResponse, error) {
	collection, err := e.store.CreateCollection(ctx, store.CreateCollectionInput{
		Chain:           domain.ChainFromID(req.ChainID),
		ContractAddress: strings.ToLower(req.ContractAddress),
		Name:            req.Name,
		Symbol:          req.Symbol,
	})
	if err != nil {
		return nil, err
	}
	return dto.CollectionFromSchema(collection), nil
}

// GetCollection retrieves a collection by ID
func (e *executor) GetCollection(ctx context.Context, id int64) (*dto.CollectionResponse, error) {
	collection, err := e.store.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.CollectionFromSchema(collection), nil
}

// ListCollections retrieves all collections
func (e *executor) ListCollections(ctx context.Context) (*dto.CollectionsResponse, error) {
	collections, err := e.store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.CollectionsResponse{
		Collections: make([]dto.CollectionResponse, len(collections)),
	}
	for i := range collections {
		resp.Collections[i] = *dto.CollectionFromSchema(&collections[i])
	}
	return resp, nil
}

// RegisterNFT records a token that already exists on chain. The caller supplies
// the token number; no chain interaction happens.
func (e *executor) RegisterNFT(ctx context.Context, req dto.MintNFTRequest) (*dto.NFTResponse, error) {
	if req.TokenNumber == "" {
		return nil, ErrTokenNumberRequired
	}
	if req.CollectionID == 0 {
		return nil, ErrCollectionRequired
	}

	if _, err := e.store.GetUserByID(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	nft, err := e.store.CreateNFT(ctx, store.CreateNFTInput{
		CollectionID: req.CollectionID,
		TokenNumber:  req.TokenNumber,
		OwnerID:      req.OwnerID,
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	return dto.NFTFromSchema(nft), nil
}

// MintNFT mints a token through the bound NFT contract and records it. When
// the request names no collection the bound contract's default collection is
// used, creating it on first mint.
func (e *executor) MintNFT(ctx context.Context, req dto.MintNFTRequest) (*dto.NFTResponse, error) {
	if e.market == nil {
		return nil, ErrChainUnavailable
	}

	owner, err := e.store.GetUserByID(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	collectionID := req.CollectionID
	if collectionID == 0 {
		chainID, err := e.market.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve chain id: %w", err)
		}
		collection, err := e.store.FindOrCreateDefaultCollection(ctx,
			domain.ChainFromID(chainID.Int64()),
			strings.ToLower(e.market.NFTAddress()),
			defaultCollectionName, defaultCollectionSymbol)
		if err != nil {
			return nil, err
		}
		collectionID = collection.ID
	}

	result, err := e.market.Mint(ctx, owner.WalletAddress, req.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint on chain: %w", err)
	}

	nft, err := e.store.CreateNFT(ctx, store.CreateNFTInput{
		CollectionID: collectionID,
		TokenNumber:  result.TokenNumber,
		OwnerID:      req.OwnerID,
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		MintTxHash:   &result.TxHash,
	})
	if err != nil {
		return nil, err
	}
	return dto.NFTFromSchema(nft), nil
}

// GetNFT retrieves an NFT by ID
func (e *executor) GetNFT(ctx context.Context, id int64) (*dto.NFTResponse, error) {
	nft, err := e.store.GetNFTByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NFTFromSchema(nft), nil
}

// ListNFTs retrieves NFTs with optional filters
func (e *executor) ListNFTs(ctx context.Context, ownerID, collectionID *int64, chain *domain.Chain, limit int, offset uint64) (*dto.NFTsResponse, error) {
	nfts, total, err := e.store.ListNFTs(ctx, store.NFTQueryFilter{
		OwnerID:      ownerID,
		CollectionID: collectionID,
		Chain:        chain,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.NFTsResponse{
		NFTs:   make([]dto.NFTResponse, len(nfts)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i := range nfts {
		resp.NFTs[i] = *dto.NFTFromSchema(&nfts[i])
	}
	return resp, nil
}

// CreateListing creates an ACTIVE listing
func (e *executor) CreateListing(ctx context.Context, req dto.CreateListingRequest) (*dto.ListingResponse, error) {
	listing, err := e.store.CreateListing(ctx, store.CreateListingInput{
		NFTID:    req.NFTID,
		SellerID: req.SellerID,
		PriceWei: req.PriceWei,
		Currency: req.Currency,
	})
	if err != nil {
		return nil, err
	}
	return dto.ListingFromSchema(listing), nil
}

// GetListing retrieves a listing by ID
func (e *executor) GetListing(ctx context.Context, id int64) (*dto.ListingResponse, error) {
	listing, err := e.store.GetListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ListingFromSchema(listing), nil
}

// ListListings retrieves ACTIVE listings with optional filters
func (e *executor) ListListings(ctx context.Context, sellerID, collectionID *int64, limit int, offset uint64) (*dto.ListingsResponse, error) {
	listings, total, err := e.store.ListActiveListings(ctx, store.ListingQueryFilter{
		SellerID:     sellerID,
		CollectionID: collectionID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ListingsResponse{
		Listings: make([]dto.ListingResponse, len(listings)),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
	for i := range listings {
		resp.Listings[i] = *dto.ListingFromSchema(&listings[i])
	}
	return resp, nil
}

// CancelListing cancels an ACTIVE listing on behalf of its seller
func (e *executor) CancelListing(ctx context.Context, listingID, sellerID int64) (*dto.ListingResponse, error) {
	listing, err := e.store.CancelListing(ctx, listingID, sellerID)
	if err != nil {
		return nil, err
	}
	return dto.ListingFromSchema(listing), nil
}

// PlaceOrder places a PENDING order against a listing
func (e *executor) PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (*dto.OrderResponse, error) {
	order, err := e.store.PlaceOrder(ctx, store.PlaceOrderInput{
		ListingID: req.ListingID,
		BuyerID:   req.BuyerID,
	})
	if err != nil {
		return nil, err
	}
	return dto.OrderFromSchema(order), nil
}

// GetOrder retrieves an order by ID
func (e *executor) GetOrder(ctx context.Context, id int64) (*dto.OrderResponse, error) {
	order, err := e.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.OrderFromSchema(order), nil
}

// ConfirmOrder settles a pending order with its tx hash
func (e *executor) ConfirmOrder(ctx context.Context, orderID int64, txHash string) (*dto.OrderResponse, error) {
	order, err := e.store.ConfirmOrder(ctx, orderID, txHash)
	if err != nil {
		return nil, err
	}
	return dto.OrderFromSchema(order), nil
}

// FailOrder fails a pending order, releasing its reservation
func (e *executor) FailOrder(ctx context.Context, orderID int64, reason string) (*dto.OrderResponse, error) {
	if reason == "" {
		reason = store.FailureReasonReleased
	}
	order, err := e.store.FailOrder(ctx, orderID, reason)
	if err != nil {
		return nil, err
	}
	return dto.OrderFromSchema(order), nil
}

// GetChanges retrieves activity journal entries
func (e *executor) GetChanges(ctx context.Context, subjectType *domain.JournalSubject, subjectID *int64, afterCursor int64, limit int) (*dto.JournalResponse, error) {
	entries, err := e.store.ListJournal(ctx, store.JournalQueryFilter{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		AfterCursor: afterCursor,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.JournalResponse{
		Entries: make([]dto.JournalEntryResponse, len(entries)),
	}
	for i := range entries {
		resp.Entries[i] = dto.JournalEntryFromSchema(&entries[i])
	}
	return resp, nil
}

// HealthCheck reports service health
func (e *executor) HealthCheck(ctx context.Context) (*dto.HealthResponse, error) {
	resp := &dto.HealthResponse{Status: "ok", Database: "ok"}
	if err := e.store.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}
	return resp, nil
}
