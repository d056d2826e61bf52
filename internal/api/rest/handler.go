package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mintbay/marketplace/internal/api/shared/dto"
	"github.com/mintbay/marketplace/internal/api/shared/executor"
	"github.com/mintbay/marketplace/internal/domain"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// RegisterUser registers (or looks up) a user by wallet address
	// POST /v1/users
	RegisterUser(c *gin.Context)

	// GetUser retrieves a user by ID
	// GET /v1/users/:id
	GetUser(c *gin.Context)

	// CreateCollection registers a deployed NFT contract
	// POST /v1/collections
	CreateCollection(c *gin.Context)

	// GetCollection retrieves a collection by ID
	// GET /v1/collections/:id
	GetCollection(c *gin.Context)

	// ListCollections retrieves all collections
	// GET /v1/collections
	ListCollections(c *gin.Context)

	// RegisterNFT records an already-minted token with its token number
	// POST /v1/nfts
	RegisterNFT(c *gin.Context)

	// MintNFT mints a token through the bound NFT contract
	// POST /v1/nfts/mint
	MintNFT(c *gin.Context)

	// GetNFT retrieves an NFT by ID
	// GET /v1/nfts/:id
	GetNFT(c *gin.Context)

	// ListNFTs retrieves NFTs with optional filters
	// GET /v1/nfts?owner_id=<id>&collection_id=<id>&chain=<caip2>&limit=<limit>&offset=<offset>
	ListNFTs(c *gin.Context)

	// CreateListing offers an NFT for sale at a fixed price
	// POST /v1/listings
	CreateListing(c *gin.Context)

	// GetListing retrieves a listing by ID
	// GET /v1/listings/:id
	GetListing(c *gin.Context)

	// ListListings retrieves ACTIVE listings with optional filters
	// GET /v1/listings?seller_id=<id>&collection_id=<id>&limit=<limit>&offset=<offset>
	ListListings(c *gin.Context)

	// CancelListing cancels an ACTIVE listing on behalf of its seller
	// POST /v1/listings/:id/cancel
	CancelListing(c *gin.Context)

	// PlaceOrder places a PENDING order against a listing
	// POST /v1/orders
	PlaceOrder(c *gin.Context)

	// GetOrder retrieves an order by ID
	// GET /v1/orders/:id
	GetOrder(c *gin.Context)

	// ConfirmOrder settles a pending order with its tx hash
	// POST /v1/orders/:id/confirm
	ConfirmOrder(c *gin.Context)

	// FailOrder fails a pending order, releasing its reservation
	// POST /v1/orders/:id/fail
	FailOrder(c *gin.Context)

	// GetChanges retrieves activity journal entries
	// GET /v1/changes?subject_type=<listing|order>&subject_id=<id>&anchor=<cursor>&limit=<limit>
	// Returns entries in ascending cursor order (sequential audit log)
	GetChanges(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug    bool
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(debug bool, exec executor.Executor) Handler {
	return &handler{
		debug:    debug,
		executor: exec,
	}
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid ID", c.Param("id"))
		return 0, false
	}
	return id, true
}

// RegisterUser registers (or looks up) a user by wallet address
func (h *handler) RegisterUser(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	user, err := h.executor.RegisterUser(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser retrieves a user by ID
func (h *handler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.executor.GetUser(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateCollection registers a deployed NFT contract
func (h *handler) CreateCollection(c *gin.Context) {
	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	collection, err := h.executor.CreateCollection(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err, "Failed to create collection")
		return
	}

	c.JSON(http.StatusCreated, collection)
}

// GetCollection retrieves a collection by ID
func (h *handler) GetCollection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	collection, err := h.executor.GetCollection(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "Failed to get collection")
		return
	}

	c.JSON(http.StatusOK, collection)
}

// ListCollections retrieves all collections
func (h *handler) ListCollections(c *gin.Context) {
	response, err := h.executor.ListCollections(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "Failed to list collections")
		return
	}

	c.JSON(http.StatusOK, response)
}

// RegisterNFT records an already-minted token
func (h *handler) RegisterNFT(c *gin.Context) {
	var req dto.MintNFTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	nft, err := h.executor.RegisterNFT(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, executor.ErrTokenNumberRequired) || errors.Is(err, executor.ErrCollectionRequired) {
			respondValidationError(c, err.Error())
			return
		}
		respondDomainError(c, err, "Failed to register NFT")
		return
	}

	c.JSON(http.StatusCreated, nft)
}

// MintNFT mints a token through the bound NFT contract
func (h *handler) MintNFT(c *gin.Context) {
	var req dto.MintNFTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	nft, err := h.executor.MintNFT(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, executor.ErrChainUnavailable) {
			respondServiceUnavailable(c, "Minting unavailable", err.Error())
			return
		}
		respondDomainError(c, err, "Failed to mint NFT")
		return
	}

	c.JSON(http.StatusCreated, nft)
}

// GetNFT retrieves an NFT by ID
func (h *handler) GetNFT(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	nft, err := h.executor.GetNFT(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "Failed to get NFT")
		return
	}

	c.JSON(http.StatusOK, nft)
}

// ListNFTs retrieves NFTs with optional filters
func (h *handler) ListNFTs(c *gin.Context) {
	params, err := ParseListNFTsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var chain *domain.Chain
	if params.Chain != "" {
		ch := domain.Chain(params.Chain)
		chain = &ch
	}

	response, err := h.executor.ListNFTs(c.Request.Context(), params.OwnerID, params.CollectionID, chain, params.Limit, params.Offset)
	if err != nil {
		respondDomainError(c, err, "Failed to list NFTs")
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateListing offers an NFT for sale at a fixed price
func (h *handler) CreateListing(c *gin.Context) {
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	listing, err := h.executor.CreateListing(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err, "Failed to create listing")
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListing retrieves a listing by ID
func (h *handler) GetListing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	listing, err := h.executor.GetListing(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "Failed to get listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ListListings retrieves ACTIVE listings with optional filters
func (h *handler) ListListings(c *gin.Context) {
	params, err := ParseListListingsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.executor.ListListings(c.Request.Context(), params.SellerID, params.CollectionID, params.Limit, params.Offset)
	if err != nil {
		respondDomainError(c, err, "Failed to list listings")
		return
	}

	c.JSON(http.StatusOK, response)
}

// CancelListing cancels an ACTIVE listing on behalf of its seller
func (h *handler) CancelListing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CancelListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	listing, err := h.executor.CancelListing(c.Request.Context(), id, req.SellerID)
	if err != nil {
		respondDomainError(c, err, "Failed to cancel listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// PlaceOrder places a PENDING order against a listing
func (h *handler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	order, err := h.executor.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err, "Failed to place order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder retrieves an order by ID
func (h *handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.executor.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "Failed to get order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// ConfirmOrder settles a pending order with its tx hash
func (h *handler) ConfirmOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	order, err := h.executor.ConfirmOrder(c.Request.Context(), id, req.TxHash)
	if err != nil {
		respondDomainError(c, err, "Failed to confirm order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// FailOrder fails a pending order, releasing its reservation
func (h *handler) FailOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	// Body is optional: an empty body means a plain release
	var req dto.FailOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	order, err := h.executor.FailOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondDomainError(c, err, "Failed to fail order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetChanges retrieves activity journal entries
func (h *handler) GetChanges(c *gin.Context) {
	params, err := ParseGetChangesQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var subjectType *domain.JournalSubject
	if params.SubjectType != "" {
		st := domain.JournalSubject(params.SubjectType)
		subjectType = &st
	}

	response, err := h.executor.GetChanges(c.Request.Context(), subjectType, params.SubjectID, params.Anchor, params.Limit)
	if err != nil {
		respondDomainError(c, err, "Failed to get changes")
		return
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	health, err := h.executor.HealthCheck(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to check health")
		return
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
