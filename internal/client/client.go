// Package client provides a typed HTTP client for the marketplace API.
// It is used by the trader binary and is suitable for external consumers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/mintbay/marketplace/internal/api/shared/dto"
	"github.com/mintbay/marketplace/internal/logger"
)

// APIError is a decoded error response from the marketplace API
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s: %s", e.Code, e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Client is a typed client for the marketplace REST API
type Client struct {
	baseURL    string
	maxRetries uint64
	httpClient *http.Client
}

// New creates a client against the given base URL, e.g. "http://localhost:8080".
// maxRetries caps how often a retryable request (network error, 429) is
// re-attempted; 0 means retry until the backoff envelope expires.
func New(baseURL string, timeout time.Duration, maxRetries uint64) *Client {
	return &Client{
		baseURL:    baseURL,
		maxRetries: maxRetries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do executes a request with exponential backoff on connection errors and
// rate limiting. Any other HTTP error is returned as an *APIError without retry.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network errors are retryable
			return fmt.Errorf("failed to perform request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.Warn("failed to close response body", zap.Error(err), zap.String("path", path))
			}
		}()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited (429), retrying")
		}

		if resp.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(decodeAPIError(resp.StatusCode, respBody))
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	b.RandomizationFactor = 0.5

	policy := backoff.WithContext(b, ctx)
	if c.maxRetries > 0 {
		policy = backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
	}

	return backoff.Retry(operation, policy)
}

// decodeAPIError decodes an error response body, falling back to a raw message
func decodeAPIError(statusCode int, body []byte) error {
	var wrapped struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Code != "" {
		apiErr := wrapped.Error
		apiErr.StatusCode = statusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: statusCode,
		Code:       "unknown",
		Message:    string(body),
	}
}

// RegisterUser registers (or looks up) a user by wallet address
func (c *Client) RegisterUser(ctx context.Context, walletAddress, name string) (*dto.UserResponse, error) {
	var user dto.UserResponse
	err := c.do(ctx, http.MethodPost, "/v1/users", dto.RegisterUserRequest{WalletAddress: walletAddress, Name: name}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser retrieves a user by ID
func (c *Client) GetUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	var user dto.UserResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/users/%d", id), nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateCollection registers a deployed NFT contract
func (c *Client) CreateCollection(ctx context.Context, req dto.CreateCollectionRequest) (*dto.CollectionResponse, error) {
	var collection dto.CollectionResponse
	err := c.do(ctx, http.MethodPost, "/v1/collections", req, &collection)
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListCollections retrieves all collections
func (c *Client) ListCollections(ctx context.Context) (*dto.CollectionsResponse, error) {
	var collections dto.CollectionsResponse
	err := c.do(ctx, http.MethodGet, "/v1/collections", nil, &collections)
	if err != nil {
		return nil, err
	}
	return &collections, nil
}

// RegisterNFT records an already-minted token with its token number
func (c *Client) RegisterNFT(ctx context.Context, req dto.MintNFTRequest) (*dto.NFTResponse, error) {
	var nft dto.NFTResponse
	err := c.do(ctx, http.MethodPost, "/v1/nfts", req, &nft)
	if err != nil {
		return nil, err
	}
	return &nft, nil
}

// MintNFT mints a token through the API's bound NFT contract
func (c *Client) MintNFT(ctx context.Context, req dto.MintNFTRequest) (*dto.NFTResponse, error) {
	var nft dto.NFTResponse
	err := c.do(ctx, http.MethodPost, "/v1/nfts/mint", req, &nft)
	if err != nil {
		return nil, err
	}
	return &nft, nil
}

// ListNFTs retrieves NFTs. ownerID is optional.
func (c *Client) ListNFTs(ctx context.Context, ownerID *int64, limit int, offset uint64) (*dto.NFTsResponse, error) {
	query := url.Values{}
	if ownerID != nil {
		query.Set("owner_id", strconv.FormatInt(*ownerID, 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.FormatUint(offset, 10))
	}

	path := "/v1/nfts"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var nfts dto.NFTsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &nfts); err != nil {
		return nil, err
	}
	return &nfts, nil
}

// GetNFT retrieves an NFT by ID
func (c *Client) GetNFT(ctx context.Context, id int64) (*dto.NFTResponse, error) {
	var nft dto.NFTResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/nfts/%d", id), nil, &nft)
	if err != nil {
		return nil, err
	}
	return &nft, nil
}

// CreateListing offers an NFT for sale at a fixed price
func (c *Client) CreateListing(ctx context.Context, req dto.CreateListingRequest) (*dto.ListingResponse, error) {
	var listing dto.ListingResponse
	err := c.do(ctx, http.MethodPost, "/v1/listings", req, &listing)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListing retrieves a listing by ID
func (c *Client) GetListing(ctx context.Context, id int64) (*dto.ListingResponse, error) {
	var listing dto.ListingResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/listings/%d", id), nil, &listing)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListListings retrieves ACTIVE listings. sellerID is optional.
func (c *Client) ListListings(ctx context.Context, sellerID *int64, limit int, offset uint64) (*dto.ListingsResponse, error) {
	query := url.Values{}
	if sellerID != nil {
		query.Set("seller_id", strconv.FormatInt(*sellerID, 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.FormatUint(offset, 10))
	}

	path := "/v1/listings"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var listings dto.ListingsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &listings); err != nil {
		return nil, err
	}
	return &listings, nil
}

// CancelListing cancels an ACTIVE listing on behalf of its seller
func (c *Client) CancelListing(ctx context.Context, listingID, sellerID int64) (*dto.ListingResponse, error) {
	var listing dto.ListingResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/listings/%d/cancel", listingID),
		dto.CancelListingRequest{SellerID: sellerID}, &listing)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// PlaceOrder places a PENDING order against a listing
func (c *Client) PlaceOrder(ctx context.Context, listingID, buyerID int64) (*dto.OrderResponse, error) {
	var order dto.OrderResponse
	err := c.do(ctx, http.MethodPost, "/v1/orders",
		dto.PlaceOrderRequest{ListingID: listingID, BuyerID: buyerID}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder retrieves an order by ID
func (c *Client) GetOrder(ctx context.Context, id int64) (*dto.OrderResponse, error) {
	var order dto.OrderResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/orders/%d", id), nil, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmOrder settles a pending order with its tx hash
func (c *Client) ConfirmOrder(ctx context.Context, orderID int64, txHash string) (*dto.OrderResponse, error) {
	var order dto.OrderResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/orders/%d/confirm", orderID),
		dto.ConfirmOrderRequest{TxHash: txHash}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FailOrder fails a pending order, releasing its reservation
func (c *Client) FailOrder(ctx context.Context, orderID int64, reason string) (*dto.OrderResponse, error) {
	var order dto.OrderResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/orders/%d/fail", orderID),
		dto.FailOrderRequest{Reason: reason}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetChanges retrieves activity journal entries after the given anchor
func (c *Client) GetChanges(ctx context.Context, anchor int64, limit int) (*dto.JournalResponse, error) {
	query := url.Values{}
	if anchor > 0 {
		query.Set("anchor", strconv.FormatInt(anchor, 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := "/v1/changes"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var journal dto.JournalResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &journal); err != nil {
		return nil, err
	}
	return &journal, nil
}

// Health reports the API's health status
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var health dto.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
