package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mintbay/marketplace/internal/domain"
)

const MAX_PAGE_SIZE = 100

// ListListingsQueryParams holds query parameters for GET /listings
type ListListingsQueryParams struct {
	SellerID     *int64 `form:"seller_id"`
	CollectionID *int64 `form:"collection_id"`

	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// ListNFTsQueryParams holds query parameters for GET /nfts
type ListNFTsQueryParams struct {
	OwnerID      *int64 `form:"owner_id"`
	CollectionID *int64 `form:"collection_id"`
	Chain        string `form:"chain"`

	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// GetChangesQueryParams holds query parameters for GET /changes
type GetChangesQueryParams struct {
	SubjectType string `form:"subject_type"`
	SubjectID   *int64 `form:"subject_id"`

	// Anchor-based pagination: return entries with cursor > anchor
	Anchor int64 `form:"anchor,default=0"`
	Limit  int   `form:"limit,default=50"`
}

// ParseListListingsQuery parses query parameters for GET /listings
func ParseListListingsQuery(c *gin.Context) (*ListListingsQueryParams, error) {
	var params ListListingsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Limit <= 0 || params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	return &params, nil
}

// ParseListNFTsQuery parses query parameters for GET /nfts
func ParseListNFTsQuery(c *gin.Context) (*ListNFTsQueryParams, error) {
	var params ListNFTsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Limit <= 0 || params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	return &params, nil
}

// ParseGetChangesQuery parses query parameters for GET /changes
func ParseGetChangesQuery(c *gin.Context) (*GetChangesQueryParams, error) {
	var params GetChangesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.SubjectType != "" {
		switch domain.JournalSubject(params.SubjectType) {
		case domain.JournalSubjectListing, domain.JournalSubjectOrder:
		default:
			return nil, fmt.Errorf("invalid subject_type: %s", params.SubjectType)
		}
	}

	if params.Limit <= 0 || params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	return &params, nil
}
