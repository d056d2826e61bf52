package schema

import (
	"time"

	"github.com/mintbay/marketplace/internal/domain"
)

// Listing represents the listings table - an offer to sell one NFT at a fixed price.
// At most one ACTIVE listing may exist per NFT; a partial unique index enforces this.
type Listing struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// NFTID references the token being offered
	NFTID int64 `gorm:"column:nft_id;not null;index"`
	// SellerID references the user offering the token. Must equal the NFT's owner at creation.
	SellerID int64 `gorm:"column:seller_id;not null;index"`
	// PriceWei is the asking price as a base-10 integer string in the smallest currency unit
	PriceWei string `gorm:"column:price_wei;not null;type:text"`
	// Currency is the settlement currency (e.g., "ETH")
	Currency string `gorm:"column:currency;not null;type:text;default:'ETH'"`
	// Status is the listing lifecycle state (ACTIVE, SOLD, CANCELLED)
	Status domain.ListingStatus `gorm:"column:status;not null;type:text;index"`
	// ReservedOrderID holds the pending order that currently has the exclusive
	// right to settle this listing. NULL means the listing is open for orders.
	ReservedOrderID *int64 `gorm:"column:reserved_order_id"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last status change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	NFT    NFT     `gorm:"foreignKey:NFTID"`
	Seller User    `gorm:"foreignKey:SellerID"`
	Orders []Order `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}
