package schema

import (
	"time"

	"github.com/mintbay/marketplace/internal/domain"
)

// Order represents the orders table - a buyer's intent to settle a listing.
// Status transitions are monotone: PENDING -> CONFIRMED or PENDING -> FAILED.
type Order struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ListingID references the listing being purchased
	ListingID int64 `gorm:"column:listing_id;not null;index"`
	// BuyerID references the purchasing user
	BuyerID int64 `gorm:"column:buyer_id;not null;index"`
	// PriceWei is the price captured at order time, as a base-10 integer string
	PriceWei string `gorm:"column:price_wei;not null;type:text"`
	// Currency is the settlement currency captured at order time
	Currency string `gorm:"column:currency;not null;type:text;default:'ETH'"`
	// Status is the order lifecycle state (PENDING, CONFIRMED, FAILED)
	Status domain.OrderStatus `gorm:"column:status;not null;type:text;index:idx_orders_status_created"`
	// TxHash is the settlement transaction hash, set on confirmation
	TxHash *string `gorm:"column:tx_hash;type:text"`
	// FailureReason records why a FAILED order failed (expired, superseded, released)
	FailureReason *string `gorm:"column:failure_reason;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_orders_status_created"`
	// ResolvedAt is the timestamp when the order reached a terminal status
	ResolvedAt *time.Time `gorm:"column:resolved_at;type:timestamptz"`

	// Associations
	Listing Listing `gorm:"foreignKey:ListingID"`
	Buyer   User    `gorm:"foreignKey:BuyerID"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
