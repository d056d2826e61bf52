package schema

import (
	"time"
)

// NFT represents the nfts table - a minted token tracked by the marketplace
type NFT struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CollectionID references the collection this token belongs to
	CollectionID int64 `gorm:"column:collection_id;not null;index;uniqueIndex:idx_nfts_collection_token,priority:1"`
	// TokenNumber is the on-chain token ID (string to support very large numbers)
	TokenNumber string `gorm:"column:token_number;not null;type:text;uniqueIndex:idx_nfts_collection_token,priority:2"`
	// OwnerID references the user who currently owns the token in marketplace state
	OwnerID int64 `gorm:"column:owner_id;not null;index"`
	// Name is the token's display name
	Name string `gorm:"column:name;not null;type:text"`
	// Description is an optional free-text description
	Description string `gorm:"column:description;type:text"`
	// ImageURL points at the token's media
	ImageURL string `gorm:"column:image_url;type:text"`
	// MintTxHash is the transaction hash of the mint, when minted through the API
	MintTxHash *string `gorm:"column:mint_tx_hash;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last ownership or metadata change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Collection Collection `gorm:"foreignKey:CollectionID"`
	Owner      User       `gorm:"foreignKey:OwnerID"`
	Listings   []Listing  `gorm:"foreignKey:NFTID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the NFT model
func (NFT) TableName() string {
	return "nfts"
}
