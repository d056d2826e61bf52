package schema

import (
	"time"

	"github.com/mintbay/marketplace/internal/domain"
)

// Collection represents the collections table - an NFT contract grouping
type Collection struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Chain identifies the blockchain network in CAIP-2 format (e.g., "eip155:1337")
	Chain domain.Chain `gorm:"column:chain;not null;type:text;index:idx_collections_chain_contract,priority:1"`
	// ContractAddress is the deployed NFT contract address
	ContractAddress string `gorm:"column:contract_address;not null;type:text;index:idx_collections_chain_contract,priority:2"`
	// Name is the collection's display name
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is the contract's token symbol
	Symbol string `gorm:"column:symbol;not null;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	NFTs []NFT `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Collection model
func (Collection) TableName() string {
	return "collections"
}
