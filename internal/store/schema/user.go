package schema

import (
	"time"
)

// User represents the users table - a wallet-identified participant
type User struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// WalletAddress is the user's EVM address, stored lowercase
	WalletAddress string `gorm:"column:wallet_address;not null;uniqueIndex;type:text"`
	// Name is the user's display name
	Name string `gorm:"column:name;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
