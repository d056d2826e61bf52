package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/mintbay/marketplace/internal/domain"
)

// ActivityJournal represents the activity_journal table - an append-only audit
// log of every trading state transition
type ActivityJournal struct {
	// Cursor is an auto-incrementing sequence number for efficient pagination and ordering
	Cursor int64 `gorm:"column:\"cursor\";primaryKey;autoIncrement"`
	// SubjectType identifies what kind of entity changed (listing, order)
	SubjectType domain.JournalSubject `gorm:"column:subject_type;not null;type:text"`
	// SubjectID is the primary key of the changed entity
	SubjectID int64 `gorm:"column:subject_id;not null;index"`
	// Action names the transition (created, reserved, confirmed, failed, cancelled, expired)
	Action string `gorm:"column:action;not null;type:text"`
	// ChangedAt is the timestamp when the change occurred
	ChangedAt time.Time `gorm:"column:changed_at;not null;default:now();type:timestamptz"`
	// Meta contains additional context about the change as JSON (e.g., prior status, tx hash)
	Meta datatypes.JSON `gorm:"column:meta;type:jsonb"`
}

// TableName specifies the table name for the ActivityJournal model
func (ActivityJournal) TableName() string {
	return "activity_journal"
}
