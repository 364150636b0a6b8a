package model

import (
	"time"

	"medchain/internal/domain/entity"

	"github.com/google/uuid"
)

// OrphanModel is the GORM-specific struct for the 'metadata_orphans' table.
// Pending writes and tx hashes are stored as JSONB so a journal entry is a single row.
type OrphanModel struct {
	ID         uuid.UUID             `gorm:"type:uuid;primary_key"`
	WorkflowID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Action     string                `gorm:"type:text;not null"`
	Actor      string                `gorm:"type:text;not null;index"`
	Kind       string                `gorm:"type:text;not null"`
	Status     string                `gorm:"type:text;not null;default:'open';index"`
	TxHashes   []string              `gorm:"type:jsonb;serializer:json;not null"`
	Writes     []entity.PendingWrite `gorm:"type:jsonb;serializer:json"`
	Attempts   int                   `gorm:"not null;default:0"`
	LastError  string                `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrphanModel) TableName() string {
	return "metadata_orphans"
}
