package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrphanKind tells whether a journal entry can be repaired by replaying writes.
type OrphanKind string

const (
	// OrphanMetadata is a confirmed ledger tx whose metadata writes did not all succeed.
	OrphanMetadata OrphanKind = "metadata"
	// OrphanLedgerOnly is a ledger tx that never gets a metadata mirror, such as
	// the items of an aborted order.
	OrphanLedgerOnly OrphanKind = "ledger_only"
)

// OrphanStatus is the reconciliation state of a journal entry.
type OrphanStatus string

const (
	OrphanOpen     OrphanStatus = "open"
	OrphanResolved OrphanStatus = "resolved"
)

// PendingWrite is a metadata write that still has to reach the backend.
// ImageKey points at the staged upload when the write is multipart.
type PendingWrite struct {
	Method           string         `json:"method"`
	Endpoint         string         `json:"endpoint"`
	Payload          map[string]any `json:"payload,omitempty"`
	ImageKey         string         `json:"imageKey,omitempty"`
	ImageFilename    string         `json:"imageFilename,omitempty"`
	ImageContentType string         `json:"imageContentType,omitempty"`
}

// Orphan is a reconciliation journal entry: ledger state the metadata store does not reflect.
type Orphan struct {
	ID         uuid.UUID      `json:"id"`
	WorkflowID uuid.UUID      `json:"workflowId"`
	Action     Action         `json:"action"`
	Actor      Identity       `json:"actor"`
	Kind       OrphanKind     `json:"kind"`
	Status     OrphanStatus   `json:"status"`
	TxHashes   []string       `json:"txHashes"`
	Writes     []PendingWrite `json:"writes,omitempty"`
	Attempts   int            `json:"attempts"`
	LastError  string         `json:"lastError,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	ResolvedAt *time.Time     `json:"resolvedAt,omitempty"`
}

// Replayable reports whether RetryMetadata can act on the entry.
func (o *Orphan) Replayable() bool {
	return o.Kind == OrphanMetadata && o.Status == OrphanOpen && len(o.Writes) > 0
}

// TxHash returns the correlation key of the entry.
func (o *Orphan) TxHash() string {
	if len(o.TxHashes) == 0 {
		return ""
	}

	return o.TxHashes[0]
}
