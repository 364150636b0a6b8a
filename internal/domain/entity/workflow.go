package entity

import (
	"slices"
	"time"

	domainerrors "medchain/internal/domain/errors"

	"github.com/google/uuid"
)

// WorkflowState is a step of a workflow instance.
type WorkflowState string

const (
	StateIdle            WorkflowState = "idle"
	StateValidating      WorkflowState = "validating"
	StateLedgerPending   WorkflowState = "ledger_pending"
	StateMetadataPending WorkflowState = "metadata_pending"
	StateDone            WorkflowState = "done"
	StateFailed          WorkflowState = "failed"
)

// Ledger and metadata steps may repeat for multi-item actions.
var transitions = map[WorkflowState][]WorkflowState{
	StateIdle:            {StateValidating},
	StateValidating:      {StateLedgerPending, StateFailed},
	StateLedgerPending:   {StateLedgerPending, StateMetadataPending, StateFailed},
	StateMetadataPending: {StateMetadataPending, StateDone, StateFailed},
}

// Terminal reports whether no further transition is possible.
func (s WorkflowState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Workflow is one user-initiated action and its ledger and metadata steps.
type Workflow struct {
	ID        uuid.UUID
	Action    Action
	Actor     Identity
	State     WorkflowState
	TxHashes  []string
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewWorkflow starts an idle workflow instance.
func NewWorkflow(action Action, actor Identity) *Workflow {
	now := time.Now().UTC()

	return &Workflow{
		ID:        uuid.New(),
		Action:    action,
		Actor:     actor,
		State:     StateIdle,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves to the next state if the transition is legal.
func (w *Workflow) Advance(next WorkflowState) error {
	if !slices.Contains(transitions[w.State], next) {
		return domainerrors.ErrInvalidTransition.WithDetails(string(w.State) + " -> " + string(next))
	}

	w.State = next
	w.UpdatedAt = time.Now().UTC()

	return nil
}

// Fail moves a started workflow to Failed. Idle and terminal workflows are left as they are.
func (w *Workflow) Fail() {
	if w.State == StateIdle || w.State.Terminal() {
		return
	}

	w.State = StateFailed
	w.UpdatedAt = time.Now().UTC()
}

// Confirmed records a mined ledger transaction.
func (w *Workflow) Confirmed(txHash string) {
	w.TxHashes = append(w.TxHashes, txHash)
	w.UpdatedAt = time.Now().UTC()
}

// Submitted records a broadcast transaction whose receipt never arrived.
func (w *Workflow) Submitted(txHash string) {
	w.TxHashes = append(w.TxHashes, txHash)
	w.UpdatedAt = time.Now().UTC()
}

// LastTxHash returns the most recent confirmed transaction hash.
func (w *Workflow) LastTxHash() string {
	if len(w.TxHashes) == 0 {
		return ""
	}

	return w.TxHashes[len(w.TxHashes)-1]
}

// WorkflowEvent is published when a workflow instance reaches a terminal state.
type WorkflowEvent struct {
	RequestID  string        `json:"request_id,omitempty"`
	WorkflowID string        `json:"workflow_id"`
	Action     Action        `json:"action"`
	Actor      string        `json:"actor"`
	State      WorkflowState `json:"state"`
	TxHashes   []string      `json:"tx_hashes,omitempty"`
	Error      string        `json:"error,omitempty"`
	JournalID  string        `json:"journal_id,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
