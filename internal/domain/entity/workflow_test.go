package entity

import (
	"testing"

	domainerrors "medchain/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testActor = Identity("0xabc0000000000000000000000000000000000001")

func TestWorkflow_MultiItemPath(t *testing.T) {
	t.Parallel()

	wf := NewWorkflow(ActionPlaceOrder, testActor)
	assert.Equal(t, StateIdle, wf.State)

	for _, next := range []WorkflowState{
		StateValidating,
		StateLedgerPending,
		StateLedgerPending,
		StateMetadataPending,
		StateDone,
	} {
		require.NoError(t, wf.Advance(next), "advance to %s", next)
	}
	assert.True(t, wf.State.Terminal())
}

func TestWorkflow_IllegalTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []WorkflowState
		next WorkflowState
	}{
		{name: "idle straight to ledger", next: StateLedgerPending},
		{name: "metadata before ledger", path: []WorkflowState{StateValidating}, next: StateMetadataPending},
		{name: "ledger after metadata", path: []WorkflowState{StateValidating, StateLedgerPending, StateMetadataPending}, next: StateLedgerPending},
		{name: "done is terminal", path: []WorkflowState{StateValidating, StateLedgerPending, StateMetadataPending, StateDone}, next: StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wf := NewWorkflow(ActionShipOrder, testActor)
			for _, step := range tt.path {
				require.NoError(t, wf.Advance(step))
			}

			err := wf.Advance(tt.next)
			require.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
		})
	}
}

func TestWorkflow_Fail(t *testing.T) {
	t.Parallel()

	idle := NewWorkflow(ActionVerifyEquipment, testActor)
	idle.Fail()
	assert.Equal(t, StateIdle, idle.State)

	wf := NewWorkflow(ActionVerifyEquipment, testActor)
	require.NoError(t, wf.Advance(StateValidating))
	require.NoError(t, wf.Advance(StateLedgerPending))
	wf.Fail()
	assert.Equal(t, StateFailed, wf.State)

	done := NewWorkflow(ActionVerifyEquipment, testActor)
	for _, s := range []WorkflowState{StateValidating, StateLedgerPending, StateMetadataPending, StateDone} {
		require.NoError(t, done.Advance(s))
	}
	done.Fail()
	assert.Equal(t, StateDone, done.State)
}

func TestWorkflow_TxHashes(t *testing.T) {
	t.Parallel()

	wf := NewWorkflow(ActionPlaceOrder, testActor)
	assert.Empty(t, wf.LastTxHash())

	wf.Confirmed("0x01")
	wf.Confirmed("0x02")
	assert.Equal(t, []string{"0x01", "0x02"}, wf.TxHashes)
	assert.Equal(t, "0x02", wf.LastTxHash())
}
