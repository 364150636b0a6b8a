package errors_test

import (
	"net/http"
	"testing"

	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_WithDetailsMatchesOriginal(t *testing.T) {
	err := domainerrors.Validation("quantity %d exceeds %d", 9, 3)

	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.NotErrorIs(t, err, domainerrors.ErrForbidden)
	assert.Equal(t, "precondition not met: quantity 9 exceeds 3", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode())

	wrapped := err.WrapMessage("request raw material")
	require.ErrorIs(t, wrapped, domainerrors.ErrValidationFailed)

	appErr, ok := errors.AsType[domainerrors.AppError](wrapped)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
}

func TestBackendUnavailableError_Correlation(t *testing.T) {
	cause := errors.New("connection reset")
	base := domainerrors.NewBackendUnavailableError("/api/orders", http.StatusBadGateway, cause)
	correlated := base.WithTxHash("0xabc").WithJournalID("j-7")

	assert.Empty(t, base.TxHash)
	assert.Equal(t, "the metadata backend is unavailable", base.Message())
	assert.Equal(t, "the transaction was confirmed but its record could not be saved", correlated.Message())
	assert.Equal(t, "endpoint=/api/orders; txHash=0xabc; journalId=j-7", correlated.Details())
	assert.Contains(t, correlated.Error(), "(status 502)")
	require.ErrorIs(t, correlated, cause)

	var target *domainerrors.BackendUnavailableError
	require.ErrorAs(t, errors.Wrap(correlated, "place order"), &target)
	assert.Equal(t, "j-7", target.JournalID)
}

func TestLedgerRejectedError(t *testing.T) {
	err := domainerrors.NewLedgerRejectedError("orderEquipment", "0x01", errors.New("execution reverted"))

	assert.Equal(t, "ledger rejected orderEquipment: execution reverted", err.Error())
	assert.Equal(t, "execution reverted; txHash=0x01", err.Details())
	assert.Equal(t, "LEDGER_REJECTED", err.ErrorCode())
}
