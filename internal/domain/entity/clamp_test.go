package entity

import (
	"testing"

	domainerrors "medchain/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requested int64
		available int64
		want      int64
	}{
		{name: "zero raised to one", requested: 0, available: 10, want: 1},
		{name: "negative raised to one", requested: -4, available: 10, want: 1},
		{name: "over available lowered", requested: 11, available: 10, want: 10},
		{name: "in range kept", requested: 6, available: 10, want: 6},
		{name: "exactly available kept", requested: 10, available: 10, want: 10},
		{name: "single unit lot", requested: 3, available: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ClampQuantity(tt.requested, tt.available)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampQuantity_NothingAvailable(t *testing.T) {
	t.Parallel()

	_, err := ClampQuantity(5, 0)
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		day, month, year   int
		wantDay, wantMonth int
		wantYear           int
	}{
		{name: "february never has 29", day: 29, month: 2, year: 2024, wantDay: 28, wantMonth: 2, wantYear: 2024},
		{name: "february 31 becomes 28", day: 31, month: 2, year: 2020, wantDay: 28, wantMonth: 2, wantYear: 2020},
		{name: "april has 30", day: 31, month: 4, year: 2010, wantDay: 30, wantMonth: 4, wantYear: 2010},
		{name: "year below range", day: 1, month: 1, year: 1999, wantDay: 1, wantMonth: 1, wantYear: 2000},
		{name: "year above range", day: 1, month: 1, year: 2030, wantDay: 1, wantMonth: 1, wantYear: 2025},
		{name: "month above range", day: 31, month: 13, year: 2021, wantDay: 31, wantMonth: 12, wantYear: 2021},
		{name: "zero day and month", day: 0, month: 0, year: 2021, wantDay: 1, wantMonth: 1, wantYear: 2021},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeDate(tt.day, tt.month, tt.year)
			assert.Equal(t, PredictionDate{Day: tt.wantDay, Month: tt.wantMonth, Year: tt.wantYear}, got)
		})
	}
}

func TestMaxDays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 28, MaxDays(2))
	assert.Equal(t, 30, MaxDays(9))
	assert.Equal(t, 31, MaxDays(12))
}
