package entity

import domainerrors "medchain/internal/domain/errors"

const (
	MinPredictionYear = 2000
	MaxPredictionYear = 2025
)

// ClampQuantity coerces a requested quantity into [1, available].
func ClampQuantity(requested, available int64) (int64, error) {
	if available < 1 {
		return 0, domainerrors.Validation("nothing available (available=%d)", available)
	}

	switch {
	case requested < 1:
		return 1, nil
	case requested > available:
		return available, nil
	default:
		return requested, nil
	}
}

// MaxDays returns the days in a month. February always has 28.
func MaxDays(month int) int {
	switch month {
	case 2:
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// PredictionDate is a calendar date entered on a prediction form.
type PredictionDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NormalizeDate clamps month to [1,12], year to [2000,2025] and day to the month length.
func NormalizeDate(day, month, year int) PredictionDate {
	month = clampInt(month, 1, 12)
	year = clampInt(year, MinPredictionYear, MaxPredictionYear)
	day = clampInt(day, 1, MaxDays(month))

	return PredictionDate{Day: day, Month: month, Year: year}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
