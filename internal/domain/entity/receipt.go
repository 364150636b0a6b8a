package entity

import (
	"fmt"
	"math/big"
)

// Invocation is one contract write submitted by the wallet session.
type Invocation struct {
	Method   string
	Args     []any
	From     Identity
	GasLimit uint64
}

// EventFields holds decoded event parameters, indexed and non-indexed, by name.
type EventFields map[string]any

// Receipt is the confirmation of a mined transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Events      map[string]EventFields
}

// EventInt reads an integer field of an emitted event.
func (r *Receipt) EventInt(event, field string) (int64, bool) {
	if r == nil {
		return 0, false
	}

	fields, ok := r.Events[event]
	if !ok {
		return 0, false
	}

	return ToInt64(fields[field])
}

// ToInt64 converts the integer shapes produced by ABI decoding.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil || !n.IsInt64() {
			return 0, false
		}

		return n.Int64(), true
	case int64:
		return n, true
	case Int64:
		return int64(n), true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint8:
		return int64(n), true
	case fmt.Stringer:
		b, ok := new(big.Int).SetString(n.String(), 10)
		if !ok || !b.IsInt64() {
			return 0, false
		}

		return b.Int64(), true
	default:
		return 0, false
	}
}
