package ledger

import (
	"bytes"
	_ "embed"
	"math/big"
	"os"
	"reflect"

	"medchain/internal/domain/entity"
	"medchain/internal/errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:embed medical_supply_chain.abi.json
var bundledABI []byte

// LoadABI parses the contract ABI at path, or the bundled one when path is empty.
func LoadABI(path string) (abi.ABI, error) {
	raw := bundledABI
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return abi.ABI{}, errors.Wrapf(err, "read abi %s", path)
		}
		raw = b
	}

	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, errors.Wrap(err, "parse contract abi")
	}

	return parsed, nil
}

// coerceArgs converts plain Go integers to the exact types the ABI encoder expects.
func coerceArgs(method abi.Method, args []any) ([]any, error) {
	if len(args) != len(method.Inputs) {
		return nil, errors.Errorf("%s expects %d arguments, got %d", method.Name, len(method.Inputs), len(args))
	}

	out := make([]any, len(args))
	for i, arg := range args {
		input := method.Inputs[i].Type
		switch input.T {
		case abi.IntTy, abi.UintTy:
			if b, isBig := arg.(*big.Int); isBig && b != nil && input.Size > 64 {
				out[i] = b

				continue
			}
			n, ok := entity.ToInt64(arg)
			if !ok {
				return nil, errors.Errorf("%s argument %d: not an integer (%T)", method.Name, i, arg)
			}
			if input.Size > 64 {
				out[i] = big.NewInt(n)

				continue
			}
			out[i] = reflect.ValueOf(n).Convert(input.GetType()).Interface()
		case abi.AddressTy:
			switch v := arg.(type) {
			case entity.Identity:
				out[i] = v.Address()
			case string:
				out[i] = common.HexToAddress(v)
			default:
				out[i] = arg
			}
		default:
			out[i] = arg
		}
	}

	return out, nil
}

// decodeEvents maps event name to its decoded fields for every log emitted by the contract.
func decodeEvents(contractABI abi.ABI, contract common.Address, logs []*types.Log) map[string]entity.EventFields {
	events := make(map[string]entity.EventFields)

	for _, lg := range logs {
		if lg == nil || lg.Address != contract || len(lg.Topics) == 0 {
			continue
		}

		ev, err := contractABI.EventByID(lg.Topics[0])
		if err != nil {
			continue
		}

		fields := make(map[string]any)
		if err := contractABI.UnpackIntoMap(fields, ev.Name, lg.Data); err != nil {
			continue
		}

		var indexed abi.Arguments
		for _, arg := range ev.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if err := abi.ParseTopicsIntoMap(fields, indexed, lg.Topics[1:]); err != nil {
			continue
		}

		events[ev.Name] = fields
	}

	return events
}
