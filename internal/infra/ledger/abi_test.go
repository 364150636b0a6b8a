package ledger

import (
	"encoding/hex"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadABI(t *testing.T) {
	bundled, err := LoadABI("")
	require.NoError(t, err)
	for _, method := range []string{
		constants.MethodCreateRawMaterial,
		constants.MethodRequestRawMaterial,
		constants.MethodCreateEquipment,
		constants.MethodIsEquipmentAvailable,
		constants.MethodRawMaterialCount,
	} {
		assert.Contains(t, bundled.Methods, method)
	}
	assert.Contains(t, bundled.Events, constants.EventRawMaterialRequested)

	path := filepath.Join(t.TempDir(), "contract.abi.json")
	require.NoError(t, os.WriteFile(path, bundledABI, 0o600))
	fromFile, err := LoadABI(path)
	require.NoError(t, err)
	assert.Len(t, fromFile.Methods, len(bundled.Methods))

	_, err = LoadABI(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o600))
	_, err = LoadABI(broken)
	require.Error(t, err)
}

func TestCoerceArgs(t *testing.T) {
	contractABI, err := LoadABI("")
	require.NoError(t, err)

	t.Run("uint256 from plain integers", func(t *testing.T) {
		out, err := coerceArgs(contractABI.Methods[constants.MethodCreateEquipment],
			[]any{"Stent", int64(4), 12, "Cardio", true})
		require.NoError(t, err)

		assert.Equal(t, "Stent", out[0])
		assert.Equal(t, big.NewInt(4), out[1])
		assert.Equal(t, big.NewInt(12), out[2])
		assert.Equal(t, true, out[4])

		_, err = contractABI.Pack(constants.MethodCreateEquipment, out...)
		require.NoError(t, err)
	})

	t.Run("big.Int passes through", func(t *testing.T) {
		huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
		require.True(t, ok)

		out, err := coerceArgs(contractABI.Methods[constants.MethodShipEquipment], []any{huge})
		require.NoError(t, err)
		assert.Same(t, huge, out[0])
	})

	t.Run("address from identity or hex", func(t *testing.T) {
		id := entity.Identity("0xabcdef0000000000000000000000000000000001")
		method := contractABI.Methods[constants.MethodUserDetails]

		out, err := coerceArgs(method, []any{id})
		require.NoError(t, err)
		assert.Equal(t, id.Address(), out[0])

		out, err = coerceArgs(method, []any{"0xabcdef0000000000000000000000000000000001"})
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0xabcdef0000000000000000000000000000000001"), out[0])

		_, err = contractABI.Pack(constants.MethodUserDetails, out...)
		require.NoError(t, err)
	})

	t.Run("rejects wrong arity and non integers", func(t *testing.T) {
		_, err := coerceArgs(contractABI.Methods[constants.MethodOrderEquipment], []any{int64(1)})
		require.ErrorContains(t, err, "expects 2 arguments")

		_, err = coerceArgs(contractABI.Methods[constants.MethodOrderEquipment], []any{"one", int64(1)})
		require.ErrorContains(t, err, "not an integer")
	})
}

func TestNewKeySigner(t *testing.T) {
	first, err := crypto.GenerateKey()
	require.NoError(t, err)
	second, err := crypto.GenerateKey()
	require.NoError(t, err)

	firstHex := "0x" + hex.EncodeToString(crypto.FromECDSA(first))
	secondHex := hex.EncodeToString(crypto.FromECDSA(second))

	signer, err := NewKeySigner(firstHex+", "+secondHex, firstHex)
	require.NoError(t, err)

	firstID := entity.IdentityFromAddress(crypto.PubkeyToAddress(first.PublicKey))
	secondID := entity.IdentityFromAddress(crypto.PubkeyToAddress(second.PublicKey))
	assert.Equal(t, []entity.Identity{firstID, secondID}, signer.Accounts())
	assert.True(t, signer.Holds(secondID))
	assert.False(t, signer.Holds(entity.Identity("0x9000000000000000000000000000000000000009")))

	_, err = NewKeySigner(" , ")
	require.Error(t, err)

	_, err = NewKeySigner("zz")
	require.Error(t, err)
}

func TestKeystoreSigner_NotifyDropped(t *testing.T) {
	s := &keystoreSigner{logger: discardLogger()}
	gone := entity.Identity("0x9000000000000000000000000000000000000009")

	var seen []entity.Identity
	s.OnAccountDropped(func(id entity.Identity) {
		seen = append(seen, id)
		// Registering from inside a listener must not deadlock.
		s.OnAccountDropped(func(entity.Identity) {})
	})
	s.OnAccountDropped(func(id entity.Identity) { seen = append(seen, id) })

	s.notifyDropped(gone)

	assert.Equal(t, []entity.Identity{gone, gone}, seen)
	assert.Len(t, s.listeners, 3)
}
