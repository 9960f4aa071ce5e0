package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/core/state"
)

// A normal halt (STOP) returns no data and no error.
func TestRunNormalHalt(t *testing.T) {
	evm := NewEVM(BlockContext{}, TxContext{}, state.New(), nil, Config{})
	contract := NewContract(common.Address{}, common.Address{1}, new(uint256.Int), 100_000, []byte{byte(STOP)})

	ret, err := evm.Run(contract, nil, false)
	require.NoError(t, err)
	require.Nil(t, ret)
}

// Exceeding the configured call depth is an exceptional halt, independent
// of how much gas remains.
func TestRunRespectsMaxCallDepth(t *testing.T) {
	evm := NewEVM(BlockContext{}, TxContext{}, state.New(), nil, Config{MaxCallDepth: 1})
	evm.depth = 2 // simulate already being one frame past the configured limit
	contract := NewContract(common.Address{}, common.Address{1}, new(uint256.Int), 100_000, []byte{byte(STOP)})

	_, err := evm.Run(contract, nil, false)
	require.ErrorIs(t, err, ErrDepth)
}

// SLOAD/SSTORE round-trip through a real StateDB.
func TestSloadSstoreRoundTrip(t *testing.T) {
	db := state.New()
	self := common.Address{7}
	db.CreateAccount(self)
	evm := NewEVM(BlockContext{}, TxContext{}, db, nil, Config{})

	code := []byte{
		byte(PUSH1), 0x2a, // value 42
		byte(PUSH1), 0x00, // key 0
		byte(SSTORE),
		byte(PUSH1), 0x00, // key 0
		byte(SLOAD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	contract := NewContract(common.Address{}, self, new(uint256.Int), 100_000, code)

	ret, err := evm.Run(contract, nil, false)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(42).Bytes32(), [32]byte(ret))
	require.Equal(t, common.Hash{31: 0x2a}, db.GetStorage(self, common.Hash{}))
}

// A read-only frame must still execute non-mutating opcodes normally; the
// readOnly flag itself is restored once the frame returns, since it is a
// per-frame, not per-EVM, property.
func TestRunReadOnlyFlagRestoredAfterFrame(t *testing.T) {
	evm := NewEVM(BlockContext{}, TxContext{}, state.New(), nil, Config{})
	contract := NewContract(common.Address{}, common.Address{1}, new(uint256.Int), 100_000, []byte{byte(STOP)})

	_, err := evm.Run(contract, nil, true)
	require.NoError(t, err)
	require.False(t, evm.readOnly, "readOnly must not leak past the frame that set it")
}

// SSTORE inside a read-only frame must fault rather than mutate storage.
func TestRunReadOnlyFrameRejectsSstore(t *testing.T) {
	db := state.New()
	self := common.Address{7}
	db.CreateAccount(self)
	evm := NewEVM(BlockContext{}, TxContext{}, db, nil, Config{})

	code := []byte{
		byte(PUSH1), 0x2a,
		byte(PUSH1), 0x00,
		byte(SSTORE),
	}
	contract := NewContract(common.Address{}, self, new(uint256.Int), 100_000, code)

	_, err := evm.Run(contract, nil, true)
	require.ErrorIs(t, err, ErrWriteProtection)
	require.Equal(t, common.Hash{}, db.GetStorage(self, common.Hash{}))
}
