package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/evmlite/evmlite/common"
)

func runCode(t *testing.T, code []byte, gas uint64) ([]byte, *Contract, error) {
	t.Helper()
	evm := NewEVM(BlockContext{}, TxContext{GasPrice: new(uint256.Int)}, nil, nil, Config{})
	contract := NewContract(common.Address{}, common.Address{1}, new(uint256.Int), gas, code)
	ret, err := evm.Run(contract, nil, false)
	return ret, contract, err
}

func TestAdditionReturnsSum(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x02,
		byte(ADD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	ret, _, err := runCode(t, code, 100_000)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(3).Bytes32(), [32]byte(ret))
}

// Too little gas for even the first instruction faults with ErrOutOfGas.
func TestOutOfGasDuringFirstInstruction(t *testing.T) {
	code := []byte{byte(PUSH1), 0x01}
	_, contract, err := runCode(t, code, 1)
	require.ErrorIs(t, err, ErrOutOfGas)
	require.Equal(t, uint64(1), contract.Gas, "UseGas must not deduct on a failed charge")
}

// Jumping to a non-JUMPDEST byte is an exceptional halt.
func TestJumpToInvalidDestinationFaults(t *testing.T) {
	code := []byte{byte(PUSH1), 0xff, byte(JUMP)}
	_, _, err := runCode(t, code, 100_000)
	require.ErrorIs(t, err, ErrInvalidJump)
}

// Jumping into PUSH immediate data is rejected even though the byte value
// there happens to equal JUMPDEST's opcode.
func TestJumpIntoPushDataFaults(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x04,
		byte(JUMP),
		byte(PUSH2), byte(JUMPDEST), byte(JUMPDEST), // dest 4 lands mid push-data
	}
	_, _, err := runCode(t, code, 100_000)
	require.ErrorIs(t, err, ErrInvalidJump)
}

// A jump to a genuine JUMPDEST proceeds normally.
func TestJumpToValidDestinationSucceeds(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x03,
		byte(JUMP),
		byte(JUMPDEST),
		byte(STOP),
	}
	_, _, err := runCode(t, code, 100_000)
	require.NoError(t, err)
}

// REVERT preserves its return data and is distinguished from other
// exceptional halts by ErrExecutionReverted.
func TestRevertPreservesReturnData(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x2a, // 42
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(REVERT),
	}
	ret, _, err := runCode(t, code, 100_000)
	require.ErrorIs(t, err, ErrExecutionReverted)
	require.Equal(t, uint256.NewInt(42).Bytes32(), [32]byte(ret))
}

// An undefined opcode byte is an exceptional halt with no return data.
func TestUndefinedOpcodeFaults(t *testing.T) {
	code := []byte{0x0c} // unassigned in the 0x0* arithmetic range
	ret, _, err := runCode(t, code, 100_000)
	require.Error(t, err)
	require.Nil(t, ret)
}

// Popping from an empty stack is an exceptional halt, not a panic.
func TestStackUnderflowFaults(t *testing.T) {
	code := []byte{byte(ADD)}
	_, _, err := runCode(t, code, 100_000)
	var underflow *ErrStackUnderflow
	require.ErrorAs(t, err, &underflow)
}

// Memory expansion is billed incrementally: writing into the same,
// already-paid-for word a second time pays no further expansion fee.
func TestMemoryExpansionBilledOnce(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(MSTORE8),
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(MSTORE8), // touches the same word again, no further expansion fee
		byte(STOP),
	}
	_, contract, err := runCode(t, code, 100_000)
	require.NoError(t, err)

	single := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(MSTORE8),
		byte(STOP),
	}
	_, singleContract, err := runCode(t, single, 100_000)
	require.NoError(t, err)

	doubleGasUsed := 100_000 - contract.Gas
	singleGasUsed := 100_000 - singleContract.Gas
	require.Less(t, doubleGasUsed-singleGasUsed, uint64(20),
		"repeating a write inside the same already-paid-for word must not pay memory expansion twice")
}
