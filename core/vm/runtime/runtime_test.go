package runtime

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/core/state"
	"github.com/evmlite/evmlite/core/vm"
	"github.com/evmlite/evmlite/crypto"
)

func pushAddress(addr common.Address) []byte {
	return append([]byte{byte(vm.PUSH1) + 19}, addr.Bytes()...)
}

func TestExecuteReturnsConstant(t *testing.T) {
	code := []byte{
		byte(vm.PUSH1), 0x2a,
		byte(vm.PUSH1), 0x00,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 0x20,
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	}
	ret, gasLeft, err := Execute(code, nil, &Config{GasLimit: 100_000})
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(42).Bytes32(), [32]byte(ret))
	require.Greater(t, gasLeft, uint64(0))
}

func TestExecuteCallForwardsToCalleeAndReturnsItsData(t *testing.T) {
	db := state.New()
	target := common.Address{0xaa}
	db.CreateAccount(target)
	calleeCode := []byte{
		byte(vm.PUSH1), 0x01,
		byte(vm.PUSH1), 0x00,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 0x20,
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	}
	db.SetCode(target, calleeCode, common.Hash{})

	callerCode := append([]byte{
		byte(vm.PUSH1), 0x20, // retSize
		byte(vm.PUSH1), 0x00, // retOffset
		byte(vm.PUSH1), 0x00, // inSize
		byte(vm.PUSH1), 0x00, // inOffset
		byte(vm.PUSH1), 0x00, // value
	}, pushAddress(target)...)
	callerCode = append(callerCode,
		byte(vm.GAS),
		byte(vm.CALL),
		byte(vm.PUSH1), 0x20,
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	)

	ret, _, err := Execute(callerCode, nil, &Config{GasLimit: 1_000_000, State: db})
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1).Bytes32(), [32]byte(ret))
}

func TestExecuteCallWithInsufficientBalanceFailsWithoutAbortingCaller(t *testing.T) {
	db := state.New()
	target := common.Address{0xbb}

	callerCode := append([]byte{
		byte(vm.PUSH1), 0x00, // retSize
		byte(vm.PUSH1), 0x00, // retOffset
		byte(vm.PUSH1), 0x00, // inSize
		byte(vm.PUSH1), 0x00, // inOffset
		byte(vm.PUSH1), 0x01, // value: 1, but caller's own balance is 0
	}, pushAddress(target)...)
	callerCode = append(callerCode,
		byte(vm.GAS),
		byte(vm.CALL),
		byte(vm.PUSH1), 0x00,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 0x20,
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	)

	ret, _, err := Execute(callerCode, nil, &Config{GasLimit: 1_000_000, State: db})
	require.NoError(t, err, "a failed nested CALL must not itself abort the caller's frame")
	require.Equal(t, uint256.NewInt(0).Bytes32(), [32]byte(ret), "CALL must push a 0 failure flag")
}

func TestExecuteCreateDeploysReturnedCodeAsNewAccount(t *testing.T) {
	// init code: return a single STOP byte as the "runtime" code.
	initCode := []byte{
		byte(vm.PUSH1), byte(vm.STOP), // value to store: the STOP opcode byte
		byte(vm.PUSH1), 0x00,
		byte(vm.MSTORE8),
		byte(vm.PUSH1), 0x01,
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	}

	db := state.New()
	ret, _, err := Execute(buildCreateCaller(initCode), nil, &Config{GasLimit: 1_000_000, State: db})
	require.NoError(t, err)

	var addr common.Address
	copy(addr[:], ret[12:])
	require.True(t, db.Exist(addr), "CREATE must install the new account")
	require.Equal(t, []byte{byte(vm.STOP)}, db.GetCode(addr))
}

func TestExecuteCreateRevertLeavesNoAccountShell(t *testing.T) {
	// init code that immediately REVERTs with no output.
	initCode := []byte{
		byte(vm.PUSH1), 0x00,
		byte(vm.PUSH1), 0x00,
		byte(vm.REVERT),
	}

	db := state.New()
	callerCode := buildCreateCaller(initCode)
	ret, _, err := Execute(callerCode, nil, &Config{GasLimit: 1_000_000, State: db})
	require.NoError(t, err, "a failed nested CREATE must not itself abort the caller's frame")
	require.Equal(t, uint256.NewInt(0).Bytes32(), [32]byte(ret), "CREATE must push 0 on failure, not a new address")

	addr := common.BytesToAddress(crypto.Keccak256(common.Address{}.Bytes(), initCode)[12:])
	require.False(t, db.Exist(addr), "a reverted CREATE must leave no account shell at the derived address")
}

// buildCreateCaller writes initCode into memory byte by byte via MSTORE8
// (short enough here that CODECOPY's PUSH-data access isn't worth wiring
// up) and issues CREATE over it, returning the deployed address.
func buildCreateCaller(initCode []byte) []byte {
	var code []byte
	for i, b := range initCode {
		code = append(code,
			byte(vm.PUSH1), b,
			byte(vm.PUSH1), uint8(i),
			byte(vm.MSTORE8),
		)
	}
	code = append(code,
		byte(vm.PUSH1), uint8(len(initCode)), // size
		byte(vm.PUSH1), 0x00, // offset
		byte(vm.PUSH1), 0x00, // value
		byte(vm.CREATE),
		byte(vm.PUSH1), 0x00,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 0x20,
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	)
	return code
}
