package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evmlite/evmlite/params"
)

func TestJumpTableCoversEveryDefinedOpcode(t *testing.T) {
	table := newClassicJumpTable()
	for op, name := range opCodeToString {
		if table[op] == nil {
			t.Fatalf("opcode %s (0x%x) has no operation entry", name, byte(op))
		}
	}
}

func TestJumpTableStackBounds(t *testing.T) {
	table := newClassicJumpTable()

	add := table[ADD]
	require.Equal(t, 2, add.minStack, "ADD pops two operands")
	require.NotNil(t, add.execute)

	push1 := table[PUSH1]
	require.Equal(t, 0, push1.minStack)
	require.Less(t, push1.maxStack, stackLimit+1, "PUSH1 must not be allowed to push past the stack limit")

	dup16 := table[DUP16]
	require.Equal(t, 16, dup16.minStack, "DUP16 requires 16 items already on the stack")

	swap1 := table[SWAP1]
	require.Equal(t, 2, swap1.minStack)
}

func TestJumpTableGasWiring(t *testing.T) {
	table := newClassicJumpTable()

	require.Equal(t, constGasTier[ADD], table[ADD].constantGas)
	require.Nil(t, table[ADD].dynamicGas, "ADD has no dynamic component")

	require.NotNil(t, table[SHA3].dynamicGas)
	require.NotNil(t, table[SHA3].memorySize)

	require.NotNil(t, table[SSTORE].dynamicGas)
	require.Zero(t, table[SSTORE].constantGas, "SSTORE's entire cost is dynamic")

	require.NotNil(t, table[SUICIDE].dynamicGas, "SUICIDE must charge the new-account surcharge")

	require.Equal(t, params.CreateGas, table[CREATE].constantGas)
	require.NotNil(t, table[CREATE].dynamicGas)
}

func TestJumpTableUndefinedOpcodesAreNil(t *testing.T) {
	table := newClassicJumpTable()
	require.Nil(t, table[0x0c], "0x0c is not an assigned opcode")
	require.Nil(t, table[0x21], "0x21 is not an assigned opcode")
}
