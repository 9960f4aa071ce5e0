package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evmlite/evmlite/common"
)

func TestCodeBitmapSkipsPushData(t *testing.T) {
	tests := []struct {
		code []byte
		exp  byte
	}{
		{[]byte{byte(PUSH1), 0x01, 0x01, 0x01}, 0b0000_1101},
		{[]byte{byte(JUMPDEST), byte(PUSH1), byte(JUMPDEST), 0x01}, 0b0000_1011},
		{[]byte{byte(PUSH2), byte(JUMPDEST), byte(JUMPDEST), byte(JUMPDEST)}, 0b0000_1001},
	}
	for i, tt := range tests {
		got := codeBitmap(tt.code)
		require.Equalf(t, tt.exp, got[0], "test %d", i)
	}
}

func TestCodeBitmapLongPush(t *testing.T) {
	code := make([]byte, 40)
	code[0] = byte(PUSH32)
	for i := 1; i <= 32; i++ {
		code[i] = byte(JUMPDEST) // immediate data, must not read as code
	}
	code[33] = byte(JUMPDEST) // the real next opcode

	bv := codeBitmap(code)
	require.True(t, bv.isCode(0))
	for i := uint64(1); i <= 32; i++ {
		require.Falsef(t, bv.isCode(i), "byte %d is push data, must not be code", i)
	}
	require.True(t, bv.isCode(33))
}

func TestDestinationsIsMemoized(t *testing.T) {
	code := []byte{byte(PUSH1), 0x03, byte(JUMP), byte(JUMPDEST), byte(STOP)}
	hash := contractCodeHashForTest(code)

	first := destinations(hash, code)
	second := destinations(hash, code)
	require.Same(t, &first[0], &second[0], "destinations must return the cached bitvec on repeat lookups")
}

func contractCodeHashForTest(code []byte) common.Hash {
	c := NewContract(common.Address{}, common.Address{}, nil, 0, code)
	return c.CodeHash
}
