package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	one := uint256.NewInt(1)
	two := uint256.NewInt(2)
	st.push(one)
	st.push(two)

	require.Equal(t, 2, st.len())
	require.Equal(t, uint256.NewInt(2), st.peek())

	popped := st.pop()
	require.Equal(t, *uint256.NewInt(2), popped)
	require.Equal(t, 1, st.len())
}

func TestStackDupSwap(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	st.push(uint256.NewInt(10))
	st.push(uint256.NewInt(20))
	st.push(uint256.NewInt(30))

	st.dup(3) // duplicate the 10 onto the top
	require.Equal(t, uint256.NewInt(10), st.peek())
	require.Equal(t, 4, st.len())

	st.pop() // back to [10, 20, 30]
	st.swap(3)
	require.Equal(t, []uint256.Int{*uint256.NewInt(30), *uint256.NewInt(20), *uint256.NewInt(10)}, st.Data())
}

func TestStackBack(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	st.push(uint256.NewInt(3))

	require.Equal(t, uint256.NewInt(3), st.Back(0))
	require.Equal(t, uint256.NewInt(2), st.Back(1))
	require.Equal(t, uint256.NewInt(1), st.Back(2))
}

func TestStackRequire(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	require.NoError(t, st.require(0))
	require.Error(t, st.require(1))

	st.push(uint256.NewInt(1))
	require.NoError(t, st.require(1))
	require.Error(t, st.require(2))
}
