package vm

import (
	"sync"

	"github.com/holiman/uint256"
)

// stackLimit is the maximum number of items the stack may ever hold.
const stackLimit = 1024

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is the EVM's operand stack: an ordered sequence of 256-bit words,
// top at the highest index of the backing slice.
type Stack struct {
	data []uint256.Int
}

func newstack() *Stack {
	return stackPool.Get().(*Stack)
}

func returnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// Data returns the live backing slice, bottom-to-top. Callers must not
// retain or mutate it past the current cycle.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

// push appends a value to the top of the stack. Overflow is checked by the
// interpreter loop against the operation's declared max-stack before push is
// ever called, so push itself never fails.
func (st *Stack) push(d *uint256.Int) {
	st.data = append(st.data, *d)
}

func (st *Stack) pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) len() int {
	return len(st.data)
}

func (st *Stack) swap(n int) {
	st.data[st.len()-n], st.data[st.len()-1] = st.data[st.len()-1], st.data[st.len()-n]
}

func (st *Stack) dup(n int) {
	st.push(&st.data[st.len()-n])
}

// peek returns a mutable pointer to the top item without removing it.
func (st *Stack) peek() *uint256.Int {
	return &st.data[st.len()-1]
}

// Back returns a mutable pointer to the n-th item from the top (0-indexed).
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[st.len()-n-1]
}

// require fails if the stack holds fewer than n items.
func (st *Stack) require(n int) error {
	if st.len() < n {
		return &ErrStackUnderflow{stackLen: st.len(), required: n}
	}
	return nil
}
