package vm

import "math"

// safeAdd returns x+y and whether it overflowed a uint64, so gas
// accounting can turn an overflow into ErrGasUintOverflow (or, for memory
// sizes, ErrInvalidMemoryAccess) rather than wrapping.
func safeAdd(x, y uint64) (uint64, bool) {
	sum := x + y
	return sum, sum < x
}

// safeMul returns x*y and whether it overflowed a uint64.
func safeMul(x, y uint64) (uint64, bool) {
	if x == 0 || y == 0 {
		return 0, false
	}
	p := x * y
	return p, p/y != x
}

const maxUint64 = math.MaxUint64
