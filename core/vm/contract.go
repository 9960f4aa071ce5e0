package vm

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/crypto"
)

// Contract is the execution environment of a single frame: the
// immutable code, calldata, caller/value/address, and the mutable gas meter
// the interpreter loop drains cycle by cycle.
type Contract struct {
	CallerAddress common.Address
	self          common.Address

	Code     []byte
	CodeHash common.Hash
	Input    []byte

	value uint256.Int
	Gas   uint64

	jumpdests bitvec // lazily computed, memoized in analysisCache by CodeHash

	DelegateCall bool
}

// NewContract returns the frame environment for running code at self, on
// behalf of caller, with the given call value and gas allowance.
func NewContract(caller, self common.Address, value *uint256.Int, gas uint64, code []byte) *Contract {
	c := &Contract{
		CallerAddress: caller,
		self:          self,
		Code:          code,
		Gas:           gas,
	}
	if value != nil {
		c.value = *value
	}
	if len(code) > 0 {
		c.CodeHash = crypto.Keccak256Hash(code)
	}
	return c
}

// AsDelegate marks the contract as executing via DELEGATECALL: code runs
// in this frame's address/storage context but CallerAddress is propagated
// from the delegating caller rather than rebound to it.
func (c *Contract) AsDelegate() *Contract {
	c.DelegateCall = true
	return c
}

// GetOp returns the opcode at byte n of the code, or STOP (0x00) past the
// end of code, per the implicit-STOP convention.
func (c *Contract) GetOp(n uint64) OpCode {
	return OpCode(c.GetByte(n))
}

// GetByte returns the n'th byte of code, or 0x00 if n is out of bounds.
func (c *Contract) GetByte(n uint64) byte {
	if n < uint64(len(c.Code)) {
		return c.Code[n]
	}
	return 0
}

// Caller returns the address that invoked this frame.
func (c *Contract) Caller() common.Address { return c.CallerAddress }

// Address returns the address this frame is executing as.
func (c *Contract) Address() common.Address { return c.self }

// Value returns the call value supplied to this frame.
func (c *Contract) Value() *uint256.Int { return &c.value }

// UseGas attempts to deduct gas from the remaining allowance. It reports
// false (and deducts nothing) if gas exceeds what remains, implementing
// the OutOfGas half of gas deduction.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// validJumpdest reports whether dest is both in range and marked as a
// JUMPDEST by the push-data-aware code scan.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	if overflow || udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	if c.jumpdests == nil {
		c.jumpdests = destinations(c.CodeHash, c.Code)
	}
	return c.jumpdests.isCode(udest)
}
