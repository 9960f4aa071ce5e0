package vm

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/common"
)

// StateDB is the persistent, content-addressed world-state collaborator the
// core invokes but does not implement. Writes made through SetStorage
// must be undoable via the Snapshot/RevertToSnapshot pair so that an
// exceptional halt or REVERT can roll back a frame's mutations.
type StateDB interface {
	GetStorage(addr common.Address, key common.Hash) common.Hash
	SetStorage(addr common.Address, key, value common.Hash) common.Hash // returns prior value
	GetBalance(addr common.Address) *uint256.Int
	GetCode(addr common.Address) []byte
	GetCodeHash(addr common.Address) common.Hash
	Exist(addr common.Address) bool

	Snapshot() int
	RevertToSnapshot(id int)

	AddRefund(gas uint64)
	SubRefund(gas uint64)
}

// BlockContext carries the block-header values exposed to BLOCKHASH,
// COINBASE, TIMESTAMP, NUMBER, DIFFICULTY and GASLIMIT. It is supplied
// once per block by the outer dispatcher and never mutated by the
// interpreter.
type BlockContext struct {
	// GetHash returns the hash of the block numbered n, or the zero hash if
	// n is not among the 256 most recent blocks.
	GetHash func(n uint64) common.Hash

	Coinbase    common.Address
	GasLimit    uint64
	BlockNumber *uint256.Int
	Time        uint64
	Difficulty  *uint256.Int
}

// TxContext carries the per-transaction values that don't change across the
// nested frames of a single call tree: the originating sender and the gas
// price it signed for.
type TxContext struct {
	Origin   common.Address
	GasPrice *uint256.Int
}
