// Package runtime provides a small harness for running EVM bytecode
// against an in-memory StateDB outside of any larger node, grounded on
// go-ethereum's core/vm/runtime package. It exists for tests and the
// evmrun CLI: both want to execute one piece of code and inspect the
// result without standing up a full blockchain.
package runtime

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/core/state"
	"github.com/evmlite/evmlite/core/vm"
)

// Config bundles the inputs a single Execute call needs: the frame's
// caller/origin/value and the block context opcodes like NUMBER or
// COINBASE will observe.
type Config struct {
	Origin      common.Address
	Caller      common.Address
	Address     common.Address
	GasLimit    uint64
	GasPrice    *uint256.Int
	Value       *uint256.Int
	BlockNumber *uint256.Int
	Time        uint64
	Coinbase    common.Address
	Difficulty  *uint256.Int
	State       *state.StateDB
	Tracer      vm.Tracer

	depthBudget int
}

func setDefaults(cfg *Config) {
	if cfg.GasPrice == nil {
		cfg.GasPrice = new(uint256.Int)
	}
	if cfg.Value == nil {
		cfg.Value = new(uint256.Int)
	}
	if cfg.BlockNumber == nil {
		cfg.BlockNumber = new(uint256.Int)
	}
	if cfg.Difficulty == nil {
		cfg.Difficulty = new(uint256.Int)
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = 10_000_000
	}
	if cfg.State == nil {
		cfg.State = state.New()
	}
	if cfg.depthBudget == 0 {
		cfg.depthBudget = 1024
	}
}

// Execute runs code with input as calldata and returns its output,
// leftover gas, and any execution error (nil, an exceptional-halt error,
// or vm.ErrExecutionReverted — the interpreter's three terminal outcomes).
func Execute(code, input []byte, cfg *Config) ([]byte, uint64, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	blockCtx := vm.BlockContext{
		GetHash:     func(uint64) common.Hash { return common.Hash{} },
		Coinbase:    cfg.Coinbase,
		GasLimit:    cfg.GasLimit,
		BlockNumber: cfg.BlockNumber,
		Time:        cfg.Time,
		Difficulty:  cfg.Difficulty,
	}
	txCtx := vm.TxContext{Origin: cfg.Origin, GasPrice: cfg.GasPrice}

	dispatcher := &callDispatcher{state: cfg.State, maxDepth: cfg.depthBudget}
	evm := vm.NewEVM(blockCtx, txCtx, cfg.State, dispatcher, vm.Config{MaxCallDepth: cfg.depthBudget, Tracer: cfg.Tracer})
	dispatcher.evm = evm

	cfg.State.CreateAccount(cfg.Address)
	cfg.State.SetCode(cfg.Address, code, common.Hash{})

	contract := vm.NewContract(cfg.Caller, cfg.Address, cfg.Value, cfg.GasLimit, code)
	ret, err := evm.Run(contract, input, false)
	return ret, contract.Gas, err
}
