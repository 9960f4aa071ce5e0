package runtime

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/core/state"
	"github.com/evmlite/evmlite/core/vm"
	"github.com/evmlite/evmlite/crypto"
	"github.com/evmlite/evmlite/params"
)

// callDispatcher is the minimal vm.CallContext this package supplies so
// Execute can exercise CREATE/CALL/CALLCODE/DELEGATECALL/SUICIDE/LOG end
// to end against an in-memory StateDB (the interpreter invokes these,
// it does not implement them — this is that "one layer above").
type callDispatcher struct {
	state    *state.StateDB
	evm      *vm.EVM
	maxDepth int
}

func transfer(s *state.StateDB, from, to common.Address, value *uint256.Int) error {
	if value.IsZero() {
		return nil
	}
	if s.GetBalance(from).Lt(value) {
		return vm.ErrInsufficientBalance
	}
	s.SubBalance(from, value)
	s.AddBalance(to, value)
	return nil
}

func (d *callDispatcher) run(caller, addr common.Address, code, input []byte, gas uint64, value *uint256.Int, delegate bool, delegateCaller common.Address) ([]byte, uint64, error) {
	if d.evm.Depth() >= d.maxDepth {
		return nil, gas, vm.ErrDepth
	}
	snapshot := d.state.Snapshot()

	effectiveCaller := caller
	if delegate {
		effectiveCaller = delegateCaller
	}
	if !delegate {
		if err := transfer(d.state, caller, addr, value); err != nil {
			d.state.RevertToSnapshot(snapshot)
			return nil, gas, err
		}
	}

	contract := vm.NewContract(effectiveCaller, addr, value, gas, code)
	if delegate {
		contract.AsDelegate()
	}
	ret, err := d.evm.Run(contract, input, false)
	if err != nil {
		d.state.RevertToSnapshot(snapshot)
		if err != vm.ErrExecutionReverted {
			return nil, 0, err
		}
	}
	return ret, contract.Gas, err
}

// Call implements vm.CallContext: runs addr's stored code as a fresh
// frame, transferring value from caller to addr first.
func (d *callDispatcher) Call(env *vm.EVM, caller, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	code := d.state.GetCode(addr)
	return d.run(caller, addr, code, input, gas, value, false, common.Address{})
}

// CallCode implements vm.CallContext: runs addr's code in caller's own
// storage/address context, but still transfers value from caller to
// itself (CALLCODE's historical, slightly odd value-transfer rule).
func (d *callDispatcher) CallCode(env *vm.EVM, caller, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	code := d.state.GetCode(addr)
	return d.run(caller, caller, code, input, gas, value, false, common.Address{})
}

// DelegateCall implements vm.CallContext: runs codeAddr's code in addr's
// storage/address context without transferring any value, propagating
// originCaller as the frame's caller.
func (d *callDispatcher) DelegateCall(env *vm.EVM, originCaller, addr, codeAddr common.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	code := d.state.GetCode(codeAddr)
	return d.run(addr, addr, code, input, gas, new(uint256.Int), true, originCaller)
}

// Create implements vm.CallContext: derives a new contract address from
// keccak256(caller address ++ init code), nonce-free (a simplification of CREATE's
// RLP(sender, nonce) rule, adequate for this reference dispatcher), runs
// init code as a frame, and installs whatever it returns as the new
// account's code.
func (d *callDispatcher) Create(env *vm.EVM, caller common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, common.Address, uint64, error) {
	addr := common.BytesToAddress(crypto.Keccak256(caller.Bytes(), input)[12:])
	if d.state.Exist(addr) {
		return nil, common.Address{}, gas, vm.ErrInsufficientBalance
	}

	// Snapshot before CreateAccount so a failed/reverted init code run
	// undoes the account shell itself, not just the state init code wrote.
	snapshot := d.state.Snapshot()
	d.state.CreateAccount(addr)

	ret, leftover, err := d.run(caller, addr, input, nil, gas, value, false, common.Address{})
	if err != nil {
		d.state.RevertToSnapshot(snapshot)
		return ret, common.Address{}, leftover, err
	}

	depositCost := params.CreateDataGas * uint64(len(ret))
	if leftover < depositCost {
		d.state.RevertToSnapshot(snapshot)
		return nil, common.Address{}, 0, vm.ErrOutOfGas
	}
	leftover -= depositCost

	d.state.SetCode(addr, ret, crypto.Keccak256Hash(ret))
	return ret, addr, leftover, nil
}

// SelfDestruct implements vm.CallContext: moves addr's balance to
// beneficiary and removes the account. The protocol's end-of-transaction
// deferral of account removal is out of scope for this single-call-tree
// harness.
func (d *callDispatcher) SelfDestruct(addr, beneficiary common.Address, balance *uint256.Int) {
	d.state.AddBalance(beneficiary, balance)
	d.state.Suicide(addr)
}

// AddLog implements vm.CallContext.
func (d *callDispatcher) AddLog(addr common.Address, topics []common.Hash, data []byte) {
	d.state.AddLog(addr, topics, data)
}
