package vm

import (
	"hash"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/evmlite/evmlite/common"
)

// CallContext is the nested-frame collaborator the core invokes but does
// not implement: CREATE/CALL/CALLCODE/DELEGATECALL/SUICIDE/LOG all
// need behavior — spinning up a child frame, transferring value, appending
// a log, destroying an account — that lives one layer above a single
// fetch-decode-execute loop. An EVM built without a CallContext still runs
// straight-line, storage-touching, non-calling code (e.g. the interpreter
// test suite): CREATE and the CALL family push a zero failure flag, and
// LOG and SUICIDE skip the callback, rather than faulting on a nil pointer.
type CallContext interface {
	Call(env *EVM, caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error)
	CallCode(env *EVM, caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error)
	DelegateCall(env *EVM, originCaller, addr, codeAddr common.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error)
	Create(env *EVM, caller common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, contractAddr common.Address, leftOverGas uint64, err error)
	SelfDestruct(addr, beneficiary common.Address, balance *uint256.Int)
	AddLog(addr common.Address, topics []common.Hash, data []byte)
}

// Config tunes an EVM's behavior: a depth limit and an optional tracer
// hook.
type Config struct {
	MaxCallDepth int
	Tracer       Tracer
}

// ScopeContext bundles the three pieces of state a single frame's
// operations read and mutate: its operand stack, its memory, and the
// Contract describing the code/calldata/gas meter it is running.
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}

// keccakState extends hash.Hash with the Read method that the
// sha3 package's Keccak implementations provide, which lets Sum
// be computed without cloning the hasher's internal state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// EVM is one interpreter instance bound to a block/tx context and a
// CallContext collaborator. A single EVM value is reused across the
// nested frames of one call tree; Run is re-entered for each frame.
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	StateDB   StateDB

	CallContext CallContext
	Config      Config
	table       *JumpTable

	depth int

	// callGasTemp stashes the amount a CALL-family gasFunc decided to
	// forward to the callee, so the operation body can hand it to
	// CallContext.Call without recomputing the 63/64ths rule.
	callGasTemp uint64

	hasher    keccakState
	hasherBuf common.Hash

	readOnly bool
}

// NewEVM returns an interpreter ready to run frames against the given
// block/tx context and world state.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, callCtx CallContext, cfg Config) *EVM {
	if cfg.MaxCallDepth == 0 {
		cfg.MaxCallDepth = 1024
	}
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		StateDB:     statedb,
		CallContext: callCtx,
		Config:      cfg,
		table:       newClassicJumpTable(),
		hasher:      sha3.NewLegacyKeccak256().(keccakState),
	}
}

// Depth reports how many nested frames are currently on the call stack.
func (evm *EVM) Depth() int { return evm.depth }

// Run executes contract's code against input, producing one of three
// terminal outcomes: a normal halt (ret, nil), an exceptional
// halt (nil, some error other than ErrExecutionReverted), or a revert
// (ret, ErrExecutionReverted) that preserves its return data.
//
// It implements the fetch/decode/cost/execute cycle: fetch the opcode,
// look it up in the jump table (fault on nil), check
// stack depth against the operation's bounds, charge gas (the static
// tier first, then the dynamic cost, which includes memory expansion;
// both are debited before any memory mutation happens), run the
// operation body, and advance the program counter by one unless the body
// signaled a halt. Bodies that move the program counter leave it one short
// of where execution continues (JUMP/JUMPI at dest-1, PUSHn on its last
// immediate byte), so that advance lands on the next instruction.
func (evm *EVM) Run(contract *Contract, input []byte, readOnly bool) (ret []byte, err error) {
	evm.depth++
	startGas := contract.Gas
	defer func() {
		evm.depth--
		observeFrameGas(startGas, contract.Gas)
	}()

	if evm.depth > evm.Config.MaxCallDepth {
		return nil, ErrDepth
	}

	contract.Input = input
	prevReadOnly := evm.readOnly
	if readOnly && !evm.readOnly {
		evm.readOnly = true
		defer func() { evm.readOnly = prevReadOnly }()
	}

	var (
		pc     = uint64(0)
		op     OpCode
		mem    = NewMemory()
		stack  = newstack()
		scope  = &ScopeContext{Memory: mem, Stack: stack, Contract: contract}
		cost   uint64
	)
	defer returnStack(stack)
	defer mem.Free()

	for {
		op = contract.GetOp(pc)
		opCounter.WithLabelValues(op.String()).Inc()
		operation := evm.table[op]
		if operation == nil {
			return nil, &ErrInvalidOpCode{opcode: op}
		}
		if sLen := stack.len(); sLen < operation.minStack {
			return nil, &ErrStackUnderflow{stackLen: sLen, required: operation.minStack}
		} else if sLen > operation.maxStack {
			return nil, &ErrStackOverflow{stackLen: sLen, limit: operation.maxStack}
		}

		cost = operation.constantGas
		if !contract.UseGas(cost) {
			return nil, ErrOutOfGas
		}

		var memorySize uint64
		if operation.memorySize != nil {
			size, overflow := operation.memorySize(stack)
			if overflow {
				return nil, ErrInvalidMemoryAccess
			}
			if memorySize, overflow = safeMul(toWordSize(size), 32); overflow {
				return nil, ErrInvalidMemoryAccess
			}
		}

		if operation.dynamicGas != nil {
			var dynamicCost uint64
			dynamicCost, err = operation.dynamicGas(evm, contract, stack, mem, memorySize)
			if err != nil || !contract.UseGas(dynamicCost) {
				if err == nil {
					err = ErrOutOfGas
				}
				return nil, err
			}
			cost += dynamicCost // for tracing
		}
		if memorySize > 0 {
			mem.Resize(memorySize)
		}

		if evm.Config.Tracer != nil {
			evm.Config.Tracer.CaptureState(pc, op, contract.Gas, cost, scope, evm.depth)
		}

		res, err := operation.execute(&pc, evm, scope)
		if err != nil {
			if err == errStopToken {
				return res, nil
			}
			return res, err
		}
		pc++
	}
}
