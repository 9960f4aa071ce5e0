package vm

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/params"
)

// calcMemSize64 returns the byte offset one past the highest byte an access
// of length starting at offset touches, i.e. offset+length, reporting
// overflow instead of wrapping.
func calcMemSize64(offset, length *uint256.Int) (uint64, bool) {
	if length.IsZero() {
		return 0, false
	}
	if _, overflow := offset.Uint64WithOverflow(); overflow {
		return 0, true
	}
	o, overflow := offset.Uint64WithOverflow()
	if overflow {
		return 0, true
	}
	l, overflow := length.Uint64WithOverflow()
	if overflow {
		return 0, true
	}
	return safeAdd(o, l)
}

// memoryGasCost implements M(a) = MemoryGas*a + a^2/QuadCoeffDiv,
// returning the incremental cost of growing memory from its current
// word-count to newMemSize bytes. It is never negative because activeWords
// never decreases, and mem.lastGasCost caches the prior cumulative fee.
func memoryGasCost(mem *Memory, newMemSize uint64) (uint64, error) {
	if newMemSize == 0 {
		return 0, nil
	}
	if newMemSize > 0x1FFFFFFFE0 {
		return 0, ErrGasUintOverflow
	}
	newMemSizeWords := toWordSize(newMemSize)
	newMemSize = newMemSizeWords * 32

	if newMemSize <= uint64(mem.Len()) {
		return 0, nil
	}
	square := newMemSizeWords * newMemSizeWords
	linCoef := newMemSizeWords * params.MemoryGas
	quadCoef := square / params.QuadCoeffDiv
	newTotalFee := linCoef + quadCoef

	fee := newTotalFee - mem.lastGasCost
	mem.lastGasCost = newTotalFee
	mem.recordActiveWords(newMemSizeWords)
	return fee, nil
}

// memoryCopierGas builds the dynamic-gas function for the *COPY family:
// memory expansion plus CopyGas per 32-byte word copied. stackpos is the
// stack position (0-indexed from the top) of the length operand.
func memoryCopierGas(stackpos int) gasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		words, overflow := stack.Back(stackpos).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflow
		}
		wordGas, overflow := safeMul(toWordSize(words), params.CopyGas)
		if overflow {
			return 0, ErrGasUintOverflow
		}
		gas, overflow = safeAdd(gas, wordGas)
		if overflow {
			return 0, ErrGasUintOverflow
		}
		return gas, nil
	}
}

var (
	gasCallDataCopy = memoryCopierGas(2)
	gasCodeCopy     = memoryCopierGas(2)
	gasExtCodeCopy  = memoryCopierGas(3)
)

// pureMemoryGasCost is used by opcodes whose entire dynamic cost is memory
// expansion: MLOAD, MSTORE, MSTORE8, RETURN, REVERT.
func pureMemoryGasCost(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

// gasSha3 charges memory expansion plus Keccak256WordGas per word of the
// hashed input: 30 + 6*ceil(size/32).
func gasSha3(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	size, overflow := stack.Back(1).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	wordGas, overflow := safeMul(toWordSize(size), params.Keccak256WordGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = safeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = safeAdd(gas, params.Keccak256Gas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// gasExp implements EXP's byte_length(exponent) formula: 10 + 10*bytes.
// byte_length(0) is 0, matching BitLen()==0 for a zero exponent.
func gasExp(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	exponent := stack.Back(1)
	expByteLen := uint64((exponent.BitLen() + 7) / 8)
	gas, overflow := safeMul(expByteLen, params.ExpByteGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	gas, overflow = safeAdd(gas, params.ExpGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// gasSload is SLOAD's flat per-call cost.
func gasSload(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return params.SloadGas, nil
}

// gasBalance is BALANCE's flat per-call cost.
func gasBalance(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return params.BalanceGas, nil
}

// gasBlockhash is BLOCKHASH's flat per-call cost.
func gasBlockhash(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return params.BlockhashGas, nil
}

// gasSstore implements the legacy, current-value-only SSTORE schedule:
// writing a non-zero value into a zero slot costs SstoreSetGas;
// any other write costs SstoreResetGas. A transition from non-zero to zero
// additionally credits SstoreRefundGas to the transaction-scoped refund
// counter (owned by the outer dispatcher, not this frame).
//
// This deliberately reads current storage via StateDB.GetStorage rather
// than charging a flat cost keyed off the opcode alone.
func gasSstore(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	loc, val := stack.Back(0), stack.Back(1)
	key := common.Hash(loc.Bytes32())
	current := evm.StateDB.GetStorage(contract.Address(), key)

	switch {
	case current == (common.Hash{}) && !val.IsZero(): // 0 -> non-zero
		return params.SstoreSetGas, nil
	case current != (common.Hash{}) && val.IsZero(): // non-zero -> 0
		evm.StateDB.AddRefund(params.SstoreRefundGas)
		return params.SstoreResetGas, nil
	default: // non-zero -> non-zero, or 0 -> 0
		return params.SstoreResetGas, nil
	}
}

// makeGasLog builds LOG0..LOG4's dynamic-gas function: memory expansion,
// plus LogGas, plus n*LogTopicGas, plus LogDataGas per byte logged.
func makeGasLog(n uint64) gasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		requestedSize, overflow := stack.Back(1).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflow
		}
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		if gas, overflow = safeAdd(gas, params.LogGas); overflow {
			return 0, ErrGasUintOverflow
		}
		if gas, overflow = safeAdd(gas, n*params.LogTopicGas); overflow {
			return 0, ErrGasUintOverflow
		}
		dataGas, overflow := safeMul(requestedSize, params.LogDataGas)
		if overflow {
			return 0, ErrGasUintOverflow
		}
		if gas, overflow = safeAdd(gas, dataGas); overflow {
			return 0, ErrGasUintOverflow
		}
		return gas, nil
	}
}

// gasCreate charges memory expansion for CREATE. The flat CreateGas
// component is charged statically by the operation table; the outer
// dispatcher that actually deploys the result charges CODEDEPOSIT
// (CreateDataGas per byte of returned code), since code size is only
// known after the nested frame returns.
func gasCreate(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

// callGas implements the "63/64ths rule": a CALL-family instruction may
// forward at most all-but-one-64th of the gas remaining after its own
// surcharge has been deducted, when the caller requests more than that (or
// requests the sentinel "all remaining gas").
func callGas(availableGas, base uint64, callCost *uint256.Int) (uint64, error) {
	if availableGas < base {
		return 0, ErrGasUintOverflow
	}
	availableGas -= base
	gas := availableGas - availableGas/64
	if !callCost.IsUint64() || gas < callCost.Uint64() {
		return gas, nil
	}
	return callCost.Uint64(), nil
}

// gasCallVariant builds the dynamic-gas function shared by CALL, CALLCODE
// and DELEGATECALL: memory expansion, a new-account surcharge for CALL
// when it would transfer value into a previously-absent account, a
// value-transfer stipend for CALL/CALLCODE, and the 63/64ths-limited
// amount the instruction proposes to forward to the callee (stashed in
// evm.callGasTemp for the operation body to pick up after this function
// has charged for it).
func gasCallVariant(hasValue, newAccountSurcharge bool) gasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		var gas uint64
		if hasValue {
			transfersValue := !stack.Back(2).IsZero()
			if transfersValue {
				gas += params.CallValueTransferGas
			}
			if newAccountSurcharge && transfersValue {
				addr := common.BytesToAddress(stack.Back(1).Bytes())
				if !evm.StateDB.Exist(addr) {
					gas += params.CallNewAccountGas
				}
			}
		}
		memGas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		var overflow bool
		if gas, overflow = safeAdd(gas, memGas); overflow {
			return 0, ErrGasUintOverflow
		}
		forwarded, err := callGas(contract.Gas, gas, stack.Back(0))
		if err != nil {
			return 0, err
		}
		evm.callGasTemp = forwarded
		if gas, overflow = safeAdd(gas, forwarded); overflow {
			return 0, ErrGasUintOverflow
		}
		return gas, nil
	}
}

var (
	gasCall         = gasCallVariant(true, true)
	gasCallCode     = gasCallVariant(true, false)
	gasDelegateCall = gasCallVariant(false, false)
)

// gasSuicide charges the new-account surcharge when SUICIDE would move a
// non-zero balance into a beneficiary that doesn't yet exist, mirroring the
// CALL family's new-account rule.
func gasSuicide(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	beneficiary := common.BytesToAddress(stack.Back(0).Bytes())
	if !evm.StateDB.Exist(beneficiary) && !evm.StateDB.GetBalance(contract.Address()).IsZero() {
		return params.CallNewAccountGas, nil
	}
	return 0, nil
}
