package vm

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/common"
	"github.com/evmlite/evmlite/params"
)

// opXxx functions run a single operation's body. Stack arity
// has already been checked against the operation's min/maxStack and gas has
// already been deducted by the time the interpreter calls these; they only
// need to pop/push and mutate pc/memory/state.

func opStop(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	return nil, errStopToken
}

func opAdd(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Add(&x, y)
	return nil, nil
}

func opSub(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Sub(&x, y)
	return nil, nil
}

func opMul(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Mul(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.SMod(&x, y)
	return nil, nil
}

func opExp(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	base, exponent := scope.Stack.pop(), scope.Stack.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	back, num := scope.Stack.pop(), scope.Stack.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opAddmod(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y, z := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y, z := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opLt(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opNot(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	th, val := scope.Stack.pop(), scope.Stack.peek()
	val.Byte(&th)
	return nil, nil
}

func opSha3(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.peek()
	data := scope.Memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := evm.hasherBuf
	evm.hasher.Reset()
	evm.hasher.Write(data)
	evm.hasher.Read(hash[:])
	size.SetBytes(hash[:])
	return nil, nil
}

func opAddress(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	w := scope.Contract.Address().Word()
	scope.Stack.push(&w)
	return nil, nil
}

func opBalance(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	addr := common.BytesToAddress(slot.Bytes())
	slot.Set(evm.StateDB.GetBalance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	w := evm.TxContext.Origin.Word()
	scope.Stack.push(&w)
	return nil, nil
}

func opCaller(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	w := scope.Contract.Caller().Word()
	scope.Stack.push(&w)
	return nil, nil
}

func opCallValue(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	v := scope.Contract.Value()
	scope.Stack.push(v)
	return nil, nil
}

func opCallDataLoad(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(scope.Contract.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	w := uint256.NewInt(uint64(len(scope.Contract.Input)))
	scope.Stack.push(w)
	return nil, nil
}

func opCallDataCopy(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	memOffset, dataOffset, length := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.pop()
	dataOff64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOff64 = maxUint64
	}
	data := getData(scope.Contract.Input, dataOff64, length.Uint64())
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opCodeSize(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	w := uint256.NewInt(uint64(len(scope.Contract.Code)))
	scope.Stack.push(w)
	return nil, nil
}

func opCodeCopy(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	memOffset, codeOffset, length := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.pop()
	codeOff64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff64 = maxUint64
	}
	data := getData(scope.Contract.Code, codeOff64, length.Uint64())
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opGasprice(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(evm.TxContext.GasPrice)
	return nil, nil
}

func opExtCodeSize(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	addr := common.BytesToAddress(slot.Bytes())
	slot.SetUint64(uint64(len(evm.StateDB.GetCode(addr))))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	stack := scope.Stack
	addrWord, memOffset, codeOffset, length := stack.pop(), stack.pop(), stack.pop(), stack.pop()
	addr := common.BytesToAddress(addrWord.Bytes())
	codeOff64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff64 = maxUint64
	}
	code := evm.StateDB.GetCode(addr)
	data := getData(code, codeOff64, length.Uint64())
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opBlockhash(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	num := scope.Stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	var upper, lower uint64
	upper = evm.Context.BlockNumber.Uint64()
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		num.SetBytes(evm.Context.GetHash(num64).Bytes())
	} else {
		num.Clear()
	}
	return nil, nil
}

func opCoinbase(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	w := evm.Context.Coinbase.Word()
	scope.Stack.push(&w)
	return nil, nil
}

func opTimestamp(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(uint256.NewInt(evm.Context.Time))
	return nil, nil
}

func opNumber(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(evm.Context.BlockNumber)
	return nil, nil
}

func opDifficulty(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(evm.Context.Difficulty)
	return nil, nil
}

func opGasLimit(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(uint256.NewInt(evm.Context.GasLimit))
	return nil, nil
}

func opPop(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop()
	return nil, nil
}

func opMload(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	v := scope.Stack.peek()
	offset := v.Uint64()
	v.SetBytes(scope.Memory.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	mStart, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	off, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	loc := scope.Stack.peek()
	hash := common.Hash(loc.Bytes32())
	val := evm.StateDB.GetStorage(scope.Contract.Address(), hash)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	loc, val := scope.Stack.pop(), scope.Stack.pop()
	key := common.Hash(loc.Bytes32())
	evm.StateDB.SetStorage(scope.Contract.Address(), key, common.WordToHash(&val))
	return nil, nil
}

func opJump(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	dest := scope.Stack.pop()
	if !scope.Contract.validJumpdest(&dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64() - 1 // the interpreter loop's pc++ lands on dest
	return nil, nil
}

func opJumpi(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	dest, cond := scope.Stack.pop(), scope.Stack.pop()
	if !cond.IsZero() {
		if !scope.Contract.validJumpdest(&dest) {
			return nil, ErrInvalidJump
		}
		*pc = dest.Uint64() - 1 // the interpreter loop's pc++ lands on dest
	}
	return nil, nil
}

func opJumpdest(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(uint256.NewInt(*pc))
	return nil, nil
}

func opMsize(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(uint256.NewInt(uint64(scope.Memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(uint256.NewInt(scope.Contract.Gas))
	return nil, nil
}

func opReturn(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	ret := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, errStopToken
}

func opRevert(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	ret := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, ErrExecutionReverted
}

func opUndefined(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	return nil, &ErrInvalidOpCode{opcode: scope.Contract.GetOp(*pc)}
}

func opSuicide(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	beneficiary := scope.Stack.pop()
	balance := evm.StateDB.GetBalance(scope.Contract.Address())
	if evm.CallContext != nil {
		evm.CallContext.SelfDestruct(scope.Contract.Address(), common.BytesToAddress(beneficiary.Bytes()), balance)
	}
	return nil, errStopToken
}

// opCreate, opCall, opCallCode and opDelegateCall hand frame construction
// off to evm.CallContext (the core invokes nested calls, it does not
// implement them). For the CALL family, callGasTemp was computed by this
// instruction's gasFunc moments earlier: the gas-accounting ordering rule
// means the gas-forwarding decision has already been made by the time the
// body runs. opCreate does not use callGasTemp; it forwards all of the
// frame's remaining gas.

func opCreate(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	value, offset, size := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.pop()
	input := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	gas := scope.Contract.Gas
	scope.Contract.UseGas(gas)

	if evm.CallContext == nil {
		scope.Stack.push(new(uint256.Int))
		return nil, nil
	}
	ret, addr, returnGas, err := evm.CallContext.Create(evm, scope.Contract.Address(), input, gas, &value)
	if err != nil {
		scope.Stack.push(new(uint256.Int))
	} else {
		w := addr.Word()
		scope.Stack.push(&w)
	}
	scope.Contract.Gas += returnGas
	if err == ErrExecutionReverted {
		return ret, nil
	}
	return nil, nil
}

func opCall(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	stack := scope.Stack
	gasWord, addrWord, value := stack.pop(), stack.pop(), stack.pop()
	inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop()
	addr := common.BytesToAddress(addrWord.Bytes())
	args := scope.Memory.GetCopy(inOffset.Uint64(), inSize.Uint64())

	if evm.readOnly && !value.IsZero() {
		return nil, ErrWriteProtection
	}

	gas := evm.callGasTemp
	_ = gasWord
	if !value.IsZero() {
		gas += params.CallStipend
	}
	if evm.CallContext == nil {
		stack.push(new(uint256.Int))
		return nil, nil
	}
	ret, returnGas, err := evm.CallContext.Call(evm, scope.Contract.Address(), addr, args, gas, &value)
	if err != nil {
		stack.push(new(uint256.Int))
	} else {
		stack.push(uint256.NewInt(1))
	}
	if err == nil || err == ErrExecutionReverted {
		scope.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	scope.Contract.Gas += returnGas
	return nil, nil
}

func opCallCode(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	stack := scope.Stack
	gasWord, addrWord, value := stack.pop(), stack.pop(), stack.pop()
	inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop()
	addr := common.BytesToAddress(addrWord.Bytes())
	args := scope.Memory.GetCopy(inOffset.Uint64(), inSize.Uint64())

	gas := evm.callGasTemp
	_ = gasWord
	if !value.IsZero() {
		gas += params.CallStipend
	}
	if evm.CallContext == nil {
		stack.push(new(uint256.Int))
		return nil, nil
	}
	ret, returnGas, err := evm.CallContext.CallCode(evm, scope.Contract.Address(), addr, args, gas, &value)
	if err != nil {
		stack.push(new(uint256.Int))
	} else {
		stack.push(uint256.NewInt(1))
	}
	if err == nil || err == ErrExecutionReverted {
		scope.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	scope.Contract.Gas += returnGas
	return nil, nil
}

func opDelegateCall(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	stack := scope.Stack
	gasWord, addrWord := stack.pop(), stack.pop()
	inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop()
	addr := common.BytesToAddress(addrWord.Bytes())
	args := scope.Memory.GetCopy(inOffset.Uint64(), inSize.Uint64())

	gas := evm.callGasTemp
	_ = gasWord
	if evm.CallContext == nil {
		stack.push(new(uint256.Int))
		return nil, nil
	}
	ret, returnGas, err := evm.CallContext.DelegateCall(evm, scope.Contract.Caller(), scope.Contract.Address(), addr, args, gas)
	if err != nil {
		stack.push(new(uint256.Int))
	} else {
		stack.push(uint256.NewInt(1))
	}
	if err == nil || err == ErrExecutionReverted {
		scope.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	scope.Contract.Gas += returnGas
	return nil, nil
}

// getData returns size bytes from data starting at offset, zero-padding
// past the end — the shared helper behind CALLDATALOAD/CALLDATACOPY/
// CODECOPY/EXTCODECOPY's implicit-zero-past-the-end convention.
func getData(data []byte, offset, size uint64) []byte {
	if offset > uint64(len(data)) {
		offset = uint64(len(data))
	}
	end := offset + size
	if end > uint64(len(data)) || end < offset {
		end = uint64(len(data))
	}
	cpy := make([]byte, size)
	copy(cpy, data[offset:end])
	return cpy
}

// opPush returns a closure that pushes the n bytes of immediate data
// following the opcode, zero-extended to a full word.
func opPush(n int) executionFunc {
	return func(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
		codeLen := uint64(len(scope.Contract.Code))
		start := min(codeLen, *pc+1)
		end := min(codeLen, start+uint64(n))
		data := getData(scope.Contract.Code, start, uint64(n))
		_ = end
		var w uint256.Int
		w.SetBytes(data)
		scope.Stack.push(&w)
		*pc += uint64(n)
		return nil, nil
	}
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// opDup returns a closure duplicating the n-th stack item (1-indexed from
// the top) onto the top.
func opDup(n int) executionFunc {
	return func(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
		scope.Stack.dup(n)
		return nil, nil
	}
}

// opSwap returns a closure exchanging the top item with the n-th item
// below it.
func opSwap(n int) executionFunc {
	return func(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
		scope.Stack.swap(n + 1)
		return nil, nil
	}
}

// opLog returns a closure appending a log record with n topics.
func opLog(n int) executionFunc {
	return func(pc *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
		if evm.readOnly {
			return nil, ErrWriteProtection
		}
		stack := scope.Stack
		mStart, mSize := stack.pop(), stack.pop()
		topics := make([]common.Hash, n)
		for i := 0; i < n; i++ {
			t := stack.pop()
			topics[i] = common.WordToHash(&t)
		}
		data := scope.Memory.GetCopy(mStart.Uint64(), mSize.Uint64())
		if evm.CallContext != nil {
			evm.CallContext.AddLog(scope.Contract.Address(), topics, data)
		}
		return nil, nil
	}
}
