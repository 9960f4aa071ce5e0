package vm

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/params"
)

// executionFunc runs an operation's body once the interpreter has already
// validated stack depth and charged gas for the cycle. pc is passed
// by pointer so JUMP/JUMPI can redirect control flow; a non-nil []byte
// return carries RETURN/REVERT's output data.
type executionFunc func(pc *uint64, interpreter *EVM, scope *ScopeContext) ([]byte, error)

// operation is the per-opcode descriptor the jump table dispatches through:
// its constant gas, optional dynamic-gas function, stack-depth
// bounds, and optional memory-size function are exactly the fields the
// interpreter's fetch-decode-cost-execute cycle needs.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  gasFunc

	minStack int
	maxStack int

	memorySize memorySizeFunc
}

// JumpTable is the 256-entry operation table; entries left nil are
// undefined opcodes and fault with ErrInvalidOpCode.
type JumpTable [256]*operation

func minDupStack(n int) int  { return n }
func maxDupStack(n int) int  { return stackLimit - n + 1 }
func minSwapStack(n int) int { return minDupStack(n) }
func maxSwapStack(n int) int { return maxDupStack(n) }

var word32 = uint256.NewInt(32)

func memoryMstore(stack *Stack) (uint64, bool) { return calcMemSize64(stack.Back(0), word32) }
func memoryMload(stack *Stack) (uint64, bool)  { return calcMemSize64(stack.Back(0), word32) }
func memorySha3(stack *Stack) (uint64, bool)   { return calcMemSize64(stack.Back(0), stack.Back(1)) }
func memoryReturn(stack *Stack) (uint64, bool) { return calcMemSize64(stack.Back(0), stack.Back(1)) }
func memoryLog(stack *Stack) (uint64, bool)    { return calcMemSize64(stack.Back(0), stack.Back(1)) }

func memoryCallDataCopy(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(0), stack.Back(2))
}
func memoryCodeCopy(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(0), stack.Back(2))
}
func memoryExtCodeCopy(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(1), stack.Back(3))
}
func memoryCreate(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(1), stack.Back(2))
}
func memoryCall(stack *Stack) (uint64, bool) {
	x, overflow := calcMemSize64(stack.Back(5), stack.Back(6))
	if overflow {
		return 0, true
	}
	y, overflow := calcMemSize64(stack.Back(3), stack.Back(4))
	if overflow {
		return 0, true
	}
	if x > y {
		return x, false
	}
	return y, false
}
func memoryDelegateCall(stack *Stack) (uint64, bool) {
	x, overflow := calcMemSize64(stack.Back(4), stack.Back(5))
	if overflow {
		return 0, true
	}
	y, overflow := calcMemSize64(stack.Back(2), stack.Back(3))
	if overflow {
		return 0, true
	}
	if x > y {
		return x, false
	}
	return y, false
}

// newClassicJumpTable builds the single fixed operation table this
// interpreter dispatches through. There is no fork-gated variant
// here because the gas schedule in package params is itself a single fixed
// snapshot rather than a sequence of hard-fork deltas.
func newClassicJumpTable() *JumpTable {
	tbl := &JumpTable{
		STOP:       {execute: opStop, constantGas: constGasTier[STOP], minStack: 0, maxStack: stackLimit},
		ADD:        {execute: opAdd, constantGas: constGasTier[ADD], minStack: 2, maxStack: stackLimit},
		MUL:        {execute: opMul, constantGas: constGasTier[MUL], minStack: 2, maxStack: stackLimit},
		SUB:        {execute: opSub, constantGas: constGasTier[SUB], minStack: 2, maxStack: stackLimit},
		DIV:        {execute: opDiv, constantGas: constGasTier[DIV], minStack: 2, maxStack: stackLimit},
		SDIV:       {execute: opSdiv, constantGas: constGasTier[SDIV], minStack: 2, maxStack: stackLimit},
		MOD:        {execute: opMod, constantGas: constGasTier[MOD], minStack: 2, maxStack: stackLimit},
		SMOD:       {execute: opSmod, constantGas: constGasTier[SMOD], minStack: 2, maxStack: stackLimit},
		ADDMOD:     {execute: opAddmod, constantGas: constGasTier[ADDMOD], minStack: 3, maxStack: stackLimit},
		MULMOD:     {execute: opMulmod, constantGas: constGasTier[MULMOD], minStack: 3, maxStack: stackLimit},
		EXP:        {execute: opExp, dynamicGas: gasExp, minStack: 2, maxStack: stackLimit},
		SIGNEXTEND: {execute: opSignExtend, constantGas: constGasTier[SIGNEXTEND], minStack: 2, maxStack: stackLimit},

		LT:     {execute: opLt, constantGas: constGasTier[LT], minStack: 2, maxStack: stackLimit},
		GT:     {execute: opGt, constantGas: constGasTier[GT], minStack: 2, maxStack: stackLimit},
		SLT:    {execute: opSlt, constantGas: constGasTier[SLT], minStack: 2, maxStack: stackLimit},
		SGT:    {execute: opSgt, constantGas: constGasTier[SGT], minStack: 2, maxStack: stackLimit},
		EQ:     {execute: opEq, constantGas: constGasTier[EQ], minStack: 2, maxStack: stackLimit},
		ISZERO: {execute: opIszero, constantGas: constGasTier[ISZERO], minStack: 1, maxStack: stackLimit},
		AND:    {execute: opAnd, constantGas: constGasTier[AND], minStack: 2, maxStack: stackLimit},
		OR:     {execute: opOr, constantGas: constGasTier[OR], minStack: 2, maxStack: stackLimit},
		XOR:    {execute: opXor, constantGas: constGasTier[XOR], minStack: 2, maxStack: stackLimit},
		NOT:    {execute: opNot, constantGas: constGasTier[NOT], minStack: 1, maxStack: stackLimit},
		BYTE:   {execute: opByte, constantGas: constGasTier[BYTE], minStack: 2, maxStack: stackLimit},

		SHA3: {execute: opSha3, dynamicGas: gasSha3, minStack: 2, maxStack: stackLimit, memorySize: memorySha3},

		ADDRESS:      {execute: opAddress, constantGas: constGasTier[ADDRESS], minStack: 0, maxStack: stackLimit},
		BALANCE:      {execute: opBalance, dynamicGas: gasBalance, minStack: 1, maxStack: stackLimit},
		ORIGIN:       {execute: opOrigin, constantGas: constGasTier[ORIGIN], minStack: 0, maxStack: stackLimit},
		CALLER:       {execute: opCaller, constantGas: constGasTier[CALLER], minStack: 0, maxStack: stackLimit},
		CALLVALUE:    {execute: opCallValue, constantGas: constGasTier[CALLVALUE], minStack: 0, maxStack: stackLimit},
		CALLDATALOAD: {execute: opCallDataLoad, constantGas: constGasTier[CALLDATALOAD], minStack: 1, maxStack: stackLimit},
		CALLDATASIZE: {execute: opCallDataSize, constantGas: constGasTier[CALLDATASIZE], minStack: 0, maxStack: stackLimit},
		CALLDATACOPY: {execute: opCallDataCopy, constantGas: constGasTier[CALLDATACOPY], dynamicGas: gasCallDataCopy, minStack: 3, maxStack: stackLimit, memorySize: memoryCallDataCopy},
		CODESIZE:     {execute: opCodeSize, constantGas: constGasTier[CODESIZE], minStack: 0, maxStack: stackLimit},
		CODECOPY:     {execute: opCodeCopy, constantGas: constGasTier[CODECOPY], dynamicGas: gasCodeCopy, minStack: 3, maxStack: stackLimit, memorySize: memoryCodeCopy},
		GASPRICE:     {execute: opGasprice, constantGas: constGasTier[GASPRICE], minStack: 0, maxStack: stackLimit},
		EXTCODESIZE:  {execute: opExtCodeSize, constantGas: constGasTier[EXTCODESIZE], minStack: 1, maxStack: stackLimit},
		EXTCODECOPY:  {execute: opExtCodeCopy, constantGas: constGasTier[EXTCODECOPY], dynamicGas: gasExtCodeCopy, minStack: 4, maxStack: stackLimit, memorySize: memoryExtCodeCopy},

		BLOCKHASH:  {execute: opBlockhash, dynamicGas: gasBlockhash, minStack: 1, maxStack: stackLimit},
		COINBASE:   {execute: opCoinbase, constantGas: constGasTier[COINBASE], minStack: 0, maxStack: stackLimit},
		TIMESTAMP:  {execute: opTimestamp, constantGas: constGasTier[TIMESTAMP], minStack: 0, maxStack: stackLimit},
		NUMBER:     {execute: opNumber, constantGas: constGasTier[NUMBER], minStack: 0, maxStack: stackLimit},
		DIFFICULTY: {execute: opDifficulty, constantGas: constGasTier[DIFFICULTY], minStack: 0, maxStack: stackLimit},
		GASLIMIT:   {execute: opGasLimit, constantGas: constGasTier[GASLIMIT], minStack: 0, maxStack: stackLimit},

		POP:      {execute: opPop, constantGas: constGasTier[POP], minStack: 1, maxStack: stackLimit},
		MLOAD:    {execute: opMload, constantGas: constGasTier[MLOAD], dynamicGas: pureMemoryGasCost, minStack: 1, maxStack: stackLimit, memorySize: memoryMload},
		MSTORE:   {execute: opMstore, constantGas: constGasTier[MSTORE], dynamicGas: pureMemoryGasCost, minStack: 2, maxStack: stackLimit, memorySize: memoryMstore},
		MSTORE8:  {execute: opMstore8, constantGas: constGasTier[MSTORE8], dynamicGas: pureMemoryGasCost, minStack: 2, maxStack: stackLimit, memorySize: memoryMstore},
		SLOAD:    {execute: opSload, dynamicGas: gasSload, minStack: 1, maxStack: stackLimit},
		SSTORE:   {execute: opSstore, dynamicGas: gasSstore, minStack: 2, maxStack: stackLimit},
		JUMP:     {execute: opJump, constantGas: constGasTier[JUMP], minStack: 1, maxStack: stackLimit},
		JUMPI:    {execute: opJumpi, constantGas: constGasTier[JUMPI], minStack: 2, maxStack: stackLimit},
		PC:       {execute: opPc, constantGas: constGasTier[PC], minStack: 0, maxStack: stackLimit},
		MSIZE:    {execute: opMsize, constantGas: constGasTier[MSIZE], minStack: 0, maxStack: stackLimit},
		GAS:      {execute: opGas, constantGas: constGasTier[GAS], minStack: 0, maxStack: stackLimit},
		JUMPDEST: {execute: opJumpdest, constantGas: constGasTier[JUMPDEST], minStack: 0, maxStack: stackLimit},

		CREATE:       {execute: opCreate, constantGas: params.CreateGas, dynamicGas: gasCreate, minStack: 3, maxStack: stackLimit, memorySize: memoryCreate},
		CALL:         {execute: opCall, dynamicGas: gasCall, minStack: 7, maxStack: stackLimit, memorySize: memoryCall},
		CALLCODE:     {execute: opCallCode, dynamicGas: gasCallCode, minStack: 7, maxStack: stackLimit, memorySize: memoryCall},
		RETURN:       {execute: opReturn, constantGas: constGasTier[RETURN], dynamicGas: pureMemoryGasCost, minStack: 2, maxStack: stackLimit, memorySize: memoryReturn},
		DELEGATECALL: {execute: opDelegateCall, dynamicGas: gasDelegateCall, minStack: 6, maxStack: stackLimit, memorySize: memoryDelegateCall},

		REVERT:  {execute: opRevert, constantGas: constGasTier[REVERT], dynamicGas: pureMemoryGasCost, minStack: 2, maxStack: stackLimit, memorySize: memoryReturn},
		INVALID: {execute: opUndefined, minStack: 0, maxStack: stackLimit},
		SUICIDE: {execute: opSuicide, dynamicGas: gasSuicide, minStack: 1, maxStack: stackLimit},
	}

	for i := 0; i < 32; i++ {
		tbl[PUSH1+OpCode(i)] = &operation{
			execute:     opPush(i + 1),
			constantGas: constGasTier[PUSH1+OpCode(i)],
			minStack:    0,
			maxStack:    stackLimit - 1,
		}
	}
	for i := 1; i <= 16; i++ {
		tbl[DUP1+OpCode(i-1)] = &operation{
			execute:     opDup(i),
			constantGas: constGasTier[DUP1+OpCode(i-1)],
			minStack:    minDupStack(i),
			maxStack:    maxDupStack(i),
		}
		tbl[SWAP1+OpCode(i-1)] = &operation{
			execute:     opSwap(i),
			constantGas: constGasTier[SWAP1+OpCode(i-1)],
			minStack:    minSwapStack(i + 1),
			maxStack:    maxSwapStack(i + 1),
		}
	}
	for i := 0; i < 5; i++ {
		tbl[LOG0+OpCode(i)] = &operation{
			execute:    opLog(i),
			dynamicGas: makeGasLog(uint64(i)),
			minStack:   2 + i,
			maxStack:   stackLimit,
			memorySize: memoryLog,
		}
	}
	return tbl
}
