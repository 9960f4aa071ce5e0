// Package params holds the gas schedule and machine-state limits the
// interpreter is built against. Values are named after their go-ethereum
// protocol_params.go counterparts; this schedule fixes a single snapshot of
// them rather than switching on chain-config hard-fork flags.
package params

const (
	// Stack and call-depth limits.
	StackLimit      uint64 = 1024 // Maximum number of items allowed on the stack.
	CallCreateDepth uint64 = 1024 // Maximum depth of the call/create stack.

	// Gas tiers.
	GasZeroTier    uint64 = 0  // STOP, RETURN, REVERT.
	GasBaseTier    uint64 = 2  // ADDRESS, CALLER, POP, PC, MSIZE, GAS, ...
	GasVeryLowTier uint64 = 3  // ADD, PUSH*, DUP*, SWAP*, MLOAD, MSTORE, ...
	GasLowTier     uint64 = 5  // MUL, DIV, MOD, SIGNEXTEND, ...
	GasMidTier     uint64 = 8  // ADDMOD, MULMOD, JUMP.
	GasHighTier    uint64 = 10 // JUMPI.

	// Named single-opcode costs.
	JumpdestGas     uint64 = 1   // Once per JUMPDEST.
	SloadGas        uint64 = 50  // Once per SLOAD.
	BalanceGas      uint64 = 400 // Once per BALANCE.
	BlockhashGas    uint64 = 20  // Once per BLOCKHASH.
	ExtcodeSizeGas  uint64 = 700 // Once per EXTCODESIZE.

	// EXP.
	ExpGas     uint64 = 10 // Flat component of EXP.
	ExpByteGas uint64 = 10 // Per byte of the exponent.

	// SHA3 / KECCAK256.
	Keccak256Gas     uint64 = 30 // Flat component.
	Keccak256WordGas uint64 = 6  // Per word of input.

	// SSTORE, legacy (pre-net-gas-metering) accounting: cost depends on the
	// current value in storage, not just the opcode.
	SstoreSetGas    uint64 = 20000 // Writing a non-zero value to a zero slot.
	SstoreResetGas  uint64 = 5000  // Any other write.
	SstoreRefundGas uint64 = 15000 // Credited when a non-zero slot becomes zero.

	// Memory expansion: M(a) = MemoryGas*a + a^2/QuadCoeffDiv.
	MemoryGas     uint64 = 3
	QuadCoeffDiv  uint64 = 512
	CopyGas       uint64 = 3 // Per word, for the *COPY family.

	// LOG family.
	LogGas      uint64 = 375
	LogTopicGas uint64 = 375
	LogDataGas  uint64 = 8

	// Call-family value transfer / new-account surcharges, used by the
	// outer dispatcher's dynamic cost hooks.
	CallValueTransferGas uint64 = 9000
	CallStipend          uint64 = 2300
	CallNewAccountGas    uint64 = 25000
	CreateGas            uint64 = 32000
	CreateDataGas        uint64 = 200
)

// MaxCodeSize is the maximum permitted length, in bytes, of deployed
// contract code. Nothing in this module enforces it: neither the
// interpreter core nor the runtime package's CREATE handling checks
// deployed code against it.
const MaxCodeSize = 24576
