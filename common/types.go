package common

import "github.com/holiman/uint256"

// AddressLength is the byte length of an Ethereum-style account address.
const AddressLength = 20

// HashLength is the byte length of a Keccak-256 digest.
const HashLength = 32

// Address is a 160-bit account identifier. On the stack it is carried as a
// Word with the upper 96 bits cleared.
type Address [AddressLength]byte

// BytesToAddress right-aligns b into an Address, truncating from the left
// if b is longer than AddressLength.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// HexToAddress parses a hex string (with or without 0x prefix) into an Address.
func HexToAddress(s string) Address { return BytesToAddress(FromHex(s)) }

func (a Address) Bytes() []byte { return a[:] }
func (a Address) Hex() string   { return "0x" + Bytes2Hex(a[:]) }
func (a Address) String() string { return a.Hex() }

// Word converts the address to a 256-bit word with the upper 96 bits zero,
// the representation it takes on the stack (e.g. as pushed by ADDRESS).
func (a Address) Word() uint256.Int {
	var w uint256.Int
	w.SetBytes(a[:])
	return w
}

// Hash is a 256-bit Keccak digest, also used as a storage key/value.
type Hash [HashLength]byte

// BytesToHash right-aligns b into a Hash, truncating from the left if b is
// longer than HashLength.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) Hex() string    { return "0x" + Bytes2Hex(h[:]) }
func (h Hash) String() string { return h.Hex() }

// Word reconstructs the word this hash encodes (storage values and word-sized
// memory reads round-trip through Hash at the StateDB boundary).
func (h Hash) Word() uint256.Int {
	var w uint256.Int
	w.SetBytes(h[:])
	return w
}

// WordToHash serializes a word big-endian into a 32-byte Hash, the form
// storage values and memory words take when crossing the StateDB boundary.
func WordToHash(w *uint256.Int) Hash {
	return Hash(w.Bytes32())
}
