package vm

import "github.com/holiman/uint256"

// Memory is the EVM's byte-addressable, zero-initialized, lazily-extended
// working memory. It is addressed in bytes but billed in 32-byte
// words: activeWords tracks the word-aligned high-water mark, and
// lastGasCost caches the total (not incremental) memory-expansion fee last
// charged, so the gas schedule can derive the delta without re-deriving it
// from activeWords alone (see memoryGasCost in gas_table.go).
type Memory struct {
	store       []byte
	activeWords uint64 // number of 32-byte words touched so far this frame
	lastGasCost uint64
}

// NewMemory returns an empty memory region.
func NewMemory() *Memory {
	return &Memory{}
}

// Set writes value into the memory at offset. It never grows the backing
// store: if offset+size exceeds it, Set writes nothing, so callers are
// expected to have called Resize first.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes val big-endian into memory at offset, zero-padding to a full
// word. Used by MSTORE.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		return
	}
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// Resize grows the backing store to size bytes if it is currently smaller.
// It never shrinks: memory only ever extends within a frame.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// GetCopy returns an independent copy of size bytes starting at offset.
// Reads past the end of the allocated store (but within previously
// recorded active words) are implicitly zero per memory's lazy-init
// contract; GetCopy relies on Resize having been called first by the
// gas-charging path so offset+size never exceeds len(m.store) here.
func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	cpy := make([]byte, size)
	if offset+size <= uint64(len(m.store)) {
		copy(cpy, m.store[offset:offset+size])
	} else if offset < uint64(len(m.store)) {
		copy(cpy, m.store[offset:])
	}
	return cpy
}

// GetPtr returns a slice aliasing the live backing store. Callers must not
// retain it past the current cycle or mutate it unless that is the point
// (e.g. Set uses raw copy instead).
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	if offset+size <= uint64(len(m.store)) {
		return m.store[offset : offset+size]
	}
	return nil
}

// Len returns the current byte length of the backing store (a multiple of
// 32, since Resize is only ever called with word-aligned sizes).
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the raw backing store. Callers must not modify it.
func (m *Memory) Data() []byte {
	return m.store
}

// recordActiveWords promotes activeWords to words if words is greater,
// implementing a monotonic memory-extent watermark.
func (m *Memory) recordActiveWords(words uint64) {
	if words > m.activeWords {
		m.activeWords = words
	}
}

// Free returns the backing store to nothing, called when a frame exits so
// its memory cannot leak into the next reuse of this Memory value.
func (m *Memory) Free() {
	m.store = nil
	m.activeWords = 0
	m.lastGasCost = 0
}

// toWordSize rounds size up to the nearest whole 32-byte word, the unit in
// which memory is both addressed for billing purposes and extended.
func toWordSize(size uint64) uint64 {
	if size > (1<<64-1)-31 {
		return (1<<64 - 1) / 32
	}
	return (size + 31) / 32
}
