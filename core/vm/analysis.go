package vm

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/evmlite/evmlite/common"
)

// bitvec is a bitmap over code offsets, one bit per byte, set wherever that
// byte is itself an opcode (as opposed to PUSH immediate data). A JUMPDEST
// is a valid jump target only if its byte is both 0x5b and marked as code
// here: that byte is not the immediate data of a preceding PUSH.
type bitvec []byte

func (v bitvec) isCode(pos uint64) bool {
	return v[pos/8]&(1<<(pos%8)) != 0
}

func (v bitvec) set(pos uint64) {
	v[pos/8] |= 1 << (pos % 8)
}

// codeBitmap performs the forward scan required to tell JUMPDEST bytes from
// PUSH immediate data: every byte is code unless it falls inside the
// immediate-data span of a preceding PUSHn.
func codeBitmap(code []byte) bitvec {
	bits := make(bitvec, len(code)/8+1)
	for pc := uint64(0); pc < uint64(len(code)); pc++ {
		op := OpCode(code[pc])
		bits.set(pc)
		if op.IsPush() {
			pc += uint64(op.PushBytes())
		}
	}
	return bits
}

// analysisCache memoizes codeBitmap by code hash so that a contract invoked
// repeatedly (e.g. across CALLs in the same transaction, or across
// transactions in a long-running node) only pays for the forward scan
// once. Unbounded re-analysis would turn every JUMP/JUMPI into an O(code
// length) operation; the cache amortizes that to O(1) after first use.
var analysisCache, _ = lru.New(4096)

// destinations returns the memoized jump-destination bitmap for code,
// computing and caching it on first use.
func destinations(codeHash common.Hash, code []byte) bitvec {
	if cached, ok := analysisCache.Get(codeHash); ok {
		return cached.(bitvec)
	}
	bits := codeBitmap(code)
	analysisCache.Add(codeHash, bits)
	return bits
}
