// Package state provides a minimal in-memory StateDB satisfying
// core/vm.StateDB, grounded on go-ethereum's core/state package: an
// account set keyed by address, each with a balance, code and a storage
// trie (here a plain map), all mutations routed through a journal so a
// frame's writes can be rolled back on an exceptional halt or REVERT
// (the interpreter's snapshot/revert contract).
package state

import (
	"github.com/holiman/uint256"

	"github.com/evmlite/evmlite/common"
)

type balanceWord = uint256.Int

// account is the mutable record backing one address: balance, code and
// the flat key/value storage map the interpreter's SLOAD/SSTORE read and
// write through StateDB.
type account struct {
	balance balanceWord
	code    []byte
	codeHash common.Hash
	storage map[common.Hash]common.Hash
}

func newAccount() *account {
	return &account{storage: make(map[common.Hash]common.Hash)}
}

// Log is one LOG0..LOG4 record appended by the interpreter via AddLog.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// StateDB is a journaled, in-memory implementation of vm.StateDB suitable
// for running a single call tree end to end (tests, the runtime package,
// the CLI) without a real backing trie/database.
type StateDB struct {
	accounts map[common.Address]*account
	journal  *journal
	refund   uint64
	logs     []Log
}

// New returns an empty StateDB with no accounts.
func New() *StateDB {
	return &StateDB{
		accounts: make(map[common.Address]*account),
		journal:  newJournal(),
	}
}

func (s *StateDB) getOrCreate(addr common.Address) *account {
	obj, ok := s.accounts[addr]
	if !ok {
		obj = newAccount()
		s.accounts[addr] = obj
		s.journal.append(createChange{account: addr})
	}
	return obj
}

// CreateAccount seeds addr with an empty account if it doesn't already
// exist, used by test setup and by the outer dispatcher before CREATE.
func (s *StateDB) CreateAccount(addr common.Address) {
	s.getOrCreate(addr)
}

// SetBalance sets addr's balance directly, bypassing the journal; intended
// for test fixture setup, not for use mid-execution (use AddBalance/
// SubBalance during a frame if those semantics are ever needed).
func (s *StateDB) SetBalance(addr common.Address, amount *uint256.Int) {
	obj := s.getOrCreate(addr)
	obj.balance = *amount
}

// SetCode installs addr's code together with the caller-supplied codeHash.
// Like SetBalance it bypasses the journal.
func (s *StateDB) SetCode(addr common.Address, code []byte, codeHash common.Hash) {
	obj := s.getOrCreate(addr)
	obj.code = code
	obj.codeHash = codeHash
}

// GetStorage implements vm.StateDB.
func (s *StateDB) GetStorage(addr common.Address, key common.Hash) common.Hash {
	obj, ok := s.accounts[addr]
	if !ok {
		return common.Hash{}
	}
	return obj.storage[key]
}

// SetStorage implements vm.StateDB: it journals the previous value (or
// its absence) so RevertToSnapshot can restore it, then writes the new
// value, returning what was there before.
func (s *StateDB) SetStorage(addr common.Address, key, value common.Hash) common.Hash {
	obj := s.getOrCreate(addr)
	prev, existed := obj.storage[key]
	s.journal.append(storageChange{account: addr, key: key, prevValue: prev, prevExisted: existed})
	if value == (common.Hash{}) {
		delete(obj.storage, key)
	} else {
		obj.storage[key] = value
	}
	return prev
}

// GetBalance implements vm.StateDB.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	obj, ok := s.accounts[addr]
	if !ok {
		return new(uint256.Int)
	}
	b := obj.balance
	return &b
}

// AddBalance credits amount to addr's balance, journaling the prior value.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	obj := s.getOrCreate(addr)
	s.journal.append(balanceChange{account: addr, prev: obj.balance})
	obj.balance.Add(&obj.balance, amount)
}

// SubBalance debits amount from addr's balance, journaling the prior
// value. It does not itself check for insufficiency; callers transferring
// value (CALL/CREATE with a value) must check GetBalance first and return
// ErrInsufficientBalance rather than let this go negative.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	obj := s.getOrCreate(addr)
	s.journal.append(balanceChange{account: addr, prev: obj.balance})
	obj.balance.Sub(&obj.balance, amount)
}

// GetCode implements vm.StateDB.
func (s *StateDB) GetCode(addr common.Address) []byte {
	obj, ok := s.accounts[addr]
	if !ok {
		return nil
	}
	return obj.code
}

// GetCodeHash implements vm.StateDB.
func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	obj, ok := s.accounts[addr]
	if !ok {
		return common.Hash{}
	}
	return obj.codeHash
}

// Exist implements vm.StateDB.
func (s *StateDB) Exist(addr common.Address) bool {
	_, ok := s.accounts[addr]
	return ok
}

// Snapshot implements vm.StateDB.
func (s *StateDB) Snapshot() int {
	return s.journal.snapshot()
}

// RevertToSnapshot implements vm.StateDB.
func (s *StateDB) RevertToSnapshot(id int) {
	s.journal.revertToSnapshot(id, s)
}

// AddRefund implements vm.StateDB.
func (s *StateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

// SubRefund implements vm.StateDB. It panics on underflow the way
// go-ethereum's does, since a negative refund counter signals a bug in
// the caller's accounting, not a recoverable runtime condition.
func (s *StateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		panic("negative refund counter")
	}
	s.refund -= gas
}

// Refund returns the transaction-scoped refund counter's current value.
func (s *StateDB) Refund() uint64 {
	return s.refund
}

// AddLog appends addr's log record, journaling enough to truncate it back
// off on revert.
func (s *StateDB) AddLog(addr common.Address, topics []common.Hash, data []byte) {
	s.journal.append(logChange{txIndex: len(s.logs)})
	s.logs = append(s.logs, Log{Address: addr, Topics: topics, Data: data})
}

// Logs returns every log record appended so far.
func (s *StateDB) Logs() []Log {
	return s.logs
}

// Suicide removes addr's account outright, journaling its full prior
// contents so an ancestor revert restores it exactly as if the removal
// never happened. The real protocol defers removal to end of transaction
// so the account stays visible to later reads in the same tx; this
// minimal reference implementation removes it immediately, which is
// adequate for single-frame test execution but not a general-purpose
// state backend.
func (s *StateDB) Suicide(addr common.Address) {
	obj, ok := s.accounts[addr]
	if !ok {
		return
	}
	prev := *obj
	s.journal.append(destructChange{account: addr, prev: &prev})
	delete(s.accounts, addr)
}
