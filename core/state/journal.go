package state

import "github.com/evmlite/evmlite/common"

// journalEntry is one undoable mutation. revert restores the StateDB to
// how it looked immediately before the mutation was applied, mirroring
// go-ethereum's core/state/journal.go design: every write that a
// contract-visible rollback might need to undo goes through the journal
// instead of mutating in place.
type journalEntry interface {
	revert(*StateDB)
}

type (
	balanceChange struct {
		account common.Address
		prev    balanceWord
	}
	storageChange struct {
		account      common.Address
		key          common.Hash
		prevValue    common.Hash
		prevExisted  bool
	}
	codeChange struct {
		account common.Address
		prev    []byte
	}
	createChange struct {
		account common.Address
	}
	destructChange struct {
		account common.Address
		prev    *account
	}
	refundChange struct {
		prev uint64
	}
	logChange struct {
		txIndex int
	}
)

func (c balanceChange) revert(s *StateDB) {
	s.accounts[c.account].balance = c.prev
}

func (c storageChange) revert(s *StateDB) {
	obj := s.accounts[c.account]
	if !c.prevExisted {
		delete(obj.storage, c.key)
		return
	}
	obj.storage[c.key] = c.prevValue
}

func (c codeChange) revert(s *StateDB) {
	s.accounts[c.account].code = c.prev
}

func (c createChange) revert(s *StateDB) {
	delete(s.accounts, c.account)
}

func (c destructChange) revert(s *StateDB) {
	s.accounts[c.account] = c.prev
}

func (c refundChange) revert(s *StateDB) {
	s.refund = c.prev
}

func (c logChange) revert(s *StateDB) {
	s.logs = s.logs[:c.txIndex]
}

// journal accumulates entries since the last Snapshot, grouped by
// snapshot id so RevertToSnapshot can undo exactly the entries recorded
// after that id was issued.
type journal struct {
	entries []journalEntry
	// validRevisions[i] records the journal length at the moment
	// snapshot id i was handed out.
	validRevisions []int
	nextRevisionID int
}

func newJournal() *journal {
	return &journal{}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

func (j *journal) snapshot() int {
	id := j.nextRevisionID
	j.nextRevisionID++
	j.validRevisions = append(j.validRevisions, len(j.entries))
	return id
}

// revertToSnapshot unwinds every entry recorded after id's snapshot,
// applying each journalEntry.revert in reverse order so later overwrites
// of the same slot undo before earlier ones.
func (j *journal) revertToSnapshot(id int, s *StateDB) {
	idx := id
	if idx >= len(j.validRevisions) {
		return
	}
	snapshotLen := j.validRevisions[idx]
	for i := len(j.entries) - 1; i >= snapshotLen; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:snapshotLen]
	j.validRevisions = j.validRevisions[:idx]
	j.nextRevisionID = idx
}
