package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/evmlite/evmlite/common"
)

func TestSnapshotRevertsBalanceAndStorage(t *testing.T) {
	db := New()
	addr := common.Address{1}
	key := common.Hash{2}
	db.CreateAccount(addr)
	db.SetBalance(addr, uint256.NewInt(100))

	snap := db.Snapshot()

	db.AddBalance(addr, uint256.NewInt(50))
	db.SetStorage(addr, key, common.Hash{9})
	require.Equal(t, uint256.NewInt(150), db.GetBalance(addr))
	require.Equal(t, common.Hash{9}, db.GetStorage(addr, key))

	db.RevertToSnapshot(snap)

	require.Equal(t, uint256.NewInt(100), db.GetBalance(addr))
	require.Equal(t, common.Hash{}, db.GetStorage(addr, key))
}

func TestRevertRestoresStorageKeyThatNeverExisted(t *testing.T) {
	db := New()
	addr := common.Address{1}
	key := common.Hash{3}
	db.CreateAccount(addr)

	snap := db.Snapshot()
	db.SetStorage(addr, key, common.Hash{7})
	db.RevertToSnapshot(snap)

	require.Equal(t, common.Hash{}, db.GetStorage(addr, key), "a key that never existed must go back to absent, not zero-set")
}

func TestNestedSnapshotsRevertIndependently(t *testing.T) {
	db := New()
	addr := common.Address{1}
	db.CreateAccount(addr)
	db.SetBalance(addr, uint256.NewInt(10))

	outer := db.Snapshot()
	db.AddBalance(addr, uint256.NewInt(1))
	inner := db.Snapshot()
	db.AddBalance(addr, uint256.NewInt(1))
	require.Equal(t, uint256.NewInt(12), db.GetBalance(addr))

	db.RevertToSnapshot(inner)
	require.Equal(t, uint256.NewInt(11), db.GetBalance(addr))

	db.RevertToSnapshot(outer)
	require.Equal(t, uint256.NewInt(10), db.GetBalance(addr))
}

func TestRefundCounterTracksAddAndSub(t *testing.T) {
	db := New()
	db.AddRefund(100)
	db.AddRefund(50)
	require.Equal(t, uint64(150), db.Refund())

	db.SubRefund(30)
	require.Equal(t, uint64(120), db.Refund())
}

func TestSubRefundPanicsOnUnderflow(t *testing.T) {
	db := New()
	db.AddRefund(10)
	require.Panics(t, func() { db.SubRefund(20) })
}

func TestSuicideUndoneByAncestorRevert(t *testing.T) {
	db := New()
	addr := common.Address{5}
	key := common.Hash{6}
	db.CreateAccount(addr)
	db.SetBalance(addr, uint256.NewInt(77))
	db.SetStorage(addr, key, common.Hash{9})
	db.SetCode(addr, []byte{0x60, 0x00}, common.Hash{1})

	snap := db.Snapshot()
	db.Suicide(addr)
	require.False(t, db.Exist(addr), "Suicide must remove the account immediately")

	db.RevertToSnapshot(snap)

	require.True(t, db.Exist(addr), "an ancestor revert must restore the destructed account")
	require.Equal(t, uint256.NewInt(77), db.GetBalance(addr))
	require.Equal(t, common.Hash{9}, db.GetStorage(addr, key))
	require.Equal(t, []byte{0x60, 0x00}, db.GetCode(addr))
}

func TestAddLogAppendsInOrder(t *testing.T) {
	db := New()
	addr := common.Address{4}
	db.AddLog(addr, []common.Hash{{1}}, []byte("a"))
	db.AddLog(addr, []common.Hash{{2}}, []byte("b"))

	logs := db.Logs()
	require.Len(t, logs, 2)
	require.Equal(t, []byte("a"), logs[0].Data)
	require.Equal(t, []byte("b"), logs[1].Data)
}
