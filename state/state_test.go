// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odinvm/odin/odin"
)

var (
	addrA = odin.BytesToAddress([]byte{0xa1})
	addrB = odin.BytesToAddress([]byte{0xb2})
	addrC = odin.BytesToAddress([]byte{0xc3})
)

func key(b byte) odin.Bytes32 {
	return odin.BytesToBytes32([]byte{b})
}

func balance(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

func TestGetAccountDefaultsOnMiss(t *testing.T) {
	st := New()

	acc, err := st.GetAccount(addrA)
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
	assert.Zero(t, acc.Nonce)
	assert.Equal(t, odin.EmptyCodeHash, acc.CodeHash)
	assert.Nil(t, acc.Code)
	assert.True(t, acc.IsEmpty())
}

func TestLookupMissPolicies(t *testing.T) {
	// account lookup defaults on miss, the other lookups error. The split
	// is deliberate and must stay observable.
	st := New()

	_, err := st.GetAccount(addrA)
	assert.NoError(t, err)

	_, err = st.GetCode(odin.Keccak256([]byte{1}))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = st.GetStorage(addrA, key(1))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = st.GetBlockHash(1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInsertAccountExtractsCode(t *testing.T) {
	st := New()
	code := []byte{0x60, 0x01}

	st.InsertAccount(addrA, &Account{Balance: balance(10), Code: code})

	acc, err := st.GetAccount(addrA)
	require.NoError(t, err)
	assert.Equal(t, odin.Keccak256(code), acc.CodeHash)
	assert.Nil(t, acc.Code)

	got, err := st.GetCode(acc.CodeHash)
	require.NoError(t, err)
	assert.Equal(t, code, got)
}

func TestCheckpointRevertRestoresState(t *testing.T) {
	st := NewWithGenesis(map[odin.Address]*Account{
		addrA: {Balance: balance(100)},
	})
	st.InsertBlock(7, key(0x77))
	st.SetStorage(addrA, key(1), key(0xaa))

	st.Checkpoint()
	assert.Equal(t, 2, st.Depth())

	st.ModifyAccount(addrA, func(acc *Account) { acc.Balance = balance(1) })
	st.SetStorage(addrA, key(1), key(0xbb))
	st.InsertBlock(8, key(0x88))
	st.InsertAccount(addrB, &Account{Balance: balance(5), Code: []byte{1, 2, 3}})

	require.NoError(t, st.Revert())
	assert.Equal(t, 1, st.Depth())

	acc, _ := st.GetAccount(addrA)
	assert.Equal(t, balance(100), acc.Balance)

	v, err := st.GetStorage(addrA, key(1))
	require.NoError(t, err)
	assert.Equal(t, key(0xaa), v)

	_, err = st.GetBlockHash(8)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = st.GetCode(odin.Keccak256([]byte{1, 2, 3}))
	assert.True(t, errors.Is(err, ErrNotFound))

	accB, _ := st.GetAccount(addrB)
	assert.True(t, accB.IsEmpty())
}

func TestCheckpointRevertPairIsIdentity(t *testing.T) {
	st := NewWithGenesis(map[odin.Address]*Account{
		addrA: {Balance: balance(42), Nonce: 3},
	})

	for range 5 {
		st.Checkpoint()
		require.NoError(t, st.Revert())
	}

	assert.Equal(t, 1, st.Depth())
	acc, _ := st.GetAccount(addrA)
	assert.Equal(t, balance(42), acc.Balance)
	assert.Equal(t, uint64(3), acc.Nonce)
}

func TestRevertWithoutCheckpoint(t *testing.T) {
	st := New()
	assert.True(t, errors.Is(st.Revert(), ErrNoCheckpoint))

	st.Checkpoint()
	require.NoError(t, st.Revert())
	assert.True(t, errors.Is(st.Revert(), ErrNoCheckpoint))
}

func TestCopyOnWriteIsolation(t *testing.T) {
	st := NewWithGenesis(map[odin.Address]*Account{
		addrA: {Balance: balance(100)},
	})

	st.Checkpoint()
	st.ModifyAccount(addrA, func(acc *Account) { acc.Balance = balance(50) })

	acc, _ := st.GetAccount(addrA)
	assert.Equal(t, balance(50), acc.Balance)

	require.NoError(t, st.Revert())

	acc, _ = st.GetAccount(addrA)
	assert.Equal(t, balance(100), acc.Balance, "lower layer record must be untouched by the promoted copy")
}

func TestModifyAccountUnknownAddress(t *testing.T) {
	st := New()

	st.ModifyAccount(addrC, func(acc *Account) { acc.Nonce = 9 })

	acc, _ := st.GetAccount(addrC)
	assert.Equal(t, uint64(9), acc.Nonce)
}

func TestRemoveAccount(t *testing.T) {
	t.Run("active layer record", func(t *testing.T) {
		st := New()
		st.InsertAccount(addrA, &Account{Balance: balance(7)})

		prev := st.RemoveAccount(addrA)
		require.NotNil(t, prev)
		assert.Equal(t, balance(7), prev.Balance)

		acc, _ := st.GetAccount(addrA)
		assert.True(t, acc.IsEmpty())
	})

	t.Run("record only in lower layer", func(t *testing.T) {
		st := NewWithGenesis(map[odin.Address]*Account{
			addrA: {Balance: balance(7)},
		})
		st.Checkpoint()

		// the previous value is reported absent even though a lower layer
		// still holds the record
		prev := st.RemoveAccount(addrA)
		assert.Nil(t, prev)

		// the empty override in the active layer shadows the lower layer
		acc, _ := st.GetAccount(addrA)
		assert.True(t, acc.IsEmpty())

		require.NoError(t, st.Revert())
		acc, _ = st.GetAccount(addrA)
		assert.Equal(t, balance(7), acc.Balance)
	})
}

func TestCommit(t *testing.T) {
	t.Run("upsert and storage merge", func(t *testing.T) {
		st := New()
		code := []byte{0xfe}

		st.Commit(Changes{
			addrA: {
				Account: Account{Balance: balance(10), Nonce: 1, Code: code},
				Storage: map[odin.Bytes32]odin.Bytes32{
					key(1): key(0xaa),
					key(2): {}, // zero value must not be stored
				},
			},
		})

		acc, _ := st.GetAccount(addrA)
		assert.Equal(t, balance(10), acc.Balance)
		assert.Equal(t, odin.Keccak256(code), acc.CodeHash)

		v, err := st.GetStorage(addrA, key(1))
		require.NoError(t, err)
		assert.Equal(t, key(0xaa), v)

		_, err = st.GetStorage(addrA, key(2))
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("empty or destroyed removes the record", func(t *testing.T) {
		st := New()
		st.InsertAccount(addrA, &Account{Balance: balance(1)})
		st.InsertAccount(addrB, &Account{Balance: balance(2)})

		st.Commit(Changes{
			addrA: {Account: Account{Balance: balance(99)}, Destroyed: true},
			addrB: {Account: Account{}}, // empty record
		})

		acc, _ := st.GetAccount(addrA)
		assert.True(t, acc.IsEmpty())
		acc, _ = st.GetAccount(addrB)
		assert.True(t, acc.IsEmpty())
	})

	t.Run("zero delta removes a slot set earlier", func(t *testing.T) {
		st := New()
		st.Commit(Changes{
			addrA: {
				Account: Account{Balance: balance(1)},
				Storage: map[odin.Bytes32]odin.Bytes32{key(7): key(0x2a)},
			},
		})
		st.Commit(Changes{
			addrA: {
				Account: Account{Balance: balance(1)},
				Storage: map[odin.Bytes32]odin.Bytes32{key(7): {}},
			},
		})

		_, err := st.GetStorage(addrA, key(7))
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestCommitStorageClearedLowerLayerOnly(t *testing.T) {
	// The account's storage lives only in a lower layer. A cleared commit
	// whose deltas all resolve to zero must leave no storage entry in the
	// active layer at all: an explicit empty map would shadow nothing, but
	// dropping it keeps the lower layer visible through the layered search.
	st := New()
	st.Commit(Changes{
		addrB: {
			Account: Account{Balance: balance(1)},
			Storage: map[odin.Bytes32]odin.Bytes32{
				key(7): key(0x2a),
				key(9): key(0x01),
			},
		},
	})
	st.Checkpoint()

	st.Commit(Changes{
		addrB: {
			Account:        Account{Balance: balance(1)},
			Storage:        map[odin.Bytes32]odin.Bytes32{key(7): {}},
			StorageCleared: true,
		},
	})

	// lower-layer slots are untouched and still reachable
	v, err := st.GetStorage(addrB, key(9))
	require.NoError(t, err)
	assert.Equal(t, key(0x01), v)

	v, err = st.GetStorage(addrB, key(7))
	require.NoError(t, err)
	assert.Equal(t, key(0x2a), v)
}

func TestCommitStorageClearedActiveLayer(t *testing.T) {
	st := New()
	st.Commit(Changes{
		addrB: {
			Account: Account{Balance: balance(1)},
			Storage: map[odin.Bytes32]odin.Bytes32{
				key(7): key(0x2a),
				key(9): key(0x01),
			},
		},
	})

	st.Commit(Changes{
		addrB: {
			Account:        Account{Balance: balance(1)},
			Storage:        map[odin.Bytes32]odin.Bytes32{key(5): key(0x05)},
			StorageCleared: true,
		},
	})

	// cleared slots are gone, the new delta stays
	_, err := st.GetStorage(addrB, key(7))
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = st.GetStorage(addrB, key(9))
	assert.True(t, errors.Is(err, ErrNotFound))

	v, err := st.GetStorage(addrB, key(5))
	require.NoError(t, err)
	assert.Equal(t, key(0x05), v)
}

func TestAdminScenario(t *testing.T) {
	// base layer has 0xA1 with balance 100; checkpoint; set balance 50;
	// read 50; revert; read 100.
	st := NewWithGenesis(map[odin.Address]*Account{
		addrA: {Balance: balance(100)},
	})

	st.Checkpoint()
	st.ModifyAccount(addrA, func(acc *Account) { acc.Balance = balance(50) })

	acc, _ := st.GetAccount(addrA)
	assert.Equal(t, balance(50), acc.Balance)

	require.NoError(t, st.Revert())

	acc, _ = st.GetAccount(addrA)
	assert.Equal(t, balance(100), acc.Balance)
}

func TestCodeDeduplication(t *testing.T) {
	st := New()
	code := []byte{0xca, 0xfe}

	st.InsertAccount(addrA, &Account{Balance: balance(1), Code: code})
	st.InsertAccount(addrB, &Account{Balance: balance(2), Code: code})

	accA, _ := st.GetAccount(addrA)
	accB, _ := st.GetAccount(addrB)
	assert.Equal(t, accA.CodeHash, accB.CodeHash)

	got, err := st.GetCode(accA.CodeHash)
	require.NoError(t, err)
	assert.Equal(t, code, got)
}

func TestSetStorageZeroValueDeletes(t *testing.T) {
	st := New()

	st.SetStorage(addrA, key(1), key(0xaa))
	v, err := st.GetStorage(addrA, key(1))
	require.NoError(t, err)
	assert.Equal(t, key(0xaa), v)

	st.SetStorage(addrA, key(1), odin.Bytes32{})
	_, err = st.GetStorage(addrA, key(1))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBlockHashes(t *testing.T) {
	st := New()
	st.InsertBlock(1, key(0x11))

	st.Checkpoint()
	st.InsertBlock(1, key(0x12)) // shadows the base entry
	st.InsertBlock(2, key(0x22))

	h, err := st.GetBlockHash(1)
	require.NoError(t, err)
	assert.Equal(t, key(0x12), h)

	require.NoError(t, st.Revert())

	h, err = st.GetBlockHash(1)
	require.NoError(t, err)
	assert.Equal(t, key(0x11), h)

	_, err = st.GetBlockHash(2)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStorageRootUnimplemented(t *testing.T) {
	st := New()
	_, err := st.StorageRoot()
	assert.True(t, errors.Is(err, ErrNotImplemented))
}

func TestGetAccountReturnsCopy(t *testing.T) {
	st := NewWithGenesis(map[odin.Address]*Account{
		addrA: {Balance: balance(5)},
	})

	acc, _ := st.GetAccount(addrA)
	acc.Balance.SetUint64(999)
	acc.Nonce = 42

	again, _ := st.GetAccount(addrA)
	assert.Equal(t, balance(5), again.Balance)
	assert.Zero(t, again.Nonce)
}
