// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/odinvm/odin/layerdb"
	"github.com/odinvm/odin/log"
	"github.com/odinvm/odin/odin"
)

var logger = log.WithContext("pkg", "state")

var (
	// ErrNotFound is returned when a code hash, storage slot or block hash
	// is not recorded in any layer.
	ErrNotFound = errors.New("not found")

	// ErrNoCheckpoint is returned by Revert when only the base layer remains.
	ErrNoCheckpoint = errors.New("no checkpoint to revert")

	// ErrNotImplemented marks capabilities reserved for the surrounding
	// system.
	ErrNotImplemented = errors.New("not implemented")
)

// Reader is the read-only view of the world state consumed by the executor.
type Reader interface {
	// GetAccount returns the account at addr, or the default record when no
	// layer holds one.
	GetAccount(addr odin.Address) (*Account, error)
	// GetCode returns the code bytes for a content hash.
	GetCode(hash odin.Bytes32) ([]byte, error)
	// GetStorage returns the value stored for key under addr.
	GetStorage(addr odin.Address, key odin.Bytes32) (odin.Bytes32, error)
	// GetBlockHash returns the hash recorded for a block number.
	GetBlockHash(number uint64) (odin.Bytes32, error)
}

// LayeredState manages the world state as a stack of copy-on-write layers.
// Reads search the stack top to bottom; writes touch the active layer only.
// It is not safe for concurrent use; all access is expected to be serialized
// by a single writer (see package client).
type LayeredState struct {
	layers    *layerdb.Stack[*Layer]
	codeCache *lru.ARCCache
}

var _ Reader = (*LayeredState)(nil)

// New creates a LayeredState with an empty base layer.
func New() *LayeredState {
	return NewWithGenesis(nil)
}

// NewWithGenesis creates a LayeredState whose base layer holds the given
// account allocation.
func NewWithGenesis(alloc map[odin.Address]*Account) *LayeredState {
	cache, _ := lru.NewARC(512)
	return &LayeredState{
		layers:    layerdb.New(newGenesisLayer(alloc), newLayer),
		codeCache: cache,
	}
}

// Depth returns the number of layers, including the base layer.
func (s *LayeredState) Depth() int {
	return s.layers.Depth()
}

// GetAccount returns a copy of the account at addr.
// An address absent from every layer yields the default record, never an
// error: unrecorded addresses are implicitly existing externally-owned
// accounts.
func (s *LayeredState) GetAccount(addr odin.Address) (*Account, error) {
	for layer := range s.layers.TopToBottom() {
		if acc, ok := layer.accounts[addr]; ok {
			logger.Debug("account lookup", "addr", addr, "nonce", acc.Nonce)
			return acc.Copy(), nil
		}
	}
	logger.Debug("account lookup defaulted", "addr", addr)
	return emptyAccount(), nil
}

// GetCode returns the code bytes for a content hash, or ErrNotFound if no
// layer's code table contains it. A missing contract body is always an
// error; there is no default here.
func (s *LayeredState) GetCode(hash odin.Bytes32) ([]byte, error) {
	if code, ok := s.codeCache.Get(hash); ok {
		return code.([]byte), nil
	}
	for layer := range s.layers.TopToBottom() {
		if code, ok := layer.codes[hash]; ok {
			s.codeCache.Add(hash, code)
			return code, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "code %v", hash)
}

// GetStorage returns the value stored for key under addr, or ErrNotFound if
// no layer records it. Unlike GetAccount this surfaces a miss as an error
// instead of a zero value; callers expecting on-chain read-as-zero
// semantics must map the error themselves.
func (s *LayeredState) GetStorage(addr odin.Address, key odin.Bytes32) (odin.Bytes32, error) {
	for layer := range s.layers.TopToBottom() {
		// a layer holding storage for addr but not this key does not
		// shadow lower layers
		if slots, ok := layer.storage[addr]; ok {
			if value, ok := slots[key]; ok {
				return value, nil
			}
		}
	}
	return odin.Bytes32{}, errors.Wrapf(ErrNotFound, "storage %v at %v", key, addr)
}

// GetBlockHash returns the hash recorded for a block number, or ErrNotFound.
func (s *LayeredState) GetBlockHash(number uint64) (odin.Bytes32, error) {
	for layer := range s.layers.TopToBottom() {
		if hash, ok := layer.blockHashes[number]; ok {
			return hash, nil
		}
	}
	return odin.Bytes32{}, errors.Wrapf(ErrNotFound, "block hash %d", number)
}

// accountMut returns a mutable handle to the account at addr, promoting a
// lower-layer record into the active layer by copy first. It returns nil if
// no layer holds the address.
func (s *LayeredState) accountMut(addr odin.Address) *Account {
	active := s.layers.Active()
	if acc, ok := active.accounts[addr]; ok {
		return acc
	}
	for layer := range s.layers.TopToBottom() {
		if acc, ok := layer.accounts[addr]; ok {
			cpy := acc.Copy()
			active.accounts[addr] = cpy
			return cpy
		}
	}
	return nil
}

// accountOrInsertMut is accountMut with a guaranteed handle: when no layer
// holds the address, a default record is inserted into the active layer.
func (s *LayeredState) accountOrInsertMut(addr odin.Address) *Account {
	if acc := s.accountMut(addr); acc != nil {
		return acc
	}
	acc := emptyAccount()
	s.layers.Active().accounts[addr] = acc
	return acc
}

// Commit folds a transaction's change batch into the active layer.
// A malformed batch is a programmer error; there is no partial-commit error
// path.
func (s *LayeredState) Commit(changes Changes) {
	active := s.layers.Active()

	for addr, change := range changes {
		if change.Destroyed || change.Account.IsEmpty() {
			// best-effort delete; lower layers may still hold the record
			delete(active.accounts, addr)
			continue
		}

		active.insertAccount(addr, change.Account.Copy())

		slots, ok := active.storage[addr]
		if ok && change.StorageCleared {
			clear(slots)
		}
		if !ok {
			slots = make(map[odin.Bytes32]odin.Bytes32)
			active.storage[addr] = slots
		}
		for key, value := range change.Storage {
			if value.IsZero() {
				delete(slots, key)
			} else {
				slots[key] = value
			}
		}
		if len(slots) == 0 {
			// keep the sparse invariant at the account-map level
			delete(active.storage, addr)
		}
	}
	metricCommitCount().Add(1)
}

// Checkpoint pushes a new empty layer, marking a revertible savepoint.
// It always succeeds.
func (s *LayeredState) Checkpoint() {
	s.layers.PushFresh()
	metricLayerDepth().Set(int64(s.layers.Depth()))
}

// Revert discards the active layer, restoring the previous one.
// It returns ErrNoCheckpoint when only the base layer remains.
func (s *LayeredState) Revert() error {
	activeID := s.layers.ActiveID()
	if activeID == 0 {
		return ErrNoCheckpoint
	}
	s.layers.RevertTo(activeID - 1)
	// discarded layers may have held cached code
	s.codeCache.Purge()
	metricLayerDepth().Set(int64(s.layers.Depth()))
	return nil
}

// InsertAccount records acc at addr in the active layer.
func (s *LayeredState) InsertAccount(addr odin.Address, acc *Account) {
	s.layers.Active().insertAccount(addr, acc.Copy())
}

// InsertBlock records the hash for a block number in the active layer.
func (s *LayeredState) InsertBlock(number uint64, hash odin.Bytes32) {
	s.layers.Active().blockHashes[number] = hash
}

// ModifyAccount applies fn to the copy-on-write-promoted record at addr,
// inserting a default record first when the address is unknown.
func (s *LayeredState) ModifyAccount(addr odin.Address, fn func(*Account)) {
	fn(s.accountOrInsertMut(addr))
}

// RemoveAccount overwrites the record at addr in the active layer with the
// empty record; a sealed lower layer cannot be truly erased. It returns the
// previous active-layer record, or nil if the active layer had none, even
// when a lower layer still holds one.
func (s *LayeredState) RemoveAccount(addr odin.Address) *Account {
	active := s.layers.Active()
	if acc, ok := active.accounts[addr]; ok {
		prev := acc.Copy()
		*acc = *emptyAccount()
		return prev
	}
	active.insertAccount(addr, emptyAccount())
	return nil
}

// SetStorage records a value for key under addr in the active layer.
// A zero value deletes the active layer's entry; absence reads as zero.
func (s *LayeredState) SetStorage(addr odin.Address, key, value odin.Bytes32) {
	active := s.layers.Active()
	if value.IsZero() {
		if slots, ok := active.storage[addr]; ok {
			delete(slots, key)
			if len(slots) == 0 {
				delete(active.storage, addr)
			}
		}
		return
	}
	slots, ok := active.storage[addr]
	if !ok {
		slots = make(map[odin.Bytes32]odin.Bytes32)
		active.storage[addr] = slots
	}
	slots[key] = value
}

// StorageRoot is reserved for a cryptographic commitment over the flattened
// account and storage state.
func (s *LayeredState) StorageRoot() (odin.Bytes32, error) {
	return odin.Bytes32{}, errors.Wrap(ErrNotImplemented, "storage root")
}
