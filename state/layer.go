// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/odinvm/odin/odin"
)

// Layer is one flat, self-contained overlay of world state. It is mutated
// only while it is the active layer of a LayeredState.
type Layer struct {
	accounts    map[odin.Address]*Account
	storage     map[odin.Address]map[odin.Bytes32]odin.Bytes32
	codes       map[odin.Bytes32][]byte
	blockHashes map[uint64]odin.Bytes32
}

func newLayer() *Layer {
	return &Layer{
		accounts:    make(map[odin.Address]*Account),
		storage:     make(map[odin.Address]map[odin.Bytes32]odin.Bytes32),
		codes:       make(map[odin.Bytes32][]byte),
		blockHashes: make(map[uint64]odin.Bytes32),
	}
}

// newGenesisLayer builds a base layer holding the given account allocation.
func newGenesisLayer(alloc map[odin.Address]*Account) *Layer {
	l := newLayer()
	for addr, acc := range alloc {
		l.insertAccount(addr, acc.Copy())
	}
	return l
}

// insertAccount takes ownership of acc and records it in the layer.
// Non-empty code is extracted into the code table and the code hash
// recomputed; a zero code hash normalizes to EmptyCodeHash.
func (l *Layer) insertAccount(addr odin.Address, acc *Account) {
	if len(acc.Code) > 0 {
		hash := odin.Keccak256(acc.Code)
		l.codes[hash] = acc.Code
		acc.CodeHash = hash
		acc.Code = nil
	}
	if acc.CodeHash.IsZero() {
		acc.CodeHash = odin.EmptyCodeHash
	}
	l.accounts[addr] = acc
}
