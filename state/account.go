// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/holiman/uint256"

	"github.com/odinvm/odin/odin"
)

// Account is the record kept per address.
// If Code is present and non-empty, CodeHash equals the keccak256 of Code;
// an account with no code carries odin.EmptyCodeHash.
type Account struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash odin.Bytes32
	Code     []byte
}

// IsEmpty returns if the account has all default fields.
// A zero code hash counts as empty since it normalizes to EmptyCodeHash on
// insertion.
func (a *Account) IsEmpty() bool {
	return (a.Balance == nil || a.Balance.IsZero()) &&
		a.Nonce == 0 &&
		(a.CodeHash.IsZero() || a.CodeHash == odin.EmptyCodeHash) &&
		len(a.Code) == 0
}

// Copy returns a deep copy of the account.
// Code bytes are shared; they are treated as immutable everywhere.
func (a *Account) Copy() *Account {
	cpy := *a
	if a.Balance != nil {
		cpy.Balance = new(uint256.Int).Set(a.Balance)
	} else {
		cpy.Balance = new(uint256.Int)
	}
	return &cpy
}

func emptyAccount() *Account {
	return &Account{
		Balance:  new(uint256.Int),
		CodeHash: odin.EmptyCodeHash,
	}
}

// AccountChange is one entry of a transaction's change batch.
type AccountChange struct {
	Account        Account
	Storage        map[odin.Bytes32]odin.Bytes32
	Destroyed      bool
	StorageCleared bool
}

// Changes maps addresses to the updates a single transaction produced.
type Changes map[odin.Address]*AccountChange
