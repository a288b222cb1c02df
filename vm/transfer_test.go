// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/tx"
	"github.com/odinvm/odin/vm"
)

var (
	alice = odin.BytesToAddress([]byte{0x0a})
	bob   = odin.BytesToAddress([]byte{0x0b})
)

func TestTransferRejectsCreation(t *testing.T) {
	machine := &vm.TransferVM{}

	trx := (&tx.Transaction{From: alice, Value: uint256.NewInt(1)}).WithDefaults()
	_, _, err := machine.Transact(state.New(), &trx)
	assert.Error(t, err)
}

func TestTransferNonceMismatch(t *testing.T) {
	machine := &vm.TransferVM{}
	nonce := uint64(5)

	trx := (&tx.Transaction{From: alice, To: &bob, Nonce: &nonce, Value: uint256.NewInt(0)}).WithDefaults()
	_, _, err := machine.Transact(state.New(), &trx)
	assert.Error(t, err)
}

func TestTransferSelf(t *testing.T) {
	machine := &vm.TransferVM{}
	st := state.New()
	st.ModifyAccount(alice, func(acc *state.Account) {
		acc.Balance = uint256.NewInt(100)
	})

	trx := (&tx.Transaction{From: alice, To: &alice, Value: uint256.NewInt(40)}).WithDefaults()
	result, changes, err := machine.Transact(st, &trx)
	require.NoError(t, err)
	assert.Zero(t, result.ExitCode)
	require.Len(t, changes, 1)
	assert.Equal(t, uint256.NewInt(100), changes[alice].Account.Balance)
	assert.Equal(t, uint64(1), changes[alice].Account.Nonce)
}
