// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/tx"
)

func TestWithDefaults(t *testing.T) {
	trx := tx.Transaction{}.WithDefaults()

	assert.Equal(t, tx.DefaultGasLimit, trx.GasLimit)
	assert.Equal(t, uint256.NewInt(1), trx.GasPrice)
	assert.True(t, trx.Value.IsZero())

	explicit := tx.Transaction{
		GasLimit: 21000,
		GasPrice: uint256.NewInt(5),
		Value:    uint256.NewInt(9),
	}.WithDefaults()

	assert.Equal(t, uint64(21000), explicit.GasLimit)
	assert.Equal(t, uint256.NewInt(5), explicit.GasPrice)
	assert.Equal(t, uint256.NewInt(9), explicit.Value)
}

func TestHash(t *testing.T) {
	to := odin.BytesToAddress([]byte{2})
	trx := &tx.Transaction{
		From:  odin.BytesToAddress([]byte{1}),
		To:    &to,
		Value: uint256.NewInt(100),
	}

	// stable across calls
	assert.Equal(t, trx.Hash(), trx.Hash())

	other := &tx.Transaction{
		From:  odin.BytesToAddress([]byte{1}),
		Value: uint256.NewInt(100),
	}
	assert.NotEqual(t, trx.Hash(), other.Hash(), "creation must hash differently from a call")

	// a zero nonce is distinct from no nonce
	nonce := uint64(0)
	withNonce := &tx.Transaction{
		From:  odin.BytesToAddress([]byte{1}),
		To:    &to,
		Value: uint256.NewInt(100),
		Nonce: &nonce,
	}
	assert.NotEqual(t, trx.Hash(), withNonce.Hash())
}
