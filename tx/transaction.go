// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tx defines the transaction payload fed to the executor.
package tx

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/odinvm/odin/odin"
)

// DefaultGasLimit caps execution when the caller sets no explicit limit.
const DefaultGasLimit = uint64(1) << 63

// AccessItem is one entry of an access list: an address and the storage keys
// the transaction plans to touch.
type AccessItem struct {
	Address     odin.Address
	StorageKeys []odin.Bytes32
}

// Transaction describes a single message call or contract creation.
// Addresses, hashes and 256-bit quantities are exact fixed-width values;
// there is no floating point anywhere in the system.
type Transaction struct {
	From        odin.Address
	To          *odin.Address // nil means contract creation
	GasLimit    uint64
	GasPrice    *uint256.Int
	PriorityFee *uint256.Int
	Value       *uint256.Int
	Nonce       *uint64
	Input       []byte
	AccessList  []AccessItem
	ChainID     *uint64
}

// WithDefaults returns a copy with unset fields filled in:
// gas limit 2^63, gas price 1, value 0.
func (t Transaction) WithDefaults() Transaction {
	if t.GasLimit == 0 {
		t.GasLimit = DefaultGasLimit
	}
	if t.GasPrice == nil {
		t.GasPrice = uint256.NewInt(1)
	}
	if t.Value == nil {
		t.Value = new(uint256.Int)
	}
	return t
}

// Hash computes the identifying hash of the transaction.
func (t *Transaction) Hash() odin.Bytes32 {
	var to []byte
	if t.To != nil {
		to = t.To.Bytes()
	}
	var nonce uint64
	hasNonce := t.Nonce != nil
	if hasNonce {
		nonce = *t.Nonce
	}
	norm := t.WithDefaults()

	body, err := rlp.EncodeToBytes([]any{
		t.From.Bytes(),
		to,
		norm.GasLimit,
		norm.GasPrice.Bytes(),
		norm.Value.Bytes(),
		hasNonce,
		nonce,
		t.Input,
	})
	if err != nil {
		// the field set above is always encodable
		panic(err)
	}
	return odin.Keccak256(body)
}
