// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the base layer of a fresh state.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/state"
)

// Account is one allocation entry of a genesis file.
type Account struct {
	Address odin.Address            `json:"address"`
	Balance *uint256.Int            `json:"balance"`
	Nonce   hexutil.Uint64          `json:"nonce"`
	Code    hexutil.Bytes           `json:"code"`
	Storage map[string]odin.Bytes32 `json:"storage"`
}

// Genesis is a user customized allocation.
type Genesis struct {
	Name     string    `json:"name"`
	Accounts []Account `json:"accounts"`
}

// Load reads a genesis allocation from a JSON file.
func Load(path string) (*Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithMessage(err, "open genesis file")
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	var gen Genesis
	if err := decoder.Decode(&gen); err != nil {
		return nil, errors.WithMessage(err, "parse genesis file")
	}
	return &gen, nil
}

// Build creates a state whose base layer holds the allocation.
func (g *Genesis) Build() (*state.LayeredState, error) {
	alloc := make(map[odin.Address]*state.Account, len(g.Accounts))
	for _, a := range g.Accounts {
		if _, dup := alloc[a.Address]; dup {
			return nil, fmt.Errorf("%v: duplicate allocation", a.Address)
		}
		acc := &state.Account{
			Nonce: uint64(a.Nonce),
			Code:  a.Code,
		}
		if a.Balance != nil {
			acc.Balance = a.Balance
		} else {
			acc.Balance = new(uint256.Int)
		}
		alloc[a.Address] = acc
	}

	st := state.NewWithGenesis(alloc)
	for _, a := range g.Accounts {
		for k, v := range a.Storage {
			key, err := odin.ParseBytes32(k)
			if err != nil {
				return nil, fmt.Errorf("%v: invalid storage key %q", a.Address, k)
			}
			st.SetStorage(a.Address, key, v)
		}
	}
	return st, nil
}
