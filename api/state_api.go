// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the state client over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/odinvm/odin/client"
	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/state"
)

// StateAPI routes admin and execution requests to a state client.
type StateAPI struct {
	client *client.Client
}

// NewStateAPI creates the api over c.
func NewStateAPI(c *client.Client) *StateAPI {
	return &StateAPI{client: c}
}

// New builds the full http handler, with compression enabled.
func New(c *client.Client) http.Handler {
	router := mux.NewRouter()
	NewStateAPI(c).Mount(router, "/state")
	return handlers.CompressHandler(router)
}

// Mount registers all routes under pathPrefix.
func (s *StateAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /state/accounts/{address}").
		HandlerFunc(WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/accounts/{address}").
		Methods(http.MethodPost).
		Name("POST /state/accounts/{address}").
		HandlerFunc(WrapHandlerFunc(s.handleInsertAccount))
	sub.Path("/accounts/{address}/balance").
		Methods(http.MethodPost).
		Name("POST /state/accounts/{address}/balance").
		HandlerFunc(WrapHandlerFunc(s.handleSetBalance))
	sub.Path("/accounts/{address}/nonce").
		Methods(http.MethodPost).
		Name("POST /state/accounts/{address}/nonce").
		HandlerFunc(WrapHandlerFunc(s.handleSetNonce))
	sub.Path("/accounts/{address}/code").
		Methods(http.MethodPost).
		Name("POST /state/accounts/{address}/code").
		HandlerFunc(WrapHandlerFunc(s.handleSetCode))
	sub.Path("/accounts/{address}/storage").
		Methods(http.MethodPost).
		Name("POST /state/accounts/{address}/storage").
		HandlerFunc(WrapHandlerFunc(s.handleSetStorage))
	sub.Path("/blocks").
		Methods(http.MethodPost).
		Name("POST /state/blocks").
		HandlerFunc(WrapHandlerFunc(s.handleInsertBlock))
	sub.Path("/checkpoints").
		Methods(http.MethodPost).
		Name("POST /state/checkpoints").
		HandlerFunc(WrapHandlerFunc(s.handleCheckpoint))
	sub.Path("/checkpoints").
		Methods(http.MethodDelete).
		Name("DELETE /state/checkpoints").
		HandlerFunc(WrapHandlerFunc(s.handleRevert))
	sub.Path("/transactions/dry-run").
		Methods(http.MethodPost).
		Name("POST /state/transactions/dry-run").
		HandlerFunc(WrapHandlerFunc(s.handleDryRun))
	sub.Path("/transactions").
		Methods(http.MethodPost).
		Name("POST /state/transactions").
		HandlerFunc(WrapHandlerFunc(s.handleRun))
}

func addressParam(req *http.Request) (odin.Address, error) {
	addr, err := odin.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return odin.Address{}, BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (s *StateAPI) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressParam(req)
	if err != nil {
		return err
	}
	acc, err := s.client.AccountByAddress(addr)
	if err != nil {
		return err
	}
	return WriteJSON(w, convertAccount(acc))
}

func (s *StateAPI) handleInsertAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressParam(req)
	if err != nil {
		return err
	}
	var acc *state.Account
	if req.ContentLength != 0 {
		var body Account
		if err := ParseJSON(req.Body, &body); err != nil {
			return BadRequest(errors.WithMessage(err, "body"))
		}
		acc = body.toState()
	}
	if err := s.client.InsertAccount(addr, acc); err != nil {
		return err
	}
	return WriteJSON(w, addr)
}

func (s *StateAPI) handleSetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressParam(req)
	if err != nil {
		return err
	}
	var body Quantity
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Value == nil {
		return BadRequest(errors.New("value: missing"))
	}
	if err := s.client.SetBalance(addr, body.Value); err != nil {
		return err
	}
	return WriteJSON(w, addr)
}

func (s *StateAPI) handleSetNonce(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressParam(req)
	if err != nil {
		return err
	}
	var body Nonce
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.client.SetNonce(addr, uint64(body.Value)); err != nil {
		return err
	}
	return WriteJSON(w, addr)
}

func (s *StateAPI) handleSetCode(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressParam(req)
	if err != nil {
		return err
	}
	var body Code
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.client.SetCode(addr, body.Code); err != nil {
		return err
	}
	return WriteJSON(w, addr)
}

func (s *StateAPI) handleSetStorage(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressParam(req)
	if err != nil {
		return err
	}
	var body StorageSlot
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.client.SetStorageSlot(addr, body.Key, body.Value); err != nil {
		return err
	}
	return WriteJSON(w, addr)
}

func (s *StateAPI) handleInsertBlock(w http.ResponseWriter, req *http.Request) error {
	var body Block
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.client.InsertBlock(uint64(body.Number), body.Hash); err != nil {
		return err
	}
	return WriteJSON(w, body)
}

func (s *StateAPI) handleCheckpoint(w http.ResponseWriter, _ *http.Request) error {
	if err := s.client.Checkpoint(); err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (s *StateAPI) handleRevert(w http.ResponseWriter, _ *http.Request) error {
	if err := s.client.Revert(); err != nil {
		if errors.Is(err, state.ErrNoCheckpoint) {
			return Conflict(err)
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *StateAPI) handleDryRun(w http.ResponseWriter, req *http.Request) error {
	var body Transaction
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	result, changes, err := s.client.DryRun(body.toTx())
	if err != nil {
		return err
	}
	return WriteJSON(w, &DryRunResult{
		Result:  convertResult(result),
		Changes: convertChanges(changes),
	})
}

func (s *StateAPI) handleRun(w http.ResponseWriter, req *http.Request) error {
	var body Transaction
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	result, err := s.client.Run(body.toTx())
	if err != nil {
		return err
	}
	return WriteJSON(w, convertResult(result))
}
