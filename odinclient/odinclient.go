// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package odinclient provides an HTTP client to interact with an odin node.
// It mirrors the state API: account queries, admin writes, checkpoints and
// transaction execution.
package odinclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/odinvm/odin/api"
	"github.com/odinvm/odin/odin"
)

// ErrUnexpectedStatus is returned when the node answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client represents the HTTP client for interacting with an odin node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

// NewWithHTTP creates a new Client with the provided URL and http client.
func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

// Account retrieves the account record for the given address.
func (c *Client) Account(addr odin.Address) (*api.Account, error) {
	body, err := c.httpGET(c.url + "/state/accounts/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve account - %w", err)
	}

	var account api.Account
	if err = json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("unable to unmarshal account - %w", err)
	}

	return &account, nil
}

// InsertAccount records acc at addr; a nil acc inserts the default record.
func (c *Client) InsertAccount(addr odin.Address, acc *api.Account) error {
	var payload any
	if acc != nil {
		payload = acc
	}
	if _, err := c.httpPOST(c.url+"/state/accounts/"+addr.String(), payload); err != nil {
		return fmt.Errorf("unable to insert account - %w", err)
	}
	return nil
}

// SetBalance sets the balance of the account at addr.
func (c *Client) SetBalance(addr odin.Address, balance *uint256.Int) error {
	payload := api.Quantity{Value: balance}
	if _, err := c.httpPOST(c.url+"/state/accounts/"+addr.String()+"/balance", payload); err != nil {
		return fmt.Errorf("unable to set balance - %w", err)
	}
	return nil
}

// SetNonce sets the nonce of the account at addr.
func (c *Client) SetNonce(addr odin.Address, nonce uint64) error {
	payload := api.Nonce{Value: hexutil.Uint64(nonce)}
	if _, err := c.httpPOST(c.url+"/state/accounts/"+addr.String()+"/nonce", payload); err != nil {
		return fmt.Errorf("unable to set nonce - %w", err)
	}
	return nil
}

// SetCode sets the code of the account at addr.
func (c *Client) SetCode(addr odin.Address, code []byte) error {
	payload := api.Code{Code: code}
	if _, err := c.httpPOST(c.url+"/state/accounts/"+addr.String()+"/code", payload); err != nil {
		return fmt.Errorf("unable to set code - %w", err)
	}
	return nil
}

// SetStorage sets one storage slot of the account at addr.
func (c *Client) SetStorage(addr odin.Address, key, value odin.Bytes32) error {
	payload := api.StorageSlot{Key: key, Value: value}
	if _, err := c.httpPOST(c.url+"/state/accounts/"+addr.String()+"/storage", payload); err != nil {
		return fmt.Errorf("unable to set storage - %w", err)
	}
	return nil
}

// InsertBlock records the hash for a block number.
func (c *Client) InsertBlock(number uint64, hash odin.Bytes32) error {
	payload := api.Block{Number: hexutil.Uint64(number), Hash: hash}
	if _, err := c.httpPOST(c.url+"/state/blocks", payload); err != nil {
		return fmt.Errorf("unable to insert block - %w", err)
	}
	return nil
}

// Checkpoint opens a revertible savepoint on the node.
func (c *Client) Checkpoint() error {
	if _, err := c.httpPOST(c.url+"/state/checkpoints", nil); err != nil {
		return fmt.Errorf("unable to checkpoint - %w", err)
	}
	return nil
}

// Revert discards everything since the last savepoint.
func (c *Client) Revert() error {
	if _, err := c.httpRequest(http.MethodDelete, c.url+"/state/checkpoints", nil); err != nil {
		return fmt.Errorf("unable to revert - %w", err)
	}
	return nil
}

// DryRun executes the transaction without committing, returning the result
// and the state diff it produced.
func (c *Client) DryRun(trx *api.Transaction) (*api.DryRunResult, error) {
	body, err := c.httpPOST(c.url+"/state/transactions/dry-run", trx)
	if err != nil {
		return nil, fmt.Errorf("unable to dry run transaction - %w", err)
	}

	var result api.DryRunResult
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unable to unmarshal dry run result - %w", err)
	}

	return &result, nil
}

// Run executes the transaction and commits its changes.
func (c *Client) Run(trx *api.Transaction) (*api.ExecutionResult, error) {
	body, err := c.httpPOST(c.url+"/state/transactions", trx)
	if err != nil {
		return nil, fmt.Errorf("unable to run transaction - %w", err)
	}

	var result api.ExecutionResult
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unable to unmarshal execution result - %w", err)
	}

	return &result, nil
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http error - Status Code %d - %s - %w", resp.StatusCode, responseBody, ErrUnexpectedStatus)
	}
	return responseBody, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	if payload == nil {
		return c.httpRequest(http.MethodPost, url, nil)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.httpRequest(http.MethodPost, url, bytes.NewBuffer(data))
}
