package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
)

var client = http.Client{
	Timeout: 10 * time.Second,
}

type account struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Nonce   uint64             `json:"nonce"`
	Balance uint64             `json:"balance"`
}

type accounts struct {
	LatestRecord uint64    `json:"latest_record"`
	Accounts     []account `json:"accounts"`
}

type owner struct {
	Owner     database.AccountID `json:"owner"`
	OwnerName string             `json:"owner_name"`
	Contract  database.AccountID `json:"contract"`
}

type memoInfo struct {
	From      database.AccountID `json:"from"`
	FromName  string             `json:"from_name"`
	TimeStamp uint64             `json:"timestamp"`
	Name      string             `json:"name"`
	Message   string             `json:"message"`
}

type memos struct {
	Memos []memoInfo `json:"memos"`
}

type callResult struct {
	Record    uint64     `json:"record"`
	Hash      string     `json:"hash"`
	Memo      *memo.Memo `json:"memo"`
	Withdrawn uint64     `json:"withdrawn"`
	Balance   uint64     `json:"balance"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// get performs a GET against the node and decodes the response.
func get(node string, path string, resp any) error {
	r, err := client.Get(node + path)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return decode(r, resp)
}

// submit signs the call and posts it to the node.
func submit(node string, path string, call database.Call, privateKey *ecdsa.PrivateKey) (callResult, error) {
	signedCall, err := call.Sign(privateKey)
	if err != nil {
		return callResult{}, err
	}

	data, err := json.Marshal(signedCall)
	if err != nil {
		return callResult{}, err
	}

	r, err := client.Post(node+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return callResult{}, err
	}
	defer r.Body.Close()

	var result callResult
	if err := decode(r, &result); err != nil {
		return callResult{}, err
	}

	return result, nil
}

// nextNonce returns the nonce to use for the account's next call.
func nextNonce(node string, accountID database.AccountID) (uint64, error) {
	var acts accounts
	if err := get(node, "/v1/accounts/list/"+string(accountID), &acts); err != nil {
		return 0, err
	}

	if len(acts.Accounts) == 0 {
		return 1, nil
	}

	return acts.Accounts[0].Nonce + 1, nil
}

func decode(r *http.Response, resp any) error {
	if r.StatusCode != http.StatusOK {
		var er errorResponse
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			return fmt.Errorf("node returned status %d", r.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("%s: %v", er.Error, er.Fields)
		}
		return fmt.Errorf("%s", er.Error)
	}

	return json.NewDecoder(r.Body).Decode(resp)
}
