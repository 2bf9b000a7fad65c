package public

import (
	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
)

type owner struct {
	Owner     database.AccountID `json:"owner"`
	OwnerName string             `json:"owner_name"`
	Contract  database.AccountID `json:"contract"`
}

type contract struct {
	Owner        database.AccountID `json:"owner"`
	OwnerName    string             `json:"owner_name"`
	Contract     database.AccountID `json:"contract"`
	Balance      uint64             `json:"balance"`
	Memos        int                `json:"memos"`
	LatestRecord uint64             `json:"latest_record"`
	LatestHash   string             `json:"latest_hash"`
}

type memoInfo struct {
	From      database.AccountID `json:"from"`
	FromName  string             `json:"from_name"`
	To        database.AccountID `json:"to"`
	TimeStamp uint64             `json:"timestamp"`
	Name      string             `json:"name"`
	Message   string             `json:"message"`
}

type memos struct {
	Order string     `json:"order"`
	Memos []memoInfo `json:"memos"`
}

type info struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Nonce   uint64             `json:"nonce"`
	Balance uint64             `json:"balance"`
}

type accounts struct {
	LatestRecord uint64 `json:"latest_record"`
	Accounts     []info `json:"accounts"`
}

type callResult struct {
	Record    uint64             `json:"record"`
	Hash      string             `json:"hash"`
	From      database.AccountID `json:"from"`
	Nonce     uint64             `json:"nonce"`
	Method    string             `json:"method"`
	Memo      *memo.Memo         `json:"memo,omitempty"`
	Withdrawn uint64             `json:"withdrawn"`
	Balance   uint64             `json:"balance"`
}

type newMemoEvent struct {
	Type      string             `json:"type"`
	From      database.AccountID `json:"from"`
	To        database.AccountID `json:"to"`
	TimeStamp uint64             `json:"timestamp"`
	Name      string             `json:"name"`
	Message   string             `json:"message"`
}
