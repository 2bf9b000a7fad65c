package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

func Test_Lookup(t *testing.T) {
	root := t.TempDir()

	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	if err := crypto.SaveECDSA(filepath.Join(root, "mimi.ecdsa"), pk); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	accountID := database.PublicKeyToAccountID(pk.PublicKey)
	if name := ns.Lookup(accountID); name != "mimi" {
		t.Logf("got: %s", name)
		t.Logf("exp: %s", "mimi")
		t.Fatalf("Should get back the name for the account.")
	}

	unknown := database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	if name := ns.Lookup(unknown); name != string(unknown) {
		t.Fatalf("Should get back the account for an unknown account, got %s.", name)
	}

	if len(ns.Copy()) != 1 {
		t.Fatalf("Should have exactly one account, got %d.", len(ns.Copy()))
	}
}
