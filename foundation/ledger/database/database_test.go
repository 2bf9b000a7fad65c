package database_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/genesis"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	payer    = database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
)

var (
	owner   = mustAccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	refuser = mustAccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")
)

func mustAccountID(hex string) database.AccountID {
	accountID, err := database.ToAccountID(hex)
	if err != nil {
		panic(err)
	}
	return accountID
}

// =============================================================================

func Test_Transfers(t *testing.T) {
	type table struct {
		name   string
		amount uint64
		to     database.AccountID
		err    error
		final  map[database.AccountID]uint64
	}

	tt := []table{
		{
			name:   "basic",
			amount: 100,
			to:     owner,
			final:  map[database.AccountID]uint64{payer: 900, owner: 100},
		},
		{
			name:   "insufficient",
			amount: 1001,
			to:     owner,
			err:    database.ErrInsufficientFunds,
			final:  map[database.AccountID]uint64{payer: 1000, owner: 0},
		},
		{
			name:   "refused",
			amount: 100,
			to:     refuser,
			err:    database.ErrTransferRejected,
			final:  map[database.AccountID]uint64{payer: 1000, refuser: 0},
		},
	}

	t.Log("Given the need to move balances between accounts.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transfer.", testID, tst.name)
			{
				f := func(t *testing.T) {
					db, err := database.New(genesis.Genesis{
						Balances:        map[string]uint64{string(payer): 1000},
						RefuseTransfers: []string{string(refuser)},
					})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to open database.", success, testID)

					err = db.Transfer(payer, tst.to, tst.amount)
					if !errors.Is(err, tst.err) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get back the expected error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the expected error.", success, testID)

					for accountID, exp := range tst.final {
						if got := db.Balance(accountID); got != exp {
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, got)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, exp)
							t.Errorf("\t%s\tTest %d:\tShould have correct balance for %s.", failed, testID, accountID)
						} else {
							t.Logf("\t%s\tTest %d:\tShould have correct balance for %s.", success, testID, accountID)
						}
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_NonceValidation(t *testing.T) {
	t.Log("Given the need to validate calls use a proper nonce.")
	{
		db, err := database.New(genesis.Genesis{})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open database: %v", failed, err)
		}

		nonces := []struct {
			nonce uint64
			valid bool
		}{
			{5, true},
			{3, false},
			{5, false},
			{6, true},
		}

		for i, n := range nonces {
			err := db.ValidateNonce(payer, n.nonce)
			if (n.valid && err != nil) || (!n.valid && !errors.Is(err, database.ErrInvalidNonce)) {
				t.Fatalf("\t%s\tTest %d:\tShould be able to validate nonce %d correctly: %v", failed, i, n.nonce, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to validate nonce %d correctly.", success, i, n.nonce)

			if n.valid {
				db.UpdateNonce(payer, n.nonce)
			}
		}
	}
}

func Test_AccountID(t *testing.T) {
	t.Log("Given the need to parse account ids.")
	{
		lower := strings.ToLower(string(payer))

		accountID, err := database.ToAccountID(lower)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to parse a lower case account: %v", failed, err)
		}

		if accountID != payer {
			t.Logf("\t%s\tgot: %s", failed, accountID)
			t.Logf("\t%s\texp: %s", failed, payer)
			t.Fatalf("\t%s\tShould get back the checksum form of the account.", failed)
		}
		t.Logf("\t%s\tShould get back the checksum form of the account.", success)

		if _, err := database.ToAccountID("0x1234"); err == nil {
			t.Fatalf("\t%s\tShould reject a short account.", failed)
		}
		t.Logf("\t%s\tShould reject a short account.", success)

		contract := database.ContractAccountID(owner)
		if !contract.IsAccountID() || contract == owner {
			t.Fatalf("\t%s\tShould derive a distinct contract account: %s", failed, contract)
		}
		if contract != database.ContractAccountID(owner) {
			t.Fatalf("\t%s\tShould derive the same contract account every time.", failed)
		}
		t.Logf("\t%s\tShould derive a stable contract account.", success)
	}
}

func Test_SignedCall(t *testing.T) {
	t.Log("Given the need to sign calls and recover the caller.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
		}

		call := database.NewBuyCoffeeCall(4202, 1, 10, "mimi", "this is a gift")

		signedCall, err := call.Sign(pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the call: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to sign the call.", success)

		if err := signedCall.Validate(4202); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the call: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the call.", success)

		from, err := signedCall.FromAccount()
		if err != nil || from != payer {
			t.Logf("\t%s\tgot: %s", failed, from)
			t.Logf("\t%s\texp: %s", failed, payer)
			t.Fatalf("\t%s\tShould recover the signing account: %v", failed, err)
		}
		t.Logf("\t%s\tShould recover the signing account.", success)

		if err := signedCall.Validate(1); !errors.Is(err, database.ErrWrongChain) {
			t.Fatalf("\t%s\tShould reject a call for another chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a call for another chain.", success)

		bad := signedCall
		bad.Method = "selfDestruct"
		if err := bad.Validate(4202); !errors.Is(err, database.ErrUnknownMethod) {
			t.Fatalf("\t%s\tShould reject an unknown method: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an unknown method.", success)
	}
}
