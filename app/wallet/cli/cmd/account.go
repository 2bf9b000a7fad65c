package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account for the wallet and what it can do on the ledger.",
	Run:   accountRun,
}

var offline bool

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.Flags().BoolVarP(&offline, "offline", "o", false, "Only print the account without asking the node.")
}

// accountStatus is what the node knows about a wallet account.
type accountStatus struct {
	Account   database.AccountID
	Name      string
	NextNonce uint64
	Owner     bool
}

func (as accountStatus) String() string {
	role := "payer"
	if as.Owner {
		role = "owner, can withdraw tips"
	}

	name := as.Name
	if name == "" {
		name = "unknown"
	}

	return fmt.Sprintf("Account: %s\nName: %s\nRole: %s\nNext Nonce: %d", as.Account, name, role, as.NextNonce)
}

func accountRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	if offline {
		fmt.Println(accountID)
		return
	}

	status, err := queryAccount(url, accountID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(status)
}

// queryAccount asks the node for the ledger owner and the account's nonce.
// Accounts the node has never seen start at nonce one.
func queryAccount(node string, accountID database.AccountID) (accountStatus, error) {
	var own owner
	if err := get(node, "/v1/owner", &own); err != nil {
		return accountStatus{}, fmt.Errorf("owner: %w", err)
	}

	var acts accounts
	if err := get(node, "/v1/accounts/list/"+string(accountID), &acts); err != nil {
		return accountStatus{}, fmt.Errorf("account: %w", err)
	}

	status := accountStatus{
		Account:   accountID,
		NextNonce: 1,
		Owner:     own.Owner == accountID,
	}
	if status.Owner {
		status.Name = own.OwnerName
	}

	if len(acts.Accounts) > 0 {
		status.NextNonce = acts.Accounts[0].Nonce + 1
		if acts.Accounts[0].Name != "" {
			status.Name = acts.Accounts[0].Name
		}
	}

	return status, nil
}
