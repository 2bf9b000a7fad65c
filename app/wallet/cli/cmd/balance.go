package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	var acts accounts
	if err := get(url, "/v1/accounts/list/"+string(accountID), &acts); err != nil {
		log.Fatal(err)
	}

	if len(acts.Accounts) > 0 {
		fmt.Println(acts.Accounts[0].Balance)
	}
}
