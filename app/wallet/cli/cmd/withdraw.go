package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var withdrawNonce uint64

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw the tips, owner only.",
	Run:   withdrawRun,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
	withdrawCmd.Flags().Uint64Var(&withdrawNonce, "nonce", 0, "Nonce for the call, the node is asked when zero.")
}

func withdrawRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	nonce := withdrawNonce
	if nonce == 0 {
		if nonce, err = nextNonce(url, database.PublicKeyToAccountID(privateKey.PublicKey)); err != nil {
			log.Fatal(err)
		}
	}

	call := database.NewWithdrawTipsCall(chainID, nonce)
	result, err := submit(url, "/v1/tips/withdraw", call, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Record %d: withdrew %d, your balance is %d\n", result.Record, result.Withdrawn, result.Balance)
}
