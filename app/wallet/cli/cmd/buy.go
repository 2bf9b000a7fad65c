package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	buyName    string
	buyMessage string
	buyValue   uint64
	buyNonce   uint64
)

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Buy the owner a coffee and leave a memo.",
	Run:   buyRun,
}

func init() {
	rootCmd.AddCommand(buyCmd)
	buyCmd.Flags().StringVarP(&buyName, "name", "n", "", "Name to leave on the memo.")
	buyCmd.Flags().StringVarP(&buyMessage, "message", "m", "", "Message to leave on the memo.")
	buyCmd.Flags().Uint64VarP(&buyValue, "value", "v", 1, "Value to pay.")
	buyCmd.Flags().Uint64Var(&buyNonce, "nonce", 0, "Nonce for the call, the node is asked when zero.")
}

func buyRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	nonce := buyNonce
	if nonce == 0 {
		if nonce, err = nextNonce(url, database.PublicKeyToAccountID(privateKey.PublicKey)); err != nil {
			log.Fatal(err)
		}
	}

	call := database.NewBuyCoffeeCall(chainID, nonce, buyValue, buyName, buyMessage)
	result, err := submit(url, "/v1/memos/buy", call, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Record %d: memo recorded, your balance is %d\n", result.Record, result.Balance)
}
