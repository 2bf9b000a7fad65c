package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Print the owner of the ledger.",
	Run:   ownerRun,
}

func init() {
	rootCmd.AddCommand(ownerCmd)
}

func ownerRun(cmd *cobra.Command, args []string) {
	var own owner
	if err := get(url, "/v1/owner", &own); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Owner: %s (%s)\nContract: %s\n", own.Owner, own.OwnerName, own.Contract)
}
