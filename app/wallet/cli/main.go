// This program is a wallet for buying the owner of a memo ledger a coffee.
package main

import "github.com/ardanlabs/memoledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
