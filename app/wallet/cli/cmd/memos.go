package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var memosCmd = &cobra.Command{
	Use:   "memos",
	Short: "Print the memos, newest first.",
	Run:   memosRun,
}

func init() {
	rootCmd.AddCommand(memosCmd)
}

func memosRun(cmd *cobra.Command, args []string) {
	var list memos
	if err := get(url, "/v1/memos/list?order=desc", &list); err != nil {
		log.Fatal(err)
	}

	for _, m := range list.Memos {
		ts := time.Unix(int64(m.TimeStamp), 0).Format(time.DateTime)
		fmt.Printf("%s  %s (%s): %s\n", ts, m.Name, m.FromName, m.Message)
	}
}
