// Command lostfound runs the lost-and-found server and talks to a running one.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:          "lostfound",
		Short:        "Lost-and-found board: post lost or found items and report finds",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000", "base URL of a running server")

	root.AddCommand(
		newServeCmd(),
		newItemsCmd(&serverURL),
		newSubmitCmd(&serverURL),
		newFoundCmd(&serverURL),
		newVerifyCmd(&serverURL),
	)
	return root
}
