package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/omni-labs/bridge/core"
)

// locker is a process-local, in-memory instance: each `bridgectl` run
// executes one command against a fresh locker, so nothing one run does is
// seen by the next. A real deployment talks to the running
// relayer's HTTP admin surface instead; this binary is the offline/test
// equivalent of that surface.
var locker = core.NewLocker(core.NewInMemoryStore(), nil)

func main() {
	rootCmd := &cobra.Command{Use: "bridgectl"}
	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(storageCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
