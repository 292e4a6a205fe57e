package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Aljumaily/hlcd-search/flags"
)

// newMainCmd describes the tool and defaults to printing the help message
func newMainCmd() *cobra.Command {
	mainCmd := &cobra.Command{
		Use:          "hlcd-search",
		Short:        "Search generator matrices of Hermitian LCD codes over GF(4)",
		SilenceUsage: true,
	}
	flags.AddGlobalFlags(mainCmd.PersistentFlags())

	mainCmd.AddCommand(searchCmd())
	mainCmd.AddCommand(benchCmd())
	mainCmd.AddCommand(verifyCmd())
	mainCmd.AddCommand(katCmd())
	mainCmd.AddCommand(cacheCmd())
	return mainCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// On failure Cobra prints the error, so we only need a non-zero status
	if err := newMainCmd().ExecuteContext(ctx); err != nil {
		logger.Debugf("%+v", err)
		stop()
		os.Exit(1)
	}
}
