// Command ctxsearch is a command-line client for the ctxsearchd HTTP
// server, mirroring the teacher's ctxd CLI: a cobra root command with one
// subcommand per daemon endpoint, talking plain JSON over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
)

var (
	serverURL string
	version   = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(apperr.ToExitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:     "ctxsearch",
	Short:   "CLI for the ctxsearch semantic code intelligence daemon",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "ctxsearchd server URL")
	rootCmd.AddCommand(
		indexCmd,
		refreshCmd,
		searchCmd,
		smartCmd,
		violationsCmd,
		suggestCmd,
		complexCmd,
		indexDocsCmd,
		searchDocsCmd,
		howtoCmd,
		listDocsCmd,
		existsCmd,
		diagramCmd,
		businessCmd,
		indexConversationsCmd,
		checkViolationCmd,
		runCmd,
		healthCmd,
	)
}
