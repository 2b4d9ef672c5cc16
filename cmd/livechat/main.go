package main

import (
	stderrors "errors"
	"fmt"
	"livechat/errors"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var rootCmd = &cobra.Command{
	Use:           "livechat",
	Short:         "Real-time presence and broadcast chat server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, historyCmd)
}

func main() {
	// The main function only maps the outcome of the command to an exit code
	code := exitOK
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "livechat terminated with error: %v\n", err)
		code = exitRuntime
		if stderrors.Is(err, errors.ErrInvalidConfig) {
			code = exitConfig
		}
	}
	os.Exit(code)
}
