// cmd/chat-cli/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const app = "chat-cli"

var (
	debug   bool
	rootCmd = &cobra.Command{
		Use:   app,
		Short: "chat-cli talks to the support program matching chatbot from a terminal",
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
