package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Real-time event relay for the Nexus chat application",
		Long: `relay is the WebSocket event relay behind Nexus chat.

It tracks live client connections, groups them into user and conversation
rooms, and pushes chat messages, toast notifications, and friend-list
refresh signals to every current member of a target room. Persistence and
authentication are handled by the web application before events reach the
relay.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
