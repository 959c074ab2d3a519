// Command twind is a small demonstration binary for the signaling
// and cryptographic session stack: it can mint a twincode key pair,
// or run two in-memory peers through a session initiate over a
// loopback transport so the wiring between pkg/keystore,
// pkg/signaling, pkg/p2psession and pkg/orchestrator can be watched
// end to end without a real network or broker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "twind",
	Short: "twind drives the peer-call signaling and crypto stack standalone",
	Long: `twind is a demonstration harness for the peer-call signaling and
session-crypto layer. It does not talk to a real broker: "serve" wires
two peers together over an in-memory pipe and has one initiate a session
toward the other, and "keygen" mints a twincode key pair for inspection.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "twind: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
