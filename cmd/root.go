package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd(os.Stdout, os.Stderr)

// newRootCmd builds the command tree, printing results to out and timeouts to errOut
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pingtrace",
		Short:        "pingtrace your ping and traceroute in Go",
		Long:         "pingtrace is a Go implementation of the ping and traceroute utilities over raw ICMP sockets",
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().BoolP(verboseFlag, "v", false, "log the session lifecycle to stderr")
	cmd.PersistentFlags().Bool(waitMatchFlag, false, "keep waiting after an unrelated datagram instead of giving up the attempt")

	cmd.AddCommand(newPingCmd(out, errOut))
	cmd.AddCommand(newTracerouteCmd(out))

	return cmd
}

// Execute runs the command line
func Execute() error {
	return rootCmd.Execute()
}
