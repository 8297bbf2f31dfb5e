package cmd

import (
	"io"

	"github.com/mikaelmello/pingtrace/core"
	"github.com/spf13/cobra"
)

func newTracerouteCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traceroute",
		Short: "Print the route to an IPv4 address, one TTL at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := newViper(cmd)
			if err != nil {
				return err
			}

			settings, address, err := tracerouteSettings(vp)
			if err != nil {
				return err
			}

			r, err := newTraceRunner(address, settings, &printer{out: out})
			if err != nil {
				return err
			}
			return runToCompletion(r)
		},
	}

	cmd.Flags().StringP(addressFlag, "a", "", "literal IPv4 address to trace (required)")
	cmd.Flags().IntP(maxHopsFlag, "m", core.DefaultMaxHops, "largest TTL to probe")

	return cmd
}
