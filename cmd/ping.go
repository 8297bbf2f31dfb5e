package cmd

import (
	"io"

	"github.com/mikaelmello/pingtrace/core"
	"github.com/spf13/cobra"
)

func newPingCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Send ICMP echo requests to an IPv4 or IPv6 address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := newViper(cmd)
			if err != nil {
				return err
			}

			settings, address, err := pingSettings(vp)
			if err != nil {
				return err
			}

			r, err := newPingRunner(address, settings, &printer{out: out, errOut: errOut})
			if err != nil {
				return err
			}
			return runToCompletion(r)
		},
	}

	cmd.Flags().StringP(addressFlag, "a", "", "literal address to ping (required)")
	cmd.Flags().IntP(typeFlag, "t", 0, "address family, 4 or 6 (required)")
	cmd.Flags().IntP(countFlag, "c", core.DefaultCount, "number of replies to wait for")
	cmd.Flags().BoolP(floodFlag, "f", false, "send the next request as soon as a reply arrives")

	return cmd
}
