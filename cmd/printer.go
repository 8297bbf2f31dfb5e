package cmd

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/mikaelmello/pingtrace/core"
)

// printer writes the classic ping and traceroute output
type printer struct {
	out    io.Writer
	errOut io.Writer
}

func (p *printer) printOnStart(s *core.Session) {
	fmt.Fprintf(p.out, "PING %s with %d bytes of data:\n", s.Address(), s.PayloadSize())
}

func (p *printer) printOnRoundTrip(s *core.Session, rt *core.RoundTrip) {
	switch rt.Res {
	case core.Replied:
		if s.Family() == core.IPv4 {
			fmt.Fprintf(p.out, "%d bytes from %s: icmp_seq=%d ttl=%d time=%.2fms\n",
				rt.Len, rt.Src, rt.Seq, rt.TTL, rt.RTT)
			return
		}
		fmt.Fprintf(p.out, "%d bytes from %s: icmp_seq=%d time=%.2fms\n", rt.Len, rt.Src, rt.Seq, rt.RTT)
	case core.TimedOut:
		if s.Retries() >= core.MaxRetries {
			fmt.Fprintf(p.errOut, "Request timeout for icmp_seq %d, aborting.\n", rt.Seq)
			return
		}
		fmt.Fprintf(p.errOut, "Request timeout for icmp_seq %d, retrying...\n", rt.Seq)
	}
}

func (p *printer) printOnEnd(s *core.Session) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "--- %s ping statistics ---\n", s.Address())
	fmt.Fprintf(p.out, "%d packets transmitted, %d received, %.0f%% packet loss, time %.2fms\n",
		s.Stats.TotalSent, s.Stats.TotalRecv, s.Stats.PktLoss()*100, float64(s.Stats.Elapsed())/float64(time.Millisecond))

	sm, ok := s.Stats.Summary()
	if !ok {
		fmt.Fprintln(p.out, "There is no info to display")
		return
	}
	fmt.Fprintf(p.out, "rtt min/avg/max/mdev = %.2f/%.2f/%.2f/%.2fms\n", sm.Min, sm.Mean, sm.Max, sm.StdDev)
}

func (p *printer) printTraceOnStart(t *core.Trace) {
	fmt.Fprintf(p.out, "traceroute to %s, %d hops max\n", t.Address(), t.MaxHops())
}

func (p *printer) printOnHop(t *core.Trace, hop *core.HopRecord) {
	fmt.Fprintf(p.out, "%2d ", hop.TTL)

	var last net.IP
	for _, probe := range hop.Probes {
		if probe.TimedOut() {
			fmt.Fprint(p.out, " *")
			continue
		}
		if !probe.Addr.Equal(last) {
			fmt.Fprintf(p.out, " %s", probe.Addr)
			last = probe.Addr
		}
		fmt.Fprintf(p.out, "  %.3f ms", probe.RTT)
	}
	fmt.Fprintln(p.out)
}
