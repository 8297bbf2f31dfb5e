package core

import (
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

// TraceState is the state of a traceroute.
type TraceState int

const (
	// ProbingHop is when the probes of the current TTL are in flight.
	ProbingHop TraceState = iota
	// HopComplete is when all probes of the current TTL have an outcome.
	HopComplete
	// Found is when the destination answered.
	Found
	// Exhausted is when the hop budget ran out before reaching the destination.
	Exhausted
)

func (st TraceState) String() string {
	switch st {
	case ProbingHop:
		return "probing hop"
	case HopComplete:
		return "hop complete"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// HopProbe is the outcome of one of the probes of a hop.
type HopProbe struct {
	// Addr is the address that answered, nil when the probe timed out.
	Addr net.IP

	// RTT is the round-trip time in milliseconds.
	RTT float64
}

// TimedOut reports whether nobody answered the probe.
func (p HopProbe) TimedOut() bool {
	return p.Addr == nil
}

// HopRecord holds the outcome of every probe sent with one TTL.
type HopRecord struct {
	TTL    int
	Probes [ProbesPerHop]HopProbe
}

// Reached reports whether any probe of the hop was answered by dst.
func (h *HopRecord) Reached(dst net.IP) bool {
	for _, p := range h.Probes {
		if !p.TimedOut() && p.Addr.Equal(dst) {
			return true
		}
	}
	return false
}

// Trace discovers the path towards an IPv4 destination one TTL at a time.
type Trace struct {
	// Hops contains the record of every probed TTL, in order.
	Hops []*HopRecord

	settings *Settings
	id       int
	addr     net.IP
	payload  []byte
	state    TraceState
	logger   *log.Logger

	listen listener

	stHandlers  []func(*Trace)
	hopHandlers []func(*Trace, *HopRecord)
	endHandlers []func(*Trace)
}

// NewTrace creates a traceroute towards a literal IPv4 address
func NewTrace(address string, settings *Settings) (*Trace, error) {
	logger := NewLogger(settings.LoggingLevel)

	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if settings.Family != IPv4 {
		return nil, fmt.Errorf("%w: traceroute only supports IPv4", ErrUsage)
	}

	addr, err := parseDestination(address, IPv4)
	if err != nil {
		return nil, err
	}

	logger.Infof("Created traceroute to %s, %d hops max", addr, settings.MaxHops)

	return &Trace{
		settings: settings,
		id:       processIdentifier(),
		addr:     addr,
		payload:  Payload(),
		state:    ProbingHop,
		logger:   logger,
		listen:   listenRaw,
	}, nil
}

// Run probes every TTL from 1 until the destination answers or MaxHops is
// exceeded. Socket and socket option failures abort it.
func (t *Trace) Run() error {
	conn, err := t.listen(IPv4)
	if err != nil {
		return err
	}
	defer conn.Close()

	tr := newTransport(conn, IPv4, t.id, t.settings.WaitForMatch, t.logger)

	for _, f := range t.stHandlers {
		f(t)
	}
	defer func() {
		for _, f := range t.endHandlers {
			f(t)
		}
	}()

	seq := 0
	for ttl := 1; ttl <= t.settings.MaxHops; ttl++ {
		t.setState(ProbingHop)
		if err := conn.SetTTL(ttl); err != nil {
			return &TransportError{Op: "setsockopt IP_TTL", Err: err}
		}

		hop := &HopRecord{TTL: ttl}
		for i := range hop.Probes {
			probe, err := t.probe(tr, seq)
			if err != nil {
				return err
			}
			hop.Probes[i] = probe
			seq = (seq + 1) & 0xffff
		}

		t.Hops = append(t.Hops, hop)
		t.setState(HopComplete)
		for _, f := range t.hopHandlers {
			f(t, hop)
		}

		if hop.Reached(t.addr) {
			t.setState(Found)
			return nil
		}
	}

	t.setState(Exhausted)
	return nil
}

// probe sends one echo request and waits for whoever answers it.
func (t *Trace) probe(tr *transport, seq int) (HopProbe, error) {
	pkt, err := BuildEcho(IPv4, t.id, seq, t.payload)
	if err != nil {
		return HopProbe{}, err
	}

	sentAt := time.Now()
	if err := tr.Send(pkt, t.addr); err != nil {
		return HopProbe{}, err
	}

	rt := tr.AwaitReply(seq, sentAt, t.settings.Timeout)
	switch rt.Res {
	case Errored:
		return HopProbe{}, rt.Err
	case Replied, TTLExpired:
		return HopProbe{Addr: rt.Src, RTT: rt.RTT}, nil
	}
	return HopProbe{}, nil
}

// State returns the current state of the traceroute
func (t *Trace) State() TraceState {
	return t.state
}

// Address is the destination address of the traceroute
func (t *Trace) Address() net.IP {
	return t.addr
}

// MaxHops is the hop budget of the traceroute
func (t *Trace) MaxHops() int {
	return t.settings.MaxHops
}

// AddStHandler adds a handler function that will be called when the traceroute starts
func (t *Trace) AddStHandler(handler func(*Trace)) {
	t.stHandlers = append(t.stHandlers, handler)
}

// AddHopHandler adds a handler function that will be called after every hop
func (t *Trace) AddHopHandler(handler func(*Trace, *HopRecord)) {
	t.hopHandlers = append(t.hopHandlers, handler)
}

// AddEndHandler adds a handler function that will be called when the traceroute ends
func (t *Trace) AddEndHandler(handler func(*Trace)) {
	t.endHandlers = append(t.endHandlers, handler)
}

func (t *Trace) setState(st TraceState) {
	t.logger.Debugf("Traceroute state %s -> %s", t.state, st)
	t.state = st
}
