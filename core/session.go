package core

import (
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

// State is the state of a ping session.
type State int

const (
	// Sending is when the next echo request is built and written.
	Sending State = iota
	// AwaitingReply is when the session waits for the reply of the last echo request.
	AwaitingReply
	// Retrying is when the last echo request timed out and is about to be re-issued.
	Retrying
	// Recording is when a matching reply is being recorded.
	Recording
	// Done is when all replies were collected.
	Done
	// Failed is when the session was aborted.
	Failed
)

var stateNames = map[State]string{
	Sending:       "sending",
	AwaitingReply: "awaiting reply",
	Retrying:      "retrying",
	Recording:     "recording",
	Done:          "done",
	Failed:        "failed",
}

func (st State) String() string {
	return stateNames[st]
}

// Session is an aggregation of ping executions
type Session struct {
	// Stats contain the overall statistics of the session
	Stats *Statistics

	settings *Settings

	// id is the echo identifier, shared by every request of the session.
	id int

	// addr is the destination address
	addr net.IP

	payload []byte

	state State

	// retries is the number of consecutive timeouts of the current sequence.
	retries int

	// lastSequence is the sequence number of the last sent echo request.
	lastSequence int

	// logger is an instance of logrus used to log activities related to this session
	logger *log.Logger

	isStarted  bool
	isFinished bool

	listen listener
	sleep  func(time.Duration)

	// rtHandlers are the callback functions called after every round trip.
	rtHandlers []func(*Session, *RoundTrip)

	// stHandlers are the callback functions called when the session starts.
	stHandlers []func(*Session)

	// endHandlers are the callback functions called when the session ends, successful or not.
	endHandlers []func(*Session)
}

// NewSession creates a new Session towards a literal address of settings.Family
func NewSession(address string, settings *Settings) (*Session, error) {
	logger := NewLogger(settings.LoggingLevel)

	logger.Debug("Validating settings")
	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	addr, err := parseDestination(address, settings.Family)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Stats:        NewStatistics(),
		settings:     settings,
		id:           processIdentifier(),
		addr:         addr,
		payload:      Payload(),
		state:        Sending,
		lastSequence: -1,
		logger:       logger,
		listen:       listenRaw,
		sleep:        time.Sleep,
	}

	session.AddStHandler(initStatsCb)
	session.AddEndHandler(finishStatsCb)

	logger.Infof("Created session with id %d, family %s, addr %s", session.id, settings.Family, addr)

	return session, nil
}

// Run executes the sequence of pings. It returns an error wrapping
// ErrRetriesExhausted when a sequence times out MaxRetries times in a row,
// and the transport error when the socket fails.
func (s *Session) Run() error {
	if s.isFinished {
		return fmt.Errorf("this session has already finished")
	}
	if s.isStarted {
		return fmt.Errorf("this session has already started")
	}
	s.isStarted = true

	conn, err := s.listen(s.settings.Family)
	if err != nil {
		s.setState(Failed)
		s.isFinished = true
		return err
	}
	defer conn.Close()

	t := newTransport(conn, s.settings.Family, s.id, s.settings.WaitForMatch, s.logger)

	s.logger.Info("Calling start callbacks")
	for _, f := range s.stHandlers {
		f(s)
	}
	defer s.finish()

	seq := 0
	remaining := s.settings.Count
	for remaining > 0 {
		s.setState(Sending)
		cur := seq
		seq++

		pkt, err := BuildEcho(s.settings.Family, s.id, cur, s.payload)
		if err != nil {
			s.setState(Failed)
			return err
		}

		sentAt := time.Now()
		if err := t.Send(pkt, s.addr); err != nil {
			s.setState(Failed)
			s.processRoundTrip(failedRT(cur, err))
			return err
		}
		s.Stats.EchoRequested()
		s.lastSequence = cur

		s.setState(AwaitingReply)
		rt := t.AwaitReply(cur, sentAt, s.settings.Timeout)

		switch rt.Res {
		case Errored:
			s.setState(Failed)
			s.processRoundTrip(rt)
			return rt.Err
		case TimedOut:
			s.retries++
			s.setState(Retrying)
			s.processRoundTrip(rt)
			if s.retries >= MaxRetries {
				s.setState(Failed)
				return fmt.Errorf("%w: icmp_seq %d timed out %d times", ErrRetriesExhausted, cur, s.retries)
			}
			// the same sequence is re-issued right away, without using up a slot
			seq--
			continue
		case Replied:
			s.retries = 0
			s.setState(Recording)
			s.Stats.EchoReplied(rt.RTT)
			s.processRoundTrip(rt)
			remaining--
		default:
			// an unrelated datagram ends the attempt without a sample
			s.retries = 0
			s.processRoundTrip(rt)
			remaining--
		}

		if remaining > 0 && !s.settings.Flood {
			s.sleep(s.settings.Interval)
		}
	}

	s.setState(Done)
	return nil
}

// State returns the current state of the session
func (s *Session) State() State {
	return s.state
}

// Retries returns the number of consecutive timeouts of the current sequence
func (s *Session) Retries() int {
	return s.retries
}

// IsStarted returns whether this session is started
func (s *Session) IsStarted() bool {
	return s.isStarted
}

// IsFinished returns whether this session is finished
func (s *Session) IsFinished() bool {
	return s.isFinished
}

// Address is the destination address of this session
func (s *Session) Address() net.IP {
	return s.addr
}

// Family is the address family of this session
func (s *Session) Family() Family {
	return s.settings.Family
}

// PayloadSize is the number of data bytes carried by every echo request
func (s *Session) PayloadSize() int {
	return len(s.payload)
}

// AddRtHandler adds a handler function that will be called after every round trip
func (s *Session) AddRtHandler(handler func(*Session, *RoundTrip)) {
	s.rtHandlers = append(s.rtHandlers, handler)
}

// AddStHandler adds a handler function that will be called when the session starts
func (s *Session) AddStHandler(handler func(*Session)) {
	s.stHandlers = append(s.stHandlers, handler)
}

// AddEndHandler adds a handler function that will be called when the session ends
func (s *Session) AddEndHandler(handler func(*Session)) {
	s.endHandlers = append(s.endHandlers, handler)
}

func (s *Session) setState(st State) {
	s.logger.Debugf("Session state %s -> %s", s.state, st)
	s.state = st
}

// processRoundTrip calls all handlers for a round trip.
func (s *Session) processRoundTrip(rt *RoundTrip) {
	s.logger.Debugf("Round trip icmp_seq %d %s", rt.Seq, rt.Res)
	for _, f := range s.rtHandlers {
		f(s, rt)
	}
}

// finish calls the ending callbacks, whatever state the session ended in.
func (s *Session) finish() {
	s.logger.Info("Calling ending callbacks")
	for _, f := range s.endHandlers {
		f(s)
	}
	s.isFinished = true
	s.logger.Infof("Session ended in state %s", s.state)
}

// initStatsCb is a callback to be used when a session starts, initializing the start time.
func initStatsCb(s *Session) {
	s.Stats.SessionStarted()
}

// finishStatsCb is a callback to be used when a session ends, recording the end time.
func finishStatsCb(s *Session) {
	s.Stats.SessionEnded()
}
