package cmd

import (
	"errors"

	"github.com/mikaelmello/pingtrace/core"
)

// runner is a session the command line runs once, to completion
type runner interface {
	Run() error
}

// runToCompletion runs r. A ping aborted by its retry budget has already
// printed its statistics and exits successfully, like the classic tool.
func runToCompletion(r runner) error {
	err := r.Run()
	if errors.Is(err, core.ErrRetriesExhausted) {
		return nil
	}
	return err
}

// newPingRunner creates a ping session with the printer callbacks registered
func newPingRunner(addr string, settings *core.Settings, p *printer) (runner, error) {
	session, err := core.NewSession(addr, settings)
	if err != nil {
		return nil, err
	}

	session.AddStHandler(p.printOnStart)
	session.AddRtHandler(p.printOnRoundTrip)
	session.AddEndHandler(p.printOnEnd)

	return session, nil
}

// newTraceRunner creates a traceroute with the printer callbacks registered
func newTraceRunner(addr string, settings *core.Settings, p *printer) (runner, error) {
	trace, err := core.NewTrace(addr, settings)
	if err != nil {
		return nil, err
	}

	trace.AddStHandler(p.printTraceOnStart)
	trace.AddHopHandler(p.printOnHop)

	return trace, nil
}
