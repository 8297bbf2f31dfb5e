package cmd

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/mikaelmello/pingtrace/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewPingRunner verifies that a ping runner is created for valid input
func TestNewPingRunner(t *testing.T) {
	p := &printer{out: io.Discard, errOut: io.Discard}

	r, err := newPingRunner("127.0.0.1", core.DefaultSettings(), p)
	require.NoError(t, err)

	s, ok := r.(*core.Session)
	require.True(t, ok)
	assert.Equal(t, core.Sending, s.State())
	assert.False(t, s.IsStarted())
}

// TestNewPingRunnerErrors verifies that invalid input is reported before anything runs
func TestNewPingRunnerErrors(t *testing.T) {
	p := &printer{out: io.Discard, errOut: io.Discard}

	_, err := newPingRunner("example.com", core.DefaultSettings(), p)
	assert.ErrorIs(t, err, core.ErrAddress)

	settings := core.DefaultSettings()
	settings.Count = 0
	_, err = newPingRunner("127.0.0.1", settings, p)
	assert.ErrorIs(t, err, core.ErrUsage)
}

// TestNewTraceRunner verifies the creation of a traceroute runner
func TestNewTraceRunner(t *testing.T) {
	p := &printer{out: io.Discard}

	r, err := newTraceRunner("192.0.2.1", core.DefaultSettings(), p)
	require.NoError(t, err)

	tr, ok := r.(*core.Trace)
	require.True(t, ok)
	assert.Equal(t, core.ProbingHop, tr.State())

	settings := core.DefaultSettings()
	settings.Family = core.IPv6
	_, err = newTraceRunner("::1", settings, p)
	assert.ErrorIs(t, err, core.ErrUsage)
}

type runnerFunc func() error

func (f runnerFunc) Run() error {
	return f()
}

// TestRunToCompletion verifies that only a retry budget abort exits successfully
func TestRunToCompletion(t *testing.T) {
	assert.NoError(t, runToCompletion(runnerFunc(func() error { return nil })))

	exhausted := fmt.Errorf("%w: icmp_seq 0 timed out 3 times", core.ErrRetriesExhausted)
	assert.NoError(t, runToCompletion(runnerFunc(func() error { return exhausted })))

	boom := &core.TransportError{Op: "sendto", Err: errors.New("network is unreachable")}
	assert.ErrorIs(t, runToCompletion(runnerFunc(func() error { return boom })), boom)

	assert.ErrorIs(t, runToCompletion(runnerFunc(func() error { return core.ErrPrivilege })), core.ErrPrivilege)
}
