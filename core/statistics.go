package core

import (
	"math"
	"time"
)

// Summary holds the aggregate of a set of round-trip times, in milliseconds.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summarize computes min, max, mean and population standard deviation of rtts.
// It returns false when there is nothing to summarize.
func Summarize(rtts []float64) (Summary, bool) {
	if len(rtts) == 0 {
		return Summary{}, false
	}

	sm := Summary{Count: len(rtts), Min: rtts[0], Max: rtts[0]}
	total := 0.0
	for _, rtt := range rtts {
		sm.Min = math.Min(sm.Min, rtt)
		sm.Max = math.Max(sm.Max, rtt)
		total += rtt
	}
	sm.Mean = total / float64(len(rtts))

	sq := 0.0
	for _, rtt := range rtts {
		sq += (rtt - sm.Mean) * (rtt - sm.Mean)
	}
	sm.StdDev = math.Sqrt(sq / float64(len(rtts)))

	return sm, true
}

// Statistics aggregate stats about a ping session
type Statistics struct {
	// TotalSent is the total amount of echo requests written, retries included.
	TotalSent int

	// TotalRecv is the total amount of matching echo replies.
	TotalRecv int

	// RTTs contains the round-trip times of all successful replies, in milliseconds.
	RTTs []float64

	// StTime contains the start time of the session
	StTime time.Time

	// EndTime contains the end time of the session
	EndTime time.Time
}

// NewStatistics creates and initializes a Statistics struct.
func NewStatistics() *Statistics {
	return &Statistics{RTTs: []float64{}}
}

// SessionStarted records the start time.
func (s *Statistics) SessionStarted() {
	s.StTime = time.Now()
}

// SessionEnded records the end time.
func (s *Statistics) SessionEnded() {
	s.EndTime = time.Now()
}

// EchoRequested counts one echo request written to the socket.
func (s *Statistics) EchoRequested() {
	s.TotalSent++
}

// EchoReplied records the rtt of a matching reply.
func (s *Statistics) EchoReplied(rtt float64) {
	s.TotalRecv++
	s.RTTs = append(s.RTTs, rtt)
}

// PktLoss returns the fraction of echo requests left without a reply.
func (s *Statistics) PktLoss() float64 {
	if s.TotalSent == 0 {
		return 0
	}
	return 1 - float64(s.TotalRecv)/float64(s.TotalSent)
}

// Elapsed is the wall time between the start and the end of the session.
func (s *Statistics) Elapsed() time.Duration {
	return s.EndTime.Sub(s.StTime)
}

// Summary summarizes the collected rtts.
func (s *Statistics) Summary() (Summary, bool) {
	return Summarize(s.RTTs)
}
