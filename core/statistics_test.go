package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSummarizeEmpty verifies that no samples give no summary
func TestSummarizeEmpty(t *testing.T) {
	_, ok := Summarize(nil)
	assert.False(t, ok)

	_, ok = Summarize([]float64{})
	assert.False(t, ok)
}

// TestSummarizeSingle verifies the summary of a single sample
func TestSummarizeSingle(t *testing.T) {
	sm, ok := Summarize([]float64{5.0})
	assert.True(t, ok)
	assert.Equal(t, Summary{Count: 1, Min: 5, Max: 5, Mean: 5, StdDev: 0}, sm)
}

// TestSummarizePopulationStdDev verifies that the deviation divides by the sample count
func TestSummarizePopulationStdDev(t *testing.T) {
	sm, ok := Summarize([]float64{4, 1, 3, 2})
	assert.True(t, ok)
	assert.Equal(t, 4, sm.Count)
	assert.Equal(t, 1.0, sm.Min)
	assert.Equal(t, 4.0, sm.Max)
	assert.Equal(t, 2.5, sm.Mean)
	assert.InDelta(t, math.Sqrt(1.25), sm.StdDev, 1e-12)
}

// TestNewStatistics tests if a new statistics struct is properly initialized
func TestNewStatistics(t *testing.T) {
	stats := NewStatistics()

	assert.Zero(t, stats.PktLoss())
	assert.Zero(t, stats.TotalSent)
	assert.Zero(t, stats.TotalRecv)
	assert.Empty(t, stats.RTTs)
	_, ok := stats.Summary()
	assert.False(t, ok)
}

// TestStatisticsCounts tests the counters and the loss computed from them
func TestStatisticsCounts(t *testing.T) {
	stats := NewStatistics()
	for i := 0; i < 4; i++ {
		stats.EchoRequested()
	}
	stats.EchoReplied(1.5)
	stats.EchoReplied(2.5)

	assert.Equal(t, 4, stats.TotalSent)
	assert.Equal(t, 2, stats.TotalRecv)
	assert.Equal(t, []float64{1.5, 2.5}, stats.RTTs)
	assert.Equal(t, 0.5, stats.PktLoss())

	sm, ok := stats.Summary()
	assert.True(t, ok)
	assert.Equal(t, 2.0, sm.Mean)
	assert.Equal(t, 0.5, sm.StdDev)
}

// TestStatisticsTimes tests the start and end callbacks of a session
func TestStatisticsTimes(t *testing.T) {
	s, err := NewSession("127.0.0.1", DefaultSettings())
	assert.NoError(t, err)

	now := time.Now()
	initStatsCb(s)
	assert.False(t, s.Stats.StTime.Before(now))

	finishStatsCb(s)
	assert.False(t, s.Stats.EndTime.Before(s.Stats.StTime))
	assert.GreaterOrEqual(t, s.Stats.Elapsed(), time.Duration(0))
}
