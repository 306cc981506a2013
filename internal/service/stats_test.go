package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLatencyStatsEmpty(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	snap := stats.Snapshot()
	require.Zero(t, snap.Count)
	require.Zero(t, snap.MaxMs)
}

func TestLatencyStatsSnapshot(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	for _, v := range []int64{10, 20, 30, 40, 50} {
		stats.Record(v)
	}
	snap := stats.Snapshot()

	require.Equal(t, 5, snap.Count)
	require.Equal(t, int64(10), snap.MinMs)
	require.Equal(t, int64(50), snap.MaxMs)
	require.InDelta(t, 30.0, snap.AvgMs, 0.001)
	require.InDelta(t, 30.0, snap.P50Ms, 0.001)
	require.LessOrEqual(t, snap.P95Ms, float64(50))
	require.GreaterOrEqual(t, snap.P95Ms, snap.P50Ms)
}

func TestLatencyStatsClampsNegative(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	stats.Record(-5)
	require.Equal(t, int64(0), stats.Snapshot().MinMs)
}

func TestLatencyStatsWindowPrune(t *testing.T) {
	stats := NewLatencyStats(10 * time.Millisecond)
	stats.Record(100)
	time.Sleep(20 * time.Millisecond)
	require.Zero(t, stats.Snapshot().Count)
}
