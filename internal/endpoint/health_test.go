package endpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthTrackerPushEvictsOldestFirst(t *testing.T) {
	var h HealthTracker

	h.Push(10.0, 3)
	h.Push(20.0, 3)
	h.Push(30.0, 3)
	h.Push(40.0, 3)

	require.Equal(t, []float64{20.0, 30.0, 40.0}, h.History())
	require.Equal(t, 30.0, h.Snapshot().Latency)
}

func TestHealthTrackerBoundedByWindow(t *testing.T) {
	var h HealthTracker

	for i := 0; i < 50; i++ {
		h.Push(float64(i), 5)
		require.LessOrEqual(t, h.Snapshot().Samples, 5)
	}
	require.Equal(t, []float64{45, 46, 47, 48, 49}, h.History())
}

func TestHealthTrackerSaturationDrivesAverage(t *testing.T) {
	var h HealthTracker

	h.Push(100.0, 4)
	for i := 0; i < 4; i++ {
		h.Push(2.5, 4)
	}
	require.Equal(t, 2.5, h.Snapshot().Latency)
}

func TestHealthTrackerWindowShrinkReboundsOnPush(t *testing.T) {
	var h HealthTracker

	for _, v := range []float64{1, 2, 3, 4, 5} {
		h.Push(v, 5)
	}
	h.Push(6, 3)

	require.Equal(t, []float64{5, 6}, h.History()[1:])
	require.Equal(t, 3, h.Snapshot().Samples)
}

func TestHealthTrackerEmptyLeavesLatencyUntouched(t *testing.T) {
	var h HealthTracker
	require.Equal(t, 0.0, h.Snapshot().Latency)
	require.Equal(t, 0, h.Snapshot().Samples)
}
