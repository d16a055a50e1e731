package arbutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLatencyTooHighDisabledWhenZero(t *testing.T) {
	require.False(t, LatencyTooHigh(10*time.Second, 0), "zero max latency should disable the check")
}

func TestLatencyTooHigh(t *testing.T) {
	require := require.New(t)
	require.True(LatencyTooHigh(2*time.Second, time.Second))
	require.False(LatencyTooHigh(500*time.Millisecond, time.Second))
}

func TestCalculateTipFixed(t *testing.T) {
	require.EqualValues(t, 1000, CalculateTip(10_000, false, 0, 0, 0, 1000))
}

func TestCalculateTipPercentClampedToMax(t *testing.T) {
	got := CalculateTip(1_000_000, true, 50, 1000, 5000, 1000)
	require.EqualValues(t, 5000, got, "clamped to max")
}

func TestCalculateTipPercentClampedToMin(t *testing.T) {
	got := CalculateTip(100, true, 10, 1000, 5000, 1000)
	require.EqualValues(t, 1000, got, "clamped to min")
}

func TestCalculateTipPercentWithinBounds(t *testing.T) {
	got := CalculateTip(10_000, true, 10, 100, 5000, 1000)
	require.EqualValues(t, 1000, got)
}

func TestRandomTipAccount(t *testing.T) {
	require := require.New(t)
	pk, err := RandomTipAccount()
	require.NoError(err)
	require.False(pk.IsZero(), "expected a non-zero tip account pubkey")
}
