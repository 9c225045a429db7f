package store

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorfulnotion/kernelbench/bench"
)

func testReport(generated time.Time) *bench.Report {
	cfg := bench.DefaultConfig()
	cfg.Sizes = []int{100, 200}
	return &bench.Report{
		GeneratedAt: generated,
		Config:      cfg,
		Backends:    []string{"tensorized", "online"},
		Sweeps: []bench.SweepResult{
			{Backend: "tensorized", TimesSec: []float64{0.001, math.NaN()}, Abort: bench.AbortTooSlow},
			{Backend: "online", TimesSec: []float64{0.002, 0.004}},
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	rs, err := NewMemoryResultsStore()
	require.NoError(t, err)
	defer rs.Close()

	rep := testReport(time.Unix(1000, 0).UTC())
	key, err := rs.PutReport(rep)
	require.NoError(t, err)
	require.Contains(t, key, "run/")

	got, err := rs.GetReport(key)
	require.NoError(t, err)
	assert.Equal(t, rep.Backends, got.Backends)
	assert.Equal(t, rep.Config.Sizes, got.Config.Sizes)
	assert.Equal(t, bench.AbortTooSlow, got.Sweeps[0].Abort)
	assert.True(t, math.IsNaN(got.Sweeps[0].TimesSec[1]))
	assert.Equal(t, 0.004, got.Sweeps[1].TimesSec[1])
}

func TestGetMissingKey(t *testing.T) {
	rs, err := NewMemoryResultsStore()
	require.NoError(t, err)
	defer rs.Close()

	_, err = rs.GetReport("run/00000000000000000042")
	require.Error(t, err)
}

func TestKeysNewestFirst(t *testing.T) {
	rs, err := NewMemoryResultsStore()
	require.NoError(t, err)
	defer rs.Close()

	times := []time.Time{
		time.Unix(100, 0).UTC(),
		time.Unix(300, 0).UTC(),
		time.Unix(200, 0).UTC(),
	}
	for _, ts := range times {
		_, err := rs.PutReport(testReport(ts))
		require.NoError(t, err)
	}

	keys, err := rs.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 3)
	for i := 1; i < len(keys); i++ {
		assert.Greater(t, keys[i-1], keys[i], "keys must be newest first")
	}
}

func TestKeysEmptyStore(t *testing.T) {
	rs, err := NewMemoryResultsStore()
	require.NoError(t, err)
	defer rs.Close()

	keys, err := rs.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)
}
