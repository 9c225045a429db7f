package bench

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/colorfulnotion/kernelbench/kernel"
)

func testConfig(sizes ...int) Config {
	cfg := DefaultConfig()
	cfg.Sizes = sizes
	return cfg
}

func TestSweepFullCoverage(t *testing.T) {
	cfg := testConfig(100, 200, 500)
	r := NewRunner(cfg)

	res, err := r.Sweep("fake", func(n, loops int) (float64, error) {
		return 1e-6, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.TimesSec) != 3 {
		t.Fatalf("len(TimesSec) = %d, want 3", len(res.TimesSec))
	}
	if res.Abort != AbortNone {
		t.Fatalf("unexpected abort: %s", res.Abort)
	}
	for i, v := range res.TimesSec {
		if math.IsNaN(v) || v < 0 {
			t.Fatalf("TimesSec[%d] = %v", i, v)
		}
	}
}

func TestSweepMemoryOverflowPadding(t *testing.T) {
	cfg := testConfig(100, 200, 500, 1000, 2000)
	r := NewRunner(cfg)

	res, err := r.Sweep("fake", func(n, loops int) (float64, error) {
		if n >= 500 {
			return 0, fmt.Errorf("workspace too big: %w", kernel.ErrMemoryOverflow)
		}
		return 1e-6, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Abort != AbortMemoryOverflow {
		t.Fatalf("abort = %q, want %q", res.Abort, AbortMemoryOverflow)
	}
	if len(res.TimesSec) != 5 {
		t.Fatalf("len(TimesSec) = %d, want 5", len(res.TimesSec))
	}
	for i := 0; i < 2; i++ {
		if math.IsNaN(res.TimesSec[i]) {
			t.Fatalf("TimesSec[%d] should be measured", i)
		}
	}
	for i := 2; i < 5; i++ {
		if !math.IsNaN(res.TimesSec[i]) {
			t.Fatalf("TimesSec[%d] = %v, want NaN padding", i, res.TimesSec[i])
		}
	}
}

func TestSweepLoopReduction(t *testing.T) {
	cfg := testConfig(100, 200, 500)
	cfg.RedTime = 100 * time.Millisecond
	cfg.MaxTime = time.Hour
	r := NewRunner(cfg)

	var seen []int
	res, err := r.Sweep("fake", func(n, loops int) (float64, error) {
		seen = append(seen, loops)
		// Each batch lands above RedTime/10 so every size triggers one
		// schedule advance.
		return 0.011 / float64(loops), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []int{100, 10, 1}
	if len(seen) != len(want) {
		t.Fatalf("loop counts %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("loop counts %v, want %v", seen, want)
		}
	}
	// Once the schedule is exhausted the RedTime condition alone no longer
	// triggers, so the sweep finishes without aborting.
	if res.Abort != AbortNone {
		t.Fatalf("abort = %q, want none", res.Abort)
	}
	for _, v := range res.TimesSec {
		if math.IsNaN(v) {
			t.Fatal("measured size lost its recorded time")
		}
	}
}

func TestSweepTooSlowKeepsTriggeringTime(t *testing.T) {
	cfg := testConfig(100, 200, 500, 1000)
	cfg.MaxTime = 10 * time.Millisecond
	cfg.RedTime = time.Nanosecond
	r := NewRunner(cfg)

	res, err := r.Sweep("fake", func(n, loops int) (float64, error) {
		return 0.02 / float64(loops), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// Every measurement exceeds MaxTime, so the schedule burns down one
	// entry per size: 100 at n=100, 10 at n=200, 1 at n=500, exhausted.
	if res.Abort != AbortTooSlow {
		t.Fatalf("abort = %q, want %q", res.Abort, AbortTooSlow)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(res.TimesSec[i]) {
			t.Fatalf("TimesSec[%d] should keep its recorded time", i)
		}
	}
	if !math.IsNaN(res.TimesSec[3]) {
		t.Fatalf("TimesSec[3] = %v, want NaN", res.TimesSec[3])
	}
}

func TestSweepUnexpectedErrorPropagates(t *testing.T) {
	r := NewRunner(testConfig(100))
	_, err := r.Sweep("fake", func(n, loops int) (float64, error) {
		return 0, fmt.Errorf("backend blew up")
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestCompareRealBackends(t *testing.T) {
	cfg := testConfig(50, 100)
	cfg.LoopSchedule = []int{2, 1}
	cfg.MaxTime = time.Hour
	cfg.RedTime = time.Hour
	r := NewRunner(cfg)

	rep, err := r.Compare(kernel.Backends(cfg.MemBudget))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Backends) != 2 || len(rep.Sweeps) != 2 {
		t.Fatalf("got %d backends, %d sweeps", len(rep.Backends), len(rep.Sweeps))
	}
	if rep.Backends[0] != kernel.BackendTensorized || rep.Backends[1] != kernel.BackendOnline {
		t.Fatalf("backend order %v", rep.Backends)
	}
	for _, sweep := range rep.Sweeps {
		if len(sweep.TimesSec) != 2 {
			t.Fatalf("sweep %s has %d entries", sweep.Backend, len(sweep.TimesSec))
		}
		for i, v := range sweep.TimesSec {
			if math.IsNaN(v) || v < 0 {
				t.Fatalf("sweep %s entry %d = %v", sweep.Backend, i, v)
			}
		}
	}
}

func TestRuntimeGrowsWithProblemSize(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping timing benchmark in short mode.")
	}

	cfg := testConfig(20, 2000)
	cfg.LoopSchedule = []int{3}
	cfg.MaxTime = time.Hour
	cfg.RedTime = time.Hour
	r := NewRunner(cfg)

	res, err := r.Sweep("online", r.BackendRoutine(kernel.Backends(0)[1]))
	if err != nil {
		t.Fatal(err)
	}
	// 100x more points means 10000x more kernel evaluations; the mean
	// time has to grow across that gap on any machine.
	if res.TimesSec[1] <= res.TimesSec[0] {
		t.Fatalf("time did not grow with size: %v", res.TimesSec)
	}
}

func TestCompareMemoryBudgetAbortsTensorizedOnly(t *testing.T) {
	cfg := testConfig(50, 100, 200)
	cfg.LoopSchedule = []int{1}
	cfg.MaxTime = time.Hour
	cfg.RedTime = time.Hour
	cfg.MemBudget = 100 * 100 * 8 // 200x200 overflows
	r := NewRunner(cfg)

	rep, err := r.Compare(kernel.Backends(cfg.MemBudget))
	if err != nil {
		t.Fatal(err)
	}

	tensorized := rep.Sweeps[0]
	if tensorized.Abort != AbortMemoryOverflow {
		t.Fatalf("tensorized abort = %q, want memory overflow", tensorized.Abort)
	}
	if !math.IsNaN(tensorized.TimesSec[2]) {
		t.Fatal("tensorized 200-point entry should be NaN")
	}

	online := rep.Sweeps[1]
	if online.Abort != AbortNone {
		t.Fatalf("online abort = %q, want none", online.Abort)
	}
	for i, v := range online.TimesSec {
		if math.IsNaN(v) {
			t.Fatalf("online entry %d is NaN", i)
		}
	}
}
