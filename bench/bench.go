// Package bench times the kernel backends over a sweep of problem sizes and
// turns the measurements into reports and charts.
package bench

import (
	"errors"
	"math"
	"runtime"
	"time"

	"golang.org/x/exp/rand"

	"github.com/colorfulnotion/kernelbench/cloud"
	"github.com/colorfulnotion/kernelbench/kernel"
	log "github.com/colorfulnotion/kernelbench/log"
)

// AbortReason records why a sweep stopped before covering every size.
type AbortReason string

const (
	AbortNone           AbortReason = ""
	AbortMemoryOverflow AbortReason = "memory_overflow"
	AbortTooSlow        AbortReason = "too_slow"
)

// Label returns the annotation text shown on charts for this abort reason.
func (a AbortReason) Label() string {
	switch a {
	case AbortMemoryOverflow:
		return "Memory overflow!"
	case AbortTooSlow:
		return "Too slow!"
	default:
		return ""
	}
}

// Config drives one benchmark comparison.
type Config struct {
	Sizes        []int         `json:"sizes"`
	MaxTime      time.Duration `json:"max_time"`       // abort the sweep once a timed batch exceeds this
	RedTime      time.Duration `json:"red_time"`       // reduce the loop count once a batch exceeds RedTime/10
	LoopSchedule []int         `json:"loop_schedule"`  // repetition counts, largest first
	MemBudget    uint64        `json:"mem_budget"`     // workspace cap for the tensorized backend, bytes
	Seed         uint64        `json:"seed"`
}

// DefaultConfig mirrors the CPU timing budget: one second hard limit,
// 200ms reduction threshold, sizes from 100 to 1M.
func DefaultConfig() Config {
	return Config{
		Sizes: []int{
			100, 200, 500,
			1000, 2000, 5000,
			10000, 20000, 50000,
			100000, 200000, 500000,
			1000000,
		},
		MaxTime:      time.Second,
		RedTime:      200 * time.Millisecond,
		LoopSchedule: []int{100, 10, 1},
		MemBudget:    4 << 30,
		Seed:         1,
	}
}

// Routine times one problem size with the given repetition count and
// returns the mean elapsed seconds per call.
type Routine func(n, loops int) (float64, error)

// SweepResult holds one backend's times across the full size sweep.
// TimesSec always has one entry per configured size; entries after an early
// abort are NaN.
type SweepResult struct {
	Backend  string      `json:"backend"`
	TimesSec []float64   `json:"times_sec"`
	Abort    AbortReason `json:"abort,omitempty"`
	Stats    SweepStats  `json:"stats"`
}

// Report stores the full comparison run across all backends.
type Report struct {
	GeneratedAt time.Time     `json:"generated"`
	Config      Config        `json:"config"`
	Backends    []string      `json:"backends"`
	Sweeps      []SweepResult `json:"sweeps"`
}

// Runner executes sweeps against kernel backends.
type Runner struct {
	cfg Config
}

func NewRunner(cfg Config) *Runner {
	if len(cfg.LoopSchedule) == 0 {
		cfg.LoopSchedule = []int{100, 10, 1}
	}
	return &Runner{cfg: cfg}
}

// BackendRoutine wraps a backend as a timed Routine: fresh clouds per size,
// one warmup call, a GC to keep allocator noise out of the clock, then the
// timed batch. Wall time only brackets completed synchronous calls.
func (r *Runner) BackendRoutine(be kernel.Backend) Routine {
	return func(n, loops int) (float64, error) {
		src := rand.NewSource(r.cfg.Seed + uint64(n))
		c := cloud.Generate(src, n)

		// Warmup run, so one-time costs stay out of the measurement.
		if _, err := be.Apply(c.X, c.Y, c.B); err != nil {
			return 0, err
		}

		runtime.GC()
		start := time.Now()
		for i := 0; i < loops; i++ {
			if _, err := be.Apply(c.X, c.Y, c.B); err != nil {
				return 0, err
			}
		}
		elapsed := time.Since(start)

		mean := elapsed.Seconds() / float64(loops)
		log.Info(log.BenchMonitoring, "NxN kernel product",
			"backend", be.Name(), "n", n, "loops", loops, "mean_sec", mean)
		return mean, nil
	}
}

// Sweep times routine over the configured sizes in increasing order,
// adapting the repetition count to stay inside the time budget. The result
// always has len(cfg.Sizes) entries; an abort pads the remainder with NaN.
// Only unexpected routine errors are returned.
func (r *Runner) Sweep(name string, routine Routine) (SweepResult, error) {
	res := SweepResult{
		Backend:  name,
		TimesSec: make([]float64, 0, len(r.cfg.Sizes)),
	}

	sched := r.cfg.LoopSchedule
	idx := 0
	loops := sched[idx]

	for _, n := range r.cfg.Sizes {
		mean, err := routine(n, loops)
		if errors.Is(err, kernel.ErrMemoryOverflow) {
			log.Warn(log.BenchMonitoring, "memory overflow, aborting sweep",
				"backend", name, "n", n, "err", err)
			res.Abort = AbortMemoryOverflow
			break
		}
		if err != nil {
			return res, err
		}

		res.TimesSec = append(res.TimesSec, mean)

		batch := float64(loops) * mean
		if batch > r.cfg.MaxTime.Seconds() ||
			(batch > r.cfg.RedTime.Seconds()/10 && idx+1 < len(sched)) {
			idx++
			if idx >= len(sched) {
				log.Warn(log.BenchMonitoring, "loop schedule exhausted, too slow",
					"backend", name, "n", n)
				res.Abort = AbortTooSlow
				break
			}
			loops = sched[idx]
		}
	}

	for len(res.TimesSec) < len(r.cfg.Sizes) {
		res.TimesSec = append(res.TimesSec, math.NaN())
	}
	res.Stats = Summarize(res.TimesSec)
	return res, nil
}

// Compare sweeps every backend in order and assembles the Report.
func (r *Runner) Compare(backends []kernel.Backend) (*Report, error) {
	rep := &Report{
		GeneratedAt: time.Now().UTC(),
		Config:      r.cfg,
	}

	for _, be := range backends {
		log.Info(log.BenchMonitoring, "sweep starting", "backend", be.Name())
		res, err := r.Sweep(be.Name(), r.BackendRoutine(be))
		if err != nil {
			return nil, err
		}
		rep.Backends = append(rep.Backends, be.Name())
		rep.Sweeps = append(rep.Sweeps, res)
	}
	return rep, nil
}
