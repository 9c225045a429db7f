// Kernel Bench - scaling benchmark for Gaussian kernel matrix-vector products.
// Times the tensorized and online backends over growing 3D point clouds,
// then renders a log-log scaling chart and dumps a CSV table.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/colorfulnotion/kernelbench/bench"
	"github.com/colorfulnotion/kernelbench/kernel"
	log "github.com/colorfulnotion/kernelbench/log"
	"github.com/colorfulnotion/kernelbench/store"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "kernel_bench",
		Short: "Gaussian kernel product scaling benchmark",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newRunCmd(), newHistoryCmd(), newVersionCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var (
		sizesArg    string
		backendsArg string
		maxTime     time.Duration
		redTime     time.Duration
		memBudget   uint64
		seed        uint64
		outDir      string
		dbPath      string
		logLevel    string
		debug       string
	)

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the backend sweep and export CSV, JSON and charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.InitLogger(logLevel)
			log.EnableModules(debug)

			cfg := bench.DefaultConfig()
			cfg.MaxTime = maxTime
			cfg.RedTime = redTime
			cfg.MemBudget = memBudget
			cfg.Seed = seed
			if sizesArg != "" {
				sizes, err := parseSizes(sizesArg)
				if err != nil {
					return err
				}
				cfg.Sizes = sizes
			}

			backends, err := selectBackends(backendsArg, cfg.MemBudget)
			if err != nil {
				return err
			}

			fmt.Printf("Kernel Bench %s (%s, %s)\n", Version, Commit, BuildTime)
			fmt.Printf("  Sizes: %v\n", cfg.Sizes)
			fmt.Printf("  Max Time: %v\n", cfg.MaxTime)
			fmt.Printf("  Red Time: %v\n", cfg.RedTime)
			fmt.Printf("  Mem Budget: %d bytes\n", cfg.MemBudget)
			fmt.Printf("  Output Dir: %s\n", outDir)

			runner := bench.NewRunner(cfg)
			start := time.Now()
			rep, err := runner.Compare(backends)
			if err != nil {
				return fmt.Errorf("benchmark failed: %w", err)
			}
			fmt.Printf("\nBenchmark completed in %.2fs\n", time.Since(start).Seconds())
			fmt.Println(rep.DumpMetrics())

			csvPath, err := rep.SaveCSV(outDir)
			if err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
			fmt.Printf("CSV table saved to: %s\n", csvPath)

			jsonPath, err := rep.SaveJSON(outDir)
			if err != nil {
				return fmt.Errorf("failed to write JSON report: %w", err)
			}
			fmt.Printf("JSON report saved to: %s\n", jsonPath)

			chartConfig := bench.DefaultChartConfig()
			chartConfig.OutputDir = outDir
			if err := bench.GenerateAllCharts(rep, chartConfig); err != nil {
				return err
			}

			if dbPath != "" {
				rs, err := store.NewResultsStore(dbPath)
				if err != nil {
					return err
				}
				defer rs.Close()
				key, err := rs.PutReport(rep)
				if err != nil {
					return err
				}
				fmt.Printf("Run archived as: %s\n", key)
			}
			return nil
		},
	}

	runCmd.Flags().StringVar(&sizesArg, "sizes", "", "Comma-separated problem sizes, strictly increasing (default 100..1000000)")
	runCmd.Flags().StringVar(&backendsArg, "backends", "", "Comma-separated backend names to sweep (default all)")
	runCmd.Flags().DurationVar(&maxTime, "max-time", bench.DefaultConfig().MaxTime, "Abort a sweep once a timed batch exceeds this")
	runCmd.Flags().DurationVar(&redTime, "red-time", bench.DefaultConfig().RedTime, "Reduce the loop count once a batch exceeds a tenth of this")
	runCmd.Flags().Uint64Var(&memBudget, "mem-budget", bench.DefaultConfig().MemBudget, "Workspace cap in bytes for the tensorized backend")
	runCmd.Flags().Uint64Var(&seed, "seed", bench.DefaultConfig().Seed, "Seed for point cloud generation")
	runCmd.Flags().StringVar(&outDir, "out-dir", "output", "Directory for CSV, JSON and chart outputs")
	runCmd.Flags().StringVar(&dbPath, "db", "", "Path of the run archive database (empty disables archiving)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (trace|debug|info|warn|error|crit)")
	runCmd.Flags().StringVar(&debug, "debug", "", "Comma-separated log modules to enable")
	return runCmd
}

func newHistoryCmd() *cobra.Command {
	var (
		dbPath   string
		showKey  string
		logLevel string
	)

	var historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List archived runs, or dump one with --show",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.InitLogger(logLevel)

			if dbPath == "" {
				return fmt.Errorf("--db is required for history")
			}
			rs, err := store.NewResultsStore(dbPath)
			if err != nil {
				return err
			}
			defer rs.Close()

			if showKey != "" {
				rep, err := rs.GetReport(showKey)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			keys, err := rs.Keys()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("No archived runs.")
				return nil
			}
			for _, key := range keys {
				rep, err := rs.GetReport(key)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s  backends=%s sizes=%d\n",
					key,
					rep.GeneratedAt.Format(time.RFC3339),
					strings.Join(rep.Backends, ","),
					len(rep.Config.Sizes))
			}
			return nil
		},
	}
	historyCmd.Flags().StringVar(&dbPath, "db", "", "Path of the run archive database")
	historyCmd.Flags().StringVar(&showKey, "show", "", "Dump the archived report with this key")
	historyCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")
	return historyCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kernel_bench %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}
}

// selectBackends resolves the --backends filter against the registry,
// keeping the requested order. An empty filter selects every backend.
func selectBackends(arg string, memBudget uint64) ([]kernel.Backend, error) {
	all := kernel.Backends(memBudget)
	if arg == "" {
		return all, nil
	}
	var selected []kernel.Backend
	for _, name := range strings.Split(arg, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		be, err := kernel.Lookup(all, name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, be)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no backends selected")
	}
	return selected, nil
}

// parseSizes parses a comma-separated size list and enforces the sweep's
// strictly-increasing order invariant.
func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", part, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("size must be > 0, got %d", n)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes provided")
	}
	if !sort.IntsAreSorted(sizes) {
		return nil, fmt.Errorf("sizes must be in increasing order")
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] == sizes[i-1] {
			return nil, fmt.Errorf("duplicate size %d", sizes[i])
		}
	}
	return sizes, nil
}
