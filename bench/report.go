package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// CSVName is the fixed name of the whitespace-delimited table written under
// the output directory.
const CSVName = "benchmark_convolutions_3d.csv"

// JSONName is the fixed name of the JSON report written under the output
// directory.
const JSONName = "benchmark_convolutions_3d.json"

// MarshalJSON encodes NaN padding as null so the report stays valid JSON.
func (s SweepResult) MarshalJSON() ([]byte, error) {
	type alias SweepResult
	times := make([]*float64, len(s.TimesSec))
	for i := range s.TimesSec {
		if !math.IsNaN(s.TimesSec[i]) {
			v := s.TimesSec[i]
			times[i] = &v
		}
	}
	return json.Marshal(struct {
		alias
		TimesSec []*float64 `json:"times_sec"`
	}{alias: alias(s), TimesSec: times})
}

// UnmarshalJSON restores null entries to NaN.
func (s *SweepResult) UnmarshalJSON(data []byte) error {
	type alias SweepResult
	aux := struct {
		*alias
		TimesSec []*float64 `json:"times_sec"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.TimesSec = make([]float64, len(aux.TimesSec))
	for i, v := range aux.TimesSec {
		if v == nil {
			s.TimesSec[i] = math.NaN()
		} else {
			s.TimesSec[i] = *v
		}
	}
	return nil
}

// WriteCSV writes the sweep table in the fixed-width whitespace format:
// one header line naming Npoints plus each backend, then one row per size
// with every value formatted %-9.5f and missing entries written as nan.
func (rep *Report) WriteCSV(w io.Writer) error {
	header := append([]string{"Npoints"}, rep.Backends...)
	if _, err := fmt.Fprintln(w, strings.Join(header, " ")); err != nil {
		return err
	}

	for i, n := range rep.Config.Sizes {
		cols := make([]string, 0, 1+len(rep.Sweeps))
		cols = append(cols, formatCell(float64(n)))
		for _, sweep := range rep.Sweeps {
			cols = append(cols, formatCell(sweep.TimesSec[i]))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cols, " ")); err != nil {
			return err
		}
	}
	return nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return fmt.Sprintf("%-9s", "nan")
	}
	return fmt.Sprintf("%-9.5f", v)
}

// SaveCSV writes the CSV table under dir, creating it if needed.
func (rep *Report) SaveCSV(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	var sb strings.Builder
	if err := rep.WriteCSV(&sb); err != nil {
		return "", err
	}
	path := filepath.Join(dir, CSVName)
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveJSON writes the indented JSON report under dir.
func (rep *Report) SaveJSON(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, JSONName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// DumpMetrics renders the post-run terminal summary for every backend.
func (rep *Report) DumpMetrics() string {
	var sb strings.Builder
	sb.WriteString("Benchmark Results:\n")
	for _, sweep := range rep.Sweeps {
		fmt.Fprintf(&sb, "Backend %s:\n%s\n", sweep.Backend, sweep.Stats.Summary())
		if sweep.Abort != AbortNone {
			fmt.Fprintf(&sb, "  Aborted: %s\n", sweep.Abort)
		}
	}
	return sb.String()
}
