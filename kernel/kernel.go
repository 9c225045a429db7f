// Package kernel implements the Gaussian RBF kernel matrix-vector product
//
//	a_i = sum_j exp(-|x_i - y_j|^2) * b_j
//
// through two interchangeable backends: a tensorized one that materializes
// the full pairwise matrix and an online one that streams over rows.
package kernel

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	BackendTensorized = "tensorized"
	BackendOnline     = "online"
)

// ErrMemoryOverflow is returned when a backend's workspace estimate exceeds
// its memory budget. The sweep treats it as an early-abort signal.
var ErrMemoryOverflow = errors.New("kernel: memory overflow")

// Backend computes the Gaussian kernel product over two point clouds.
// x is n-by-d, y is m-by-d, b has m entries; the result has n entries.
type Backend interface {
	Name() string
	Apply(x, y *mat.Dense, b []float64) ([]float64, error)
}

// Backends returns the default backend list in sweep order. memBudget caps
// the tensorized backend's workspace in bytes (0 = unlimited).
func Backends(memBudget uint64) []Backend {
	return []Backend{
		&Tensorized{MemBudget: memBudget},
		&Online{},
	}
}

// Lookup finds a backend by name.
func Lookup(backends []Backend, name string) (Backend, error) {
	for _, be := range backends {
		if be.Name() == name {
			return be, nil
		}
	}
	return nil, fmt.Errorf("unknown backend: %s", name)
}

func checkDims(x, y *mat.Dense, b []float64) (n, m, d int, err error) {
	n, d = x.Dims()
	m, dy := y.Dims()
	if d != dy {
		return 0, 0, 0, fmt.Errorf("dimension mismatch: x is %dx%d, y is %dx%d", n, d, m, dy)
	}
	if len(b) != m {
		return 0, 0, 0, fmt.Errorf("signal length %d does not match %d points", len(b), m)
	}
	return n, m, d, nil
}
