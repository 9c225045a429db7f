package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Tensorized computes the kernel product by forming the full n-by-m squared
// distance matrix via |x|^2 - 2*x*y^T + |y|^2, exponentiating it in place,
// and multiplying by the signal. Fast for small n but needs n*m*8 bytes of
// workspace.
type Tensorized struct {
	// MemBudget caps the pairwise-matrix workspace in bytes. Apply returns
	// ErrMemoryOverflow instead of allocating past it. 0 means unlimited.
	MemBudget uint64
}

func (t *Tensorized) Name() string { return BackendTensorized }

func (t *Tensorized) Apply(x, y *mat.Dense, b []float64) ([]float64, error) {
	n, m, _, err := checkDims(x, y, b)
	if err != nil {
		return nil, err
	}

	if t.MemBudget > 0 {
		need := uint64(n) * uint64(m) * 8
		if need > t.MemBudget {
			return nil, fmt.Errorf("%dx%d pairwise matrix needs %d bytes, budget is %d: %w",
				n, m, need, t.MemBudget, ErrMemoryOverflow)
		}
	}

	xx := rowNormsSquared(x)
	yy := rowNormsSquared(y)

	var k mat.Dense
	k.Mul(x, y.T()) // (n,d) @ (d,m) = (n,m)

	raw := k.RawMatrix()
	for i := 0; i < n; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+m]
		for j := 0; j < m; j++ {
			d2 := xx[i] - 2*row[j] + yy[j]
			row[j] = math.Exp(-d2)
		}
	}

	var out mat.VecDense
	out.MulVec(&k, mat.NewVecDense(m, b))
	return out.RawVector().Data, nil
}

func rowNormsSquared(a *mat.Dense) []float64 {
	n, d := a.Dims()
	raw := a.RawMatrix()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+d]
		var s float64
		for _, v := range row {
			s += v * v
		}
		out[i] = s
	}
	return out
}
