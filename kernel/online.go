package kernel

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Online computes the kernel product one output row at a time, accumulating
// exp(-|x_i - y_j|^2) * b_j without ever materializing the pairwise matrix.
// O(n+m) memory, so it never hits the memory budget.
type Online struct{}

func (o *Online) Name() string { return BackendOnline }

func (o *Online) Apply(x, y *mat.Dense, b []float64) ([]float64, error) {
	n, m, d, err := checkDims(x, y, b)
	if err != nil {
		return nil, err
	}

	xr := x.RawMatrix()
	yr := y.RawMatrix()
	out := make([]float64, n)

	for i := 0; i < n; i++ {
		xi := xr.Data[i*xr.Stride : i*xr.Stride+d]
		var acc float64
		for j := 0; j < m; j++ {
			yj := yr.Data[j*yr.Stride : j*yr.Stride+d]
			var d2 float64
			for k := 0; k < d; k++ {
				diff := xi[k] - yj[k]
				d2 += diff * diff
			}
			acc += math.Exp(-d2) * b[j]
		}
		out[i] = acc
	}
	return out, nil
}
