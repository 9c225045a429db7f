// Package cloud generates the synthetic 3D point clouds the benchmark runs on.
package cloud

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dim is the ambient dimension of the point clouds.
const Dim = 3

// Cloud holds two point clouds and a source signal for one problem size.
// X and Y are N-by-Dim matrices of points sampled non-uniformly on a sphere
// of diameter 1; B carries one signal value per point of Y.
type Cloud struct {
	N int
	X *mat.Dense
	Y *mat.Dense
	B []float64
}

// Generate draws a Cloud of n points from src. The clouds are offset from
// each other (X is shifted along the first axis, Y along the second) so the
// pairwise distances are non-degenerate.
func Generate(src rand.Source, n int) *Cloud {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	x := sampleSphere(normal, n, 0)
	y := sampleSphere(normal, n, 1)

	b := make([]float64, n)
	for i := range b {
		b[i] = normal.Rand()
	}

	return &Cloud{N: n, X: x, Y: y, B: b}
}

// sampleSphere draws n standard-normal points, shifts coordinate shiftAxis
// by shiftAxis+1, and scales each point onto a sphere of diameter 1.
func sampleSphere(normal distuv.Normal, n, shiftAxis int) *mat.Dense {
	data := make([]float64, n*Dim)
	for i := range data {
		data[i] = normal.Rand()
	}

	shift := float64(shiftAxis + 1)
	for i := 0; i < n; i++ {
		row := data[i*Dim : (i+1)*Dim]
		row[shiftAxis] += shift

		var norm float64
		for _, v := range row {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		for k := range row {
			row[k] /= 2 * norm
		}
	}
	return mat.NewDense(n, Dim, data)
}
