// Package similarity computes the hybrid correlation and distance based
// gene-gene similarity matrix.
package similarity

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"

	"github.com/coexnet/coexnet/lib/datatypes"
	"github.com/coexnet/coexnet/lib/expression"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Options struct {
	// Alpha weighs the correlation term, Beta the distance term.
	// They must sum to 1.
	Alpha float64
	Beta  float64
	// Workers for the pairwise distance computation. 0 picks the CPU count.
	Workers int
}

// Compute builds the similarity matrix S = sign(C) * (alpha*|C| + beta*D)
// where C is the pearson correlation over gene rows and D is the
// log-scaled euclidean distance inverted into a closeness in [0,1].
// Entries lie in [-1,1], larger magnitudes mean stronger co-expression,
// and the sign tracks the direction of the correlation. The diagonal is
// zeroed. The input matrix is never mutated.
func Compute(expr *expression.Matrix, opts Options) (*datatypes.GeneMatrix, error) {
	if opts.Alpha < 0 || opts.Alpha > 1 || opts.Beta < 0 || opts.Beta > 1 {
		return nil, fmt.Errorf("%w: alpha and beta must lie in [0,1] but got %f and %f",
			datatypes.ErrInvalidParameter, opts.Alpha, opts.Beta)
	}
	if math.Abs(opts.Alpha+opts.Beta-1.0) > 1e-9 {
		return nil, fmt.Errorf("%w: alpha and beta must sum to 1 but got %f and %f",
			datatypes.ErrInvalidParameter, opts.Alpha, opts.Beta)
	}
	n := expr.GeneCount()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 genes but got %d",
			datatypes.ErrInsufficientData, n)
	}
	if expr.SampleCount() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples but got %d",
			datatypes.ErrInsufficientData, expr.SampleCount())
	}

	corr := correlationMatrix(expr.Data)
	log.Printf("computed correlations for %d genes\n", n)

	dist := pairwiseDistances(expr.Data, opts.Workers)
	maxLogDist := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.Log(dist.At(i, j) + 1.0)
			dist.Set(i, j, d)
			dist.Set(j, i, d)
			if d > maxLogDist {
				maxLogDist = d
			}
		}
	}
	if maxLogDist == 0 {
		return nil, fmt.Errorf("%w: all gene rows are identical", datatypes.ErrDegenerateInput)
	}
	log.Printf("computed distances for %d genes\n", n)

	sim := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := clamp(corr.At(i, j), -1.0, 1.0)
			closeness := 1.0 - dist.At(i, j)/maxLogDist
			s := clamp(signOf(c)*(opts.Alpha*math.Abs(c)+opts.Beta*closeness), -1.0, 1.0)
			sim.Set(i, j, s)
			sim.Set(j, i, s)
		}
	}

	genes := make([]string, n)
	copy(genes, expr.Genes)
	return &datatypes.GeneMatrix{Genes: genes, Data: sim}, nil
}

// correlationMatrix normalizes every gene row to zero mean and unit
// norm, so the product with its own transpose is the pearson matrix.
func correlationMatrix(data *mat.Dense) *mat.Dense {
	r, c := data.Dims()
	normalized := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		copy(row, data.RawRowView(i))
		mean := floats.Sum(row) / float64(c)
		for j := range row {
			row[j] -= mean
		}
		norm := math.Sqrt(floats.Dot(row, row))
		if norm > 0 {
			floats.Scale(1.0/norm, row)
		}
		normalized.SetRow(i, row)
	}
	corr := mat.NewDense(r, r, nil)
	corr.Mul(normalized, normalized.T())
	return corr
}

// pairwiseDistances fills the euclidean distance matrix using row-block
// workers. Every worker owns a disjoint block of output rows and reads
// shared input only, so the result matches a sequential computation
// bit for bit.
func pairwiseDistances(data *mat.Dense, workers int) *mat.Dense {
	n, _ := data.Dims()
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	dist := mat.NewDense(n, n, nil)
	rowsPerWorker := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				ri := data.RawRowView(i)
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					dist.Set(i, j, euclideanDistance(ri, data.RawRowView(j)))
				}
			}
		}(start, end)
	}
	wg.Wait()
	return dist
}

func signOf(v float64) float64 {
	if v > 0 {
		return 1.0
	}
	if v < 0 {
		return -1.0
	}
	return 0.0
}

func clamp(v float64, lo float64, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
