// Package adjacency turns similarity values into soft thresholded edge
// weights.
package adjacency

import (
	"fmt"
	"math"

	"github.com/coexnet/coexnet/lib/datatypes"
	"gonum.org/v1/gonum/mat"
)

// Transform shifts similarity into [0,1] and raises it to the given
// power, so weak correlations shrink faster than strong ones. With
// signed true the shift is (1+s)/2 and negative correlations end up
// down-weighted; with signed false the sign is dropped first and
// strong negative correlations count like strong positive ones.
// Entries lie in [0,1], the diagonal is zeroed.
func Transform(sim *datatypes.GeneMatrix, power float64, signed bool) (*datatypes.GeneMatrix, error) {
	if power <= 0 {
		return nil, fmt.Errorf("%w: power must be positive but got %f",
			datatypes.ErrInvalidParameter, power)
	}
	n := sim.Size()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 genes but got %d",
			datatypes.ErrInsufficientData, n)
	}

	adj := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := sim.At(i, j)
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			if !signed {
				s = math.Abs(s)
			}
			a := math.Pow((1.0+s)/2.0, power)
			if a > 1.0 {
				a = 1.0
			} else if a < 0.0 {
				a = 0.0
			}
			adj.Set(i, j, a)
			adj.Set(j, i, a)
		}
	}

	genes := make([]string, n)
	copy(genes, sim.Genes)
	return &datatypes.GeneMatrix{Genes: genes, Data: adj}, nil
}
