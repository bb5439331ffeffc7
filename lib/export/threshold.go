package export

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// searchThreshold picks the pruning threshold from the requested
// value, the edge budget and the safety floor. magnitudes holds the
// absolute adjacency values of the n*(n-1)/2 unordered gene pairs.
//
// The budget cutoff sits at the empirical quantile whose upper tail
// holds maxEdgeRatio*numVertices pairs, so the exported graph cannot
// blow past the edge budget. The floor, the 99.99th percentile, keeps
// a trace of edges alive even when the requested threshold lies above
// every value in the matrix.
func searchThreshold(magnitudes []float64, requested float64, maxEdgeRatio float64, numVertices int) float64 {
	sorted := append([]float64(nil), magnitudes...)
	sort.Float64s(sorted)
	floor := stat.Quantile(0.9999, stat.Empirical, sorted, nil)
	threshold := requested
	maxEdges := maxEdgeRatio * float64(numVertices)
	if rank := 1.0 - maxEdges/float64(len(sorted)); rank > 0 {
		cutoff := stat.Quantile(rank, stat.Empirical, sorted, nil)
		if cutoff > threshold {
			threshold = cutoff
		}
	}
	if floor < threshold {
		threshold = floor
	}
	return threshold
}
