// Package export prunes and rescales an adjacency matrix into the
// final network artifact. The threshold search balances the caller's
// requested cutoff against a hard edge budget and a safety floor.
package export

import (
	"fmt"
	"log"
	"math"

	"github.com/coexnet/coexnet/lib/annotation"
	"github.com/coexnet/coexnet/lib/cluster"
	"github.com/coexnet/coexnet/lib/datatypes"
	"github.com/coexnet/coexnet/lib/graph"
)

// Options control the export step.
type Options struct {
	// Name labels the graph inside the serialized artifact.
	Name string
	// Threshold is the requested magnitude cutoff. The edge budget and
	// the safety floor can override it.
	Threshold float64
	// MaxEdgeRatio bounds the exported edge count at ratio * vertices.
	MaxEdgeRatio float64
	// Weighted keeps rescaled weights on the edges; otherwise every
	// surviving edge collapses to weight 1.
	Weighted bool
}

// Export thresholds a gene matrix, drops orphaned genes, rescales the
// surviving magnitudes into [0,1] and assembles the network artifact.
// The canonical matrix is never mutated; pruning happens on a working
// copy. Module labels and annotation rows must line up with the
// pre-prune gene order; both are re-aligned in lock step when orphans
// drop out.
func Export(adj *datatypes.GeneMatrix, modules *cluster.ModuleAssignment, attrs *annotation.Aligned, opts Options) (*graph.Artifact, error) {
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must lie in [0,1] but got %f",
			datatypes.ErrInvalidParameter, opts.Threshold)
	}
	if opts.MaxEdgeRatio <= 0 {
		return nil, fmt.Errorf("%w: max edge ratio must be positive but got %f",
			datatypes.ErrInvalidParameter, opts.MaxEdgeRatio)
	}
	n := adj.Size()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least two genes but got %d",
			datatypes.ErrInsufficientData, n)
	}
	if modules != nil {
		if len(modules.Labels) != n || len(modules.Genes) != n {
			return nil, fmt.Errorf("%w: %d module labels for %d genes",
				datatypes.ErrSchemaMismatch, len(modules.Labels), n)
		}
		for i, gene := range modules.Genes {
			if gene != adj.Genes[i] {
				return nil, fmt.Errorf("%w: module assignment lists %s at row %d, adjacency has %s",
					datatypes.ErrSchemaMismatch, gene, i, adj.Genes[i])
			}
		}
	}
	if attrs != nil {
		if err := attrs.Validate(n); err != nil {
			return nil, err
		}
	}

	magnitudes := make([]float64, 0, n*(n-1)/2)
	maxMagnitude := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m := math.Abs(adj.At(i, j))
			magnitudes = append(magnitudes, m)
			if m > maxMagnitude {
				maxMagnitude = m
			}
		}
	}
	threshold := searchThreshold(magnitudes, opts.Threshold, opts.MaxEdgeRatio, n)
	denom := maxMagnitude - threshold

	work := adj.Clone()
	edges := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if edgeSurvives(math.Abs(work.At(i, j)), threshold, denom) {
				edges++
				continue
			}
			work.Data.Set(i, j, 0)
			work.Data.Set(j, i, 0)
		}
	}
	if edges == 0 {
		return nil, fmt.Errorf("%w at threshold %f", datatypes.ErrZeroEdges, threshold)
	}

	var columns []string
	if attrs != nil {
		columns = attrs.Columns
	}
	art := graph.NewArtifact(opts.Name, columns)
	index := make([]int64, n)
	for i := 0; i < n; i++ {
		index[i] = -1
		if rowDegree(work, i) == 0 {
			continue
		}
		label := cluster.Unassigned
		if modules != nil {
			label = modules.Labels[i]
		}
		var annotations []string
		if attrs != nil {
			annotations = attrs.Rows[i]
		}
		v := art.AddVertex(work.Genes[i], label, cluster.ColorFor(label), annotations)
		index[i] = v.ID()
	}
	for i := 0; i < n; i++ {
		if index[i] < 0 {
			continue
		}
		for j := i + 1; j < n; j++ {
			if index[j] < 0 {
				continue
			}
			value := work.At(i, j)
			if value == 0 {
				continue
			}
			weight := 1.0
			if opts.Weighted && denom > 0 {
				weight = (math.Abs(value) - threshold) / denom
			}
			art.AddLink(index[i], index[j], weight, value > 0)
		}
	}
	log.Printf("network %s: kept %d of %d genes and %d edges at threshold %f\n",
		opts.Name, art.VertexCount(), n, edges, threshold)
	return art, nil
}

// edgeSurvives is the single survival rule shared by pruning, degree
// computation and edge construction, so a kept vertex always has at
// least one edge. Threshold-equal magnitudes would rescale to weight
// zero and would push the edge count past the budget, so survival is
// strict. The exception is a threshold equal to the maximum, where
// the safety floor is forcing the strongest edges through.
func edgeSurvives(m float64, threshold float64, denom float64) bool {
	if m == 0 {
		return false
	}
	if denom == 0 {
		return m >= threshold
	}
	return m > threshold
}

func rowDegree(m *datatypes.GeneMatrix, i int) int {
	degree := 0
	for j := 0; j < m.Size(); j++ {
		if j != i && m.At(i, j) != 0 {
			degree++
		}
	}
	return degree
}
