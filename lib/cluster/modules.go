// Package cluster groups genes into co-expression modules. It builds
// an average-linkage dendrogram over the distance 1 - adjacency and
// cuts it with a dynamic branch-cutting heuristic.
package cluster

import (
	"fmt"
	"log"

	"github.com/coexnet/coexnet/lib/datatypes"
	"gonum.org/v1/gonum/mat"
)

// ModuleAssignment maps genes to module labels by shared index.
// Unassigned genes carry the label -1.
type ModuleAssignment struct {
	Genes  []string
	Labels []int
}

// ModuleCount returns the number of detected modules.
func (m *ModuleAssignment) ModuleCount() int {
	count := 0
	for _, label := range m.Labels {
		if label+1 > count {
			count = label + 1
		}
	}
	return count
}

// UnassignedCount returns how many genes carry the unassigned label.
func (m *ModuleAssignment) UnassignedCount() int {
	count := 0
	for _, label := range m.Labels {
		if label == Unassigned {
			count++
		}
	}
	return count
}

// DetectModules clusters genes on the distance 1 - adjacency and cuts
// the dendrogram into modules of at least minModuleSize genes. The
// labels come back aligned with the adjacency gene order, largest
// module first.
func DetectModules(adj *datatypes.GeneMatrix, minModuleSize int, deepSplit bool) (*ModuleAssignment, error) {
	if minModuleSize < 1 {
		return nil, fmt.Errorf("%w: minimum module size must be positive but got %d",
			datatypes.ErrInvalidParameter, minModuleSize)
	}
	n := adj.Size()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least two genes but got %d",
			datatypes.ErrInsufficientData, n)
	}
	if n < minModuleSize {
		return nil, fmt.Errorf("%w: %d genes cannot fill a module of size %d",
			datatypes.ErrInsufficientData, n, minModuleSize)
	}
	dist := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dist.Set(i, j, 1.0-adj.At(i, j))
		}
	}
	dendro, err := BuildDendrogram(dist)
	if err != nil {
		return nil, err
	}
	labels := Cut(dendro, minModuleSize, deepSplit)
	genes := make([]string, n)
	copy(genes, adj.Genes)
	assignment := &ModuleAssignment{Genes: genes, Labels: labels}
	log.Printf("detected %d modules over %d genes, %d unassigned\n",
		assignment.ModuleCount(), n, assignment.UnassignedCount())
	return assignment, nil
}
