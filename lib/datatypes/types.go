package datatypes

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// GeneMatrix is a square matrix indexed by gene on both axes.
// The same structure carries similarity, adjacency and topological
// overlap values; each producer documents the value range it emits.
// Producers zero the diagonal, consumers only read off-diagonal cells.
type GeneMatrix struct {
	Genes []string
	Data  *mat.Dense
}

func NewGeneMatrix(genes []string, data *mat.Dense) (*GeneMatrix, error) {
	r, c := data.Dims()
	if r != c {
		return nil, fmt.Errorf("gene matrix must be square but got %d x %d", r, c)
	}
	if len(genes) != r {
		return nil, fmt.Errorf("gene matrix has %d rows but %d gene ids", r, len(genes))
	}
	return &GeneMatrix{Genes: genes, Data: data}, nil
}

func (m *GeneMatrix) Size() int {
	return len(m.Genes)
}

func (m *GeneMatrix) At(i int, j int) float64 {
	return m.Data.At(i, j)
}

// Clone returns a deep copy. The exporter prunes a clone so the
// canonical matrix stays untouched.
func (m *GeneMatrix) Clone() *GeneMatrix {
	genes := make([]string, len(m.Genes))
	copy(genes, m.Genes)
	return &GeneMatrix{Genes: genes, Data: mat.DenseCopyOf(m.Data)}
}
