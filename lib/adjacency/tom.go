package adjacency

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/coexnet/coexnet/lib/datatypes"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TopologicalOverlap computes the topological overlap matrix of an
// adjacency matrix. Two genes overlap strongly when they share many
// neighbours, which smooths out spurious single edges before
// clustering. Entries lie in [0,1], the diagonal is zeroed. Row blocks
// are computed by independent workers writing disjoint output rows, so
// the result matches a sequential computation bit for bit.
func TopologicalOverlap(adj *datatypes.GeneMatrix, workers int) (*datatypes.GeneMatrix, error) {
	n := adj.Size()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 genes but got %d",
			datatypes.ErrInsufficientData, n)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	connectivity := make([]float64, n)
	for i := 0; i < n; i++ {
		connectivity[i] = floats.Sum(adj.Data.RawRowView(i))
	}

	tom := mat.NewDense(n, n, nil)
	rowsPerWorker := (n + workers - 1) / workers
	progress := make(chan int, workers)
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
				ri := adj.Data.RawRowView(i)
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					a := adj.Data.At(i, j)
					// With a zero diagonal the dot product already
					// skips the two endpoint terms.
					shared := floats.Dot(ri, adj.Data.RawRowView(j))
					minConn := connectivity[i]
					if connectivity[j] < minConn {
						minConn = connectivity[j]
					}
					overlap := (shared + a) / (minConn + 1.0 - a)
					if overlap > 1.0 {
						overlap = 1.0
					} else if overlap < 0.0 {
						overlap = 0.0
					}
					tom.Set(i, j, overlap)
				}
			}
			progress <- end - start
		}(start, end)
	}
	go func() {
		wg.Wait()
		close(progress)
	}()
	done := 0
	for rows := range progress {
		done += rows
		log.Printf("topological overlap: %d of %d rows done\n", done, n)
	}

	genes := make([]string, n)
	copy(genes, adj.Genes)
	return &datatypes.GeneMatrix{Genes: genes, Data: tom}, nil
}
