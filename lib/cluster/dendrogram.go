package cluster

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Merge is a single agglomeration step. Left and Right name the two
// merged clusters: ids below the leaf count are leaves, and the
// cluster created by merge k carries id leafCount+k.
type Merge struct {
	Left   int
	Right  int
	Height float64
	Size   int
}

// Dendrogram is the binary merge tree over the gene leaves. Merges are
// ordered by non-decreasing height and the tree is immutable once
// built.
type Dendrogram struct {
	LeafCount int
	Merges    []Merge
}

// MaxHeight returns the height of the final merge.
func (d *Dendrogram) MaxHeight() float64 {
	if len(d.Merges) == 0 {
		return 0
	}
	return d.Merges[len(d.Merges)-1].Height
}

// rawMerge records a merge by the slots of the two clusters involved.
// Slots are leaf indices; cluster ids are assigned only after the
// merges have been sorted by height.
type rawMerge struct {
	a      int
	b      int
	height float64
	size   int
}

// BuildDendrogram runs average-linkage hierarchical clustering over a
// square symmetric distance matrix. The nearest-neighbour chain
// construction reproduces the exact linkage result in O(n^2) time.
func BuildDendrogram(dist *mat.Dense) (*Dendrogram, error) {
	n, c := dist.Dims()
	if n != c {
		return nil, fmt.Errorf("distance matrix must be square but got %d x %d", n, c)
	}
	if n < 2 {
		return nil, fmt.Errorf("need at least two leaves but got %d", n)
	}
	raw := nnChain(dist, n)
	// Average linkage is reducible, so sorting the chain output by
	// height yields a monotone dendrogram. The stable sort keeps child
	// merges ahead of their parents when heights tie.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].height < raw[j].height })
	return &Dendrogram{LeafCount: n, Merges: relabel(raw, n)}, nil
}

func nnChain(d *mat.Dense, n int) []rawMerge {
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(dist[i*n:(i+1)*n], d.RawRowView(i))
	}
	size := make([]int, n)
	active := make([]bool, n)
	for i := 0; i < n; i++ {
		size[i] = 1
		active[i] = true
	}
	merges := make([]rawMerge, 0, n-1)
	chain := make([]int, 0, n)
	for len(merges) < n-1 {
		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if active[i] {
					chain = append(chain, i)
					break
				}
			}
		}
		for {
			a := chain[len(chain)-1]
			// Seed the scan with the chain predecessor so distance
			// ties resolve toward it and the chain terminates.
			b := -1
			best := math.Inf(1)
			if len(chain) > 1 {
				b = chain[len(chain)-2]
				best = dist[a*n+b]
			}
			for k := 0; k < n; k++ {
				if !active[k] || k == a {
					continue
				}
				if dist[a*n+k] < best {
					best = dist[a*n+k]
					b = k
				}
			}
			if len(chain) > 1 && b == chain[len(chain)-2] {
				chain = chain[:len(chain)-2]
				merges = append(merges, rawMerge{a: a, b: b, height: best, size: size[a] + size[b]})
				mergeSlots(dist, size, active, n, a, b)
				break
			}
			chain = append(chain, b)
		}
	}
	return merges
}

// mergeSlots applies the average-linkage Lance-Williams update and
// keeps the combined cluster in the lower slot.
func mergeSlots(dist []float64, size []int, active []bool, n int, a int, b int) {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	total := size[lo] + size[hi]
	for k := 0; k < n; k++ {
		if !active[k] || k == lo || k == hi {
			continue
		}
		nd := (float64(size[lo])*dist[lo*n+k] + float64(size[hi])*dist[hi*n+k]) / float64(total)
		dist[lo*n+k] = nd
		dist[k*n+lo] = nd
	}
	size[lo] = total
	active[hi] = false
}

// relabel converts slot pairs into cluster ids. A union-find over the
// 2n-1 ids tracks which cluster currently contains each leaf.
func relabel(raw []rawMerge, n int) []Merge {
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = -1
	}
	find := func(x int) int {
		root := x
		for parent[root] >= 0 {
			root = parent[root]
		}
		for parent[x] >= 0 {
			next := parent[x]
			parent[x] = root
			x = next
		}
		return root
	}
	merges := make([]Merge, len(raw))
	for k, m := range raw {
		left, right := find(m.a), find(m.b)
		if left > right {
			left, right = right, left
		}
		merges[k] = Merge{Left: left, Right: right, Height: m.height, Size: m.size}
		parent[left] = n + k
		parent[right] = n + k
	}
	return merges
}
