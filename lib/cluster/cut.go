package cluster

import "sort"

// Unassigned is the module label for genes that did not join any
// module of the minimum size.
const Unassigned = -1

const (
	// cutHeightFraction places the static cut just under the top of
	// the dendrogram. Branches merging above it are always separated
	// before the gap heuristic runs.
	cutHeightFraction = 0.99
	// A merge must rise above both children by more than the gap
	// before the branch counts as a real split. The fractions scale
	// with the dendrogram height.
	fineGapFraction   = 0.02
	coarseGapFraction = 0.10
)

type node struct {
	left   *node
	right  *node
	height float64
	size   int
	leaf   int // leaf index, -1 on internal nodes
}

type cutter struct {
	minSize int
	gap     float64
	modules [][]int
}

// Cut flattens a dendrogram into per-leaf module labels. Branches are
// split recursively wherever the merge height drops sharply on both
// sides; deepSplit narrows the required drop so nested sub-clusters
// separate at the cost of more, smaller modules. Leaves outside every
// qualifying branch get the Unassigned label. Labels, assigned by
// decreasing module size, carry group identity only.
func Cut(d *Dendrogram, minModuleSize int, deepSplit bool) []int {
	nodes := buildTree(d)
	root := nodes[len(nodes)-1]
	gapFraction := coarseGapFraction
	if deepSplit {
		gapFraction = fineGapFraction
	}
	top := d.MaxHeight()
	c := &cutter{minSize: minModuleSize, gap: gapFraction * top}
	for _, branch := range forestBelow(root, cutHeightFraction*top) {
		c.split(branch)
	}
	labels := make([]int, d.LeafCount)
	for i := range labels {
		labels[i] = Unassigned
	}
	sort.SliceStable(c.modules, func(i, j int) bool {
		return len(c.modules[i]) > len(c.modules[j])
	})
	for id, leaves := range c.modules {
		for _, leaf := range leaves {
			labels[leaf] = id
		}
	}
	return labels
}

func buildTree(d *Dendrogram) []*node {
	n := d.LeafCount
	nodes := make([]*node, 2*n-1)
	for i := 0; i < n; i++ {
		nodes[i] = &node{leaf: i, size: 1}
	}
	for k, m := range d.Merges {
		nodes[n+k] = &node{
			left:   nodes[m.Left],
			right:  nodes[m.Right],
			height: m.Height,
			size:   m.Size,
			leaf:   -1,
		}
	}
	return nodes
}

// forestBelow collects the maximal subtrees merging at or under the
// static cut height.
func forestBelow(nd *node, cutHeight float64) []*node {
	if nd.leaf >= 0 || nd.height <= cutHeight {
		return []*node{nd}
	}
	out := forestBelow(nd.left, cutHeight)
	return append(out, forestBelow(nd.right, cutHeight)...)
}

func (c *cutter) split(nd *node) {
	if nd.leaf >= 0 {
		c.emit(nd)
		return
	}
	leftDrop := nd.height - nd.left.height
	rightDrop := nd.height - nd.right.height
	if leftDrop > c.gap && rightDrop > c.gap {
		switch {
		case nd.left.size >= c.minSize && nd.right.size >= c.minSize:
			c.split(nd.left)
			c.split(nd.right)
			return
		case nd.left.size >= c.minSize:
			// The small side is an outlier branch hanging off a real
			// cluster. Its leaves stay unassigned.
			c.split(nd.left)
			return
		case nd.right.size >= c.minSize:
			c.split(nd.right)
			return
		}
	}
	c.emit(nd)
}

func (c *cutter) emit(nd *node) {
	if nd.size < c.minSize {
		return
	}
	c.modules = append(c.modules, collectLeaves(nd, nil))
}

func collectLeaves(nd *node, out []int) []int {
	if nd.leaf >= 0 {
		return append(out, nd.leaf)
	}
	out = collectLeaves(nd.left, out)
	return collectLeaves(nd.right, out)
}
