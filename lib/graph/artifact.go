// Package graph holds the exported co-expression network and its
// serialized forms. The artifact wraps a gonum weighted undirected
// graph so graph algorithms and encoders work on it directly.
package graph

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Vertex is one surviving gene. Annotations line up with the
// artifact's annotation columns.
type Vertex struct {
	id          int64
	Gene        string
	Module      int
	Color       string
	Annotations []string
}

func (v *Vertex) ID() int64 {
	return v.id
}

func (v *Vertex) DOTID() string {
	return v.Gene
}

func (v *Vertex) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "module", Value: strconv.Itoa(v.Module)},
		{Key: "color", Value: v.Color},
	}
}

// Link is an undirected edge carrying the rescaled weight. The sign
// of the original association rides along as metadata instead of
// being folded into the weight.
type Link struct {
	simple.WeightedEdge
	Positive bool
}

// ReversedEdge keeps the sign flag when the graph hands the edge back
// in the opposite orientation.
func (l *Link) ReversedEdge() graph.Edge {
	return &Link{
		WeightedEdge: l.WeightedEdge.ReversedEdge().(simple.WeightedEdge),
		Positive:     l.Positive,
	}
}

func (l *Link) Attributes() []encoding.Attribute {
	sign := "+"
	if !l.Positive {
		sign = "-"
	}
	return []encoding.Attribute{
		{Key: "weight", Value: strconv.FormatFloat(l.W, 'g', -1, 64)},
		{Key: "sign", Value: sign},
	}
}

var (
	_ graph.Node         = (*Vertex)(nil)
	_ graph.WeightedEdge = (*Link)(nil)
)

// Artifact is the pruned, rescaled network produced by the exporter.
// It is built once and read-only afterwards.
type Artifact struct {
	*simple.WeightedUndirectedGraph
	Name              string
	AnnotationColumns []string

	vertices []*Vertex
	byGene   map[string]*Vertex
}

func NewArtifact(name string, annotationColumns []string) *Artifact {
	return &Artifact{
		WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, 0),
		Name:                    name,
		AnnotationColumns:       annotationColumns,
		byGene:                  make(map[string]*Vertex),
	}
}

// AddVertex appends a gene vertex. Vertex ids follow insertion order.
func (a *Artifact) AddVertex(gene string, module int, color string, annotations []string) *Vertex {
	v := &Vertex{
		id:          int64(len(a.vertices)),
		Gene:        gene,
		Module:      module,
		Color:       color,
		Annotations: annotations,
	}
	a.vertices = append(a.vertices, v)
	a.byGene[gene] = v
	a.AddNode(v)
	return v
}

// AddLink connects two vertices by id.
func (a *Artifact) AddLink(from int64, to int64, weight float64, positive bool) {
	a.SetWeightedEdge(&Link{
		WeightedEdge: simple.WeightedEdge{F: a.vertices[from], T: a.vertices[to], W: weight},
		Positive:     positive,
	})
}

// Vertices returns the vertices in insertion order.
func (a *Artifact) Vertices() []*Vertex {
	return a.vertices
}

func (a *Artifact) VertexByGene(gene string) *Vertex {
	return a.byGene[gene]
}

func (a *Artifact) VertexCount() int {
	return len(a.vertices)
}

func (a *Artifact) EdgeCount() int {
	return a.WeightedUndirectedGraph.Edges().Len()
}

// Links returns the edges ordered by their vertex id pairs, so
// serialization is stable across runs.
func (a *Artifact) Links() []*Link {
	var out []*Link
	for i := 0; i < len(a.vertices); i++ {
		for j := i + 1; j < len(a.vertices); j++ {
			e := a.WeightedEdgeBetween(int64(i), int64(j))
			if e == nil {
				continue
			}
			out = append(out, e.(*Link))
		}
	}
	return out
}

// Components returns the connected components as vertex groups,
// largest first.
func (a *Artifact) Components() [][]*Vertex {
	comps := topo.ConnectedComponents(a)
	out := make([][]*Vertex, len(comps))
	for i, comp := range comps {
		group := make([]*Vertex, len(comp))
		for k, nd := range comp {
			group[k] = nd.(*Vertex)
		}
		sort.Slice(group, func(x, y int) bool { return group[x].id < group[y].id })
		out[i] = group
	}
	sort.SliceStable(out, func(x, y int) bool {
		if len(out[x]) != len(out[y]) {
			return len(out[x]) > len(out[y])
		}
		return out[x][0].id < out[y][0].id
	})
	return out
}
