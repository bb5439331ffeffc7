// Package explorer reads networks back out of the files the pipeline
// leaves in the results directory.
package explorer

// VertexInfo is one gene's metadata recovered from a network dump.
type VertexInfo struct {
	Gene   string
	Module int
	Color  string
	// Annotation holds the annotation values joined into one string,
	// the way the parquet reporter flattens them.
	Annotation string
}

// EdgeInfo is one association recovered from a network dump.
type EdgeInfo struct {
	Source   string
	Target   string
	Weight   float64
	Positive bool
}
