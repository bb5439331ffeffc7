package graph

import (
	"io"

	"gonum.org/v1/gonum/graph/encoding/dot"
)

// WriteDotFile renders the artifact in graphviz dot format for quick
// visual inspection. Vertex and edge attributes ride along, so module
// colors show up directly in the drawing.
func WriteDotFile(a *Artifact, path string) error {
	data, err := dot.Marshal(a, a.Name, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
