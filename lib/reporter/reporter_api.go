// Package reporter persists exported networks as flat vertex and edge
// tables for analysis outside the graph tooling.
package reporter

import (
	"github.com/coexnet/coexnet/lib/graph"
	"github.com/coexnet/coexnet/lib/settings"
)

type Reporter interface {
	Initialize(config settings.CoexnetSettings, directory string)

	// WriteNetwork records the vertices and edges of one exported
	// network. It may be called once per network name.
	WriteNetwork(artifact *graph.Artifact) error

	// Flush persists buffered rows and releases file handles. No
	// writes may follow a Flush.
	Flush() error
}
