package reporter

import (
	"log"

	"github.com/coexnet/coexnet/lib/graph"
	"github.com/coexnet/coexnet/lib/settings"
)

// LogReporter prints a connectivity summary of each network to the
// process log, for eyeballing a run without opening the exported
// files.
type LogReporter struct {
	networks int
}

func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

func (r *LogReporter) Initialize(config settings.CoexnetSettings, directory string) {}

func (r *LogReporter) WriteNetwork(artifact *graph.Artifact) error {
	components := artifact.Components()
	log.Printf("network %s: %d vertices, %d edges, %d connected components\n",
		artifact.Name, artifact.VertexCount(), artifact.EdgeCount(), len(components))
	for _, component := range components {
		log.Printf("component with %d members\n", len(component))
		if len(component) < 100 {
			for i, v := range component {
				log.Printf("%d: %s (module %d, %s)\n", i, v.Gene, v.Module, v.Color)
			}
		}
	}
	r.networks++
	return nil
}

func (r *LogReporter) Flush() error {
	log.Printf("connectivity report complete after %d networks\n", r.networks)
	r.networks = 0
	return nil
}
