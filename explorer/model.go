package explorer

import (
	"github.com/coexnet/coexnet/lib/graph"
)

// NetworkEntry collects metadata about one exported network artifact.
type NetworkEntry struct {
	Name            string `json:"name"`
	Timestamp       int64  `json:"timestamp"`
	TimestampString string `json:"timestampString"`
	Filename        string `json:"filename"`
	Status          string `json:"status"`
	Vertices        int    `json:"vertices"`
	Edges           int    `json:"edges"`
	Modules         int    `json:"modules"`

	artifact *graph.Artifact
}

// Network status values as they appear in the networks listing.
const (
	NetworkExists  = "exists"
	NetworkLoaded  = "loaded"
	NetworkError   = "error"
	NetworkDeleted = "deleted"
)
