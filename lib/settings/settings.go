// Package settings contains all the parameters for the coexnet pipeline.
package settings

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/coexnet/coexnet/lib/datatypes"
)

const (
	DefaultAlpha         = 0.5
	DefaultBeta          = 0.5
	DefaultPower         = 12.0
	DefaultMinModuleSize = 15
	DefaultThreshold     = 0.5
	DefaultMaxEdgeRatio  = 3.0
)

type CoexnetSettings struct {
	// Weight of the correlation term in the hybrid similarity.
	Alpha float64 `toml:"alpha"`
	// Weight of the distance term. Alpha and Beta must sum to 1.
	Beta float64 `toml:"beta"`

	// Exponent of the soft threshold applied to shifted similarity.
	// Higher values suppress weak correlations more aggressively.
	Power float64 `toml:"power"`
	// Signed keeps negative correlations down-weighted instead of
	// folding them into their absolute value.
	Signed bool `toml:"signed"`

	// UseTOM clusters on topological overlap instead of raw adjacency.
	UseTOM bool `toml:"useTOM"`

	// Smallest branch that can become a module.
	MinModuleSize int `toml:"minModuleSize"`
	// DeepSplit splits nested sub-clusters off at smaller height
	// differences, giving more and smaller modules.
	DeepSplit bool `toml:"deepSplit"`

	// Requested edge weight cutoff for the export step. The effective
	// cutoff also honors the edge budget and the survival floor.
	Threshold float64 `toml:"threshold"`
	// Edge budget: at most MaxEdgeRatio * vertex count edges.
	MaxEdgeRatio float64 `toml:"maxEdgeRatio"`
	// Weighted false collapses surviving edges to uniform weight 1.
	Weighted bool `toml:"weighted"`

	// AllowUnclustered exports the graph without module labels when
	// there are too few genes to cluster.
	AllowUnclustered bool `toml:"allowUnclustered"`

	// Workers for the row-block parallel stages. 0 picks the CPU count.
	Workers int `toml:"workers"`

	// Input files. The annotation file is optional.
	ExpressionFile string `toml:"expressionFile"`
	AnnotationFile string `toml:"annotationFile"`

	// Where the graph artifacts go.
	ResultsDirectory string `toml:"resultsDirectory"`
	// NetworkName prefixes the artifact filenames.
	NetworkName string `toml:"networkName"`

	// Secondary sinks next to the graphml artifact.
	WriteDot     bool `toml:"writeDot"`
	WriteCsv     bool `toml:"writeCsv"`
	WriteParquet bool `toml:"writeParquet"`

	// Number of rows per row group in Parquet.
	// Bigger numbers mean more memory usage but better compression.
	MaxRowsPerRowGroup int64 `toml:"maxRowsPerRowGroup"`
}

// DefaultSettings returns the full default configuration. The boolean
// options default to true, so zero-value structs are not a usable
// starting point; build on top of this instead.
func DefaultSettings() CoexnetSettings {
	return CoexnetSettings{
		Alpha:            DefaultAlpha,
		Beta:             DefaultBeta,
		Power:            DefaultPower,
		Signed:           true,
		MinModuleSize:    DefaultMinModuleSize,
		DeepSplit:        true,
		Threshold:        DefaultThreshold,
		MaxEdgeRatio:     DefaultMaxEdgeRatio,
		Weighted:         true,
		NetworkName:      "coexnet",
		ResultsDirectory: "/tmp/coexnetResults",
	}
}

// ComputeSettingsFields fills in unset numeric fields. Boolean options
// keep whatever the caller set; DefaultSettings is the place where they
// start out true.
func (s CoexnetSettings) ComputeSettingsFields() CoexnetSettings {
	if s.Alpha == 0 && s.Beta == 0 {
		s.Alpha = DefaultAlpha
		s.Beta = DefaultBeta
	}
	if s.Power == 0 {
		s.Power = DefaultPower
	}
	if s.MinModuleSize == 0 {
		s.MinModuleSize = DefaultMinModuleSize
	}
	if s.Threshold == 0 {
		s.Threshold = DefaultThreshold
	}
	if s.MaxEdgeRatio == 0 {
		s.MaxEdgeRatio = DefaultMaxEdgeRatio
	}
	if s.NetworkName == "" {
		s.NetworkName = "coexnet"
	}
	if s.ResultsDirectory == "" {
		s.ResultsDirectory = "/tmp/coexnetResults"
	}
	if s.MaxRowsPerRowGroup == 0 {
		s.MaxRowsPerRowGroup = 100000
	}
	return s
}

// Validate rejects out-of-range parameters before any quadratic work.
func (s CoexnetSettings) Validate() error {
	if s.Alpha < 0 || s.Alpha > 1 || s.Beta < 0 || s.Beta > 1 {
		return fmt.Errorf("%w: alpha and beta must lie in [0,1] but got %f and %f",
			datatypes.ErrInvalidParameter, s.Alpha, s.Beta)
	}
	if math.Abs(s.Alpha+s.Beta-1.0) > 1e-9 {
		return fmt.Errorf("%w: alpha and beta must sum to 1 but got %f and %f",
			datatypes.ErrInvalidParameter, s.Alpha, s.Beta)
	}
	if s.Power <= 0 {
		return fmt.Errorf("%w: power must be positive but got %f",
			datatypes.ErrInvalidParameter, s.Power)
	}
	if s.MinModuleSize < 1 {
		return fmt.Errorf("%w: minModuleSize must be at least 1 but got %d",
			datatypes.ErrInvalidParameter, s.MinModuleSize)
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("%w: threshold must lie in [0,1] but got %f",
			datatypes.ErrInvalidParameter, s.Threshold)
	}
	if s.MaxEdgeRatio <= 0 {
		return fmt.Errorf("%w: maxEdgeRatio must be positive but got %f",
			datatypes.ErrInvalidParameter, s.MaxEdgeRatio)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative but got %d",
			datatypes.ErrInvalidParameter, s.Workers)
	}
	return nil
}

// FromFile reads settings from a toml file on top of the defaults.
// Fields absent from the file keep their default values.
func FromFile(path string) (CoexnetSettings, error) {
	s := DefaultSettings()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return s, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	return s, nil
}
