package datatypes

import (
	"errors"
)

// Shared error values for the pipeline stages. Stages wrap these with
// fmt.Errorf and %w so callers can match them with errors.Is.
var (
	// ErrDegenerateInput means every gene row is identical, so the
	// distance normalization has nothing to divide by.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidParameter covers out-of-range configuration values.
	// Raised before any quadratic work starts.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData means there are too few genes for the
	// requested operation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrZeroEdges means pruning removed every edge. Callers can lower
	// the threshold or raise the edge ratio and export again without
	// recomputing similarity or adjacency.
	ErrZeroEdges = errors.New("no edges survived pruning")

	// ErrSchemaMismatch means an attribute table does not line up with
	// the vertex set. This is a caller bug, not a data condition.
	ErrSchemaMismatch = errors.New("attribute table does not match vertex set")
)
