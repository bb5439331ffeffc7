package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/coexnet/coexnet/lib/datatypes"
	"github.com/coexnet/coexnet/lib/expression"
)

func testMatrix(t *testing.T, genes []string, samples int, values []float64) *expression.Matrix {
	t.Helper()
	sampleIds := make([]string, samples)
	for i := range sampleIds {
		sampleIds[i] = "s" + string(rune('a'+i))
	}
	m, err := expression.NewMatrix(genes, sampleIds, values)
	if err != nil {
		t.Fatalf("failed to build test matrix: %v", err)
	}
	return m
}

// Two perfectly correlated pairs where the second pair mirrors the
// first, so every cross pair is perfectly anti-correlated.
func mirroredPairs(t *testing.T) *expression.Matrix {
	return testMatrix(t, []string{"g1", "g2", "g3", "g4"}, 4, []float64{
		1, 2, 3, 4,
		1, 2, 3, 4,
		-1, -2, -3, -4,
		-1, -2, -3, -4,
	})
}

func TestComputeCorrelationOnly(t *testing.T) {
	sim, err := Compute(mirroredPairs(t), Options{Alpha: 1, Beta: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim.At(0, 1)-1.0) > 1e-9 || math.Abs(sim.At(2, 3)-1.0) > 1e-9 {
		t.Errorf("expected +1 for perfectly correlated pairs but got %f and %f",
			sim.At(0, 1), sim.At(2, 3))
	}
	if math.Abs(sim.At(0, 2)+1.0) > 1e-9 || math.Abs(sim.At(1, 3)+1.0) > 1e-9 {
		t.Errorf("expected -1 for anti-correlated pairs but got %f and %f",
			sim.At(0, 2), sim.At(1, 3))
	}
}

func TestComputeHybridDefaults(t *testing.T) {
	sim, err := Compute(mirroredPairs(t), Options{Alpha: 0.5, Beta: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Identical rows score a full +1 from both terms.
	if math.Abs(sim.At(0, 1)-1.0) > 1e-9 {
		t.Errorf("expected +1 for identical rows but got %f", sim.At(0, 1))
	}
	// The mirrored pairs sit at the maximum distance, so only the
	// correlation term contributes.
	if math.Abs(sim.At(0, 2)+0.5) > 1e-9 {
		t.Errorf("expected -0.5 for mirrored rows but got %f", sim.At(0, 2))
	}
}

func TestComputeSymmetryAndRange(t *testing.T) {
	expr := testMatrix(t, []string{"g1", "g2", "g3", "g4", "g5"}, 6, []float64{
		0.5, 1.1, 0.2, 3.0, 2.2, 0.9,
		1.5, 0.1, 2.2, 0.4, 1.2, 1.9,
		0.3, 0.3, 0.5, 0.8, 1.3, 2.1,
		2.5, 2.1, 1.2, 1.0, 0.2, 0.1,
		1.0, 2.0, 3.0, 4.0, 5.0, 6.0,
	})
	sim, err := Compute(expr, Options{Alpha: 0.5, Beta: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := sim.Size()
	for i := 0; i < n; i++ {
		if sim.At(i, i) != 0 {
			t.Errorf("expected zero diagonal but got %f at %d", sim.At(i, i), i)
		}
		for j := 0; j < n; j++ {
			if sim.At(i, j) != sim.At(j, i) {
				t.Errorf("asymmetry at %d,%d: %f vs. %f", i, j, sim.At(i, j), sim.At(j, i))
			}
			if sim.At(i, j) < -1 || sim.At(i, j) > 1 {
				t.Errorf("entry %d,%d out of range: %f", i, j, sim.At(i, j))
			}
		}
	}
}

func TestComputeMatchesPearsonKernel(t *testing.T) {
	expr := testMatrix(t, []string{"g1", "g2", "g3"}, 5, []float64{
		0.5, 1.1, 0.2, 3.0, 2.2,
		1.5, 0.1, 2.2, 0.4, 1.2,
		0.3, 0.3, 0.5, 0.8, 1.3,
	})
	sim, err := Compute(expr, Options{Alpha: 1, Beta: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			want, err := PearsonCorrelation(expr.Row(i), expr.Row(j))
			if err != nil {
				t.Fatalf("unexpected kernel error: %v", err)
			}
			if math.Abs(sim.At(i, j)-want) > 1e-9 {
				t.Errorf("matrix and kernel disagree at %d,%d: %f vs. %f", i, j, sim.At(i, j), want)
			}
		}
	}
}

func TestComputeDeterministicAcrossWorkers(t *testing.T) {
	expr := testMatrix(t, []string{"g1", "g2", "g3", "g4", "g5"}, 6, []float64{
		0.5, 1.1, 0.2, 3.0, 2.2, 0.9,
		1.5, 0.1, 2.2, 0.4, 1.2, 1.9,
		0.3, 0.3, 0.5, 0.8, 1.3, 2.1,
		2.5, 2.1, 1.2, 1.0, 0.2, 0.1,
		1.0, 2.0, 3.0, 4.0, 5.0, 6.0,
	})
	one, err := Compute(expr, Options{Alpha: 0.5, Beta: 0.5, Workers: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	many, err := Compute(expr, Options{Alpha: 0.5, Beta: 0.5, Workers: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < one.Size(); i++ {
		for j := 0; j < one.Size(); j++ {
			if one.At(i, j) != many.At(i, j) {
				t.Errorf("worker count changed the result at %d,%d: %v vs. %v",
					i, j, one.At(i, j), many.At(i, j))
			}
		}
	}
}

func TestComputeDegenerateInput(t *testing.T) {
	expr := testMatrix(t, []string{"g1", "g2", "g3"}, 4, []float64{
		1, 2, 3, 4,
		1, 2, 3, 4,
		1, 2, 3, 4,
	})
	_, err := Compute(expr, Options{Alpha: 0.5, Beta: 0.5})
	if err == nil {
		t.Fatalf("expected an error for identical rows")
	}
	if !errors.Is(err, datatypes.ErrDegenerateInput) {
		t.Errorf("expected a degenerate input error but got %v", err)
	}
}

func TestComputeRejectsBadWeights(t *testing.T) {
	expr := mirroredPairs(t)
	_, err := Compute(expr, Options{Alpha: 0.8, Beta: 0.1})
	if err == nil {
		t.Fatalf("expected an error for weights that do not sum to 1")
	}
	if !errors.Is(err, datatypes.ErrInvalidParameter) {
		t.Errorf("expected an invalid parameter error but got %v", err)
	}
}

func TestComputeRejectsTinyInputs(t *testing.T) {
	expr := testMatrix(t, []string{"g1"}, 4, []float64{1, 2, 3, 4})
	_, err := Compute(expr, Options{Alpha: 0.5, Beta: 0.5})
	if err == nil {
		t.Fatalf("expected an error for a single gene")
	}
	if !errors.Is(err, datatypes.ErrInsufficientData) {
		t.Errorf("expected an insufficient data error but got %v", err)
	}
}

func TestEuclideanDistanceKernel(t *testing.T) {
	d, err := EuclideanDistance([]float64{0, 0, 0}, []float64{3, 4, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-5.0) > 1e-12 {
		t.Errorf("expected distance 5 but got %f", d)
	}
	if _, err := EuclideanDistance([]float64{1}, []float64{1, 2}); err == nil {
		t.Errorf("expected an error for mismatched lengths")
	}
}
