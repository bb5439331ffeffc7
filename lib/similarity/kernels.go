package similarity

import (
	"fmt"
	"math"
)

// PearsonCorrelation computes the pearson correlation between two gene
// rows across samples. Rows with zero variance correlate 0 with
// everything.
func PearsonCorrelation(x []float64, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0.0, fmt.Errorf("cannot correlate rows with different lengths %d and %d", len(x), len(y))
	}
	if len(x) == 0 {
		return 0.0, fmt.Errorf("cannot correlate empty rows")
	}
	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}
	cov := sumXY - sumX*sumY/n
	varX := sumXX - sumX*sumX/n
	varY := sumYY - sumY*sumY/n
	if varX <= 0 || varY <= 0 {
		return 0.0, nil
	}
	return cov / math.Sqrt(varX*varY), nil
}

// EuclideanDistance computes the euclidean distance between two gene rows.
func EuclideanDistance(x []float64, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0.0, fmt.Errorf("cannot compute distance of rows with different lengths %d and %d", len(x), len(y))
	}
	return euclideanDistance(x, y), nil
}

func euclideanDistance(x []float64, y []float64) float64 {
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
