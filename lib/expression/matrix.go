// Package expression holds the filtered, log-scaled gene expression
// matrix the pipeline starts from, and its csv file form.
package expression

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Matrix is an expression matrix with one row per gene and one column
// per sample. It is never mutated after construction.
type Matrix struct {
	Genes   []string
	Samples []string
	Data    *mat.Dense
}

// NewMatrix builds an expression matrix from row-major values.
// Gene ids must be unique and every value must be finite.
func NewMatrix(genes []string, samples []string, values []float64) (*Matrix, error) {
	if len(genes) == 0 || len(samples) == 0 {
		return nil, fmt.Errorf("expression matrix needs at least one gene and one sample")
	}
	if len(values) != len(genes)*len(samples) {
		return nil, fmt.Errorf("expected %d values for %d genes and %d samples but got %d",
			len(genes)*len(samples), len(genes), len(samples), len(values))
	}
	seen := make(map[string]bool, len(genes))
	for _, g := range genes {
		if g == "" {
			return nil, fmt.Errorf("empty gene id")
		}
		if seen[g] {
			return nil, fmt.Errorf("duplicate gene id %s", g)
		}
		seen[g] = true
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("expression values must be finite")
		}
	}
	return &Matrix{
		Genes:   genes,
		Samples: samples,
		Data:    mat.NewDense(len(genes), len(samples), values),
	}, nil
}

func (m *Matrix) GeneCount() int {
	return len(m.Genes)
}

func (m *Matrix) SampleCount() int {
	return len(m.Samples)
}

// Row returns the expression values of one gene without copying.
func (m *Matrix) Row(i int) []float64 {
	return m.Data.RawRowView(i)
}

// ReadCSV loads an expression matrix from a csv file with a
// gene_id header row followed by sample ids, one gene per line.
func ReadCSV(path string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open expression file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression file %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("expression file %s has no data rows", path)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("expression file %s has no sample columns", path)
	}
	samples := make([]string, len(header)-1)
	copy(samples, header[1:])

	genes := make([]string, 0, len(records)-1)
	values := make([]float64, 0, (len(records)-1)*len(samples))
	for lineno, record := range records[1:] {
		genes = append(genes, record[0])
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d of %s: %w", lineno+2, path, err)
			}
			values = append(values, v)
		}
	}
	return NewMatrix(genes, samples, values)
}

// WriteCSV writes the matrix in the same format ReadCSV consumes.
func WriteCSV(path string, m *Matrix) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("failed to open expression output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := append([]string{"gene_id"}, m.Samples...)
	if err := writer.Write(header); err != nil {
		return err
	}
	record := make([]string, len(m.Samples)+1)
	for i, gene := range m.Genes {
		record[0] = gene
		for j := 0; j < len(m.Samples); j++ {
			record[j+1] = strconv.FormatFloat(m.Data.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
