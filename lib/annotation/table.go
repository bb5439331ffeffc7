// Package annotation loads per-gene annotation tables and aligns them
// with the gene ordering of an expression matrix.
package annotation

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/coexnet/coexnet/lib/datatypes"
)

// Table holds annotation columns keyed by gene id. Row order on disk
// does not need to match the expression matrix.
type Table struct {
	Columns []string
	Rows    map[string][]string
}

// Aligned is an annotation table whose rows follow a fixed gene
// ordering. This is what the exporter consumes.
type Aligned struct {
	Columns []string
	Rows    [][]string
}

// ReadCSV loads an annotation table from a csv file with a gene_id
// header row followed by column names.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotation file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("annotation file %s is empty", path)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("annotation file %s has no annotation columns", path)
	}
	columns := make([]string, len(header)-1)
	copy(columns, header[1:])

	rows := make(map[string][]string, len(records)-1)
	for lineno, record := range records[1:] {
		gene := record[0]
		if _, exists := rows[gene]; exists {
			return nil, fmt.Errorf("line %d of %s: duplicate gene id %s", lineno+2, path, gene)
		}
		values := make([]string, len(columns))
		copy(values, record[1:])
		rows[gene] = values
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// Align produces one annotation row per gene in the given order. Genes
// without an annotation row get empty values; the count of those is
// logged so sparse annotation files are visible.
func (t *Table) Align(genes []string) *Aligned {
	aligned := &Aligned{
		Columns: t.Columns,
		Rows:    make([][]string, len(genes)),
	}
	missing := 0
	for i, gene := range genes {
		values, ok := t.Rows[gene]
		if !ok {
			aligned.Rows[i] = make([]string, len(t.Columns))
			missing++
			continue
		}
		row := make([]string, len(values))
		copy(row, values)
		aligned.Rows[i] = row
	}
	if missing > 0 {
		log.Printf("no annotations for %d of %d genes\n", missing, len(genes))
	}
	return aligned
}

// Validate checks that an aligned table matches a vertex count.
func (a *Aligned) Validate(vertexCount int) error {
	if len(a.Rows) != vertexCount {
		return fmt.Errorf("%w: %d annotation rows for %d vertices",
			datatypes.ErrSchemaMismatch, len(a.Rows), vertexCount)
	}
	for i, row := range a.Rows {
		if len(row) != len(a.Columns) {
			return fmt.Errorf("%w: annotation row %d has %d values for %d columns",
				datatypes.ErrSchemaMismatch, i, len(row), len(a.Columns))
		}
	}
	return nil
}
