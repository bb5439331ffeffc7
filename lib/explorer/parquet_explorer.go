package explorer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/coexnet/coexnet/lib/graph"
	"github.com/coexnet/coexnet/lib/reporter"
	"github.com/parquet-go/parquet-go"
)

// ParquetExplorer reads the network dumps the parquet reporter writes
// next to the graphml artifacts.
type ParquetExplorer struct {
	filenameBase string
	file         *parquet.File
	sourceIndex  int
	targetIndex  int
	moduleIndex  int
}

func NewParquetExplorer(filenameBase string) *ParquetExplorer {
	return &ParquetExplorer{
		filenameBase: filenameBase,
		file:         nil,
		sourceIndex:  -1,
		targetIndex:  -1,
		moduleIndex:  -1,
	}
}

func (p *ParquetExplorer) Initialize(filename string) error {
	schema := parquet.SchemaOf(reporter.NetworkRow{})
	for _, path := range schema.Columns() {
		if len(path) != 1 {
			continue
		}
		leaf, _ := schema.Lookup(path...)
		switch path[0] {
		case "source":
			p.sourceIndex = leaf.ColumnIndex
		case "target":
			p.targetIndex = leaf.ColumnIndex
		case "module":
			p.moduleIndex = leaf.ColumnIndex
		}
	}
	if p.sourceIndex < 0 || p.targetIndex < 0 || p.moduleIndex < 0 {
		return fmt.Errorf("bad schema: missing columns for source, target, or module")
	}

	path := filepath.Join(p.filenameBase, filename)
	pqfile, err := os.Open(path)
	if err != nil {
		log.Printf("failed to open network parquet file: %v\n", err)
		return err
	}
	stat, err := pqfile.Stat()
	if err != nil {
		return err
	}
	p.file, err = parquet.OpenFile(pqfile, stat.Size())
	if err != nil {
		log.Printf("failed to parse network parquet file: %v\n", err)
		return err
	}
	return nil
}

// ReadArtifact rebuilds a network artifact from the dump. The parquet
// reporter flattens annotation values into one joined column, so the
// recovered artifact carries a single annotation column.
func (p *ParquetExplorer) ReadArtifact(name string) (*graph.Artifact, error) {
	if p.file == nil {
		return nil, fmt.Errorf("parquet explorer has no parquet file")
	}
	artifact := graph.NewArtifact(name, []string{"annotation"})
	// Edge rows may precede the vertex rows of their endpoints, so
	// they are linked after the full pass.
	var edges []reporter.NetworkRow

	reader := parquet.NewGenericReader[reporter.NetworkRow](p.file)
	defer reader.Close()
	results := make([]reporter.NetworkRow, 64)
	for done := false; !done; {
		numRead, err := reader.Read(results)
		if err != nil {
			if errors.Is(err, io.EOF) {
				done = true
			} else {
				return nil, err
			}
		}
		for i, row := range results {
			if i >= numRead {
				break
			}
			if row.Source == row.Target {
				artifact.AddVertex(row.Source, int(row.Module), row.Color, []string{row.Annotation})
			} else {
				edges = append(edges, row)
			}
		}
	}

	for _, row := range edges {
		from := artifact.VertexByGene(row.Source)
		to := artifact.VertexByGene(row.Target)
		if from == nil || to == nil {
			return nil, fmt.Errorf("edge %s-%s references an unknown vertex", row.Source, row.Target)
		}
		artifact.AddLink(from.ID(), to.ID(), row.Weight, row.Positive)
	}
	return artifact, nil
}

// LookupGene fetches one gene's vertex row, using the column index to
// skip row groups that cannot contain it.
func (p *ParquetExplorer) LookupGene(gene string) (*VertexInfo, error) {
	if p.file == nil {
		return nil, fmt.Errorf("parquet explorer has no parquet file")
	}
	for _, rg := range p.file.RowGroups() {
		chunk := rg.ColumnChunks()[p.sourceIndex]
		idx, err := chunk.ColumnIndex()
		if err != nil {
			return nil, err
		}
		found := parquet.Find(idx, parquet.ValueOf(gene),
			parquet.CompareNullsLast(chunk.Type().Compare))
		if found == idx.NumPages() {
			// Gene is not in this row group.
			continue
		}
		offsets, err := chunk.OffsetIndex()
		if err != nil {
			return nil, err
		}
		reader := parquet.NewGenericReader[reporter.NetworkRow](p.file)
		if err := reader.SeekToRow(offsets.FirstRowIndex(found)); err != nil {
			reader.Close()
			return nil, err
		}
		info, err := scanForGene(reader, gene)
		reader.Close()
		if err != nil {
			return nil, err
		}
		if info != nil {
			return info, nil
		}
	}
	return nil, nil
}

func scanForGene(reader *parquet.GenericReader[reporter.NetworkRow], gene string) (*VertexInfo, error) {
	results := make([]reporter.NetworkRow, 10)
	for done := false; !done; {
		numRead, err := reader.Read(results)
		if err != nil {
			if errors.Is(err, io.EOF) {
				done = true
			} else {
				return nil, err
			}
		}
		for i, row := range results {
			if i >= numRead {
				break
			}
			if row.Source != gene || row.Source != row.Target {
				continue
			}
			return &VertexInfo{
				Gene:       row.Source,
				Module:     int(row.Module),
				Color:      row.Color,
				Annotation: row.Annotation,
			}, nil
		}
	}
	return nil, nil
}

// Neighbors lists the associations touching one gene.
func (p *ParquetExplorer) Neighbors(gene string) ([]EdgeInfo, error) {
	if p.file == nil {
		return nil, fmt.Errorf("parquet explorer has no parquet file")
	}
	ret := make([]EdgeInfo, 0)
	reader := parquet.NewGenericReader[reporter.NetworkRow](p.file)
	defer reader.Close()
	results := make([]reporter.NetworkRow, 64)
	for done := false; !done; {
		numRead, err := reader.Read(results)
		if err != nil {
			if errors.Is(err, io.EOF) {
				done = true
			} else {
				return nil, err
			}
		}
		for i, row := range results {
			if i >= numRead {
				break
			}
			if row.Source == row.Target {
				continue
			}
			if row.Source != gene && row.Target != gene {
				continue
			}
			ret = append(ret, EdgeInfo{
				Source:   row.Source,
				Target:   row.Target,
				Weight:   row.Weight,
				Positive: row.Positive,
			})
		}
	}
	return ret, nil
}
