package reporter

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/coexnet/coexnet/lib/graph"
	"github.com/coexnet/coexnet/lib/settings"
	"github.com/parquet-go/parquet-go"
)

// NetworkRow is one row of the parquet network dump. Vertex rows and
// edge rows share the schema: a vertex row carries its gene in both
// source and target and fills the module columns, an edge row has
// distinct endpoints and fills the weight columns.
type NetworkRow struct {
	Source string `parquet:"source,zstd"`
	Target string `parquet:"target,zstd"`

	// Cannot make this optional, as then '0' will be written as null
	// and 0 is the label of the largest module. Edge rows set this
	// to -1.
	Module     int32  `parquet:"module"`
	Color      string `parquet:"color,optional,zstd"`
	Annotation string `parquet:"annotation,optional,zstd"`

	Weight   float64 `parquet:"weight,optional"`
	Positive bool    `parquet:"positive,optional"`
}

type ParquetReporter struct {
	directory string
	// One writer per network name. A SortingWriter would give nicer
	// files but uses too much memory on large networks.
	writers            map[string]*parquet.GenericWriter[NetworkRow]
	files              map[string]*os.File
	maxRowsPerRowGroup int64
}

func NewParquetReporter() *ParquetReporter {
	return &ParquetReporter{
		writers: make(map[string]*parquet.GenericWriter[NetworkRow]),
		files:   make(map[string]*os.File),
	}
}

func (r *ParquetReporter) Initialize(config settings.CoexnetSettings, directory string) {
	r.directory = directory
	r.maxRowsPerRowGroup = config.MaxRowsPerRowGroup
}

func (r *ParquetReporter) writerFor(name string) (*parquet.GenericWriter[NetworkRow], error) {
	writer, exists := r.writers[name]
	if exists && writer != nil {
		return writer, nil
	}
	path := filepath.Join(r.directory, fmt.Sprintf("%s_network.pq", name))
	file, err := os.OpenFile(path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		log.Printf("failed to open network parquet file: %v\n", err)
		return nil, err
	}
	writer = parquet.NewGenericWriter[NetworkRow](file, parquet.MaxRowsPerRowGroup(r.maxRowsPerRowGroup))
	r.writers[name] = writer
	r.files[name] = file
	return writer, nil
}

func extractRowsFromArtifact(artifact *graph.Artifact) []NetworkRow {
	links := artifact.Links()
	rows := make([]NetworkRow, 0, artifact.VertexCount()+len(links))
	for _, v := range artifact.Vertices() {
		rows = append(rows, NetworkRow{
			Source:     v.Gene,
			Target:     v.Gene,
			Module:     int32(v.Module),
			Color:      v.Color,
			Annotation: strings.Join(v.Annotations, "|"),
		})
	}
	for _, l := range links {
		rows = append(rows, NetworkRow{
			Source:   l.From().(*graph.Vertex).Gene,
			Target:   l.To().(*graph.Vertex).Gene,
			Module:   -1,
			Weight:   l.W,
			Positive: l.Positive,
		})
	}
	return rows
}

func (r *ParquetReporter) WriteNetwork(artifact *graph.Artifact) error {
	writer, err := r.writerFor(artifact.Name)
	if err != nil {
		return err
	}
	rows := extractRowsFromArtifact(artifact)
	n, err := writer.Write(rows)
	if err != nil {
		return fmt.Errorf("failed to write network rows for %s: %v", artifact.Name, err)
	}
	log.Printf("wrote %d network rows for %s\n", n, artifact.Name)
	return nil
}

func (r *ParquetReporter) Flush() error {
	for name, writer := range r.writers {
		if writer == nil {
			continue
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush parquet writer for %s: %v", name, err)
		}
		if err := writer.Close(); err != nil {
			return err
		}
		if file, ok := r.files[name]; ok {
			file.Close()
		}
	}
	r.writers = make(map[string]*parquet.GenericWriter[NetworkRow])
	r.files = make(map[string]*os.File)
	return nil
}
