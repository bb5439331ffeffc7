package reporter

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/coexnet/coexnet/lib/graph"
	"github.com/coexnet/coexnet/lib/settings"
)

// CsvReporter writes one vertex table and one edge table per network.
type CsvReporter struct {
	directory string
}

func NewCsvReporter() *CsvReporter {
	return &CsvReporter{}
}

func (c *CsvReporter) Initialize(config settings.CoexnetSettings, directory string) {
	c.directory = directory
}

func (c *CsvReporter) WriteNetwork(artifact *graph.Artifact) error {
	if err := c.writeVertices(artifact); err != nil {
		return err
	}
	return c.writeEdges(artifact)
}

func (c *CsvReporter) writeVertices(artifact *graph.Artifact) error {
	filename := filepath.Join(c.directory, fmt.Sprintf("%s_vertices.csv", artifact.Name))
	file, err := os.OpenFile(filename, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		log.Printf("failed to open vertex csv file: %v\n", err)
		return err
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	header := append([]string{"gene", "module", "color"}, artifact.AnnotationColumns...)
	if err := writer.Write(header); err != nil {
		return err
	}
	ctr := 0
	for _, v := range artifact.Vertices() {
		record := append([]string{v.Gene, strconv.Itoa(v.Module), v.Color}, v.Annotations...)
		if err := writer.Write(record); err != nil {
			return err
		}
		if ctr >= 1000 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
			ctr = 0
		}
		ctr++
	}
	writer.Flush()
	return writer.Error()
}

func (c *CsvReporter) writeEdges(artifact *graph.Artifact) error {
	filename := filepath.Join(c.directory, fmt.Sprintf("%s_edges.csv", artifact.Name))
	file, err := os.OpenFile(filename, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		log.Printf("failed to open edge csv file: %v\n", err)
		return err
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"source", "target", "weight", "positive"}); err != nil {
		return err
	}
	ctr := 0
	for _, l := range artifact.Links() {
		record := []string{
			l.From().(*graph.Vertex).Gene,
			l.To().(*graph.Vertex).Gene,
			strconv.FormatFloat(l.W, 'g', -1, 64),
			strconv.FormatBool(l.Positive),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
		if ctr >= 1000 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
			ctr = 0
		}
		ctr++
	}
	writer.Flush()
	return writer.Error()
}

func (c *CsvReporter) Flush() error {
	// This reporter does no internal buffering, so Flush is a noop.
	return nil
}
