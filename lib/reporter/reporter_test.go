package reporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coexnet/coexnet/lib/graph"
	"github.com/coexnet/coexnet/lib/settings"
	"github.com/parquet-go/parquet-go"
)

func reporterArtifact() *graph.Artifact {
	a := graph.NewArtifact("yeast", []string{"function"})
	a.AddVertex("g1", 0, "turquoise", []string{"kinase"})
	a.AddVertex("g2", 0, "turquoise", []string{"ligase"})
	a.AddVertex("g3", 1, "blue", []string{""})
	a.AddLink(0, 1, 0.75, true)
	a.AddLink(1, 2, 0.25, false)
	return a
}

func TestCsvReporterWritesTables(t *testing.T) {
	dir, err := os.MkdirTemp("", "coexnetTest")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	rep := NewCsvReporter()
	rep.Initialize(settings.DefaultSettings().ComputeSettingsFields(), dir)
	if err := rep.WriteNetwork(reporterArtifact()); err != nil {
		t.Fatalf("failed to write network: %v", err)
	}
	if err := rep.Flush(); err != nil {
		t.Errorf("failed to flush: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "yeast_vertices.csv"))
	if err != nil {
		t.Fatalf("failed to read vertex table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 vertex lines but got %d", len(lines))
	}
	if lines[0] != "gene,module,color,function" {
		t.Errorf("unexpected vertex header %q", lines[0])
	}
	if lines[1] != "g1,0,turquoise,kinase" {
		t.Errorf("unexpected vertex record %q", lines[1])
	}
	if lines[3] != "g3,1,blue," {
		t.Errorf("unexpected vertex record %q", lines[3])
	}

	raw, err = os.ReadFile(filepath.Join(dir, "yeast_edges.csv"))
	if err != nil {
		t.Fatalf("failed to read edge table: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 edge lines but got %d", len(lines))
	}
	if lines[0] != "source,target,weight,positive" {
		t.Errorf("unexpected edge header %q", lines[0])
	}
	if lines[1] != "g1,g2,0.75,true" {
		t.Errorf("unexpected edge record %q", lines[1])
	}
	if lines[2] != "g2,g3,0.25,false" {
		t.Errorf("unexpected edge record %q", lines[2])
	}
}

func TestParquetReporterRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "coexnetTest")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	rep := NewParquetReporter()
	rep.Initialize(settings.DefaultSettings().ComputeSettingsFields(), dir)
	if err := rep.WriteNetwork(reporterArtifact()); err != nil {
		t.Fatalf("failed to write network: %v", err)
	}
	if err := rep.Flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}

	rows, err := parquet.ReadFile[NetworkRow](filepath.Join(dir, "yeast_network.pq"))
	if err != nil {
		t.Fatalf("failed to read network file: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows but got %d", len(rows))
	}

	vertexRows := 0
	edgeRows := 0
	for _, row := range rows {
		if row.Source == row.Target {
			vertexRows++
			if row.Module < 0 {
				t.Errorf("vertex row %s has no module label", row.Source)
			}
		} else {
			edgeRows++
			if row.Module != -1 {
				t.Errorf("edge row %s-%s carries module %d", row.Source, row.Target, row.Module)
			}
		}
	}
	if vertexRows != 3 {
		t.Errorf("expected 3 vertex rows but got %d", vertexRows)
	}
	if edgeRows != 2 {
		t.Errorf("expected 2 edge rows but got %d", edgeRows)
	}

	first := rows[0]
	if first.Source != "g1" || first.Module != 0 || first.Color != "turquoise" || first.Annotation != "kinase" {
		t.Errorf("unexpected first vertex row %+v", first)
	}
	last := rows[4]
	if last.Source != "g2" || last.Target != "g3" {
		t.Errorf("unexpected last edge row %+v", last)
	}
	if last.Weight != 0.25 {
		t.Errorf("expected edge weight 0.25 but got %f", last.Weight)
	}
	if last.Positive {
		t.Errorf("expected a negative association edge")
	}
}

func TestLogReporterCountsNetworks(t *testing.T) {
	rep := NewLogReporter()
	rep.Initialize(settings.DefaultSettings(), "")
	if err := rep.WriteNetwork(reporterArtifact()); err != nil {
		t.Errorf("failed to write network: %v", err)
	}
	if err := rep.WriteNetwork(reporterArtifact()); err != nil {
		t.Errorf("failed to write network: %v", err)
	}
	if rep.networks != 2 {
		t.Errorf("expected 2 networks but got %d", rep.networks)
	}
	if err := rep.Flush(); err != nil {
		t.Errorf("failed to flush: %v", err)
	}
	if rep.networks != 0 {
		t.Errorf("expected flush to reset the network count, got %d", rep.networks)
	}
}
