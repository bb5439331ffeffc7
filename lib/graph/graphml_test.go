package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestGraphMLRoundTrip(t *testing.T) {
	a := buildTestArtifact()
	var buf bytes.Buffer
	if err := WriteGraphML(a, &buf); err != nil {
		t.Fatalf("failed to write graphml: %v", err)
	}
	back, err := ReadGraphML(&buf)
	if err != nil {
		t.Fatalf("failed to read graphml: %v", err)
	}
	if back.Name != a.Name {
		t.Errorf("expected name %s but got %s", a.Name, back.Name)
	}
	if !reflect.DeepEqual(back.AnnotationColumns, a.AnnotationColumns) {
		t.Errorf("expected columns %v but got %v", a.AnnotationColumns, back.AnnotationColumns)
	}
	if back.VertexCount() != a.VertexCount() {
		t.Fatalf("expected %d vertices but got %d", a.VertexCount(), back.VertexCount())
	}
	for i, v := range a.Vertices() {
		w := back.Vertices()[i]
		if w.Gene != v.Gene || w.Module != v.Module || w.Color != v.Color {
			t.Errorf("vertex %d changed: expected %+v but got %+v", i, v, w)
		}
		if !reflect.DeepEqual(w.Annotations, v.Annotations) {
			t.Errorf("vertex %d annotations changed: expected %v but got %v",
				i, v.Annotations, w.Annotations)
		}
	}
	la, lb := a.Links(), back.Links()
	if len(la) != len(lb) {
		t.Fatalf("expected %d links but got %d", len(la), len(lb))
	}
	for i := range la {
		if la[i].From().(*Vertex).Gene != lb[i].From().(*Vertex).Gene ||
			la[i].To().(*Vertex).Gene != lb[i].To().(*Vertex).Gene {
			t.Errorf("link %d endpoints changed", i)
		}
		if la[i].W != lb[i].W {
			t.Errorf("link %d weight changed: expected %v but got %v", i, la[i].W, lb[i].W)
		}
		if la[i].Positive != lb[i].Positive {
			t.Errorf("link %d sign changed", i)
		}
	}
}

func TestWriteGraphMLFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "coexnetTest")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	a := buildTestArtifact()
	path := filepath.Join(dir, "test.graphml")
	if err := WriteGraphMLFile(a, path); err != nil {
		t.Fatalf("failed to write graphml file: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the final file but found %d entries", len(entries))
	}
	back, err := ReadGraphMLFile(path)
	if err != nil {
		t.Fatalf("failed to read graphml file: %v", err)
	}
	if back.EdgeCount() != a.EdgeCount() {
		t.Errorf("expected %d edges but got %d", a.EdgeCount(), back.EdgeCount())
	}
}

func TestReadGraphMLRejectsUnknownNodes(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="e0" for="edge" attr.name="weight" attr.type="double"></key>
  <graph id="broken" edgedefault="undirected">
    <node id="g1"></node>
    <edge source="g1" target="g2">
      <data key="e0">0.5</data>
    </edge>
  </graph>
</graphml>`
	_, err := ReadGraphML(strings.NewReader(doc))
	if err == nil {
		t.Errorf("expected an error for an edge with an unknown endpoint")
	}
}
