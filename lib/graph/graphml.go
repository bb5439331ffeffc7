package graph

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// The artifact serializes as GraphML. The format is self-describing:
// typed key declarations cover the module label, the color, every
// annotation column and the edge weight and sign, and the graph is
// declared undirected.

const graphmlNamespace = "http://graphml.graphdrawing.org/xmlns"

type xmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type xmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type xmlNode struct {
	ID   string    `xml:"id,attr"`
	Data []xmlData `xml:"data"`
}

type xmlEdge struct {
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Data   []xmlData `xml:"data"`
}

type xmlGraph struct {
	ID          string    `xml:"id,attr"`
	EdgeDefault string    `xml:"edgedefault,attr"`
	Nodes       []xmlNode `xml:"node"`
	Edges       []xmlEdge `xml:"edge"`
}

type xmlDocument struct {
	XMLName xml.Name `xml:"graphml"`
	Xmlns   string   `xml:"xmlns,attr"`
	Keys    []xmlKey `xml:"key"`
	Graph   xmlGraph `xml:"graph"`
}

// WriteGraphML serializes the artifact.
func WriteGraphML(a *Artifact, w io.Writer) error {
	keys := []xmlKey{
		{ID: "d0", For: "node", AttrName: "module", AttrType: "int"},
		{ID: "d1", For: "node", AttrName: "color", AttrType: "string"},
	}
	for i, column := range a.AnnotationColumns {
		keys = append(keys, xmlKey{
			ID: fmt.Sprintf("a%d", i), For: "node", AttrName: column, AttrType: "string",
		})
	}
	keys = append(keys,
		xmlKey{ID: "e0", For: "edge", AttrName: "weight", AttrType: "double"},
		xmlKey{ID: "e1", For: "edge", AttrName: "positive", AttrType: "boolean"},
	)

	nodes := make([]xmlNode, 0, a.VertexCount())
	for _, v := range a.Vertices() {
		data := []xmlData{
			{Key: "d0", Value: strconv.Itoa(v.Module)},
			{Key: "d1", Value: v.Color},
		}
		for i := range a.AnnotationColumns {
			value := ""
			if i < len(v.Annotations) {
				value = v.Annotations[i]
			}
			data = append(data, xmlData{Key: fmt.Sprintf("a%d", i), Value: value})
		}
		nodes = append(nodes, xmlNode{ID: v.Gene, Data: data})
	}

	var edges []xmlEdge
	for _, l := range a.Links() {
		edges = append(edges, xmlEdge{
			Source: l.From().(*Vertex).Gene,
			Target: l.To().(*Vertex).Gene,
			Data: []xmlData{
				{Key: "e0", Value: strconv.FormatFloat(l.W, 'g', -1, 64)},
				{Key: "e1", Value: strconv.FormatBool(l.Positive)},
			},
		})
	}

	doc := &xmlDocument{
		Xmlns: graphmlNamespace,
		Keys:  keys,
		Graph: xmlGraph{ID: a.Name, EdgeDefault: "undirected", Nodes: nodes, Edges: edges},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write graphml header: %v", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode graphml: %v", err)
	}
	return nil
}

// ReadGraphML rebuilds an artifact from its serialized form.
func ReadGraphML(r io.Reader) (*Artifact, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode graphml: %v", err)
	}
	keyName := make(map[string]string)
	var columns []string
	for _, k := range doc.Keys {
		keyName[k.ID] = k.AttrName
		if k.For == "node" && k.AttrName != "module" && k.AttrName != "color" {
			columns = append(columns, k.AttrName)
		}
	}
	columnIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		columnIndex[c] = i
	}

	a := NewArtifact(doc.Graph.ID, columns)
	for _, nd := range doc.Graph.Nodes {
		if a.VertexByGene(nd.ID) != nil {
			return nil, fmt.Errorf("duplicate node %s", nd.ID)
		}
		module := -1
		color := "grey"
		annotations := make([]string, len(columns))
		for _, d := range nd.Data {
			switch name := keyName[d.Key]; name {
			case "module":
				m, err := strconv.Atoi(d.Value)
				if err != nil {
					return nil, fmt.Errorf("bad module label on node %s: %v", nd.ID, err)
				}
				module = m
			case "color":
				color = d.Value
			default:
				if i, ok := columnIndex[name]; ok {
					annotations[i] = d.Value
				}
			}
		}
		a.AddVertex(nd.ID, module, color, annotations)
	}
	for _, e := range doc.Graph.Edges {
		source := a.VertexByGene(e.Source)
		target := a.VertexByGene(e.Target)
		if source == nil || target == nil {
			return nil, fmt.Errorf("edge %s -- %s references an unknown node", e.Source, e.Target)
		}
		weight := 1.0
		positive := true
		for _, d := range e.Data {
			switch keyName[d.Key] {
			case "weight":
				w, err := strconv.ParseFloat(d.Value, 64)
				if err != nil {
					return nil, fmt.Errorf("bad weight on edge %s -- %s: %v", e.Source, e.Target, err)
				}
				weight = w
			case "positive":
				p, err := strconv.ParseBool(d.Value)
				if err != nil {
					return nil, fmt.Errorf("bad sign on edge %s -- %s: %v", e.Source, e.Target, err)
				}
				positive = p
			}
		}
		a.AddLink(source.ID(), target.ID(), weight, positive)
	}
	return a, nil
}

// WriteGraphMLFile stages the artifact in a temp file and renames it
// into place, so a failed export never leaves a truncated file behind.
func WriteGraphMLFile(a *Artifact, path string) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteGraphML(a, w)
	})
}

// ReadGraphMLFile loads a serialized artifact from disk.
func ReadGraphMLFile(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGraphML(f)
}

func writeFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".coexnet-*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %v", path, err)
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %v", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
