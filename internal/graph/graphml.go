package graph

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
)

// GraphML serialization of the builder's node/edge set. Attribute keys
// follow the networkx convention of d0..dN declarations up front.

const graphmlNS = "http://graphml.graphdrawing.org/xmlns"

const (
	keyAdoptionTime = "d0"
	keyEdgeType     = "d1"
	keyCreationTime = "d2"
)

type xmlKey struct {
	XMLName  xml.Name `xml:"key"`
	ID       string   `xml:"id,attr"`
	For      string   `xml:"for,attr"`
	AttrName string   `xml:"attr.name,attr"`
	AttrType string   `xml:"attr.type,attr"`
}

type xmlData struct {
	XMLName xml.Name `xml:"data"`
	Key     string   `xml:"key,attr"`
	Value   string   `xml:",chardata"`
}

type xmlNode struct {
	XMLName xml.Name  `xml:"node"`
	ID      string    `xml:"id,attr"`
	Data    []xmlData `xml:"data"`
}

type xmlEdge struct {
	XMLName xml.Name  `xml:"edge"`
	Source  string    `xml:"source,attr"`
	Target  string    `xml:"target,attr"`
	Data    []xmlData `xml:"data"`
}

type xmlGraph struct {
	XMLName     xml.Name  `xml:"graph"`
	EdgeDefault string    `xml:"edgedefault,attr"`
	Nodes       []xmlNode `xml:"node"`
	Edges       []xmlEdge `xml:"edge"`
}

type xmlGraphML struct {
	XMLName xml.Name `xml:"graphml"`
	NS      string   `xml:"xmlns,attr"`
	Keys    []xmlKey `xml:"key"`
	Graph   xmlGraph `xml:"graph"`
}

// WriteGraphML serializes the full graph to w. Nodes are ordered by id
// and edges by (source, target) so output is deterministic.
func (b *Builder) WriteGraphML(w io.Writer) error {
	doc := xmlGraphML{
		NS: graphmlNS,
		Keys: []xmlKey{
			{ID: keyAdoptionTime, For: "node", AttrName: "adoption_time", AttrType: "long"},
			{ID: keyEdgeType, For: "edge", AttrName: "type", AttrType: "string"},
			{ID: keyCreationTime, For: "edge", AttrName: "creation_time", AttrType: "long"},
		},
		Graph: xmlGraph{EdgeDefault: "directed"},
	}
	for _, n := range b.Nodes() {
		xn := xmlNode{ID: strconv.FormatInt(n.ID, 10)}
		if n.AdoptionTime != nil {
			xn.Data = append(xn.Data, xmlData{Key: keyAdoptionTime, Value: strconv.FormatInt(*n.AdoptionTime, 10)})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, xn)
	}
	for _, e := range b.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, xmlEdge{
			Source: strconv.FormatInt(e.Source, 10),
			Target: strconv.FormatInt(e.Target, 10),
			Data: []xmlData{
				{Key: keyEdgeType, Value: e.Kinds.Code()},
				{Key: keyCreationTime, Value: strconv.FormatInt(e.CreationTime, 10)},
			},
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ExportFile writes the graph to path, creating or truncating the file.
func (b *Builder) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export graph: %w", err)
	}
	if err := b.WriteGraphML(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export graph: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export graph: %w", err)
	}
	return nil
}
