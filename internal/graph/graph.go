package graph

import (
	"errors"
	"sort"
)

// ErrPrecursorMissing is returned when a relation references a user id
// that was never registered. Callers must AddUser both endpoints first.
var ErrPrecursorMissing = errors.New("relation endpoint not registered")

// ErrUnknownKind is returned for a kind outside the four recognized
// interaction kinds. Like ErrPrecursorMissing, a contract breach.
var ErrUnknownKind = errors.New("unrecognized interaction kind")

// Node is a user in the interaction graph.
// AdoptionTime is the earliest epoch second the user was seen authoring
// a matching tweet; nil when the user only ever appeared as a
// counterpart in someone else's interaction.
type Node struct {
	ID           int64
	AdoptionTime *int64
}

// EdgeKey identifies the single directed edge per ordered user pair.
type EdgeKey struct {
	Source int64
	Target int64
}

// Edge is a directed interaction edge. Kinds accumulates every
// interaction kind observed on the pair; CreationTime is the earliest
// timestamp among them.
type Edge struct {
	Source       int64
	Target       int64
	Kinds        KindSet
	CreationTime int64
}

// Builder owns the in-memory directed graph for one pipeline run.
type Builder struct {
	nodes map[int64]*Node
	edges map[EdgeKey]*Edge
}

func NewBuilder() *Builder {
	return &Builder{nodes: make(map[int64]*Node), edges: make(map[EdgeKey]*Edge)}
}

// AddUser ensures a node exists for id. Idempotent.
func (b *Builder) AddUser(id int64) {
	if _, ok := b.nodes[id]; !ok {
		b.nodes[id] = &Node{ID: id}
	}
}

// AddUserAt ensures a node exists and records ts as its adoption time
// if it is the earliest seen so far. Adoption time only ever decreases.
func (b *Builder) AddUserAt(id int64, ts int64) {
	b.AddUser(id)
	n := b.nodes[id]
	if n.AdoptionTime == nil || ts < *n.AdoptionTime {
		t := ts
		n.AdoptionTime = &t
	}
}

// AddRelation upserts the directed edge source->target with the given
// kind and timestamp. Both endpoints must already be registered.
// Repeated calls union the kind into the edge's set and keep the
// earliest creation time. Self-loops are allowed.
func (b *Builder) AddRelation(source, target int64, kind Kind, ts int64) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if _, ok := b.nodes[source]; !ok {
		return ErrPrecursorMissing
	}
	if _, ok := b.nodes[target]; !ok {
		return ErrPrecursorMissing
	}
	key := EdgeKey{Source: source, Target: target}
	e, ok := b.edges[key]
	if !ok {
		e = &Edge{Source: source, Target: target, CreationTime: ts}
		e.Kinds.Add(kind)
		b.edges[key] = e
		return nil
	}
	if ts < e.CreationTime {
		e.CreationTime = ts
	}
	e.Kinds.Add(kind)
	return nil
}

func (b *Builder) NodeCount() int { return len(b.nodes) }

func (b *Builder) EdgeCount() int { return len(b.edges) }

// Node returns the node for id, or nil.
func (b *Builder) Node(id int64) *Node { return b.nodes[id] }

// Edge returns the edge source->target, or nil.
func (b *Builder) Edge(source, target int64) *Edge {
	return b.edges[EdgeKey{Source: source, Target: target}]
}

// Nodes returns all nodes sorted by id.
func (b *Builder) Nodes() []*Node {
	out := make([]*Node, 0, len(b.nodes))
	for _, n := range b.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges sorted by (source, target).
func (b *Builder) Edges() []*Edge {
	out := make([]*Edge, 0, len(b.edges))
	for _, e := range b.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}
