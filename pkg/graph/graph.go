// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package graph builds an ancestor graph from a crawled [tree.Tree].
//
// Nodes are families. There is an edge from a family to the parent family of each spouse,
// so edges point towards older generations. The graph can be rendered by Graphviz.
package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/tree"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Graph is a directed graph of families.
//
// Concurrency: Graph is immutable after New, safe for concurrent reads.
type Graph struct {
	*simple.DirectedGraph
	GraphAttrs, NodeAttrs, EdgeAttrs Attrs

	root  *Node
	nodes map[pedigree.FamilyID]*Node
}

// Node is a family in the graph.
type Node struct {
	Family  *pedigree.Family
	Husband *pedigree.Person // nil if absent from the tree.
	Wife    *pedigree.Person // nil if absent from the tree.
	// Generation is the number of edges from the root, -1 if not reachable.
	Generation int
	Attrs      Attrs

	id int64
}

func (n *Node) ID() int64      { return n.id }
func (n *Node) DOTID() string  { return string(n.Family.ID) }
func (n *Node) String() string { return string(n.Family.ID) }
func (n *Node) Attributes() []encoding.Attribute {
	a := Attrs{"label": n.label()}
	for k, v := range n.Attrs {
		a[k] = v
	}
	return a.Attributes()
}

func (n *Node) label() string {
	lines := []string{string(n.Family.ID)}
	for _, p := range []*pedigree.Person{n.Husband, n.Wife} {
		if p != nil && p.Name != "" {
			lines = append(lines, p.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// Edge from a family to the parent family of one of its spouses.
type Edge struct {
	F, T   *Node
	Spouse pedigree.PersonID
}

func (e Edge) From() graph.Node         { return e.F }
func (e Edge) To() graph.Node           { return e.T }
func (e Edge) ReversedEdge() graph.Edge { return Edge{F: e.T, T: e.F, Spouse: e.Spouse} }
func (e Edge) Attributes() []encoding.Attribute {
	return Attrs{"label": string(e.Spouse)}.Attributes()
}

// New builds the graph of all families in t, with generations counted from root.
// Spouse links to families that are not in t are ignored.
func New(t *tree.Tree, root pedigree.FamilyID) *Graph {
	g := &Graph{
		DirectedGraph: simple.NewDirectedGraph(),
		GraphAttrs:    Attrs{"rankdir": "BT", "fontname": "Helvetica"},
		NodeAttrs:     Attrs{"shape": "box", "fontname": "Helvetica", "fontsize": "10"},
		EdgeAttrs:     Attrs{"fontname": "Helvetica", "fontsize": "8"},
		nodes:         map[pedigree.FamilyID]*Node{},
	}
	for i, f := range t.Families() { // Sorted, node ids are stable.
		n := &Node{
			Family:     f,
			Husband:    t.Person(f.Husband),
			Wife:       t.Person(f.Wife),
			Generation: -1,
			id:         int64(i),
		}
		g.nodes[f.ID] = n
		g.AddNode(n)
	}
	for _, n := range g.FamilyNodes() {
		for _, p := range []*pedigree.Person{n.Husband, n.Wife} {
			if p == nil {
				continue
			}
			if parent := g.nodes[p.ParentFamily]; parent != nil && parent != n && !g.HasEdgeFromTo(n.id, parent.id) {
				g.SetEdge(Edge{F: n, T: parent, Spouse: p.ID})
			}
		}
	}
	g.root = g.nodes[root]
	if g.root != nil {
		bf := traverse.BreadthFirst{}
		bf.Walk(g, g.root, func(n graph.Node, depth int) bool {
			n.(*Node).Generation = depth
			return false
		})
	}
	return g
}

// FamilyNode returns the node for a family id, nil if not present.
func (g *Graph) FamilyNode(id pedigree.FamilyID) *Node { return g.nodes[id] }

// FamilyNodes returns all nodes ordered by family id.
func (g *Graph) FamilyNodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int { return strings.Compare(string(a.Family.ID), string(b.Family.ID)) })
	return nodes
}

// Root node, nil if the root family is not in the graph.
func (g *Graph) Root() *Node { return g.root }

// Generations is the number of generations reachable from the root, including the root.
func (g *Graph) Generations() int {
	n := 0
	for _, node := range g.nodes {
		n = max(n, node.Generation+1)
	}
	return n
}

// Ancestors returns the ids of all families reachable from id, excluding id, ordered by id.
func (g *Graph) Ancestors(id pedigree.FamilyID) []pedigree.FamilyID {
	start := g.nodes[id]
	if start == nil {
		return nil
	}
	var ancestors []pedigree.FamilyID
	df := traverse.DepthFirst{Visit: func(n graph.Node) {
		if n != start {
			ancestors = append(ancestors, n.(*Node).Family.ID)
		}
	}}
	df.Walk(g, start, nil)
	slices.Sort(ancestors)
	return ancestors
}

// Cycles returns any cycles in the graph. A valid pedigree has none.
// Each cycle is a list of family ids where the first and last are the same.
func (g *Graph) Cycles() [][]pedigree.FamilyID {
	var cycles [][]pedigree.FamilyID
	for _, c := range topo.DirectedCyclesIn(g) {
		ids := make([]pedigree.FamilyID, len(c))
		for i, n := range c {
			ids[i] = n.(*Node).Family.ID
		}
		cycles = append(cycles, ids)
	}
	return cycles
}

// Unreachable returns families that are not ancestors of the root, ordered by id.
func (g *Graph) Unreachable() (ids []pedigree.FamilyID) {
	for _, n := range g.FamilyNodes() {
		if n.Generation < 0 {
			ids = append(ids, n.Family.ID)
		}
	}
	return ids
}

func (g *Graph) DOTID() string { return "pedigree" }
func (g *Graph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return g.GraphAttrs, g.NodeAttrs, g.EdgeAttrs
}

// MarshalDOT renders the graph in Graphviz DOT format.
func (g *Graph) MarshalDOT() ([]byte, error) {
	b, err := dot.Marshal(g, "", "", "  ")
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	return b, nil
}
