// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pathgraph implements the undirected, planar walkable-path
// graph: nodes carry a position and an incidence list, edges carry two
// endpoint ids and implicit straight-line geometry. The graph is a
// classic two-map-keyed-by-id structure rather than pointer-linked
// nodes/edges, to keep node/edge ownership acyclic.
package pathgraph

import (
	"fmt"
	"sync/atomic"

	"github.com/relabs-tech/pdr_engine/internal/geo"
)

// Node is a graph vertex: an opaque id, a position, and the ids of
// every edge incident to it.
type Node struct {
	ID      string   `json:"id"`
	Pos     geo.Vec2 `json:"pos"`
	EdgeIDs []string `json:"edge_ids"`
}

// Edge is a graph edge: an opaque id and two endpoint node ids. Order
// of Start/End is arbitrary — the graph is undirected.
type Edge struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Graph is a mapping from node-id to Node and edge-id to Edge. It may
// be disconnected; self-loops are prohibited; parallel edges are
// permitted but should not arise from normal construction.
type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges map[string]*Edge `json:"edges"`

	counter uint64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]*Node), Edges: make(map[string]*Edge)}
}

// nextID returns prefix followed by the next value of this graph's
// counter, an id unique within g. A per-graph counter keeps
// construction deterministic, which simplifies testing relative to a
// random UUID.
func (g *Graph) nextID(prefix string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s%d", prefix, n)
}

// AddNode creates and inserts a new node at pos, returning it.
func (g *Graph) AddNode(pos geo.Vec2) *Node {
	n := &Node{ID: g.nextID("n"), Pos: pos}
	g.Nodes[n.ID] = n
	return n
}

// AddEdge creates and inserts a new edge between two existing nodes,
// rejecting self-loops. Returns nil if either endpoint is missing or
// start == end.
func (g *Graph) AddEdge(startID, endID string) *Edge {
	if startID == endID {
		return nil
	}
	start, ok := g.Nodes[startID]
	if !ok {
		return nil
	}
	end, ok := g.Nodes[endID]
	if !ok {
		return nil
	}

	e := &Edge{ID: g.nextID("e"), Start: startID, End: endID}
	g.Edges[e.ID] = e
	start.EdgeIDs = append(start.EdgeIDs, e.ID)
	end.EdgeIDs = append(end.EdgeIDs, e.ID)
	return e
}

// RemoveEdge deletes an edge and its id from both endpoints'
// incidence lists.
func (g *Graph) RemoveEdge(id string) {
	e, ok := g.Edges[id]
	if !ok {
		return
	}
	delete(g.Edges, id)
	if n, ok := g.Nodes[e.Start]; ok {
		n.EdgeIDs = removeID(n.EdgeIDs, id)
	}
	if n, ok := g.Nodes[e.End]; ok {
		n.EdgeIDs = removeID(n.EdgeIDs, id)
	}
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Empty reports whether the graph has no edges.
func (g *Graph) Empty() bool { return len(g.Edges) == 0 }

// Endpoints returns the start/end positions of an edge.
func (g *Graph) Endpoints(e *Edge) (start, end geo.Vec2, ok bool) {
	s, ok1 := g.Nodes[e.Start]
	en, ok2 := g.Nodes[e.End]
	if !ok1 || !ok2 {
		return geo.Vec2{}, geo.Vec2{}, false
	}
	return s.Pos, en.Pos, true
}

// CheckInvariants validates the graph invariants: every edge's
// endpoints exist and list the edge; every node's incidence-list
// entries refer to existing edges naming that node. Intended for
// tests.
func (g *Graph) CheckInvariants() error {
	for id, e := range g.Edges {
		s, ok := g.Nodes[e.Start]
		if !ok {
			return fmt.Errorf("edge %s: start node %s missing", id, e.Start)
		}
		en, ok := g.Nodes[e.End]
		if !ok {
			return fmt.Errorf("edge %s: end node %s missing", id, e.End)
		}
		if !containsID(s.EdgeIDs, id) {
			return fmt.Errorf("edge %s: start node %s does not list it", id, e.Start)
		}
		if !containsID(en.EdgeIDs, id) {
			return fmt.Errorf("edge %s: end node %s does not list it", id, e.End)
		}
	}
	for nid, n := range g.Nodes {
		for _, eid := range n.EdgeIDs {
			e, ok := g.Edges[eid]
			if !ok {
				return fmt.Errorf("node %s: edge %s does not exist", nid, eid)
			}
			if e.Start != nid && e.End != nid {
				return fmt.Errorf("node %s: edge %s does not name it", nid, eid)
			}
		}
	}
	return nil
}

func containsID(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
