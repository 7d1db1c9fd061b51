// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pathgraph

import (
	"container/heap"
	"math"

	"github.com/relabs-tech/pdr_engine/internal/geo"
)

// NodeSnapThreshold is the maximum distance from a query point to the
// nearest node for routing to "snap" onto the graph.
const NodeSnapThreshold = 5.0

// nearestNode returns the node nearest to point within threshold.
func (g *Graph) nearestNode(point geo.Vec2, threshold float64) (*Node, bool) {
	var best *Node
	bestDist := math.Inf(1)
	for _, n := range g.Nodes {
		d := point.Distance(n.Pos)
		if d < bestDist {
			best, bestDist = n, d
		}
	}
	if best == nil || bestDist > threshold {
		return nil, false
	}
	return best, true
}

// adjacency returns, for a node id, the list of (neighbor id, edge
// weight) pairs in a stable, insertion-ordered sequence. Edge weight is
// Euclidean distance between the two incident nodes.
func (g *Graph) adjacency(id string) []struct {
	Neighbor string
	Weight   float64
} {
	n := g.Nodes[id]
	out := make([]struct {
		Neighbor string
		Weight   float64
	}, 0, len(n.EdgeIDs))

	for _, eid := range n.EdgeIDs {
		e, ok := g.Edges[eid]
		if !ok {
			continue
		}
		other := e.Start
		if other == id {
			other = e.End
		}
		s, en, ok := g.Endpoints(e)
		if !ok {
			continue
		}
		out = append(out, struct {
			Neighbor string
			Weight   float64
		}{Neighbor: other, Weight: s.Distance(en)})
	}
	return out
}

// dijkstraItem is one entry in the priority queue. seq records
// insertion order so ties break deterministically by insertion order
// instead of relying on an unspecified heap-internal ordering.
type dijkstraItem struct {
	id    string
	dist  float64
	seq   int
	index int
}

type dijkstraQueue []*dijkstraItem

func (q dijkstraQueue) Len() int { return len(q) }
func (q dijkstraQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}
func (q dijkstraQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *dijkstraQueue) Push(x any) {
	it := x.(*dijkstraItem)
	it.index = len(*q)
	*q = append(*q, it)
}
func (q *dijkstraQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// dijkstra runs single-source shortest path from startID and returns
// predecessor pointers sufficient to reconstruct a path to any node.
func (g *Graph) dijkstra(startID string) (dist map[string]float64, prev map[string]string) {
	dist = map[string]float64{startID: 0}
	prev = map[string]string{}
	visited := map[string]bool{}

	seq := 0
	pq := &dijkstraQueue{}
	heap.Init(pq)
	heap.Push(pq, &dijkstraItem{id: startID, dist: 0, seq: seq})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*dijkstraItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		for _, adj := range g.adjacency(cur.id) {
			nd := cur.dist + adj.Weight
			if existing, ok := dist[adj.Neighbor]; !ok || nd < existing {
				dist[adj.Neighbor] = nd
				prev[adj.Neighbor] = cur.id
				seq++
				heap.Push(pq, &dijkstraItem{id: adj.Neighbor, dist: nd, seq: seq})
			}
		}
	}
	return dist, prev
}

// FindPath snaps start/end onto the nearest node within
// NodeSnapThreshold, runs Dijkstra, reconstructs the node-position
// sequence, and appends the caller-supplied end point. Falls back to
// the single-element sequence [end] whenever routing isn't possible
// (missing nearby node, identical nodes, or disconnected components)
// — this operation never fails outright.
func (g *Graph) FindPath(start, end geo.Vec2) []geo.Vec2 {
	startNode, ok1 := g.nearestNode(start, NodeSnapThreshold)
	endNode, ok2 := g.nearestNode(end, NodeSnapThreshold)
	if !ok1 || !ok2 || startNode.ID == endNode.ID {
		return []geo.Vec2{end}
	}

	_, prev := g.dijkstra(startNode.ID)
	if _, reached := prev[endNode.ID]; !reached && endNode.ID != startNode.ID {
		return []geo.Vec2{end}
	}

	// Reconstruct node-id order from end back to start.
	var ids []string
	cur := endNode.ID
	for {
		ids = append([]string{cur}, ids...)
		if cur == startNode.ID {
			break
		}
		p, ok := prev[cur]
		if !ok {
			return []geo.Vec2{end}
		}
		cur = p
	}

	out := make([]geo.Vec2, 0, len(ids)+1)
	for _, id := range ids {
		out = append(out, g.Nodes[id].Pos)
	}
	out = append(out, end)
	return out
}
