// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pathgraph

import "github.com/relabs-tech/pdr_engine/internal/geo"

// Projection is the result of projecting a point onto one edge: the
// foot of the perpendicular (clamped to the segment), the distance
// from the original point to that foot, and the edge itself.
type Projection struct {
	Edge *Edge
	Foot geo.Vec2
	Dist float64
}

// NearestEdge projects point onto every edge in the graph and returns
// the projection with globally minimal distance. ok is false if the
// graph has no edges.
func (g *Graph) NearestEdge(point geo.Vec2) (Projection, bool) {
	var best Projection
	found := false

	for _, e := range g.Edges {
		s, end, ok := g.Endpoints(e)
		if !ok {
			continue
		}
		foot := projectOntoSegment(point, s, end)
		d := point.Distance(foot)
		if !found || d < best.Dist {
			best = Projection{Edge: e, Foot: foot, Dist: d}
			found = true
		}
	}
	return best, found
}

// projectOntoSegment projects point onto the segment s-e, clamping the
// parametric offset to [0, 1]. A zero-length segment degenerates to
// its single endpoint.
func projectOntoSegment(point, s, e geo.Vec2) geo.Vec2 {
	v := e.Sub(s)
	lenSq := v.LengthSquared()
	if lenSq == 0 {
		return s
	}
	t := point.Sub(s).Dot(v) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return s.Add(v.Scale(t))
}
