// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pathmgr implements the online path-graph construction,
// snapping, splitting and routing logic: it owns the graph, the
// recording buffer, and the anchor node reference. Concurrency (the
// inactivity timer, serializing toggles against sensor events) is the
// caller's responsibility — this package has no goroutines or timers
// of its own.
package pathmgr

import (
	"github.com/relabs-tech/pdr_engine/internal/geo"
	"github.com/relabs-tech/pdr_engine/internal/pathgraph"
)

// DefaultSnapThreshold is the maximum distance within which a
// non-strict snap or a split will attach to an existing edge.
const DefaultSnapThreshold = 2.0

// MinSegmentLength is the minimum total polyline length a recording
// buffer must have to be eligible for finalize.
const MinSegmentLength = 1.0

// selfLoopEpsilon is the minimum displacement a split's projected foot
// must have from an existing endpoint to avoid producing a zero-length
// edge.
const selfLoopEpsilon = 1e-9

// Manager holds the graph, the in-progress recording buffer, and the
// anchor node that the next finalized segment must connect to.
type Manager struct {
	Graph  *pathgraph.Graph
	buffer []geo.Vec2
	anchor string // node id; "" means no anchor

	snapThreshold    float64
	splitThreshold   float64
	minSegmentLength float64
}

// New returns a Manager over a fresh, empty graph, using the
// reference thresholds.
func New() *Manager {
	return NewWithParams(DefaultSnapThreshold, DefaultSnapThreshold, MinSegmentLength)
}

// NewWithParams returns a Manager over a fresh, empty graph, using
// deployment-specific split/min-segment thresholds (e.g. from
// config.Config). snapThreshold is stored but not read: Snap takes its
// threshold as an argument.
func NewWithParams(snapThreshold, splitThreshold, minSegmentLength float64) *Manager {
	return &Manager{
		Graph:            pathgraph.New(),
		snapThreshold:    snapThreshold,
		splitThreshold:   splitThreshold,
		minSegmentLength: minSegmentLength,
	}
}

// HasPath reports whether the graph has any edges.
func (m *Manager) HasPath() bool { return !m.Graph.Empty() }

// ClearGraph discards the entire graph and any in-progress recording,
// for an explicit user "clear path" request. The graph otherwise
// persists across recording sessions.
func (m *Manager) ClearGraph() {
	m.Graph = pathgraph.New()
	m.buffer = nil
	m.anchor = ""
}

// AppendStep records one more dead-reckoned position into the
// recording buffer, called by the PDR integrator on every step while
// recording is active.
func (m *Manager) AppendStep(pos geo.Vec2) {
	m.buffer = append(m.buffer, pos)
}

// BufferLen reports the number of points currently buffered.
func (m *Manager) BufferLen() int { return len(m.buffer) }

// ResetBuffer empties the recording buffer without touching the
// anchor or the graph, as on toggling recording off.
func (m *Manager) ResetBuffer() { m.buffer = nil }

// PrepareForNewRecording implements the "start recording" transition:
// attempt to split the nearest edge at pos; if that succeeds the new
// node becomes the anchor. Otherwise, if no path exists yet, the
// stale buffer (if any) is cleared and the anchor stays unset. Returns
// the node that became the anchor, if any.
func (m *Manager) PrepareForNewRecording(pos geo.Vec2) (*pathgraph.Node, bool) {
	if n, ok := m.SplitEdgeAtPoint(pos, m.splitThreshold); ok {
		return n, true
	}
	if !m.HasPath() {
		m.ResetBuffer()
	}
	return nil, false
}

// Snap projects point onto every edge and returns the globally
// nearest foot when strict is true or the nearest foot is within
// threshold; otherwise it returns point unchanged. With an empty
// graph it always returns point unchanged.
func (m *Manager) Snap(point geo.Vec2, strict bool, threshold float64) geo.Vec2 {
	proj, ok := m.Graph.NearestEdge(point)
	if !ok {
		return point
	}
	if strict || proj.Dist <= threshold {
		return proj.Foot
	}
	return point
}

// SnapStrict is Snap with strict=true: it always returns the globally
// nearest foot on the graph, ignoring distance. Used by the PDR
// integrator to snap every emitted position once snapping is enabled
// and a path exists.
func (m *Manager) SnapStrict(point geo.Vec2) geo.Vec2 {
	return m.Snap(point, true, 0)
}

// SplitEdgeAtPoint finds the nearest edge; if within threshold, it
// inserts a node at the projected foot, removes the old edge and adds
// two new ones in its place, and sets the anchor to the new node.
// Returns (nil, false) if the graph has no edge within threshold
// (including an empty graph).
func (m *Manager) SplitEdgeAtPoint(point geo.Vec2, threshold float64) (*pathgraph.Node, bool) {
	proj, ok := m.Graph.NearestEdge(point)
	if !ok || proj.Dist > threshold {
		return nil, false
	}

	start, end, ok := m.Graph.Endpoints(proj.Edge)
	if !ok {
		return nil, false
	}

	// Skip the split if the foot coincides with an existing endpoint:
	// splitting there would create a zero-length edge.
	if proj.Foot.Distance(start) < selfLoopEpsilon {
		m.anchor = proj.Edge.Start
		return m.Graph.Nodes[proj.Edge.Start], true
	}
	if proj.Foot.Distance(end) < selfLoopEpsilon {
		m.anchor = proj.Edge.End
		return m.Graph.Nodes[proj.Edge.End], true
	}

	oldStart, oldEnd := proj.Edge.Start, proj.Edge.End
	n := m.Graph.AddNode(proj.Foot)
	m.Graph.RemoveEdge(proj.Edge.ID)
	m.Graph.AddEdge(oldStart, n.ID)
	m.Graph.AddEdge(n.ID, oldEnd)

	m.anchor = n.ID
	return n, true
}

// FinalizeSegment rejects (no-op, buffer retained) if the buffer has
// fewer than 2 points or total polyline length under
// MinSegmentLength. Otherwise it regresses a single edge through the
// buffer via PCA, wires it into the graph according to the anchor
// rule, clears the buffer, and reports whether the graph changed.
func (m *Manager) FinalizeSegment() bool {
	if len(m.buffer) < 2 {
		return false
	}
	if geo.PolylineLength(m.buffer) < m.minSegmentLength {
		return false
	}

	axis := geo.Regress(m.buffer)

	if m.anchor == "" {
		a := m.Graph.AddNode(axis.A)
		b := m.Graph.AddNode(axis.B)
		m.Graph.AddEdge(a.ID, b.ID)
		m.anchor = b.ID
	} else {
		anchorNode, ok := m.Graph.Nodes[m.anchor]
		if !ok {
			// Anchor was somehow invalidated; treat as a fresh segment.
			a := m.Graph.AddNode(axis.A)
			b := m.Graph.AddNode(axis.B)
			m.Graph.AddEdge(a.ID, b.ID)
			m.anchor = b.ID
			m.ResetBuffer()
			return true
		}

		far := axis.B
		if anchorNode.Pos.Distance(axis.B) < anchorNode.Pos.Distance(axis.A) {
			far = axis.A
		}

		newNode := m.Graph.AddNode(far)
		m.Graph.AddEdge(anchorNode.ID, newNode.ID)
		m.anchor = newNode.ID
	}

	m.ResetBuffer()
	return true
}

// Anchor returns the current anchor node and whether one is set.
func (m *Manager) Anchor() (*pathgraph.Node, bool) {
	if m.anchor == "" {
		return nil, false
	}
	n, ok := m.Graph.Nodes[m.anchor]
	return n, ok
}

// FindPath delegates to the graph's routing logic.
func (m *Manager) FindPath(start, end geo.Vec2) []geo.Vec2 {
	return m.Graph.FindPath(start, end)
}
