// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pathmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/pdr_engine/internal/geo"
)

func TestFinalizeSegmentRejectsTooShort(t *testing.T) {
	m := New()
	m.AppendStep(geo.Vec2{X: 0, Y: 0})
	m.AppendStep(geo.Vec2{X: 0.1, Y: 0}) // under MinSegmentLength

	changed := m.FinalizeSegment()
	assert.False(t, changed)
	assert.False(t, m.HasPath())
	assert.Equal(t, 2, m.BufferLen(), "buffer retained on rejection")
}

func TestFinalizeSegmentCreatesFirstEdge(t *testing.T) {
	m := New()
	for x := 0.0; x <= 5; x++ {
		m.AppendStep(geo.Vec2{X: x, Y: 0})
	}

	changed := m.FinalizeSegment()
	assert.True(t, changed)
	assert.True(t, m.HasPath())
	assert.Equal(t, 0, m.BufferLen())
	assert.NoError(t, m.Graph.CheckInvariants())

	anchor, ok := m.Anchor()
	assert.True(t, ok)
	assert.NotNil(t, anchor)
}

func TestFinalizeSegmentExtendsFromAnchor(t *testing.T) {
	m := New()
	for x := 0.0; x <= 5; x++ {
		m.AppendStep(geo.Vec2{X: x, Y: 0})
	}
	m.FinalizeSegment()
	anchorBefore, _ := m.Anchor()

	for y := 0.0; y <= 5; y++ {
		m.AppendStep(geo.Vec2{X: anchorBefore.Pos.X, Y: y})
	}
	changed := m.FinalizeSegment()

	assert.True(t, changed)
	assert.Equal(t, 2, len(m.Graph.Edges))
	assert.NoError(t, m.Graph.CheckInvariants())
}

func TestSnapEmptyGraphReturnsPointUnchanged(t *testing.T) {
	m := New()
	p := geo.Vec2{X: 3, Y: 4}
	assert.Equal(t, p, m.Snap(p, false, 1.0))
	assert.Equal(t, p, m.SnapStrict(p))
}

func TestSnapStrictAlwaysReturnsNearestFoot(t *testing.T) {
	m := New()
	a := m.Graph.AddNode(geo.Vec2{X: 0, Y: 0})
	b := m.Graph.AddNode(geo.Vec2{X: 10, Y: 0})
	m.Graph.AddEdge(a.ID, b.ID)

	out := m.SnapStrict(geo.Vec2{X: 5, Y: 100})
	assert.InDelta(t, 5.0, out.X, 1e-9)
	assert.InDelta(t, 0.0, out.Y, 1e-9)
}

func TestSnapNonStrictRespectsThreshold(t *testing.T) {
	m := New()
	a := m.Graph.AddNode(geo.Vec2{X: 0, Y: 0})
	b := m.Graph.AddNode(geo.Vec2{X: 10, Y: 0})
	m.Graph.AddEdge(a.ID, b.ID)

	far := geo.Vec2{X: 5, Y: 100}
	assert.Equal(t, far, m.Snap(far, false, 1.0), "beyond threshold: unchanged")

	near := geo.Vec2{X: 5, Y: 0.5}
	out := m.Snap(near, false, 1.0)
	assert.InDelta(t, 0.0, out.Y, 1e-9, "within threshold: snapped")
}

func TestSplitEdgeAtPointInsertsNodeAndTwoEdges(t *testing.T) {
	m := New()
	a := m.Graph.AddNode(geo.Vec2{X: 0, Y: 0})
	b := m.Graph.AddNode(geo.Vec2{X: 10, Y: 0})
	m.Graph.AddEdge(a.ID, b.ID)

	n, ok := m.SplitEdgeAtPoint(geo.Vec2{X: 5, Y: 0.5}, 2.0)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, n.Pos.X, 1e-9)
	assert.Equal(t, 2, len(m.Graph.Edges))
	assert.NoError(t, m.Graph.CheckInvariants())

	anchor, _ := m.Anchor()
	assert.Equal(t, n.ID, anchor.ID)
}

func TestSplitEdgeAtPointRejectsBeyondThreshold(t *testing.T) {
	m := New()
	a := m.Graph.AddNode(geo.Vec2{X: 0, Y: 0})
	b := m.Graph.AddNode(geo.Vec2{X: 10, Y: 0})
	m.Graph.AddEdge(a.ID, b.ID)

	_, ok := m.SplitEdgeAtPoint(geo.Vec2{X: 5, Y: 100}, 2.0)
	assert.False(t, ok)
	assert.Equal(t, 1, len(m.Graph.Edges))
}

func TestSplitEdgeAtPointNearEndpointReturnsEndpointWithoutMutation(t *testing.T) {
	m := New()
	a := m.Graph.AddNode(geo.Vec2{X: 0, Y: 0})
	b := m.Graph.AddNode(geo.Vec2{X: 10, Y: 0})
	m.Graph.AddEdge(a.ID, b.ID)

	n, ok := m.SplitEdgeAtPoint(geo.Vec2{X: 0, Y: 0}, 2.0)
	assert.True(t, ok)
	assert.Equal(t, a.ID, n.ID)
	assert.Equal(t, 1, len(m.Graph.Edges), "no new edge on a degenerate split")
}

func TestClearGraphResetsEverything(t *testing.T) {
	m := New()
	m.Graph.AddNode(geo.Vec2{X: 0, Y: 0})
	m.AppendStep(geo.Vec2{X: 1, Y: 1})

	m.ClearGraph()
	assert.False(t, m.HasPath())
	assert.Equal(t, 0, m.BufferLen())
	_, ok := m.Anchor()
	assert.False(t, ok)
}

func TestPrepareForNewRecordingSplitsNearbyEdge(t *testing.T) {
	m := New()
	a := m.Graph.AddNode(geo.Vec2{X: 0, Y: 0})
	b := m.Graph.AddNode(geo.Vec2{X: 10, Y: 0})
	m.Graph.AddEdge(a.ID, b.ID)

	n, ok := m.PrepareForNewRecording(geo.Vec2{X: 5, Y: 0.1})
	assert.True(t, ok)
	assert.InDelta(t, 5.0, n.Pos.X, 1e-9)
}

func TestPrepareForNewRecordingClearsStaleBufferOnEmptyGraph(t *testing.T) {
	m := New()
	m.AppendStep(geo.Vec2{X: 1, Y: 1}) // stale, never finalized

	_, ok := m.PrepareForNewRecording(geo.Vec2{X: 100, Y: 100})
	assert.False(t, ok)
	assert.Equal(t, 0, m.BufferLen())
}
