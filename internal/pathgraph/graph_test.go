// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pathgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/pdr_engine/internal/geo"
)

func TestAddNodeAndEdge(t *testing.T) {
	g := New()
	a := g.AddNode(geo.Vec2{X: 0, Y: 0})
	b := g.AddNode(geo.Vec2{X: 10, Y: 0})
	e := g.AddEdge(a.ID, b.ID)

	assert.NotNil(t, e)
	assert.False(t, g.Empty())
	assert.NoError(t, g.CheckInvariants())
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	g := New()
	a := g.AddNode(geo.Vec2{X: 0, Y: 0})
	assert.Nil(t, g.AddEdge(a.ID, a.ID))
}

func TestAddEdgeRejectsMissingEndpoint(t *testing.T) {
	g := New()
	a := g.AddNode(geo.Vec2{X: 0, Y: 0})
	assert.Nil(t, g.AddEdge(a.ID, "nonexistent"))
}

func TestRemoveEdgeCleansIncidence(t *testing.T) {
	g := New()
	a := g.AddNode(geo.Vec2{X: 0, Y: 0})
	b := g.AddNode(geo.Vec2{X: 10, Y: 0})
	e := g.AddEdge(a.ID, b.ID)

	g.RemoveEdge(e.ID)
	assert.True(t, g.Empty())
	assert.Empty(t, g.Nodes[a.ID].EdgeIDs)
	assert.Empty(t, g.Nodes[b.ID].EdgeIDs)
	assert.NoError(t, g.CheckInvariants())
}

func TestNearestEdgeProjectsAndClamps(t *testing.T) {
	g := New()
	a := g.AddNode(geo.Vec2{X: 0, Y: 0})
	b := g.AddNode(geo.Vec2{X: 10, Y: 0})
	g.AddEdge(a.ID, b.ID)

	proj, ok := g.NearestEdge(geo.Vec2{X: 5, Y: 3})
	assert.True(t, ok)
	assert.InDelta(t, 5.0, proj.Foot.X, 1e-9)
	assert.InDelta(t, 0.0, proj.Foot.Y, 1e-9)
	assert.InDelta(t, 3.0, proj.Dist, 1e-9)

	// Beyond the segment end clamps to the endpoint.
	proj, ok = g.NearestEdge(geo.Vec2{X: 20, Y: 0})
	assert.True(t, ok)
	assert.InDelta(t, 10.0, proj.Foot.X, 1e-9)
}

func TestFindPathPrefersShortestRoute(t *testing.T) {
	g := New()
	a := g.AddNode(geo.Vec2{X: 0, Y: 0})
	b := g.AddNode(geo.Vec2{X: 10, Y: 0})
	c := g.AddNode(geo.Vec2{X: 10, Y: 10})
	g.AddEdge(a.ID, b.ID)
	g.AddEdge(b.ID, c.ID)
	g.AddEdge(a.ID, c.ID) // direct diagonal, shorter than a->b->c

	path := g.FindPath(geo.Vec2{X: 0, Y: 0}, geo.Vec2{X: 10, Y: 10})
	assert.Equal(t, []geo.Vec2{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 10}}, path)
}

func TestFindPathFallsBackWhenNoNearbyNode(t *testing.T) {
	g := New()
	path := g.FindPath(geo.Vec2{X: 0, Y: 0}, geo.Vec2{X: 5, Y: 5})
	assert.Equal(t, []geo.Vec2{{X: 5, Y: 5}}, path)
}

func TestFindPathDeterministicTieBreak(t *testing.T) {
	// Two equal-length routes from a to d: a-b-d and a-c-d, both length 2.
	// The one whose edges were inserted first must win.
	g := New()
	a := g.AddNode(geo.Vec2{X: 0, Y: 0})
	b := g.AddNode(geo.Vec2{X: 1, Y: 0})
	c := g.AddNode(geo.Vec2{X: 0, Y: 1})
	d := g.AddNode(geo.Vec2{X: 1, Y: 1})
	g.AddEdge(a.ID, b.ID)
	g.AddEdge(b.ID, d.ID)
	g.AddEdge(a.ID, c.ID)
	g.AddEdge(c.ID, d.ID)

	path := g.FindPath(geo.Vec2{X: 0, Y: 0}, geo.Vec2{X: 1, Y: 1})
	assert.Equal(t, []geo.Vec2{a.Pos, b.Pos, d.Pos, {X: 1, Y: 1}}, path)
}
