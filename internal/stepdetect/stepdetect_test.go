// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stepdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/pdr_engine/internal/geo"
)

func TestFeedRegistersOneStepPerPeak(t *testing.T) {
	d := New()

	// Rising above threshold registers a step.
	got := d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 0)
	assert.True(t, got)
	assert.Equal(t, 1, d.StepCount())

	// Staying above threshold does not register a second step.
	got = d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 10)
	assert.False(t, got)
	assert.Equal(t, 1, d.StepCount())
}

func TestFeedRefractoryInterval(t *testing.T) {
	d := New()

	assert.True(t, d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 0))

	// Drop below threshold, then rise again before MinIntervalMS elapses.
	d.Feed(geo.Vec3{X: 0, Y: 0, Z: 0}, 50)
	got := d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 100)
	assert.False(t, got, "step inside refractory window must be rejected")
	assert.Equal(t, 1, d.StepCount())

	// Past the refractory window, a new peak registers.
	d.Feed(geo.Vec3{X: 0, Y: 0, Z: 0}, 350)
	got = d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 400)
	assert.True(t, got)
	assert.Equal(t, 2, d.StepCount())
}

func TestFeedClampsBackwardClockJumps(t *testing.T) {
	d := New()
	assert.True(t, d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 1000))

	d.Feed(geo.Vec3{X: 0, Y: 0, Z: 0}, 1010)
	// A backward jump to an earlier timestamp must not look like it
	// satisfies the refractory interval.
	got := d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 500)
	assert.False(t, got)
}

func TestReset(t *testing.T) {
	d := New()
	d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 0)
	assert.Equal(t, 1, d.StepCount())

	d.Reset()
	assert.Equal(t, 0, d.StepCount())

	// A fresh peak after reset registers immediately, unconstrained by
	// the pre-reset refractory window.
	got := d.Feed(geo.Vec3{X: 0, Y: 0, Z: Threshold + 1}, 1)
	assert.True(t, got)
}

func TestNewWithParams(t *testing.T) {
	d := NewWithParams(5.0, 100)
	assert.True(t, d.Feed(geo.Vec3{X: 0, Y: 0, Z: 6}, 0))
	assert.False(t, d.Feed(geo.Vec3{X: 0, Y: 0, Z: 4}, 10) /* below custom threshold */)
}
