// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package ingress filters and rebroadcasts raw sensor samples. The
// accelerometer stream is passed through a first-order IIR
// low-pass filter; the magnetometer stream is forwarded unchanged.
// Gyroscope samples are accepted for possible future fusion but are
// not touched by the core.
package ingress

import (
	"github.com/relabs-tech/pdr_engine/internal/geo"
	"github.com/relabs-tech/pdr_engine/internal/pubsub"
)

// Alpha is the low-pass filter coefficient: y[n] = (1-alpha)*y[n-1] + alpha*x[n].
const Alpha = 0.10

// Ingress owns the three broadcast subjects and the accelerometer
// low-pass filter state.
type Ingress struct {
	Accel pubsub.Broadcaster[geo.Vec3]
	Mag   pubsub.Broadcaster[geo.Vec3]
	Gyro  pubsub.Broadcaster[geo.Vec3]

	haveFilter bool
	filtered   geo.Vec3
}

// New returns a ready-to-use Ingress.
func New() *Ingress { return &Ingress{} }

// FeedAccel applies the low-pass filter to a raw accelerometer sample
// and publishes the result. NaN/Inf samples are dropped silently,
// retaining previous filter state.
func (g *Ingress) FeedAccel(raw geo.Vec3) {
	if !raw.IsFinite() {
		return
	}
	if !g.haveFilter {
		g.filtered = raw
		g.haveFilter = true
	} else {
		g.filtered = g.filtered.Scale(1 - Alpha).Add(raw.Scale(Alpha))
	}
	g.Accel.Publish(g.filtered)
}

// FeedMag forwards a raw magnetometer sample unchanged.
func (g *Ingress) FeedMag(raw geo.Vec3) {
	if !raw.IsFinite() {
		return
	}
	g.Mag.Publish(raw)
}

// FeedGyro forwards a raw gyroscope sample unchanged. Unused by the
// core today; kept for future fusion.
func (g *Ingress) FeedGyro(raw geo.Vec3) {
	if !raw.IsFinite() {
		return
	}
	g.Gyro.Publish(raw)
}

// Stop clears the low-pass filter state so a subsequent start begins
// from the next sample.
func (g *Ingress) Stop() {
	g.haveFilter = false
	g.filtered = geo.Vec3{}
}
