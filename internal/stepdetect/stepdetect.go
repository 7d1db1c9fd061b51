// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package stepdetect implements peak detection on accelerometer
// magnitude with refractory timing.
package stepdetect

import "github.com/relabs-tech/pdr_engine/internal/geo"

const (
	// Threshold is the accelerometer-magnitude peak threshold, m/s².
	Threshold = 11.0
	// MinIntervalMS is the refractory interval, milliseconds.
	MinIntervalMS = 300
)

// Detector is a stateful step detector.
type Detector struct {
	threshold     float64
	minIntervalMS int64

	inPeak     bool
	lastStepMS int64
	haveStep   bool
	count      int
}

// New returns a ready-to-use Detector configured with the reference
// threshold and refractory interval.
func New() *Detector {
	return NewWithParams(Threshold, MinIntervalMS)
}

// NewWithParams returns a Detector configured with a deployment's
// calibrated threshold and refractory interval (e.g. from config.Config).
func NewWithParams(threshold float64, minIntervalMS int64) *Detector {
	return &Detector{threshold: threshold, minIntervalMS: minIntervalMS}
}

// Feed consumes one filtered accelerometer sample at wall-clock time
// nowMS (milliseconds since epoch) and reports whether a step was
// registered. On a registered step, StepCount() is already
// incremented before Feed returns.
func (d *Detector) Feed(acc geo.Vec3, nowMS int64) bool {
	// Clamp non-monotonic backward clock jumps so they cannot appear to
	// satisfy the refractory interval prematurely.
	if d.haveStep && nowMS < d.lastStepMS {
		nowMS = d.lastStepMS
	}

	m := acc.Length()

	if m > d.threshold {
		if !d.inPeak && (!d.haveStep || nowMS-d.lastStepMS > d.minIntervalMS) {
			d.inPeak = true
			d.lastStepMS = nowMS
			d.haveStep = true
			d.count++
			return true
		}
		return false
	}

	d.inPeak = false
	return false
}

// StepCount returns the monotonic count of steps registered so far.
func (d *Detector) StepCount() int { return d.count }

// Reset clears detector state, as on engine disposal or restart, while
// preserving the configured threshold and refractory interval.
func (d *Detector) Reset() {
	*d = Detector{threshold: d.threshold, minIntervalMS: d.minIntervalMS}
}
