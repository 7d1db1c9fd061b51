// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package heading implements tilt-compensated magnetic heading fused
// through a circular 1-D Kalman filter.
package heading

import (
	"math"

	"github.com/relabs-tech/pdr_engine/internal/geo"
)

// Estimator recomputes heading whenever a new accelerometer or
// magnetometer sample is available and both have been seen at least
// once.
type Estimator struct {
	filter *KalmanState

	haveAcc, haveMag bool
	acc, mag         geo.Vec3
}

// NewEstimator returns a ready-to-use Estimator with default Kalman
// tuning.
func NewEstimator() *Estimator {
	return &Estimator{filter: NewKalmanState()}
}

// NewEstimatorWithParams returns a ready-to-use Estimator with
// deployment-specific Kalman tuning (e.g. from config.Config).
func NewEstimatorWithParams(q, r float64) *Estimator {
	return &Estimator{filter: NewKalmanStateWithParams(q, r)}
}

// Heading returns the current filtered heading estimate without
// requiring a new sample.
func (e *Estimator) Heading() float64 { return e.filter.X }

// FeedAccel records a new filtered accelerometer sample and, if a
// magnetometer sample has already been seen, recomputes heading.
// Returns (heading, true) if a recompute happened.
func (e *Estimator) FeedAccel(acc geo.Vec3) (float64, bool) {
	if !acc.IsFinite() {
		return e.filter.X, false
	}
	e.acc = acc
	e.haveAcc = true
	return e.recompute()
}

// FeedMag records a new magnetometer sample and, if an accelerometer
// sample has already been seen, recomputes heading.
func (e *Estimator) FeedMag(mag geo.Vec3) (float64, bool) {
	if !mag.IsFinite() {
		return e.filter.X, false
	}
	e.mag = mag
	e.haveMag = true
	return e.recompute()
}

func (e *Estimator) recompute() (float64, bool) {
	if !e.haveAcc || !e.haveMag {
		return e.filter.X, false
	}

	norm := e.acc.Length()
	if norm == 0 {
		// Undefined normalization: skip this update.
		return e.filter.X, false
	}

	a := e.acc.Scale(1 / norm)
	pitch := math.Asin(-a.Y)
	roll := math.Atan2(a.X, a.Z)

	mx := e.mag.X*math.Cos(pitch) + e.mag.Z*math.Sin(pitch)
	my := e.mag.X*math.Sin(roll)*math.Sin(pitch) + e.mag.Y*math.Cos(roll) - e.mag.Z*math.Sin(roll)*math.Cos(pitch)

	raw := math.Atan2(-my, mx)

	return e.filter.Update(raw), true
}
