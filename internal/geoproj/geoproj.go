// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package geoproj implements the equirectangular lat/lon projection
// collaborator: an out-of-core helper that turns an engine-local Vec2
// offset into an absolute WGS-84 coordinate given a fixed origin,
// entirely with stdlib math — this is a closed-form formula with no
// library surface to speak of, so no third-party dependency applies
// here (see DESIGN.md).
package geoproj

import (
	"math"

	"github.com/relabs-tech/pdr_engine/internal/geo"
)

// EarthRadiusMeters is the mean Earth radius used by the
// equirectangular approximation.
const EarthRadiusMeters = 6371000.0

// Origin anchors the local x/y engine frame to an absolute lat/lon.
type Origin struct {
	LatDeg float64
	LonDeg float64
}

// ToLatLon converts a local offset (meters, x east, y north) to an
// absolute coordinate using the equirectangular approximation:
//
//	dLat = y / R
//	dLon = x / (R * cos(lat))
//
// valid for offsets small relative to Earth's radius.
func (o Origin) ToLatLon(offset geo.Vec2) (latDeg, lonDeg float64) {
	latRad := o.LatDeg * math.Pi / 180

	dLat := offset.Y / EarthRadiusMeters
	dLon := offset.X / (EarthRadiusMeters * math.Cos(latRad))

	return o.LatDeg + dLat*180/math.Pi, o.LonDeg + dLon*180/math.Pi
}

// FromLatLon is the inverse of ToLatLon: given an absolute coordinate,
// returns the local offset relative to o.
func (o Origin) FromLatLon(latDeg, lonDeg float64) geo.Vec2 {
	latRad := o.LatDeg * math.Pi / 180

	dLat := (latDeg - o.LatDeg) * math.Pi / 180
	dLon := (lonDeg - o.LonDeg) * math.Pi / 180

	return geo.Vec2{
		X: dLon * EarthRadiusMeters * math.Cos(latRad),
		Y: dLat * EarthRadiusMeters,
	}
}
