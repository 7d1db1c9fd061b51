package geo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PrincipalAxis regresses a single straight line through points, per the
// path-manager finalize step: centroid, principal-axis angle from the
// 2x2 second-moment matrix, and the two points furthest apart along
// that axis (the new edge's candidate endpoints).
//
// atan2(2*Sxy, Sxx-Syy) is invariant to a common positive scale factor
// on Sxx, Sxy, Syy, so population covariances (which divide the raw
// second-moment sums by n) give the same angle as the raw second-moment
// sums would.
type PrincipalAxis struct {
	Centroid Vec2
	Angle    float64
	A, B     Vec2
}

// Regress computes the PrincipalAxis of points. Callers are expected to
// have already rejected inputs with fewer than 2 points or a
// degenerate (near-zero length) path; Regress itself does not reject.
func Regress(points []Vec2) PrincipalAxis {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	cx := stat.Mean(xs, nil)
	cy := stat.Mean(ys, nil)
	centroid := Vec2{X: cx, Y: cy}

	sxx := stat.PopCov(xs, xs, nil)
	syy := stat.PopCov(ys, ys, nil)
	sxy := stat.PopCov(xs, ys, nil)

	angle := 0.5 * math.Atan2(2*sxy, sxx-syy)
	dir := Vec2{X: math.Cos(angle), Y: math.Sin(angle)}

	projMin, projMax := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		proj := p.Sub(centroid).Dot(dir)
		if proj < projMin {
			projMin = proj
		}
		if proj > projMax {
			projMax = proj
		}
	}

	return PrincipalAxis{
		Centroid: centroid,
		Angle:    angle,
		A:        centroid.Add(dir.Scale(projMin)),
		B:        centroid.Add(dir.Scale(projMax)),
	}
}

// PolylineLength returns the total length of the polyline through points.
func PolylineLength(points []Vec2) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i].Distance(points[i-1])
	}
	return total
}
