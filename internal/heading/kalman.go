// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heading

import "math"

// Default Kalman tuning.
const (
	DefaultQ = 0.01
	DefaultR = 0.10
)

// KalmanState is a one-dimensional circular Kalman filter over heading,
// wrapped to (-pi, pi]. It is re-entered once per heading measurement.
type KalmanState struct {
	X float64 // heading estimate, radians
	P float64 // error covariance
	Q float64 // process noise
	R float64 // measurement noise
}

// NewKalmanState returns a filter with the reference default tuning,
// initial estimate 0, initial covariance 1.0.
func NewKalmanState() *KalmanState {
	return NewKalmanStateWithParams(DefaultQ, DefaultR)
}

// NewKalmanStateWithParams returns a filter tuned with deployment-
// specific process/measurement noise (e.g. from config.Config),
// initial estimate 0, initial covariance 1.0.
func NewKalmanStateWithParams(q, r float64) *KalmanState {
	return &KalmanState{X: 0, P: 1.0, Q: q, R: r}
}

// Update folds in one raw heading measurement z (radians) and returns
// the updated, wrapped heading estimate: predict, wrap the
// innovation, compute gain, update and wrap the estimate, then shrink
// the covariance.
func (k *KalmanState) Update(z float64) float64 {
	// 1. Predict.
	k.P += k.Q

	// 2. Innovation, wrapped into (-pi, pi].
	d := wrap(z - k.X)

	// 3. Gain.
	kg := k.P / (k.P + k.R)

	// 4. Update, wrapped.
	k.X = wrap(k.X + kg*d)

	// 5. Covariance.
	k.P = (1 - kg) * k.P

	return k.X
}

// wrap folds a into (-pi, pi] by adding or subtracting 2*pi once.
func wrap(a float64) float64 {
	if a > math.Pi {
		return a - 2*math.Pi
	}
	if a <= -math.Pi {
		return a + 2*math.Pi
	}
	return a
}
