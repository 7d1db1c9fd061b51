// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pdr implements the pedestrian dead reckoning integrator
// that glues the step detector, heading estimator, and path manager
// together: it updates the dead-reckoned position on every step,
// optionally records it into the path graph, optionally snaps the
// emitted position onto the graph, and publishes all four outbound
// streams.
package pdr

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/pdr_engine/internal/config"
	"github.com/relabs-tech/pdr_engine/internal/geo"
	"github.com/relabs-tech/pdr_engine/internal/heading"
	"github.com/relabs-tech/pdr_engine/internal/ingress"
	"github.com/relabs-tech/pdr_engine/internal/pathgraph"
	"github.com/relabs-tech/pdr_engine/internal/pathmgr"
	"github.com/relabs-tech/pdr_engine/internal/pubsub"
	"github.com/relabs-tech/pdr_engine/internal/stepdetect"
)

// StrideLength is the fixed stride length used for dead-reckoning
// integration, meters.
const StrideLength = 0.7

// InactivityTimeout is the one-shot auto-finalize delay while
// recording.
const InactivityTimeout = 2 * time.Second

// Clock abstracts wall-clock time so tests can drive the step detector
// deterministically without sleeping.
type Clock func() time.Time

// Engine is the PDR integrator. All mutation is serialized by mu,
// standing in for a single-threaded host event loop — sensor
// callbacks, timer fires, and user toggles are all funneled through
// the same lock rather than dispatched across goroutines.
type Engine struct {
	mu sync.Mutex

	ingress *ingress.Ingress
	steps   *stepdetect.Detector
	heading *heading.Estimator
	path    *pathmgr.Manager
	now     Clock

	strideLength      float64
	inactivityTimeout time.Duration

	x, y      float64
	recording bool
	snapping  bool
	started   bool
	disposed  bool

	inactivityTimer *time.Timer

	position     pubsub.Broadcaster[geo.Vec2]
	headingOut   pubsub.Broadcaster[float64]
	stepCountOut pubsub.Broadcaster[int]
	pathChanged  pubsub.Broadcaster[struct{}]
}

// New returns a ready-to-use, stopped, non-recording, snapping-enabled
// Engine using the reference constants.
func New() *Engine {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an injectable clock, for deterministic
// tests.
func NewWithClock(now Clock) *Engine {
	return newEngine(config.Defaults(), now)
}

// NewWithConfig builds an Engine whose step detector threshold and
// refractory interval, heading Kalman noise, stride length, path split
// threshold, minimum segment length, and inactivity timeout come from
// cfg instead of the reference constants. cfg.PathSnapThreshold and
// cfg.PathNodeSnapThreshold have no effect: the engine always snaps
// strictly, and routing always uses pathgraph.NodeSnapThreshold.
func NewWithConfig(cfg *config.Config) *Engine {
	return newEngine(cfg, time.Now)
}

// NewWithConfigAndClock is NewWithConfig with an injectable clock, for
// deterministic tests.
func NewWithConfigAndClock(cfg *config.Config, now Clock) *Engine {
	return newEngine(cfg, now)
}

func newEngine(cfg *config.Config, now Clock) *Engine {
	e := &Engine{
		ingress:           ingress.New(),
		steps:             stepdetect.NewWithParams(cfg.StepThreshold, cfg.StepMinIntervalMS),
		heading:           heading.NewEstimatorWithParams(cfg.HeadingKalmanQ, cfg.HeadingKalmanR),
		path:              pathmgr.NewWithParams(cfg.PathSnapThreshold, cfg.PathSplitThreshold, cfg.PathMinSegmentLength),
		now:               now,
		strideLength:      cfg.StrideLength,
		inactivityTimeout: time.Duration(cfg.InactivityTimeoutMS) * time.Millisecond,
	}
	e.snapping = true

	// Wired once, permanently: this is internal plumbing from ingress
	// to the engine's own processing, not an external "latest value"
	// observer, so it must not be re-subscribed on every Start() — the
	// ingress broadcasters never forget their cached latest value
	// (only Ingress.Stop's filter state resets), and re-subscribing
	// after a sample has flowed would replay it synchronously while
	// e.mu is already held by Start(), deadlocking on re-entry.
	e.ingress.Accel.Subscribe(func(acc geo.Vec3) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.started {
			return
		}
		e.onFilteredAccel(acc)
	})
	e.ingress.Mag.Subscribe(func(mag geo.Vec3) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.started {
			return
		}
		if h, ok := e.heading.FeedMag(mag); ok {
			e.headingOut.Publish(h)
		}
	})

	return e
}

// Start flips the engine into the processing state: the sensor-ingress
// subscriptions are wired once at construction and gated on this flag,
// so Start only needs to flip it. Idempotent.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.disposed {
		return
	}
	e.started = true
}

// Stop pauses the engine's internal logic and clears the low-pass
// filter state, so a subsequent start begins from the next sample.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = false
	e.ingress.Stop()
}

// Dispose closes all output streams, cancels sensor subscriptions, and
// cancels timers, in that order. Idempotent.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.position.Reset()
	e.headingOut.Reset()
	e.stepCountOut.Reset()
	e.pathChanged.Reset()

	e.started = false

	e.cancelInactivityTimerLocked()
	e.disposed = true
}

// --- inbound sensor contract ---

// FeedAccel pushes one raw accelerometer sample, m/s², device axes.
func (e *Engine) FeedAccel(raw geo.Vec3) {
	e.ingress.FeedAccel(raw)
}

// FeedMag pushes one raw magnetometer sample, arbitrary sign-consistent units.
func (e *Engine) FeedMag(raw geo.Vec3) {
	e.ingress.FeedMag(raw)
}

// FeedGyro pushes one raw gyroscope sample, rad/s. Accepted, unused by
// the core today.
func (e *Engine) FeedGyro(raw geo.Vec3) {
	e.ingress.FeedGyro(raw)
}

// onFilteredAccel runs step detection on a filtered accelerometer
// sample and, on a detected step, drives the full integration: heading
// recompute is independent (handled by onFilteredAccel's own call into
// the heading estimator so heading keeps updating off the same
// filtered accel stream), then the step handler updates position,
// recording, and snapping, then emits step_count followed by
// position.
func (e *Engine) onFilteredAccel(acc geo.Vec3) {
	if h, ok := e.heading.FeedAccel(acc); ok {
		e.headingOut.Publish(h)
	}

	if e.steps.Feed(acc, e.now().UnixMilli()) {
		e.onStep()
	}
}

// onStep is the step handler: integrates position using the current
// filtered heading and fixed stride, applies the recording and
// snapping side-effects, and emits step_count then position.
func (e *Engine) onStep() {
	h := e.heading.Heading()

	e.x += e.strideLength * math.Sin(h)
	e.y -= e.strideLength * math.Cos(h)
	raw := geo.Vec2{X: e.x, Y: e.y}

	if e.recording {
		e.path.AppendStep(raw)
		e.resetInactivityTimerLocked()
	}

	out := raw
	if e.snapping && e.path.HasPath() {
		out = e.path.SnapStrict(raw)
	}

	e.stepCountOut.Publish(e.steps.StepCount())
	e.position.Publish(out)
}

// --- observer registry ---

// SubscribePosition registers fn for future position emissions and,
// if a position has already been emitted, calls fn with the latest one
// immediately.
func (e *Engine) SubscribePosition(fn func(geo.Vec2)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position.Subscribe(fn)
}

// SubscribeHeading registers fn for future heading emissions and, if a
// heading has already been emitted, calls fn with the latest one
// immediately.
func (e *Engine) SubscribeHeading(fn func(float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.headingOut.Subscribe(fn)
}

// SubscribeStepCount registers fn for future step-count emissions and,
// if a count has already been emitted, calls fn with the latest one
// immediately.
func (e *Engine) SubscribeStepCount(fn func(int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stepCountOut.Subscribe(fn)
}

// SubscribePathChanged registers fn for every finalize/split
// notification; if one has already been emitted, fn is also called
// once immediately.
func (e *Engine) SubscribePathChanged(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pathChanged.Subscribe(func(struct{}) { fn() })
}

// --- command surface ---

// ToggleRecording flips the recording flag and runs the corresponding
// start/stop transition. No-op (and no emission) if toggling off
// while never on.
func (e *Engine) ToggleRecording() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.recording {
		e.recording = true
		e.snapping = false
		if _, ok := e.path.PrepareForNewRecording(geo.Vec2{X: e.x, Y: e.y}); !ok {
			log.Printf("pathmgr: recording started in empty space, no anchor")
		}
		return
	}

	e.recording = false
	e.cancelInactivityTimerLocked()
	if e.path.FinalizeSegment() {
		e.pathChanged.Publish(struct{}{})
	}
	e.snapping = true
}

// ToggleSnapping flips the snapping flag.
func (e *Engine) ToggleSnapping() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapping = !e.snapping
}

// FindPath delegates to the path manager's routing logic.
func (e *Engine) FindPath(start, end geo.Vec2) []geo.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path.FindPath(start, end)
}

// ClearGraph discards the entire path graph on explicit user request.
func (e *Engine) ClearGraph() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.path.ClearGraph()
}

// IsRecording reports whether the engine is currently recording.
func (e *Engine) IsRecording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recording
}

// IsSnapping reports whether snapping is currently enabled.
func (e *Engine) IsSnapping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapping
}

// HasPath reports whether the graph has any edges.
func (e *Engine) HasPath() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path.HasPath()
}

// Graph returns the live path graph. Callers must treat it as
// read-only — the path manager is the sole owner and mutator.
func (e *Engine) Graph() *pathgraph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path.Graph
}

// StepCount returns the current monotonic step count.
func (e *Engine) StepCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps.StepCount()
}

// --- inactivity timer ---

func (e *Engine) resetInactivityTimerLocked() {
	e.cancelInactivityTimerLocked()
	e.inactivityTimer = time.AfterFunc(e.inactivityTimeout, e.onInactivityFired)
}

func (e *Engine) cancelInactivityTimerLocked() {
	if e.inactivityTimer != nil {
		e.inactivityTimer.Stop()
		e.inactivityTimer = nil
	}
}

// onInactivityFired runs on the timer's own goroutine; it acquires mu
// like every other entry point, posting its work back through the
// same critical section the rest of the engine uses.
func (e *Engine) onInactivityFired() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.recording || e.disposed {
		return
	}
	e.inactivityTimer = nil
	if e.path.FinalizeSegment() {
		e.pathChanged.Publish(struct{}{})
	}
}
