// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/pdr_engine/internal/geo"
	"github.com/relabs-tech/pdr_engine/internal/pdr"
)

// synthesizeStep returns the accelerometer and magnetometer samples for
// elapsed seconds: the accelerometer's Z component spikes above the step
// threshold once per cycle of sin(6*elapsed), and the magnetometer
// slowly rotates heading, so the mock feed exercises step detection,
// heading fusion, and position integration end to end without real
// hardware.
func synthesizeStep(elapsed float64) (acc, mag geo.Vec3) {
	// A sharp accel spike simulates one footfall impact.
	spike := 9.8 + 6*math.Max(0, math.Sin(elapsed*6))
	acc = geo.Vec3{X: 0, Y: -1, Z: spike}

	heading := elapsed * 0.1 // slow rotation, radians/sec
	mag = geo.Vec3{X: math.Cos(heading), Y: math.Sin(heading), Z: 0}
	return acc, mag
}

func main() {
	fmt.Println("starting pdr-engine mock console")

	engine := pdr.New()
	engine.Start()
	defer engine.Dispose()

	engine.SubscribePosition(func(pos geo.Vec2) {
		fmt.Printf("POS  x=%7.2f y=%7.2f\n", pos.X, pos.Y)
	})
	engine.SubscribeHeading(func(h float64) {
		fmt.Printf("HDG  %6.2f rad\n", h)
	})
	engine.SubscribeStepCount(func(n int) {
		fmt.Printf("STEP count=%d\n", n)
	})

	start := time.Now()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		elapsed := time.Since(start).Seconds()
		acc, mag := synthesizeStep(elapsed)
		engine.FeedAccel(acc)
		engine.FeedMag(mag)
	}
}
