// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package transport bridges the PDR engine's inbound sensor contract
// and outbound observer contract onto MQTT: a publish-subscribe bridge
// carrying accel/mag/gyro samples in and position/heading/step_count/
// path_changed events out.
package transport

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/pdr_engine/internal/config"
	"github.com/relabs-tech/pdr_engine/internal/geo"
	"github.com/relabs-tech/pdr_engine/internal/pdr"
)

// Vec3Payload is the wire representation of a raw sensor sample.
type Vec3Payload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PositionPayload is the wire representation of an emitted position.
type PositionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeadingPayload is the wire representation of an emitted heading,
// radians.
type HeadingPayload struct {
	Radians float64 `json:"radians"`
}

// StepCountPayload is the wire representation of an emitted step count.
type StepCountPayload struct {
	Count int `json:"count"`
}

// Connect dials broker with the given client id and returns a ready
// client, or an error if the connection fails.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	return client, nil
}

// Subscriber feeds an Engine's inbound sensor contract from MQTT
// topics carrying JSON-encoded Vec3Payload messages.
type Subscriber struct {
	client mqtt.Client
	engine *pdr.Engine
}

// NewSubscriber returns a Subscriber bound to client and engine. It
// subscribes to nothing and does not read cfg; Start wires cfg's
// accel/mag/gyro topics into engine.FeedAccel/FeedMag/FeedGyro.
func NewSubscriber(client mqtt.Client, cfg *config.Config, engine *pdr.Engine) *Subscriber {
	return &Subscriber{client: client, engine: engine}
}

// Start subscribes to the three inbound topics. Returns the first
// subscribe error, if any; subsequent topics are still attempted so a
// single bad topic name doesn't take down the whole bridge.
func (s *Subscriber) Start(cfg *config.Config) error {
	var firstErr error
	sub := func(topic string, feed func(geo.Vec3)) {
		if topic == "" {
			return
		}
		token := s.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var p Vec3Payload
			if err := json.Unmarshal(msg.Payload(), &p); err != nil {
				log.Printf("transport: unmarshal error on %s: %v", topic, err)
				return
			}
			feed(geo.Vec3{X: p.X, Y: p.Y, Z: p.Z})
		})
		if token.Wait() && token.Error() != nil && firstErr == nil {
			firstErr = fmt.Errorf("subscribe %s: %w", topic, token.Error())
		}
	}

	sub(cfg.TopicAccel, s.engine.FeedAccel)
	sub(cfg.TopicMag, s.engine.FeedMag)
	sub(cfg.TopicGyro, s.engine.FeedGyro)
	return firstErr
}

// Publisher subscribes to an Engine's outbound observer contract and
// republishes every emission as retained JSON on MQTT.
type Publisher struct {
	client mqtt.Client
	cfg    *config.Config
}

// NewPublisher wires engine's four outbound streams onto client using
// cfg's topics. Each subscription callback is one JSON-marshal-then-
// publish call.
func NewPublisher(client mqtt.Client, cfg *config.Config, engine *pdr.Engine) *Publisher {
	p := &Publisher{client: client, cfg: cfg}

	engine.SubscribePosition(func(pos geo.Vec2) {
		p.publish(cfg.TopicPosition, PositionPayload{X: pos.X, Y: pos.Y})
	})
	engine.SubscribeHeading(func(h float64) {
		p.publish(cfg.TopicHeading, HeadingPayload{Radians: h})
	})
	engine.SubscribeStepCount(func(n int) {
		p.publish(cfg.TopicStepCount, StepCountPayload{Count: n})
	})
	engine.SubscribePathChanged(func() {
		p.publish(cfg.TopicPathChanged, struct{}{})
	})

	return p
}

func (p *Publisher) publish(topic string, v any) {
	if topic == "" {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("transport: marshal error for %s: %v", topic, err)
		return
	}
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("transport: MQTT publish error on %s: %v", topic, token.Error())
	}
}

// SubscribeDisplay subscribes to the four outbound topics directly and
// invokes the matching callback on each decoded message, without
// reconstructing an Engine: a display-only console is a pure listener
// on a producer's output, never a second computer of it. Any nil
// callback is simply not invoked.
func SubscribeDisplay(client mqtt.Client, cfg *config.Config, onPosition func(PositionPayload), onHeading func(HeadingPayload), onStepCount func(StepCountPayload), onPathChanged func()) error {
	var firstErr error

	subJSON := func(topic string, decode func([]byte)) {
		if topic == "" {
			return
		}
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			decode(msg.Payload())
		})
		if token.Wait() && token.Error() != nil && firstErr == nil {
			firstErr = fmt.Errorf("subscribe %s: %w", topic, token.Error())
		}
	}

	if onPosition != nil {
		subJSON(cfg.TopicPosition, func(b []byte) {
			var p PositionPayload
			if err := json.Unmarshal(b, &p); err != nil {
				log.Printf("transport: unmarshal error on %s: %v", cfg.TopicPosition, err)
				return
			}
			onPosition(p)
		})
	}
	if onHeading != nil {
		subJSON(cfg.TopicHeading, func(b []byte) {
			var h HeadingPayload
			if err := json.Unmarshal(b, &h); err != nil {
				log.Printf("transport: unmarshal error on %s: %v", cfg.TopicHeading, err)
				return
			}
			onHeading(h)
		})
	}
	if onStepCount != nil {
		subJSON(cfg.TopicStepCount, func(b []byte) {
			var c StepCountPayload
			if err := json.Unmarshal(b, &c); err != nil {
				log.Printf("transport: unmarshal error on %s: %v", cfg.TopicStepCount, err)
				return
			}
			onStepCount(c)
		})
	}
	if onPathChanged != nil {
		subJSON(cfg.TopicPathChanged, func(b []byte) {
			onPathChanged()
		})
	}

	return firstErr
}
