// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/pdr_engine/internal/config"
	"github.com/relabs-tech/pdr_engine/internal/transport"
)

func main() {
	log.Println("starting pdr-engine console (MQTT subscriber)")

	if err := config.InitGlobal("pdr_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	client, err := transport.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		log.Fatalf("MQTT connect error: %v", err)
	}
	log.Printf("console connected to MQTT broker at %s", cfg.MQTTBroker)

	err = transport.SubscribeDisplay(client, cfg,
		func(p transport.PositionPayload) {
			fmt.Printf("POS  x=%7.2f y=%7.2f\n", p.X, p.Y)
		},
		func(h transport.HeadingPayload) {
			fmt.Printf("HDG  %6.2f rad\n", h.Radians)
		},
		func(c transport.StepCountPayload) {
			fmt.Printf("STEP count=%d\n", c.Count)
		},
		func() {
			fmt.Println("PATH changed")
		},
	)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	log.Println("console subscribed to pdr-engine output topics")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console shutting down")
	client.Disconnect(250)
}
