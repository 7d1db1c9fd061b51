// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/pdr_engine/internal/config"
	"github.com/relabs-tech/pdr_engine/internal/pdr"
	"github.com/relabs-tech/pdr_engine/internal/serialsensor"
	"github.com/relabs-tech/pdr_engine/internal/transport"
)

func main() {
	log.Println("starting pdr-engine producer (serial sensor -> MQTT)")

	if err := config.InitGlobal("pdr_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	client, err := transport.Connect(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		log.Fatalf("MQTT connect error: %v", err)
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	engine := pdr.NewWithConfig(cfg)
	engine.Start()
	defer engine.Dispose()

	transport.NewPublisher(client, cfg, engine)

	port, err := serialsensor.Open(cfg.SerialPort, cfg.BaudRate)
	if err != nil {
		log.Fatalf("failed to open serial sensor port: %v", err)
	}
	defer port.Close()
	log.Printf("serial sensor port opened on %s at %d baud", cfg.SerialPort, cfg.BaudRate)

	if err := serialsensor.Run(port, engine); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
