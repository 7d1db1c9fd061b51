// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/pdr_engine/internal/config"
	"github.com/relabs-tech/pdr_engine/internal/pdr"
	"github.com/relabs-tech/pdr_engine/internal/transport"
	"github.com/relabs-tech/pdr_engine/internal/webui"
)

func main() {
	log.Println("starting pdr-engine web server (MQTT subscriber + WebSocket dashboard)")

	if err := config.InitGlobal("pdr_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	client, err := transport.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		log.Fatalf("MQTT connect error: %v", err)
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	engine := pdr.NewWithConfig(cfg)
	engine.Start()
	defer engine.Dispose()

	sub := transport.NewSubscriber(client, cfg, engine)
	if err := sub.Start(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	mux := webui.NewServeMux(engine)
	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: dashboard listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
