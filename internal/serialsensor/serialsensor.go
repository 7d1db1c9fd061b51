// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package serialsensor implements the inbound sensor contract over a
// raw serial link: a line-delimited JSON sensor-sample protocol read
// from a serial-attached sensor board.
package serialsensor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/pdr_engine/internal/geo"
	"github.com/relabs-tech/pdr_engine/internal/pdr"
)

// Sample is one line of the wire protocol: {"src":"accel","x":...}.
// src is one of "accel", "mag", "gyro".
type Sample struct {
	Source string  `json:"src"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}

// Open opens portName at baudRate with an 8-N-1 frame and an
// unbuffered minimum read size.
func Open(portName string, baudRate int) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return port, nil
}

// Run reads newline-delimited Sample JSON from r until EOF or a read
// error, feeding each decoded sample into engine's matching inbound
// channel. A malformed line is logged and skipped, not fatal — serial
// input is noisy and a single bad line should not end the session.
func Run(r io.Reader, engine *pdr.Engine) error {
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("serial read error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var s Sample
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			log.Printf("serialsensor: malformed line, skipping: %v", err)
			continue
		}

		v := geo.Vec3{X: s.X, Y: s.Y, Z: s.Z}
		switch s.Source {
		case "accel":
			engine.FeedAccel(v)
		case "mag":
			engine.FeedMag(v)
		case "gyro":
			engine.FeedGyro(v)
		default:
			log.Printf("serialsensor: unknown source %q, skipping", s.Source)
		}
	}
}
