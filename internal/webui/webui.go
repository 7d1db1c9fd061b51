// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package webui serves a live WebSocket dashboard over the PDR engine:
// action/type message envelopes over a gorilla/websocket upgrader,
// relaying the engine's four outbound streams and accepting dashboard
// commands.
package webui

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/pdr_engine/internal/geo"
	"github.com/relabs-tech/pdr_engine/internal/pdr"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard, not exposed beyond the operator's LAN
	},
}

// WSMessage is an inbound command from the dashboard.
type WSMessage struct {
	Action string  `json:"action"` // toggle_recording, toggle_snapping, find_path, clear_graph
	StartX float64 `json:"start_x,omitempty"`
	StartY float64 `json:"start_y,omitempty"`
	EndX   float64 `json:"end_x,omitempty"`
	EndY   float64 `json:"end_y,omitempty"`
}

// WSResponse is an outbound event pushed to the dashboard.
type WSResponse struct {
	Type    string     `json:"type"` // position, heading, step_count, path_changed, path, error
	X       float64    `json:"x,omitempty"`
	Y       float64    `json:"y,omitempty"`
	Radians float64    `json:"radians,omitempty"`
	Count   int        `json:"count,omitempty"`
	Path    []geo.Vec2 `json:"path,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Session binds one WebSocket connection to the shared Engine.
type Session struct {
	conn   *websocket.Conn
	engine *pdr.Engine
	mu     sync.Mutex
}

// PositionResponse is the JSON body of GET /api/position.
type PositionResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeadingResponse is the JSON body of GET /api/heading.
type HeadingResponse struct {
	Radians float64 `json:"radians"`
}

// latestCache mirrors the engine's position/heading streams into a
// RWMutex-guarded cache the JSON API handlers can read without going
// through the engine's own lock.
type latestCache struct {
	mu sync.RWMutex

	havePosition bool
	position     geo.Vec2

	haveHeading bool
	heading     float64
}

func newLatestCache(engine *pdr.Engine) *latestCache {
	c := &latestCache{}
	engine.SubscribePosition(func(pos geo.Vec2) {
		c.mu.Lock()
		c.position, c.havePosition = pos, true
		c.mu.Unlock()
	})
	engine.SubscribeHeading(func(h float64) {
		c.mu.Lock()
		c.heading, c.haveHeading = h, true
		c.mu.Unlock()
	})
	return c
}

// HandleEngineWS upgrades the request and serves one dashboard
// session against engine until the connection closes.
func HandleEngineWS(engine *pdr.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("webui: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		s := &Session{conn: conn, engine: engine}
		s.attach()
		s.readLoop()
	}
}

// attach subscribes to the engine's four outbound streams and relays
// each emission to the dashboard as a WSResponse.
func (s *Session) attach() {
	s.engine.SubscribePosition(func(pos geo.Vec2) {
		s.send(WSResponse{Type: "position", X: pos.X, Y: pos.Y})
	})
	s.engine.SubscribeHeading(func(h float64) {
		s.send(WSResponse{Type: "heading", Radians: h})
	})
	s.engine.SubscribeStepCount(func(n int) {
		s.send(WSResponse{Type: "step_count", Count: n})
	})
	s.engine.SubscribePathChanged(func() {
		s.send(WSResponse{Type: "path_changed"})
	})
}

// readLoop processes inbound commands until the socket closes.
func (s *Session) readLoop() {
	for {
		var msg WSMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			log.Printf("webui: websocket read error: %v", err)
			return
		}

		switch msg.Action {
		case "toggle_recording":
			s.engine.ToggleRecording()
		case "toggle_snapping":
			s.engine.ToggleSnapping()
		case "clear_graph":
			s.engine.ClearGraph()
		case "find_path":
			path := s.engine.FindPath(
				geo.Vec2{X: msg.StartX, Y: msg.StartY},
				geo.Vec2{X: msg.EndX, Y: msg.EndY},
			)
			s.send(WSResponse{Type: "path", Path: path})
		default:
			s.send(WSResponse{Type: "error", Message: "unknown action: " + msg.Action})
		}
	}
}

func (s *Session) send(resp WSResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(resp); err != nil {
		log.Printf("webui: websocket write error: %v", err)
	}
}

// handlePosition serves the last published position as JSON, 503 until
// the engine has emitted at least one.
func handlePosition(cache *latestCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cache.mu.RLock()
		defer cache.mu.RUnlock()

		if !cache.havePosition {
			http.Error(w, "no position data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := PositionResponse{X: cache.position.X, Y: cache.position.Y}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("webui: position JSON encode error: %v", err)
		}
	}
}

// handleHeading serves the last published heading as JSON, 503 until
// the engine has emitted at least one.
func handleHeading(cache *latestCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cache.mu.RLock()
		defer cache.mu.RUnlock()

		if !cache.haveHeading {
			http.Error(w, "no heading data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := HeadingResponse{Radians: cache.heading}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("webui: heading JSON encode error: %v", err)
		}
	}
}

// handleGraph serves the live path graph as JSON. An empty graph
// encodes as empty node/edge maps rather than a 503 — an unrecorded
// graph is a valid, well-formed state, not missing data.
func handleGraph(engine *pdr.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(engine.Graph()); err != nil {
			log.Printf("webui: graph JSON encode error: %v", err)
		}
	}
}

// NewServeMux returns an http.ServeMux serving the dashboard WebSocket
// endpoint (at both /ws and /ws/events) plus the latest-value JSON API:
// GET /api/position, GET /api/heading, and GET /api/graph.
func NewServeMux(engine *pdr.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	cache := newLatestCache(engine)
	mux.HandleFunc("/api/position", handlePosition(cache))
	mux.HandleFunc("/api/heading", handleHeading(cache))
	mux.HandleFunc("/api/graph", handleGraph(engine))

	ws := HandleEngineWS(engine)
	mux.HandleFunc("/ws", ws)
	mux.HandleFunc("/ws/events", ws)

	return mux
}
