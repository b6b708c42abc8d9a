// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/relabs-tech/myo_osc/internal/logging"
	"github.com/relabs-tech/myo_osc/internal/metrics"
	"github.com/relabs-tech/myo_osc/internal/state"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // status page is served to the local network
	},
}

const wsWriteTimeout = 2 * time.Second

// StatusServer keeps the latest state snapshot and serves it over HTTP.
// It is a bridge.Renderer: Render is called from the pump loop, handlers
// run on server goroutines.
type StatusServer struct {
	mu      sync.RWMutex
	last    state.State
	have    bool
	clients map[*wsClient]struct{}
	log     zerolog.Logger
}

// wsClient holds at most one pending snapshot; a slow client only ever
// sees the newest one.
type wsClient struct {
	conn *websocket.Conn
	send chan state.State
}

func NewStatusServer() *StatusServer {
	return &StatusServer{
		clients: make(map[*wsClient]struct{}),
		log:     logging.For("web"),
	}
}

// Render stores s and queues it for every websocket client.
func (s *StatusServer) Render(st state.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = st
	s.have = true
	for c := range s.clients {
		c.offer(st)
	}
}

func (c *wsClient) offer(st state.State) {
	select {
	case c.send <- st:
		return
	default:
	}
	// replace the stale pending snapshot
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- st:
	default:
	}
}

// Handler routes /api/state, /ws and /metrics.
func (s *StatusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (s *StatusServer) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st, have := s.last, s.have
	s.mu.RUnlock()

	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.log.Warn().Err(err).Msg("json encode error")
	}
}

func (s *StatusServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	c := &wsClient{conn: conn, send: make(chan state.State, 1)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.have {
		c.offer(s.last)
	}
	s.mu.Unlock()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	go s.writeLoop(c)

	// Inbound messages are ignored; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, c)
	close(c.send)
	s.mu.Unlock()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client gone")
}

func (s *StatusServer) writeLoop(c *wsClient) {
	defer c.conn.Close()
	for st := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteJSON(st); err != nil {
			s.log.Debug().Err(err).Msg("websocket write error")
			return
		}
	}
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (s *StatusServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", addr).Msg("web server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
