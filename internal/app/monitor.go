// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/myo_osc/internal/logging"
	"github.com/relabs-tech/myo_osc/internal/osc"
)

// Monitor prints every OSC datagram it receives, one line per message.
type Monitor struct {
	out     io.Writer
	quiet   bool
	packets atomic.Int64
	bytes   atomic.Int64
	log     zerolog.Logger
}

// NewMonitor writes decoded messages to out. With quiet set only the
// per-second rate line is printed.
func NewMonitor(out io.Writer, quiet bool) *Monitor {
	return &Monitor{out: out, quiet: quiet, log: logging.For("monitor")}
}

// Handle decodes and prints one datagram.
func (m *Monitor) Handle(p []byte) {
	m.packets.Add(1)
	m.bytes.Add(int64(len(p)))

	msg, err := osc.ParseMessage(p)
	if err != nil {
		m.log.Warn().Err(err).Int("size", len(p)).Msg("undecodable datagram")
		return
	}
	if !m.quiet {
		fmt.Fprintln(m.out, msg.String())
	}
}

// reportRate prints and resets the counters.
func (m *Monitor) reportRate() {
	packets := m.packets.Swap(0)
	bytes := m.bytes.Swap(0)
	if packets > 0 {
		fmt.Fprintf(m.out, "Received: %d packets/sec, %.1f KB/sec\n", packets, float64(bytes)/1024)
	}
}

// Run listens on addr until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	defer conn.Close()

	fmt.Fprintf(m.out, "OSC monitor listening on %s\n", conn.LocalAddr())

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				m.reportRate()
			}
		}
	}()

	return m.serve(ctx, conn)
}

// serve reads datagrams from conn until ctx is cancelled. Read timeouts are
// skipped; any other read error ends the loop.
func (m *Monitor) serve(ctx context.Context, conn net.PacketConn) error {
	buffer := make([]byte, 65536)
	for {
		n, _, err := conn.ReadFrom(buffer)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				m.log.Debug().Err(err).Msg("read timeout")
				continue
			}
			return fmt.Errorf("read: %w", err)
		}
		m.Handle(buffer[:n])
	}
}
