// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package myo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/myo_osc/internal/logging"
)

// maxPaceGap caps the sleep between two paced records.
const maxPaceGap = time.Second

// StreamOptions configures a StreamHub.
type StreamOptions struct {
	// Paced replays records at the rate given by their timestamps instead
	// of as fast as they can be read.
	Paced bool
	// Commands, if set, receives device commands such as "emg on".
	Commands io.Writer
	// Closer is closed by Close, typically the underlying port or file.
	Closer io.Closer
	// Sleep is used for pacing; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// StreamHub reads text event records (see ParseRecord) from a byte stream.
// Reading happens on a background goroutine; events are dispatched from Run.
type StreamHub struct {
	dispatcher
	opts    StreamOptions
	log     zerolog.Logger
	events  chan Event
	readErr error         // set before events is closed
	done    chan struct{} // closed by Close
	exited  chan struct{} // closed when the reader returns
	once    sync.Once

	device  *streamDevice
	pending []Event
}

// NewStreamHub starts reading records from r.
func NewStreamHub(r io.Reader, opts StreamOptions) *StreamHub {
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	h := &StreamHub{
		opts:   opts,
		log:    logging.For("myo"),
		events: make(chan Event, 1024),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go h.read(r)
	return h
}

func (h *StreamHub) read(r io.Reader) {
	defer close(h.exited)
	defer close(h.events)

	scan := bufio.NewScanner(r)
	var lastTS uint64
	lineNum := 0
	for scan.Scan() {
		lineNum++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseRecord(line)
		if err != nil {
			h.log.Warn().Err(err).Int("line", lineNum).Msg("skipping malformed record")
			continue
		}
		if h.opts.Paced && lastTS != 0 && e.Timestamp > lastTS {
			gap := time.Duration(e.Timestamp-lastTS) * time.Microsecond
			h.opts.Sleep(min(gap, maxPaceGap))
		}
		lastTS = e.Timestamp
		select {
		case h.events <- e:
		case <-h.done:
			return
		}
	}
	h.readErr = scan.Err()
}

// WaitForDevice returns the device named by the first record received. A
// non-pair first record is kept and delivered by the next Run.
func (h *StreamHub) WaitForDevice(timeout time.Duration) (Device, error) {
	if h.device != nil {
		return h.device, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e, ok := <-h.events:
		if !ok {
			return nil, fmt.Errorf("%w: %w", ErrNoDevice, h.closedErr())
		}
		h.device = &streamDevice{id: e.DeviceID, commands: h.opts.Commands}
		if e.Kind != KindPair {
			h.pending = append(h.pending, e)
		}
		h.log.Debug().Str("device", e.DeviceID).Msg("device acquired")
		return h.device, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w within %s", ErrNoDevice, timeout)
	}
}

// Run dispatches events for up to d. It returns an error wrapping
// ErrSourceClosed once the stream has ended and every event was delivered.
func (h *StreamHub) Run(d time.Duration) error {
	for _, e := range h.pending {
		h.handle(e)
	}
	h.pending = nil

	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case e, ok := <-h.events:
			if !ok {
				return h.closedErr()
			}
			h.handle(e)
		case <-timer.C:
			return nil
		}
	}
}

func (h *StreamHub) handle(e Event) {
	if h.device == nil || e.DeviceID != h.device.id {
		h.log.Debug().Str("device", e.DeviceID).Stringer("kind", e.Kind).Msg("ignoring event from unacquired device")
		return
	}
	h.dispatch(e, h.device)
}

func (h *StreamHub) closedErr() error {
	if h.readErr != nil && !errors.Is(h.readErr, io.EOF) {
		return fmt.Errorf("%w: %w", ErrSourceClosed, h.readErr)
	}
	return ErrSourceClosed
}

// Close stops the reader and closes the underlying stream, if a Closer was
// given.
func (h *StreamHub) Close() error {
	h.once.Do(func() { close(h.done) })
	if h.opts.Closer == nil {
		return nil
	}
	return h.opts.Closer.Close()
}

type streamDevice struct {
	id       string
	commands io.Writer
}

func (d *streamDevice) ID() string { return d.id }

func (d *streamDevice) SetStreamEMG(enabled bool) error {
	if d.commands == nil {
		return nil
	}
	cmd := "emg off\n"
	if enabled {
		cmd = "emg on\n"
	}
	if _, err := io.WriteString(d.commands, cmd); err != nil {
		return fmt.Errorf("device %s: set emg streaming: %w", d.id, err)
	}
	return nil
}
