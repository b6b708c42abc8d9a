// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package transport delivers encoded OSC packets. Sends are fire-and-forget:
// nothing is retried and callers are free to ignore the returned error.
package transport

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/myo_osc/internal/logging"
	"github.com/relabs-tech/myo_osc/internal/metrics"
)

// Sink accepts one complete packet per call. Implementations must not keep
// p after Send returns.
type Sink interface {
	Send(p []byte) error
	Close() error
}

// Multi sends every packet to all sinks.
type Multi []Sink

func (m Multi) Send(p []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Counting wraps a Sink, counting and debug-logging failed sends.
type Counting struct {
	name string
	next Sink
	log  zerolog.Logger
}

func NewCounting(name string, next Sink) *Counting {
	return &Counting{
		name: name,
		next: next,
		log:  logging.For("transport").With().Str("sink", name).Logger(),
	}
}

func (c *Counting) Send(p []byte) error {
	err := c.next.Send(p)
	if err != nil {
		metrics.RecordSendError(c.name)
		c.log.Debug().Err(err).Int("bytes", len(p)).Msg("send failed")
	}
	return err
}

func (c *Counting) Close() error { return c.next.Close() }
