// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/myo_osc/internal/logging"
	"github.com/relabs-tech/myo_osc/internal/myo"
	"github.com/relabs-tech/myo_osc/internal/state"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	// DefaultPumpInterval refreshes the status output 50 times a second.
	DefaultPumpInterval = 20 * time.Millisecond
)

// Renderer receives a copy of the state after every pump.
type Renderer interface {
	Render(s state.State)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(s state.State)

func (f RenderFunc) Render(s state.State) { f(s) }

// DriverConfig holds the loop timing.
type DriverConfig struct {
	ConnectTimeout time.Duration
	PumpInterval   time.Duration
}

// Driver acquires one device and then alternates between pumping the hub
// and rendering the state. Rendering never overlaps a pump, which is what
// lets State go without a lock.
type Driver struct {
	hub        myo.Hub
	state      *state.State
	translator *Translator
	renderers  []Renderer
	cfg        DriverConfig
	log        zerolog.Logger
	device     myo.Device
}

func NewDriver(hub myo.Hub, st *state.State, tr *Translator, cfg DriverConfig, renderers ...Renderer) *Driver {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.PumpInterval <= 0 {
		cfg.PumpInterval = DefaultPumpInterval
	}
	return &Driver{
		hub:        hub,
		state:      st,
		translator: tr,
		renderers:  renderers,
		cfg:        cfg,
		log:        logging.For("driver"),
	}
}

// Connect waits for a device, enables EMG streaming on it and registers the
// translator. Failure is final; there is no retry.
func (d *Driver) Connect() (myo.Device, error) {
	dev, err := d.hub.WaitForDevice(d.cfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("acquire device: %w", err)
	}
	if err := dev.SetStreamEMG(true); err != nil {
		return nil, fmt.Errorf("enable emg streaming: %w", err)
	}
	d.hub.AddListener(d.translator)
	d.device = dev
	d.log.Info().Str("device", dev.ID()).Msg("streaming")
	return dev, nil
}

// Step pumps the hub once and renders.
func (d *Driver) Step() error {
	if err := d.hub.Run(d.cfg.PumpInterval); err != nil {
		return err
	}
	snap := d.state.Snapshot()
	for _, r := range d.renderers {
		r.Render(snap)
	}
	return nil
}

// Run loops until a pump fails or ctx is cancelled. Connect must have
// succeeded first.
func (d *Driver) Run(ctx context.Context) error {
	if d.device == nil {
		return fmt.Errorf("driver: run before connect: %w", myo.ErrNoDevice)
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := d.Step(); err != nil {
			return fmt.Errorf("pump: %w", err)
		}
	}
}
