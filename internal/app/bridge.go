// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/relabs-tech/myo_osc/internal/bridge"
	"github.com/relabs-tech/myo_osc/internal/config"
	"github.com/relabs-tech/myo_osc/internal/console"
	"github.com/relabs-tech/myo_osc/internal/logging"
	"github.com/relabs-tech/myo_osc/internal/myo"
	"github.com/relabs-tech/myo_osc/internal/state"
	"github.com/relabs-tech/myo_osc/internal/transport"
)

// RunBridge connects to a device and streams its events as OSC until ctx
// is cancelled or the event source fails. User-facing progress goes to
// stdout, which also carries the status line.
func RunBridge(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	log := logging.For("app")

	fmt.Fprintf(stdout, "Sending Myo OSC to %s:%d\n", cfg.OSCHost, cfg.OSCPort)

	sink, err := openSinks(cfg, log)
	if err != nil {
		return err
	}
	defer sink.Close()

	hub, err := openHub(cfg)
	if err != nil {
		return err
	}
	defer hub.Close()

	st := &state.State{}
	tr := bridge.NewTranslator(st, sink, bridge.Options{
		EmitDisconnect:   cfg.EmitDisconnect,
		EmitArmDirection: cfg.EmitArmDirection,
	})

	var renderers []bridge.Renderer
	if cfg.StatusLine {
		renderers = append(renderers, console.NewPrinter(stdout))
	}
	if cfg.WebServerPort > 0 {
		web := NewStatusServer()
		renderers = append(renderers, web)
		go func() {
			if err := web.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.WebServerPort)); err != nil {
				log.Error().Err(err).Msg("web server stopped")
			}
		}()
	}

	drv := bridge.NewDriver(hub, st, tr, bridge.DriverConfig{
		ConnectTimeout: cfg.ConnectTimeout(),
		PumpInterval:   cfg.PumpInterval(),
	}, renderers...)

	fmt.Fprintln(stdout, "Attempting to find a Myo...")
	if _, err := drv.Connect(); err != nil {
		if errors.Is(err, myo.ErrNoDevice) {
			return errors.New("Unable to find a Myo!")
		}
		return err
	}
	fmt.Fprint(stdout, "Connected to a Myo armband!\n\n")

	err = drv.Run(ctx)
	if cfg.StatusLine {
		fmt.Fprintln(stdout)
	}
	if errors.Is(err, myo.ErrSourceClosed) && cfg.Source == config.SourceReplay {
		log.Info().Str("file", cfg.ReplayFile).Msg("replay finished")
		return nil
	}
	return err
}

// newMQTTSink is swapped in tests.
var newMQTTSink = func(broker, clientID, prefix string) (transport.Sink, error) {
	return transport.NewMQTTSink(broker, clientID, prefix)
}

// openSinks builds the UDP sink and, when a broker is configured, the MQTT
// mirror next to it.
func openSinks(cfg *config.Config, log zerolog.Logger) (transport.Sink, error) {
	udp, err := transport.NewUDPSink(cfg.OSCHost, cfg.OSCPort)
	if err != nil {
		return nil, err
	}
	sinks := transport.Multi{transport.NewCounting("udp", udp)}

	if cfg.MQTTBroker != "" {
		clientID := cfg.MQTTClientID
		if clientID == "" {
			clientID = "myo-osc-" + uuid.NewString()
		}
		mq, err := newMQTTSink(cfg.MQTTBroker, clientID, cfg.MQTTTopicPrefix)
		if err != nil {
			udp.Close()
			return nil, err
		}
		log.Info().Str("broker", cfg.MQTTBroker).Str("client_id", clientID).Msg("mirroring OSC to MQTT")
		sinks = append(sinks, transport.NewCounting("mqtt", mq))
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

func openHub(cfg *config.Config) (myo.Hub, error) {
	switch cfg.Source {
	case config.SourceSerial:
		return myo.OpenSerialHub(cfg.SerialPort, cfg.SerialBaudRate, cfg.AppID)
	case config.SourceReplay:
		return myo.OpenReplayHub(cfg.ReplayFile)
	case config.SourceMock:
		return myo.NewMockHub(), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalid, cfg.Source)
	}
}
