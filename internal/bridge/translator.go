// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bridge turns device events into OSC messages and drives the
// pump/render loop.
package bridge

import (
	"github.com/rs/zerolog"

	"github.com/relabs-tech/myo_osc/internal/logging"
	"github.com/relabs-tech/myo_osc/internal/metrics"
	"github.com/relabs-tech/myo_osc/internal/myo"
	"github.com/relabs-tech/myo_osc/internal/osc"
	"github.com/relabs-tech/myo_osc/internal/state"
	"github.com/relabs-tech/myo_osc/internal/transport"
)

// OSC addresses, one per outbound event kind.
const (
	AddrEMG        = "/myo/emg"
	AddrOrient     = "/myo/orient"
	AddrAccel      = "/myo/accel"
	AddrGyro       = "/myo/gyro"
	AddrOnArm      = "/myo/onarm"
	AddrOnArmLost  = "/myo/onarmlost"
	AddrDisconnect = "/myo/disconnect"
)

// Options enables messages beyond the default set.
type Options struct {
	// EmitDisconnect sends AddrDisconnect with no arguments on disconnect.
	EmitDisconnect bool
	// EmitArmDirection adds the forearm direction as a second AddrOnArm
	// argument: "wrist", "elbow" or "unknown".
	EmitArmDirection bool
}

// Translator is the device listener. It updates the State and sends one
// message per event through the sink. It is not safe for concurrent use.
type Translator struct {
	state *state.State
	sink  transport.Sink
	opts  Options
	log   zerolog.Logger
	buf   osc.Buffer
}

var _ myo.Listener = (*Translator)(nil)

func NewTranslator(st *state.State, sink transport.Sink, opts Options) *Translator {
	return &Translator{
		state: st,
		sink:  sink,
		opts:  opts,
		log:   logging.For("bridge"),
	}
}

func (t *Translator) OnDisconnect(dev myo.Device, _ uint64) {
	t.state.Disconnect()
	metrics.RecordDisconnect()
	t.log.Info().Str("device", dev.ID()).Msg("device disconnected")
	if t.opts.EmitDisconnect {
		t.send(osc.NewMessage(AddrDisconnect))
	}
}

func (t *Translator) OnEMG(_ myo.Device, _ uint64, emg [8]int8) {
	t.state.SetEMG(emg)
	args := make([]osc.Arg, len(emg))
	for i, v := range emg {
		args[i] = osc.Int(int32(v))
	}
	t.send(osc.NewMessage(AddrEMG, args...))
}

func (t *Translator) OnOrientation(_ myo.Device, _ uint64, q myo.Quaternion) {
	b := t.state.SetOrientation(q)
	t.send(osc.NewMessage(AddrOrient,
		osc.Int(int32(b.Roll)), osc.Int(int32(b.Pitch)), osc.Int(int32(b.Yaw))))
}

func (t *Translator) OnAccelerometer(_ myo.Device, _ uint64, v myo.Vector3) {
	t.state.SetAccel(v)
	t.send(osc.NewMessage(AddrAccel, osc.Float(v.X), osc.Float(v.Y), osc.Float(v.Z)))
}

func (t *Translator) OnGyroscope(_ myo.Device, _ uint64, v myo.Vector3) {
	t.state.SetGyro(v)
	t.send(osc.NewMessage(AddrGyro, osc.Float(v.X), osc.Float(v.Y), osc.Float(v.Z)))
}

func (t *Translator) OnArmRecognized(dev myo.Device, _ uint64, arm myo.Arm, dir myo.XDirection) {
	t.state.SetArm(arm)
	t.log.Debug().Str("device", dev.ID()).Stringer("arm", arm).Stringer("direction", dir).Msg("arm recognized")

	args := []osc.Arg{osc.Str(arm.Letter())}
	if t.opts.EmitArmDirection {
		args = append(args, osc.Str(directionName(dir)))
	}
	t.send(osc.NewMessage(AddrOnArm, args...))
}

func (t *Translator) OnArmLost(dev myo.Device, _ uint64) {
	t.state.LoseArm()
	t.log.Debug().Str("device", dev.ID()).Msg("arm lost")
	t.send(osc.NewMessage(AddrOnArmLost))
}

// send encodes m into the translator's buffer and hands it to the sink.
// Message shapes are fixed, so an encoding failure is a programming error
// and panics. Sink errors are dropped.
func (t *Translator) send(m osc.Message) {
	if err := t.buf.WriteMessage(m); err != nil {
		panic(err)
	}
	metrics.RecordMessage(m.Address, t.buf.Len())
	_ = t.sink.Send(t.buf.Bytes())
}

func directionName(d myo.XDirection) string {
	switch d {
	case myo.XDirectionTowardWrist:
		return "wrist"
	case myo.XDirectionTowardElbow:
		return "elbow"
	default:
		return "unknown"
	}
}
