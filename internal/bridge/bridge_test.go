// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/myo_osc/internal/console"
	"github.com/relabs-tech/myo_osc/internal/myo"
	"github.com/relabs-tech/myo_osc/internal/orientation"
	"github.com/relabs-tech/myo_osc/internal/osc"
	"github.com/relabs-tech/myo_osc/internal/state"
)

// recordingSink decodes every packet it is sent.
type recordingSink struct {
	t    *testing.T
	msgs []osc.Message
	err  error
}

func (s *recordingSink) Send(p []byte) error {
	m, err := osc.ParseMessage(p)
	require.NoError(s.t, err)
	s.msgs = append(s.msgs, m)
	return s.err
}

func (s *recordingSink) Close() error { return nil }

type fakeDevice struct {
	id        string
	streamEMG bool
	emgErr    error
}

func (d *fakeDevice) ID() string { return d.id }

func (d *fakeDevice) SetStreamEMG(enabled bool) error {
	if d.emgErr != nil {
		return d.emgErr
	}
	d.streamEMG = enabled
	return nil
}

// scriptedHub delivers one batch of events per Run call.
type scriptedHub struct {
	dev       *fakeDevice
	waitErr   error
	listeners []myo.Listener
	batches   [][]myo.Event
	runs      int
	trace     *[]string
	waited    time.Duration
}

func (h *scriptedHub) WaitForDevice(timeout time.Duration) (myo.Device, error) {
	h.waited = timeout
	if h.waitErr != nil {
		return nil, h.waitErr
	}
	return h.dev, nil
}

func (h *scriptedHub) AddListener(l myo.Listener) { h.listeners = append(h.listeners, l) }

func (h *scriptedHub) Run(time.Duration) error {
	if h.runs >= len(h.batches) {
		return myo.ErrSourceClosed
	}
	*h.trace = append(*h.trace, "pump-start")
	for _, e := range h.batches[h.runs] {
		for _, l := range h.listeners {
			e.Dispatch(l, h.dev)
		}
	}
	h.runs++
	*h.trace = append(*h.trace, "pump-end")
	return nil
}

func (h *scriptedHub) Close() error { return nil }

func newTranslator(t *testing.T, opts Options) (*Translator, *state.State, *recordingSink) {
	st := &state.State{}
	sink := &recordingSink{t: t}
	return NewTranslator(st, sink, opts), st, sink
}

var dev = &fakeDevice{id: "m1"}

func TestEMGMessage(t *testing.T) {
	tr, st, sink := newTranslator(t, Options{})
	emg := [8]int8{-128, -1, 0, 1, 2, 50, 100, 127}
	tr.OnEMG(dev, 1, emg)

	assert.Equal(t, emg, st.EMG)
	require.Len(t, sink.msgs, 1)
	m := sink.msgs[0]
	assert.Equal(t, AddrEMG, m.Address)
	require.Len(t, m.Args, 8)
	for i, a := range m.Args {
		assert.Equal(t, osc.Int32, a.Kind)
		assert.Equal(t, int32(emg[i]), a.I)
	}
}

func TestOrientationMessage(t *testing.T) {
	tr, st, sink := newTranslator(t, Options{})
	tr.OnOrientation(dev, 1, myo.Quaternion{W: 1})

	assert.Equal(t, orientation.Bars{Roll: 9, Pitch: 9, Yaw: 9}, st.Bars)
	require.Len(t, sink.msgs, 1)
	assert.Equal(t, osc.NewMessage(AddrOrient, osc.Int(9), osc.Int(9), osc.Int(9)), sink.msgs[0])

	// Out of unit norm; pitch clamps to +pi/2.
	tr.OnOrientation(dev, 2, myo.Quaternion{W: 1, Y: 1})
	assert.Equal(t, int32(18), sink.msgs[1].Args[1].I)
}

func TestAccelAndGyroVerbatim(t *testing.T) {
	tr, st, sink := newTranslator(t, Options{})
	tr.OnAccelerometer(dev, 1, myo.Vector3{X: 1.0, Y: 0.0, Z: -1.0})
	tr.OnGyroscope(dev, 2, myo.Vector3{X: 0.25, Y: -300.5, Z: 1e-3})

	assert.Equal(t, [3]float32{1, 0, -1}, st.Accel)
	assert.Equal(t, [3]float32{0.25, -300.5, 1e-3}, st.Gyro)
	require.Len(t, sink.msgs, 2)
	assert.Equal(t, osc.NewMessage(AddrAccel, osc.Float(1), osc.Float(0), osc.Float(-1)), sink.msgs[0])
	assert.Equal(t, osc.NewMessage(AddrGyro, osc.Float(0.25), osc.Float(-300.5), osc.Float(1e-3)), sink.msgs[1])
}

func TestArmMessages(t *testing.T) {
	tr, st, sink := newTranslator(t, Options{})
	tr.OnArmRecognized(dev, 1, myo.ArmLeft, myo.XDirectionTowardElbow)
	assert.True(t, st.ArmKnown)
	assert.Equal(t, myo.ArmLeft, st.Arm)

	tr.OnArmRecognized(dev, 2, myo.ArmRight, myo.XDirectionTowardWrist)
	tr.OnArmLost(dev, 3)
	assert.False(t, st.ArmKnown)

	assert.Equal(t, []osc.Message{
		osc.NewMessage(AddrOnArm, osc.Str("L")),
		osc.NewMessage(AddrOnArm, osc.Str("R")),
		{Address: AddrOnArmLost},
	}, sink.msgs)
}

func TestArmDirectionOption(t *testing.T) {
	tr, _, sink := newTranslator(t, Options{EmitArmDirection: true})
	tr.OnArmRecognized(dev, 1, myo.ArmLeft, myo.XDirectionTowardWrist)
	tr.OnArmRecognized(dev, 1, myo.ArmRight, myo.XDirectionUnknown)
	assert.Equal(t, osc.NewMessage(AddrOnArm, osc.Str("L"), osc.Str("wrist")), sink.msgs[0])
	assert.Equal(t, osc.NewMessage(AddrOnArm, osc.Str("R"), osc.Str("unknown")), sink.msgs[1])
}

func TestDisconnectResetsAndIsSilent(t *testing.T) {
	tr, st, sink := newTranslator(t, Options{})
	tr.OnEMG(dev, 1, [8]int8{1, 2, 3, 4, 5, 6, 7, 8})
	tr.OnArmRecognized(dev, 2, myo.ArmLeft, myo.XDirectionUnknown)
	tr.OnOrientation(dev, 3, myo.Quaternion{W: 1})
	sink.msgs = nil

	tr.OnDisconnect(dev, 4)
	assert.Equal(t, [8]int8{}, st.EMG)
	assert.False(t, st.ArmKnown)
	assert.Equal(t, orientation.Bars{}, st.Bars)
	assert.Empty(t, sink.msgs)
}

func TestDisconnectOption(t *testing.T) {
	tr, _, sink := newTranslator(t, Options{EmitDisconnect: true})
	tr.OnDisconnect(dev, 1)
	require.Len(t, sink.msgs, 1)
	assert.Equal(t, AddrDisconnect, sink.msgs[0].Address)
	assert.Empty(t, sink.msgs[0].Args)
}

func TestSinkErrorsAreIgnored(t *testing.T) {
	tr, st, sink := newTranslator(t, Options{})
	sink.err = errors.New("network unreachable")
	assert.NotPanics(t, func() {
		tr.OnGyroscope(dev, 1, myo.Vector3{X: 1})
	})
	assert.Equal(t, float32(1), st.Gyro[0])
}

func TestArmLostThenRenderShowsPlaceholder(t *testing.T) {
	tr, st, _ := newTranslator(t, Options{})
	tr.OnArmRecognized(dev, 1, myo.ArmLeft, myo.XDirectionTowardWrist)
	tr.OnArmLost(dev, 2)

	out := console.Render(st.Snapshot())
	assert.Contains(t, out, "[?][              ]")
	assert.NotContains(t, out, "[L]")
}

func TestDriverConnect(t *testing.T) {
	var trace []string
	d := &fakeDevice{id: "m1"}
	hub := &scriptedHub{dev: d, trace: &trace}
	tr, st, _ := newTranslator(t, Options{})

	drv := NewDriver(hub, st, tr, DriverConfig{})
	got, err := drv.Connect()
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID())
	assert.True(t, d.streamEMG)
	assert.Equal(t, DefaultConnectTimeout, hub.waited)
	require.Len(t, hub.listeners, 1)
	assert.Same(t, tr, hub.listeners[0])
}

func TestDriverConnectFailures(t *testing.T) {
	var trace []string
	tr, st, _ := newTranslator(t, Options{})

	hub := &scriptedHub{waitErr: myo.ErrNoDevice, trace: &trace}
	_, err := NewDriver(hub, st, tr, DriverConfig{ConnectTimeout: time.Second}).Connect()
	assert.ErrorIs(t, err, myo.ErrNoDevice)
	assert.Equal(t, time.Second, hub.waited)
	assert.Empty(t, hub.listeners)

	hub = &scriptedHub{dev: &fakeDevice{id: "m1", emgErr: errors.New("busy")}, trace: &trace}
	_, err = NewDriver(hub, st, tr, DriverConfig{}).Connect()
	assert.ErrorContains(t, err, "busy")

	err = NewDriver(hub, st, tr, DriverConfig{}).Run(context.Background())
	assert.ErrorIs(t, err, myo.ErrNoDevice)
}

func TestDriverRendersAfterEachPump(t *testing.T) {
	var trace []string
	hub := &scriptedHub{
		dev:   &fakeDevice{id: "m1"},
		trace: &trace,
		batches: [][]myo.Event{
			{
				{Kind: myo.KindArmRecognized, Arm: myo.ArmLeft},
				{Kind: myo.KindEMG, EMG: [8]int8{5, 5, 5, 5, 5, 5, 5, 5}},
			},
			{
				{Kind: myo.KindArmLost},
			},
			{
				{Kind: myo.KindDisconnect},
			},
		},
	}
	tr, st, sink := newTranslator(t, Options{})

	var renders []state.State
	drv := NewDriver(hub, st, tr, DriverConfig{PumpInterval: time.Millisecond},
		RenderFunc(func(s state.State) {
			trace = append(trace, "render")
			renders = append(renders, s)
		}))
	_, err := drv.Connect()
	require.NoError(t, err)

	err = drv.Run(context.Background())
	require.ErrorIs(t, err, myo.ErrSourceClosed)

	assert.Equal(t, []string{
		"pump-start", "pump-end", "render",
		"pump-start", "pump-end", "render",
		"pump-start", "pump-end", "render",
	}, trace)

	require.Len(t, renders, 3)
	assert.True(t, renders[0].ArmKnown)
	assert.Equal(t, int8(5), renders[0].EMG[7])
	assert.False(t, renders[1].ArmKnown)
	assert.Equal(t, int8(5), renders[1].EMG[7])
	assert.Equal(t, [8]int8{}, renders[2].EMG)

	assert.Len(t, sink.msgs, 3)
}

func TestDriverStopsOnCancel(t *testing.T) {
	var trace []string
	hub := &scriptedHub{dev: &fakeDevice{id: "m1"}, trace: &trace, batches: make([][]myo.Event, 100)}
	tr, st, _ := newTranslator(t, Options{})
	drv := NewDriver(hub, st, tr, DriverConfig{})
	_, err := drv.Connect()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, drv.Run(ctx))
	assert.Zero(t, hub.runs)
}
