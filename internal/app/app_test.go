// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/myo_osc/internal/config"
	"github.com/relabs-tech/myo_osc/internal/myo"
	"github.com/relabs-tech/myo_osc/internal/orientation"
	"github.com/relabs-tech/myo_osc/internal/osc"
	"github.com/relabs-tech/myo_osc/internal/state"
	"github.com/relabs-tech/myo_osc/internal/transport"
)

func listenUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessages(t *testing.T, conn *net.UDPConn, n int) []osc.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 2048)
	var out []osc.Message
	for len(out) < n {
		k, _, err := conn.ReadFromUDP(buf)
		require.NoError(t, err)
		m, err := osc.ParseMessage(buf[:k])
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestRunBridgeReplay(t *testing.T) {
	listener := listenUDP(t)
	replay := filepath.Join(t.TempDir(), "session.log")
	require.NoError(t, os.WriteFile(replay, []byte(strings.Join([]string{
		"# recorded session",
		"1000 pair m1",
		"1001 arm m1 left toward_wrist",
		"1002 emg m1 1 -2 3 -4 5 -6 7 -8",
		"1003 orientation m1 1 0 0 0",
		"1004 armlost m1",
		"",
	}, "\n")), 0o644))

	cfg := config.Default()
	cfg.OSCPort = listener.LocalAddr().(*net.UDPAddr).Port
	cfg.Source = config.SourceReplay
	cfg.ReplayFile = replay
	cfg.StatusLine = false

	var stdout bytes.Buffer
	require.NoError(t, RunBridge(context.Background(), cfg, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "Sending Myo OSC to 127.0.0.1:")
	assert.Contains(t, out, "Attempting to find a Myo...\n")
	assert.Contains(t, out, "Connected to a Myo armband!\n\n")

	msgs := readMessages(t, listener, 4)
	assert.Equal(t, "/myo/onarm s:\"L\"", msgs[0].String())
	assert.Equal(t, "/myo/emg i:1 i:-2 i:3 i:-4 i:5 i:-6 i:7 i:-8", msgs[1].String())
	assert.Equal(t, "/myo/orient i:9 i:9 i:9", msgs[2].String())
	assert.Equal(t, "/myo/onarmlost", msgs[3].String())
}

func TestRunBridgeNoDevice(t *testing.T) {
	replay := filepath.Join(t.TempDir(), "empty.log")
	require.NoError(t, os.WriteFile(replay, []byte("# nothing recorded\n"), 0o644))

	cfg := config.Default()
	cfg.Source = config.SourceReplay
	cfg.ReplayFile = replay
	cfg.ConnectTimeoutMS = 200

	var stdout bytes.Buffer
	err := RunBridge(context.Background(), cfg, &stdout)
	require.Error(t, err)
	assert.Equal(t, "Unable to find a Myo!", err.Error())
	assert.NotContains(t, stdout.String(), "Connected")
}

func TestRunBridgeMissingReplayFile(t *testing.T) {
	cfg := config.Default()
	cfg.Source = config.SourceReplay
	cfg.ReplayFile = filepath.Join(t.TempDir(), "absent.log")

	err := RunBridge(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "open replay file")
}

type memSink struct {
	packets [][]byte
	closed  bool
}

func (s *memSink) Send(p []byte) error {
	s.packets = append(s.packets, append([]byte(nil), p...))
	return nil
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

// stubMQTT replaces the MQTT constructor for one test and records the
// client id it was given.
func stubMQTT(t *testing.T, sink transport.Sink, err error) *string {
	t.Helper()
	var clientID string
	orig := newMQTTSink
	newMQTTSink = func(broker, id, prefix string) (transport.Sink, error) {
		clientID = id
		return sink, err
	}
	t.Cleanup(func() { newMQTTSink = orig })
	return &clientID
}

func TestOpenSinksMirrorsToMQTT(t *testing.T) {
	listener := listenUDP(t)
	mq := &memSink{}
	clientID := stubMQTT(t, mq, nil)

	cfg := config.Default()
	cfg.OSCPort = listener.LocalAddr().(*net.UDPAddr).Port
	cfg.MQTTBroker = "tcp://localhost:1883"

	sink, err := openSinks(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, transport.Multi{}, sink)

	p, err := osc.Encode(osc.NewMessage("/myo/orient", osc.Int(9), osc.Int(9), osc.Int(9)))
	require.NoError(t, err)
	require.NoError(t, sink.Send(p))

	msgs := readMessages(t, listener, 1)
	assert.Equal(t, "/myo/orient i:9 i:9 i:9", msgs[0].String())
	require.Len(t, mq.packets, 1)
	assert.Equal(t, p, mq.packets[0])

	assert.True(t, strings.HasPrefix(*clientID, "myo-osc-"), *clientID)
	assert.Greater(t, len(*clientID), len("myo-osc-"))

	require.NoError(t, sink.Close())
	assert.True(t, mq.closed)
}

func TestOpenSinksKeepsConfiguredClientID(t *testing.T) {
	clientID := stubMQTT(t, &memSink{}, nil)

	cfg := config.Default()
	cfg.MQTTBroker = "tcp://localhost:1883"
	cfg.MQTTClientID = "studio-bridge"

	sink, err := openSinks(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer sink.Close()
	assert.Equal(t, "studio-bridge", *clientID)
}

func TestOpenSinksWithoutBroker(t *testing.T) {
	stubMQTT(t, nil, errors.New("must not be called"))

	sink, err := openSinks(config.Default(), zerolog.Nop())
	require.NoError(t, err)
	defer sink.Close()
	assert.IsType(t, &transport.Counting{}, sink)
}

func TestOpenSinksMQTTFailure(t *testing.T) {
	stubMQTT(t, nil, errors.New("connection refused"))

	cfg := config.Default()
	cfg.MQTTBroker = "tcp://localhost:1883"
	_, err := openSinks(cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "connection refused")
}

func TestOpenHubMock(t *testing.T) {
	hub, err := openHub(config.Default())
	require.NoError(t, err)
	defer hub.Close()
	assert.IsType(t, &myo.MockHub{}, hub)
}

func TestMonitorHandle(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out, false)

	p, err := osc.Encode(osc.NewMessage("/myo/accel", osc.Float(1), osc.Float(0), osc.Float(-1)))
	require.NoError(t, err)
	m.Handle(p)
	m.Handle([]byte("garbage"))

	assert.Equal(t, "/myo/accel f:1 f:0 f:-1\n", out.String())

	out.Reset()
	m.reportRate()
	assert.Contains(t, out.String(), "Received: 2 packets/sec")

	out.Reset()
	m.reportRate()
	assert.Empty(t, out.String())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// scriptedConn returns one scripted result per ReadFrom call.
type scriptedConn struct {
	net.PacketConn
	reads []any // []byte or error
	calls int
}

func (c *scriptedConn) ReadFrom(p []byte) (int, net.Addr, error) {
	r := c.reads[c.calls]
	c.calls++
	if err, ok := r.(error); ok {
		return 0, nil, err
	}
	return copy(p, r.([]byte)), nil, nil
}

func TestMonitorServeStopsOnReadError(t *testing.T) {
	closed := errors.New("use of closed network connection")
	conn := &scriptedConn{reads: []any{
		osc.MustEncode(osc.NewMessage("/myo/onarm", osc.Str("L"))),
		timeoutErr{},
		osc.MustEncode(osc.NewMessage("/myo/onarmlost")),
		closed,
		closed,
	}}
	var out bytes.Buffer
	m := NewMonitor(&out, false)

	err := m.serve(context.Background(), conn)
	assert.ErrorIs(t, err, closed)
	assert.Equal(t, 4, conn.calls)
	assert.Equal(t, "/myo/onarm s:\"L\"\n/myo/onarmlost\n", out.String())
}

func TestMonitorServeReturnsNilAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn := &scriptedConn{reads: []any{errors.New("closed")}}
	assert.NoError(t, NewMonitor(&bytes.Buffer{}, false).serve(ctx, conn))
}

func TestMonitorQuiet(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out, true)
	p, err := osc.Encode(osc.NewMessage("/myo/onarmlost"))
	require.NoError(t, err)
	m.Handle(p)
	assert.Empty(t, out.String())
}

func sampleState() state.State {
	return state.State{
		EMG:      [8]int8{1, 2, 3, 4, 5, 6, 7, 8},
		Bars:     orientation.Bars{Roll: 9, Pitch: 3, Yaw: 18},
		ArmKnown: true,
		Arm:      myo.ArmRight,
	}
}

func TestStatusServerState(t *testing.T) {
	s := NewStatusServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	s.Render(sampleState())

	resp, err = http.Get(srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "right", body["arm"])
	assert.Equal(t, true, body["arm_known"])
	assert.Len(t, body["emg"], 8)
}

func TestStatusServerMetrics(t *testing.T) {
	srv := httptest.NewServer(NewStatusServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusServerWebsocket(t *testing.T) {
	s := NewStatusServer()
	s.Render(sampleState())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got state.State
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sampleState().EMG, got.EMG)
	assert.Equal(t, sampleState().Bars, got.Bars)
}
