// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package myo

import (
	"math"
	"time"

	"github.com/relabs-tech/myo_osc/internal/orientation"
)

const (
	mockDeviceID = "mock-0"
	// mockEMGPerSlice approximates 200 Hz EMG against a 50 Hz pump.
	mockEMGPerSlice = 4
)

// MockHub is a synthetic device that generates smoothly changing motion and
// EMG data, for running the bridge without hardware.
type MockHub struct {
	dispatcher
	now   func() time.Time
	sleep func(time.Duration)

	start   time.Time
	last    time.Time
	device  *mockDevice
	onArm   bool
	samples int
}

// NewMockHub returns a mock hub driven by the wall clock.
func NewMockHub() *MockHub {
	return NewMockHubWithClock(time.Now, time.Sleep)
}

// NewMockHubWithClock returns a mock hub with injected time functions.
func NewMockHubWithClock(now func() time.Time, sleep func(time.Duration)) *MockHub {
	return &MockHub{now: now, sleep: sleep}
}

func (m *MockHub) WaitForDevice(time.Duration) (Device, error) {
	if m.device == nil {
		m.device = &mockDevice{}
		m.start = m.now()
		m.last = m.start
	}
	return m.device, nil
}

// Run sleeps for d and then emits one orientation, accelerometer and
// gyroscope event, plus EMG samples when streaming is enabled.
func (m *MockHub) Run(d time.Duration) error {
	if m.device == nil {
		return ErrNoDevice
	}
	m.sleep(d)
	now := m.now()
	elapsed := now.Sub(m.start).Seconds()
	dt := now.Sub(m.last).Seconds()
	m.last = now
	ts := uint64(now.Sub(m.start) / time.Microsecond)

	if !m.onArm {
		m.onArm = true
		m.dispatch(Event{Kind: KindArmRecognized, Timestamp: ts, Arm: ArmRight, Direction: XDirectionTowardWrist}, m.device)
	}

	pose := mockPose(elapsed)
	w, x, y, z := orientation.ToQuaternion(pose)
	m.dispatch(Event{
		Kind:        KindOrientation,
		Timestamp:   ts,
		Orientation: Quaternion{W: float32(w), X: float32(x), Y: float32(y), Z: float32(z)},
	}, m.device)

	// Gravity seen from the rotated device frame.
	m.dispatch(Event{
		Kind:      KindAccelerometer,
		Timestamp: ts,
		Vector: Vector3{
			X: float32(-math.Sin(pose.Pitch)),
			Y: float32(math.Sin(pose.Roll) * math.Cos(pose.Pitch)),
			Z: float32(math.Cos(pose.Roll) * math.Cos(pose.Pitch)),
		},
	}, m.device)

	var gyro Vector3
	if dt > 0 {
		prev := mockPose(elapsed - dt)
		toDeg := 180 / math.Pi / dt
		gyro = Vector3{
			X: float32((pose.Roll - prev.Roll) * toDeg),
			Y: float32((pose.Pitch - prev.Pitch) * toDeg),
			Z: float32(wrapAngle(pose.Yaw-prev.Yaw) * toDeg),
		}
	}
	m.dispatch(Event{Kind: KindGyroscope, Timestamp: ts, Vector: gyro}, m.device)

	if m.device.streamEMG {
		for i := 0; i < mockEMGPerSlice; i++ {
			m.dispatch(Event{Kind: KindEMG, Timestamp: ts, EMG: mockEMG(m.samples)}, m.device)
			m.samples++
		}
	}
	return nil
}

func (m *MockHub) Close() error { return nil }

// mockPose swings roll and pitch gently and turns yaw at 30°/s.
func mockPose(t float64) orientation.Pose {
	deg := math.Pi / 180
	return orientation.Pose{
		Roll:  20 * deg * math.Sin(t),
		Pitch: 15 * deg * math.Cos(t*0.7),
		Yaw:   wrapAngle(math.Mod(t*30, 360) * deg),
	}
}

// mockEMG produces a bursty signal that differs per channel.
func mockEMG(n int) [8]int8 {
	var out [8]int8
	envelope := 0.5 + 0.5*math.Sin(float64(n)/100)
	for ch := range out {
		v := 100 * envelope * math.Sin(float64(n)*0.9+float64(ch))
		out[ch] = int8(math.Max(-128, math.Min(127, math.Round(v))))
	}
	return out
}

func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

type mockDevice struct {
	streamEMG bool
}

func (d *mockDevice) ID() string { return mockDeviceID }

func (d *mockDevice) SetStreamEMG(enabled bool) error {
	d.streamEMG = enabled
	return nil
}
