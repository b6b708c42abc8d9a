// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package myo models the armband event source: a hub that is pumped for a
// bounded time slice and delivers timestamped device events to listeners.
//
// Listeners are only ever called from inside Hub.Run, on the goroutine that
// called Run, one event at a time.
package myo

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoDevice     = errors.New("myo: no device found")
	ErrSourceClosed = errors.New("myo: event source closed")
)

// Arm is the arm the device was recognized on.
type Arm int

const (
	ArmUnknown Arm = iota
	ArmLeft
	ArmRight
)

func (a Arm) String() string {
	switch a {
	case ArmLeft:
		return "left"
	case ArmRight:
		return "right"
	default:
		return "unknown"
	}
}

// Letter is "L" for the left arm and "R" otherwise.
func (a Arm) Letter() string {
	if a == ArmLeft {
		return "L"
	}
	return "R"
}

func (a Arm) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Arm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*a = ArmLeft
	case "right":
		*a = ArmRight
	case "unknown":
		*a = ArmUnknown
	default:
		return fmt.Errorf("unknown arm %q", text)
	}
	return nil
}

// XDirection is the way the device's +x axis faces on the forearm.
type XDirection int

const (
	XDirectionUnknown XDirection = iota
	XDirectionTowardWrist
	XDirectionTowardElbow
)

func (x XDirection) String() string {
	switch x {
	case XDirectionTowardWrist:
		return "toward_wrist"
	case XDirectionTowardElbow:
		return "toward_elbow"
	default:
		return "unknown"
	}
}

// Quaternion is a unit rotation quaternion.
type Quaternion struct {
	W, X, Y, Z float32
}

// Vector3 is an accelerometer (g) or gyroscope (deg/s) reading.
type Vector3 struct {
	X, Y, Z float32
}

// Device is one paired armband.
type Device interface {
	ID() string
	// SetStreamEMG toggles raw per-sample EMG delivery. Only one device may
	// stream EMG at a time.
	SetStreamEMG(enabled bool) error
}

// Listener receives device events. Timestamps are in microseconds.
type Listener interface {
	OnDisconnect(dev Device, ts uint64)
	OnEMG(dev Device, ts uint64, emg [8]int8)
	OnOrientation(dev Device, ts uint64, q Quaternion)
	OnAccelerometer(dev Device, ts uint64, accel Vector3)
	OnGyroscope(dev Device, ts uint64, gyro Vector3)
	OnArmRecognized(dev Device, ts uint64, arm Arm, dir XDirection)
	OnArmLost(dev Device, ts uint64)
}

// Hub is the event source.
type Hub interface {
	// WaitForDevice blocks until a device is available or timeout elapses,
	// in which case the error wraps ErrNoDevice.
	WaitForDevice(timeout time.Duration) (Device, error)
	AddListener(l Listener)
	// Run pumps events to the listeners for up to d.
	Run(d time.Duration) error
	Close() error
}
