// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package state holds the latest known values of every tracked signal of
// the active device.
//
// State has a single writer (the event translator, during a hub pump) and
// is read between pumps, so it carries no lock. Anything that must read it
// from another goroutine gets a copy from Snapshot.
package state

import (
	"github.com/relabs-tech/myo_osc/internal/myo"
	"github.com/relabs-tech/myo_osc/internal/orientation"
)

// EMGChannels is the number of EMG sensor channels.
const EMGChannels = 8

// State is the device snapshot. The zero value is the start state.
type State struct {
	EMG      [EMGChannels]int8 `json:"emg"`
	Bars     orientation.Bars  `json:"orientation"`
	Accel    [3]float32        `json:"accel"`
	Gyro     [3]float32        `json:"gyro"`
	ArmKnown bool              `json:"arm_known"`
	Arm      myo.Arm           `json:"arm"`
}

// SetEMG stores one EMG sample verbatim.
func (s *State) SetEMG(emg [EMGChannels]int8) { s.EMG = emg }

// SetOrientation recomputes the bars from a quaternion and returns them.
func (s *State) SetOrientation(q myo.Quaternion) orientation.Bars {
	s.Bars = orientation.BarsFromQuaternion(float64(q.W), float64(q.X), float64(q.Y), float64(q.Z))
	return s.Bars
}

func (s *State) SetAccel(v myo.Vector3) { s.Accel = [3]float32{v.X, v.Y, v.Z} }

func (s *State) SetGyro(v myo.Vector3) { s.Gyro = [3]float32{v.X, v.Y, v.Z} }

// SetArm records the arm the device was recognized on.
func (s *State) SetArm(arm myo.Arm) {
	s.ArmKnown = true
	s.Arm = arm
}

// LoseArm clears the arm-known flag. The last side is kept but is not
// meaningful until the arm is recognized again.
func (s *State) LoseArm() { s.ArmKnown = false }

// Disconnect clears EMG, arm and orientation. Accelerometer and gyroscope
// keep their last values.
func (s *State) Disconnect() {
	s.EMG = [EMGChannels]int8{}
	s.Bars = orientation.Bars{}
	s.ArmKnown = false
}

// Snapshot returns a copy that shares no memory with s.
func (s *State) Snapshot() State { return *s }
