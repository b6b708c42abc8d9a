// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package myo

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRecord decodes one line of the text event stream:
//
//	<timestamp_us> <kind> <device> [fields...]
//
//	pair | disconnect | armlost      no fields
//	emg                              8 integers in [-128, 127]
//	orientation                      w x y z
//	accel | gyro                     x y z
//	arm                              left|right toward_wrist|toward_elbow|unknown
func ParseRecord(line string) (Event, error) {
	f := strings.Fields(line)
	if len(f) < 3 {
		return Event{}, fmt.Errorf("record %q: need timestamp, kind and device", line)
	}
	ts, err := strconv.ParseUint(f[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("record timestamp %q: %w", f[0], err)
	}
	e := Event{Timestamp: ts, DeviceID: f[2]}
	args := f[3:]

	want := 0
	switch f[1] {
	case "pair":
		e.Kind = KindPair
	case "disconnect":
		e.Kind = KindDisconnect
	case "armlost":
		e.Kind = KindArmLost
	case "emg":
		e.Kind, want = KindEMG, 8
	case "orientation":
		e.Kind, want = KindOrientation, 4
	case "accel":
		e.Kind, want = KindAccelerometer, 3
	case "gyro":
		e.Kind, want = KindGyroscope, 3
	case "arm":
		e.Kind, want = KindArmRecognized, 2
	default:
		return Event{}, fmt.Errorf("record kind %q: unknown", f[1])
	}
	if len(args) != want {
		return Event{}, fmt.Errorf("record %s: got %d fields, want %d", f[1], len(args), want)
	}

	switch e.Kind {
	case KindEMG:
		for i, a := range args {
			v, err := strconv.ParseInt(a, 10, 8)
			if err != nil {
				return Event{}, fmt.Errorf("record emg channel %d: %w", i, err)
			}
			e.EMG[i] = int8(v)
		}
	case KindOrientation:
		v, err := parseFloats(args)
		if err != nil {
			return Event{}, fmt.Errorf("record orientation: %w", err)
		}
		e.Orientation = Quaternion{W: v[0], X: v[1], Y: v[2], Z: v[3]}
	case KindAccelerometer, KindGyroscope:
		v, err := parseFloats(args)
		if err != nil {
			return Event{}, fmt.Errorf("record %s: %w", f[1], err)
		}
		e.Vector = Vector3{X: v[0], Y: v[1], Z: v[2]}
	case KindArmRecognized:
		switch args[0] {
		case "left":
			e.Arm = ArmLeft
		case "right":
			e.Arm = ArmRight
		default:
			return Event{}, fmt.Errorf("record arm side %q: unknown", args[0])
		}
		switch args[1] {
		case "toward_wrist":
			e.Direction = XDirectionTowardWrist
		case "toward_elbow":
			e.Direction = XDirectionTowardElbow
		case "unknown":
			e.Direction = XDirectionUnknown
		default:
			return Event{}, fmt.Errorf("record arm direction %q: unknown", args[1])
		}
	}
	return e, nil
}

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
