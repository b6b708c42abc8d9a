// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package myo

// Kind identifies the payload carried by an Event.
type Kind int

const (
	KindPair Kind = iota
	KindDisconnect
	KindEMG
	KindOrientation
	KindAccelerometer
	KindGyroscope
	KindArmRecognized
	KindArmLost
)

var kindNames = map[Kind]string{
	KindPair:          "pair",
	KindDisconnect:    "disconnect",
	KindEMG:           "emg",
	KindOrientation:   "orientation",
	KindAccelerometer: "accel",
	KindGyroscope:     "gyro",
	KindArmRecognized: "arm",
	KindArmLost:       "armlost",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is one timestamped device event. Only the fields for Kind are set.
type Event struct {
	Kind      Kind
	DeviceID  string
	Timestamp uint64

	EMG         [8]int8
	Orientation Quaternion
	Vector      Vector3
	Arm         Arm
	Direction   XDirection
}

// Dispatch calls the Listener method matching e.Kind. Pair events have no
// listener callback.
func (e Event) Dispatch(l Listener, dev Device) {
	switch e.Kind {
	case KindDisconnect:
		l.OnDisconnect(dev, e.Timestamp)
	case KindEMG:
		l.OnEMG(dev, e.Timestamp, e.EMG)
	case KindOrientation:
		l.OnOrientation(dev, e.Timestamp, e.Orientation)
	case KindAccelerometer:
		l.OnAccelerometer(dev, e.Timestamp, e.Vector)
	case KindGyroscope:
		l.OnGyroscope(dev, e.Timestamp, e.Vector)
	case KindArmRecognized:
		l.OnArmRecognized(dev, e.Timestamp, e.Arm, e.Direction)
	case KindArmLost:
		l.OnArmLost(dev, e.Timestamp)
	}
}

// dispatcher holds the registered listeners of a hub.
type dispatcher struct {
	listeners []Listener
}

func (d *dispatcher) AddListener(l Listener) {
	d.listeners = append(d.listeners, l)
}

func (d *dispatcher) dispatch(e Event, dev Device) {
	for _, l := range d.listeners {
		e.Dispatch(l, dev)
	}
}
