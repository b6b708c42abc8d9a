// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package myo

import (
	"fmt"
	"os"

	serial "github.com/jacobsa/go-serial/serial"
)

// OpenSerialHub opens a serial port that carries text event records, as
// written by a dongle bridge firmware. Device commands are written back to
// the same port, starting with "hello <appID>" so the firmware can tag the
// session.
func OpenSerialHub(portName string, baudRate int, appID string) (*StreamHub, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if appID != "" {
		if _, err := fmt.Fprintf(port, "hello %s\n", appID); err != nil {
			port.Close()
			return nil, fmt.Errorf("send hello to %s: %w", portName, err)
		}
	}
	return NewStreamHub(port, StreamOptions{Commands: port, Closer: port}), nil
}

// OpenReplayHub replays a recorded event file at its original pace.
func OpenReplayHub(path string) (*StreamHub, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	return NewStreamHub(f, StreamOptions{Paced: true, Closer: f}), nil
}
