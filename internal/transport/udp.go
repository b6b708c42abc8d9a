// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"fmt"
	"net"
	"strconv"
)

// UDPSink writes each packet as one datagram to a fixed destination.
type UDPSink struct {
	conn    *net.UDPConn
	address string
}

// NewUDPSink resolves host:port and opens a UDP socket connected to it.
func NewUDPSink(host string, port int) (*UDPSink, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	raddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", address, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return &UDPSink{conn: conn, address: address}, nil
}

func (s *UDPSink) Send(p []byte) error {
	_, err := s.conn.Write(p)
	return err
}

// Address is the destination as host:port.
func (s *UDPSink) Address() string { return s.address }

func (s *UDPSink) Close() error { return s.conn.Close() }
