// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ParseMessage decodes a single OSC message.
func ParseMessage(p []byte) (Message, error) {
	addr, rest, err := readString(p)
	if err != nil {
		return Message{}, fmt.Errorf("address: %w", err)
	}
	if len(addr) == 0 || addr[0] != '/' {
		return Message{}, fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}
	m := Message{Address: addr}
	if len(rest) == 0 {
		// Type tags are optional for very old senders.
		return m, nil
	}

	tags, rest, err := readString(rest)
	if err != nil {
		return Message{}, fmt.Errorf("type tags: %w", err)
	}
	if len(tags) == 0 || tags[0] != ',' {
		return Message{}, fmt.Errorf("%w: type tags %q", ErrMalformed, tags)
	}

	for i := 1; i < len(tags); i++ {
		switch Kind(tags[i]) {
		case Int32:
			if len(rest) < 4 {
				return Message{}, fmt.Errorf("%w: short int32 argument %d", ErrMalformed, i)
			}
			m.Args = append(m.Args, Int(int32(binary.BigEndian.Uint32(rest))))
			rest = rest[4:]
		case Float32:
			if len(rest) < 4 {
				return Message{}, fmt.Errorf("%w: short float32 argument %d", ErrMalformed, i)
			}
			m.Args = append(m.Args, Float(math.Float32frombits(binary.BigEndian.Uint32(rest))))
			rest = rest[4:]
		case String:
			var s string
			s, rest, err = readString(rest)
			if err != nil {
				return Message{}, fmt.Errorf("string argument %d: %w", i, err)
			}
			m.Args = append(m.Args, Str(s))
		default:
			return Message{}, fmt.Errorf("%w: %q", ErrUnsupportedTag, tags[i])
		}
	}
	if len(rest) != 0 {
		return Message{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(rest))
	}
	return m, nil
}

// Address returns the address of an encoded message without decoding its
// arguments.
func Address(p []byte) (string, error) {
	addr, _, err := readString(p)
	return addr, err
}

func readString(p []byte) (string, []byte, error) {
	i := bytes.IndexByte(p, 0)
	if i < 0 {
		return "", nil, fmt.Errorf("%w: unterminated string", ErrMalformed)
	}
	n := paddedLen(i)
	if n > len(p) {
		return "", nil, fmt.Errorf("%w: string padding truncated", ErrMalformed)
	}
	return string(p[:i]), p[n:], nil
}
