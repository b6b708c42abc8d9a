// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package osc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Buffer is a fixed-capacity packet buffer holding one message. Writes that
// would exceed the capacity fail with ErrPacketTooLarge and leave the buffer
// empty.
type Buffer struct {
	data [MaxPacketSize]byte
	n    int
}

// Reset empties the buffer.
func (b *Buffer) Reset() { b.n = 0 }

// Bytes returns the encoded packet. The slice aliases the buffer and is
// only valid until the next write or Reset.
func (b *Buffer) Bytes() []byte { return b.data[:b.n] }

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return b.n }

// WriteMessage resets the buffer and encodes m into it.
func (b *Buffer) WriteMessage(m Message) error {
	b.Reset()
	if !strings.HasPrefix(m.Address, "/") {
		return fmt.Errorf("%w: %q", ErrBadAddress, m.Address)
	}
	if size := m.Size(); size > len(b.data) {
		return fmt.Errorf("%w: %s needs %d bytes, limit %d", ErrPacketTooLarge, m.Address, size, len(b.data))
	}

	b.putString(m.Address)
	b.putString(m.TypeTags())
	for _, a := range m.Args {
		switch a.Kind {
		case Int32:
			binary.BigEndian.PutUint32(b.data[b.n:], uint32(a.I))
			b.n += 4
		case Float32:
			binary.BigEndian.PutUint32(b.data[b.n:], math.Float32bits(a.F))
			b.n += 4
		case String:
			b.putString(a.S)
		default:
			b.Reset()
			return fmt.Errorf("%w: %q", ErrUnsupportedTag, byte(a.Kind))
		}
	}
	return nil
}

// putString writes s as an OSC-string. Capacity was checked by the caller.
func (b *Buffer) putString(s string) {
	end := b.n + paddedLen(len(s))
	copy(b.data[b.n:], s)
	clear(b.data[b.n+len(s) : end])
	b.n = end
}

// Encode returns a freshly allocated encoding of m.
func Encode(m Message) ([]byte, error) {
	var b Buffer
	if err := b.WriteMessage(m); err != nil {
		return nil, err
	}
	return append([]byte(nil), b.Bytes()...), nil
}

// MustEncode is like Encode but panics if m cannot be encoded. Callers use
// it for messages whose shape is fixed at compile time.
func MustEncode(m Message) []byte {
	p, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return p
}
