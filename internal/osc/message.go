// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package osc encodes and decodes Open Sound Control 1.0 messages.
//
// Only the argument types this bridge sends are supported: int32 ('i'),
// float32 ('f') and string ('s'). Bundles are not produced.
package osc

import (
	"errors"
	"fmt"
	"strings"
)

// MaxPacketSize bounds every encoded message.
const MaxPacketSize = 1024

var (
	ErrPacketTooLarge = errors.New("osc: packet exceeds buffer size")
	ErrMalformed      = errors.New("osc: malformed packet")
	ErrBadAddress     = errors.New("osc: address must start with '/'")
	ErrUnsupportedTag = errors.New("osc: unsupported type tag")
)

// Kind is the OSC type of one argument.
type Kind byte

const (
	Int32   Kind = 'i'
	Float32 Kind = 'f'
	String  Kind = 's'
)

// Arg is a single typed message argument.
type Arg struct {
	Kind Kind
	I    int32
	F    float32
	S    string
}

func Int(v int32) Arg     { return Arg{Kind: Int32, I: v} }
func Float(v float32) Arg { return Arg{Kind: Float32, F: v} }
func Str(v string) Arg    { return Arg{Kind: String, S: v} }

// Value returns the argument as an int32, float32 or string.
func (a Arg) Value() any {
	switch a.Kind {
	case Int32:
		return a.I
	case Float32:
		return a.F
	default:
		return a.S
	}
}

func (a Arg) String() string {
	switch a.Kind {
	case Int32:
		return fmt.Sprintf("i:%d", a.I)
	case Float32:
		return fmt.Sprintf("f:%g", a.F)
	case String:
		return fmt.Sprintf("s:%q", a.S)
	default:
		return fmt.Sprintf("?%c", a.Kind)
	}
}

// Message is one OSC message: an address pattern and its arguments.
type Message struct {
	Address string
	Args    []Arg
}

// NewMessage builds a message for address with the given arguments.
func NewMessage(address string, args ...Arg) Message {
	return Message{Address: address, Args: args}
}

// TypeTags returns the type tag string, including the leading comma.
func (m Message) TypeTags() string {
	var sb strings.Builder
	sb.Grow(len(m.Args) + 1)
	sb.WriteByte(',')
	for _, a := range m.Args {
		sb.WriteByte(byte(a.Kind))
	}
	return sb.String()
}

// Size returns the encoded length of m in bytes.
func (m Message) Size() int {
	n := paddedLen(len(m.Address)) + paddedLen(len(m.Args)+1)
	for _, a := range m.Args {
		switch a.Kind {
		case String:
			n += paddedLen(len(a.S))
		default:
			n += 4
		}
	}
	return n
}

func (m Message) String() string {
	parts := make([]string, 0, len(m.Args)+1)
	parts = append(parts, m.Address)
	for _, a := range m.Args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

// paddedLen is the size of an OSC-string of n characters: the string, at
// least one NUL, rounded up to a multiple of four.
func paddedLen(n int) int {
	return (n + 4) &^ 3
}
