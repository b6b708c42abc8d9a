// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package console renders the device state as a single status line that is
// rewritten in place.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/relabs-tech/myo_osc/internal/orientation"
	"github.com/relabs-tech/myo_osc/internal/state"
)

// emgCellWidth is the minimum width of one EMG value cell.
const emgCellWidth = 4

// Render formats s: three orientation bars, then either the EMG values and
// the arm side, or placeholders when the arm is not known.
func Render(s state.State) string {
	var sb strings.Builder
	writeBar(&sb, s.Bars.Roll)
	writeBar(&sb, s.Bars.Pitch)
	writeBar(&sb, s.Bars.Yaw)

	if !s.ArmKnown {
		sb.WriteString("[?][")
		sb.WriteString(strings.Repeat(" ", 14))
		sb.WriteByte(']')
		return sb.String()
	}

	for _, v := range s.EMG {
		n := strconv.Itoa(int(v))
		sb.WriteByte('[')
		sb.WriteString(n)
		if pad := emgCellWidth - len(n); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteByte(']')
	}
	sb.WriteString("[" + s.Arm.Letter() + "]")
	return sb.String()
}

func writeBar(sb *strings.Builder, n int) {
	n = max(0, min(orientation.BarMax, n))
	sb.WriteByte('[')
	sb.WriteString(strings.Repeat("*", n))
	sb.WriteString(strings.Repeat(" ", orientation.BarMax-n))
	sb.WriteByte(']')
}

// Printer writes the status line to w, returning the cursor to the start of
// the line first.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Render prints s. Write errors are ignored; the status line is best effort.
func (p *Printer) Render(s state.State) {
	fmt.Fprint(p.w, "\r"+Render(s))
}
