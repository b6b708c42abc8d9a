// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// BarMax is the length of a full orientation bar.
const BarMax = 18

// Pose holds Euler angles in radians.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Bars is a Pose quantized to integer bar lengths in [0, BarMax].
type Bars struct {
	Roll  int `json:"roll"`
	Pitch int `json:"pitch"`
	Yaw   int `json:"yaw"`
}

// FromQuaternion converts a unit quaternion to roll/pitch/yaw.
//
//	roll  = atan2(2(wx+yz), 1-2(x²+y²))
//	pitch = asin(clamp(2(wy-zx), -1, 1))
//	yaw   = atan2(2(wz+xy), 1-2(y²+z²))
//
// The asin argument is clamped so rounding near the poles cannot produce NaN.
func FromQuaternion(w, x, y, z float64) Pose {
	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitch := math.Asin(math.Max(-1, math.Min(1, 2*(w*y-z*x))))
	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return Pose{Roll: roll, Pitch: pitch, Yaw: yaw}
}

// ToQuaternion is the inverse of FromQuaternion for pitch in [-π/2, π/2].
func ToQuaternion(p Pose) (w, x, y, z float64) {
	cr, sr := math.Cos(p.Roll/2), math.Sin(p.Roll/2)
	cp, sp := math.Cos(p.Pitch/2), math.Sin(p.Pitch/2)
	cy, sy := math.Cos(p.Yaw/2), math.Sin(p.Yaw/2)

	w = cr*cp*cy + sr*sp*sy
	x = sr*cp*cy - cr*sp*sy
	y = cr*sp*cy + sr*cp*sy
	z = cr*cp*sy - sr*sp*cy
	return w, x, y, z
}

// Quantize maps roll and yaw from [-π, π] and pitch from [-π/2, π/2] onto
// [0, BarMax].
func Quantize(p Pose) Bars {
	return Bars{
		Roll:  toBar((p.Roll + math.Pi) / (2 * math.Pi)),
		Pitch: toBar((p.Pitch + math.Pi/2) / math.Pi),
		Yaw:   toBar((p.Yaw + math.Pi) / (2 * math.Pi)),
	}
}

// BarsFromQuaternion is FromQuaternion followed by Quantize.
func BarsFromQuaternion(w, x, y, z float64) Bars {
	return Quantize(FromQuaternion(w, x, y, z))
}

func toBar(frac float64) int {
	v := math.Floor(frac * BarMax)
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > BarMax:
		return BarMax
	}
	return int(v)
}
