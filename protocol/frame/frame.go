// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package frame

import (
	"fmt"
)

// Frame is a complete command as it goes on the wire.
type Frame []byte

func (f Frame) String() string {
	return string(f)
}

// LED addresses one of the controllable LED units.
type LED int

// Valid reports whether the controller accepts l as a selector.
func (l LED) Valid() bool {
	return l == LED16 || l == LED17
}

func (l LED) String() string {
	return fmt.Sprintf("LED%d", int(l))
}

// Color is an RGB triple. Channels are in range by construction.
type Color struct {
	R, G, B uint8
}

// RGB builds a Color from raw ints, clamping each channel to [0,255].
func RGB(r, g, b int) Color {
	return Color{R: Clamp(r), G: Clamp(g), B: Clamp(b)}
}

// Frame encodes c as {Rddd,Gddd,Bddd}.
func (c Color) Frame() Frame {
	return Frame(fmt.Sprintf("{R%03d,G%03d,B%03d}", c.R, c.G, c.B))
}

func (c Color) String() string {
	return fmt.Sprintf("R=%d, G=%d, B=%d", c.R, c.G, c.B)
}

type InvalidLEDError struct {
	LED LED
}

func (e *InvalidLEDError) Error() string {
	return fmt.Sprintf("LED number must be %d or %d, got %d", LED16, LED17, int(e.LED))
}

// Clamp limits v to a valid channel value.
func Clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > MaxChannel {
		return MaxChannel
	}
	return uint8(v)
}

// EncodeRGB clamps the channels and encodes an RGB frame. It never fails.
func EncodeRGB(red, green, blue int) Frame {
	return RGB(red, green, blue).Frame()
}

// EncodeLEDSelect encodes {L016} or {L017}. Any other selector is rejected
// and no frame is produced.
func EncodeLEDSelect(led LED) (Frame, error) {
	if !led.Valid() {
		return nil, &InvalidLEDError{LED: led}
	}
	return Frame(fmt.Sprintf("{L0%d}", int(led))), nil
}
