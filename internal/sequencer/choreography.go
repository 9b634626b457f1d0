// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package sequencer

import (
	"time"

	"github.com/ffutop/rgbled/internal/config"
	"github.com/ffutop/rgbled/protocol/frame"
)

type StepKind int

const (
	StepSelect StepKind = iota + 1 // LED-select frame only
	StepColor                      // combined LED-select + RGB
)

// Step is one command of a phase followed by its pause.
type Step struct {
	Kind  StepKind
	Name  string
	LED   frame.LED
	Color frame.Color
	Pause time.Duration
}

// Phase is a named group of steps.
type Phase struct {
	Name  string
	Steps []Step
}

// Channel picks which field a ramp drives.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return "unknown"
}

// Ramp returns colours with ch at 0, step, 2*step, ... up to 255 and the
// other channels at zero.
func Ramp(ch Channel, step int) []frame.Color {
	if step < 1 {
		step = 1
	}
	var colors []frame.Color
	for v := 0; v <= frame.MaxChannel; v += step {
		var c frame.Color
		switch ch {
		case Red:
			c.R = uint8(v)
		case Green:
			c.G = uint8(v)
		case Blue:
			c.B = uint8(v)
		}
		colors = append(colors, c)
	}
	return colors
}

type namedColor struct {
	name  string
	color frame.Color
}

var (
	primaryColors = []namedColor{
		{"red", frame.Color{R: 255}},
		{"green", frame.Color{G: 255}},
		{"blue", frame.Color{B: 255}},
		{"white", frame.Color{R: 255, G: 255, B: 255}},
		{"black", frame.Color{}},
	}
	mixedColors = []namedColor{
		{"orange", frame.Color{R: 255, G: 128}},
		{"purple", frame.Color{R: 128, B: 255}},
		{"cyan", frame.Color{G: 255, B: 128}},
		{"yellow", frame.Color{R: 255, G: 255}},
		{"magenta", frame.Color{R: 255, B: 255}},
	}
	secondaryColors = []namedColor{
		{"custom 1", frame.Color{R: 100, G: 50, B: 200}},
		{"custom 2", frame.Color{R: 200, G: 100, B: 50}},
		{"custom 3", frame.Color{R: 50, G: 200, B: 100}},
		{"gray", frame.Color{R: 128, G: 128, B: 128}},
	}
	white = frame.Color{R: 255, G: 255, B: 255}
)

func colorSteps(led frame.LED, colors []namedColor, pause time.Duration) []Step {
	steps := make([]Step, 0, len(colors))
	for _, nc := range colors {
		steps = append(steps, Step{Kind: StepColor, Name: nc.name, LED: led, Color: nc.color, Pause: pause})
	}
	return steps
}

// Choreography builds the four-phase test run.
func Choreography(seq config.SequenceConfig, timing config.TimingConfig) []Phase {
	primary := frame.LED(seq.PrimaryLED)
	secondary := frame.LED(seq.SecondaryLED)

	pure := []Step{{Kind: StepSelect, Name: "select primary", LED: primary, Pause: timing.LEDSelectPause}}
	pure = append(pure, colorSteps(primary, primaryColors, timing.CommandPause)...)

	var ramps []Step
	for _, ch := range []Channel{Red, Green, Blue} {
		for _, c := range Ramp(ch, seq.RampStep) {
			ramps = append(ramps, Step{Kind: StepColor, Name: ch.String() + " ramp", LED: primary, Color: c, Pause: timing.RampPause})
		}
	}

	second := []Step{{Kind: StepSelect, Name: "switch to secondary", LED: secondary, Pause: timing.LEDSelectPause}}
	second = append(second, colorSteps(secondary, secondaryColors, timing.CommandPause)...)
	second = append(second,
		Step{Kind: StepSelect, Name: "return to primary", LED: primary, Pause: timing.LEDSelectPause},
		Step{Kind: StepColor, Name: "white", LED: primary, Color: white, Pause: timing.CommandPause},
	)

	return []Phase{
		{Name: "Pure Colors", Steps: pure},
		{Name: "Color Transitions", Steps: ramps},
		{Name: "Mixed Colors", Steps: colorSteps(primary, mixedColors, timing.CommandPause)},
		{Name: "Secondary LED Colors", Steps: second},
	}
}
