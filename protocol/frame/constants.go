// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package frame

const (
	StartByte = '{'
	EndByte   = '}'

	// RGBSize is the length of {Rddd,Gddd,Bddd}.
	RGBSize = 16
	// LEDSelectSize is the length of {L0nn}.
	LEDSelectSize = 6

	MaxChannel = 255
)

// Field tags
const (
	TagRed   = 'R'
	TagGreen = 'G'
	TagBlue  = 'B'
	TagLED   = 'L'
)

// LED selectors understood by the controller.
const (
	NoLED LED = 0
	LED16 LED = 16
	LED17 LED = 17
)
