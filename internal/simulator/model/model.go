// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"encoding/binary"
	"sync"

	"github.com/ffutop/rgbled/protocol/frame"
)

// Layout of the controller state, shared by every storage backend:
//
//	[0]     selected LED (0 = none)
//	[1:4]   LED16 R, G, B
//	[4:7]   LED17 R, G, B
//	[7:11]  frames applied, little endian uint32
const (
	offsetSelected = 0
	offsetLED16    = 1
	offsetLED17    = 4
	offsetFrames   = 7

	Size = 11
)

// State is what the controller remembers between frames.
// It is a view over a byte slice so storage backends can map it directly.
type State struct {
	mu   sync.RWMutex
	data []byte
}

// NewState creates a zeroed, memory-only state.
func NewState() *State {
	return &State{data: make([]byte, Size)}
}

// FromBytes wraps data, which must be at least Size bytes long.
// Writes to the State go straight into data.
func FromBytes(data []byte) *State {
	return &State{data: data[:Size]}
}

func ledOffset(led frame.LED) (int, bool) {
	switch led {
	case frame.LED16:
		return offsetLED16, true
	case frame.LED17:
		return offsetLED17, true
	}
	return 0, false
}

// Selected returns the LED the next RGB frame applies to.
func (s *State) Selected() frame.LED {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return frame.LED(s.data[offsetSelected])
}

// Color returns the last colour latched into led.
func (s *State) Color(led frame.LED) (frame.Color, bool) {
	off, ok := ledOffset(led)
	if !ok {
		return frame.Color{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return frame.Color{R: s.data[off], G: s.data[off+1], B: s.data[off+2]}, true
}

// Frames returns how many frames were applied over the state's lifetime.
func (s *State) Frames() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return binary.LittleEndian.Uint32(s.data[offsetFrames:])
}

// Select latches led for subsequent colour frames.
func (s *State) Select(led frame.LED) bool {
	if _, ok := ledOffset(led); !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[offsetSelected] = byte(led)
	s.count()
	return true
}

// SetColor applies c to the selected LED. It reports false, and leaves the
// state untouched, when no LED has been selected yet.
func (s *State) SetColor(c frame.Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	off, ok := ledOffset(frame.LED(s.data[offsetSelected]))
	if !ok {
		return false
	}
	s.data[off] = c.R
	s.data[off+1] = c.G
	s.data[off+2] = c.B
	s.count()
	return true
}

// count bumps the frame counter. Caller must hold the write lock.
func (s *State) count() {
	n := binary.LittleEndian.Uint32(s.data[offsetFrames:])
	binary.LittleEndian.PutUint32(s.data[offsetFrames:], n+1)
}
