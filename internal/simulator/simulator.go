// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package simulator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ffutop/rgbled/internal/simulator/model"
	"github.com/ffutop/rgbled/internal/simulator/persistence"
	"github.com/ffutop/rgbled/protocol/frame"
)

// Controller behaves like the FPGA receiver: an LED-select frame latches the
// target, an RGB frame sets the colour of the latched LED.
type Controller struct {
	state   *model.State
	storage persistence.Storage
}

// NewController creates a Controller over an already loaded state.
func NewController(state *model.State, storage persistence.Storage) *Controller {
	return &Controller{state: state, storage: storage}
}

// State exposes the controller state for inspection.
func (c *Controller) State() *model.State {
	return c.state
}

// Process decodes and applies one frame.
func (c *Controller) Process(f frame.Frame) (frame.Command, error) {
	cmd, err := frame.Decode(f)
	if err != nil {
		return frame.Command{}, fmt.Errorf("simulator: %w", err)
	}

	switch cmd.Kind {
	case frame.KindLEDSelect:
		c.state.Select(cmd.LED)
		slog.Debug("simulator: LED selected", "led", int(cmd.LED))
	case frame.KindRGB:
		if !c.state.SetColor(cmd.Color) {
			// The hardware drops colour data until an LED is latched.
			slog.Warn("simulator: RGB frame before any LED select, ignored", "frame", f.String())
			return cmd, nil
		}
		slog.Debug("simulator: color latched", "led", int(c.state.Selected()), "color", cmd.Color.Hex())
	}

	if c.storage != nil {
		c.storage.OnWrite()
	}
	return cmd, nil
}

// ProcessStream applies every frame read from r, the way the receiver sees
// bytes arriving on its UART. Noise between frames is skipped. It returns
// the number of frames applied.
func (c *Controller) ProcessStream(r io.Reader) (int, error) {
	fr := frame.NewReader(r)
	n := 0
	for {
		f, err := fr.ReadFrame()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("simulator: %w", err)
		}
		if _, err := c.Process(f); err != nil {
			return n, err
		}
		n++
	}
}
