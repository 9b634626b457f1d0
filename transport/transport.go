// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/ffutop/rgbled/protocol/frame"
)

// ErrNotConnected is returned by Write on a link that is not open.
var ErrNotConnected = errors.New("link is not connected")

// Link is a write-only connection to an LED controller.
// There is no response path: the controller never answers.
type Link interface {
	// Connect opens the underlying device. Failing to open it must be
	// reported as *PortUnavailableError.
	Connect(ctx context.Context) error
	// Write sends one complete frame.
	Write(ctx context.Context, f frame.Frame) error
	// Close releases the device. It is safe to call on a link that was
	// never connected.
	Close() error
}

// PortUnavailableError means the device behind a Link could not be opened.
type PortUnavailableError struct {
	Port string
	Err  error
}

func (e *PortUnavailableError) Error() string {
	return fmt.Sprintf("could not open %s: %v", e.Port, e.Err)
}

func (e *PortUnavailableError) Unwrap() error {
	return e.Err
}

// Hints lists the usual causes, in the order worth checking them.
func (e *PortUnavailableError) Hints() []string {
	return []string{
		fmt.Sprintf("the port %s is available", e.Port),
		"no other program is using the port",
		"the device is connected and powered on",
	}
}
