// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"github.com/ffutop/rgbled/internal/simulator/model"
)

// Storage defines the interface for persisting the simulated controller state.
type Storage interface {
	// Load loads the state from storage.
	// If no data exists, it returns a zeroed state.
	Load() (*model.State, error)

	// Save saves the current state to storage.
	Save(state *model.State) error

	// OnWrite is a hook called whenever a frame changed the state.
	OnWrite()

	// Close releases the backing resources.
	Close() error
}
