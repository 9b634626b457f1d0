// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package local

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/ffutop/rgbled/internal/config"
	"github.com/ffutop/rgbled/internal/simulator"
	"github.com/ffutop/rgbled/internal/simulator/persistence"
	"github.com/ffutop/rgbled/protocol/frame"
	"github.com/ffutop/rgbled/transport"
)

// Client implements transport.Link against an in-process simulated controller.
type Client struct {
	cfg config.LocalConfig

	mu         sync.Mutex
	controller *simulator.Controller
	storage    persistence.Storage
	sent       []frame.Frame
}

// NewClient creates a new Local Client. Storage is opened on Connect.
func NewClient(cfg config.LocalConfig) *Client {
	return &Client{cfg: cfg}
}

func newStorage(cfg config.PersistenceConfig) persistence.Storage {
	switch cfg.Type {
	case "file":
		slog.Info("Initializing simulator with file persistence", "path", cfg.Path)
		return persistence.NewFileStorage(cfg.Path)
	case "mmap":
		slog.Info("Initializing simulator with MMAP persistence", "path", cfg.Path)
		return persistence.NewMmapStorage(cfg.Path)
	default:
		slog.Info("Initializing simulator with memory storage (non-persistent)")
		return persistence.NewMemoryStorage()
	}
}

// Connect loads the simulator state.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.controller != nil {
		return nil
	}
	storage := newStorage(c.cfg.Persistence)
	state, err := storage.Load()
	if err != nil {
		return &transport.PortUnavailableError{Port: "simulator:" + c.cfg.Persistence.Path, Err: err}
	}
	c.storage = storage
	c.controller = simulator.NewController(state, storage)
	return nil
}

// Write processes the frame locally.
func (c *Client) Write(ctx context.Context, f frame.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.controller == nil {
		return transport.ErrNotConnected
	}
	n, err := c.controller.ProcessStream(bytes.NewReader(f))
	if err != nil {
		return err
	}
	if n == 0 {
		return &frame.MalformedFrameError{Frame: f.String(), Reason: "no frame in write"}
	}
	c.sent = append(c.sent, append(frame.Frame(nil), f...))
	return nil
}

// Frames returns a copy of every frame accepted so far.
func (c *Client) Frames() []frame.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame.Frame(nil), c.sent...)
}

// Controller returns the simulated controller, nil while not connected.
func (c *Client) Controller() *simulator.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

// Close saves and closes the storage.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage == nil {
		return nil
	}
	err := c.storage.Save(c.controller.State())
	if err != nil {
		err = fmt.Errorf("save simulator state: %w", err)
	}
	err = multierr.Combine(err, c.storage.Close())
	c.storage = nil
	c.controller = nil
	return err
}
