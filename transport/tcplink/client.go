// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcplink

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/ffutop/rgbled/internal/config"
	"github.com/ffutop/rgbled/protocol/frame"
	"github.com/ffutop/rgbled/transport"
)

const (
	tcpTimeout = 5 * time.Second
)

// Client writes raw frames to a serial-over-TCP bridge such as ser2net.
// The bridge owns the UART settings; only the byte stream crosses TCP.
type Client struct {
	Address string
	Timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewClient allocates and initializes a TCP Client.
func NewClient(cfg config.TcpConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = tcpTimeout
	}
	return &Client{
		Address: cfg.Address,
		Timeout: timeout,
	}
}

// Connect dials the bridge.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &transport.PortUnavailableError{Port: c.Address, Err: err}
	}
	c.conn = conn
	slog.Info("Connected", "address", c.Address)
	return nil
}

// Write sends one frame. A failed write drops the connection; there is no
// reconnect, the caller treats it as fatal.
func (c *Client) Write(ctx context.Context, f frame.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.conn == nil {
		return transport.ErrNotConnected
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.Timeout)); err != nil {
		c.close()
		return err
	}
	slog.Debug("write to bridge", "address", c.Address, "frame", f.String())
	if _, err := c.conn.Write(f); err != nil {
		c.close()
		return fmt.Errorf("failed to write to connection: %w", err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

// close closes the connection and resets the state. Caller must hold the mutex.
func (c *Client) close() (err error) {
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return
}
