// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package serial

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	slib "github.com/grid-x/serial"

	"github.com/ffutop/rgbled/internal/config"
	"github.com/ffutop/rgbled/protocol/frame"
	"github.com/ffutop/rgbled/transport"
)

// Link writes frames to a local serial device.
type Link struct {
	// Serial port configuration.
	slib.Config

	mu sync.Mutex
	// port is platform-dependent data structure for serial port.
	port io.ReadWriteCloser
}

// NewLink maps the serial config section onto a grid-x/serial config.
func NewLink(cfg config.SerialConfig) *Link {
	l := &Link{}
	l.Config.Address = cfg.Device
	l.Config.BaudRate = cfg.BaudRate
	l.Config.DataBits = cfg.DataBits
	l.Config.StopBits = cfg.StopBits
	l.Config.Parity = cfg.Parity
	l.Config.Timeout = cfg.Timeout

	l.Config.RS485.Enabled = cfg.RS485
	l.Config.RS485.DelayRtsBeforeSend = cfg.DelayRtsBeforeSend
	l.Config.RS485.DelayRtsAfterSend = cfg.DelayRtsAfterSend
	l.Config.RS485.RtsHighDuringSend = cfg.RtsHighDuringSend
	l.Config.RS485.RtsHighAfterSend = cfg.RtsHighAfterSend
	l.Config.RS485.RxDuringTx = cfg.RxDuringTx
	return l
}

func (l *Link) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if l.port != nil {
		return nil
	}
	port, err := slib.Open(&l.Config)
	if err != nil {
		return &transport.PortUnavailableError{Port: l.Config.Address, Err: err}
	}
	l.port = port
	slog.Info("Connected", "port", l.Config.Address, "baud", l.Config.BaudRate)
	return nil
}

func (l *Link) Write(ctx context.Context, f frame.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if l.port == nil {
		return transport.ErrNotConnected
	}
	slog.Debug("write to serial port", "port", l.Config.Address, "frame", f.String())
	if _, err := l.port.Write(f); err != nil {
		return fmt.Errorf("failed to write to %s: %w", l.Config.Address, err)
	}
	return nil
}

func (l *Link) Close() (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port != nil {
		err = l.port.Close()
		l.port = nil
		slog.Info("Serial port closed", "port", l.Config.Address)
	}
	return
}
