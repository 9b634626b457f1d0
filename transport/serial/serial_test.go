// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.
package serial

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/ffutop/rgbled/internal/config"
	"github.com/ffutop/rgbled/protocol/frame"
	"github.com/ffutop/rgbled/transport"
)

type mockPort struct {
	io.Reader
	io.Writer
	closed int
}

func (m *mockPort) Close() error {
	m.closed++
	return nil
}

func TestNewLink(t *testing.T) {
	l := NewLink(config.SerialConfig{
		Device:   "/dev/ttyUSB1",
		BaudRate: 57600,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  time.Second,
		RS485:    true,
	})
	if l.Config.Address != "/dev/ttyUSB1" || l.Config.BaudRate != 57600 {
		t.Errorf("unexpected serial config: %+v", l.Config)
	}
	if l.Config.Timeout != time.Second || !l.Config.RS485.Enabled {
		t.Errorf("timeout/rs485 not mapped: %+v", l.Config)
	}
}

func TestLink_Write(t *testing.T) {
	writer := &bytes.Buffer{}
	mock := &mockPort{Reader: bytes.NewReader(nil), Writer: writer}

	l := NewLink(config.SerialConfig{Device: "mock"})
	// Inject Mock, Connect must not reopen it.
	l.port = mock
	if err := l.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	ctx := context.Background()
	led, _ := frame.EncodeLEDSelect(frame.LED17)
	if err := l.Write(ctx, led); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := l.Write(ctx, frame.EncodeRGB(100, 50, 200)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := "{L017}{R100,G050,B200}"
	if got := writer.String(); got != want {
		t.Errorf("Written bytes mismatch.\nWant: %s\nGot:  %s", want, got)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if mock.closed != 1 {
		t.Errorf("port closed %d times, want 1", mock.closed)
	}
}

func TestLink_WriteNotConnected(t *testing.T) {
	l := NewLink(config.SerialConfig{Device: "mock"})
	err := l.Write(context.Background(), frame.EncodeRGB(1, 2, 3))
	if !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestLink_WriteCanceled(t *testing.T) {
	writer := &bytes.Buffer{}
	l := NewLink(config.SerialConfig{Device: "mock"})
	l.port = &mockPort{Reader: bytes.NewReader(nil), Writer: writer}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Write(ctx, frame.EncodeRGB(1, 2, 3)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if writer.Len() != 0 {
		t.Errorf("nothing should be written after cancel, got %q", writer.String())
	}
}

func TestLink_ConnectUnavailable(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "ttyNOPE")
	l := NewLink(config.SerialConfig{Device: dev, BaudRate: 57600, DataBits: 8, StopBits: 1, Parity: "N"})

	err := l.Connect(context.Background())
	var pErr *transport.PortUnavailableError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *PortUnavailableError, got %v", err)
	}
	if pErr.Port != dev {
		t.Errorf("Port = %s, want %s", pErr.Port, dev)
	}
	if len(pErr.Hints()) != 3 {
		t.Errorf("expected 3 hints, got %v", pErr.Hints())
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on unopened link: %v", err)
	}
}
