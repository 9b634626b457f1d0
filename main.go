// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/ffutop/rgbled/internal/config"
	"github.com/ffutop/rgbled/internal/sequencer"
	"github.com/ffutop/rgbled/protocol/frame"
	"github.com/ffutop/rgbled/transport"
	"github.com/ffutop/rgbled/transport/local"
	"github.com/ffutop/rgbled/transport/serial"
	"github.com/ffutop/rgbled/transport/tcplink"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := config.NewFlagSet("rgbled")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Load Configuration
	cfg, err := config.LoadConfig(fs)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}

	setupLogger(cfg.Log)

	slog.Info("Starting RGB LED command sender", "link", cfg.Link.Type, "port", portName(cfg.Link), "baud", cfg.Link.Serial.BaudRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seq := sequencer.New(newLink(cfg.Link), sequencer.Options{
		Timing:   cfg.Timing,
		Sequence: cfg.Sequence,
	})

	if cfg.Once.Color != "" {
		c, err := frame.ParseColor(cfg.Once.Color)
		if err != nil {
			slog.Error("Invalid --color", "err", err)
			return 1
		}
		err = seq.SendOnce(ctx, frame.LED(cfg.Once.LED), c)
		return report(err)
	}
	return report(seq.Run(ctx))
}

func newLink(cfg config.LinkConfig) transport.Link {
	switch cfg.Type {
	case config.LinkTCP:
		return tcplink.NewClient(cfg.Tcp)
	case config.LinkLocal:
		return local.NewClient(cfg.Local)
	default:
		return serial.NewLink(cfg.Serial)
	}
}

func portName(cfg config.LinkConfig) string {
	switch cfg.Type {
	case config.LinkTCP:
		return cfg.Tcp.Address
	case config.LinkLocal:
		return "simulator"
	default:
		return cfg.Serial.Device
	}
}

// report logs the outcome of a session and maps it to an exit code.
// A user interrupt is a clean exit unless closing the link also failed.
func report(err error) int {
	var portErr *transport.PortUnavailableError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		slog.Warn("Sequence interrupted by user")
		code := 0
		for _, e := range multierr.Errors(err) {
			if !errors.Is(e, context.Canceled) {
				slog.Error("Failed to close link", "err", e)
				code = 1
			}
		}
		return code
	case errors.As(err, &portErr):
		slog.Error("Could not open port", "port", portErr.Port, "err", portErr.Err)
		for i, hint := range portErr.Hints() {
			slog.Error("Make sure", "check", i+1, "hint", hint)
		}
		return 1
	default:
		slog.Error("Sequence failed", "err", err)
		return 1
	}
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
