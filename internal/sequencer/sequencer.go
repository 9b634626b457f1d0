// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/ffutop/rgbled/internal/config"
	"github.com/ffutop/rgbled/protocol/frame"
	"github.com/ffutop/rgbled/transport"
)

// Options configures a Sequencer.
type Options struct {
	Timing   config.TimingConfig
	Sequence config.SequenceConfig
	// Clock drives the pauses. Defaults to the wall clock.
	Clock clock.Clock
}

// Sequencer owns a Link for the length of a session and paces frames onto it.
// It is not safe for concurrent use; the controller has no flow control and
// frames must go out strictly one after another.
type Sequencer struct {
	link   transport.Link
	timing config.TimingConfig
	seq    config.SequenceConfig
	clock  clock.Clock

	sent int
}

// New creates a Sequencer. The link must not be connected yet.
func New(link transport.Link, opts Options) *Sequencer {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Sequencer{
		link:   link,
		timing: opts.Timing,
		seq:    opts.Sequence,
		clock:  clk,
	}
}

// Sent returns the number of frames written in the current session.
func (s *Sequencer) Sent() int {
	return s.sent
}

// Run opens the link, plays the built-in choreography and closes the link.
func (s *Sequencer) Run(ctx context.Context) error {
	return s.session(ctx, func(ctx context.Context) error {
		return s.Play(ctx, Choreography(s.seq, s.timing))
	})
}

// SendOnce opens the link, sends a single colour to led and closes the link.
func (s *Sequencer) SendOnce(ctx context.Context, led frame.LED, c frame.Color) error {
	return s.session(ctx, func(ctx context.Context) error {
		return s.SendColor(ctx, c, led)
	})
}

// session brackets body with Connect and Close. A failed Connect returns
// before anything is written; otherwise Close runs exactly once, last.
func (s *Sequencer) session(ctx context.Context, body func(context.Context) error) (err error) {
	if err := s.link.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.link.Close())
	}()

	s.sent = 0
	start := s.clock.Now()
	if err := s.pause(ctx, s.timing.Settle); err != nil {
		return err
	}
	if err := body(ctx); err != nil {
		return err
	}
	slog.Info("All commands sent successfully", "frames", s.sent, "elapsed", s.clock.Since(start).Round(time.Millisecond))
	return nil
}

// Play executes phases in order. The context is checked before every step,
// a frame already handed to the link is not taken back.
func (s *Sequencer) Play(ctx context.Context, phases []Phase) error {
	for i, phase := range phases {
		if i > 0 {
			if err := s.pause(ctx, s.timing.PhasePause); err != nil {
				return err
			}
		}
		slog.Info("Starting phase", "phase", phase.Name, "steps", len(phase.Steps))

		for _, step := range phase.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.exec(ctx, step); err != nil {
				return fmt.Errorf("phase %q, step %q: %w", phase.Name, step.Name, err)
			}
			if err := s.pause(ctx, step.Pause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Sequencer) exec(ctx context.Context, step Step) error {
	switch step.Kind {
	case StepSelect:
		return s.SelectLED(ctx, step.LED)
	case StepColor:
		return s.SendColor(ctx, step.Color, step.LED)
	default:
		return fmt.Errorf("unknown step kind %d", step.Kind)
	}
}

// SelectLED sends a standalone LED-select frame. An invalid selector is
// logged and skipped, it is not an error for the run.
func (s *Sequencer) SelectLED(ctx context.Context, led frame.LED) error {
	f, err := frame.EncodeLEDSelect(led)
	if err != nil {
		logInvalidLED(err)
		return nil
	}
	if err := s.write(ctx, f); err != nil {
		return err
	}
	slog.Info("Sent LED command", "frame", f.String())
	return nil
}

// SendColor sends c, preceded by an LED-select frame when led is a valid
// selector. NoLED sends the colour to whatever LED is already selected.
func (s *Sequencer) SendColor(ctx context.Context, c frame.Color, led frame.LED) error {
	if led != frame.NoLED {
		ledFrame, err := frame.EncodeLEDSelect(led)
		if err != nil {
			logInvalidLED(err)
		} else {
			if err := s.write(ctx, ledFrame); err != nil {
				return err
			}
			slog.Info("Sent LED command", "frame", ledFrame.String())
			if err := s.pause(ctx, s.timing.LEDToRGB); err != nil {
				return err
			}
		}
	}

	f := c.Frame()
	if err := s.write(ctx, f); err != nil {
		return err
	}
	slog.Info("Sent RGB", "frame", f.String(), "r", c.R, "g", c.G, "b", c.B)

	// 16 bytes at 57600 baud take about 2.8ms on the wire.
	return s.pause(ctx, s.timing.WriteComplete)
}

func (s *Sequencer) write(ctx context.Context, f frame.Frame) error {
	if err := s.link.Write(ctx, f); err != nil {
		return err
	}
	s.sent++
	return nil
}

// pause blocks for d or until ctx is done.
func (s *Sequencer) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	slog.Debug("pause", "duration", d)
	t := s.clock.Timer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func logInvalidLED(err error) {
	var ledErr *frame.InvalidLEDError
	if errors.As(err, &ledErr) {
		slog.Warn("Skipping LED command", "led", int(ledErr.LED), "err", err)
		return
	}
	slog.Warn("Skipping LED command", "err", err)
}
