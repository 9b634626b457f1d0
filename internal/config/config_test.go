// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := NewFlagSet("test")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return LoadConfig(fs)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Link.Type != LinkSerial {
		t.Errorf("Link.Type = %s, want serial", cfg.Link.Type)
	}
	s := cfg.Link.Serial
	if s.Device != DefaultDevice() || s.BaudRate != 57600 || s.DataBits != 8 || s.Parity != "N" || s.StopBits != 1 {
		t.Errorf("unexpected serial defaults: %+v", s)
	}
	if s.Timeout != time.Second {
		t.Errorf("Serial.Timeout = %v, want 1s", s.Timeout)
	}

	want := TimingConfig{
		Settle:         500 * time.Millisecond,
		LEDSelectPause: 200 * time.Millisecond,
		LEDToRGB:       100 * time.Millisecond,
		WriteComplete:  10 * time.Millisecond,
		CommandPause:   500 * time.Millisecond,
		RampPause:      200 * time.Millisecond,
		PhasePause:     0,
	}
	if cfg.Timing != want {
		t.Errorf("Timing = %+v, want %+v", cfg.Timing, want)
	}
	if cfg.Sequence != (SequenceConfig{PrimaryLED: 16, SecondaryLED: 17, RampStep: 16}) {
		t.Errorf("unexpected sequence defaults: %+v", cfg.Sequence)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgbled.yaml")
	content := `
link:
  type: serial
  serial:
    device: /dev/ttyACM3
    baud_rate: 115200
    parity: e
timing:
  command_pause: 50ms
  ramp_pause: 20ms
sequence:
  ramp_step: 32
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(t, "-c", path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Link.Serial.Device != "/dev/ttyACM3" || cfg.Link.Serial.BaudRate != 115200 {
		t.Errorf("file values not applied: %+v", cfg.Link.Serial)
	}
	if cfg.Link.Serial.Parity != "E" {
		t.Errorf("Parity = %s, want E", cfg.Link.Serial.Parity)
	}
	if cfg.Timing.CommandPause != 50*time.Millisecond || cfg.Timing.RampPause != 20*time.Millisecond {
		t.Errorf("timing not applied: %+v", cfg.Timing)
	}
	if cfg.Timing.Settle != 500*time.Millisecond {
		t.Errorf("untouched default lost: Settle = %v", cfg.Timing.Settle)
	}
	if cfg.Sequence.RampStep != 32 || cfg.Log.Level != "debug" {
		t.Errorf("unexpected values: %+v %+v", cfg.Sequence, cfg.Log)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgbled.yaml")
	if err := os.WriteFile(path, []byte("link:\n  serial:\n    device: /dev/ttyS0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := load(t, "-c", path, "-p", "/dev/ttyUSB7", "-s", "9600")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Link.Serial.Device != "/dev/ttyUSB7" || cfg.Link.Serial.BaudRate != 9600 {
		t.Errorf("flags did not override: %+v", cfg.Link.Serial)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RGBLED_LINK_SERIAL_DEVICE", "/dev/ttyAMA0")
	t.Setenv("RGBLED_TIMING_SETTLE", "2s")
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Link.Serial.Device != "/dev/ttyAMA0" {
		t.Errorf("Device = %s, want /dev/ttyAMA0", cfg.Link.Serial.Device)
	}
	if cfg.Timing.Settle != 2*time.Second {
		t.Errorf("Settle = %v, want 2s", cfg.Timing.Settle)
	}
}

func TestLoadConfig_LinkSelection(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"DryRun", []string{"--dry-run"}, LinkLocal},
		{"TcpImpliesLink", []string{"--tcp", "10.0.0.2:2000"}, LinkTCP},
		{"ExplicitLocal", []string{"--link", "LOCAL"}, LinkLocal},
		{"DryRunWins", []string{"--tcp", "10.0.0.2:2000", "--dry-run"}, LinkLocal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(t, tt.args...)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if cfg.Link.Type != tt.want {
				t.Errorf("Link.Type = %s, want %s", cfg.Link.Type, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	if _, err := load(t, "-c", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Link:     LinkConfig{Type: LinkSerial, Serial: SerialConfig{Device: "/dev/ttyUSB0", BaudRate: 57600, Parity: "N"}},
			Sequence: SequenceConfig{PrimaryLED: 16, SecondaryLED: 17, RampStep: 16},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"ZeroBaud", func(c *Config) { c.Link.Serial.BaudRate = 0 }, true},
		{"NoDevice", func(c *Config) { c.Link.Serial.Device = "" }, true},
		{"BadParity", func(c *Config) { c.Link.Serial.Parity = "X" }, true},
		{"UnknownLink", func(c *Config) { c.Link.Type = "usb" }, true},
		{"TcpWithoutAddress", func(c *Config) { c.Link.Type = LinkTCP }, true},
		{"LocalNeedsNothing", func(c *Config) { c.Link = LinkConfig{Type: LinkLocal} }, false},
		{"BadPrimaryLED", func(c *Config) { c.Sequence.PrimaryLED = 18 }, true},
		{"ZeroRampStep", func(c *Config) { c.Sequence.RampStep = 0 }, true},
		{"HugeRampStep", func(c *Config) { c.Sequence.RampStep = 256 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
