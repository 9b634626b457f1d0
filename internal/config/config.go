// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Link types
const (
	LinkSerial = "serial"
	LinkTCP    = "tcp"
	LinkLocal  = "local"
)

// Config defines the global configuration structure
type Config struct {
	Link     LinkConfig     `mapstructure:"link"`
	Timing   TimingConfig   `mapstructure:"timing"`
	Sequence SequenceConfig `mapstructure:"sequence"`
	Once     OnceConfig     `mapstructure:"once"`
	Log      LogConfig      `mapstructure:"log"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// LinkConfig selects how frames reach the controller
type LinkConfig struct {
	Type   string       `mapstructure:"type"`   // "serial", "tcp", "local"
	Serial SerialConfig `mapstructure:"serial"` // Used if Type is "serial"
	Tcp    TcpConfig    `mapstructure:"tcp"`    // Used if Type is "tcp"
	Local  LocalConfig  `mapstructure:"local"`  // Used if Type is "local"
}

// LocalConfig defines settings for the simulated controller
type LocalConfig struct {
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig defines data storage settings
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap"
	Path string `mapstructure:"path"` // File path for "file/mmap" type
}

// TcpConfig defines settings for a serial-over-TCP bridge
type TcpConfig struct {
	Address string        `mapstructure:"address"` // e.g. "192.168.1.100:2000"
	Timeout time.Duration `mapstructure:"timeout"`
}

// SerialConfig defines UART settings
type SerialConfig struct {
	Device   string        `mapstructure:"device"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"`
	StopBits int           `mapstructure:"stop_bits"`
	Timeout  time.Duration `mapstructure:"timeout"` // Read timeout, frames are never read back

	// RS485 specific
	RS485              bool          `mapstructure:"rs485"`
	DelayRtsBeforeSend time.Duration `mapstructure:"delay_rts_before_send"`
	DelayRtsAfterSend  time.Duration `mapstructure:"delay_rts_after_send"`
	RtsHighDuringSend  bool          `mapstructure:"rts_high_during_send"`
	RtsHighAfterSend   bool          `mapstructure:"rts_high_after_send"`
	RxDuringTx         bool          `mapstructure:"rx_during_tx"`
}

// TimingConfig holds the fixed pauses that pace the controller.
// The controller has no acknowledgement, so these must stay larger than its
// processing time. PhasePause defaults to 0: the last command_pause of a
// phase already settles the controller before the next one starts.
type TimingConfig struct {
	Settle         time.Duration `mapstructure:"settle"`           // after the port opens
	LEDSelectPause time.Duration `mapstructure:"led_select_pause"` // after a standalone LED select
	LEDToRGB       time.Duration `mapstructure:"led_to_rgb"`       // between LED select and RGB in a combined send
	WriteComplete  time.Duration `mapstructure:"write_complete"`   // after each RGB frame
	CommandPause   time.Duration `mapstructure:"command_pause"`    // between colour commands
	RampPause      time.Duration `mapstructure:"ramp_pause"`       // between ramp steps
	PhasePause     time.Duration `mapstructure:"phase_pause"`      // between phases, on top of the last command_pause
}

// SequenceConfig parameterizes the built-in choreography
type SequenceConfig struct {
	PrimaryLED   int `mapstructure:"primary_led"`
	SecondaryLED int `mapstructure:"secondary_led"`
	RampStep     int `mapstructure:"ramp_step"`
}

// OnceConfig requests a single colour instead of the choreography
type OnceConfig struct {
	Color string `mapstructure:"color"` // "#rrggbb"; empty runs the choreography
	LED   int    `mapstructure:"led"`
}

// DefaultDevice is the serial device used when none is configured.
func DefaultDevice() string {
	if runtime.GOOS == "windows" {
		return "COM5"
	}
	return "/dev/ttyUSB0"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("link.type", LinkSerial)
	v.SetDefault("link.serial.device", DefaultDevice())
	v.SetDefault("link.serial.baud_rate", 57600)
	v.SetDefault("link.serial.data_bits", 8)
	v.SetDefault("link.serial.parity", "N")
	v.SetDefault("link.serial.stop_bits", 1)
	v.SetDefault("link.serial.timeout", time.Second)
	v.SetDefault("link.tcp.address", "")
	v.SetDefault("link.tcp.timeout", 5*time.Second)
	v.SetDefault("link.local.persistence.type", "memory")
	v.SetDefault("link.local.persistence.path", "")

	v.SetDefault("timing.settle", 500*time.Millisecond)
	v.SetDefault("timing.led_select_pause", 200*time.Millisecond)
	v.SetDefault("timing.led_to_rgb", 100*time.Millisecond)
	v.SetDefault("timing.write_complete", 10*time.Millisecond)
	v.SetDefault("timing.command_pause", 500*time.Millisecond)
	v.SetDefault("timing.ramp_pause", 200*time.Millisecond)
	v.SetDefault("timing.phase_pause", 0)

	v.SetDefault("sequence.primary_led", 16)
	v.SetDefault("sequence.secondary_led", 17)
	v.SetDefault("sequence.ramp_step", 16)

	v.SetDefault("once.color", "")
	v.SetDefault("once.led", 16)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "") // stdout
}

// NewFlagSet defines the command line flags understood by LoadConfig.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Configuration file path.")
	fs.String("link", LinkSerial, "Link type (serial, tcp, local).")
	fs.StringP("device", "p", DefaultDevice(), "Serial port device name.")
	fs.IntP("baud", "s", 57600, "Serial port speed.")
	fs.String("tcp", "", "Address of a serial-over-TCP bridge, implies --link=tcp.")
	fs.Bool("dry-run", false, "Send frames to the in-process simulator instead of a device.")
	fs.String("color", "", "Send a single colour (#rrggbb) instead of the test sequence.")
	fs.Int("led", 16, "LED selector for --color (16 or 17).")
	fs.StringP("log_level", "v", "info", "Log verbosity level (debug, info, warn, error).")
	fs.StringP("log_file", "L", "", "Log file name ('-' for logging to STDOUT only).")
	return fs
}

var flagKeys = map[string]string{
	"link":      "link.type",
	"device":    "link.serial.device",
	"baud":      "link.serial.baud_rate",
	"tcp":       "link.tcp.address",
	"color":     "once.color",
	"led":       "once.led",
	"log_level": "log.level",
	"log_file":  "log.file",
}

// LoadConfig loads configuration from defaults, an optional file, the
// environment (RGBLED_*) and the already parsed flags, in increasing priority.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("rgbled")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFile string
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
		configFile, _ = fs.GetString("config")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/rgbled/")
		v.AddConfigPath("$HOME/.rgbled")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Everything has a default, so no config file is fine.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if fs != nil {
		if fs.Changed("tcp") && !fs.Changed("link") {
			config.Link.Type = LinkTCP
		}
		if dry, _ := fs.GetBool("dry-run"); dry {
			config.Link.Type = LinkLocal
		}
	}

	fixupSerial(&config.Link.Serial)
	config.Link.Type = strings.ToLower(config.Link.Type)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.Timeout == 0 {
		s.Timeout = time.Second
	}
}

func validLED(n int) bool {
	return n == 16 || n == 17
}

// Validate checks the values LoadConfig cannot default away.
func (c *Config) Validate() error {
	switch c.Link.Type {
	case LinkSerial:
		if c.Link.Serial.Device == "" {
			return fmt.Errorf("link.serial.device is required")
		}
		if c.Link.Serial.BaudRate <= 0 {
			return fmt.Errorf("invalid baud rate: %d", c.Link.Serial.BaudRate)
		}
		switch c.Link.Serial.Parity {
		case "N", "E", "O":
		default:
			return fmt.Errorf("invalid parity: %q", c.Link.Serial.Parity)
		}
	case LinkTCP:
		if c.Link.Tcp.Address == "" {
			return fmt.Errorf("link.tcp.address is required for tcp link")
		}
	case LinkLocal:
	default:
		return fmt.Errorf("unknown link type: %q", c.Link.Type)
	}

	if !validLED(c.Sequence.PrimaryLED) || !validLED(c.Sequence.SecondaryLED) {
		return fmt.Errorf("sequence LEDs must be 16 or 17, got %d and %d", c.Sequence.PrimaryLED, c.Sequence.SecondaryLED)
	}
	if c.Sequence.RampStep < 1 || c.Sequence.RampStep > 255 {
		return fmt.Errorf("ramp step out of range: %d", c.Sequence.RampStep)
	}
	return nil
}
