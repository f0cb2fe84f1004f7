// SPDX-License-Identifier: EPL-2.0

// Package config loads blockbridge settings with viper: defaults, then an
// optional config file, then BLOCKBRIDGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ik5/blockbridge/internal/logging"
)

// ErrInvalidConfig is returned when a loaded setting is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes the environment variables that override settings.
const EnvPrefix = "BLOCKBRIDGE"

// Config holds everything needed for one render.
type Config struct {
	LogLevel string
	LogFile  string

	// Engine is a name in the engine registry.
	Engine string
	// Options are passed to the engine verbatim, after the realtime set.
	Options []string
	// Program is the path of the orchestra or document to compile.
	Program string
	// Score is an optional score file read after compiling.
	Score string

	SampleRate     int
	InputChannels  int
	OutputChannels int
	// BufferSizes is the device window schedule, in frames.
	BufferSizes []int
	Duration    time.Duration
	// ControlQueue is the control queue capacity; 0 applies updates
	// directly.
	ControlQueue int

	// Input is an optional audio file fed to the engine's inputs.
	Input string
	// InputGain is applied to the input, in dB.
	InputGain float64
	// Output is the WAV file written.
	Output   string
	BitDepth int
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("loglevel", "info")
	v.SetDefault("logfile", "")
	v.SetDefault("engine", "loopback")
	v.SetDefault("options", []string{})
	v.SetDefault("program", "")
	v.SetDefault("score", "")
	v.SetDefault("samplerate", 48000)
	v.SetDefault("inputchannels", 0)
	v.SetDefault("outputchannels", 2)
	v.SetDefault("buffersizes", []int{512})
	v.SetDefault("duration", "5s")
	v.SetDefault("controlqueue", 0)
	v.SetDefault("input", "")
	v.SetDefault("inputgain", 0.0)
	v.SetDefault("output", "out.wav")
	v.SetDefault("bitdepth", 16)
}

// Load reads the settings. An empty path or a missing file leaves the
// defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setViperDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				slog.Error("error during config read", "err", err)
				return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
			slog.Info("no config file found", "configFilePath", path)
		}
	}

	cfg := &Config{
		LogLevel:       v.GetString("loglevel"),
		LogFile:        v.GetString("logfile"),
		Engine:         v.GetString("engine"),
		Options:        v.GetStringSlice("options"),
		Program:        v.GetString("program"),
		Score:          v.GetString("score"),
		SampleRate:     v.GetInt("samplerate"),
		InputChannels:  v.GetInt("inputchannels"),
		OutputChannels: v.GetInt("outputchannels"),
		BufferSizes:    v.GetIntSlice("buffersizes"),
		Duration:       v.GetDuration("duration"),
		ControlQueue:   v.GetInt("controlqueue"),
		Input:          v.GetString("input"),
		InputGain:      v.GetFloat64("inputgain"),
		Output:         v.GetString("output"),
		BitDepth:       v.GetInt("bitdepth"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting that has a fixed range.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case !slices.Contains(logging.Levels, c.LogLevel):
		return invalid("log level %q, want one of %s", c.LogLevel, strings.Join(logging.Levels, ", "))
	case c.Engine == "":
		return invalid("no engine")
	case c.SampleRate <= 0:
		return invalid("sample rate %d", c.SampleRate)
	case c.InputChannels < 0 || c.OutputChannels < 0 || c.InputChannels+c.OutputChannels == 0:
		return invalid("%d input and %d output channels", c.InputChannels, c.OutputChannels)
	case len(c.BufferSizes) == 0:
		return invalid("empty buffer size schedule")
	case c.Duration <= 0:
		return invalid("duration %v", c.Duration)
	case c.ControlQueue < 0:
		return invalid("control queue capacity %d", c.ControlQueue)
	case c.Output == "":
		return invalid("no output file")
	}

	for _, n := range c.BufferSizes {
		if n < 1 {
			return invalid("buffer size %d", n)
		}
	}

	switch c.BitDepth {
	case 8, 16, 24, 32:
	default:
		return invalid("bit depth %d", c.BitDepth)
	}

	return nil
}

// Frames returns the render length in frames at the configured rate.
func (c *Config) Frames() int64 {
	return int64(c.Duration.Seconds() * float64(c.SampleRate))
}
