// SPDX-License-Identifier: EPL-2.0

// Command blockbridge renders an engine program offline to a WAV file,
// driving the engine through the same node an audio device would use.
//
//	blockbridge -configFilePath render.yaml -control gain=0.5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ik5/blockbridge"
	"github.com/ik5/blockbridge/bridge"
	"github.com/ik5/blockbridge/config"
	"github.com/ik5/blockbridge/engine"
	_ "github.com/ik5/blockbridge/engine/loopback"
	"github.com/ik5/blockbridge/internal/logging"
)

var errUsage = errors.New("usage")

type control struct {
	name  string
	value float64
}

func parseControl(s string) (control, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return control{}, fmt.Errorf("%w: control %q, want name=value", errUsage, s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return control{}, fmt.Errorf("%w: control %q: %w", errUsage, s, err)
	}
	return control{name: strings.TrimSpace(name), value: v}, nil
}

func main() {
	var controls []control

	configFilePath := flag.String("configFilePath", "blockbridge.yaml", "Set the file path to the config file.")
	flag.Func("control", "Set a control channel before rendering, as name=value. May be repeated.", func(s string) error {
		c, err := parseControl(s)
		if err != nil {
			return err
		}
		controls = append(controls, c)
		return nil
	})
	listEngines := flag.Bool("engines", false, "List the available engines and exit.")
	flag.Parse()

	if *listEngines {
		for _, name := range engine.Default.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load(*configFilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logFilePointer, err := logging.ConfigureDefaultLogger(cfg.LogLevel, cfg.LogFile, slog.HandlerOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error while configuring default logger:", err)
		os.Exit(2)
	}
	if logFilePointer != nil {
		defer logFilePointer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, controls); err != nil {
		slog.Error("render failed", "err", err)
		stop()
		if logFilePointer != nil {
			logFilePointer.Close()
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, controls []control) error {
	if cfg.Program == "" {
		return fmt.Errorf("%w: no program configured", errUsage)
	}
	program, err := os.ReadFile(cfg.Program)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	e, err := engine.Open(cfg.Engine)
	if err != nil {
		return err
	}

	nodeOpts := []bridge.NodeOption{
		bridge.WithSampleRate(cfg.SampleRate),
		bridge.WithMessageCallback(func(message string) {
			slog.Debug("engine message", "engine", cfg.Engine, "message", strings.TrimRight(message, "\n"))
		}),
	}
	if cfg.ControlQueue > 0 {
		nodeOpts = append(nodeOpts, bridge.WithControlQueue(cfg.ControlQueue))
	}

	node, err := bridge.NewNode(e, cfg.InputChannels, cfg.OutputChannels, nodeOpts...)
	if err != nil {
		e.Destroy()
		return err
	}
	defer node.Destroy()

	for _, opt := range cfg.Options {
		if err := node.SetOption(opt); err != nil {
			return err
		}
	}

	if err := blockbridge.Compile(node, string(program)); err != nil {
		return err
	}

	if cfg.Score != "" {
		score, err := os.ReadFile(cfg.Score)
		if err != nil {
			return fmt.Errorf("reading score: %w", err)
		}
		if err := node.ReadScore(string(score)); err != nil {
			return err
		}
	}

	for _, c := range controls {
		if err := node.SetControlChannel(c.name, c.value); err != nil {
			return err
		}
	}

	opts := blockbridge.RenderOptions{
		SampleRate:  cfg.SampleRate,
		BitDepth:    cfg.BitDepth,
		Frames:      cfg.Frames(),
		BufferSizes: cfg.BufferSizes,
	}

	if cfg.Input != "" {
		if cfg.InputChannels == 0 {
			return blockbridge.ErrNoInput
		}
		in, err := blockbridge.OpenInput(blockbridge.Decoders(), cfg.Input, cfg.SampleRate, cfg.InputChannels, cfg.InputGain)
		if err != nil {
			return err
		}
		defer in.Close()
		opts.Input = in
	}

	out, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer out.Close()

	slog.Info("rendering",
		"engine", cfg.Engine,
		"program", cfg.Program,
		"output", cfg.Output,
		"frames", opts.Frames,
	)

	stats, err := blockbridge.RenderNode(ctx, node, out, opts)
	if err != nil {
		return err
	}

	slog.Info("render finished",
		"frames", stats.Frames,
		"callbacks", stats.Callbacks,
		"peak dBFS", stats.PeakDBFS(),
		"rms", stats.RMS,
	)
	return nil
}
