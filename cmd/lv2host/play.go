package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"pipelined.dev/lv2/host"
	"pipelined.dev/lv2/oto"
	"pipelined.dev/lv2/portaudio"
)

var errUnknownBackend = errors.New("unknown backend")

type playCommand struct {
	sessionFlags
	backend string
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Process audio and events with plugin and play output until interrupted"
}

func (cmd *playCommand) Register(fs *flag.FlagSet) {
	cmd.sessionFlags.Register(fs)
	fs.StringVar(&cmd.backend, "backend", "portaudio", "audio backend: portaudio or oto")
}

func (cmd *playCommand) Run(config *config) error {
	if err := cmd.sessionFlags.Validate(true); err != nil {
		return err
	}
	sink, err := newDevice(cmd.backend)
	if err != nil {
		return err
	}
	s, err := cmd.newSession(config.logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	r, err := host.Start(ctx, s, sink)
	if err != nil {
		return err
	}
	err = r.Wait()
	report(config.logger, s)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newDevice(backend string) (host.Sink, error) {
	switch backend {
	case "portaudio":
		return portaudio.NewSink(), nil
	case "oto":
		return oto.NewSink(), nil
	}
	return nil, fmt.Errorf("%q: %w", backend, errUnknownBackend)
}
