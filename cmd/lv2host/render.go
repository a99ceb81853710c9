package main

import (
	"context"
	"errors"
	"flag"

	"github.com/sirupsen/logrus"

	"pipelined.dev/lv2/host"
)

type renderCommand struct {
	sessionFlags
	out  string
	bits int
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Process audio and events with plugin and save output to file"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	cmd.sessionFlags.Register(fs)
	fs.StringVar(&cmd.out, "out", "", "output file, wav or mp3 (required)")
	fs.IntVar(&cmd.bits, "bits", 16, "bit depth of wav output")
}

func (cmd *renderCommand) Validate() error {
	err := cmd.sessionFlags.Validate(false)
	if cmd.out == "" {
		err = errors.Join(err, errors.New("Missing -out required flag"))
	}
	return err
}

func (cmd *renderCommand) Run(config *config) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	sink, err := newSink(cmd.out, cmd.bits)
	if err != nil {
		return err
	}
	s, err := cmd.newSession(config.logger)
	if err != nil {
		return err
	}
	r, err := host.Start(context.Background(), s, sink)
	if err != nil {
		return err
	}
	if err := r.Wait(); err != nil {
		return err
	}
	config.logger.WithFields(logrus.Fields{
		"out":    cmd.out,
		"frames": s.Position(),
	}).Info("rendered")
	report(config.logger, s)
	return nil
}
