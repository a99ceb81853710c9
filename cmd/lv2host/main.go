package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"pipelined.dev/lv2/amp"
	"pipelined.dev/lv2/fifths"
	"pipelined.dev/lv2/host"
	"pipelined.dev/lv2/log"
	"pipelined.dev/lv2/metro"
	"pipelined.dev/lv2/midigate"
)

type config struct {
	args   []string
	stdout io.Writer
	logger *logrus.Logger
}

type command interface {
	Name() string
	Help() string
	Run(*config) error
	Register(*flag.FlagSet)
}

func (config *config) run() int {
	cmdName, args := parseArgs(config.args)
	if cmdName == "" {
		config.printUsage()
		return errorExitCode
	}

	for _, cmd := range commands() {
		if cmd.Name() == cmdName {
			flags := flag.NewFlagSet(cmdName, flag.ContinueOnError)
			flags.SetOutput(config.stdout)
			cmd.Register(flags)
			if err := flags.Parse(args); err != nil {
				return errorExitCode
			}
			if err := cmd.Run(config); err != nil {
				fmt.Fprintf(config.stdout, "Command failed: %v\n", err)
				return errorExitCode
			}
			return successExitCode
		}
	}
	config.printUsage()
	return errorExitCode
}

var (
	successExitCode = 0
	errorExitCode   = 1
	registry        = host.NewRegistry(
		metro.Descriptor,
		midigate.Descriptor,
		fifths.Descriptor,
		amp.Descriptor,
	)
)

func commands() []command {
	return []command{
		&listCommand{},
		&renderCommand{},
		&playCommand{},
	}
}

func main() {
	c := config{
		args:   os.Args,
		stdout: os.Stdout,
		logger: log.GetLogger(),
	}
	os.Exit(c.run())
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func (config *config) printUsage() {
	fmt.Fprintln(config.stdout, "lv2host is a CLI host for LV2 plugins")
	fmt.Fprintln(config.stdout)
	fmt.Fprintln(config.stdout, "Usage: lv2host <command> [flags]")
	fmt.Fprintln(config.stdout)
	fmt.Fprintln(config.stdout, "Commands:")
	for _, cmd := range commands() {
		fmt.Fprintf(config.stdout, "\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}
