package main

import (
	"flag"
	"fmt"
)

type listCommand struct{}

func (cmd *listCommand) Name() string {
	return "list"
}

func (cmd *listCommand) Help() string {
	return "Show the list of available plugins"
}

func (cmd *listCommand) Register(fs *flag.FlagSet) {}

func (cmd *listCommand) Run(config *config) error {
	fmt.Fprintln(config.stdout, "Available plugins:")
	for _, uri := range registry.URIs() {
		fmt.Fprintf(config.stdout, "\t%s\t%s\n", uri, registry[uri].Name)
	}
	return nil
}
