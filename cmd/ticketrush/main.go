package main

import (
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/ticketrush/ticketrush/internal/pkg/cli"
	"github.com/ticketrush/ticketrush/internal/pkg/env"
)

func main() {
	envs, err := env.FromOs()
	if err != nil {
		panic(err)
	}

	// Run command
	cmd := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr, envs, clockwork.NewRealClock())
	os.Exit(cmd.Execute())
}
