package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/pkg/env"
)

func newTestRootCommand() (*rootCommand, *bytes.Buffer) {
	out := &bytes.Buffer{}
	root := NewRootCommand(strings.NewReader(""), out, out, env.Empty(), clockwork.NewRealClock())
	return root, out
}

func TestRootSubCommands(t *testing.T) {
	t.Parallel()
	root, _ := newTestRootCommand()

	var names []string
	for _, cmd := range root.cmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"run"}, names)
}

func TestRootCmdPersistentFlags(t *testing.T) {
	t.Parallel()
	root, _ := newTestRootCommand()

	var names []string
	root.cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		names = append(names, flag.Name)
	})
	assert.Equal(t, []string{"help", "log-file", "verbose"}, names)
}

func TestRunCmdFlags(t *testing.T) {
	t.Parallel()
	root, _ := newTestRootCommand()

	var names []string
	for _, cmd := range root.cmd.Commands() {
		if cmd.Name() == "run" {
			cmd.Flags().VisitAll(func(flag *pflag.Flag) {
				names = append(names, flag.Name)
			})
		}
	}
	assert.Equal(t, []string{
		"backend-url",
		"egress-key",
		"egress-url",
		"notify-url",
		"probe-url",
		"route-class",
		"start-at",
		"tasks",
	}, names)
}

func TestExecuteHelp(t *testing.T) {
	t.Parallel()
	root, out := newTestRootCommand()

	assert.Equal(t, 0, root.Execute())
	assert.Contains(t, out.String(), "Available Commands:")
}

func TestInit(t *testing.T) {
	t.Parallel()
	root, _ := newTestRootCommand()
	assert.False(t, root.initialized)
	assert.Nil(t, root.logger)

	require.NoError(t, root.init(root.cmd))
	assert.True(t, root.initialized)
	assert.NotNil(t, root.logger)
}

func TestRunMissingOptions(t *testing.T) {
	t.Parallel()
	root, out := newTestRootCommand()
	root.cmd.SetArgs([]string{"run"})

	assert.Equal(t, 1, root.Execute())
	assert.Contains(t, out.String(), "Invalid parameters:")
	assert.Contains(t, out.String(), `Missing tasks file.`)
	assert.Contains(t, out.String(), `Missing route class.`)
}

func TestRunInvalidStartAt(t *testing.T) {
	t.Parallel()
	root, out := newTestRootCommand()
	root.cmd.SetArgs([]string{
		"run",
		"--tasks", "tasks.json",
		"--route-class", "residential",
		"--egress-url", "https://egress.local",
		"--backend-url", "https://backend.local",
		"--probe-url", "https://probe.local",
		"--start-at", "today at ten",
	})

	assert.Equal(t, 1, root.Execute())
	assert.Contains(t, out.String(), `invalid "start-at" value`)
}
