package cli

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ticketrush/ticketrush/internal/pkg/env"
	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/options"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
	"github.com/ticketrush/ticketrush/internal/pkg/version"
)

const description = `
Ticketrush CLI

Submit a batch of reservation applications
through validated egress routes.

Write the accounts to a tasks file and start
the batch with the "run" sub-command.
`

type rootCommand struct {
	cmd         *cobra.Command
	clock       clockwork.Clock
	envs        *env.Map // ENVs from OS, extended by ".env" files
	options     *options.Options
	logger      log.Logger
	logFile     *log.File
	start       time.Time // cmd start time
	initialized bool      // init method was called
}

// NewRootCommand creates parent of all sub-commands.
func NewRootCommand(stdin io.Reader, stdout io.Writer, stderr io.Writer, envs *env.Map, clock clockwork.Clock) *rootCommand {
	root := &rootCommand{
		clock:   clock,
		envs:    envs,
		options: options.NewOptions(),
		start:   clock.Now(),
	}

	root.cmd = &cobra.Command{
		Use:          path.Base(os.Args[0]), // name of the binary
		Version:      version.Version(),
		Short:        description,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Print help if no command specified
			return root.cmd.Help()
		},
	}

	root.cmd.SetIn(stdin)
	root.cmd.SetOut(stdout)
	root.cmd.SetErr(stderr)
	root.cmd.SetVersionTemplate("{{.Version}}")

	// Persistent flags for all sub-commands
	root.options.BindPersistentFlags(root.cmd.PersistentFlags())

	// Root command flags
	root.cmd.Flags().SortFlags = true
	root.cmd.Flags().BoolP("version", "V", false, "print version")

	// Init when flags are parsed
	root.cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return root.init(cmd)
	}

	root.cmd.AddCommand(
		runCommand(root),
	)

	return root
}

// Execute command or sub-command.
func (root *rootCommand) Execute() (exitCode int) {
	if err := root.cmd.Execute(); err != nil {
		// Init, it can be uninitialized, if error occurred before PersistentPreRun call
		_ = root.init(root.cmd)
		root.logger.Errorf("%s", err)
		root.tearDown(true)
		return 1
	}
	root.tearDown(false)
	return 0
}

func (root *rootCommand) ValidateOptions(required []string) error {
	if errs := root.options.Validate(required); len(errs) > 0 {
		root.logger.Warn("Invalid parameters:\n", errs)
		return errors.New("invalid parameters, see output above")
	}
	return nil
}

// init sets logger and options after flags are parsed.
func (root *rootCommand) init(cmd *cobra.Command) (err error) {
	if root.initialized {
		return
	}
	root.initialized = true

	// Logger must always be set up, even if the options load fails
	defer func() {
		if root.logger == nil {
			root.setupLogger()
		}
	}()

	// Load ".env" files from the working directory
	workingDir, osErr := os.Getwd()
	if osErr != nil {
		return osErr
	}
	tmpLogger := log.NewNopLogger()
	root.envs = env.LoadDotEnv(tmpLogger, root.envs, []string{workingDir})

	// Load values from flags and envs
	if err = root.options.Load(root.envs, cmd.Flags()); err != nil {
		return err
	}

	root.setupLogger()
	root.logDebugInfo()
	return nil
}

// setupLogger according to the options.
func (root *rootCommand) setupLogger() {
	logFile, logFileErr := log.NewLogFile(root.options.LogFilePath)
	root.logFile = logFile
	root.logger = log.NewCliLogger(root.cmd.OutOrStdout(), root.cmd.ErrOrStderr(), logFile, root.options.Verbose)
	root.cmd.SetOut(root.logger.InfoWriter())
	root.cmd.SetErr(root.logger.WarnWriter())

	// Warn if user specified a log file and it cannot be opened
	if logFileErr != nil && root.options.LogFilePath != "" {
		root.logger.Warnf(`cannot open log file: %s`, logFileErr)
	}
}

func (root *rootCommand) logDebugInfo() {
	root.logger.Debug(root.cmd.Version)
	root.logger.Debugf("Running command %v", os.Args)
	root.logger.Debug(root.options.Dump())
}

// tearDown makes clean-up after command execution.
func (root *rootCommand) tearDown(errorOccurred bool) {
	if root.logFile == nil {
		return
	}
	if errorOccurred && root.logFile.IsTemp() {
		root.logger.Infof(`details can be found in the log file "%s"`, root.logFile.Path())
	}
	if err := root.logFile.TearDown(errorOccurred); err != nil {
		root.logger.Warnf(`cannot close log file: %s`, err)
	}
}
