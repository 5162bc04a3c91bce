package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cloudworx/setup/app"
	"github.com/cloudworx/setup/app/setup"
	"github.com/cloudworx/setup/config"
	"github.com/cloudworx/setup/config/store"
	"github.com/cloudworx/setup/config/vars"
	"github.com/cloudworx/setup/log"
	"github.com/cloudworx/setup/platform"
	"github.com/cloudworx/setup/term"

	"github.com/joho/godotenv"
	"github.com/lithammer/shortuuid/v4"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
)

// ExitConfig is the exit code for an invalid configuration of the tool itself.
const ExitConfig = 64

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var eerr *exitError
		if errors.As(err, &eerr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(eerr.ExitCode())
		}

		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet(app.Name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	configfile := flagSet.StringP("config", "c", os.Getenv("SETUP_CONFIGFILE"), "path to the YAML config file")
	envfile := flagSet.String("env-file", os.Getenv("SETUP_ENVFILE"), "path to a dotenv file with SETUP_* variables (default: setup.env)")
	root := flagSet.String("root", "", "project root directory (default: nearest directory with package.json)")
	yes := flagSet.BoolP("yes", "y", false, "answer yes to all questions")
	level := flagSet.String("log-level", "", "diagnostic log level: silent, error, warn, info, debug")
	color := flagSet.String("color", "", "colored output: auto, always, never")
	version := flagSet.Bool("version", false, "print the version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stdout, flagSet)
			return nil
		}

		return &exitError{code: ExitConfig, err: err}
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	if *version {
		fmt.Fprintf(stdout, "%s %s (%s, %s)\n", app.Name, app.Version.String(), app.Arch, app.Compiler)
		return nil
	}

	if rest := flagSet.Args(); len(rest) != 0 {
		return &exitError{code: ExitConfig, err: fmt.Errorf("unexpected argument: %s", rest[0])}
	}

	cfgstore, err := store.NewYAML(store.Location(*configfile))
	if err != nil {
		return &exitError{code: ExitConfig, err: err}
	}

	cfg := cfgstore.Get()

	// Merged without os.Setenv, child processes must not see these values.
	envpath := store.EnvLocation(*envfile)
	if len(envpath) != 0 {
		values, err := godotenv.Read(envpath)
		if err != nil {
			return &exitError{code: ExitConfig, err: fmt.Errorf("%s: %w", envpath, err)}
		}

		cfg.MergeValues(values)
	}

	cfg.Merge()

	overrides := map[string]string{
		"root":       *root,
		"assume_yes": strconv.FormatBool(*yes),
		"log.level":  *level,
		"color":      *color,
	}

	flags := map[string]string{
		"root":       "root",
		"assume_yes": "yes",
		"log.level":  "log-level",
		"color":      "color",
	}

	for name, flag := range flags {
		if !flagSet.Changed(flag) {
			continue
		}

		if err := cfg.Set(name, overrides[name]); err != nil {
			return &exitError{code: ExitConfig, err: fmt.Errorf("--%s: %w", flag, err)}
		}
	}

	cfg.Validate(true)

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return &exitError{code: ExitConfig, err: err}
	}
	defer closeLog()

	logger = logger.WithField("run", shortuuid.New())

	cfg.Messages(func(level string, v vars.Variable, message string) {
		l := logger.WithFields(log.Fields{
			"variable": v.Name,
			"value":    v.Value,
			"env":      v.EnvName,
		})

		switch level {
		case "error":
			l.Error().Log(message)
		case "warn":
			l.Warn().Log(message)
		default:
			l.Info().Log(message)
		}
	})

	if cfg.HasErrors() {
		return &exitError{code: ExitConfig, err: errors.New("invalid configuration")}
	}

	logger.Debug().WithFields(log.Fields{
		"config":    cfgstore.Path(),
		"envfile":   envpath,
		"overrides": cfg.Overrides(),
		"version":   app.Version.String(),
	}).Log("Configuration loaded")

	// ANSI sequences on Windows consoles
	restore, err := termenv.EnableVirtualTerminalProcessing(termenv.NewOutput(stdout))
	if err != nil {
		logger.Debug().WithError(err).Log("Virtual terminal processing not available")

		if cfg.Color == term.ColorAuto {
			cfg.Color = term.ColorNever
		}
	} else {
		defer restore()
	}

	s, err := setup.New(setup.Config{
		Config:   cfg,
		Platform: platform.Detect(),
		Stdout:   stdout,
		Logger:   logger.WithComponent("Setup"),
	})
	if err != nil {
		return &exitError{code: ExitConfig, err: err}
	}

	return s.Run()
}

// newLogger returns the diagnostic logger on w. If a log file is configured,
// the events are also appended to it as JSON.
func newLogger(cfg *config.Config, w io.Writer) (log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.Lwarn
	}

	var writer log.Writer

	if cfg.Log.Format == "json" {
		writer = log.NewJSONWriter(w, level)
	} else {
		writer = log.NewConsoleWriter(w, level, true)
	}

	closeLog := func() {}

	if len(cfg.Log.File) != 0 {
		file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}

		writer = log.NewMultiWriter(writer, log.NewJSONWriter(file, level))
		closeLog = func() {
			writer.Close()
			file.Close()
		}
	}

	return log.New("Main").WithOutput(writer), closeLog, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `%s prepares a checkout of CloudWorx for running the server.

It changes into the project root, validates the .env file, installs the
local certificate authority, generates the certificates for localhost,
and installs the npm dependencies.

Usage:
  %s [flags]

Flags:
%s
Configuration is read from setup.yaml (or --config), setup.env (or
--env-file) and SETUP_* environment variables, in this order. Flags take
precedence. The .env file of the server is never read as configuration.
`, app.Name, app.Name, flagSet.FlagUsages())
}
