// Package setup runs the precondition checks that prepare a checkout of the
// project for running the server.
package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cloudworx/setup/app"
	"github.com/cloudworx/setup/check"
	"github.com/cloudworx/setup/config"
	"github.com/cloudworx/setup/envfile"
	"github.com/cloudworx/setup/glob"
	"github.com/cloudworx/setup/io/fs"
	"github.com/cloudworx/setup/log"
	"github.com/cloudworx/setup/platform"
	"github.com/cloudworx/setup/process"
	"github.com/cloudworx/setup/term"
)

// Setup is the setup run.
type Setup interface {
	// Run runs all checks in order and stops at the first failing check.
	// The returned error implements ExitCode() int.
	Run() error

	// Root returns the root directory of the project.
	Root() string
}

// Printer writes the transcript of a run.
type Printer interface {
	check.Printer
	process.Printer

	Banner(name, version string)
}

// Config is the configuration for a setup run. Only Config is required, all
// other fields have defaults.
type Config struct {
	Config   *config.Config
	Platform platform.Info

	FS       fs.Filesystem  // Defaults to the disk filesystem at the root
	Runner   process.Runner // Defaults to the shell of the platform
	Prompter check.Prompter // Defaults to questions on Stdin
	Printer  Printer        // Defaults to a printer on Stdout

	Stdin  io.Reader // Defaults to os.Stdin
	Stdout io.Writer // Defaults to os.Stdout

	Logger log.Logger
}

type setup struct {
	root     string
	serve    string
	platform platform.Info

	printer Printer
	runner  process.Runner
	checks  []check.Check

	logger log.Logger
}

// New returns a new setup run for the given configuration. The configuration
// is expected to be validated.
func New(config Config) (Setup, error) {
	cfg := config.Config
	if cfg == nil {
		return nil, fmt.Errorf("no configuration provided")
	}

	s := &setup{
		serve:    cfg.Deps.Serve,
		platform: config.Platform,
		printer:  config.Printer,
		runner:   config.Runner,
		logger:   config.Logger,
	}

	if s.logger == nil {
		s.logger = log.New("")
	}

	stdin, stdout := config.Stdin, config.Stdout

	if stdin == nil {
		stdin = os.Stdin
	}

	if stdout == nil {
		stdout = os.Stdout
	}

	root, err := resolveRoot(cfg.Root, cfg.Deps.Manifest)
	if err != nil {
		return nil, err
	}

	s.root = root
	s.logger = s.logger.WithField("root", root)

	if s.printer == nil {
		s.printer = term.NewPrinter(stdout, term.NewStyles(stdout, cfg.Color))
	}

	if s.runner == nil {
		progress, err := glob.CompilePrefix(cfg.Output.Progress)
		if err != nil {
			return nil, fmt.Errorf("invalid progress pattern: %w", err)
		}

		s.runner = process.NewRunner(process.RunnerConfig{
			Printer:  s.printer,
			Progress: progress,
			Stdin:    stdin,
			Stdout:   stdout,
			Logger:   s.logger.WithComponent("Process"),
		})
	}

	prompter := config.Prompter
	if prompter == nil {
		prompter = term.NewPrompter(stdin, stdout, cfg.AssumeYes)
	}

	filesystem := config.FS
	if filesystem == nil {
		filesystem, err = fs.NewDiskFilesystem(fs.DiskConfig{
			Dir:    root,
			Logger: s.logger.WithComponent("FS"),
		})
		if err != nil {
			return nil, err
		}
	}

	logger := s.logger.WithComponent("Check")

	s.checks = []check.Check{
		check.NewDirectory(check.DirectoryConfig{
			Root:    root,
			Printer: s.printer,
			Logger:  logger,
		}),
		check.NewEnvironment(check.EnvironmentConfig{
			FS:       filesystem,
			File:     cfg.Env.File,
			Template: cfg.Env.Template,
			Keys:     envfile.NewKeySet(cfg.Env.Keys...),
			Printer:  s.printer,
			Logger:   logger,
		}),
		check.NewCertificates(check.CertificatesConfig{
			FS:       filesystem,
			Dir:      cfg.Certs.Dir,
			KeyFile:  cfg.CertKeyFile(),
			CertFile: cfg.CertFile(),
			Host:     cfg.Certs.Host,
			Tool:     cfg.Certs.Tool,
			Homepage: check.MkcertHomepage,
			Runner:   s.runner,
			Installer: check.NewInstaller(check.InstallerConfig{
				FS:       filesystem,
				Runner:   s.runner,
				Homepage: check.MkcertHomepage,
				Printer:  s.printer,
				Logger:   logger,
			}),
			Prompter: prompter,
			Printer:  s.printer,
			Logger:   logger,
		}),
		check.NewDependencies(check.DependenciesConfig{
			FS:       filesystem,
			Manifest: cfg.Deps.Manifest,
			Runtime:  cfg.Deps.Runtime,
			Install:  cfg.Deps.Install,
			Runner:   s.runner,
			Printer:  s.printer,
			Logger:   logger,
		}),
	}

	return s, nil
}

// resolveRoot returns the configured root, or the nearest directory upwards
// from the working directory that contains the manifest.
func resolveRoot(root, manifest string) (string, error) {
	if len(root) != 0 {
		return filepath.Abs(root)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("unknown working directory: %w", err)
	}

	return check.FindRoot(cwd, filepath.FromSlash(manifest)), nil
}

func (s *setup) Root() string {
	return s.root
}

func (s *setup) Run() error {
	s.logger.Debug().WithFields(log.Fields{
		"platform": s.platform.Description,
		"windows":  s.platform.Windows,
		"elevated": s.platform.Elevated,
	}).Log("Starting")

	if s.platform.Windows && !s.platform.Elevated {
		s.printer.Error(0, "This script requires administrator privileges on Windows")
		s.printer.Error(0, "Please run again as admin")
		s.printer.Newline()
		s.printer.Info(0, "Tip: Run the following in Powershell if wt.exe is available: ")
		s.printer.Dim(4, fmt.Sprintf(`Start-Process wt.exe -Verb RunAs -ArgumentList "%s"`, s.platform.Executable))

		return &check.Error{
			Check: "Privileges",
			Code:  check.ExitPrivileges,
			Err:   check.ErrNotElevated,
		}
	}

	s.printer.Banner(app.Name, app.Version.String())

	for _, c := range s.checks {
		if err := c.Run(); err != nil {
			s.logger.Debug().WithError(err).WithField("check", c.Name()).Log("Check failed")
			return err
		}

		s.logger.Debug().WithField("check", c.Name()).Log("Check passed")
	}

	if len(s.serve) != 0 {
		s.printer.Newline()
		s.printer.Info(0, "Run `%s` to start the server", s.serve)
	}

	if s.platform.Windows {
		s.printer.Newline()
		s.runner.Run(process.Command{Line: "pause", Capture: false})
	}

	s.logger.Info().Log("Environment is ready")

	return nil
}
