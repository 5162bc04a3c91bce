package check

import (
	"fmt"

	"github.com/cloudworx/setup/io/fs"
	"github.com/cloudworx/setup/log"
	"github.com/cloudworx/setup/process"
)

// Manager is a system package manager. The command is a format string that
// gets the name of the package.
type Manager struct {
	Name    string
	Command string
}

// DefaultManagers are the supported package managers in the order they are
// probed.
var DefaultManagers = []Manager{
	{Name: "brew", Command: "brew install %s"},
	{Name: "choco", Command: "choco install %s -y"},
	{Name: "scoop", Command: "scoop install %s"},
	{Name: "apt", Command: "sudo apt update && sudo apt install -y %s"},
	{Name: "dnf", Command: "sudo dnf install -y %s"},
	{Name: "pacman", Command: "sudo pacman -S %s"},
}

// Installer installs a tool with a system package manager.
type Installer interface {
	// Install installs the package and returns whether it succeeded.
	Install(pkg string) bool
}

type InstallerConfig struct {
	FS       fs.ReadFilesystem
	Runner   process.Runner
	Managers []Manager // Defaults to DefaultManagers
	Homepage string    // Where to find manual installation instructions

	Printer Printer
	Logger  log.Logger
}

type installer struct {
	fs       fs.ReadFilesystem
	runner   process.Runner
	managers []Manager
	homepage string
	printer  Printer
	logger   log.Logger
}

// NewInstaller returns an Installer that uses the first package manager that
// is found on the PATH.
func NewInstaller(config InstallerConfig) Installer {
	i := &installer{
		fs:       config.FS,
		runner:   config.Runner,
		managers: config.Managers,
		homepage: config.Homepage,
		printer:  config.Printer,
		logger:   config.Logger,
	}

	if i.managers == nil {
		i.managers = DefaultManagers
	}

	if i.logger == nil {
		i.logger = log.New("")
	}

	return i
}

func (i *installer) Install(pkg string) bool {
	i.printer.Info(2, "Installing %s...", pkg)

	for _, m := range i.managers {
		path, err := i.fs.LookPath(m.Name)
		if err != nil {
			continue
		}

		logger := i.logger.WithFields(log.Fields{
			"manager": m.Name,
			"path":    path,
			"package": pkg,
		})

		i.printer.Info(4, "Installing via %s", m.Name)

		if !i.runner.Run(process.Command{Line: fmt.Sprintf(m.Command, pkg), Capture: true, Indent: 6}) {
			logger.Warn().Log("Installation failed")
			i.printer.Error(4, "Installing via %s failed", m.Name)
			return false
		}

		logger.Info().Log("Installed")
		i.printer.Success(4, "%s installed successfully", pkg)

		return true
	}

	i.logger.Warn().Log("No package manager found")

	i.printer.Error(4, "No supported package manager found")
	if len(i.homepage) != 0 {
		i.printer.Info(4, "Please install %s manually (%s)", pkg, i.homepage)
	} else {
		i.printer.Info(4, "Please install %s manually", pkg)
	}

	return false
}
