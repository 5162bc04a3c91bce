// Package platform detects the properties of the host the setup runs on.
package platform

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
)

// Info describes the host.
type Info struct {
	// Windows is whether the host is a Windows-class system.
	Windows bool

	// Elevated is whether the process runs with administrator privileges.
	// It is always true on systems other than Windows.
	Elevated bool

	// Executable is the path of the running binary.
	Executable string

	// Description is a human readable description of the OS.
	Description string
}

// Detect returns the Info of the current host.
func Detect() Info {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	return Info{
		Windows:     IsWindows(),
		Elevated:    IsElevated(),
		Executable:  exe,
		Description: Describe(),
	}
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// Describe returns the platform, its version and the architecture, e.g.
// "ubuntu 22.04 (linux/x86_64)".
func Describe() string {
	info, err := host.Info()
	if err != nil {
		return runtime.GOOS + "/" + runtime.GOARCH
	}

	return fmt.Sprintf("%s %s (%s/%s)", info.Platform, info.PlatformVersion, info.OS, info.KernelArch)
}

// Shell returns the command and its arguments for running the command line
// through the shell of the platform.
func Shell(line string) (string, []string) {
	if IsWindows() {
		return "cmd", []string{"/C", line}
	}

	return "sh", []string{"-c", line}
}
