package testhelper

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// BuildBinary builds the helper program in pathprefix/name and returns the
// path of the binary.
func BuildBinary(name, pathprefix string) (string, error) {
	dir := filepath.Join(pathprefix, name)
	aout := filepath.Join(dir, name)

	if runtime.GOOS == "windows" {
		aout += ".exe"
	}

	err := exec.Command("go", "build", "-o", aout, dir).Run()
	if err != nil {
		return "", fmt.Errorf("build command: %w", err)
	}

	return aout, nil
}
