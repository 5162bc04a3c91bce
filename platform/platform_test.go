package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShell(t *testing.T) {
	name, args := Shell("npm install")

	if runtime.GOOS == "windows" {
		require.Equal(t, "cmd", name)
		require.Equal(t, []string{"/C", "npm install"}, args)
	} else {
		require.Equal(t, "sh", name)
		require.Equal(t, []string{"-c", "npm install"}, args)
	}
}

func TestDetect(t *testing.T) {
	info := Detect()

	require.Equal(t, runtime.GOOS == "windows", info.Windows)
	require.NotEmpty(t, info.Executable)
	require.NotEmpty(t, info.Description)

	if !info.Windows {
		require.True(t, info.Elevated)
	}
}
