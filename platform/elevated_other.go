//go:build !windows

package platform

// IsElevated always returns true, privileges are only required on Windows.
func IsElevated() bool {
	return true
}
