package store

import (
	"os"
	"path/filepath"
)

// Location returns the path to the config file. If no path is provided,
// different standard location will be probed:
// - ./setup.yaml
// - ./init-scripts/setup.yaml
// - os.UserConfigDir() + /cloudworx-setup/setup.yaml
// If the config doesn't exist in none of these locations, an empty string is
// returned and the defaults apply.
func Location(path string) string {
	if len(path) != 0 {
		return path
	}

	return probe("setup.yaml")
}

// EnvLocation returns the path to the dotenv file with SETUP_* variables for
// the tool. The same locations as for the config file are probed for a file
// named setup.env. The environment file of the server is never considered.
func EnvLocation(path string) string {
	if len(path) != 0 {
		return path
	}

	return probe("setup.env")
}

func probe(name string) string {
	locations := []string{
		name,
		filepath.Join("init-scripts", name),
	}

	if dir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, filepath.Join(dir, "cloudworx-setup", name))
	}

	for _, location := range locations {
		info, err := os.Stat(location)
		if err != nil {
			continue
		}

		if info.IsDir() {
			continue
		}

		return location
	}

	return ""
}
