package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/sloop/sloop.yaml, ~/.config/sloop/sloop.yaml, ./sloop.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "sloop", "sloop.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "sloop", "sloop.yaml"))
	}

	candidates = append(candidates, "sloop.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
