package config

import (
	"fmt"
	"os"
	"path/filepath"
)

func defaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}

	return filepath.Join(dir, "fuelctl", "state.db"), nil
}
