package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - WIZDIFF_CONFIG_PATH: config file location (default: ~/.config/wizdiff.toml)
//   - WIZDIFF_HOME: base directory for wizdiff data (default: ~/.local/share/wizdiff)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking WIZDIFF_CONFIG_PATH
// env var first, then falling back to the default ~/.config/wizdiff.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("WIZDIFF_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wizdiff.toml"), nil
}

// getBaseDir returns the base directory for wizdiff data, checking
// WIZDIFF_HOME env var first, then the XDG default ~/.local/share/wizdiff.
func getBaseDir() (string, error) {
	if path := os.Getenv("WIZDIFF_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "wizdiff"), nil
}
