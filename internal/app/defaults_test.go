package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("env vars take precedence", func(t *testing.T) {
		t.Setenv("WIZDIFF_CONFIG_PATH", "/custom/wizdiff.toml")
		t.Setenv("WIZDIFF_HOME", "/custom/home")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/wizdiff.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/wizdiff.toml")
		}
		if defaults["base_dir"] != "/custom/home" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/home")
		}
		if defaults["log_dir"] != filepath.Join("/custom/home", "log") {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], filepath.Join("/custom/home", "log"))
		}
	})

	t.Run("falls back to home-relative paths", func(t *testing.T) {
		t.Setenv("WIZDIFF_CONFIG_PATH", "")
		t.Setenv("WIZDIFF_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if !filepath.IsAbs(defaults["config_path"]) {
			t.Errorf("config_path = %q, want absolute path", defaults["config_path"])
		}
		if !filepath.IsAbs(defaults["base_dir"]) {
			t.Errorf("base_dir = %q, want absolute path", defaults["base_dir"])
		}
	})
}
