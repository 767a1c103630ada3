package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadServerEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("BASE_URL", "/lang")

	cfg, err := LoadServerEnv("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port: got %d, want 8080", cfg.Port)
	}
	if cfg.BaseURL != "/lang" {
		t.Errorf("base url: got %q", cfg.BaseURL)
	}
	if cfg.Host != "127.0.0.1" || cfg.Root != "." || cfg.EntryFile != "index.html" || cfg.LogLevel != "warn" {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("addr: got %q", cfg.Addr())
	}
}

func TestLoadServerEnv_Required(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		baseURL string
	}{
		{name: "no port", baseURL: "/lang"},
		{name: "no base url", port: "8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setOrUnset(t, "PORT", tt.port)
			setOrUnset(t, "BASE_URL", tt.baseURL)
			if _, err := LoadServerEnv(""); err == nil {
				t.Error("expected error for missing required variable")
			}
		})
	}
}

func TestLoadServerEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, port, baseURL, want string
	}{
		{"port not a number", "http", "/lang", ""},
		{"port out of range", "70000", "/lang", "out of range"},
		{"relative base url", "8080", "lang", "must start with /"},
		{"route parameter", "8080", "/lang/:id", "must not contain"},
		{"wildcard", "8080", "/lang/*rest", "must not contain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			t.Setenv("BASE_URL", tt.baseURL)
			_, err := LoadServerEnv("")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadServerEnv_EnvFile(t *testing.T) {
	setOrUnset(t, "PORT", "")
	setOrUnset(t, "BASE_URL", "")
	setOrUnset(t, "SERVE_ROOT", "")

	path := filepath.Join(t.TempDir(), "serve.env")
	content := "PORT=9090\nBASE_URL=/playground\nSERVE_ROOT=dist\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadServerEnv(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 || cfg.BaseURL != "/playground" || cfg.Root != "dist" {
		t.Errorf("env file values: %+v", cfg)
	}
}

func TestServerEnvUsage(t *testing.T) {
	usage := ServerEnvUsage()
	if !strings.Contains(usage, "PORT") || !strings.Contains(usage, "BASE_URL") {
		t.Errorf("usage should list PORT and BASE_URL, got:\n%s", usage)
	}
}

// setOrUnset sets key for the duration of the test, or removes it when
// value is empty. t.Setenv restores the previous value afterwards.
func setOrUnset(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
	if value == "" {
		_ = os.Unsetenv(key)
	}
}
