package config

import (
	"os"
	"path/filepath"
	"testing"

	"coffee-env/internal/environment"
)

func TestLoad_DefaultsMatchSelectedPreset(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != environment.NameDevelopment {
		t.Fatalf("name=%q", cfg.Name)
	}
	if cfg.Environment != environment.Development() {
		t.Fatalf("env=%+v", cfg.Environment)
	}
	if cfg.ServerAddr != defaultServerAddr {
		t.Fatalf("addr=%q", cfg.ServerAddr)
	}
	if cfg.AccessLogPath != "" || cfg.File != "" {
		t.Fatalf("accessLog=%q file=%q", cfg.AccessLogPath, cfg.File)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CS_PRODUCTION", "true")
	t.Setenv("CS_API_SERVER_URL", "https://api.example.com")
	t.Setenv("CS_AUTH_CLIENT_ID", " injected-client ")
	t.Setenv("CS_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	env := cfg.Environment
	if !env.Production {
		t.Fatalf("production=false")
	}
	if env.APIServerURL != "https://api.example.com" {
		t.Fatalf("apiServerUrl=%q", env.APIServerURL)
	}
	if env.Auth.ClientID != "injected-client" {
		t.Fatalf("clientId=%q", env.Auth.ClientID)
	}
	if env.Auth.ProviderDomain != "dev-m-guru" {
		t.Fatalf("providerDomain=%q", env.Auth.ProviderDomain)
	}
	if cfg.ServerAddr != "127.0.0.1:9000" {
		t.Fatalf("addr=%q", cfg.ServerAddr)
	}
}

func TestLoad_FileOverridesThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "environment.yaml")
	body := "apiServerUrl: https://file.example.com\n" +
		"auth:\n" +
		"  providerDomain: tenant.eu.auth0.com\n" +
		"  callbackUrl: https://app.example.com\n" +
		"telemetry:\n" +
		"  access_log_path: " + filepath.Join(dir, "logs", "access.ndjson") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CS_AUTH_CALLBACK_URL", "https://env.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("file=%q", cfg.File)
	}
	env := cfg.Environment
	if env.APIServerURL != "https://file.example.com" {
		t.Fatalf("apiServerUrl=%q", env.APIServerURL)
	}
	if env.Auth.ProviderDomain != "tenant.eu.auth0.com" {
		t.Fatalf("providerDomain=%q", env.Auth.ProviderDomain)
	}
	if env.Auth.CallbackURL != "https://env.example.com" {
		t.Fatalf("callbackUrl=%q", env.Auth.CallbackURL)
	}
	if env.Auth.Audience != "http://localhost:5000" {
		t.Fatalf("audience=%q", env.Auth.Audience)
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Fatalf("access log dir not created: %v", err)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad_UnknownPreset(t *testing.T) {
	prev := environment.Selected
	environment.Selected = "staging"
	defer func() { environment.Selected = prev }()

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad_ProductionPresetLeavesFieldsEmpty(t *testing.T) {
	prev := environment.Selected
	environment.Selected = environment.NameProduction
	defer func() { environment.Selected = prev }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Environment.Production || cfg.Environment.APIServerURL != "" {
		t.Fatalf("env=%+v", cfg.Environment)
	}
}

func TestLoad_EmptyServerAddr(t *testing.T) {
	t.Setenv("CS_SERVER_ADDR", " ")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error")
	}
}
