package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shindosokuho/relay/internal/relayerr"
)

func TestLoadRequiresRefreshTokenWhenDMDataEnabled(t *testing.T) {
	t.Setenv("DMDATA_REFRESH_TOKEN", "")

	_, err := Load("")
	if err == nil {
		t.Fatalf("expected an error when DMDATA_REFRESH_TOKEN is unset and dmdata is enabled")
	}
	if !relayerr.OfKind(err, relayerr.KindConfig) {
		t.Fatalf("expected a KindConfig error, got %v", err)
	}
}

func TestLoadOverlaysEnvOverYAML(t *testing.T) {
	t.Setenv("DMDATA_REFRESH_TOKEN", "token-123")
	t.Setenv("RELAY_HTTP_ADDR", ":9999")

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "relay.yaml")
	if err := os.WriteFile(yamlPath, []byte("http:\n  addr: \":8080\"\n"), 0o600); err != nil {
		t.Fatalf("write yaml fixture: %v", err)
	}

	cfg, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Fatalf("expected env override to win, got %q", cfg.HTTP.Addr)
	}
	if cfg.DMData.RefreshToken != "token-123" {
		t.Fatalf("expected refresh token from env, got %q", cfg.DMData.RefreshToken)
	}
}

func TestLoadMissingYAMLFileIsNotAnError(t *testing.T) {
	t.Setenv("DMDATA_REFRESH_TOKEN", "token-123")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load with missing optional file: %v", err)
	}
	if cfg.HTTP.Addr != Default().HTTP.Addr {
		t.Fatalf("expected defaults to stand when file is absent")
	}
}
