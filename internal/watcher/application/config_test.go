package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PG_DSN", "HTTP_ADDR", "CHECK_INTERVAL", "FETCH_TIMEOUT", "SNAPSHOT_ROOT", "WEBHOOK_URL", "AUTH_JWT_SECRET", "JWT_SECRET", "SMTP_HOST", "SMTP_PORT", "CHARGEWATCH_CONFIG"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.Interval() != 12*time.Hour {
		t.Fatalf("unexpected default interval %s", cfg.Interval())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Fatalf("unexpected default timeout %s", cfg.Timeout())
	}
	if cfg.SnapshotRoot == "" {
		t.Fatal("expected default snapshot root")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CHARGEWATCH_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("CHECK_INTERVAL", "1h")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "587")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env" {
		t.Fatalf("unexpected dsn %q", cfg.DatabaseURL)
	}
	if cfg.Interval() != time.Hour {
		t.Fatalf("unexpected interval %s", cfg.Interval())
	}
	if cfg.Timeout() != 5*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Timeout())
	}
	if cfg.Mail.Host != "mail.example.com" || cfg.Mail.Port != 587 {
		t.Fatalf("unexpected mail config %+v", cfg.Mail)
	}
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_url: postgres://file\ncheck_interval: 30m\nwebhook_url: https://hooks.example.com/x\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHARGEWATCH_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://file" {
		t.Fatalf("yaml must override env, got %q", cfg.DatabaseURL)
	}
	if cfg.Interval() != 30*time.Minute {
		t.Fatalf("unexpected interval %s", cfg.Interval())
	}
	if cfg.WebhookURL != "https://hooks.example.com/x" {
		t.Fatalf("unexpected webhook %q", cfg.WebhookURL)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("CHARGEWATCH_CONFIG", "")
	t.Setenv("CHECK_INTERVAL", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected duration parse error")
	}
}
