package config

import "testing"

func TestLoadRequiresBackendsOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected load to fail without DATABASE_URL in production")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/likelemba")
	if _, err := Load(); err == nil {
		t.Fatalf("expected load to fail without REDIS_URL in production")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dev() {
		t.Fatalf("production must not report dev mode")
	}
}

func TestLoadToleratesMissingBackendsInDev(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Dev() {
		t.Fatalf("expected dev mode for APP_ENV=development")
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Fatalf("expected empty backend urls, got %q %q", cfg.DatabaseURL, cfg.RedisURL)
	}
}
