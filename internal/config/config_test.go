package config

import "testing"

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tasuku")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_TOKEN", "token")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.RateLimit != "20-M" {
		t.Errorf("RateLimit = %q, want 20-M", cfg.RateLimit)
	}
	if cfg.RabbitPrefetch != 1 {
		t.Errorf("RabbitPrefetch = %d, want 1", cfg.RabbitPrefetch)
	}
	if cfg.ServerDebugMode {
		t.Error("ServerDebugMode should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RABBITMQ_PREFETCH", "8")
	t.Setenv("SERVER_DEBUG_MODE", "true")
	t.Setenv("ADMIN_USER_ID", "Uadmin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "9090" || cfg.RabbitPrefetch != 8 || !cfg.ServerDebugMode || cfg.AdminUserID != "Uadmin" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []string{"DATABASE_URL", "LINE_CHANNEL_SECRET", "LINE_CHANNEL_TOKEN", "JWT_SECRET"}

	for _, missing := range tests {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")

			if _, err := Load(); err == nil {
				t.Errorf("Load succeeded without %s", missing)
			}
		})
	}
}
