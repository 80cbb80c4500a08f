package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.API.Enabled {
		t.Error("expected api.enabled default to be true")
	}
	if cfg.API.Bind == "" {
		t.Error("expected a non-empty default api.bind")
	}
	if cfg.Telemetry.Enabled {
		t.Error("expected telemetry.enabled default to be false")
	}
	if cfg.Profiling.Enabled {
		t.Error("expected profiling.enabled default to be false")
	}
}

func TestValidateRequiresBindWhenEnabled(t *testing.T) {
	cfg := &Config{
		API: APIConfig{Enabled: true, Bind: ""},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty api.bind with api enabled")
	}

	cfg.API.Bind = "127.0.0.1:8080"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidateTelemetryRequiresRedisURL(t *testing.T) {
	cfg := &Config{
		Telemetry: TelemetryConfig{Enabled: true, RedisURL: ""},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty redis_url with telemetry enabled")
	}
}
