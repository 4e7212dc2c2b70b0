package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("service name propagates into logging", func(t *testing.T) {
		cfg := ServiceConfig{Name: "eventhub"}
		cfg.ApplyDefaults()
		if cfg.Logging.ServiceName != "eventhub" {
			t.Errorf("expected logging service name 'eventhub', got %q", cfg.Logging.ServiceName)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid staging", ServiceConfig{Name: "svc", Environment: "staging"}, false, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: test-service
environment: staging
version: "1.0.0"
hub:
  max_connections_per_key: 7
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	var cfg struct {
		ServiceConfig `yaml:",inline" mapstructure:",squash"`
		Hub           struct {
			MaxConnectionsPerKey int `mapstructure:"max_connections_per_key"`
		} `mapstructure:"hub"`
	}

	if err := LoadConfig("test-service", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "test-service" {
		t.Errorf("expected name 'test-service', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Hub.MaxConnectionsPerKey != 7 {
		t.Errorf("expected hub limit 7, got %d", cfg.Hub.MaxConnectionsPerKey)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	os.Setenv("HUB_MAX_CONNECTIONS_PER_KEY", "3")
	defer os.Unsetenv("HUB_MAX_CONNECTIONS_PER_KEY")

	var cfg struct {
		Hub struct {
			MaxConnectionsPerKey int `mapstructure:"max_connections_per_key"`
		} `mapstructure:"hub"`
	}

	if err := LoadConfig("test-service", &cfg); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Hub.MaxConnectionsPerKey != 3 {
		t.Errorf("expected env override 3, got %d", cfg.Hub.MaxConnectionsPerKey)
	}
}

func TestLoadConfigMissingFilesIsNotAnError(t *testing.T) {
	var cfg struct {
		Name string `mapstructure:"name"`
	}
	if err := LoadConfig("no-such-service", &cfg); err != nil {
		t.Fatalf("expected nil error when no files found, got %v", err)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("HUB_HEARTBEAT_INTERVAL")

	want := map[string]bool{
		"hub_heartbeat_interval": false,
		"hub.heartbeat.interval": false,
		"hub.heartbeat_interval": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
}
