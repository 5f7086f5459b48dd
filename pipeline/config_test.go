package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/flowkit/config"
	"github.com/kbukum/flowkit/errors"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.DefaultWorkers != 1 {
		t.Errorf("expected DefaultWorkers 1, got %d", cfg.DefaultWorkers)
	}
	if cfg.OnError != ErrorPolicyAbort {
		t.Errorf("expected OnError %q, got %q", ErrorPolicyAbort, cfg.OnError)
	}
	if cfg.Logging.Level == "" {
		t.Error("expected logging defaults applied")
	}
}

func TestConfigApplyDefaultsPreservesValues(t *testing.T) {
	cfg := Config{DefaultWorkers: 8, OnError: ErrorPolicyPropagate}
	cfg.ApplyDefaults()

	if cfg.DefaultWorkers != 8 {
		t.Errorf("expected DefaultWorkers 8, got %d", cfg.DefaultWorkers)
	}
	if cfg.OnError != ErrorPolicyPropagate {
		t.Errorf("expected OnError %q, got %q", ErrorPolicyPropagate, cfg.OnError)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{DefaultWorkers: 4, OnError: ErrorPolicyPropagate}
	cfg.Logging.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	bad := Config{OnError: "retry"}
	bad.Logging.ApplyDefaults()
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error for unknown error policy")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected %s, got %v", errors.ErrCodeInvalidConfig, err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flowkit.yml")
	data := []byte("default_workers: 6\non_error: propagate\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("flowkit", config.WithConfigFile(path))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DefaultWorkers != 6 {
		t.Errorf("expected DefaultWorkers 6, got %d", cfg.DefaultWorkers)
	}
	if cfg.OnError != ErrorPolicyPropagate {
		t.Errorf("expected OnError %q, got %q", ErrorPolicyPropagate, cfg.OnError)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level debug, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("FLOWKIT_DEFAULT_WORKERS", "12")

	cfg, err := LoadConfig("flowkit")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DefaultWorkers != 12 {
		t.Errorf("expected DefaultWorkers 12 from environment, got %d", cfg.DefaultWorkers)
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("flowkit-missing")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DefaultWorkers != 1 || cfg.OnError != ErrorPolicyAbort {
		t.Errorf("expected bare defaults, got %+v", cfg)
	}
}
