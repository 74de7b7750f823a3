package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.BatchSize != 40 || cfg.Epochs != 40 || cfg.LearningRate != 0.01 || cfg.PrintEvery != 100 || cfg.Classes != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if sgd := cfg.SGD(); sgd.LR != 0.01 || sgd.Momentum != 0 || sgd.WeightDecay != 0 {
		t.Fatalf("unexpected optimizer config %+v", sgd)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
# quick run
batch_size: 8
epochs: 0
learning_rate: 0.05
data_dir: "/tmp/cifar"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BatchSize != 8 || cfg.Epochs != 0 || cfg.LearningRate != 0.05 || cfg.DataDir != "/tmp/cifar" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.PrintEvery != 100 {
		t.Fatalf("expected default print_every, got %d", cfg.PrintEvery)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "colour: red\n",
		"missing colon": "batch_size 4\n",
		"bad int":       "epochs: many\n",
		"invalid":       "batch_size: 0\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "open config") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	epochs := 2
	cfg.ApplyOverrides(Overrides{BatchSize: 16, Epochs: &epochs, Workers: 3, DataDir: "data"})
	if cfg.BatchSize != 16 || cfg.Epochs != 2 || cfg.Workers != 3 || cfg.DataDir != "data" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LearningRate != 0.01 || cfg.Seed != 1 {
		t.Fatalf("zero overrides changed config: %+v", cfg)
	}
}

func TestApplyOverridesZeroEpochs(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{})
	if cfg.Epochs != 40 {
		t.Fatalf("unset epochs override changed config to %d", cfg.Epochs)
	}
	zero := 0
	cfg.ApplyOverrides(Overrides{Epochs: &zero})
	if cfg.Epochs != 0 {
		t.Fatalf("expected 0 epochs, got %d", cfg.Epochs)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero epochs should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LearningRate = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero learning rate")
	}
	cfg = Default()
	cfg.Epochs = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative epochs")
	}
	var nilCfg *Config
	if err := nilCfg.Validate(); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
