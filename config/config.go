package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumitoshi0524/cifarnet/optim"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	BatchSize    int     `yaml:"batch_size"`
	Epochs       int     `yaml:"epochs"`
	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`
	WeightDecay  float64 `yaml:"weight_decay"`
	PrintEvery   int     `yaml:"print_every"`
	Classes      int     `yaml:"classes"`
	Seed         int64   `yaml:"seed"`
	DataDir      string  `yaml:"data_dir"`
	Prefetch     int     `yaml:"prefetch"`
	Workers      int     `yaml:"workers"`
}

// Overrides captures CLI supplied values. Zero fields are ignored, except
// Epochs, which applies whenever it is non-nil so a run can ask for 0.
type Overrides struct {
	BatchSize    int
	Epochs       *int
	LearningRate float64
	PrintEvery   int
	Seed         int64
	DataDir      string
	Prefetch     int
	Workers      int
}

// Default returns the reference run: batch 40, 40 epochs, SGD at lr 0.01,
// a progress line every 100 batches over 10 classes.
func Default() *Config {
	return &Config{
		BatchSize:    40,
		Epochs:       40,
		LearningRate: 0.01,
		PrintEvery:   100,
		Classes:      10,
		Seed:         1,
		Prefetch:     2,
	}
}

// Load reads a Config from YAML on top of Default and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	if err := parseYAML(f, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Epochs != nil {
		c.Epochs = *o.Epochs
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.PrintEvery > 0 {
		c.PrintEvery = o.PrintEvery
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Prefetch > 0 {
		c.Prefetch = o.Prefetch
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
}

// Validate verifies the config is runnable. Zero epochs is allowed and only
// reports completion.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	if c.PrintEvery <= 0 {
		return fmt.Errorf("print_every must be > 0 (got %d)", c.PrintEvery)
	}
	if c.Classes <= 1 {
		return fmt.Errorf("classes must be > 1 (got %d)", c.Classes)
	}
	if c.Prefetch < 0 {
		return fmt.Errorf("prefetch must be >= 0 (got %d)", c.Prefetch)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	return c.SGD().Validate()
}

// SGD returns the optimizer settings.
func (c *Config) SGD() optim.SGDConfig {
	return optim.SGDConfig{LR: c.LearningRate, Momentum: c.Momentum, WeightDecay: c.WeightDecay}
}

func parseYAML(r io.Reader, cfg *Config) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: missing ':'", lineNo)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, "\"'")
		var err error
		switch key {
		case "batch_size":
			cfg.BatchSize, err = strconv.Atoi(value)
		case "epochs":
			cfg.Epochs, err = strconv.Atoi(value)
		case "learning_rate":
			cfg.LearningRate, err = strconv.ParseFloat(value, 64)
		case "momentum":
			cfg.Momentum, err = strconv.ParseFloat(value, 64)
		case "weight_decay":
			cfg.WeightDecay, err = strconv.ParseFloat(value, 64)
		case "print_every":
			cfg.PrintEvery, err = strconv.Atoi(value)
		case "classes":
			cfg.Classes, err = strconv.Atoi(value)
		case "seed":
			cfg.Seed, err = strconv.ParseInt(value, 10, 64)
		case "data_dir":
			cfg.DataDir = value
		case "prefetch":
			cfg.Prefetch, err = strconv.Atoi(value)
		case "workers":
			cfg.Workers, err = strconv.Atoi(value)
		default:
			return fmt.Errorf("line %d: unknown key %s", lineNo, key)
		}
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}
	return scanner.Err()
}
