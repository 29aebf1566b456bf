package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type ExportConfig struct {
	Enabled   bool `toml:"enabled"`
	BatchSize int  `toml:"batch_size"`
	Workers   int  `toml:"workers"`
}

type QueryConfig struct {
	// GraphBacked selects the graph store as the read source for entities
	// and relationships; the tabular store remains the fallback.
	GraphBacked bool `toml:"graph_backed"`
}

type TabularConfig struct {
	Path string `toml:"path"`
}

// Config is an immutable value constructed once at startup and threaded
// through every call. Nothing reads environment state after load.
type Config struct {
	Graph   GraphConfig   `toml:"graph"`
	Export  ExportConfig  `toml:"export"`
	Query   QueryConfig   `toml:"query"`
	Tabular TabularConfig `toml:"tabular"`
}

func Default() *Config {
	return &Config{
		Graph:   GraphConfig{URI: "bolt://localhost:7687"},
		Export:  ExportConfig{Enabled: true, BatchSize: 1000, Workers: 1},
		Tabular: TabularConfig{Path: "bridge.duckdb"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}
