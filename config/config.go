package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/rangetrader/backtest"
	"github.com/rustyeddy/rangetrader/levels"
)

var ErrInvalid = errors.New("invalid config")

// Config represents a complete backtest run.
type Config struct {
	Strategy backtest.Config `json:"strategy" yaml:"strategy"`
	Data     DataConfig      `json:"data" yaml:"data"`
	Levels   levels.Params   `json:"levels" yaml:"levels"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
	Log      LogConfig       `json:"log" yaml:"log"`
}

// DataConfig locates the inputs and outputs.
type DataConfig struct {
	BarsPath string `json:"bars" yaml:"bars"`
	// LevelsPath is the daily level table. When empty the table is built
	// from the bars with the levels parameters.
	LevelsPath string `json:"levels,omitempty" yaml:"levels,omitempty"`
	OutputDir  string `json:"output_dir" yaml:"output_dir"`
	// Enriched also writes the feed annotated with entries and exits.
	Enriched bool `json:"enriched" yaml:"enriched"`
	// ChunkDays splits the feed into independent runs of this many trading
	// days simulated in parallel. 0 runs the feed as one piece. Only
	// allowed for breakout runs with holding_days 0, where no position
	// outlives its day.
	ChunkDays int `json:"chunk_days,omitempty" yaml:"chunk_days,omitempty"`
}

// JournalConfig selects where runs are recorded. The CSV ledger is always
// written to the output dir; sqlite and postgres also store the run.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv", "sqlite" or "postgres"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	// Org writes an Org report next to the ledger.
	Org bool `json:"org" yaml:"org"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "console" or "json"
}

// LoadFromFile loads configuration from a file (YAML or JSON). Missing
// fields keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("%w: strategy: %w", ErrInvalid, err)
	}
	if c.Data.BarsPath == "" {
		return fmt.Errorf("%w: data.bars is required", ErrInvalid)
	}
	if c.Data.OutputDir == "" {
		return fmt.Errorf("%w: data.output_dir is required", ErrInvalid)
	}
	if c.Data.ChunkDays < 0 {
		return fmt.Errorf("%w: data.chunk_days must be >= 0", ErrInvalid)
	}
	if c.Data.ChunkDays > 0 && !c.Strategy.Splittable() {
		return fmt.Errorf("%w: data.chunk_days needs same-day breakout exits (holding_days %d, kind %q)",
			ErrInvalid, c.Strategy.HoldingDays, c.Strategy.StrategyName())
	}
	if c.Data.LevelsPath == "" && !c.Strategy.IsContrarian() {
		if err := c.Levels.Validate(); err != nil {
			return fmt.Errorf("%w: levels: %w", ErrInvalid, err)
		}
	}
	switch c.Journal.Type {
	case "csv":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("%w: journal db_path required for sqlite", ErrInvalid)
		}
	case "postgres":
		if c.Journal.DSN == "" {
			return fmt.Errorf("%w: journal dsn required for postgres", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: journal.type must be 'csv', 'sqlite' or 'postgres'", ErrInvalid)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be 'console' or 'json'", ErrInvalid)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Strategy: backtest.DefaultConfig(),
		Data: DataConfig{
			BarsPath:  "data/es_1min_data.csv",
			OutputDir: "results",
		},
		Levels: levels.DefaultParams(),
		Journal: JournalConfig{
			Type: "csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

const envPrefix = "RANGETRADER_"

// ApplyEnv overlays environment variables, after loading envFile (or
// ./.env when empty) if it exists:
//
//	RANGETRADER_BARS, RANGETRADER_LEVELS, RANGETRADER_OUTPUT_DIR,
//	RANGETRADER_JOURNAL, RANGETRADER_DB_PATH, RANGETRADER_POSTGRES_DSN,
//	RANGETRADER_LOG_LEVEL, RANGETRADER_HOLDING_DAYS, RANGETRADER_TRAIL_POINTS
//
// Variables already set in the process win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	for name, dst := range map[string]*string{
		"BARS":         &c.Data.BarsPath,
		"LEVELS":       &c.Data.LevelsPath,
		"OUTPUT_DIR":   &c.Data.OutputDir,
		"JOURNAL":      &c.Journal.Type,
		"DB_PATH":      &c.Journal.DBPath,
		"POSTGRES_DSN": &c.Journal.DSN,
		"LOG_LEVEL":    &c.Log.Level,
	} {
		*dst = getEnv(envPrefix+name, *dst)
	}

	if v := os.Getenv(envPrefix + "HOLDING_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sHOLDING_DAYS: %w", envPrefix, err)
		}
		c.Strategy.HoldingDays = n
	}
	if v := os.Getenv(envPrefix + "TRAIL_POINTS"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sTRAIL_POINTS: %w", envPrefix, err)
		}
		c.Strategy.TrailPoints = x
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
