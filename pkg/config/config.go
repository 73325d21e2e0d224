package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfig  = "SHELLCALL_CONFIG"
	EnvDebug   = "SHELLCALL_DEBUG"
	EnvWorkers = "SHELLCALL_WORKERS"
	EnvIndent  = "SHELLCALL_INDENT"

	DefaultIndent = 2
)

var ErrInvalid = errors.New("config: invalid value")

// Config is built once at startup and passed explicitly to everything that
// needs it.
type Config struct {
	// Debug turns on debug logging.
	Debug bool `yaml:"debug"`
	// Workers is the default number of concurrent lines for pool fan-out.
	Workers int `yaml:"workers"`
	// Indent is spaces per level in emitted JSON; 0 is compact.
	Indent int `yaml:"indent"`
}

func Default() Config {
	return Config{
		Debug:   false,
		Workers: runtime.NumCPU(),
		Indent:  DefaultIndent,
	}
}

// Load applies, in order: defaults, the YAML file at path (skipped when path
// is empty), environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv is Load with the file path taken from SHELLCALL_CONFIG.
func FromEnv() (Config, error) {
	return Load(os.Getenv(EnvConfig))
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvDebug, v)
		}
		c.Debug = b
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvWorkers, v)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvIndent); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvIndent, v)
		}
		c.Indent = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Indent < 0 {
		return fmt.Errorf("%w: indent must be >= 0, got %d", ErrInvalid, c.Indent)
	}
	return nil
}

// Logger builds a production zap logger writing JSON to stderr. Stdout is
// reserved for the result line.
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if c.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
