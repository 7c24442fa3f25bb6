// Package config loads the command configuration from the environment, an
// optional .env file and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present. Variables already set in the
// environment win over the file.
const DefaultEnvFile = ".env"

// Config holds the club command configuration.
type Config struct {
	InputPath    string `env:"CLUB_INPUT_FILE"`
	Verbose      bool   `env:"CLUB_VERBOSE"`
	OTelEndpoint string `env:"CLUB_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"CLUB_OTEL_ENABLED"  envDefault:"true"`
	ServiceName  string `env:"CLUB_SERVICE_NAME"  envDefault:"computerclub"`
}

// LoadEnvFile exports the variables of path into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfig loads defaults from the environment and then parses flags. The
// first positional argument, when given, is the input file.
func ParseConfig(flags *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	flags.StringVar(&cfg.InputPath, "input", cfg.InputPath, "path to the club log")
	flags.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every rejected action to stderr")
	if args == nil {
		args = []string{}
	}
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if flags.NArg() > 1 {
		return Config{}, fmt.Errorf("expected one input file, got %d arguments", flags.NArg())
	}
	if flags.NArg() == 1 {
		cfg.InputPath = flags.Arg(0)
	}
	if cfg.InputPath == "" {
		return Config{}, errors.New("input file is required")
	}
	return cfg, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
