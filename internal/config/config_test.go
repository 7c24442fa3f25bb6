package config

import (
	"flag"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CLUB_INPUT_FILE", "CLUB_VERBOSE", "CLUB_OTEL_ENDPOINT", "CLUB_OTEL_ENABLED", "CLUB_SERVICE_NAME"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	clearEnv(t)
	fs := flag.NewFlagSet("club", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"events.txt"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.InputPath != "events.txt" {
		t.Fatalf("expected positional input path, got %q", cfg.InputPath)
	}
	if cfg.Verbose {
		t.Fatal("expected verbose to default to false")
	}
	if !cfg.OTelEnabled {
		t.Fatal("expected otel to default to enabled")
	}
	if cfg.ServiceName != "computerclub" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLUB_INPUT_FILE", "from-env.txt")
	t.Setenv("CLUB_VERBOSE", "true")

	cfg, err := ParseConfig(flag.NewFlagSet("club", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.InputPath != "from-env.txt" || !cfg.Verbose {
		t.Fatalf("expected env values, got %+v", cfg)
	}

	cfg, err = ParseConfig(flag.NewFlagSet("club", flag.ContinueOnError), []string{"-input", "from-flag.txt", "-verbose=false"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.InputPath != "from-flag.txt" || cfg.Verbose {
		t.Fatalf("expected flags to override env, got %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"missing input", nil, nil, "input file is required"},
		{"too many args", nil, []string{"a.txt", "b.txt"}, "expected one input file"},
		{"bad env", map[string]string{"CLUB_VERBOSE": "maybe"}, []string{"a.txt"}, "parse env:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseConfig(flag.NewFlagSet("club", flag.ContinueOnError), tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CLUB_INPUT_FILE=dotenv.txt\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CLUB_INPUT_FILE") })

	cfg, err := ParseConfig(flag.NewFlagSet("club", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.InputPath != "dotenv.txt" {
		t.Fatalf("expected value from env file, got %q", cfg.InputPath)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("expected empty path to be ignored, got %v", err)
	}
}

// TestExitf_ExitsWithCode1 runs Exitf in a subprocess because os.Exit cannot
// be intercepted in-process.
func TestExitf_ExitsWithCode1(t *testing.T) {
	if os.Getenv("TEST_EXITF_SUBPROCESS") == "1" {
		Exitf("fatal: %s", "something broke")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitf_ExitsWithCode1$")
	cmd.Env = append(os.Environ(), "TEST_EXITF_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: something broke") {
		t.Fatalf("expected stderr to contain %q, got %q", "fatal: something broke", string(out))
	}
}
