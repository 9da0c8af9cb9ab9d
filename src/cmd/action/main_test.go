package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github-workflow-splunk-logger/src/config"
	"github-workflow-splunk-logger/src/provider"
)

func TestWriteOutputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	if err := os.WriteFile(path, []byte("existing=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := writeOutputs(path, 4, 1); err != nil {
		t.Fatalf("writeOutputs() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "existing=1\nevents-delivered=4\nlog-failures=1\n"
	if string(got) != want {
		t.Errorf("output file = %q, want %q", got, want)
	}
}

func TestRun_MissingInputs(t *testing.T) {
	for _, name := range []string{
		"INPUT_SPLUNK_URL", "SPLUNK_URL", "INPUT_SPLUNK_TOKEN", "SPLUNK_TOKEN",
		"INPUT_CONFIG", "INPUT_TIMEOUT", "INPUT_MAX_RETRIES", "INPUT_SSL_VERIFY",
	} {
		t.Setenv(name, "")
	}

	err := run(context.Background())

	var cfgErr *provider.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("run() error = %v, want *provider.ConfigError", err)
	}
	if cfgErr.Option != config.KeySplunkURL {
		t.Errorf("Option = %q, want %q", cfgErr.Option, config.KeySplunkURL)
	}
}
