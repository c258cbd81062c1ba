package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/gogpu/trishade"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trishade.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func parseFlags(t *testing.T, args ...string) (trishade.Config, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f := &flags{}
	bindFlags(cmd, f)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return resolveConfig(cmd, *f)
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := parseFlags(t)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg != trishade.DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "title: from-file\nwidth: 1024\nheight: 768\nlog_level: debug\n")

	cfg, err := parseFlags(t, "--config", path, "--height", "500", "--platform", "headless", "--frames", "4")
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	want := trishade.DefaultConfig().
		WithTitle("from-file").
		WithSize(1024, 500).
		WithLogLevel("debug").
		WithPlatform("headless").
		WithFrames(4)
	if cfg != want {
		t.Errorf("cfg = %+v\nwant  %+v", cfg, want)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad size", []string{"--width", "0"}, trishade.ErrInvalidSize},
		{"bad level", []string{"--log-level", "loud"}, trishade.ErrInvalidLogLevel},
		{"missing file", []string{"--config", "/nonexistent/trishade.yaml"}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(trishade.DefaultConfig().WithLogLevel("warn"), &buf)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("log output = %q", out)
	}

	off, err := newLogger(trishade.DefaultConfig().WithLogLevel("off"), &buf)
	if err != nil || off != nil {
		t.Errorf("off level gave logger=%v err=%v", off, err)
	}
}

func TestRunHeadless(t *testing.T) {
	cfg := trishade.DefaultConfig().
		WithPlatform("headless").
		WithSize(64, 48).
		WithFrames(3).
		WithLogLevel("debug")

	var logs bytes.Buffer
	if err := run(context.Background(), cfg, &logs); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(logs.String(), "render state ready") {
		t.Errorf("expected ready log line, got:\n%s", logs.String())
	}
}

func TestRootCommandHeadless(t *testing.T) {
	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--platform", "headless", "--frames", "2", "--log-level", "off"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v\n%s", err, stderr.String())
	}
}

func TestRunUnknownPlatform(t *testing.T) {
	cfg := trishade.DefaultConfig().WithPlatform("metal").WithLogLevel("off")
	if err := run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown platform")
	}
}
