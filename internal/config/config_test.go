package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Workflow.WorkerCount != 2 {
		t.Fatalf("default worker_count = %d", cfg.Workflow.WorkerCount)
	}
	if !cfg.Fetch.SkipExisting {
		t.Fatal("default skip_existing should be true")
	}
	if cfg.Workflow.ReclaimStale {
		t.Fatal("reclaim_stale should default off")
	}
	if cfg.Fetch.StallTimeout <= 0 {
		t.Fatal("stall_timeout must default to a positive bound")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
download_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"

[archive]
base_url = "https://archive.example/"
media_url_template = "https://archive.example/media/{yy}{mm}{dd}_{code}.mp4"

[transcode]
audio_format = "OPUS"

[workflow]
worker_count = 4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Archive.BaseURL != "https://archive.example" {
		t.Fatalf("base_url not trimmed: %q", cfg.Archive.BaseURL)
	}
	if cfg.Transcode.AudioFormat != "opus" {
		t.Fatalf("audio_format not lowered: %q", cfg.Transcode.AudioFormat)
	}
	if cfg.Workflow.WorkerCount != 4 {
		t.Fatalf("worker_count = %d", cfg.Workflow.WorkerCount)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"workers", func(c *Config) { c.Workflow.WorkerCount = 0 }, "worker_count"},
		{"probe", func(c *Config) { c.Archive.ProbeTimeout = 0 }, "probe_timeout"},
		{"stall", func(c *Config) { c.Fetch.StallTimeout = -1 }, "stall_timeout"},
		{"format", func(c *Config) { c.Transcode.AudioFormat = "ogg" }, "audio_format"},
		{"heartbeat", func(c *Config) {
			c.Workflow.ReclaimStale = true
			c.Workflow.HeartbeatTimeout = 5
		}, "heartbeat_timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Paths.DownloadDir = "/tmp/gavel-test"
			cfg.Paths.LogDir = "/tmp/gavel-test-logs"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DownloadDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.DownloadDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing: %v", p, err)
		}
	}
}
