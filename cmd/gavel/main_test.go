package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gavel/internal/queue"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "gavel.toml")
	content := fmt.Sprintf(`[paths]
download_dir = %q
log_dir = %q

[transcode]
enabled = false
`, filepath.Join(dir, "data"), filepath.Join(dir, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEnqueueIsIdempotentAcrossInvocations(t *testing.T) {
	configPath := writeTestConfig(t)
	args := []string{
		"--config", configPath,
		"enqueue",
		"--date", "2025-01-08",
		"--committee", "House Chambers",
		"--code", "house",
		"--time", "0900AM",
		"--priority", "2",
	}

	first, err := runCommand(t, args...)
	if err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	second, err := runCommand(t, args...)
	if err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if first != second {
		t.Fatalf("repeat enqueue changed output:\n%s\nvs\n%s", first, second)
	}
	if !strings.Contains(first, "status=pending") {
		t.Fatalf("output = %q", first)
	}
}

func TestEnqueueRejectsBadDate(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := runCommand(t,
		"--config", configPath,
		"enqueue", "--date", "01/08/2025", "--committee", "House", "--code", "house")
	if err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Fatalf("err = %v", err)
	}
}

func TestQueueListShowsEnqueuedJob(t *testing.T) {
	configPath := writeTestConfig(t)
	if _, err := runCommand(t,
		"--config", configPath,
		"enqueue", "--date", "2025-01-08", "--committee", "House Chambers", "--code", "house", "--time", "0900AM"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	out, err := runCommand(t, "--config", configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "250108_house_0900AM") || !strings.Contains(out, "pending") {
		t.Fatalf("output = %q", out)
	}
}

func TestQueueStatusReportsCounts(t *testing.T) {
	configPath := writeTestConfig(t)
	if _, err := runCommand(t,
		"--config", configPath,
		"enqueue", "--date", "2025-01-08", "--committee", "House Chambers", "--code", "house"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	out, err := runCommand(t, "--config", configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	if !strings.Contains(out, "pending:    1") {
		t.Fatalf("output = %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[archive]") {
		t.Fatal("sample config missing [archive] section")
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite succeeded")
	}
}

func TestBuildRefValidation(t *testing.T) {
	if _, err := buildRef("2025-01-08", " ", "house", ""); err == nil {
		t.Fatal("blank committee accepted")
	}
	ref, err := buildRef("2025-01-08", "House Chambers", "house", "0900AM")
	if err != nil {
		t.Fatalf("buildRef: %v", err)
	}
	if ref.Label() != "250108_house_0900AM" {
		t.Fatalf("label = %q", ref.Label())
	}
}

func TestParseMetadata(t *testing.T) {
	metadata, err := parseMetadata([]string{"source=manual", "note=joint session"})
	if err != nil {
		t.Fatalf("parseMetadata: %v", err)
	}
	if metadata["source"] != "manual" || metadata["note"] != "joint session" {
		t.Fatalf("metadata = %+v", metadata)
	}
	if _, err := parseMetadata([]string{"missing-separator"}); err == nil {
		t.Fatal("bad pair accepted")
	}
}

func TestJobDetailHandlesMissingHeartbeat(t *testing.T) {
	job := &queue.Job{Status: queue.StatusProcessing}
	if detail := jobDetail(job); detail != "" {
		t.Fatalf("detail = %q for processing job without heartbeat", detail)
	}

	beat := time.Date(2025, 1, 8, 9, 30, 0, 0, time.UTC)
	job.LastHeartbeat = &beat
	if detail := jobDetail(job); detail != "heartbeat 09:30:00" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestParseStatusFilter(t *testing.T) {
	statuses, err := parseStatusFilter("pending, failed")
	if err != nil {
		t.Fatalf("parseStatusFilter: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("statuses = %v", statuses)
	}
	if _, err := parseStatusFilter("bogus"); err == nil {
		t.Fatal("unknown status accepted")
	}
}
