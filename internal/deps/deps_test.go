package deps

import (
	"testing"

	"gavel/internal/config"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "missing tool", Command: "gavel-definitely-not-installed"},
		{Name: "unconfigured", Command: "  "},
	})
	if len(statuses) != 2 {
		t.Fatalf("status count = %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("missing binary reported available")
	}
	if statuses[1].Detail != "command not configured" {
		t.Fatalf("detail = %q", statuses[1].Detail)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Transcode.Enabled = false
	if reqs := Requirements(&cfg); len(reqs) != 0 {
		t.Fatalf("expected no requirements with transcoding off, got %d", len(reqs))
	}

	cfg.Transcode.Enabled = true
	cfg.Transcode.Binary = "ffmpeg"
	reqs := Requirements(&cfg)
	if len(reqs) != 1 || reqs[0].Command != "ffmpeg" {
		t.Fatalf("requirements = %+v", reqs)
	}
	if !reqs[0].Optional {
		t.Fatal("transcoding requirement should be optional")
	}
}
