package testsupport

import (
	"path/filepath"
	"testing"

	"gavel/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DownloadDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
