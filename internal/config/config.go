package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DownloadDir is the root under which media artifacts are stored.
	DownloadDir string `toml:"download_dir"`
	LogDir      string `toml:"log_dir"`
}

// Archive contains configuration for the legislative archive site.
type Archive struct {
	BaseURL string `toml:"base_url"`
	// MediaURLTemplate builds a direct media URL from date tokens:
	// {yyyy} {yy} {mm} {dd} {code} {committee} {time}.
	MediaURLTemplate string `toml:"media_url_template"`
	// ListingURLTemplate builds the committee/date listing page URL using the
	// same tokens.
	ListingURLTemplate string `toml:"listing_url_template"`
	UserAgent          string `toml:"user_agent"`
	// RequestTimeout bounds page fetches, in seconds.
	RequestTimeout int `toml:"request_timeout"`
	// ProbeTimeout bounds each candidate verification probe, in seconds.
	ProbeTimeout int `toml:"probe_timeout"`
}

// Fetch contains configuration for the download step.
type Fetch struct {
	// SkipExisting reports an already-present destination file as the result
	// instead of re-downloading.
	SkipExisting bool `toml:"skip_existing"`
	// KeepPartial renames an interrupted download to a .partial suffix for
	// inspection instead of removing it.
	KeepPartial bool `toml:"keep_partial"`
	// DownloadTimeout bounds a single download, in seconds. Zero disables it.
	DownloadTimeout int `toml:"download_timeout"`
	// StallTimeout aborts a download whose stream makes no progress for this
	// many seconds, so one stuck endpoint cannot pin a worker. Zero disables
	// the check.
	StallTimeout int `toml:"stall_timeout"`
}

// Transcode contains configuration for audio extraction.
type Transcode struct {
	Enabled bool   `toml:"enabled"`
	Binary  string `toml:"binary"`
	// AudioFormat is the extracted audio container/codec: mp3, opus, aac,
	// flac, or wav.
	AudioFormat string `toml:"audio_format"`
	// Timeout bounds one extraction run, in seconds.
	Timeout int `toml:"timeout"`
}

// Workflow contains worker pool timing and recovery settings.
type Workflow struct {
	WorkerCount        int `toml:"worker_count"`
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
	// ReclaimStale returns processing jobs with expired heartbeats to
	// pending. Off by default: an abandoned job stays visible in processing
	// until an operator retries it.
	ReclaimStale bool `toml:"reclaim_stale"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gavel.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Archive   Archive   `toml:"archive"`
	Fetch     Fetch     `toml:"fetch"`
	Transcode Transcode `toml:"transcode"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gavel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("gavel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	c.Archive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Archive.BaseURL), "/")
	c.Archive.MediaURLTemplate = strings.TrimSpace(c.Archive.MediaURLTemplate)
	c.Archive.ListingURLTemplate = strings.TrimSpace(c.Archive.ListingURLTemplate)
	c.Transcode.Binary = strings.TrimSpace(c.Transcode.Binary)
	c.Transcode.AudioFormat = strings.ToLower(strings.TrimSpace(c.Transcode.AudioFormat))
	return nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DownloadDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
