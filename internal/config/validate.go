package config

import (
	"fmt"
	"strings"
)

var knownAudioFormats = map[string]struct{}{
	"mp3":  {},
	"opus": {},
	"aac":  {},
	"flac": {},
	"wav":  {},
}

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		return fmt.Errorf("paths.download_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir is required")
	}
	if c.Archive.RequestTimeout <= 0 {
		return fmt.Errorf("archive.request_timeout must be positive")
	}
	if c.Archive.ProbeTimeout <= 0 {
		return fmt.Errorf("archive.probe_timeout must be positive")
	}
	if c.Fetch.StallTimeout < 0 {
		return fmt.Errorf("fetch.stall_timeout must not be negative")
	}
	if c.Workflow.WorkerCount <= 0 {
		return fmt.Errorf("workflow.worker_count must be positive")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		return fmt.Errorf("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return fmt.Errorf("workflow.error_retry_interval must be positive")
	}
	if c.Workflow.ReclaimStale {
		if c.Workflow.HeartbeatInterval <= 0 {
			return fmt.Errorf("workflow.heartbeat_interval must be positive when reclaim_stale is enabled")
		}
		if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
			return fmt.Errorf("workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
		}
	}
	if c.Transcode.Enabled {
		if c.Transcode.Binary == "" {
			return fmt.Errorf("transcode.binary is required when transcoding is enabled")
		}
		if _, ok := knownAudioFormats[c.Transcode.AudioFormat]; !ok {
			return fmt.Errorf("transcode.audio_format: unsupported value %q", c.Transcode.AudioFormat)
		}
	}
	return nil
}
