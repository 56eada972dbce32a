// Package transcoder extracts audio tracks from downloaded recordings by
// shelling out to an external tool, ffmpeg by default. Extraction is
// best-effort: the pipeline records its absence instead of failing jobs.
package transcoder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gavel/internal/config"
	"gavel/internal/logging"
	"gavel/internal/services"
)

const stage = "transcoder"

// audioCodecs maps the configured output format to the encoder argument.
var audioCodecs = map[string]string{
	"mp3":  "libmp3lame",
	"opus": "libopus",
	"aac":  "aac",
	"flac": "flac",
	"wav":  "pcm_s16le",
}

// Executor runs the external tool. Swapped out in tests.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Transcoder wraps the audio extraction tool.
type Transcoder struct {
	enabled  bool
	binary   string
	format   string
	timeout  time.Duration
	executor Executor
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// New constructs a Transcoder from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Transcoder {
	return &Transcoder{
		enabled:  cfg.Transcode.Enabled,
		binary:   cfg.Transcode.Binary,
		format:   cfg.Transcode.AudioFormat,
		timeout:  time.Duration(cfg.Transcode.Timeout) * time.Second,
		executor: commandExecutor{},
		lookPath: exec.LookPath,
		logger:   logging.NewComponentLogger(logger, "transcoder"),
	}
}

// SetExecutor replaces the command executor. Tests only.
func (t *Transcoder) SetExecutor(executor Executor) {
	t.executor = executor
}

// SetLookPath replaces binary resolution. Tests only.
func (t *Transcoder) SetLookPath(lookPath func(string) (string, error)) {
	t.lookPath = lookPath
}

// Enabled reports whether extraction is configured on.
func (t *Transcoder) Enabled() bool {
	return t.enabled
}

// Available reports whether the extraction binary can be resolved.
func (t *Transcoder) Available() bool {
	if !t.enabled || strings.TrimSpace(t.binary) == "" {
		return false
	}
	_, err := t.lookPath(t.binary)
	return err == nil
}

// AudioPath returns where Extract writes the audio track for a media file:
// an audio/ directory beside the source, same base name, configured format
// extension.
func (t *Transcoder) AudioPath(mediaPath string) string {
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	return filepath.Join(filepath.Dir(mediaPath), "audio", base+"."+t.format)
}

// Extract produces the audio track for mediaPath and returns its location.
func (t *Transcoder) Extract(ctx context.Context, mediaPath string) (string, error) {
	if !t.Available() {
		return "", services.Wrap(services.ErrTranscodeUnavailable, stage, "extract",
			fmt.Sprintf("binary %q not available", t.binary), nil)
	}
	codec, ok := audioCodecs[t.format]
	if !ok {
		return "", services.Wrap(services.ErrConfiguration, stage, "extract",
			fmt.Sprintf("unsupported audio format %q", t.format), nil)
	}

	audioPath := t.AudioPath(mediaPath)
	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return "", services.Wrap(services.ErrTranscodeFailed, stage, "extract", "create audio directory", err)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", mediaPath,
		"-vn",
		"-acodec", codec,
		audioPath,
	}
	t.logger.Info("extracting audio",
		logging.String("source", mediaPath),
		logging.String("destination", audioPath))

	output, err := t.executor.Run(ctx, t.binary, args...)
	if err != nil {
		return "", services.Wrap(services.ErrTranscodeFailed, stage, "extract",
			outputTail(output), err)
	}
	return audioPath, nil
}

// outputTail keeps the last few lines of tool output for error detail; ffmpeg
// prints the actionable message last.
func outputTail(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
