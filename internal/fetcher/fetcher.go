// Package fetcher downloads verified media URLs to deterministic paths under
// the configured download root.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gavel/internal/config"
	"gavel/internal/logging"
	"gavel/internal/meeting"
	"gavel/internal/services"
)

const stage = "fetcher"

// Result describes a completed (or skipped) download.
type Result struct {
	Path string
	Size int64
	// Skipped is true when skip_existing found the destination already
	// present and no download ran.
	Skipped bool
}

// Fetcher streams media downloads to disk.
type Fetcher struct {
	client       *http.Client
	root         string
	userAgent    string
	timeout      time.Duration
	stallTimeout time.Duration
	skipExisting bool
	keepPartial  bool
	logger       *slog.Logger
}

// New constructs a Fetcher from configuration. A nil client falls back to the
// default client.
func New(cfg *config.Config, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:       client,
		root:         cfg.Paths.DownloadDir,
		userAgent:    cfg.Archive.UserAgent,
		timeout:      time.Duration(cfg.Fetch.DownloadTimeout) * time.Second,
		stallTimeout: time.Duration(cfg.Fetch.StallTimeout) * time.Second,
		skipExisting: cfg.Fetch.SkipExisting,
		keepPartial:  cfg.Fetch.KeepPartial,
		logger:       logging.NewComponentLogger(logger, "fetcher"),
	}
}

// Fetch downloads mediaURL to the deterministic path for ref. The file is
// written through a temporary name and only moved into place once the full
// body has been copied, so a destination path always holds a complete file.
func (f *Fetcher) Fetch(ctx context.Context, ref meeting.Ref, mediaURL string) (Result, error) {
	destination := BuildPath(f.root, ref, mediaURL)

	if f.skipExisting {
		if info, err := os.Stat(destination); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
			f.logger.Info("destination exists, skipping download",
				logging.String("path", destination),
				logging.Int64("bytes", info.Size()))
			return Result{Path: destination, Size: info.Size(), Skipped: true}, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage, "prepare", "create destination directory", err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransport, stage, "request", mediaURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransport, stage, "request", mediaURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, services.Wrap(services.ErrTransport, stage, "request",
			fmt.Sprintf("%s: status %d", mediaURL, resp.StatusCode), nil)
	}

	temp := destination + ".download"
	file, err := os.Create(temp)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage, "prepare", "create temporary file", err)
	}

	body := io.Reader(resp.Body)
	if f.stallTimeout > 0 {
		reader := newStallReader(resp.Body)
		stopWatch := reader.watch(cancel, f.stallTimeout)
		defer stopWatch()
		body = reader
	}

	written, copyErr := io.Copy(file, body)
	closeErr := file.Close()

	if copyErr == nil && closeErr != nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		f.discardPartial(temp, destination)
		return Result{}, services.Wrap(services.ErrTransport, stage, "download", mediaURL, copyErr)
	}

	if resp.ContentLength > 0 && written != resp.ContentLength {
		f.discardPartial(temp, destination)
		return Result{}, services.Wrap(services.ErrIncomplete, stage, "download",
			fmt.Sprintf("%s: got %d of %d bytes", mediaURL, written, resp.ContentLength), nil)
	}

	if err := os.Rename(temp, destination); err != nil {
		f.discardPartial(temp, destination)
		return Result{}, services.Wrap(services.ErrTransport, stage, "finalize", destination, err)
	}

	f.logger.Info("download complete",
		logging.String("path", destination),
		logging.Int64("bytes", written))
	return Result{Path: destination, Size: written}, nil
}

// discardPartial removes an interrupted temporary file, or renames it to a
// .partial suffix when keep_partial is configured.
func (f *Fetcher) discardPartial(temp, destination string) {
	if f.keepPartial {
		partial := destination + ".partial"
		if err := os.Rename(temp, partial); err == nil {
			f.logger.Warn("kept partial download", logging.String("path", partial))
			return
		}
	}
	if err := os.Remove(temp); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("failed to remove partial download",
			logging.String("path", temp), logging.Error(err))
	}
}
