// Package worker drives queued jobs through resolve, verify, fetch, and
// transcode, with a bounded pool pulling from the durable queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gavel/internal/fetcher"
	"gavel/internal/logging"
	"gavel/internal/meeting"
	"gavel/internal/queue"
	"gavel/internal/resolver"
	"gavel/internal/services"
)

// Resolver locates a verified media URL for a meeting.
type Resolver interface {
	Resolve(ctx context.Context, ref meeting.Ref) (resolver.Candidate, error)
}

// Fetcher downloads a media URL to local storage.
type Fetcher interface {
	Fetch(ctx context.Context, ref meeting.Ref, mediaURL string) (fetcher.Result, error)
}

// Transcoder extracts an audio track from a downloaded file.
type Transcoder interface {
	Enabled() bool
	Available() bool
	Extract(ctx context.Context, mediaPath string) (string, error)
}

// Pipeline processes one job end-to-end.
type Pipeline struct {
	resolver   Resolver
	fetcher    Fetcher
	transcoder Transcoder
	logger     *slog.Logger
}

// NewPipeline wires the processing stages together.
func NewPipeline(res Resolver, fetch Fetcher, transcode Transcoder, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver:   res,
		fetcher:    fetch,
		transcoder: transcode,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Process resolves, fetches, and optionally transcodes the job's meeting.
// Resolution and download errors come back classified for the queue; a
// transcode problem never does, it only annotates the result.
func (p *Pipeline) Process(ctx context.Context, job *queue.Job) (queue.Result, error) {
	log := logging.WithContext(ctx, p.logger)

	ctx = services.WithStage(ctx, "resolve")
	candidate, err := p.resolver.Resolve(ctx, job.Ref)
	if err != nil {
		return queue.Result{}, err
	}
	log.Info("resolved media url",
		logging.String("url", candidate.URL),
		logging.String(logging.FieldStrategy, candidate.Strategy))

	ctx = services.WithStage(ctx, "fetch")
	fetched, err := p.fetcher.Fetch(ctx, job.Ref, candidate.URL)
	if err != nil {
		return queue.Result{}, err
	}

	result := queue.Result{
		ResolvedURL: candidate.URL,
		Strategy:    candidate.Strategy,
		FilePath:    fetched.Path,
		FileSize:    fetched.Size,
	}

	ctx = services.WithStage(ctx, "transcode")
	p.transcode(ctx, log, fetched.Path, &result)
	return result, nil
}

// transcode runs the best-effort audio extraction and annotates the result.
func (p *Pipeline) transcode(ctx context.Context, log *slog.Logger, mediaPath string, result *queue.Result) {
	if !p.transcoder.Enabled() {
		return
	}
	if !p.transcoder.Available() {
		result.TranscodeNote = "transcoding unavailable"
		log.Warn("transcoding unavailable, keeping video only")
		return
	}
	audioPath, err := p.transcoder.Extract(ctx, mediaPath)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTranscodeUnavailable):
			result.TranscodeNote = "transcoding unavailable"
		default:
			result.TranscodeNote = fmt.Sprintf("transcode failed: %v", err)
		}
		log.Warn("audio extraction failed", logging.Error(err))
		return
	}
	result.AudioPath = audioPath
	log.Info("audio extracted", logging.String("path", audioPath))
}
