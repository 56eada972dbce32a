package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for pipeline outcomes. Wrap tags errors with one of these
// so callers can classify with errors.Is and the queue can persist a kind.
var (
	// ErrNoCandidates means every resolution strategy came up empty. This is
	// the expected outcome for unpublished or cancelled meetings.
	ErrNoCandidates = errors.New("no candidates found")
	// ErrUnverifiable means at least one candidate URL was produced but none
	// passed verification; usually a transient site or network issue.
	ErrUnverifiable = errors.New("all candidates unverifiable")
	// ErrTransport marks a download that failed mid-stream.
	ErrTransport = errors.New("download transport error")
	// ErrIncomplete marks a download whose byte count does not match the
	// declared content length.
	ErrIncomplete = errors.New("download incomplete")
	// ErrTranscodeUnavailable means the extraction tool is not installed.
	ErrTranscodeUnavailable = errors.New("transcoding unavailable")
	// ErrTranscodeFailed marks a non-zero exit from the extraction tool.
	ErrTranscodeFailed = errors.New("transcode failed")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Error kind strings persisted on failed jobs.
const (
	KindNoCandidates         = "no_candidates"
	KindUnverifiable         = "unverifiable"
	KindDownloadTransport    = "download_transport"
	KindDownloadIncomplete   = "download_incomplete"
	KindTranscodeUnavailable = "transcode_unavailable"
	KindTranscodeFailed      = "transcode_failed"
	KindConfiguration        = "configuration"
	KindUnknown              = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps a pipeline error to the kind string stored on the job record.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCandidates):
		return KindNoCandidates
	case errors.Is(err, ErrUnverifiable):
		return KindUnverifiable
	case errors.Is(err, ErrIncomplete):
		return KindDownloadIncomplete
	case errors.Is(err, ErrTransport):
		return KindDownloadTransport
	case errors.Is(err, ErrTranscodeUnavailable):
		return KindTranscodeUnavailable
	case errors.Is(err, ErrTranscodeFailed):
		return KindTranscodeFailed
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindUnknown
	}
}

// Retryable reports whether a failure kind is worth re-enqueueing. A meeting
// with no published media stays not-retryable until the archive changes.
func Retryable(kind string) bool {
	switch kind {
	case KindUnverifiable, KindDownloadTransport, KindDownloadIncomplete:
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
