// Package verifier probes candidate media URLs with metadata-only requests
// before the pipeline commits to a full download.
package verifier

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"gavel/internal/logging"
)

// mediaExtensions are the file extensions accepted as media payloads when a
// server does not advertise a usable content type.
var mediaExtensions = map[string]struct{}{
	".mp4":  {},
	".m4v":  {},
	".mov":  {},
	".webm": {},
	".mkv":  {},
	".avi":  {},
	".wmv":  {},
	".mp3":  {},
	".m4a":  {},
	".aac":  {},
	".wav":  {},
	".ogg":  {},
	".opus": {},
	".ts":   {},
	".m3u8": {},
}

// IsMediaURL reports whether a URL's path carries a known media extension.
func IsMediaURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	_, ok := mediaExtensions[ext]
	return ok
}

// Verifier confirms that a candidate URL is reachable and looks like media.
type Verifier struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// New constructs a Verifier. A nil client falls back to the default client;
// timeout bounds each probe.
func New(client *http.Client, timeout time.Duration, userAgent string, logger *slog.Logger) *Verifier {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Verifier{
		client:    client,
		timeout:   timeout,
		userAgent: userAgent,
		logger:    logging.NewComponentLogger(logger, "verifier"),
	}
}

// Verify issues a HEAD request and reports whether the URL is a plausible
// media payload. Unreachable or non-media URLs are a rejection, never an
// error: the cascade treats them as "try the next candidate".
func (v *Verifier) Verify(ctx context.Context, rawURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Debug("probe failed", logging.String("url", rawURL), logging.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.logger.Debug("probe rejected", logging.String("url", rawURL), logging.Int("status", resp.StatusCode))
		return false
	}

	contentType := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	if isMediaContentType(contentType) {
		return true
	}
	return IsMediaURL(rawURL)
}

func isMediaContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	if strings.HasPrefix(contentType, "video/") || strings.HasPrefix(contentType, "audio/") {
		return true
	}
	// HLS playlists and transport segments advertise application/* types.
	return strings.Contains(contentType, "mpegurl") || strings.Contains(contentType, "mp2t")
}
