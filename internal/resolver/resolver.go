// Package resolver locates media URLs for committee meetings by running an
// ordered cascade of discovery strategies against the archive site.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gavel/internal/config"
	"gavel/internal/logging"
	"gavel/internal/meeting"
	"gavel/internal/services"
)

// Candidate is a possible media URL together with the strategy that found it.
type Candidate struct {
	URL      string
	Strategy string
}

// Strategy produces candidate media URLs for a meeting. Strategies are
// stateless; an empty candidate list with a nil error means "nothing found
// here", not a failure.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, ref meeting.Ref) ([]Candidate, error)
}

// Verifier confirms a candidate URL before the cascade commits to it.
type Verifier interface {
	Verify(ctx context.Context, rawURL string) bool
}

// Resolver runs strategies in order and returns the first verified candidate.
type Resolver struct {
	strategies []Strategy
	verifier   Verifier
	logger     *slog.Logger
}

// New builds the standard cascade from configuration: direct template, listing
// page rows, detail page inspection, then the anchor heuristic.
func New(cfg *config.Config, client *http.Client, verifier Verifier, logger *slog.Logger) *Resolver {
	pages := newPageClient(client, cfg.Archive.UserAgent, time.Duration(cfg.Archive.RequestTimeout)*time.Second)
	strategies := []Strategy{
		&directStrategy{template: cfg.Archive.MediaURLTemplate},
		&listingStrategy{pages: pages, template: cfg.Archive.ListingURLTemplate},
		&detailStrategy{pages: pages, template: cfg.Archive.ListingURLTemplate},
		&heuristicStrategy{pages: pages, template: cfg.Archive.ListingURLTemplate, baseURL: cfg.Archive.BaseURL},
	}
	return NewWithStrategies(strategies, verifier, logger)
}

// NewWithStrategies builds a resolver over an explicit strategy list.
func NewWithStrategies(strategies []Strategy, verifier Verifier, logger *slog.Logger) *Resolver {
	return &Resolver{
		strategies: strategies,
		verifier:   verifier,
		logger:     logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve runs the cascade and returns the first candidate that passes
// verification. Candidates are verified in discovery order; later strategies
// never run once one verifies. A strategy error is logged and skipped so one
// flaky page cannot mask a working fallback.
func (r *Resolver) Resolve(ctx context.Context, ref meeting.Ref) (Candidate, error) {
	var lastRejected Candidate
	sawCandidate := false
	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			return Candidate{}, err
		}
		candidates, err := strategy.Resolve(ctx, ref)
		if err != nil {
			r.logger.Warn("strategy failed",
				logging.String(logging.FieldStrategy, strategy.Name()),
				logging.String("meeting", ref.String()),
				logging.Error(err))
			continue
		}
		for _, candidate := range candidates {
			sawCandidate = true
			if r.verifier.Verify(ctx, candidate.URL) {
				r.logger.Info("candidate verified",
					logging.String(logging.FieldStrategy, candidate.Strategy),
					logging.String("url", candidate.URL))
				return candidate, nil
			}
			lastRejected = candidate
			r.logger.Debug("candidate rejected",
				logging.String(logging.FieldStrategy, candidate.Strategy),
				logging.String("url", candidate.URL))
		}
	}
	if sawCandidate {
		detail := fmt.Sprintf("%s: last candidate %s via %s", ref, lastRejected.URL, lastRejected.Strategy)
		return Candidate{}, services.Wrap(services.ErrUnverifiable, "resolver", "resolve", detail, nil)
	}
	return Candidate{}, services.Wrap(services.ErrNoCandidates, "resolver", "resolve", ref.String(), nil)
}

// Candidates runs every strategy and returns all discovered candidates
// without verification. Used by the resolve debug command.
func (r *Resolver) Candidates(ctx context.Context, ref meeting.Ref) []Candidate {
	var all []Candidate
	for _, strategy := range r.strategies {
		candidates, err := strategy.Resolve(ctx, ref)
		if err != nil {
			r.logger.Warn("strategy failed",
				logging.String(logging.FieldStrategy, strategy.Name()),
				logging.Error(err))
			continue
		}
		all = append(all, candidates...)
	}
	return dedupe(all)
}

func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	result := candidates[:0]
	for _, candidate := range candidates {
		if _, ok := seen[candidate.URL]; ok {
			continue
		}
		seen[candidate.URL] = struct{}{}
		result = append(result, candidate)
	}
	return result
}
