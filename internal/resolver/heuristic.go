package resolver

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gavel/internal/meeting"
	"gavel/internal/verifier"
)

// heuristicStrategy is the last resort: scan every anchor on the listing (or
// archive base) page and keep media-extension links whose href or text
// carries the meeting date. Low confidence, so it runs after the structured
// strategies.
type heuristicStrategy struct {
	pages    *pageClient
	template string
	baseURL  string
}

func (s *heuristicStrategy) Name() string { return "heuristic" }

func (s *heuristicStrategy) Resolve(ctx context.Context, ref meeting.Ref) ([]Candidate, error) {
	pageURL := ref.ExpandTemplate(s.template)
	if pageURL == "" {
		pageURL = strings.TrimSpace(s.baseURL)
	}
	if pageURL == "" {
		return nil, nil
	}
	doc, err := s.pages.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		resolved := resolveURL(pageURL, href)
		if resolved == "" || !verifier.IsMediaURL(resolved) {
			return
		}
		if !matchesDate(href, ref) && !matchesDate(anchor.Text(), ref) {
			return
		}
		candidates = append(candidates, Candidate{URL: resolved, Strategy: s.Name()})
	})
	return dedupe(candidates), nil
}
