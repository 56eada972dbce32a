package resolver

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gavel/internal/meeting"
	"gavel/internal/verifier"
)

// listingStrategy parses the committee/date listing page and extracts
// explicit download links from rows that mention the target date.
type listingStrategy struct {
	pages    *pageClient
	template string
}

func (s *listingStrategy) Name() string { return "listing" }

func (s *listingStrategy) Resolve(ctx context.Context, ref meeting.Ref) ([]Candidate, error) {
	pageURL := ref.ExpandTemplate(s.template)
	if pageURL == "" {
		return nil, nil
	}
	doc, err := s.pages.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	doc.Find("tr, li").Each(func(_ int, row *goquery.Selection) {
		if !matchesDate(row.Text(), ref) && !rowHrefsMatchDate(row, ref) {
			return
		}
		row.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
			href, _ := anchor.Attr("href")
			resolved := resolveURL(pageURL, href)
			if resolved == "" || !verifier.IsMediaURL(resolved) {
				return
			}
			candidates = append(candidates, Candidate{URL: resolved, Strategy: s.Name()})
		})
	})
	return dedupe(candidates), nil
}

// rowHrefsMatchDate catches listings that keep the date in the link target
// rather than the visible row text.
func rowHrefsMatchDate(row *goquery.Selection, ref meeting.Ref) bool {
	matched := false
	row.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		if matchesDate(strings.ToLower(href), ref) {
			matched = true
			return false
		}
		return true
	})
	return matched
}
