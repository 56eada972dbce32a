package resolver

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gavel/internal/meeting"
	"gavel/internal/verifier"
)

// detailPageLimit caps how many row links the detail strategy follows per
// meeting; listing rows for one date rarely exceed a handful.
const detailPageLimit = 4

// mediaURLPattern pulls absolute media URLs out of inline script text and
// player configuration blobs.
var mediaURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+\.(?:mp4|m4v|mov|webm|mkv|mp3|m4a|aac|wav|ogg|opus|m3u8)(?:\?[^\s"'<>\\]*)?`)

// detailStrategy follows listing row links to per-meeting detail pages and
// inspects embedded players for media URLs. An HLS playlist found there is
// expanded to its first media segment, which stands in as the downloadable
// candidate.
type detailStrategy struct {
	pages    *pageClient
	template string
}

func (s *detailStrategy) Name() string { return "detail" }

func (s *detailStrategy) Resolve(ctx context.Context, ref meeting.Ref) ([]Candidate, error) {
	listingURL := ref.ExpandTemplate(s.template)
	if listingURL == "" {
		return nil, nil
	}
	doc, err := s.pages.document(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, detailURL := range s.detailLinks(doc, listingURL, ref) {
		found, err := s.inspect(ctx, detailURL)
		if err != nil {
			continue
		}
		candidates = append(candidates, found...)
	}
	return dedupe(candidates), nil
}

// detailLinks returns non-media links from rows matching the meeting date.
func (s *detailStrategy) detailLinks(doc *goquery.Document, listingURL string, ref meeting.Ref) []string {
	var links []string
	seen := make(map[string]struct{})
	doc.Find("tr, li").Each(func(_ int, row *goquery.Selection) {
		if len(links) >= detailPageLimit {
			return
		}
		if !matchesDate(row.Text(), ref) && !rowHrefsMatchDate(row, ref) {
			return
		}
		row.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
			if len(links) >= detailPageLimit {
				return
			}
			href, _ := anchor.Attr("href")
			resolved := resolveURL(listingURL, href)
			if resolved == "" || resolved == listingURL || verifier.IsMediaURL(resolved) {
				return
			}
			if _, ok := seen[resolved]; ok {
				return
			}
			seen[resolved] = struct{}{}
			links = append(links, resolved)
		})
	})
	return links
}

// inspect extracts media URLs from one detail page.
func (s *detailStrategy) inspect(ctx context.Context, pageURL string) ([]Candidate, error) {
	doc, err := s.pages.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find("video[src], audio[src], source[src], iframe[src]").Each(func(_ int, element *goquery.Selection) {
		src, _ := element.Attr("src")
		resolved := resolveURL(pageURL, src)
		if resolved != "" && verifier.IsMediaURL(resolved) {
			urls = append(urls, resolved)
		}
	})
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		for _, match := range mediaURLPattern.FindAllString(script.Text(), -1) {
			urls = append(urls, match)
		}
	})

	var candidates []Candidate
	for _, mediaURL := range urls {
		// A playlist is not a downloadable artifact; substitute its first
		// media segment, or skip it when the playlist is unreadable.
		if strings.Contains(mediaURL, ".m3u8") {
			if segment := s.firstSegment(ctx, mediaURL); segment != "" {
				candidates = append(candidates, Candidate{URL: segment, Strategy: s.Name()})
			}
			continue
		}
		candidates = append(candidates, Candidate{URL: mediaURL, Strategy: s.Name()})
	}
	return candidates, nil
}

// firstSegment fetches an HLS playlist and returns its first media line
// resolved to an absolute URL, or "" when the playlist is unreadable.
func (s *detailStrategy) firstSegment(ctx context.Context, playlistURL string) string {
	body, err := s.pages.text(ctx, playlistURL)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return resolveURL(playlistURL, line)
	}
	return ""
}
