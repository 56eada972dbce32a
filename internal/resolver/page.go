package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// pageClient fetches and parses archive pages for the HTML-based strategies.
type pageClient struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

func newPageClient(client *http.Client, userAgent string, timeout time.Duration) *pageClient {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &pageClient{client: client, userAgent: userAgent, timeout: timeout}
}

func (p *pageClient) get(ctx context.Context, pageURL string) (*http.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request for %q: %w", pageURL, err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetch %q: %w", pageURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("fetch %q: status %d", pageURL, resp.StatusCode)
	}
	resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// document fetches a page and parses it into a goquery document.
func (p *pageClient) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := p.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", pageURL, err)
	}
	return doc, nil
}

// text fetches a page body as a string, bounded to keep playlist reads cheap.
func (p *pageClient) text(ctx context.Context, pageURL string) (string, error) {
	resp, err := p.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", pageURL, err)
	}
	return string(body), nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// resolveURL makes href absolute against the page it came from. Invalid or
// empty hrefs resolve to "".
func resolveURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	target, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(target)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
