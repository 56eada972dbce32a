package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gavel/internal/logging"
	"gavel/internal/services"
	"gavel/internal/testsupport"
)

func TestFetchDownloadsToDeterministicPath(t *testing.T) {
	payload := bytes.Repeat([]byte("legislative audio "), 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write(payload)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	f := New(cfg, srv.Client(), logging.NewNop())

	ref := pathsRef()
	result, err := f.Fetch(context.Background(), ref, srv.URL+"/media/250108_house.mp4")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Skipped {
		t.Fatal("fresh download reported skipped")
	}
	if result.Size != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", result.Size, len(payload))
	}
	if result.Path != BuildPath(cfg.Paths.DownloadDir, ref, srv.URL+"/media/250108_house.mp4") {
		t.Fatalf("path = %q", result.Path)
	}

	written, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if !bytes.Equal(written, payload) {
		t.Fatal("destination content mismatch")
	}
}

func TestFetchSkipsExistingDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Fetch.SkipExisting = true

	ref := pathsRef()
	url := "https://archive.example.gov/media/250108_house.mp4"
	destination := BuildPath(cfg.Paths.DownloadDir, ref, url)
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(destination, []byte("already here"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	f := New(cfg, &http.Client{Transport: failingTransport{}}, logging.NewNop())
	result, err := f.Fetch(context.Background(), ref, url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !result.Skipped || result.Size != int64(len("already here")) {
		t.Fatalf("result = %+v", result)
	}
}

func TestFetchReportsIncompleteOnShortBody(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &http.Client{Transport: staticTransport{
		contentLength: 1 << 20,
		body:          io.NopCloser(bytes.NewReader([]byte("short"))),
	}}
	f := New(cfg, client, logging.NewNop())

	ref := pathsRef()
	url := "https://archive.example.gov/media/250108_house.mp4"
	_, err := f.Fetch(context.Background(), ref, url)
	if !errors.Is(err, services.ErrIncomplete) {
		t.Fatalf("err = %v, want ErrIncomplete", err)
	}
	if services.Kind(err) != services.KindDownloadIncomplete {
		t.Fatalf("kind = %q", services.Kind(err))
	}
	assertNoArtifacts(t, BuildPath(cfg.Paths.DownloadDir, ref, url))
}

func TestFetchReportsTransportOnMidStreamError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &http.Client{Transport: staticTransport{
		contentLength: 100,
		body:          io.NopCloser(io.MultiReader(bytes.NewReader([]byte("partial")), errReader{})),
	}}
	f := New(cfg, client, logging.NewNop())

	ref := pathsRef()
	url := "https://archive.example.gov/media/250108_house.mp4"
	_, err := f.Fetch(context.Background(), ref, url)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	assertNoArtifacts(t, BuildPath(cfg.Paths.DownloadDir, ref, url))
}

func TestFetchKeepsPartialWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Fetch.KeepPartial = true
	client := &http.Client{Transport: staticTransport{
		contentLength: 100,
		body:          io.NopCloser(io.MultiReader(bytes.NewReader([]byte("partial")), errReader{})),
	}}
	f := New(cfg, client, logging.NewNop())

	ref := pathsRef()
	url := "https://archive.example.gov/media/250108_house.mp4"
	_, err := f.Fetch(context.Background(), ref, url)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}

	destination := BuildPath(cfg.Paths.DownloadDir, ref, url)
	if _, statErr := os.Stat(destination + ".partial"); statErr != nil {
		t.Fatalf("partial file missing: %v", statErr)
	}
	if _, statErr := os.Stat(destination); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("destination should not exist after failed download")
	}
}

func TestFetchAbortsStalledStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", "1048576")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Fetch.StallTimeout = 1
	f := New(cfg, srv.Client(), logging.NewNop())

	ref := pathsRef()
	url := srv.URL + "/media/250108_house.mp4"
	start := time.Now()
	_, err := f.Fetch(context.Background(), ref, url)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("stalled download held the worker for %s", elapsed)
	}
	assertNoArtifacts(t, BuildPath(cfg.Paths.DownloadDir, ref, url))
}

func TestFetchRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	f := New(cfg, srv.Client(), logging.NewNop())
	_, err := f.Fetch(context.Background(), pathsRef(), srv.URL+"/media/x.mp4")
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func assertNoArtifacts(t *testing.T, destination string) {
	t.Helper()
	for _, p := range []string{destination, destination + ".download"} {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("artifact left behind: %s", p)
		}
	}
}

type staticTransport struct {
	contentLength int64
	body          io.ReadCloser
}

func (s staticTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode:    http.StatusOK,
		ContentLength: s.contentLength,
		Body:          s.body,
		Header:        http.Header{"Content-Type": []string{"video/mp4"}},
		Request:       req,
	}, nil
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("transport should not be used")
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}
