package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gavel/internal/fetcher"
	"gavel/internal/logging"
	"gavel/internal/meeting"
	"gavel/internal/queue"
	"gavel/internal/resolver"
	"gavel/internal/services"
)

type stubResolver struct {
	candidate resolver.Candidate
	err       error
}

func (s stubResolver) Resolve(context.Context, meeting.Ref) (resolver.Candidate, error) {
	return s.candidate, s.err
}

type stubFetcher struct {
	result fetcher.Result
	err    error
}

func (s stubFetcher) Fetch(context.Context, meeting.Ref, string) (fetcher.Result, error) {
	return s.result, s.err
}

type stubTranscoder struct {
	enabled   bool
	available bool
	audioPath string
	err       error
	calls     int
}

func (s *stubTranscoder) Enabled() bool   { return s.enabled }
func (s *stubTranscoder) Available() bool { return s.available }

func (s *stubTranscoder) Extract(context.Context, string) (string, error) {
	s.calls++
	return s.audioPath, s.err
}

func pipelineJob() *queue.Job {
	return &queue.Job{
		ID: 1,
		Ref: meeting.Ref{
			Year: 2025, Month: 1, Day: 8,
			Committee: "House Chambers", Code: "house", ScheduledTime: "0900AM",
		},
	}
}

func TestProcessCompletesWithAudio(t *testing.T) {
	transcode := &stubTranscoder{enabled: true, available: true, audioPath: "/data/audio/rec.mp3"}
	p := NewPipeline(
		stubResolver{candidate: resolver.Candidate{URL: "https://a.example/rec.mp4", Strategy: "direct"}},
		stubFetcher{result: fetcher.Result{Path: "/data/rec.mp4", Size: 2048}},
		transcode,
		logging.NewNop(),
	)

	result, err := p.Process(context.Background(), pipelineJob())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.ResolvedURL != "https://a.example/rec.mp4" || result.Strategy != "direct" {
		t.Fatalf("result = %+v", result)
	}
	if result.FilePath != "/data/rec.mp4" || result.FileSize != 2048 {
		t.Fatalf("result = %+v", result)
	}
	if result.AudioPath != "/data/audio/rec.mp3" || result.TranscodeNote != "" {
		t.Fatalf("result = %+v", result)
	}
}

func TestProcessPropagatesResolverError(t *testing.T) {
	resolveErr := services.Wrap(services.ErrNoCandidates, "resolver", "resolve", "2025-01-08/house/0900AM", nil)
	p := NewPipeline(stubResolver{err: resolveErr}, stubFetcher{}, &stubTranscoder{}, logging.NewNop())

	_, err := p.Process(context.Background(), pipelineJob())
	if !errors.Is(err, services.ErrNoCandidates) {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessPropagatesFetchError(t *testing.T) {
	fetchErr := services.Wrap(services.ErrIncomplete, "fetcher", "download", "short read", nil)
	p := NewPipeline(
		stubResolver{candidate: resolver.Candidate{URL: "https://a.example/rec.mp4", Strategy: "listing"}},
		stubFetcher{err: fetchErr},
		&stubTranscoder{enabled: true, available: true},
		logging.NewNop(),
	)

	_, err := p.Process(context.Background(), pipelineJob())
	if !errors.Is(err, services.ErrIncomplete) {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessAnnotatesUnavailableTranscoder(t *testing.T) {
	transcode := &stubTranscoder{enabled: true, available: false}
	p := NewPipeline(
		stubResolver{candidate: resolver.Candidate{URL: "https://a.example/rec.mp4", Strategy: "direct"}},
		stubFetcher{result: fetcher.Result{Path: "/data/rec.mp4", Size: 100}},
		transcode,
		logging.NewNop(),
	)

	result, err := p.Process(context.Background(), pipelineJob())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.TranscodeNote != "transcoding unavailable" {
		t.Fatalf("note = %q", result.TranscodeNote)
	}
	if transcode.calls != 0 {
		t.Fatal("extraction attempted with unavailable tool")
	}
}

func TestProcessAnnotatesTranscodeFailureWithoutFailingJob(t *testing.T) {
	transcode := &stubTranscoder{
		enabled:   true,
		available: true,
		err:       services.Wrap(services.ErrTranscodeFailed, "transcoder", "extract", "exit status 1", nil),
	}
	p := NewPipeline(
		stubResolver{candidate: resolver.Candidate{URL: "https://a.example/rec.mp4", Strategy: "direct"}},
		stubFetcher{result: fetcher.Result{Path: "/data/rec.mp4", Size: 100}},
		transcode,
		logging.NewNop(),
	)

	result, err := p.Process(context.Background(), pipelineJob())
	if err != nil {
		t.Fatalf("transcode failure must not fail the job: %v", err)
	}
	if !strings.Contains(result.TranscodeNote, "transcode failed") {
		t.Fatalf("note = %q", result.TranscodeNote)
	}
	if result.AudioPath != "" {
		t.Fatalf("audio path = %q", result.AudioPath)
	}
}

func TestErrorHintMatchesFailureKind(t *testing.T) {
	for _, kind := range []string{
		services.KindUnverifiable,
		services.KindDownloadTransport,
		services.KindDownloadIncomplete,
	} {
		if hint := errorHint(kind); !strings.Contains(hint, "queue retry") {
			t.Errorf("errorHint(%s) = %q, want retry guidance", kind, hint)
		}
	}
	if hint := errorHint(services.KindNoCandidates); !strings.Contains(hint, "published") {
		t.Errorf("errorHint(no_candidates) = %q", hint)
	}
	if hint := errorHint(services.KindConfiguration); !strings.Contains(hint, "config show") {
		t.Errorf("errorHint(configuration) = %q", hint)
	}
	if hint := errorHint(services.KindUnknown); hint == "" {
		t.Error("errorHint(unknown) is empty")
	}
}

func TestProcessSkipsTranscodeWhenDisabled(t *testing.T) {
	transcode := &stubTranscoder{enabled: false, available: true}
	p := NewPipeline(
		stubResolver{candidate: resolver.Candidate{URL: "https://a.example/rec.mp4", Strategy: "direct"}},
		stubFetcher{result: fetcher.Result{Path: "/data/rec.mp4", Size: 100}},
		transcode,
		logging.NewNop(),
	)

	result, err := p.Process(context.Background(), pipelineJob())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.TranscodeNote != "" || result.AudioPath != "" || transcode.calls != 0 {
		t.Fatalf("result = %+v, calls = %d", result, transcode.calls)
	}
}
