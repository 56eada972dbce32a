package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrTransport, "fetch", "stream", "mid-stream failure", cause)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport marker in %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved in %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("nil marker should default to ErrTransport, got %v", err)
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Wrap(ErrNoCandidates, "resolve", "", "", nil), KindNoCandidates},
		{Wrap(ErrUnverifiable, "resolve", "", "", nil), KindUnverifiable},
		{Wrap(ErrTransport, "fetch", "", "", nil), KindDownloadTransport},
		{Wrap(ErrIncomplete, "fetch", "", "", nil), KindDownloadIncomplete},
		{Wrap(ErrTranscodeFailed, "transcode", "", "", nil), KindTranscodeFailed},
		{fmt.Errorf("unclassified"), KindUnknown},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(KindNoCandidates) {
		t.Fatal("no_candidates should not be retryable")
	}
	for _, kind := range []string{KindUnverifiable, KindDownloadTransport, KindDownloadIncomplete} {
		if !Retryable(kind) {
			t.Fatalf("%s should be retryable", kind)
		}
	}
}
