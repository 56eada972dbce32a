package fetcher

import (
	"path/filepath"
	"strings"
	"testing"

	"gavel/internal/meeting"
)

func pathsRef() meeting.Ref {
	return meeting.Ref{
		Year:          2025,
		Month:         1,
		Day:           8,
		Committee:     "House Chambers",
		Code:          "house",
		ScheduledTime: "0900AM",
	}
}

func TestBuildPathIsDeterministic(t *testing.T) {
	ref := pathsRef()
	url := "https://archive.example.gov/media/250108_house.mp4"

	first := BuildPath("/data", ref, url)
	second := BuildPath("/data", ref, url)
	if first != second {
		t.Fatalf("paths differ: %q vs %q", first, second)
	}

	want := filepath.Join("/data", "2025", "House Chambers", "250108_house_0900AM", "250108_house.mp4")
	if first != want {
		t.Fatalf("path = %q, want %q", first, want)
	}
}

func TestBuildPathSanitizesCommittee(t *testing.T) {
	ref := pathsRef()
	ref.Committee = "Ways/Means: Sénat"

	got := BuildPath("/data", ref, "https://archive.example.gov/a.mp4")
	if strings.Contains(filepath.ToSlash(strings.TrimPrefix(got, "/data/")), "/Ways/") {
		t.Fatalf("separator survived sanitization: %q", got)
	}
	if !strings.Contains(got, "Ways-Means- Senat") {
		t.Fatalf("path = %q", got)
	}
}

func TestBuildPathFallsBackToLabelFilename(t *testing.T) {
	ref := pathsRef()
	got := BuildPath("/data", ref, "https://archive.example.gov/stream/")
	if filepath.Base(got) != "250108_house_0900AM.mp4" {
		t.Fatalf("filename = %q", filepath.Base(got))
	}
}

func TestTruncateSegmentKeepsLongNamesUnique(t *testing.T) {
	long := strings.Repeat("a", 200)
	other := strings.Repeat("a", 199) + "b"

	truncatedA := truncateSegment(long)
	truncatedB := truncateSegment(other)
	if len(truncatedA) > maxSegmentLength {
		t.Fatalf("truncated length = %d", len(truncatedA))
	}
	if truncatedA == truncatedB {
		t.Fatal("distinct long segments collided after truncation")
	}
	if truncateSegment(truncatedA) != truncatedA {
		t.Fatal("truncation is not idempotent for short segments")
	}
}

func TestTruncateSegmentPreservesExtension(t *testing.T) {
	long := strings.Repeat("x", 150) + ".mp4"
	got := truncateSegment(long)
	if !strings.HasSuffix(got, ".mp4") {
		t.Fatalf("extension lost: %q", got)
	}
	if len(got) > maxSegmentLength {
		t.Fatalf("length = %d", len(got))
	}
}
