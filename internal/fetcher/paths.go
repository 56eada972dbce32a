package fetcher

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"gavel/internal/meeting"
	"gavel/internal/textutil"
)

// maxSegmentLength bounds each path segment. Longer segments are truncated
// and suffixed with a short hash of the original so distinct names cannot
// collide after truncation.
const maxSegmentLength = 80

// BuildPath returns the deterministic destination for a meeting's media file:
// {root}/{year}/{committee}/{label}/{filename}. The same reference and URL
// always map to the same path.
func BuildPath(root string, ref meeting.Ref, mediaURL string) string {
	return filepath.Join(
		root,
		fmt.Sprintf("%04d", ref.Year),
		truncateSegment(textutil.SanitizePathSegment(ref.Committee)),
		truncateSegment(textutil.SanitizePathSegment(ref.Label())),
		truncateSegment(fileNameFor(ref, mediaURL)),
	)
}

// fileNameFor derives the destination file name from the media URL's path,
// falling back to the meeting label when the URL gives nothing usable.
func fileNameFor(ref meeting.Ref, mediaURL string) string {
	ext := ".mp4"
	base := ""
	if parsed, err := url.Parse(mediaURL); err == nil {
		base = path.Base(parsed.Path)
		if base == "." || base == "/" {
			base = ""
		}
		if e := path.Ext(base); e != "" {
			ext = strings.ToLower(e)
			base = strings.TrimSuffix(base, e)
		}
	}
	if base == "" {
		return ref.Label() + ext
	}
	name := textutil.SanitizePathSegment(base)
	if name == "unknown" {
		return ref.Label() + ext
	}
	return name + ext
}

// truncateSegment keeps a segment under maxSegmentLength, preserving the
// extension and appending an 8-hex xxhash of the full original name.
func truncateSegment(segment string) string {
	if len(segment) <= maxSegmentLength {
		return segment
	}
	sum := xxhash.Sum64String(segment)
	suffix := fmt.Sprintf("-%08x", uint32(sum))
	ext := filepath.Ext(segment)
	if len(ext) > 10 {
		ext = ""
	}
	keep := maxSegmentLength - len(suffix) - len(ext)
	if keep < 1 {
		keep = 1
	}
	for keep > 0 && !utf8.RuneStart(segment[keep]) {
		keep--
	}
	return segment[:keep] + suffix + ext
}
