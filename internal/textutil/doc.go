// Package textutil provides text sanitization helpers shared across the
// pipeline, primarily for turning committee and meeting names into
// filesystem-safe path segments.
package textutil
