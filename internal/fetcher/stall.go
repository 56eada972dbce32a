package fetcher

import (
	"context"
	"io"
	"sync/atomic"
	"time"
)

// stallReader tracks read progress so a watchdog can abort a download whose
// stream has gone silent without closing the connection.
type stallReader struct {
	inner        io.Reader
	lastProgress atomic.Int64
}

func newStallReader(inner io.Reader) *stallReader {
	r := &stallReader{inner: inner}
	r.lastProgress.Store(time.Now().UnixNano())
	return r
}

func (r *stallReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.lastProgress.Store(time.Now().UnixNano())
	}
	return n, err
}

// watch cancels the request when no bytes arrive within the stall window.
// The returned stop function must be called once the copy finishes.
func (r *stallReader) watch(cancel context.CancelFunc, stall time.Duration) func() {
	done := make(chan struct{})
	go func() {
		interval := stall / 4
		if interval < 100*time.Millisecond {
			interval = 100 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				last := time.Unix(0, r.lastProgress.Load())
				if time.Since(last) >= stall {
					cancel()
					return
				}
			}
		}
	}()
	return func() { close(done) }
}
