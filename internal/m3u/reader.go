package m3u

import (
	"io"
	"time"
)

// deadlineReader wraps an io.Reader so that any single Read call taking
// longer than timeout fails with errLineTimeout, bounding the parser's
// exposure to a stalled origin connection mid-playlist.
//
// Each Read spawns a goroutine to perform the underlying call; if the
// timeout fires first, that goroutine is abandoned (it will still
// complete and its result discarded once the underlying Read returns or
// errors) rather than joined, since io.Reader offers no cancellation.
// This is an accepted tradeoff: the abandoned goroutine exits on its own
// once the read unblocks or the body is closed.
type deadlineReader struct {
	r       io.Reader
	timeout time.Duration
}

type readResult struct {
	n   int
	err error
}

// WithLineTimeout wraps r so that Parse fails with ErrLineTimeout if any
// single Read call takes longer than timeout. Callers should wrap a
// fetched response body with this before passing it to Parse.
func WithLineTimeout(r io.Reader, timeout time.Duration) io.Reader {
	if timeout <= 0 {
		return r
	}
	return &deadlineReader{r: r, timeout: timeout}
}

func (d *deadlineReader) Read(p []byte) (int, error) {
	ch := make(chan readResult, 1)
	go func() {
		n, err := d.r.Read(p)
		ch <- readResult{n, err}
	}()

	select {
	case res := <-ch:
		return res.n, res.err
	case <-time.After(d.timeout):
		return 0, errLineTimeout
	}
}
