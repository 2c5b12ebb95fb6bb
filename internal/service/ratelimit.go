package service

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// rateLimitedReader throttles reads against a shared token bucket so that a
// bulk download cannot saturate the device's narrow uplink. Reads are capped
// at the limiter's burst size because WaitN rejects requests larger than it.
type rateLimitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func (l *rateLimitedReader) Read(p []byte) (int, error) {
	if burst := l.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := l.r.Read(p)
	if n <= 0 {
		return n, err
	}

	if waitErr := l.limiter.WaitN(l.ctx, n); waitErr != nil {
		return n, waitErr
	}
	return n, err
}
