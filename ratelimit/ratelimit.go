// Package ratelimit bounds OCR work. Rasterization plus recognition can take
// seconds per page, so concurrent page jobs are held behind a semaphore and
// an optional pages-per-second rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter bounds concurrent OCR page jobs and their admission rate.
type Limiter struct {
	limiter   *rate.Limiter
	semaphore chan struct{}
}

// New creates a limiter allowing maxConcurrent page jobs at once and
// pagesPerSecond admissions per second. A non-positive maxConcurrent means
// unbounded concurrency; a non-positive pagesPerSecond means no rate.
func New(maxConcurrent int, pagesPerSecond float64) *Limiter {
	l := &Limiter{}

	if pagesPerSecond > 0 {
		burst := maxConcurrent
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(pagesPerSecond), burst)
	}

	if maxConcurrent > 0 {
		l.semaphore = make(chan struct{}, maxConcurrent)
	}

	return l
}

// Wait blocks until a page job may start, or the context is cancelled.
// Every successful Wait must be paired with a Release.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.semaphore != nil {
		select {
		case l.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			if l.semaphore != nil {
				<-l.semaphore
			}
			return err
		}
	}

	return nil
}

// Release returns the concurrency slot taken by Wait.
func (l *Limiter) Release() {
	if l.semaphore != nil {
		select {
		case <-l.semaphore:
		default:
		}
	}
}
