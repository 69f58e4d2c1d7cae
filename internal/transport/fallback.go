package transport

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"
)

// FallbackExchanger tries the primary exchanger and, on any failure
// (dial timeout, open error, mid-stream error), retries the same request
// once through the fallback. There is no retry loop: primary then
// fallback, and both failing is terminal.
type FallbackExchanger struct {
	Primary  Exchanger
	Fallback Exchanger
}

// NewFallbackExchanger wires the standard websocket-primary,
// HTTP-fallback pair.
func NewFallbackExchanger(wsURL, httpURL string) *FallbackExchanger {
	return &FallbackExchanger{
		Primary:  NewWSExchanger(wsURL),
		Fallback: NewHTTPExchanger(httpURL),
	}
}

// Exchange implements Exchanger.
func (f *FallbackExchanger) Exchange(ctx context.Context, req Request) (string, error) {
	text, err := f.Primary.Exchange(ctx, req)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	log.Printf("WARNING: primary transport failed, falling back to HTTP: %v", err)

	text, ferr := f.Fallback.Exchange(ctx, req)
	if ferr != nil {
		return "", fmt.Errorf("both transports failed: primary: %v; fallback: %w", err, ferr)
	}
	return text, nil
}

// LimitedExchanger applies a client-side rate limit before each exchange,
// mirroring the per-IP limits the backend enforces server-side.
type LimitedExchanger struct {
	inner   Exchanger
	limiter *rate.Limiter
}

// NewLimitedExchanger wraps inner with a requests-per-hour budget.
// A non-positive budget returns inner unchanged.
func NewLimitedExchanger(inner Exchanger, requestsPerHour int) Exchanger {
	if requestsPerHour <= 0 {
		return inner
	}
	limit := rate.Limit(float64(requestsPerHour) / 3600.0)
	return &LimitedExchanger{
		inner:   inner,
		limiter: rate.NewLimiter(limit, requestsPerHour),
	}
}

// Exchange implements Exchanger, blocking until the limiter admits the
// request or the context is cancelled.
func (l *LimitedExchanger) Exchange(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return l.inner.Exchange(ctx, req)
}
