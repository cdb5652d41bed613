package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

const (
	errCapacityExceeded = "Server capacity exceeded."
	errTimedOut         = "Timed out while waiting for a pending request to complete."
	errContextCanceled  = "Context was canceled."
)

const defaultBacklogTimeout = time.Minute

// ThrottleOpts configures ThrottleWithOpts.
type ThrottleOpts struct {
	// RetryAfterFn, when set, provides the Retry-After value of a rejected request.
	RetryAfterFn func(ctxDone bool) time.Duration

	// Limit is the number of requests served at once.
	Limit int

	// BacklogLimit is the number of requests allowed to wait for a free slot.
	BacklogLimit int

	// BacklogTimeout is the longest wait in the backlog.
	BacklogTimeout time.Duration
}

// Throttle caps the number of requests in flight behind the point where it is
// mounted. It is a global ceiling, not a per-client rate limit.
func Throttle(limit int) func(shell.Handler) shell.Handler {
	return ThrottleWithOpts(ThrottleOpts{Limit: limit, BacklogTimeout: defaultBacklogTimeout})
}

// ThrottleBacklog is Throttle with a bounded queue of waiting requests.
func ThrottleBacklog(limit, backlogLimit int, backlogTimeout time.Duration) func(shell.Handler) shell.Handler {
	return ThrottleWithOpts(ThrottleOpts{Limit: limit, BacklogLimit: backlogLimit, BacklogTimeout: backlogTimeout})
}

// ThrottleWithOpts caps requests in flight with the given options.
func ThrottleWithOpts(opts ThrottleOpts) func(shell.Handler) shell.Handler {
	if opts.Limit < 1 {
		panic("shell/middleware: Throttle expects limit > 0")
	}

	if opts.BacklogLimit < 0 {
		panic("shell/middleware: Throttle expects backlogLimit to be positive")
	}

	t := &throttler{
		tokens:         make(chan struct{}, opts.Limit),
		backlogTokens:  make(chan struct{}, opts.Limit+opts.BacklogLimit),
		backlogTimeout: opts.BacklogTimeout,
		retryAfterFn:   opts.RetryAfterFn,
	}

	for i := 0; i < opts.Limit+opts.BacklogLimit; i++ {
		if i < opts.Limit {
			t.tokens <- struct{}{}
		}

		t.backlogTokens <- struct{}{}
	}

	return func(next shell.Handler) shell.Handler {
		return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
			t.serve(ctx, rc, next)
		})
	}
}

type throttler struct {
	tokens         chan struct{}
	backlogTokens  chan struct{}
	retryAfterFn   func(ctxDone bool) time.Duration
	backlogTimeout time.Duration
}

func (t *throttler) serve(ctx context.Context, rc *fasthttp.RequestCtx, next shell.Handler) {
	select {
	case <-ctx.Done():
		t.reject(rc, errContextCanceled, true)

		return
	case <-t.backlogTokens:
		defer func() { t.backlogTokens <- struct{}{} }()
	default:
		t.reject(rc, errCapacityExceeded, false)

		return
	}

	timer := time.NewTimer(t.backlogTimeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		t.reject(rc, errTimedOut, false)
	case <-ctx.Done():
		t.reject(rc, errContextCanceled, true)
	case <-t.tokens:
		defer func() { t.tokens <- struct{}{} }()

		next.ServeHTTP(ctx, rc)
	}
}

func (t *throttler) reject(rc *fasthttp.RequestCtx, msg string, ctxDone bool) {
	if t.retryAfterFn != nil {
		rc.Response.Header.Set("Retry-After", strconv.Itoa(int(t.retryAfterFn(ctxDone).Seconds())))
	}

	rc.Error(msg, fasthttp.StatusTooManyRequests)
}
