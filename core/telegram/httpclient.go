package telegram

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/netutil"
)

// Transport timeouts. Response deadlines are stretched past the long-poll
// timeout so getUpdates is never cut short.
const (
	dialTimeout      = 5 * time.Second
	tlsTimeout       = 5 * time.Second
	idleTimeout      = 30 * time.Second
	keepAlive        = 30 * time.Second
	responseSlack    = 10 * time.Second
	transportRetries = 3
	transportBackoff = 2 * time.Second
)

// newHTTPClient returns the client telebot uses for every Bot API call.
// Connection-level failures are retried before telebot sees them.
func newHTTPClient(poll time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       idleTimeout,
		TLSHandshakeTimeout:   tlsTimeout,
		ResponseHeaderTimeout: poll + responseSlack,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   poll + 2*responseSlack,
		Transport: &retryTransport{base: transport, maxRetries: transportRetries, backoff: transportBackoff},
	}
}

// retryTransport repeats requests that failed before a response arrived.
// Requests whose body cannot be replayed are tried once.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.maxRetries; attempt++ {
		if !netutil.ShouldRetry(err) || (req.Body != nil && req.GetBody == nil) {
			return nil, err
		}
		delay := t.backoff * time.Duration(attempt)
		logger.TG.LogAttrs(req.Context(), slog.LevelDebug, "http retry",
			slog.String("event", "tg.http.retry"),
			slog.Int("attempts", attempt),
			slog.Duration("backoff", delay),
			slog.String("err", logger.Redact(err.Error())),
		)
		if waitErr := sleepCtx(req.Context(), delay); waitErr != nil {
			return nil, waitErr
		}

		retry := req.Clone(req.Context())
		if req.GetBody != nil {
			if retry.Body, err = req.GetBody(); err != nil {
				return nil, err
			}
		}
		resp, err = t.base.RoundTrip(retry)
	}
	return resp, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
