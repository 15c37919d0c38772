// Package netutil decides which Telegram API failures deserve another try.
package netutil

import (
	"errors"
	"net"
	"time"

	tele "gopkg.in/telebot.v4"
)

// maxFloodWait caps how long a flood-control hint may stall a retry.
const maxFloodWait = 10 * time.Second

// ShouldRetry is true for flood control, 5xx answers, timeouts and failed
// dials. Client errors and cancellation are final.
func ShouldRetry(err error) bool {
	var (
		flood  tele.FloodError
		apiErr *tele.Error
		netErr net.Error
		opErr  *net.OpError
	)
	switch {
	case err == nil:
		return false
	case errors.As(err, &flood):
		return true
	case errors.As(err, &apiErr):
		return apiErr != nil && apiErr.Code >= 500
	case errors.As(err, &netErr) && netErr.Timeout():
		return true
	case errors.As(err, &opErr):
		return opErr.Op == "dial"
	}
	return false
}

// RetryAfter is the server's flood-control wait, capped, or 0.
func RetryAfter(err error) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return min(time.Duration(flood.RetryAfter)*time.Second, maxFloodWait)
	}
	return 0
}
