package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks a URL or keyword rejected before any fetch.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNavigationTimeout means the page never finished loading within the
	// navigation budget.
	ErrNavigationTimeout = errors.New("navigation timed out")
	// ErrReadinessTimeout means the page loaded but the expected content
	// marker never appeared. Treated as a hard failure, not partial data.
	ErrReadinessTimeout = errors.New("page content marker never appeared")
	// ErrNetworkUnavailable covers DNS failures, refused connections and
	// transport-level errors.
	ErrNetworkUnavailable = errors.New("network unavailable")
)

// UpstreamError reports an HTTP error status returned by the target site.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream rejected request with status %d", e.StatusCode)
}

// Reason returns a short label for a fetch error, used as a metric dimension.
func Reason(err error) string {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrNavigationTimeout):
		return "navigation_timeout"
	case errors.Is(err, ErrReadinessTimeout):
		return "readiness_timeout"
	case errors.Is(err, ErrNetworkUnavailable):
		return "network"
	case errors.As(err, &upstream):
		return "upstream"
	default:
		return "unknown"
	}
}

// classifyBrowserErr maps a raw chromedp error onto the fetch taxonomy.
func classifyBrowserErr(err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrNavigationTimeout, msg)
	case strings.Contains(msg, "net::ERR_NAME_NOT_RESOLVED"),
		strings.Contains(msg, "net::ERR_CONNECTION_REFUSED"),
		strings.Contains(msg, "net::ERR_INTERNET_DISCONNECTED"),
		strings.Contains(msg, "net::ERR_"):
		return fmt.Errorf("%w: %s", ErrNetworkUnavailable, msg)
	default:
		return err
	}
}
