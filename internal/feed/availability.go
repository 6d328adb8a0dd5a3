package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"digestcast/internal/services"
)

// Availability reports whether article audio can still be fetched and how
// large it is. ok=false with a nil error means the server gave a definite
// answer that the audio is gone. A non-nil error means no answer was obtained.
type Availability interface {
	Check(ctx context.Context, mediaURL string) (size int64, ok bool, err error)
}

// HTTPAvailability probes media URLs with HEAD requests.
type HTTPAvailability struct {
	client    *http.Client
	userAgent string
}

// NewHTTPAvailability builds a checker. timeout bounds each probe.
func NewHTTPAvailability(timeout time.Duration, userAgent string) *HTTPAvailability {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAvailability{
		client:    &http.Client{Timeout: timeout},
		userAgent: strings.TrimSpace(userAgent),
	}
}

// Check returns ok=false when the server answers with a non-2xx status.
// Transport failures are returned as transient errors and context
// cancellation as the context error.
func (h *HTTPAvailability) Check(ctx context.Context, mediaURL string) (int64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, mediaURL, nil)
	if err != nil {
		return 0, false, fmt.Errorf("build head request: %w", err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, false, ctxErr
		}
		return 0, false, services.Wrap(services.ErrTransient, stageFeed, "check article audio", mediaURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, false, nil
	}
	size := resp.ContentLength
	if size < 0 {
		size = 0
	}
	return size, true, nil
}
