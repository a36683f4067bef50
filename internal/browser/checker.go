package browser

import (
	"context"
	"net/http"
	"time"
)

// HTTPChecker validates link targets over plain HTTP, outside the browser.
// It tries HEAD first and falls back to GET for servers that reject HEAD.
type HTTPChecker struct {
	client    *http.Client
	userAgent string
}

func NewHTTPChecker(agents *AgentRotator) *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: agents.Next(),
	}
}

// CheckLink returns the HTTP status for rawURL, or an error for
// network-level failures.
func (c *HTTPChecker) CheckLink(ctx context.Context, rawURL string, timeout time.Duration) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status, err := c.do(reqCtx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		return c.do(reqCtx, http.MethodGet, rawURL)
	}
	return status, nil
}

func (c *HTTPChecker) do(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
