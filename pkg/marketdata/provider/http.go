package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

const defaultHTTPTimeout = 30 * time.Second

type httpSettings struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures the HTTP based providers.
type HTTPOption func(*httpSettings)

// WithBaseURL points the provider at another endpoint, e.g. a test server.
func WithBaseURL(baseURL string) HTTPOption {
	return func(s *httpSettings) {
		s.baseURL = baseURL
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *httpSettings) {
		s.client = client
	}
}

func newHTTPSettings(defaultBaseURL string, opts []HTTPOption) httpSettings {
	settings := httpSettings{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(&settings)
	}

	return settings
}

// getJSON issues a GET request and decodes a 200 response body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to build request", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrCodeMarketDataFetchFailed, "unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to decode response", err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
