package fetcher

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/config"
)

// Fetcher retrieves page content from URLs with conditional request support.
type Fetcher struct {
	client         *HTTPClient
	maxContentSize int
	logger         zerolog.Logger
}

// NewFetcher creates a Fetcher from application fetcher configuration.
// The user agent is the run-level default and can be overridden per fetch.
func NewFetcher(cfg config.FetcherConfig, userAgent string, logger zerolog.Logger) (*Fetcher, error) {
	client, err := NewHTTPClientBuilder(logger).
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		WithDialTimeout(time.Duration(cfg.ConnectTimeoutSeconds) * time.Second).
		WithFollowRedirects(cfg.FollowRedirects).
		WithMaxRedirects(cfg.MaxRedirects).
		WithMaxContentSize(cfg.MaxContentSize).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithUserAgent(userAgent).
		WithConnectionPooling(50, 10, 0).
		WithHTTP2(true).
		Build()
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		client:         client,
		maxContentSize: cfg.MaxContentSize,
		logger:         logger.With().Str("component", "Fetcher").Logger(),
	}, nil
}

// FetchInput holds parameters for a single conditional fetch.
type FetchInput struct {
	URL          string
	ETag         string
	LastModified string
	UserAgent    string
}

// FetchResult holds response data from a fetch.
type FetchResult struct {
	Body         []byte
	ContentType  string
	ETag         string
	LastModified string
	StatusCode   int
}

// Fetch performs a conditional GET against the given URL. It returns
// ErrNotModified when the server answers 304 and an HTTPError for any
// other non-success status.
func (f *Fetcher) Fetch(ctx context.Context, input FetchInput) (*FetchResult, error) {
	headers := make(map[string]string)
	if input.ETag != "" {
		headers["If-None-Match"] = input.ETag
	}
	if input.LastModified != "" {
		headers["If-Modified-Since"] = input.LastModified
	}
	if input.UserAgent != "" {
		headers["User-Agent"] = input.UserAgent
	}

	resp, err := f.client.Do(&HTTPRequest{
		URL:     input.URL,
		Method:  http.MethodGet,
		Headers: headers,
		Context: ctx,
	})
	if err != nil {
		f.logger.Error().Err(err).Str("url", input.URL).Msg("Failed to execute HTTP request")
		return nil, NewNetworkError(input.URL, "HTTP request failed", err)
	}

	result := &FetchResult{
		ETag:         resp.Headers["Etag"],
		LastModified: resp.Headers["Last-Modified"],
		ContentType:  resp.Headers["Content-Type"],
		StatusCode:   resp.StatusCode,
	}

	if resp.StatusCode == http.StatusNotModified {
		f.logger.Debug().Str("url", input.URL).Msg("Content not modified (304)")
		return result, ErrNotModified
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn().Str("url", input.URL).Int("status_code", resp.StatusCode).Msg("Received non-OK HTTP status")
		// Limit error body to 1KB
		errorBody := resp.Body
		if len(errorBody) > 1024 {
			errorBody = errorBody[:1024]
		}
		return result, NewHTTPError(resp.StatusCode, string(errorBody), input.URL)
	}

	result.Body = resp.Body
	if f.maxContentSize > 0 && len(result.Body) > f.maxContentSize {
		f.logger.Warn().
			Str("url", input.URL).
			Int("content_size", len(result.Body)).
			Int("max_content_size", f.maxContentSize).
			Msg("Content size exceeds limit, truncating")
		result.Body = result.Body[:f.maxContentSize]
	}

	f.logger.Debug().
		Str("url", input.URL).
		Int("content_size", len(result.Body)).
		Str("content_type", result.ContentType).
		Msg("Successfully fetched content")

	return result, nil
}
