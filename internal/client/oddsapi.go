package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"linesdesk/ingestion/internal/metrics"
	"linesdesk/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrMissingAPIKey is returned when the odds API credential is not configured
var ErrMissingAPIKey = errors.New("odds API key is not configured")

// UpstreamFetchError reports a failed odds fetch for one league
type UpstreamFetchError struct {
	League     string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("odds fetch for %s failed (status %d): %v", e.League, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("odds fetch for %s failed (status %d): %s", e.League, e.StatusCode, e.Body)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// OddsClient is the odds API client
type OddsClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{} // Concurrency semaphore
}

// NewOddsClient creates a new odds API client
func NewOddsClient(baseURL, apiKey string, timeout time.Duration, concurrency int) (*OddsClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if concurrency < 1 {
		concurrency = 1
	}

	rateLimiter := make(chan struct{}, concurrency)
	for i := 0; i < concurrency; i++ {
		rateLimiter <- struct{}{}
	}

	return &OddsClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		rateLimiter: rateLimiter,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// FormatWindowTime renders a window bound the way the odds API accepts it:
// UTC, whole seconds, Z suffix
func FormatWindowTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// FetchOdds fetches h2h, spread and total odds for every event of a league
// commencing within [from, to]
func (c *OddsClient) FetchOdds(ctx context.Context, league models.League, from, to time.Time) ([]models.EventInput, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("markets", strings.Join(models.DisplayMarkets, ","))
	params.Set("oddsFormat", "american")
	params.Set("commenceTimeFrom", FormatWindowTime(from))
	params.Set("commenceTimeTo", FormatWindowTime(to))

	path := fmt.Sprintf("sports/%s/odds", league.SportKey)
	start := time.Now()

	body, err := c.get(ctx, league.Name, path, params)
	if err != nil {
		metrics.RecordAPICall(league.Name, "error", time.Since(start).Seconds())
		return nil, err
	}

	var events []models.EventInput
	if err := json.Unmarshal(body, &events); err != nil {
		metrics.RecordAPICall(league.Name, "decode_error", time.Since(start).Seconds())
		return nil, &UpstreamFetchError{
			League:     league.Name,
			StatusCode: http.StatusOK,
			Body:       truncateBody(body),
			Err:        fmt.Errorf("failed to unmarshal odds: %w", err),
		}
	}

	metrics.RecordAPICall(league.Name, "success", time.Since(start).Seconds())
	return events, nil
}

// get performs a GET request against the odds API
func (c *OddsClient) get(ctx context.Context, league, path string, params url.Values) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, &UpstreamFetchError{League: league, Err: ctx.Err()}
	case <-c.rateLimiter:
		defer func() { c.rateLimiter <- struct{}{} }()
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamFetchError{League: league, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "linesdesk-ingestion/1.0")

	log.Debug().
		Str("league", league).
		Str("path", path).
		Msg("Making odds API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamFetchError{League: league, Err: fmt.Errorf("odds API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamFetchError{
			League:     league,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	c.recordQuota(league, resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamFetchError{
			League:     league,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
		}
	}

	log.Debug().
		Str("league", league).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("Odds API request successful")

	return body, nil
}

// recordQuota logs and exports the provider's usage headers
func (c *OddsClient) recordQuota(league string, header http.Header) {
	remaining := header.Get("x-requests-remaining")
	if remaining == "" {
		return
	}
	if v, err := strconv.ParseFloat(remaining, 64); err == nil {
		metrics.APIRequestsRemaining.Set(v)
	}
	log.Debug().
		Str("league", league).
		Str("remaining", remaining).
		Str("used", header.Get("x-requests-used")).
		Msg("Odds API quota")
}

func truncateBody(body []byte) string {
	const max = 2048
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
