package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/retry"
)

// SyndicationClient queries the unauthenticated embed endpoint.
type SyndicationClient struct {
	cfg    Config
	hc     *http.Client
	logger *slog.Logger
}

// NewSyndicationClient creates a SyndicationClient.
func NewSyndicationClient(cfg Config, hc *http.Client, logger *slog.Logger) *SyndicationClient {
	return &SyndicationClient{
		cfg:    cfg.withDefaults(),
		hc:     hc,
		logger: logger.With("component", "syndication"),
	}
}

func (c *SyndicationClient) endpoint(postID string) (string, error) {
	token, err := SyndicationToken(postID)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(c.cfg.SyndicationURL)
	if err != nil {
		return "", fmt.Errorf("%w: syndication url: %v", domain.ErrFetchFailed, err)
	}
	q := u.Query()
	q.Set("id", postID)
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RequestSyndication fetches the reduced post view, retrying transient
// failures with exponential backoff. Exhaustion yields ErrFetchFailed.
func (c *SyndicationClient) RequestSyndication(ctx context.Context, postID string) (*SyndicationResponse, error) {
	endpoint, err := c.endpoint(postID)
	if err != nil {
		return nil, err
	}

	resp, err := retry.Do(ctx, c.cfg.SyndicationRetry, func(attempt int) (*SyndicationResponse, error) {
		r, err := c.fetch(ctx, endpoint)
		if err != nil {
			c.logger.Warn("syndication request failed",
				"post_id", postID,
				"attempt", attempt+1,
				"max_attempts", c.cfg.SyndicationRetry.MaxAttempts,
				"error", err,
			)
		}
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: syndication: %v", domain.ErrFetchFailed, err)
	}
	return resp, nil
}

func (c *SyndicationClient) fetch(ctx context.Context, endpoint string) (*SyndicationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SyndicationTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp)
	}
	if err := checkJSONResponse(resp); err != nil {
		return nil, err
	}

	var out SyndicationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// TestAvailability probes the endpoint with a HEAD request and a short
// timeout. It returns nil when the post is served.
func (c *SyndicationClient) TestAvailability(ctx context.Context, postID string) error {
	endpoint, err := c.endpoint(postID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: probe: %v", domain.ErrFetchFailed, err)
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: syndication status 404", domain.ErrContentUnavailable)
	default:
		return fmt.Errorf("%w: syndication status %d", domain.ErrFetchFailed, resp.StatusCode)
	}
}
