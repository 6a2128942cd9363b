package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/retry"
)

const tweetResultFeatures = `{"creator_subscriptions_tweet_preview_api_enabled":true,"communities_web_enable_tweet_community_results_fetch":true,"c9s_tweet_anatomy_moderator_badge_enabled":true,"articles_preview_enabled":true,"tweetypie_unmention_optimization_enabled":true,"responsive_web_edit_tweet_api_enabled":true,"graphql_is_translatable_rweb_tweet_is_translatable_enabled":true,"view_counts_everywhere_api_enabled":true,"longform_notetweets_consumption_enabled":true,"responsive_web_twitter_article_tweet_consumption_enabled":true,"tweet_awards_web_tipping_enabled":false,"creator_subscriptions_quote_tweet_preview_enabled":false,"freedom_of_speech_not_reach_fetch_enabled":true,"standardized_nudges_misinfo":true,"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled":true,"rweb_video_timestamps_enabled":true,"longform_notetweets_rich_text_read_enabled":true,"longform_notetweets_inline_media_enabled":true,"rweb_tipjar_consumption_enabled":true,"responsive_web_graphql_exclude_directive_enabled":true,"verified_phone_label_enabled":false,"responsive_web_graphql_skip_user_profile_image_extensions_enabled":false,"responsive_web_graphql_timeline_navigation_enabled":true,"responsive_web_enhance_cards_enabled":false}`

const tweetResultFieldToggles = `{"withArticleRichContentState":true,"withArticlePlainText":false,"withGrokAnalyze":false}`

// PostRequester fetches a post from the GraphQL API.
type PostRequester interface {
	RequestPost(ctx context.Context, postID string, auth AuthConfig) (*TweetResultResponse, AuthConfig, error)
}

// GraphQLClient queries TweetResultByRestId.
type GraphQLClient struct {
	cfg    Config
	hc     *http.Client
	auth   *AuthManager
	logger *slog.Logger

	mu        sync.RWMutex
	onCSRFNew func(ct0 string)
}

// NewGraphQLClient creates a GraphQLClient.
func NewGraphQLClient(cfg Config, hc *http.Client, auth *AuthManager, logger *slog.Logger) *GraphQLClient {
	return &GraphQLClient{
		cfg:    cfg.withDefaults(),
		hc:     hc,
		auth:   auth,
		logger: logger.With("component", "graphql"),
	}
}

// OnCSRFRefresh registers fn to be called when the upstream rotates ct0.
func (c *GraphQLClient) OnCSRFRefresh(fn func(ct0 string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCSRFNew = fn
}

// RequestPost fetches postID with auth, switching credentials as the auth
// manager directs on 401/403/429. It returns the credentials that were
// last used so follow-up calls in the same resolution can reuse them.
func (c *GraphQLClient) RequestPost(ctx context.Context, postID string, auth AuthConfig) (*TweetResultResponse, AuthConfig, error) {
	if !ValidPostID(postID) {
		return nil, auth, fmt.Errorf("%w: %q", domain.ErrInvalidPostID, postID)
	}

	policy := c.cfg.APIRetry
	freshToken := false
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := retry.Wait(ctx, policy.Delay(attempt-1)); err != nil {
				return nil, auth, err
			}
		}

		if !auth.UsesCookie() && auth.GuestToken == "" {
			token, err := c.auth.GetGuestToken(ctx, freshToken)
			if err != nil {
				return nil, auth, err
			}
			auth = auth.WithGuestToken(token)
			freshToken = false
		}

		resp, ct0, err := c.fetch(ctx, postID, auth)
		if err == nil {
			return resp, auth, nil
		}
		lastErr = err

		var se *StatusError
		if !errors.As(err, &se) {
			c.logger.Warn("graphql request failed",
				"post_id", postID,
				"attempt", attempt+1,
				"mode", auth.Mode.String(),
				"error", err,
			)
			continue
		}

		decision := c.auth.HandleAuthError(se.StatusCode, auth)
		c.logger.Warn("graphql request rejected",
			"post_id", postID,
			"attempt", attempt+1,
			"status", se.StatusCode,
			"mode", auth.Mode.String(),
			"retry", decision.ShouldRetry,
			"reason", decision.Reason,
		)
		if !decision.ShouldRetry {
			return nil, auth, fmt.Errorf("%w: graphql: %v", decision.Err, err)
		}

		next := *decision.NewAuth
		if auth.GuestToken != "" && next.GuestToken == "" {
			freshToken = true
		}
		if se.StatusCode == http.StatusForbidden && next.UsesCookie() && ct0 != "" && ct0 != next.CSRFToken {
			next = next.WithCSRFToken(ct0)
			next.Cookie = replaceCookieValue(next.Cookie, "ct0", ct0)
			c.notifyCSRF(ct0)
		}
		auth = next
	}

	return nil, auth, fmt.Errorf("%w: graphql: %v", domain.ErrFetchFailed, lastErr)
}

func (c *GraphQLClient) notifyCSRF(ct0 string) {
	c.mu.RLock()
	fn := c.onCSRFNew
	c.mu.RUnlock()
	if fn != nil {
		fn(ct0)
	}
}

func (c *GraphQLClient) endpoint(postID string) (string, error) {
	u, err := url.Parse(c.cfg.GraphQLURL)
	if err != nil {
		return "", fmt.Errorf("graphql url: %w", err)
	}
	variables, err := json.Marshal(map[string]any{
		"tweetId":                postID,
		"withCommunity":          false,
		"includePromotedContent": false,
		"withVoice":              false,
	})
	if err != nil {
		return "", fmt.Errorf("encode variables: %w", err)
	}

	q := u.Query()
	q.Set("variables", string(variables))
	q.Set("features", tweetResultFeatures)
	q.Set("fieldToggles", tweetResultFieldToggles)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetch performs one request. On failure it also returns any ct0 the
// server set so a cookie session can follow the rotation.
func (c *GraphQLClient) fetch(ctx context.Context, postID string, auth AuthConfig) (*TweetResultResponse, string, error) {
	endpoint, err := c.endpoint(postID)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, auth)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ct0 string
		for _, ck := range resp.Cookies() {
			if ck.Name == "ct0" {
				ct0 = ck.Value
			}
		}
		return nil, ct0, newStatusError(resp)
	}
	if err := checkJSONResponse(resp); err != nil {
		return nil, "", err
	}

	var out TweetResultResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("decode response: %w", err)
	}
	return &out, "", nil
}

func (c *GraphQLClient) setHeaders(req *http.Request, auth AuthConfig) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Authorization", "Bearer "+c.cfg.bearer())
	req.Header.Set("x-twitter-client-language", "en")
	req.Header.Set("x-twitter-active-user", "yes")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("Content-Type", "application/json")

	if auth.UsesCookie() {
		req.Header.Set("X-Twitter-Auth-Type", "OAuth2Session")
		req.Header.Set("x-csrf-token", auth.CSRFToken)
		req.Header.Set("Cookie", auth.Cookie)
		return
	}
	req.Header.Set("x-guest-token", auth.GuestToken)
	req.Header.Set("Cookie", "guest_id="+url.QueryEscape("v1:"+auth.GuestToken))
}

// replaceCookieValue sets name=value in a Cookie header string, appending
// the pair when it is missing.
func replaceCookieValue(cookie, name, value string) string {
	parts := strings.Split(cookie, ";")
	found := false
	for i, p := range parts {
		k, _, ok := strings.Cut(strings.TrimSpace(p), "=")
		if ok && k == name {
			parts[i] = name + "=" + value
			found = true
		}
		parts[i] = strings.TrimSpace(parts[i])
	}
	if !found {
		parts = append(parts, name+"="+value)
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "; ")
}
