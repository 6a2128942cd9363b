package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/retry"
)

// AuthMode tags which credential set a request is sent with.
type AuthMode int

const (
	// AuthModeGuest sends the bearer and an anonymous guest token.
	AuthModeGuest AuthMode = iota
	// AuthModeCookie sends a logged-in session cookie and its CSRF token.
	AuthModeCookie
)

func (m AuthMode) String() string {
	if m == AuthModeCookie {
		return "cookie"
	}
	return "guest"
}

// AuthConfig is the credential set for one resolution attempt. It is a
// value; the With* helpers return modified copies.
type AuthConfig struct {
	GuestToken string
	Cookie     string
	CSRFToken  string
	Mode       AuthMode
}

// HasCookie reports whether a session cookie is attached.
func (a AuthConfig) HasCookie() bool {
	return a.Cookie != ""
}

// UsesCookie reports whether requests go out with cookie headers.
func (a AuthConfig) UsesCookie() bool {
	return a.Mode == AuthModeCookie && a.HasCookie()
}

// WithGuestToken returns a copy carrying token.
func (a AuthConfig) WithGuestToken(token string) AuthConfig {
	a.GuestToken = token
	return a
}

// WithoutGuestToken returns a copy with the guest token dropped.
func (a AuthConfig) WithoutGuestToken() AuthConfig {
	a.GuestToken = ""
	return a
}

// WithCSRFToken returns a copy carrying a refreshed CSRF token.
func (a AuthConfig) WithCSRFToken(ct0 string) AuthConfig {
	a.CSRFToken = ct0
	return a
}

// WithMode returns a copy switched to mode.
func (a AuthConfig) WithMode(mode AuthMode) AuthConfig {
	a.Mode = mode
	return a
}

// AuthDecision is the outcome of classifying an upstream auth failure.
type AuthDecision struct {
	ShouldRetry bool
	NewAuth     *AuthConfig
	Err         error
	Reason      string
}

// AuthManager issues and caches guest tokens and classifies auth failures.
type AuthManager struct {
	cfg    Config
	hc     *http.Client
	cache  *GuestTokenCache
	logger *slog.Logger
}

// NewAuthManager creates an AuthManager around an injected cache.
func NewAuthManager(cfg Config, hc *http.Client, cache *GuestTokenCache, logger *slog.Logger) *AuthManager {
	return &AuthManager{
		cfg:    cfg.withDefaults(),
		hc:     hc,
		cache:  cache,
		logger: logger.With("component", "auth"),
	}
}

// Cache exposes the guest token cache.
func (m *AuthManager) Cache() *GuestTokenCache {
	return m.cache
}

// GetGuestToken returns the cached token without touching the network, or
// activates a new one with exponential backoff when the cache is empty,
// expired or forceReload is set.
func (m *AuthManager) GetGuestToken(ctx context.Context, forceReload bool) (string, error) {
	if !forceReload {
		if token, ok := m.cache.Get(); ok {
			return token, nil
		}
	}

	token, err := retry.Do(ctx, m.cfg.TokenRetry, func(attempt int) (string, error) {
		token, err := m.activate(ctx)
		if err != nil {
			m.logger.Warn("guest token activation failed",
				"attempt", attempt+1,
				"max_attempts", m.cfg.TokenRetry.MaxAttempts,
				"error", err,
			)
		}
		return token, err
	})
	if err != nil {
		return "", fmt.Errorf("%w: acquire guest token: %v", domain.ErrFetchFailed, err)
	}

	m.cache.Set(token)
	m.logger.Debug("guest token acquired", "expires_at", m.cache.Expiry())
	return token, nil
}

func (m *AuthManager) activate(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.TokenTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.GuestTokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", m.cfg.UserAgent)
	req.Header.Set("Authorization", "Bearer "+m.cfg.bearer())

	resp, err := m.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newStatusError(resp)
	}

	var body struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if body.GuestToken == "" {
		return "", errors.New("response has no guest_token")
	}
	return body.GuestToken, nil
}

// HandleAuthError decides whether a request that failed with status can be
// retried and with which credentials.
func (m *AuthManager) HandleAuthError(status int, current AuthConfig) AuthDecision {
	switch status {
	case http.StatusUnauthorized:
		if current.Mode == AuthModeGuest && current.GuestToken != "" {
			m.cache.Clear()
			next := current.WithoutGuestToken()
			return AuthDecision{ShouldRetry: true, NewAuth: &next, Reason: "guest token rejected"}
		}
		return AuthDecision{Err: domain.ErrFetchFailed, Reason: "unauthorized"}
	case http.StatusForbidden:
		same := current
		return AuthDecision{ShouldRetry: true, NewAuth: &same, Reason: "transient forbidden"}
	case http.StatusTooManyRequests:
		next := current
		if current.Mode == AuthModeGuest {
			next = current.WithoutGuestToken()
		}
		return AuthDecision{ShouldRetry: true, NewAuth: &next, Reason: "rate limited"}
	default:
		return AuthDecision{Err: domain.ErrFetchFailed, Reason: fmt.Sprintf("status %d", status)}
	}
}

// ClearCache drops the cached guest token.
func (m *AuthManager) ClearCache() {
	m.cache.Clear()
}
