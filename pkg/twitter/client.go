package twitter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/iconidentify/xclip/internal/retry"
)

// Public web-client bearer token (URL-encoded, as shipped in the web bundle).
const bearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

const (
	defaultGraphQLURL     = "https://api.x.com/graphql/I9GDzyCGZL2wSoYFFrrTVw/TweetResultByRestId"
	defaultGuestTokenURL  = "https://api.x.com/1.1/guest/activate.json"
	defaultSyndicationURL = "https://cdn.syndication.twimg.com/tweet-result"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config configures the upstream clients.
type Config struct {
	BearerToken    string
	GraphQLURL     string
	GuestTokenURL  string
	SyndicationURL string
	UserAgent      string
	ProxyURL       string

	RequestTimeout     time.Duration
	TokenTimeout       time.Duration
	SyndicationTimeout time.Duration
	ProbeTimeout       time.Duration
	GuestTokenTTL      time.Duration

	TokenRetry       retry.Policy
	APIRetry         retry.Policy
	SyndicationRetry retry.Policy
}

// DefaultConfig returns the production endpoints and timings.
func DefaultConfig() Config {
	return Config{
		BearerToken:        bearerToken,
		GraphQLURL:         defaultGraphQLURL,
		GuestTokenURL:      defaultGuestTokenURL,
		SyndicationURL:     defaultSyndicationURL,
		UserAgent:          defaultUserAgent,
		RequestTimeout:     20 * time.Second,
		TokenTimeout:       10 * time.Second,
		SyndicationTimeout: 15 * time.Second,
		ProbeTimeout:       5 * time.Second,
		GuestTokenTTL:      DefaultGuestTokenTTL,
		TokenRetry:         retry.Policy{MaxAttempts: 3, InitialDelay: time.Second, Multiplier: 2},
		APIRetry:           retry.Policy{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second, Multiplier: 2},
		SyndicationRetry:   retry.Policy{MaxAttempts: 3, InitialDelay: time.Second, Multiplier: 2},
	}
}

// withDefaults fills every zero field from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BearerToken == "" {
		c.BearerToken = d.BearerToken
	}
	if c.GraphQLURL == "" {
		c.GraphQLURL = d.GraphQLURL
	}
	if c.GuestTokenURL == "" {
		c.GuestTokenURL = d.GuestTokenURL
	}
	if c.SyndicationURL == "" {
		c.SyndicationURL = d.SyndicationURL
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.TokenTimeout <= 0 {
		c.TokenTimeout = d.TokenTimeout
	}
	if c.SyndicationTimeout <= 0 {
		c.SyndicationTimeout = d.SyndicationTimeout
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = d.ProbeTimeout
	}
	if c.GuestTokenTTL <= 0 {
		c.GuestTokenTTL = d.GuestTokenTTL
	}
	if c.TokenRetry.MaxAttempts <= 0 {
		c.TokenRetry = d.TokenRetry
	}
	if c.APIRetry.MaxAttempts <= 0 {
		c.APIRetry = d.APIRetry
	}
	if c.SyndicationRetry.MaxAttempts <= 0 {
		c.SyndicationRetry = d.SyndicationRetry
	}
	return c
}

// bearer returns the decoded bearer token.
func (c Config) bearer() string {
	if decoded, err := url.QueryUnescape(c.BearerToken); err == nil {
		return decoded
	}
	return c.BearerToken
}

// Client bundles the pipeline components that talk to X.
type Client struct {
	Auth        *AuthManager
	GraphQL     *GraphQLClient
	Syndication *SyndicationClient
	Extractor   *Extractor

	cfg Config
}

// NewClient wires the auth manager, both API clients and the extractor
// around one HTTP client. The guest token cache is owned by the caller.
func NewClient(cfg Config, cache *GuestTokenCache, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if cache == nil {
		cache = NewGuestTokenCache(cfg.GuestTokenTTL)
	}
	hc := NewHTTPClient(cfg.ProxyURL, logger)

	auth := NewAuthManager(cfg, hc, cache, logger)
	gql := NewGraphQLClient(cfg, hc, auth, logger)
	return &Client{
		Auth:        auth,
		GraphQL:     gql,
		Syndication: NewSyndicationClient(cfg, hc, logger),
		Extractor:   NewExtractor(gql, logger),
		cfg:         cfg,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// NewHTTPClient builds the shared HTTP client. Timeouts are applied per
// request through contexts. proxyURL may be http(s):// or socks5://; a bad
// proxy is logged and ignored.
func NewHTTPClient(proxyURL string, logger *slog.Logger) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}

	if proxyURL != "" {
		if err := configureProxy(transport, proxyURL); err != nil {
			logger.Warn("failed to configure proxy, continuing without it",
				"proxy", proxyURL,
				"error", err,
			)
		}
	}

	return &http.Client{Transport: transport}
}

func configureProxy(transport *http.Transport, proxyURL string) error {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch parsed.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsed)
	case "socks5":
		var auth *proxy.Auth
		if parsed.User != nil {
			pass, _ := parsed.User.Password()
			auth = &proxy.Auth{User: parsed.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("create SOCKS5 dialer: %w", err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", parsed.Scheme)
	}
	return nil
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// checkJSONResponse rejects responses that cannot carry a JSON document:
// an empty body or a non-JSON content type.
func checkJSONResponse(resp *http.Response) error {
	streamed := resp.Uncompressed || len(resp.TransferEncoding) > 0
	if resp.ContentLength == 0 || (resp.ContentLength < 0 && !streamed) {
		return fmt.Errorf("empty response body")
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("unexpected content type %q", ct)
	}
	return nil
}
