package twitter

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/iconidentify/xclip/internal/domain"
)

// PrimaryDomain is the host every accepted URL is normalized to.
const PrimaryDomain = "x.com"

var postIDPattern = regexp.MustCompile(`^[0-9]{2,20}$`)

// alternateDomains are mirrors and embed-fixers that serve the same post ids.
var alternateDomains = map[string]bool{
	"twitter.com":   true,
	"vxtwitter.com": true,
	"fixvx.com":     true,
	"fxtwitter.com": true,
	"fixupx.com":    true,
	"twittpr.com":   true,
}

var strippedSubdomains = []string{"www.", "mobile.", "m."}

// ValidPostID reports whether id looks like a post snowflake.
func ValidPostID(id string) bool {
	return postIDPattern.MatchString(id)
}

// ParsePostURL extracts the post id and optional media index from a post URL.
// It never touches the network.
func ParsePostURL(raw string) domain.PostRef {
	u, err := parseHTTPURL(raw)
	if err != nil {
		return domain.PostRef{Err: err}
	}

	normalized := normalizedString(u)

	id, fromQuery := u.Query().Get("post_id"), true
	var mediaIndex *int
	if id == "" {
		fromQuery = false
		id, mediaIndex = idFromPath(u.EscapedPath())
	}

	if id == "" {
		return domain.PostRef{
			NormalizedURL: normalized,
			Err:           fmt.Errorf("%w: no post id in %q", domain.ErrInvalidPostID, u.Path),
		}
	}
	if !ValidPostID(id) {
		src := "path"
		if fromQuery {
			src = "post_id"
		}
		return domain.PostRef{
			NormalizedURL: normalized,
			Err:           fmt.Errorf("%w: %s value %q", domain.ErrInvalidPostID, src, id),
		}
	}

	return domain.PostRef{
		PostID:        id,
		MediaIndex:    mediaIndex,
		NormalizedURL: normalized,
		Valid:         true,
	}
}

// NormalizeURL rewrites a post URL onto the primary domain over https,
// keeping only the path and a bookmark-style post_id parameter.
func NormalizeURL(raw string) (string, error) {
	u, err := parseHTTPURL(raw)
	if err != nil {
		return "", err
	}
	return normalizedString(u), nil
}

func parseHTTPURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", domain.ErrInvalidURL)
	}

	if _, ok := canonicalHost(u.Hostname()); !ok {
		return nil, fmt.Errorf("%w: unrecognized host %q", domain.ErrInvalidURL, u.Hostname())
	}
	return u, nil
}

// canonicalHost maps a recognized host to the primary domain.
func canonicalHost(host string) (string, bool) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, sub := range strippedSubdomains {
		if strings.HasPrefix(host, sub) {
			host = strings.TrimPrefix(host, sub)
			break
		}
	}
	if host == PrimaryDomain || alternateDomains[host] {
		return PrimaryDomain, true
	}
	return "", false
}

func normalizedString(u *url.URL) string {
	out := url.URL{
		Scheme:  "https",
		Host:    PrimaryDomain,
		Path:    u.Path,
		RawPath: u.RawPath,
	}
	if postID := u.Query().Get("post_id"); postID != "" {
		out.RawQuery = url.Values{"post_id": {postID}}.Encode()
	}
	return out.String()
}

// idFromPath reads /<user>/status/<id>[/video|photo/<n>] and /i/web/status/<id>.
func idFromPath(escapedPath string) (string, *int) {
	segments := strings.Split(strings.Trim(escapedPath, "/"), "/")
	for i := 1; i < len(segments)-1; i++ {
		if segments[i] != "status" && segments[i] != "statuses" {
			continue
		}
		id := segments[i+1]
		if i+3 < len(segments) {
			kind := segments[i+2]
			if kind == "video" || kind == "photo" {
				if n, err := strconv.Atoi(segments[i+3]); err == nil && n >= 1 {
					idx := n - 1
					return id, &idx
				}
			}
		}
		return id, nil
	}
	return "", nil
}
