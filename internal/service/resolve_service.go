package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iconidentify/xclip/internal/config"
	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/pkg/twitter"
)

// ResolveState names a step of a single resolution. States are logged at
// debug level as the pipeline advances.
type ResolveState string

const (
	StateStart          ResolveState = "START"
	StateURLParsed      ResolveState = "URL_PARSED"
	StateAuthAcquired   ResolveState = "AUTH_ACQUIRED"
	StatePrimaryOK      ResolveState = "PRIMARY_OK"
	StatePrimaryFailed  ResolveState = "PRIMARY_FAILED"
	StateSecondaryOK    ResolveState = "SECONDARY_OK"
	StateSecondaryFail  ResolveState = "SECONDARY_FAILED"
	StateMediaExtracted ResolveState = "MEDIA_EXTRACTED"
	StatePlanBuilt      ResolveState = "PLAN_BUILT"
	StateError          ResolveState = "ERROR"
)

// ResolveService turns post URLs into download plans.
type ResolveService struct {
	client *twitter.Client
	creds  *twitter.CredentialStore
	cfg    config.ResolveConfig
	logger *slog.Logger
}

// NewResolveService creates a resolve service. Rotated CSRF tokens seen by
// the GraphQL client are written back to creds.
func NewResolveService(
	client *twitter.Client,
	creds *twitter.CredentialStore,
	cfg config.ResolveConfig,
	logger *slog.Logger,
) *ResolveService {
	if creds == nil {
		creds = twitter.NewCredentialStore("")
	}
	client.GraphQL.OnCSRFRefresh(creds.UpdateCSRF)

	return &ResolveService{
		client: client,
		creds:  creds,
		cfg:    cfg,
		logger: logger.With("component", "resolve"),
	}
}

// Credentials returns the session store used for cookie mode.
func (s *ResolveService) Credentials() *twitter.CredentialStore {
	return s.creds
}

// ResolveMedia resolves rawURL into a DownloadPlan.
func (s *ResolveService) ResolveMedia(ctx context.Context, rawURL string, opts domain.ResolveOptions) (domain.DownloadPlan, error) {
	if opts.Quality == "" {
		opts.Quality = s.cfg.DefaultQuality
	}
	if s.cfg.AlwaysProxy {
		opts.AlwaysProxy = true
	}

	postID, media, log, err := s.fetch(ctx, rawURL, func(ref domain.PostRef) *int {
		if opts.MediaIndex != nil {
			return opts.MediaIndex
		}
		return ref.MediaIndex
	})
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(postID, media, opts)
	if err != nil {
		s.transition(log, StateError, "error", err)
		return nil, domain.NewResolveError(postID, "plan", err)
	}
	s.transition(log, StatePlanBuilt, "plan", plan.Kind())
	return plan, nil
}

// GetMediaInfo summarizes every media item of a post without building a
// plan. A /video/N or /photo/N suffix is ignored.
func (s *ResolveService) GetMediaInfo(ctx context.Context, rawURL string) (*domain.MediaInfo, error) {
	postID, media, err := s.FetchPostMedia(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return domain.NewMediaInfo(postID, media), nil
}

// FetchMedia returns the post id and media descriptors of the post at
// rawURL. A /video/N or /photo/N suffix narrows the result to one item.
func (s *ResolveService) FetchMedia(ctx context.Context, rawURL string) (string, []domain.MediaDescriptor, error) {
	postID, media, _, err := s.fetch(ctx, rawURL, urlMediaIndex)
	return postID, media, err
}

// FetchPostMedia is FetchMedia for the whole post, whatever the URL suffix.
func (s *ResolveService) FetchPostMedia(ctx context.Context, rawURL string) (string, []domain.MediaDescriptor, error) {
	postID, media, _, err := s.fetch(ctx, rawURL, wholePost)
	return postID, media, err
}

// mediaSelector picks the media index to extract for a parsed URL. A nil
// index means every item.
type mediaSelector func(ref domain.PostRef) *int

func urlMediaIndex(ref domain.PostRef) *int { return ref.MediaIndex }

func wholePost(domain.PostRef) *int { return nil }

// Probe checks whether the syndication endpoint knows postID.
func (s *ResolveService) Probe(ctx context.Context, postID string) error {
	if !twitter.ValidPostID(postID) {
		return domain.NewResolveError(postID, "probe", domain.ErrInvalidPostID)
	}
	if err := s.client.Syndication.TestAvailability(ctx, postID); err != nil {
		return domain.NewResolveError(postID, "probe", err)
	}
	return nil
}

// ClearGuestToken drops the cached guest token.
func (s *ResolveService) ClearGuestToken() {
	s.client.Auth.ClearCache()
}

// ClearAuth drops the cached guest token and any stored session.
func (s *ResolveService) ClearAuth() {
	s.client.Auth.ClearCache()
	s.creds.Clear()
	s.logger.Info("authentication state cleared")
}

// fetch runs URL parsing, authentication, the primary and secondary paths
// and extraction. selectIndex chooses which media item, if any, to keep.
func (s *ResolveService) fetch(ctx context.Context, rawURL string, selectIndex mediaSelector) (string, []domain.MediaDescriptor, *slog.Logger, error) {
	log := s.logger.With("url", rawURL)
	s.transition(log, StateStart)

	ref := twitter.ParsePostURL(rawURL)
	if !ref.Valid {
		s.transition(log, StateError, "error", ref.Err)
		return "", nil, log, domain.NewResolveError("", "parse", ref.Err)
	}
	log = log.With("post_id", ref.PostID)
	s.transition(log, StateURLParsed, "normalized", ref.NormalizedURL)

	mediaIndex := selectIndex(ref)

	fail := func(op string, err error) (string, []domain.MediaDescriptor, *slog.Logger, error) {
		s.transition(log, StateError, "op", op, "error", err)
		return "", nil, log, domain.NewResolveError(ref.PostID, op, err)
	}

	auth := s.creds.Apply(twitter.AuthConfig{Mode: twitter.AuthModeGuest})
	token, err := s.client.Auth.GetGuestToken(ctx, false)
	if err != nil {
		return fail("auth", err)
	}
	auth = auth.WithGuestToken(token)
	s.transition(log, StateAuthAcquired, "session", auth.HasCookie())

	var (
		primary   *twitter.TweetResultResponse
		secondary *twitter.SyndicationResponse
	)
	primary, auth, err = s.client.GraphQL.RequestPost(ctx, ref.PostID, auth)
	if err != nil {
		if isContentError(err) || ctx.Err() != nil {
			return fail("graphql", err)
		}
		s.transition(log, StatePrimaryFailed, "error", err)
		log.Warn("primary lookup failed, trying syndication", "error", err)

		secondary, err = s.client.Syndication.RequestSyndication(ctx, ref.PostID)
		if err != nil {
			s.transition(log, StateSecondaryFail, "error", err)
			return fail("syndication", ensureFetchFailed(err))
		}
		s.transition(log, StateSecondaryOK)
	} else {
		s.transition(log, StatePrimaryOK)
	}

	media, err := s.client.Extractor.Extract(ctx, primary, secondary, ref.PostID, auth, mediaIndex)
	if err != nil {
		return fail("extract", err)
	}
	if len(media) == 0 {
		return fail("extract", domain.ErrFetchEmpty)
	}
	s.transition(log, StateMediaExtracted, "count", len(media))
	return ref.PostID, media, log, nil
}

func (s *ResolveService) transition(log *slog.Logger, state ResolveState, args ...any) {
	log.Debug("resolve state", append([]any{"state", state}, args...)...)
}

// isContentError reports errors that describe the post itself. These are
// final and never fall back to syndication.
func isContentError(err error) bool {
	return errors.Is(err, domain.ErrContentPrivate) ||
		errors.Is(err, domain.ErrContentAgeRestricted) ||
		errors.Is(err, domain.ErrContentUnavailable) ||
		errors.Is(err, domain.ErrInvalidPostID)
}

func ensureFetchFailed(err error) error {
	if errors.Is(err, domain.ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
}
