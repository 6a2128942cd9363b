package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iconidentify/xclip/internal/domain"
)

// Extractor turns API responses into validated media descriptors.
type Extractor struct {
	primary PostRequester
	logger  *slog.Logger
}

// NewExtractor creates an Extractor. primary is used to re-request
// age-restricted posts with a session cookie.
func NewExtractor(primary PostRequester, logger *slog.Logger) *Extractor {
	return &Extractor{
		primary: primary,
		logger:  logger.With("component", "extractor"),
	}
}

// Extract walks whichever response is present into descriptors. The GraphQL
// response wins when both are given. A nil slice with a nil error means the
// post had no usable media, or mediaIndex was out of range.
func (e *Extractor) Extract(
	ctx context.Context,
	primary *TweetResultResponse,
	secondary *SyndicationResponse,
	postID string,
	auth AuthConfig,
	mediaIndex *int,
) ([]domain.MediaDescriptor, error) {
	var entities []MediaEntity
	switch {
	case primary != nil:
		ents, err := e.fromPrimary(ctx, primary, postID, auth)
		if err != nil {
			return nil, err
		}
		entities = ents
	case secondary != nil:
		entities = secondary.MediaDetails
	default:
		return nil, fmt.Errorf("%w: no response to extract from", domain.ErrFetchEmpty)
	}

	media := Descriptors(entities)
	if len(media) == 0 {
		return nil, nil
	}

	if mediaIndex != nil {
		i := *mediaIndex
		if i < 0 || i >= len(media) {
			e.logger.Debug("media index out of range",
				"post_id", postID,
				"index", i,
				"count", len(media),
			)
			return nil, nil
		}
		return media[i : i+1], nil
	}
	return media, nil
}

// fromPrimary resolves the GraphQL result union. An NsfwLoggedOut post is
// re-requested once in cookie mode when a session is attached.
func (e *Extractor) fromPrimary(ctx context.Context, resp *TweetResultResponse, postID string, auth AuthConfig) ([]MediaEntity, error) {
	cookieRetried := false

	for {
		result := resp.Result()
		if result == nil || result.TypeName == "" {
			return nil, fmt.Errorf("%w: result has no type", domain.ErrFetchEmpty)
		}

		switch result.TypeName {
		case TypeTweet, TypeTweetWithVisibilityResults:
			return postMedia(result), nil

		case TypeTweetUnavailable:
			switch result.Reason {
			case ReasonProtected:
				return nil, domain.ErrContentPrivate
			case ReasonNsfwLoggedOut:
				if !auth.HasCookie() || cookieRetried {
					return nil, domain.ErrContentAgeRestricted
				}
				cookieRetried = true
				e.logger.Debug("retrying age restricted post with session cookie", "post_id", postID)

				next, nextAuth, err := e.primary.RequestPost(ctx, postID, auth.WithMode(AuthModeCookie))
				if err != nil {
					return nil, err
				}
				resp, auth = next, nextAuth
				continue
			default:
				return nil, fmt.Errorf("%w: %s", domain.ErrContentUnavailable, result.Reason)
			}

		default:
			return nil, fmt.Errorf("%w: result type %s", domain.ErrContentUnavailable, result.TypeName)
		}
	}
}

// unwrapVisibility returns the inner post of a TweetWithVisibilityResults.
func unwrapVisibility(r *TweetResult) *TweetResult {
	if r != nil && r.TypeName == TypeTweetWithVisibilityResults && r.Tweet != nil {
		return r.Tweet
	}
	return r
}

// postMedia picks card media first, then reposted media, then the post's own.
func postMedia(result *TweetResult) []MediaEntity {
	post := unwrapVisibility(result)

	card := post.Card
	if card == nil {
		card = result.Card
	}
	if m := cardMedia(card); m != nil {
		return []MediaEntity{*m}
	}

	if rt := unwrapVisibility(post.Legacy.Retweeted()); rt != nil {
		if media := rt.Legacy.Media(); len(media) > 0 {
			return media
		}
	}
	return post.Legacy.Media()
}

// Descriptors converts entities and drops the invalid ones.
func Descriptors(entities []MediaEntity) []domain.MediaDescriptor {
	out := make([]domain.MediaDescriptor, 0, len(entities))
	for _, ent := range entities {
		d := toDescriptor(ent)
		if d.Valid() {
			out = append(out, d)
		}
	}
	return out
}

func toDescriptor(m MediaEntity) domain.MediaDescriptor {
	id := m.IDStr
	if id == "" {
		id = mediaKeyID(m.MediaKey)
	}

	d := domain.MediaDescriptor{
		ID:               id,
		Type:             domain.MediaType(m.Type),
		URL:              m.MediaURLHTTPS,
		RepresentativeID: m.SourceStatusIDStr,
		AltText:          m.ExtAltText,
	}
	if m.OriginalInfo != nil {
		d.Width = m.OriginalInfo.Width
		d.Height = m.OriginalInfo.Height
	}
	if m.VideoInfo != nil {
		d.HasVideoInfo = true
		d.DurationMillis = m.VideoInfo.DurationMillis
		d.Variants = make([]domain.VideoVariant, 0, len(m.VideoInfo.Variants))
		for _, v := range m.VideoInfo.Variants {
			d.Variants = append(d.Variants, domain.VideoVariant{
				Bitrate:     v.Bitrate,
				ContentType: v.ContentType,
				URL:         v.URL,
			})
		}
	}
	return d
}

// mediaKeyID returns the numeric part of a media key like "7_1234567890".
func mediaKeyID(key string) string {
	_, id, ok := strings.Cut(key, "_")
	if !ok || !ValidPostID(id) {
		return ""
	}
	return id
}
