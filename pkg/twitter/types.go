package twitter

// TweetResultResponse is the TweetResultByRestId GraphQL payload.
type TweetResultResponse struct {
	Data struct {
		TweetResult struct {
			Result *TweetResult `json:"result"`
		} `json:"tweetResult"`
	} `json:"data"`
}

// Result returns the top-level result, or nil.
func (r *TweetResultResponse) Result() *TweetResult {
	if r == nil {
		return nil
	}
	return r.Data.TweetResult.Result
}

// Result type names.
const (
	TypeTweet                      = "Tweet"
	TypeTweetWithVisibilityResults = "TweetWithVisibilityResults"
	TypeTweetUnavailable           = "TweetUnavailable"
)

// Unavailable reasons.
const (
	ReasonProtected     = "Protected"
	ReasonNsfwLoggedOut = "NsfwLoggedOut"
)

// TweetResult is one node of the GraphQL result union.
type TweetResult struct {
	TypeName string       `json:"__typename"`
	Reason   string       `json:"reason,omitempty"`
	RestID   string       `json:"rest_id,omitempty"`
	Legacy   *TweetLegacy `json:"legacy,omitempty"`
	Card     *Card        `json:"card,omitempty"`

	// Tweet is set for TweetWithVisibilityResults.
	Tweet *TweetResult `json:"tweet,omitempty"`
}

// TweetLegacy is the v1.1-shaped post body embedded in GraphQL results.
type TweetLegacy struct {
	IDStr            string `json:"id_str"`
	ExtendedEntities *struct {
		Media []MediaEntity `json:"media"`
	} `json:"extended_entities,omitempty"`
	RetweetedStatusResult *struct {
		Result *TweetResult `json:"result"`
	} `json:"retweeted_status_result,omitempty"`
}

// Media returns the post's own media entities.
func (l *TweetLegacy) Media() []MediaEntity {
	if l == nil || l.ExtendedEntities == nil {
		return nil
	}
	return l.ExtendedEntities.Media
}

// Retweeted returns the reposted post, or nil.
func (l *TweetLegacy) Retweeted() *TweetResult {
	if l == nil || l.RetweetedStatusResult == nil {
		return nil
	}
	return l.RetweetedStatusResult.Result
}

// MediaEntity is a media object as both APIs return it.
type MediaEntity struct {
	IDStr             string     `json:"id_str"`
	MediaKey          string     `json:"media_key,omitempty"`
	Type              string     `json:"type"`
	MediaURLHTTPS     string     `json:"media_url_https"`
	SourceStatusIDStr string     `json:"source_status_id_str,omitempty"`
	ExtAltText        string     `json:"ext_alt_text,omitempty"`
	OriginalInfo      *MediaSize `json:"original_info,omitempty"`
	VideoInfo         *VideoInfo `json:"video_info,omitempty"`
}

// MediaSize is the uploaded resolution.
type MediaSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// VideoInfo carries the encoded renditions of a video or gif.
type VideoInfo struct {
	DurationMillis int64           `json:"duration_millis,omitempty"`
	Variants       []VariantEntity `json:"variants"`
}

// VariantEntity is one rendition in a VideoInfo.
type VariantEntity struct {
	Bitrate     *int   `json:"bitrate,omitempty"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// Card is a link-preview attachment.
type Card struct {
	Legacy *struct {
		Name          string         `json:"name,omitempty"`
		BindingValues []BindingValue `json:"binding_values"`
	} `json:"legacy,omitempty"`
}

// BindingValue is one key of a card's binding map.
type BindingValue struct {
	Key   string `json:"key"`
	Value struct {
		StringValue string `json:"string_value,omitempty"`
		Type        string `json:"type,omitempty"`
	} `json:"value"`
}

// SyndicationResponse is the reduced post view served by the syndication CDN.
type SyndicationResponse struct {
	TypeName     string        `json:"__typename,omitempty"`
	IDStr        string        `json:"id_str"`
	MediaDetails []MediaEntity `json:"mediaDetails"`
}
