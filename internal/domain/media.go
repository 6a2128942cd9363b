package domain

// MediaType represents the type of media attached to a post.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
	MediaTypeGIF   MediaType = "animated_gif"
)

// Valid reports whether t is one of the recognized media types.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypePhoto, MediaTypeVideo, MediaTypeGIF:
		return true
	}
	return false
}

// IsVideo returns true for media that carries video variants.
func (t MediaType) IsVideo() bool {
	return t == MediaTypeVideo || t == MediaTypeGIF
}

// VideoVariant is one encoded rendition of a video.
type VideoVariant struct {
	Bitrate     *int   `json:"bitrate,omitempty"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// BitrateOr returns the bitrate, or def when it is missing.
func (v VideoVariant) BitrateOr(def int) int {
	if v.Bitrate == nil {
		return def
	}
	return *v.Bitrate
}

// MediaDescriptor is the normalized form of one photo, video or gif in a post.
type MediaDescriptor struct {
	ID               string         `json:"id"`
	Type             MediaType      `json:"type"`
	URL              string         `json:"url"`
	Variants         []VideoVariant `json:"variants,omitempty"`
	RepresentativeID string         `json:"representative_id,omitempty"`
	DurationMillis   int64          `json:"duration_millis,omitempty"`
	Width            int            `json:"width,omitempty"`
	Height           int            `json:"height,omitempty"`
	AltText          string         `json:"alt_text,omitempty"`
	HasVideoInfo     bool           `json:"-"`
}

// Valid checks the descriptor invariants.
func (m MediaDescriptor) Valid() bool {
	if m.ID == "" || m.URL == "" || !m.Type.Valid() {
		return false
	}
	if m.Type.IsVideo() && !m.HasVideoInfo && len(m.Variants) == 0 {
		return false
	}
	return true
}

// SnowflakeID returns the id used to date the media.
func (m MediaDescriptor) SnowflakeID() string {
	if m.RepresentativeID != "" {
		return m.RepresentativeID
	}
	return m.ID
}

// MediaInfo summarizes a post's media for pre-flight display.
type MediaInfo struct {
	PostID     string      `json:"post_id"`
	MediaCount int         `json:"media_count"`
	MediaTypes []MediaType `json:"media_types"`
	HasVideo   bool        `json:"has_video"`
	HasPhoto   bool        `json:"has_photo"`
	HasGif     bool        `json:"has_gif"`
}

// NewMediaInfo builds a MediaInfo from extracted descriptors.
func NewMediaInfo(postID string, media []MediaDescriptor) *MediaInfo {
	info := &MediaInfo{
		PostID:     postID,
		MediaCount: len(media),
		MediaTypes: make([]MediaType, 0, len(media)),
	}
	for _, m := range media {
		info.MediaTypes = append(info.MediaTypes, m.Type)
		switch m.Type {
		case MediaTypePhoto:
			info.HasPhoto = true
		case MediaTypeVideo:
			info.HasVideo = true
		case MediaTypeGIF:
			info.HasGif = true
		}
	}
	return info
}
