package domain

// PostRef is the parsed form of a post URL.
type PostRef struct {
	PostID        string
	MediaIndex    *int // 0-based, from /video/N or /photo/N
	NormalizedURL string
	Valid         bool
	Err           error
}

// Quality preferences understood by the quality selector. Any other
// non-empty string is matched against variant URLs and bitrates.
const (
	QualityBest  = "best"
	QualityWorst = "worst"
)

// ResolveOptions controls how a post is turned into a DownloadPlan.
type ResolveOptions struct {
	Quality     string `json:"quality,omitempty" yaml:"quality"`
	ToGif       bool   `json:"to_gif,omitempty" yaml:"to_gif"`
	AlwaysProxy bool   `json:"always_proxy,omitempty" yaml:"always_proxy"`
	MediaIndex  *int   `json:"media_index,omitempty" yaml:"media_index"`
}
