package service

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/pkg/twitter"
)

const defaultExtension = "mp4"

// BuildPlan turns extracted media into a download plan. A single item
// becomes a proxy or remux plan; several items become a picker.
func BuildPlan(postID string, media []domain.MediaDescriptor, opts domain.ResolveOptions) (domain.DownloadPlan, error) {
	switch len(media) {
	case 0:
		return nil, domain.ErrFetchEmpty
	case 1:
		return singlePlan(postID, media[0], opts)
	}

	items := make([]domain.PickerItem, 0, len(media))
	for i, m := range media {
		item, err := pickerItem(postID, i+1, m, opts)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &domain.PickerPlan{Items: items}, nil
}

func singlePlan(postID string, m domain.MediaDescriptor, opts domain.ResolveOptions) (domain.DownloadPlan, error) {
	u, err := twitter.SelectQuality(m, opts.Quality)
	if err != nil {
		return nil, err
	}

	if m.Type == domain.MediaTypePhoto {
		return &domain.ProxyPlan{
			URL:      u,
			Filename: mediaFilename(postID, 0, fileExtension(m.URL)),
			IsPhoto:  true,
		}, nil
	}

	renderGif := m.Type == domain.MediaTypeGIF && opts.ToGif
	if twitter.NeedsContainerFix(m) || renderGif {
		ext := fileExtension(u)
		if renderGif {
			ext = "gif"
		}
		return &domain.RemuxPlan{
			URL:           u,
			Filename:      mediaFilename(postID, 0, ext),
			AudioFilename: fmt.Sprintf("twitter_%s_audio", postID),
			IsGif:         renderGif,
		}, nil
	}

	return &domain.ProxyPlan{
		URL:      u,
		Filename: mediaFilename(postID, 0, fileExtension(u)),
	}, nil
}

// pickerItem builds the n-th (1-based) entry of a picker.
func pickerItem(postID string, n int, m domain.MediaDescriptor, opts domain.ResolveOptions) (domain.PickerItem, error) {
	u, err := twitter.SelectQuality(m, opts.Quality)
	if err != nil {
		return domain.PickerItem{}, err
	}

	if m.Type == domain.MediaTypePhoto {
		action := domain.ActionDirect
		if opts.AlwaysProxy {
			action = domain.ActionProxy
		}
		return domain.PickerItem{
			Type:     domain.PickerPhoto,
			URL:      u,
			Thumb:    u,
			Filename: mediaFilename(postID, n, fileExtension(m.URL)),
			Action:   action,
		}, nil
	}

	renderGif := m.Type == domain.MediaTypeGIF && opts.ToGif
	item := domain.PickerItem{
		Type:     domain.PickerVideo,
		URL:      u,
		Thumb:    m.URL,
		Filename: mediaFilename(postID, n, defaultExtension),
		Action:   domain.ActionDirect,
	}
	switch {
	case renderGif:
		item.Type = domain.PickerGif
		item.Filename = mediaFilename(postID, n, "gif")
		item.Action = domain.ActionGif
	case twitter.NeedsContainerFix(m):
		item.Action = domain.ActionRemux
	case opts.AlwaysProxy:
		item.Action = domain.ActionProxy
	}
	return item, nil
}

// mediaFilename returns twitter_<id>.<ext>, or twitter_<id>_<n>.<ext> for n > 0.
func mediaFilename(postID string, n int, ext string) string {
	if n > 0 {
		return fmt.Sprintf("twitter_%s_%d.%s", postID, n, ext)
	}
	return fmt.Sprintf("twitter_%s.%s", postID, ext)
}

// fileExtension reads the extension from the path of rawURL, ignoring the query.
func fileExtension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" {
		return defaultExtension
	}
	return strings.ToLower(ext)
}
