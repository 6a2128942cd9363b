package twitter

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/xclip/internal/domain"
)

// PreferredContentType is the container every client can play directly.
const PreferredContentType = "video/mp4"

// photoQualitySuffix asks the image CDN for the original upload size.
const photoQualitySuffix = "name=4096x4096"

// PhotoURL returns the maximum quality URL for a photo.
func PhotoURL(base string) string {
	if strings.Contains(base, "?") {
		return base + "&" + photoQualitySuffix
	}
	return base + "?" + photoQualitySuffix
}

// SelectQuality picks the asset URL for m according to pref: "best",
// "worst", or a substring matched against variant URLs and bitrates.
func SelectQuality(m domain.MediaDescriptor, pref string) (string, error) {
	if m.Type == domain.MediaTypePhoto {
		return PhotoURL(m.URL), nil
	}

	v, ok := SelectVariant(m.Variants, pref)
	if !ok {
		return "", fmt.Errorf("%w: media %s", domain.ErrNoVideoVariants, m.ID)
	}
	return v.URL, nil
}

// SelectVariant applies the quality preference to a variant list.
func SelectVariant(variants []domain.VideoVariant, pref string) (domain.VideoVariant, bool) {
	if len(variants) == 0 {
		return domain.VideoVariant{}, false
	}

	pool := make([]domain.VideoVariant, 0, len(variants))
	for _, v := range variants {
		if v.ContentType == PreferredContentType {
			pool = append(pool, v)
		}
	}
	if len(pool) == 0 {
		pool = variants
	}

	switch pref {
	case domain.QualityWorst:
		return worstVariant(pool), true
	case domain.QualityBest, "":
		return bestVariant(pool), true
	}

	for _, v := range SortVariantsByBitrate(pool) {
		if strings.Contains(v.URL, pref) {
			return v, true
		}
		if v.Bitrate != nil && strings.Contains(strconv.Itoa(*v.Bitrate), pref) {
			return v, true
		}
	}
	return bestVariant(pool), true
}

func bestVariant(pool []domain.VideoVariant) domain.VideoVariant {
	best := pool[0]
	for _, v := range pool[1:] {
		if v.BitrateOr(0) > best.BitrateOr(0) {
			best = v
		}
	}
	return best
}

func worstVariant(pool []domain.VideoVariant) domain.VideoVariant {
	worst := pool[0]
	for _, v := range pool[1:] {
		if v.BitrateOr(math.MaxInt) < worst.BitrateOr(math.MaxInt) {
			worst = v
		}
	}
	return worst
}

// SortVariantsByBitrate returns a copy ordered by bitrate, highest first.
// Variants without a bitrate sort last.
func SortVariantsByBitrate(variants []domain.VideoVariant) []domain.VideoVariant {
	out := make([]domain.VideoVariant, len(variants))
	copy(out, variants)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BitrateOr(-1) > out[j].BitrateOr(-1)
	})
	return out
}

// FormatBitrate renders bits per second as kbps or Mbps.
func FormatBitrate(bitrate *int) string {
	if bitrate == nil || *bitrate <= 0 {
		return "Unknown"
	}
	kbps := float64(*bitrate) / 1000
	if math.Round(kbps) < 1000 {
		return fmt.Sprintf("%.0f kbps", kbps)
	}
	return fmt.Sprintf("%.1f Mbps", kbps/1000)
}

// EstimateFileSize approximates the download size of a variant from its
// bitrate (bits per second) and the media duration.
func EstimateFileSize(bitrate *int, durationMillis int64) string {
	if bitrate == nil || *bitrate <= 0 || durationMillis <= 0 {
		return "Unknown"
	}
	kbps := float64(*bitrate) / 1000
	seconds := float64(durationMillis) / 1000
	kilobytes := kbps * seconds / 8
	return humanize.Bytes(uint64(kilobytes * 1000))
}
