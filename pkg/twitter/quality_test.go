package twitter

import (
	"errors"
	"testing"

	"github.com/iconidentify/xclip/internal/domain"
)

func mixedVariants() []domain.VideoVariant {
	return []domain.VideoVariant{
		{Bitrate: intPtr(100), ContentType: "video/mp4", URL: "https://video.twimg.com/v/100/low.mp4"},
		{Bitrate: intPtr(500), ContentType: "video/mp4", URL: "https://video.twimg.com/v/500/mid.mp4"},
		{Bitrate: intPtr(900), ContentType: "application/x-mpegURL", URL: "https://video.twimg.com/v/pl.m3u8"},
	}
}

func videoDescriptor(variants []domain.VideoVariant) domain.MediaDescriptor {
	return domain.MediaDescriptor{ID: "1", Type: domain.MediaTypeVideo, URL: "https://pbs.twimg.com/thumb.jpg", Variants: variants, HasVideoInfo: true}
}

func TestSelectQuality_BestIgnoresNonMP4(t *testing.T) {
	got, err := SelectQuality(videoDescriptor(mixedVariants()), domain.QualityBest)
	if err != nil {
		t.Fatalf("SelectQuality: %v", err)
	}
	if got != "https://video.twimg.com/v/500/mid.mp4" {
		t.Errorf("best = %q, want the 500 mp4", got)
	}
}

func TestSelectQuality_Worst(t *testing.T) {
	got, err := SelectQuality(videoDescriptor(mixedVariants()), domain.QualityWorst)
	if err != nil {
		t.Fatalf("SelectQuality: %v", err)
	}
	if got != "https://video.twimg.com/v/100/low.mp4" {
		t.Errorf("worst = %q, want the 100 mp4", got)
	}
}

func TestSelectQuality_MissingBitrates(t *testing.T) {
	variants := []domain.VideoVariant{
		{ContentType: "video/mp4", URL: "nobitrate.mp4"},
		{Bitrate: intPtr(300), ContentType: "video/mp4", URL: "300.mp4"},
	}

	best, _ := SelectQuality(videoDescriptor(variants), domain.QualityBest)
	if best != "300.mp4" {
		t.Errorf("best = %q, want 300.mp4", best)
	}
	worst, _ := SelectQuality(videoDescriptor(variants), domain.QualityWorst)
	if worst != "300.mp4" {
		t.Errorf("worst = %q, a missing bitrate must never win", worst)
	}
}

func TestSelectQuality_NoMP4FallsBackToAll(t *testing.T) {
	variants := []domain.VideoVariant{
		{Bitrate: intPtr(200), ContentType: "video/webm", URL: "200.webm"},
		{Bitrate: intPtr(800), ContentType: "application/x-mpegURL", URL: "800.m3u8"},
	}

	best, _ := SelectQuality(videoDescriptor(variants), domain.QualityBest)
	if best != "800.m3u8" {
		t.Errorf("best = %q, want 800.m3u8", best)
	}
	worst, _ := SelectQuality(videoDescriptor(variants), domain.QualityWorst)
	if worst != "200.webm" {
		t.Errorf("worst = %q, want 200.webm", worst)
	}
}

func TestSelectQuality_SubstringPreference(t *testing.T) {
	variants := []domain.VideoVariant{
		{Bitrate: intPtr(256000), ContentType: "video/mp4", URL: "https://video.twimg.com/vid/480x270/a.mp4"},
		{Bitrate: intPtr(2176000), ContentType: "video/mp4", URL: "https://video.twimg.com/vid/1280x720/b.mp4"},
		{Bitrate: intPtr(832000), ContentType: "video/mp4", URL: "https://video.twimg.com/vid/640x360/c.mp4"},
	}

	tests := []struct {
		pref string
		want string
	}{
		{"640x360", "https://video.twimg.com/vid/640x360/c.mp4"},
		{"256000", "https://video.twimg.com/vid/480x270/a.mp4"},
		{"a.mp4", "https://video.twimg.com/vid/480x270/a.mp4"},
		{"4k", "https://video.twimg.com/vid/1280x720/b.mp4"},
		{"", "https://video.twimg.com/vid/1280x720/b.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.pref, func(t *testing.T) {
			got, err := SelectQuality(videoDescriptor(variants), tt.pref)
			if err != nil {
				t.Fatalf("SelectQuality: %v", err)
			}
			if got != tt.want {
				t.Errorf("SelectQuality(%q) = %q, want %q", tt.pref, got, tt.want)
			}
		})
	}
}

func TestSelectQuality_Photo(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://pbs.twimg.com/media/AAA.jpg", "https://pbs.twimg.com/media/AAA.jpg?name=4096x4096"},
		{"https://pbs.twimg.com/media/AAA?format=jpg", "https://pbs.twimg.com/media/AAA?format=jpg&name=4096x4096"},
	}
	for _, tt := range tests {
		m := domain.MediaDescriptor{ID: "1", Type: domain.MediaTypePhoto, URL: tt.url}
		got, err := SelectQuality(m, domain.QualityWorst)
		if err != nil {
			t.Fatalf("SelectQuality: %v", err)
		}
		if got != tt.want {
			t.Errorf("photo url = %q, want %q", got, tt.want)
		}
	}
}

func TestSelectQuality_NoVariants(t *testing.T) {
	_, err := SelectQuality(videoDescriptor(nil), domain.QualityBest)
	if !errors.Is(err, domain.ErrNoVideoVariants) {
		t.Errorf("err = %v, want ErrNoVideoVariants", err)
	}
}

func TestSortVariantsByBitrate(t *testing.T) {
	in := mixedVariants()
	in = append(in, domain.VideoVariant{ContentType: "video/mp4", URL: "none.mp4"})

	got := SortVariantsByBitrate(in)
	wantOrder := []string{
		"https://video.twimg.com/v/pl.m3u8",
		"https://video.twimg.com/v/500/mid.mp4",
		"https://video.twimg.com/v/100/low.mp4",
		"none.mp4",
	}
	for i, w := range wantOrder {
		if got[i].URL != w {
			t.Errorf("sorted[%d] = %q, want %q", i, got[i].URL, w)
		}
	}
	if in[0].URL != "https://video.twimg.com/v/100/low.mp4" {
		t.Error("SortVariantsByBitrate must not reorder its input")
	}
}

func TestFormatBitrate(t *testing.T) {
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "Unknown"},
		{intPtr(0), "Unknown"},
		{intPtr(632000), "632 kbps"},
		{intPtr(999000), "999 kbps"},
		{intPtr(999499), "999 kbps"},
		{intPtr(999500), "1.0 Mbps"},
		{intPtr(2176000), "2.2 Mbps"},
		{intPtr(10368000), "10.4 Mbps"},
	}
	for _, tt := range tests {
		if got := FormatBitrate(tt.in); got != tt.want {
			t.Errorf("FormatBitrate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEstimateFileSize(t *testing.T) {
	tests := []struct {
		name     string
		bitrate  *int
		duration int64
		want     string
	}{
		{"missing bitrate", nil, 10000, "Unknown"},
		{"missing duration", intPtr(800000), 0, "Unknown"},
		{"small", intPtr(8000), 1000, "1.0 kB"},
		{"ten seconds at 800 kbps", intPtr(800000), 10000, "1.0 MB"},
		{"minute at 2 Mbps", intPtr(2000000), 60000, "15 MB"},
		{"long", intPtr(8000000), 1000000, "1.0 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateFileSize(tt.bitrate, tt.duration); got != tt.want {
				t.Errorf("EstimateFileSize = %q, want %q", got, tt.want)
			}
		})
	}
}
