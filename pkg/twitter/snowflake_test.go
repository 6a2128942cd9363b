package twitter

import (
	"testing"
	"time"

	"github.com/iconidentify/xclip/internal/domain"
)

func TestSnowflakeTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	got, ok := SnowflakeTime(snowflakeAt(want))
	if !ok {
		t.Fatal("SnowflakeTime failed to parse")
	}
	if !got.Equal(want) {
		t.Errorf("SnowflakeTime = %v, want %v", got, want)
	}

	if _, ok := SnowflakeTime("not-a-number"); ok {
		t.Error("non-numeric id should not parse")
	}
}

func TestNeedsContainerFix_Boundaries(t *testing.T) {
	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"well before", start.Add(-24 * time.Hour), false},
		{"one ms before start", start.Add(-time.Millisecond), false},
		{"exactly start", start, false},
		{"one ms after start", start.Add(time.Millisecond), true},
		{"middle", time.Date(2023, 12, 8, 12, 0, 0, 0, time.UTC), true},
		{"one ms before end", end.Add(-time.Millisecond), true},
		{"exactly end", end, false},
		{"one ms after end", end.Add(time.Millisecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.MediaDescriptor{ID: snowflakeAt(tt.at)}
			if got := NeedsContainerFix(m); got != tt.want {
				t.Errorf("NeedsContainerFix(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestNeedsContainerFix_PrefersRepresentativeID(t *testing.T) {
	inside := snowflakeAt(time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC))
	outside := snowflakeAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	if !NeedsContainerFix(domain.MediaDescriptor{ID: outside, RepresentativeID: inside}) {
		t.Error("representative id inside the window should need a fix")
	}
	if NeedsContainerFix(domain.MediaDescriptor{ID: inside, RepresentativeID: outside}) {
		t.Error("representative id outside the window should not need a fix")
	}
}

func TestNeedsContainerFix_BadIDs(t *testing.T) {
	for _, id := range []string{"", "abc", "-5", "99999999999999999999999"} {
		if NeedsContainerFix(domain.MediaDescriptor{ID: id}) {
			t.Errorf("NeedsContainerFix(%q) = true, want false", id)
		}
	}
}
