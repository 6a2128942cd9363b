package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/iconidentify/xclip/internal/domain"
)

// fakeRequester replays canned GraphQL responses and records calls.
type fakeRequester struct {
	responses []string
	err       error
	calls     int
	modes     []AuthMode
}

func (f *fakeRequester) RequestPost(_ context.Context, _ string, auth AuthConfig) (*TweetResultResponse, AuthConfig, error) {
	f.calls++
	f.modes = append(f.modes, auth.Mode)
	if f.err != nil {
		return nil, auth, f.err
	}
	var resp TweetResultResponse
	body := f.responses[min(f.calls-1, len(f.responses)-1)]
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, auth, err
	}
	return &resp, auth, nil
}

func mustDecode(t *testing.T, body string) *TweetResultResponse {
	t.Helper()
	var resp TweetResultResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return &resp
}

var sessionAuth = AuthConfig{GuestToken: "gt", Cookie: "auth_token=a; ct0=b", CSRFToken: "b"}

func TestExtract_Protected(t *testing.T) {
	req := &fakeRequester{}
	e := NewExtractor(req, testLogger())

	_, err := e.Extract(context.Background(), mustDecode(t, unavailableJSON(ReasonProtected)), nil, "1750000000000000001", sessionAuth, nil)
	if !errors.Is(err, domain.ErrContentPrivate) {
		t.Fatalf("err = %v, want ErrContentPrivate", err)
	}
	if req.calls != 0 {
		t.Errorf("requests = %d, want 0", req.calls)
	}
}

func TestExtract_NsfwWithoutCookie(t *testing.T) {
	req := &fakeRequester{}
	e := NewExtractor(req, testLogger())

	_, err := e.Extract(context.Background(), mustDecode(t, unavailableJSON(ReasonNsfwLoggedOut)), nil, "1750000000000000001", AuthConfig{GuestToken: "gt"}, nil)
	if !errors.Is(err, domain.ErrContentAgeRestricted) {
		t.Fatalf("err = %v, want ErrContentAgeRestricted", err)
	}
	if req.calls != 0 {
		t.Errorf("requests = %d, want 0", req.calls)
	}
}

func TestExtract_NsfwWithCookieRetriesOnce(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		reqErr    error
		wantErr   error
		wantCount int
	}{
		{"cookie request succeeds", []string{photoTweetJSON}, nil, nil, 1},
		{"cookie request still restricted", []string{unavailableJSON(ReasonNsfwLoggedOut)}, nil, domain.ErrContentAgeRestricted, 0},
		{"cookie request fails", nil, domain.ErrFetchFailed, domain.ErrFetchFailed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &fakeRequester{responses: tt.responses, err: tt.reqErr}
			e := NewExtractor(req, testLogger())

			media, err := e.Extract(context.Background(), mustDecode(t, unavailableJSON(ReasonNsfwLoggedOut)), nil, "1750000000000000001", sessionAuth, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(media) != tt.wantCount {
				t.Errorf("media = %d, want %d", len(media), tt.wantCount)
			}
			if req.calls != 1 {
				t.Errorf("requests = %d, want exactly 1", req.calls)
			}
			if req.modes[0] != AuthModeCookie {
				t.Errorf("retry mode = %v, want cookie", req.modes[0])
			}
		})
	}
}

func TestExtract_UnavailableAndUnknownTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"suspended", unavailableJSON("Suspended"), domain.ErrContentUnavailable},
		{"tombstone", `{"data":{"tweetResult":{"result":{"__typename":"TweetTombstone"}}}}`, domain.ErrContentUnavailable},
		{"no typename", `{"data":{"tweetResult":{"result":{"rest_id":"1"}}}}`, domain.ErrFetchEmpty},
		{"no result", `{"data":{"tweetResult":{}}}`, domain.ErrFetchEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(&fakeRequester{}, testLogger())
			_, err := e.Extract(context.Background(), mustDecode(t, tt.body), nil, "1750000000000000001", AuthConfig{}, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExtract_Video(t *testing.T) {
	e := NewExtractor(&fakeRequester{}, testLogger())

	media, err := e.Extract(context.Background(), mustDecode(t, videoTweetJSON), nil, "1750000000000000003", AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 1 {
		t.Fatalf("media = %d, want 1", len(media))
	}
	m := media[0]
	if m.Type != domain.MediaTypeVideo || len(m.Variants) != 3 || m.DurationMillis != 12000 {
		t.Errorf("descriptor = %+v", m)
	}
	if m.Variants[0].Bitrate != nil {
		t.Error("playlist variant should have no bitrate")
	}
}

func TestExtract_PrefersRepostedMedia(t *testing.T) {
	body := `{"data":{"tweetResult":{"result":{
		"__typename":"Tweet",
		"legacy":{"id_str":"1750000000000000010",
			"extended_entities":{"media":[{"id_str":"1750000000000000011","type":"photo","media_url_https":"https://pbs.twimg.com/media/WRAP.jpg"}]},
			"retweeted_status_result":{"result":{"__typename":"TweetWithVisibilityResults","tweet":{
				"legacy":{"id_str":"1750000000000000020","extended_entities":{"media":[
					{"id_str":"1750000000000000021","type":"photo","media_url_https":"https://pbs.twimg.com/media/ORIG.jpg"}
				]}}
			}}}
		}
	}}}}`

	e := NewExtractor(&fakeRequester{}, testLogger())
	media, err := e.Extract(context.Background(), mustDecode(t, body), nil, "1750000000000000010", AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 1 || media[0].ID != "1750000000000000021" {
		t.Errorf("media = %+v, want reposted photo", media)
	}
}

func TestExtract_VisibilityResultsWrapper(t *testing.T) {
	body := `{"data":{"tweetResult":{"result":{
		"__typename":"TweetWithVisibilityResults",
		"tweet":{"legacy":{"id_str":"1750000000000000030","extended_entities":{"media":[
			{"id_str":"1750000000000000031","type":"photo","media_url_https":"https://pbs.twimg.com/media/VIS.jpg"}
		]}}}
	}}}}`

	e := NewExtractor(&fakeRequester{}, testLogger())
	media, err := e.Extract(context.Background(), mustDecode(t, body), nil, "1750000000000000030", AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 1 || media[0].URL != "https://pbs.twimg.com/media/VIS.jpg" {
		t.Errorf("media = %+v", media)
	}
}

func TestExtract_CardMedia(t *testing.T) {
	card := map[string]any{
		"type": "video_website",
		"component_objects": map[string]any{
			"media_1": map[string]any{"type": "media", "data": map[string]any{"id": "13_1750000000000000041"}},
		},
		"media_entities": map[string]any{
			"13_1750000000000000041": map[string]any{
				"id_str":          "1750000000000000041",
				"type":            "video",
				"media_url_https": "https://pbs.twimg.com/card_thumb.jpg",
				"video_info": map[string]any{"variants": []any{
					map[string]any{"bitrate": 832000, "content_type": "video/mp4", "url": "https://video.twimg.com/card.mp4"},
				}},
			},
		},
	}
	cardJSON, _ := json.Marshal(card)
	binding, _ := json.Marshal(string(cardJSON))

	body := `{"data":{"tweetResult":{"result":{
		"__typename":"Tweet",
		"legacy":{"id_str":"1750000000000000040","extended_entities":{"media":[
			{"id_str":"1750000000000000042","type":"photo","media_url_https":"https://pbs.twimg.com/media/OWN.jpg"}
		]}},
		"card":{"legacy":{"binding_values":[
			{"key":"card_url","value":{"string_value":"https://t.co/x","type":"STRING"}},
			{"key":"unified_card","value":{"string_value":` + string(binding) + `,"type":"STRING"}}
		]}}
	}}}}`

	e := NewExtractor(&fakeRequester{}, testLogger())
	media, err := e.Extract(context.Background(), mustDecode(t, body), nil, "1750000000000000040", AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 1 || media[0].ID != "1750000000000000041" {
		t.Fatalf("media = %+v, want card video", media)
	}
	if media[0].Type != domain.MediaTypeVideo {
		t.Errorf("Type = %q", media[0].Type)
	}
}

func TestExtract_UnrecognizedCardFallsThrough(t *testing.T) {
	body := `{"data":{"tweetResult":{"result":{
		"__typename":"Tweet",
		"legacy":{"id_str":"1750000000000000050","extended_entities":{"media":[
			{"id_str":"1750000000000000051","type":"photo","media_url_https":"https://pbs.twimg.com/media/OWN.jpg"}
		]}},
		"card":{"legacy":{"binding_values":[
			{"key":"unified_card","value":{"string_value":"{\"type\":\"app_store\"}"}}
		]}}
	}}}}`

	e := NewExtractor(&fakeRequester{}, testLogger())
	media, err := e.Extract(context.Background(), mustDecode(t, body), nil, "1750000000000000050", AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 1 || media[0].ID != "1750000000000000051" {
		t.Errorf("media = %+v, want the post's own photo", media)
	}
}

func TestExtract_FiltersInvalidDescriptors(t *testing.T) {
	body := `{"data":{"tweetResult":{"result":{
		"__typename":"Tweet",
		"legacy":{"id_str":"1750000000000000060","extended_entities":{"media":[
			{"id_str":"","type":"photo","media_url_https":"https://pbs.twimg.com/media/NOID.jpg"},
			{"id_str":"1750000000000000061","type":"sticker","media_url_https":"https://pbs.twimg.com/media/ODD.jpg"},
			{"id_str":"1750000000000000062","type":"photo","media_url_https":""},
			{"id_str":"1750000000000000063","type":"video","media_url_https":"https://pbs.twimg.com/thumb.jpg"},
			{"id_str":"1750000000000000064","type":"photo","media_url_https":"https://pbs.twimg.com/media/OK.jpg"}
		]}}
	}}}}`

	e := NewExtractor(&fakeRequester{}, testLogger())
	media, err := e.Extract(context.Background(), mustDecode(t, body), nil, "1750000000000000060", AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 1 || media[0].ID != "1750000000000000064" {
		t.Errorf("media = %+v, want only the valid photo", media)
	}
}

func TestExtract_NoMediaReturnsNil(t *testing.T) {
	body := `{"data":{"tweetResult":{"result":{"__typename":"Tweet","legacy":{"id_str":"1750000000000000070"}}}}}`

	e := NewExtractor(&fakeRequester{}, testLogger())
	media, err := e.Extract(context.Background(), mustDecode(t, body), nil, "1750000000000000070", AuthConfig{}, nil)
	if err != nil || media != nil {
		t.Errorf("Extract = %v, %v; want nil, nil", media, err)
	}
}

func TestExtract_MediaIndex(t *testing.T) {
	e := NewExtractor(&fakeRequester{}, testLogger())
	resp := mustDecode(t, twoPhotoTweetJSON)

	media, err := e.Extract(context.Background(), resp, nil, "1750000000000000002", AuthConfig{}, intPtr(1))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 1 || media[0].ID != "1750000000000000202" {
		t.Errorf("media = %+v, want second photo", media)
	}

	media, err = e.Extract(context.Background(), resp, nil, "1750000000000000002", AuthConfig{}, intPtr(5))
	if err != nil || media != nil {
		t.Errorf("out of range index = %v, %v; want nil, nil", media, err)
	}
}

func TestExtract_Syndication(t *testing.T) {
	var resp SyndicationResponse
	if err := json.Unmarshal([]byte(syndicationJSON), &resp); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(&fakeRequester{}, testLogger())
	media, err := e.Extract(context.Background(), nil, &resp, "1750000000000000001", AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(media) != 2 {
		t.Fatalf("media = %d, want 2", len(media))
	}
	if media[1].ID != "1750000000000000102" {
		t.Errorf("media_key fallback id = %q", media[1].ID)
	}
}

func TestExtract_NoResponses(t *testing.T) {
	e := NewExtractor(&fakeRequester{}, testLogger())
	_, err := e.Extract(context.Background(), nil, nil, "1750000000000000001", AuthConfig{}, nil)
	if !errors.Is(err, domain.ErrFetchEmpty) {
		t.Errorf("err = %v, want ErrFetchEmpty", err)
	}
}
