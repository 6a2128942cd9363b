package twitter

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/iconidentify/xclip/internal/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

// testConfig points every endpoint at base and makes retries instant.
func testConfig(base string) Config {
	return Config{
		GraphQLURL:       base + "/graphql/TweetResultByRestId",
		GuestTokenURL:    base + "/guest/activate.json",
		SyndicationURL:   base + "/tweet-result",
		RequestTimeout:   2 * time.Second,
		TokenTimeout:     2 * time.Second,
		ProbeTimeout:     2 * time.Second,
		TokenRetry:       fastPolicy(3),
		APIRetry:         fastPolicy(3),
		SyndicationRetry: fastPolicy(3),
	}
}

// guestTokenHandler issues sequential tokens "gt1", "gt2", ... and counts calls.
func guestTokenHandler(calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guest_token":"gt` + strconv.Itoa(int(n)) + `"}`))
	}
}

// snowflakeAt builds an id whose embedded timestamp is t.
func snowflakeAt(t time.Time) string {
	ms := t.UnixMilli() - SnowflakeEpochMillis
	return strconv.FormatUint(uint64(ms)<<22, 10)
}

const photoTweetJSON = `{"data":{"tweetResult":{"result":{
	"__typename":"Tweet",
	"rest_id":"1750000000000000001",
	"legacy":{"id_str":"1750000000000000001","extended_entities":{"media":[
		{"id_str":"1750000000000000101","type":"photo","media_url_https":"https://pbs.twimg.com/media/AAA.jpg"}
	]}}
}}}}`

const twoPhotoTweetJSON = `{"data":{"tweetResult":{"result":{
	"__typename":"Tweet",
	"rest_id":"1750000000000000002",
	"legacy":{"id_str":"1750000000000000002","extended_entities":{"media":[
		{"id_str":"1750000000000000201","type":"photo","media_url_https":"https://pbs.twimg.com/media/BBB.jpg"},
		{"id_str":"1750000000000000202","type":"photo","media_url_https":"https://pbs.twimg.com/media/CCC.png"}
	]}}
}}}}`

const videoTweetJSON = `{"data":{"tweetResult":{"result":{
	"__typename":"Tweet",
	"rest_id":"1750000000000000003",
	"legacy":{"id_str":"1750000000000000003","extended_entities":{"media":[
		{"id_str":"1750000000000000301","type":"video","media_url_https":"https://pbs.twimg.com/amplify_video_thumb/301/img/thumb.jpg",
		 "video_info":{"duration_millis":12000,"variants":[
			{"content_type":"application/x-mpegURL","url":"https://video.twimg.com/amplify_video/301/pl/playlist.m3u8"},
			{"bitrate":632000,"content_type":"video/mp4","url":"https://video.twimg.com/amplify_video/301/vid/avc1/480x270/low.mp4"},
			{"bitrate":2176000,"content_type":"video/mp4","url":"https://video.twimg.com/amplify_video/301/vid/avc1/1280x720/high.mp4"}
		 ]}}
	]}}
}}}}`

func unavailableJSON(reason string) string {
	return `{"data":{"tweetResult":{"result":{"__typename":"TweetUnavailable","reason":"` + reason + `"}}}}`
}
