package xtream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsAllShapes(t *testing.T) {
	var s FlexString
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &s))
	assert.Equal(t, FlexString("hello"), s)

	require.NoError(t, json.Unmarshal([]byte(`42`), &s))
	assert.Equal(t, FlexString("42"), s)

	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Equal(t, FlexString(""), s)
}

func TestFlexIntAcceptsStringifiedNumbers(t *testing.T) {
	var n FlexInt
	require.NoError(t, json.Unmarshal([]byte(`"123"`), &n))
	assert.Equal(t, FlexInt(123), n)

	require.NoError(t, json.Unmarshal([]byte(`456`), &n))
	assert.Equal(t, FlexInt(456), n)

	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.Equal(t, FlexInt(0), n)
}

func TestFlexBoolAcceptsZeroOneStrings(t *testing.T) {
	var b FlexBool
	require.NoError(t, json.Unmarshal([]byte(`"1"`), &b))
	assert.True(t, bool(b))

	require.NoError(t, json.Unmarshal([]byte(`"0"`), &b))
	assert.False(t, bool(b))
}

// E6 from spec §8: Xtream normalization of cast/rating/duration.
func TestNormalizeVODMatchesE6(t *testing.T) {
	client := NewClient("http://host", "user", "pass", time.Second, "ua")
	raw := VODInfo{
		Info: VODInfoDetail{
			Name:     "Movie",
			Cast:     "Alice, Bob ,  Carol ",
			Rating:   "85",
			Duration: "01:30:00",
		},
		MovieData: VODMovieData{StreamID: 99, ContainerExt: "mp4"},
	}
	norm := NormalizeVOD(raw, client)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, norm.Cast)
	assert.Equal(t, 8.5, norm.Rating)
	assert.Equal(t, 5400, norm.DurationSecs)
	assert.Equal(t, "http://host/movie/user/pass/99.mp4", norm.PlaybackURL)
}

func TestBuildSeasonsSynthesizesWhenAbsent(t *testing.T) {
	client := NewClient("http://host", "user", "pass", time.Second, "ua")
	resp := &SeriesInfoResponse{
		Episodes: map[string][]SeriesInfoEpisode{
			"1": {
				{ID: "10", EpisodeNum: 2, Title: "Ep2", ContainerExt: "mp4"},
				{ID: "9", EpisodeNum: 1, Title: "Ep1", ContainerExt: "mp4"},
			},
		},
	}
	seasons := BuildSeasons(resp, client)
	require.Len(t, seasons, 1)
	assert.Equal(t, "Temporada 1", seasons[0].Name)
	require.Len(t, seasons[0].Episodes, 2)
	assert.Equal(t, 1, seasons[0].Episodes[0].Number)
	assert.Equal(t, 2, seasons[0].Episodes[1].Number)
	assert.Equal(t, "http://host/series/user/pass/9.mp4", seasons[0].Episodes[0].PlaybackURL)
}

func TestBuildSeasonsUsesNativeSeasonNameWhenPresent(t *testing.T) {
	client := NewClient("http://host", "user", "pass", time.Second, "ua")
	resp := &SeriesInfoResponse{
		Seasons: []SeriesInfoSeason{{SeasonNumber: 1, Name: "Season One", Cover: "cover.jpg"}},
		Episodes: map[string][]SeriesInfoEpisode{
			"1": {{ID: "9", EpisodeNum: 1, Title: "Ep1"}},
		},
	}
	seasons := BuildSeasons(resp, client)
	require.Len(t, seasons, 1)
	assert.Equal(t, "Season One", seasons[0].Name)
	assert.Equal(t, "cover.jpg", seasons[0].CoverURL)
}

func TestPlaybackURLConstruction(t *testing.T) {
	client := NewClient("http://host:8080", "user", "pass", time.Second, "ua")
	assert.Equal(t, "http://host:8080/live/user/pass/5.ts", client.LiveStreamURL("5", ""))
	assert.Equal(t, "http://host:8080/live/user/pass/5.m3u8", client.LiveStreamURL("5", "m3u8"))
	assert.Equal(t, "http://host:8080/movie/user/pass/5.mp4", client.VODStreamURL("5", ""))
	assert.Equal(t, "http://host:8080/series/user/pass/5.mp4", client.SeriesEpisodeURL("5", ""))
}
