package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayidiomas/ativeplay-mvp/internal/classifier"
	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
	"github.com/wayidiomas/ativeplay-mvp/internal/xtream"
)

// xtreamFixture serves a minimal player_api.php covering one live
// stream, one VOD stream, and one two-episode series.
func xtreamFixture(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/player_api.php", func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		w.Header().Set("Content-Type", "application/json")
		switch action {
		case "get_live_categories":
			json.NewEncoder(w).Encode([]xtream.Category{{CategoryID: "1", CategoryName: "News"}})
		case "get_live_streams":
			json.NewEncoder(w).Encode([]xtream.LiveStream{{StreamID: 10, Name: "Channel A", CategoryID: "1"}})
		case "get_vod_categories":
			json.NewEncoder(w).Encode([]xtream.Category{{CategoryID: "2", CategoryName: "Movies"}})
		case "get_vod_streams":
			json.NewEncoder(w).Encode([]xtream.VODStream{{StreamID: 20, Name: "Movie 2020 1080p", CategoryID: "2"}})
		case "get_series_categories":
			json.NewEncoder(w).Encode([]xtream.Category{{CategoryID: "3", CategoryName: "Shows"}})
		case "get_series":
			json.NewEncoder(w).Encode([]xtream.SeriesListing{{SeriesID: 30, Name: "Show One", CategoryID: "3"}})
		case "get_series_info":
			json.NewEncoder(w).Encode(xtream.SeriesInfoResponse{
				Info: xtream.SeriesListing{Name: "Show One"},
				Episodes: map[string][]xtream.SeriesInfoEpisode{
					"1": {
						{ID: "301", EpisodeNum: 1, Title: "Pilot", ContainerExt: "mp4"},
						{ID: "302", EpisodeNum: 2, Title: "Second", ContainerExt: "mp4"},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIngestXtreamPopulatesItemsGroupsAndSeries(t *testing.T) {
	srv := xtreamFixture(t)
	client := xtream.NewClient(srv.URL, "user", "pass", 5*time.Second, "test-agent")

	var written []m3u.Item
	writeItem := func(item m3u.Item, groupName, logoURL string, kind classifier.MediaKind) error {
		written = append(written, item)
		return nil
	}

	require.NoError(t, ingestLive(context.Background(), client, writeItem))
	require.NoError(t, ingestVOD(context.Background(), client, writeItem))
	series, err := ingestSeries(context.Background(), client, writeItem)
	require.NoError(t, err)

	require.Len(t, written, 4) // 1 live + 1 vod + 2 series episodes
	assert.Equal(t, classifier.Live, written[0].MediaKind)
	assert.Equal(t, "News", written[0].GroupName)
	assert.Equal(t, classifier.Movie, written[1].MediaKind)
	assert.Equal(t, "Movies", written[1].GroupName)
	assert.NotNil(t, written[1].ParsedTitle)

	require.Len(t, series, 1)
	assert.Equal(t, "Show One", series[0].Name)
	assert.Equal(t, 2, series[0].TotalEpisodes)
	assert.Equal(t, 1, series[0].TotalSeasons)
}

func TestIngestSeriesSkipsEmptySeriesInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/player_api.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("action") {
		case "get_series_categories":
			json.NewEncoder(w).Encode([]xtream.Category{})
		case "get_series":
			json.NewEncoder(w).Encode([]xtream.SeriesListing{{SeriesID: 1, Name: "Empty Show"}})
		case "get_series_info":
			json.NewEncoder(w).Encode(xtream.SeriesInfoResponse{})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := xtream.NewClient(srv.URL, "user", "pass", 5*time.Second, "test-agent")
	var written []m3u.Item
	writeItem := func(item m3u.Item, groupName, logoURL string, kind classifier.MediaKind) error {
		written = append(written, item)
		return nil
	}

	series, err := ingestSeries(context.Background(), client, writeItem)
	require.NoError(t, err)
	assert.Empty(t, series)
	assert.Empty(t, written)
}

func TestCategoryNamesAndGroupForFallBackToDefaultBucket(t *testing.T) {
	names := categoryNames([]xtream.Category{{CategoryID: "1", CategoryName: "Kids"}})
	assert.Equal(t, "Kids", groupFor(names, "1"))
	assert.Equal(t, "Sem Grupo", groupFor(names, "missing"))
}
