package xtream

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/wayidiomas/ativeplay-mvp/internal/sourcedetect"
)

// NormalizedVOD is a get_vod_info response with all fields converted to
// their canonical shapes (spec §4.4's "Output normalization").
type NormalizedVOD struct {
	Name        string
	Plot        string
	Cast        []string
	Director    string
	Genre       []string
	ReleaseDate string // ISO-8601 if the source was a Unix timestamp
	Rating      float64
	DurationSecs int
	CoverURL    string
	PlaybackURL string
}

// NormalizeVOD converts a raw VODInfo into its normalized form and
// builds its playback URL via client.
func NormalizeVOD(raw VODInfo, client *Client) NormalizedVOD {
	rating, _ := strconv.ParseFloat(string(raw.Info.Rating), 64)

	releaseDate := raw.Info.ReleaseDate
	if iso, ok := sourcedetect.UnixToISO8601(releaseDate); ok {
		releaseDate = iso
	}

	durationSecs := 0
	if d, ok := sourcedetect.ParseDuration(string(raw.Info.Duration)); ok {
		durationSecs = d
	}

	return NormalizedVOD{
		Name:         raw.Info.Name,
		Plot:         raw.Info.Plot,
		Cast:         sourcedetect.SplitCSVField(raw.Info.Cast),
		Director:     sourcedetect.MaybeBase64Decode(raw.Info.Director),
		Genre:        sourcedetect.SplitCSVField(raw.Info.Genre),
		ReleaseDate:  releaseDate,
		Rating:       sourcedetect.NormalizeRating(rating),
		DurationSecs: durationSecs,
		CoverURL:     raw.Info.CoverBig,
		PlaybackURL:  client.VODStreamURL(fmt.Sprintf("%d", raw.MovieData.StreamID), raw.MovieData.ContainerExt),
	}
}

// NormalizedSeason is one synthesized-or-native season of a series, with
// its episodes carrying fully-built playback URLs.
type NormalizedSeason struct {
	SeasonNumber int
	Name         string
	CoverURL     string
	Episodes     []NormalizedEpisode
}

// NormalizedEpisode is one episode with a constructed playback URL.
type NormalizedEpisode struct {
	EpisodeID   string
	Number      int
	Title       string
	PlaybackURL string
}

// BuildSeasons converts get_series_info's raw seasons array plus
// episodes-by-season map into an ordered NormalizedSeason list. When the
// API omits (or returns an empty) seasons array, seasons are synthesized
// from the episode map: named "Temporada N", inheriting the cover from
// the first episode of that season (spec §4.4).
func BuildSeasons(resp *SeriesInfoResponse, client *Client) []NormalizedSeason {
	seasonNames := make(map[int]string, len(resp.Seasons))
	seasonCovers := make(map[int]string, len(resp.Seasons))
	for _, s := range resp.Seasons {
		seasonNames[int(s.SeasonNumber)] = s.Name
		seasonCovers[int(s.SeasonNumber)] = s.Cover
	}

	out := make([]NormalizedSeason, 0, len(resp.Episodes))
	for seasonKey, eps := range resp.Episodes {
		seasonNum, _ := strconv.Atoi(seasonKey)

		episodes := make([]NormalizedEpisode, 0, len(eps))
		firstCover := ""
		for i, ep := range eps {
			if i == 0 {
				if img, ok := ep.Info["movie_image"].(string); ok {
					firstCover = img
				}
			}
			episodes = append(episodes, NormalizedEpisode{
				EpisodeID:   string(ep.ID),
				Number:      int(ep.EpisodeNum),
				Title:       ep.Title,
				PlaybackURL: client.SeriesEpisodeURL(string(ep.ID), ep.ContainerExt),
			})
		}

		name, hasName := seasonNames[seasonNum]
		if !hasName || name == "" {
			name = fmt.Sprintf("Temporada %d", seasonNum)
		}
		cover, hasCover := seasonCovers[seasonNum]
		if !hasCover || cover == "" {
			cover = firstCover
		}

		sort.Slice(episodes, func(i, j int) bool { return episodes[i].Number < episodes[j].Number })

		out = append(out, NormalizedSeason{
			SeasonNumber: seasonNum,
			Name:         name,
			CoverURL:     cover,
			Episodes:     episodes,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SeasonNumber < out[j].SeasonNumber })
	return out
}
