package orchestrator

import (
	"context"
	"fmt"

	"github.com/wayidiomas/ativeplay-mvp/internal/classifier"
	"github.com/wayidiomas/ativeplay-mvp/internal/hashutil"
	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
	"github.com/wayidiomas/ativeplay-mvp/internal/store"
	"github.com/wayidiomas/ativeplay-mvp/internal/xtream"
)

// xtreamProgressEvery mirrors m3u.Parse's default progress cadence.
const xtreamProgressEvery = 500

// xtreamSeriesDetailCap bounds how many series get a get_series_info
// detail fetch (one request per series, unlike live/VOD which list in
// bulk). Series beyond the cap are skipped entirely rather than stored
// with no episodes, since an episode-less series isn't navigable.
const xtreamSeriesDetailCap = 300

// ingestXtream walks an Xtream account's live, VOD, and series
// catalogs, classifying and writing every stream as an item the same
// way m3u.Parse does, and returns the same Result shape runM3U builds
// from a playlist body.
func (o *Orchestrator) ingestXtream(ctx context.Context, client *xtream.Client, writer *store.BulkItemWriter, hash string) (m3u.Result, error) {
	groups := map[string]*m3u.Group{}
	var series []m3u.Series
	var stats m3u.Stats
	written := 0

	report := func(phase string) {
		o.Coord.ForHash(hash).ReportProgress(ctx, written, len(groups), len(series), phase)
	}

	writeItem := func(item m3u.Item, groupName, logoURL string, kind classifier.MediaKind) error {
		g, ok := groups[groupName]
		if !ok {
			g = &m3u.Group{Hash: hashutil.GroupHash(groupName), Name: groupName, MediaKind: kind, LogoURL: logoURL}
			groups[groupName] = g
		}
		g.ItemCount++

		if err := writer.WriteItem(ctx, item); err != nil {
			return fmt.Errorf("orchestrator: write xtream item: %w", err)
		}
		written++
		stats.Total++
		switch kind {
		case classifier.Live:
			stats.Live++
		case classifier.Movie:
			stats.Movie++
		case classifier.Series:
			stats.Series++
		default:
			stats.Unknown++
		}
		if written%xtreamProgressEvery == 0 {
			report("parsing")
		}
		return nil
	}

	if err := ingestLive(ctx, client, writeItem); err != nil {
		return m3u.Result{}, err
	}
	if err := ingestVOD(ctx, client, writeItem); err != nil {
		return m3u.Result{}, err
	}
	builtSeries, err := ingestSeries(ctx, client, writeItem)
	if err != nil {
		return m3u.Result{}, err
	}
	series = builtSeries

	groupList := make([]m3u.Group, 0, len(groups))
	for _, g := range groups {
		groupList = append(groupList, *g)
	}
	stats.Groups = len(groupList)

	report("complete")

	return m3u.Result{Stats: stats, Groups: groupList, Series: series}, nil
}

// categoryNames maps category_id -> category_name, falling back to the
// parser's default bucket for streams whose category_id has no match.
func categoryNames(cats []xtream.Category) map[string]string {
	out := make(map[string]string, len(cats))
	for _, c := range cats {
		out[string(c.CategoryID)] = c.CategoryName
	}
	return out
}

func groupFor(names map[string]string, categoryID string) string {
	if name, ok := names[categoryID]; ok && name != "" {
		return name
	}
	return "Sem Grupo"
}

type xtreamItemWriter func(item m3u.Item, groupName, logoURL string, kind classifier.MediaKind) error

func ingestLive(ctx context.Context, client *xtream.Client, write xtreamItemWriter) error {
	cats, err := client.GetLiveCategories(ctx)
	if err != nil {
		return fmt.Errorf("orchestrator: xtream live categories: %w", err)
	}
	names := categoryNames(cats)

	streams, err := client.GetLiveStreams(ctx, "")
	if err != nil {
		return fmt.Errorf("orchestrator: xtream live streams: %w", err)
	}

	for i, s := range streams {
		groupName := groupFor(names, string(s.CategoryID))
		streamID := fmt.Sprintf("%d", int(s.StreamID))
		url := client.LiveStreamURL(streamID, "")
		item := m3u.Item{
			Hash:      hashutil.ItemHash(url),
			Name:      s.Name,
			URL:       url,
			LogoURL:   s.StreamIcon,
			GroupName: groupName,
			MediaKind: classifier.Live,
			SortOrder: i,
		}
		if err := write(item, groupName, s.StreamIcon, classifier.Live); err != nil {
			return err
		}
	}
	return nil
}

func ingestVOD(ctx context.Context, client *xtream.Client, write xtreamItemWriter) error {
	cats, err := client.GetVODCategories(ctx)
	if err != nil {
		return fmt.Errorf("orchestrator: xtream vod categories: %w", err)
	}
	names := categoryNames(cats)

	streams, err := client.GetVODStreams(ctx, "")
	if err != nil {
		return fmt.Errorf("orchestrator: xtream vod streams: %w", err)
	}

	for i, s := range streams {
		groupName := groupFor(names, string(s.CategoryID))
		streamID := fmt.Sprintf("%d", int(s.StreamID))
		url := client.VODStreamURL(streamID, "")
		parsedTitle := classifier.ParseTitle(s.Name)
		item := m3u.Item{
			Hash:        hashutil.ItemHash(url),
			Name:        s.Name,
			URL:         url,
			LogoURL:     s.StreamIcon,
			GroupName:   groupName,
			MediaKind:   classifier.Movie,
			ParsedTitle: &parsedTitle,
			SortOrder:   i,
		}
		if err := write(item, groupName, s.StreamIcon, classifier.Movie); err != nil {
			return err
		}
	}
	return nil
}

// ingestSeries walks the series catalog, writing one item per episode
// (mirroring how the M3U parser treats series episodes as items) and
// returns the finalized Series list for the store's series table.
func ingestSeries(ctx context.Context, client *xtream.Client, write xtreamItemWriter) ([]m3u.Series, error) {
	cats, err := client.GetSeriesCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: xtream series categories: %w", err)
	}
	names := categoryNames(cats)

	listings, err := client.GetSeries(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: xtream series list: %w", err)
	}

	var out []m3u.Series
	for i, listing := range listings {
		groupName := groupFor(names, string(listing.CategoryID))
		seriesID := fmt.Sprintf("%d", int(listing.SeriesID))
		seriesHash := hashutil.SeriesHash(groupName, listing.Name)

		if i >= xtreamSeriesDetailCap {
			continue
		}

		info, err := client.GetSeriesInfo(ctx, seriesID)
		if err != nil {
			if e, ok := err.(*xtream.Error); ok && e.Kind == xtream.ErrEmptyResponse {
				continue
			}
			return nil, fmt.Errorf("orchestrator: xtream series info %s: %w", seriesID, err)
		}

		seasons := xtream.BuildSeasons(info, client)
		seasonsData := make([]m3u.SeasonData, 0, len(seasons))
		totalEpisodes := 0
		for _, season := range seasons {
			episodes := make([]m3u.SeriesEpisode, 0, len(season.Episodes))
			for _, ep := range season.Episodes {
				episode := ep.Number
				seasonNum := season.SeasonNumber
				item := m3u.Item{
					Hash:       hashutil.ItemHash(ep.PlaybackURL),
					Name:       ep.Title,
					URL:        ep.PlaybackURL,
					LogoURL:    season.CoverURL,
					GroupName:  groupName,
					MediaKind:  classifier.Series,
					SeriesHash: seriesHash,
					Season:     &seasonNum,
					Episode:    &episode,
				}
				if err := write(item, groupName, listing.Cover, classifier.Series); err != nil {
					return nil, err
				}
				episodes = append(episodes, m3u.SeriesEpisode{
					ItemHash: item.Hash, Name: ep.Title, Season: seasonNum, Episode: episode, URL: ep.PlaybackURL,
				})
			}
			seasonsData = append(seasonsData, m3u.SeasonData{SeasonNumber: season.SeasonNumber, Episodes: episodes})
			totalEpisodes += len(episodes)
		}

		if totalEpisodes == 0 {
			continue
		}

		var firstSeason, lastSeason int
		if len(seasonsData) > 0 {
			firstSeason = seasonsData[0].SeasonNumber
			lastSeason = seasonsData[len(seasonsData)-1].SeasonNumber
		}

		out = append(out, m3u.Series{
			Hash:          seriesHash,
			Name:          listing.Name,
			Group:         groupName,
			LogoURL:       listing.Cover,
			TotalEpisodes: totalEpisodes,
			TotalSeasons:  len(seasonsData),
			FirstSeason:   firstSeason,
			LastSeason:    lastSeason,
			SeasonsData:   seasonsData,
		})
	}

	return out, nil
}
