// Package m3u implements the streaming M3U playlist parser (component
// C3): fetch with retry, parse EXTINF/URL record pairs, deduplicate,
// normalize, classify, run-length-encode series, and drive a bulk item
// writer — all in a single pass without buffering the full playlist.
//
// Grounded on the fetch/parse/RLE shape of the original Rust
// m3u_parser.rs and the bufio.Scanner + regex attribute parsing used by
// the sibling ingest providers.
package m3u

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/wayidiomas/ativeplay-mvp/internal/classifier"
	"github.com/wayidiomas/ativeplay-mvp/internal/hashutil"
)

// Options configures a single Parse call. Zero values fall back to the
// documented defaults.
type Options struct {
	MaxLineBytes  int    // default 32 KiB
	ProgressEvery int    // default 500
	LogEvery      int    // default 10000
	DefaultGroup  string // default "Sem Grupo"
}

func (o Options) withDefaults() Options {
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = 32 * 1024
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = 500
	}
	if o.LogEvery <= 0 {
		o.LogEvery = 10000
	}
	if o.DefaultGroup == "" {
		o.DefaultGroup = "Sem Grupo"
	}
	return o
}

// seriesRun is the in-progress accumulator for one contiguous (or
// merged-across-runs) series, keyed by group+seriesName.
type seriesRun struct {
	key        string
	seriesName string
	group      string
	logo       string
	year       *int
	quality    string
	episodes   []SeriesEpisode
}

// Parse reads an M3U body (already fetched, e.g. via FetchWithRetry) and
// drives writer/progress as it classifies and deduplicates items. It
// returns the finalized group and series lists once the stream ends.
//
// Wrap body in a deadlineReader (see WithLineTimeout) before calling
// Parse to bound any single underlying Read call; Parse itself is
// agnostic to where body's bytes come from.
func Parse(
	ctx context.Context,
	body io.Reader,
	cls *classifier.Classifier,
	writer ItemWriter,
	progress ProgressReporter,
	log *slog.Logger,
	opts Options,
) (Result, error) {
	opts = opts.withDefaults()

	scanner := bufio.NewScanner(body)
	// The scanner's token limit is the larger of max and cap(buf), so the
	// initial buffer must not exceed MaxLineBytes.
	buf := make([]byte, 0, min(64*1024, opts.MaxLineBytes))
	scanner.Buffer(buf, opts.MaxLineBytes)

	var (
		stats             Stats
		groups            = map[string]*Group{}
		seriesAccum       = map[string]*seriesRun{}
		currentRun        *seriesRun
		seenURLs          = map[uint64]struct{}{}
		duplicatesSkipped int
		foundHeader       bool
		firstLine         = true
		retained          int
		current           extinf
		haveCurrent       bool
	)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if firstLine {
			firstLine = false
			if !strings.HasPrefix(line, "#EXTM3U") {
				return Result{}, ErrMissingHeader
			}
			foundHeader = true
			continue
		}

		if strings.HasPrefix(line, "#EXTINF:") {
			if e, ok := parseExtinf(line); ok {
				current = e
				haveCurrent = true
			} else {
				haveCurrent = false
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			haveCurrent = false
			continue
		}

		if !haveCurrent || !strings.HasPrefix(line, "http") {
			haveCurrent = false
			continue
		}

		streamURL := line
		extinfData := current
		haveCurrent = false

		dedupKey := hashutil.DedupKey(streamURL)
		if _, seen := seenURLs[dedupKey]; seen {
			duplicatesSkipped++
			continue
		}
		seenURLs[dedupKey] = struct{}{}

		name := normalizeText(extinfData.title)
		groupName := extinfData.attributes["group-title"]
		if groupName == "" {
			groupName = opts.DefaultGroup
		}
		groupName = normalizeText(groupName)
		logoURL := extinfData.attributes["tvg-logo"]

		kind := cls.Classify(name, groupName)
		parsedTitle := classifier.ParseTitle(name)

		var seriesInfo *classifier.SeriesInfo
		if kind == classifier.Series {
			seriesInfo = cls.ExtractSeriesInfo(name)
		}

		var seriesHash string
		var season, episode *int

		if seriesInfo != nil {
			key := groupName + "_" + seriesInfo.SeriesName
			seriesHash = hashutil.SeriesHash(groupName, seriesInfo.SeriesName)

			if currentRun == nil || currentRun.key != key {
				if currentRun != nil {
					flushRun(seriesAccum, currentRun)
				}
				currentRun = &seriesRun{
					key:        key,
					seriesName: seriesInfo.SeriesName,
					group:      groupName,
					logo:       logoURL,
					year:       parsedTitle.Year,
					quality:    parsedTitle.Quality,
				}
			}

			s, e := seriesInfo.Season, seriesInfo.Episode
			season, episode = &s, &e
			currentRun.episodes = append(currentRun.episodes, SeriesEpisode{
				ItemHash: hashutil.ItemHash(streamURL),
				Name:     name,
				Season:   s,
				Episode:  e,
				URL:      streamURL,
			})
		} else if currentRun != nil {
			flushRun(seriesAccum, currentRun)
			currentRun = nil
		}

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

		g, ok := groups[groupName]
		if !ok {
			g = &Group{Hash: hashutil.GroupHash(groupName), Name: groupName, MediaKind: kind, LogoURL: logoURL}
			groups[groupName] = g
		}
		g.ItemCount++

		item := Item{
			Hash:        hashutil.ItemHash(streamURL),
			Name:        name,
			URL:         streamURL,
			LogoURL:     logoURL,
			GroupName:   groupName,
			MediaKind:   kind,
			ParsedTitle: &parsedTitle,
			SeriesHash:  seriesHash,
			Season:      season,
			Episode:     episode,
			SortOrder:   retained,
		}

		if err := writer.WriteItem(ctx, item); err != nil {
			return Result{}, fmt.Errorf("m3u: write item: %w", err)
		}
		retained++

		if retained%opts.ProgressEvery == 0 {
			progress.ReportProgress(ctx, retained, len(groups), len(seriesAccum), "parsing")
		}
		if log != nil && retained%opts.LogEvery == 0 {
			log.Info("parse progress", "items_parsed", retained, "duplicates_skipped", duplicatesSkipped)
		}
	}

	if err := scanner.Err(); err != nil {
		switch {
		case errors.Is(err, bufio.ErrTooLong):
			return Result{}, ErrLineTooLong
		case errors.Is(err, errLineTimeout):
			return Result{}, ErrLineTimeout
		default:
			return Result{}, fmt.Errorf("m3u: scan: %w", err)
		}
	}

	if currentRun != nil {
		flushRun(seriesAccum, currentRun)
	}

	if !foundHeader {
		return Result{}, ErrMissingHeader
	}

	if _, err := writer.Finish(ctx); err != nil {
		return Result{}, fmt.Errorf("m3u: finish: %w", err)
	}

	groupList := make([]Group, 0, len(groups))
	for _, g := range groups {
		groupList = append(groupList, *g)
	}
	stats.Groups = len(groupList)

	seriesList := make([]Series, 0, len(seriesAccum))
	for _, run := range seriesAccum {
		seriesList = append(seriesList, finalizeSeries(run))
	}

	progress.ReportProgress(ctx, retained, len(groupList), len(seriesList), "complete")

	return Result{Stats: stats, Groups: groupList, Series: seriesList}, nil
}

// flushRun merges run's episodes into any pre-existing accumulator under
// the same series key, or installs run itself as the first accumulator
// for that key. An empty run (no episodes) is dropped silently — it
// only occurs when a series was detected but immediately superseded.
func flushRun(accum map[string]*seriesRun, run *seriesRun) {
	if len(run.episodes) == 0 {
		return
	}
	existing, ok := accum[run.key]
	if !ok {
		accum[run.key] = run
		return
	}
	existing.episodes = append(existing.episodes, run.episodes...)
}

// finalizeSeries sorts run's episodes by (season, episode) and groups
// them into seasons ordered by season number.
func finalizeSeries(run *seriesRun) Series {
	episodes := append([]SeriesEpisode(nil), run.episodes...)
	sort.Slice(episodes, func(i, j int) bool {
		if episodes[i].Season != episodes[j].Season {
			return episodes[i].Season < episodes[j].Season
		}
		return episodes[i].Episode < episodes[j].Episode
	})

	bySeason := map[int][]SeriesEpisode{}
	for _, ep := range episodes {
		bySeason[ep.Season] = append(bySeason[ep.Season], ep)
	}
	seasonNums := make([]int, 0, len(bySeason))
	for n := range bySeason {
		seasonNums = append(seasonNums, n)
	}
	sort.Ints(seasonNums)

	seasonsData := make([]SeasonData, 0, len(seasonNums))
	for _, n := range seasonNums {
		seasonsData = append(seasonsData, SeasonData{SeasonNumber: n, Episodes: bySeason[n]})
	}

	var first, last int
	if len(seasonNums) > 0 {
		first, last = seasonNums[0], seasonNums[len(seasonNums)-1]
	}

	return Series{
		Hash:          hashutil.SeriesHash(run.group, run.seriesName),
		Name:          run.seriesName,
		Group:         run.group,
		LogoURL:       run.logo,
		Year:          run.year,
		Quality:       run.quality,
		TotalEpisodes: len(episodes),
		TotalSeasons:  len(seasonNums),
		FirstSeason:   first,
		LastSeason:    last,
		SeasonsData:   seasonsData,
	}
}
