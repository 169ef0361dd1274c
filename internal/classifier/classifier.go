// Package classifier maps an IPTV item's (title, group) pair to a media
// kind and extracts title metadata (year, season/episode, quality,
// language, series grouping).
//
// The rule set is ordered and the first match wins; classification is
// total — ambiguous input returns Unknown rather than an error.
package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MediaKind is the result of classifying an item.
type MediaKind int

const (
	Unknown MediaKind = iota
	Live
	Movie
	Series
)

func (k MediaKind) String() string {
	switch k {
	case Live:
		return "live"
	case Movie:
		return "movie"
	case Series:
		return "series"
	default:
		return "unknown"
	}
}

// ParsedTitle is the metadata extracted from an item's display title.
type ParsedTitle struct {
	Title       string
	Year        *int
	Season      *int
	Episode     *int
	Quality     string
	Language    string
	IsMultiAudio bool
	IsDubbed    bool
	IsSubbed    bool
}

// SeriesInfo is the (series, season, episode) triple extracted from a
// series-pattern title.
type SeriesInfo struct {
	SeriesName string
	Season     int
	Episode    int
}

// ---- pattern tables -------------------------------------------------------
//
// Grounded on the original Rust implementation's services/classifier.rs,
// carried over verbatim: the prose algorithm in the spec describes the
// shape, this table supplies the actual bilingual (PT/EN) patterns.

var (
	groupLivePatterns = compileAll(
		`(?i)\b(canais?|channels?|tv|live|news|ao vivo|abertos?)\b`,
		`(?i)\b(globo|sbt|record|band|redetv|cultura)\b`,
		`(?i)24HRS?`,
		`24/7`,
		`(?i)SERIES\s*24H`,
		`(?i)CANAIS\s*\|`,
		`(?i)futebol`,
		`(?i)esporte`,
		`(?i)sports?`,
		`(?i)M[UÚ]SICAS?\s*24H`,
		`(?i)RUNTIME\s*24H`,
		`(?i)CINE\s+.*24HRS`,
		`(?i)\bJogos do Dia\b`,
		`(?i)\b(Esportes?|Sports?)\s*PPV`,
		`(?i)\b(SPORTV|ESPN|FOX\s*SPORTS|COMBATE)\b`,
		`(?i)\bPPV\b`,
		`(?i)\bDOCUMENT[ÁA]RIOS?\b`,
		`(?i)\bVARIEDADES\b`,
	)

	groupMoviePatterns = compileAll(
		`(?i)\b(filmes?|movies?|cinema|lancamentos?|lançamentos?)\b`,
		`(?i)\bvod\b`,
		`(?i)\b(acao|terror|comedia|drama|ficcao|aventura|animacao|suspense|romance)\b`,
		`(?i)\b(a[cç][aã]o|com[eé]dia|fic[cç][aã]o|anima[cç][aã]o)\b`,
		`(?i)\b(dublado|legendado|dual|nacional)\b`,
		`(?i)\b(4k|uhd|fhd|hd)\s*(filmes?|movies?)?\b`,
		`(?i)[:|]\s*(filmes?|movies?|vod)`,
		`(?i)\|\s*br\s*\|\s*(filmes?|movies?|vod)`,
		`(?i)\[\s*br\s*]\s*(filmes?|movies?|vod)`,
		`(?i)\bCOLET[AÂ]NEA\b`,
	)

	groupSeriesPatterns = compileAll(
		`(?i)▶️\s*s[eé]ries?`,
		`(?i)\b(series?|shows?|novelas?|animes?|doramas?|k-?dramas?)\b`,
		`(?i)#\s*\|\s*(s[eé]ries|novelas)`,
		`(?i)\btemporadas?\b`,
		`(?i)s[eé]ries?`,
		`(?i)[:|]\s*s[eé]ries?`,
		`(?i)\|\s*br\s*\|\s*s[eé]ries?`,
		`(?i)\[\s*br\s*]\s*s[eé]ries?`,
		`(?i)\bDESENHOS\b`,
	)

	titleLivePatterns = compileAll(
		`(?i)\b(24/7|24h|live|ao vivo)\b`,
	)

	titleMoviePatterns = compileAll(
		`\(\d{4}\)`,
		`\[\d{4}]`,
		`(?i)\b(4k|2160p|1080p|720p|480p|bluray|webrip|hdrip|dvdrip|hdcam|web-dl|bdrip|hdts|hd-ts|cam)\b`,
		`(?i)\b(dublado|dual|leg|legendado|nacional|dub|sub)\b`,
		`(?i)\b(acao|terror|comedia|drama|suspense|romance|aventura|animacao|ficcao)\b`,
	)

	titleSeriesPatterns = compileAll(
		`(?i)s\d{1,2}[\s._-]?e\d{1,2}`,
		`(?i)\b\d{1,2}x\d{1,2}\b`,
		`(?i)\bT\d{1,2}[\s._-]?E\d{1,2}\b`,
		`(?i)\btemporada\s*\d+`,
		`(?i)\bepisodio\s*\d+`,
		`(?i)\bseason\s*\d+`,
		`(?i)\bepisode\s*\d+`,
		`(?i)\bcap[ií]tulo\s*\d+`,
		`(?i)\bep\.?\s*\d+`,
	)

	extractorYear            = regexp.MustCompile(`[(\[](\d{4})[)\]]`)
	extractorYearStandalone  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	extractorSeasonEpisode   = regexp.MustCompile(`(?i)s(\d{1,2})[\s._-]?e(\d{1,3})`)
	extractorAltSeasonEpisode = regexp.MustCompile(`(\d{1,2})x(\d{1,3})`)
	extractorSeason          = regexp.MustCompile(`(?i)(?:s|season|temporada)[\s._-]?(\d{1,2})`)
	extractorEpisode         = regexp.MustCompile(`(?i)(?:e|episode|episodio)[\s._-]?(\d{1,3})`)
	extractorQuality         = regexp.MustCompile(`(?i)\b(4k|2160p|1080p|720p|480p|360p|hd|fhd|uhd|sd)\b`)
	extractorMultiAudio      = regexp.MustCompile(`(?i)\b(dual|multi|dublado\s*e\s*legendado)\b`)
	extractorDubbed          = regexp.MustCompile(`(?i)\b(dub|dublado|dubbed|nacional)\b`)
	extractorSubbed          = regexp.MustCompile(`(?i)\b(leg|legendado|subbed|sub)\b`)
	extractorLanguage        = regexp.MustCompile(`(?i)\b(pt|por|ptbr|pt-br|en|eng|es|esp|fr|fra|de|deu|it|ita|ja|jpn)\b`)

	seriesMainPattern = regexp.MustCompile(`(?i)(.+?)\s+S(\d{1,2})E(\d{1,3})`)
	seriesAltPattern  = regexp.MustCompile(`(?i)(.+?)\s+(\d{1,2})x(\d{1,3})\b`)
	seriesPTPattern   = regexp.MustCompile(`(?i)(.+?)\s+T(\d{1,2})E(\d{1,3})`)

	adultContent    = regexp.MustCompile(`(?i)xxx|onlyfans|adulto|\+18`)
	tsStream        = regexp.MustCompile(`(?i)/ts(\?|$)`)
	pattern24H      = regexp.MustCompile(`(?i)\b24h(rs)?\b`)
	pattern24_7     = regexp.MustCompile(`24/7`)
	coletanea       = regexp.MustCompile(`(?i)colet[aâ]nea`)
	cine24H         = regexp.MustCompile(`(?i)CINE.*24H`)
	canal24HPrefix  = regexp.MustCompile(`(?i)^24H\s*•`)
	cineTematico    = regexp.MustCompile(`(?i)^CINE\s+\w+\s+\d{2}`)
	eventoHorario   = regexp.MustCompile(`^\d{1,2}:\d{2}\s+`)
	seriesCheck     = regexp.MustCompile(`(?i)s[eé]ries|series|novelas|animes|doramas`)
	moviesCheck     = regexp.MustCompile(`(?i)filmes|movies|cinema|lancamentos|lançamentos|vod`)
	hashSeriesNovelas = regexp.MustCompile(`(?i)#\s*\|\s*(s[eé]ries|novelas)`)
	hashFilmes      = regexp.MustCompile(`(?i)#\s*\|\s*filmes?`)
	sPrefix         = regexp.MustCompile(`(?i)\bS\s*•`)
	fPrefix         = regexp.MustCompile(`(?i)\bF\s*•`)
	movieGroupCheck = regexp.MustCompile(`(?i)filme|movies?|cinema|lancamento|lançamento|f\s*•|▶️\s*filmes?`)
	seriesPatternCheck = regexp.MustCompile(`(?i)S\d{1,2}E\d{1,3}`)
	prefixCleaner   = regexp.MustCompile(`^(\[.*?]|\(.*?\)|⭐|★|•|\+|-|=|#)\s*`)
	numberingCleaner = regexp.MustCompile(`^\d+\.\s+`)

	cleanBrackets    = regexp.MustCompile(`[\[(][^\])]*[\])]`)
	cleanQuality     = regexp.MustCompile(`(?i)\b(4k|2160p|1080p|720p|480p|360p|hd|fhd|uhd|sd)\b`)
	cleanFormats     = regexp.MustCompile(`(?i)\b(aac|ac3|dts|x264|x265|hevc|h264|h265|webdl|web-dl|bluray|bdrip|webrip|hdrip|dvdrip|hdcam)\b`)
	cleanAudio       = regexp.MustCompile(`(?i)\b(dub|dublado|dubbed|leg|legendado|subbed|sub|dual|multi|nacional)\b`)
	cleanPipes       = regexp.MustCompile(`[|]`)
	cleanMultiSpaces = regexp.MustCompile(`\s+`)
	cleanTrailingPunct = regexp.MustCompile(`[.\-_]+$`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Classifier holds the bounded series-info memoization cache. It is safe
// for concurrent use; the underlying LRU is itself mutex-protected.
type Classifier struct {
	seriesCache *lru.Cache[string, *SeriesInfo]
}

// New returns a Classifier with a series-extraction cache capped at
// capacity entries (spec: "bounded LRU, cap ≈ 10000").
func New(capacity int) *Classifier {
	cache, err := lru.New[string, *SeriesInfo](capacity)
	if err != nil {
		// Only returns an error for capacity <= 0; every caller in this
		// codebase passes a positive value, so this is unreachable in
		// practice. Fall back to a minimally-sized cache rather than panic.
		cache, _ = lru.New[string, *SeriesInfo](1)
	}
	return &Classifier{seriesCache: cache}
}

// Classify maps (name, group) to a MediaKind using the ordered rule set
// from §4.1: high-priority overrides, then group classification, then
// title classification.
func Classify(name, group string) MediaKind {
	if group != "" && adultContent.MatchString(group) {
		return Live
	}
	if tsStream.MatchString(group) || tsStream.MatchString(name) {
		return Live
	}

	combined := strings.ToLower(name + " " + group)
	if pattern24H.MatchString(combined) || pattern24_7.MatchString(combined) {
		return Live
	}

	if group != "" && coletanea.MatchString(group) {
		return Movie
	}
	if group != "" && cine24H.MatchString(group) {
		return Live
	}
	if name != "" && canal24HPrefix.MatchString(name) {
		return Live
	}
	if name != "" && cineTematico.MatchString(name) {
		return Live
	}
	if name != "" && eventoHorario.MatchString(name) {
		return Live
	}

	if k := ClassifyByGroup(group); k != Unknown {
		return k
	}
	return ClassifyByTitle(name, group)
}

// ClassifyByGroup classifies based solely on the group name.
func ClassifyByGroup(group string) MediaKind {
	if group == "" {
		return Unknown
	}
	lower := strings.ToLower(group)

	hasSeries := seriesCheck.MatchString(lower)
	hasMovies := moviesCheck.MatchString(lower)
	has24h := pattern24H.MatchString(lower) || pattern24_7.MatchString(lower)

	if hasSeries && has24h {
		return Live
	}
	if hasSeries || hashSeriesNovelas.MatchString(group) {
		return Series
	}
	if hasMovies || hashFilmes.MatchString(group) {
		return Movie
	}
	if anyMatch(groupLivePatterns, lower) {
		return Live
	}
	if anyMatch(groupSeriesPatterns, lower) {
		return Series
	}
	if anyMatch(groupMoviePatterns, lower) {
		return Movie
	}
	return Unknown
}

// ClassifyByTitle classifies based on the title, using group as a weak
// secondary signal for the "S •" / "F •" prefix and movie-group override.
func ClassifyByTitle(name, group string) MediaKind {
	if name == "" {
		return Unknown
	}

	if group != "" && sPrefix.MatchString(group) {
		return Series
	}
	if group != "" && fPrefix.MatchString(group) {
		return Movie
	}

	if anyMatch(titleSeriesPatterns, name) {
		return Series
	}

	hasMovieGroup := group != "" && movieGroupCheck.MatchString(group)
	hasSeriesPattern := seriesPatternCheck.MatchString(name)
	if hasMovieGroup && !hasSeriesPattern {
		return Movie
	}

	movieScore := 0
	for _, p := range titleMoviePatterns {
		if p.MatchString(name) {
			movieScore++
		}
	}
	if movieScore >= 2 {
		return Movie
	}

	if anyMatch(titleLivePatterns, name) {
		return Live
	}
	return Unknown
}

// ParseTitle extracts year/season/episode/quality/language/audio-flag
// metadata from a raw title and returns the cleaned title alongside it.
func ParseTitle(name string) ParsedTitle {
	title := name
	var parsed ParsedTitle

	if m := extractorYear.FindStringSubmatch(name); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			parsed.Year = &y
		}
		title = strings.Replace(title, m[0], "", 1)
	} else if m := extractorYearStandalone.FindString(name); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			currentYear := time.Now().Year()
			if y >= 1900 && y <= currentYear+1 {
				parsed.Year = &y
			}
		}
	}

	if m := extractorSeasonEpisode.FindStringSubmatch(name); m != nil {
		s, _ := strconv.Atoi(m[1])
		e, _ := strconv.Atoi(m[2])
		parsed.Season, parsed.Episode = &s, &e
		title = strings.Replace(title, m[0], "", 1)
	} else if m := extractorAltSeasonEpisode.FindStringSubmatch(name); m != nil {
		s, _ := strconv.Atoi(m[1])
		e, _ := strconv.Atoi(m[2])
		parsed.Season, parsed.Episode = &s, &e
		title = strings.Replace(title, m[0], "", 1)
	} else {
		if m := extractorSeason.FindStringSubmatch(name); m != nil {
			s, _ := strconv.Atoi(m[1])
			parsed.Season = &s
		}
		if m := extractorEpisode.FindStringSubmatch(name); m != nil {
			e, _ := strconv.Atoi(m[1])
			parsed.Episode = &e
		}
	}

	if m := extractorQuality.FindStringSubmatch(name); m != nil {
		parsed.Quality = strings.ToUpper(m[1])
		title = strings.Replace(title, m[0], "", 1)
	}

	parsed.IsMultiAudio = extractorMultiAudio.MatchString(name)
	parsed.IsDubbed = extractorDubbed.MatchString(name)
	parsed.IsSubbed = extractorSubbed.MatchString(name)

	if m := extractorLanguage.FindStringSubmatch(name); m != nil {
		parsed.Language = strings.ToUpper(m[1])
	}

	parsed.Title = CleanTitle(title)
	return parsed
}

// CleanTitle strips bracketed groups, quality/format/audio tokens, pipes,
// and collapses whitespace to produce a display-ready title.
func CleanTitle(title string) string {
	s := cleanBrackets.ReplaceAllString(title, "")
	s = cleanQuality.ReplaceAllString(s, "")
	s = cleanFormats.ReplaceAllString(s, "")
	s = cleanAudio.ReplaceAllString(s, "")
	s = cleanPipes.ReplaceAllString(s, " ")
	s = cleanMultiSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = cleanTrailingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func removePrefixes(title string) string {
	s := prefixCleaner.ReplaceAllString(title, "")
	s = numberingCleaner.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Classify is the method form of the package-level Classify function,
// for callers that only hold a *Classifier (the parser's hot loop needs
// both this and ExtractSeriesInfo off the same value).
func (c *Classifier) Classify(name, group string) MediaKind {
	return Classify(name, group)
}

// ExtractSeriesInfo detects a (series, season, episode) triple in name,
// trying the SxxExx, NxNN, and TxxExx patterns in order after stripping
// leading decorations. Results are memoized; a nil return (not cached as
// a miss distinct from "no match") is cached too, matching the original's
// "cache null results" behavior so repeated non-series titles skip regex
// re-evaluation.
func (c *Classifier) ExtractSeriesInfo(name string) *SeriesInfo {
	if cached, ok := c.seriesCache.Get(name); ok {
		return cached
	}

	clean := removePrefixes(name)

	var info *SeriesInfo
	if m := seriesMainPattern.FindStringSubmatch(clean); m != nil {
		info = buildSeriesInfo(m)
	} else if m := seriesAltPattern.FindStringSubmatch(clean); m != nil {
		info = buildSeriesInfo(m)
	} else if m := seriesPTPattern.FindStringSubmatch(clean); m != nil {
		info = buildSeriesInfo(m)
	}

	c.seriesCache.Add(name, info)
	return info
}

func buildSeriesInfo(m []string) *SeriesInfo {
	season, _ := strconv.Atoi(m[2])
	episode, _ := strconv.Atoi(m[3])
	return &SeriesInfo{
		SeriesName: strings.TrimSpace(m[1]),
		Season:     season,
		Episode:    episode,
	}
}
