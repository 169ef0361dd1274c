package m3u

import "github.com/wayidiomas/ativeplay-mvp/internal/classifier"

// Item is a single parsed and classified stream, ready to hand to the
// persistent store's bulk writer.
type Item struct {
	Hash        string
	Name        string
	URL         string
	LogoURL     string
	GroupName   string
	MediaKind   classifier.MediaKind
	ParsedTitle *classifier.ParsedTitle
	SeriesHash  string // back-reference; empty unless MediaKind == Series
	Season      *int
	Episode     *int
	SortOrder   int
}

// Group is an aggregated group record built while parsing.
type Group struct {
	Hash      string
	Name      string
	MediaKind classifier.MediaKind
	ItemCount int
	LogoURL   string
}

// SeriesEpisode is an episode belonging to a built Series.
type SeriesEpisode struct {
	ItemHash string
	Name     string
	Season   int
	Episode  int
	URL      string
}

// SeasonData groups a Series' episodes by season number.
type SeasonData struct {
	SeasonNumber int
	Episodes     []SeriesEpisode
}

// Series is a finalized series record with episodes grouped into ordered
// seasons.
type Series struct {
	Hash          string
	Name          string
	Group         string
	LogoURL       string
	Year          *int
	Quality       string
	TotalEpisodes int
	TotalSeasons  int
	FirstSeason   int
	LastSeason    int
	SeasonsData   []SeasonData
}

// Stats are the denormalized playlist counts produced by a parse.
type Stats struct {
	Total   int
	Live    int
	Movie   int
	Series  int
	Unknown int
	Groups  int
}

// Result is the full output of a completed parse.
type Result struct {
	Stats  Stats
	Groups []Group
	Series []Series
}
