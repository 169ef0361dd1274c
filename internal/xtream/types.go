package xtream

// Category is a live/VOD/series category as returned by get_*_categories.
type Category struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     FlexInt    `json:"parent_id"`
}

// LiveStream is one entry from get_live_streams.
type LiveStream struct {
	StreamID     FlexInt    `json:"stream_id"`
	Name         string     `json:"name"`
	StreamIcon   string     `json:"stream_icon"`
	EPGChannelID string     `json:"epg_channel_id"`
	CategoryID   FlexString `json:"category_id"`
	TVArchive    FlexBool   `json:"tv_archive"`
}

// VODStream is one entry from get_vod_streams.
type VODStream struct {
	StreamID   FlexInt    `json:"stream_id"`
	Name       string     `json:"name"`
	StreamIcon string     `json:"stream_icon"`
	CategoryID FlexString `json:"category_id"`
	Rating     FlexString `json:"rating"`
	Added      FlexString `json:"added"`
}

// VODInfo is the response body of get_vod_info.
type VODInfo struct {
	Info          VODInfoDetail `json:"info"`
	MovieData     VODMovieData  `json:"movie_data"`
}

// VODInfoDetail carries the descriptive metadata of a VOD item.
type VODInfoDetail struct {
	Name        string     `json:"name"`
	Plot        string     `json:"plot"`
	Cast        string     `json:"cast"`
	Director    string     `json:"director"`
	Genre       string     `json:"genre"`
	ReleaseDate string     `json:"releasedate"`
	Rating      FlexString `json:"rating"`
	Duration    FlexString `json:"duration"`
	CoverBig    string     `json:"cover_big"`
}

// VODMovieData carries the stream-id/container info needed to build a
// playback URL.
type VODMovieData struct {
	StreamID      FlexInt `json:"stream_id"`
	ContainerExt  string  `json:"container_extension"`
}

// SeriesListing is one entry from get_series.
type SeriesListing struct {
	SeriesID FlexInt    `json:"series_id"`
	Name     string     `json:"name"`
	Cover    string     `json:"cover"`
	CategoryID FlexString `json:"category_id"`
	Plot     string     `json:"plot"`
	Cast     string     `json:"cast"`
	Genre    string     `json:"genre"`
	ReleaseDate string  `json:"releaseDate"`
	Rating   FlexString `json:"rating"`
}

// SeriesInfoEpisode is one episode entry inside get_series_info's
// episodes-by-season map.
type SeriesInfoEpisode struct {
	ID            FlexString            `json:"id"`
	EpisodeNum    FlexInt                `json:"episode_num"`
	Title         string                 `json:"title"`
	ContainerExt  string                 `json:"container_extension"`
	Info          map[string]interface{} `json:"info"`
}

// SeriesInfoSeason is an entry in get_series_info's optional seasons
// array.
type SeriesInfoSeason struct {
	SeasonNumber FlexInt `json:"season_number"`
	Name         string  `json:"name"`
	Cover        string  `json:"cover"`
}

// SeriesInfoResponse is the raw decode target for get_series_info.
// Episodes is keyed by season number as a string (Xtream's convention);
// it may be null.
type SeriesInfoResponse struct {
	Seasons []SeriesInfoSeason               `json:"seasons"`
	Info    SeriesListing                    `json:"info"`
	Episodes map[string][]SeriesInfoEpisode  `json:"episodes"`
}

// ShortEPGEntry is one program from get_short_epg.
type ShortEPGEntry struct {
	ID          FlexString `json:"id"`
	Title       string     `json:"title"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Description string     `json:"description"`
}

type shortEPGResponse struct {
	EPGListings []ShortEPGEntry `json:"epg_listings"`
}
