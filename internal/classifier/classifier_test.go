package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLive24h(t *testing.T) {
	assert.Equal(t, Live, Classify("24H • Breaking Bad", "SERIES 24H"))
	assert.Equal(t, Live, Classify("Canal ao vivo", "TV"))
	assert.Equal(t, Live, Classify("Globo HD", "Canais"))
}

func TestClassifyMovie(t *testing.T) {
	assert.Equal(t, Movie, Classify("Matrix (1999)", "Filmes"))
	assert.Equal(t, Movie, Classify("Avatar 2 4K Dublado", "VOD"))
	assert.Equal(t, Movie, Classify("Flow (2024) Legendado", "Cinema"))
}

func TestClassifySeries(t *testing.T) {
	assert.Equal(t, Series, Classify("Breaking Bad S01E01", "Series"))
	assert.Equal(t, Series, Classify("Game of Thrones 1x01", "HBO"))
	assert.Equal(t, Series, Classify("La Casa de Papel T01E01", "Netflix"))
}

// E3 from spec.md §8: 24h-override beats series-term.
func TestClassifyOverrideBeatsSeriesTerm(t *testing.T) {
	assert.Equal(t, Live, Classify("24H • Harry Potter", "Séries 24h"))
}

func TestClassifyCollectionException(t *testing.T) {
	// Movie franchises using S##E## under a "coletânea" group are movies,
	// not series (spec §4.1 high-priority override).
	assert.Equal(t, Movie, Classify("Harry Potter S01E01", "Coletânea Filmes"))
}

func TestClassifyUnknownWhenAmbiguous(t *testing.T) {
	assert.Equal(t, Unknown, Classify("Show", "Destaques"))
}

func TestClassifyIsPureAndTotal(t *testing.T) {
	k1 := Classify("Breaking Bad S01E05", "Series")
	k2 := Classify("Breaking Bad S01E05", "Series")
	assert.Equal(t, k1, k2)
}

func TestParseTitle(t *testing.T) {
	parsed := ParseTitle("Breaking Bad S01E05 720p Dublado")
	require.NotNil(t, parsed.Season)
	require.NotNil(t, parsed.Episode)
	assert.Equal(t, 1, *parsed.Season)
	assert.Equal(t, 5, *parsed.Episode)
	assert.Equal(t, "720P", parsed.Quality)
	assert.True(t, parsed.IsDubbed)
}

func TestParseTitleYearInParens(t *testing.T) {
	parsed := ParseTitle("Matrix (1999)")
	require.NotNil(t, parsed.Year)
	assert.Equal(t, 1999, *parsed.Year)
}

func TestExtractSeriesInfo(t *testing.T) {
	c := New(100)
	info := c.ExtractSeriesInfo("Breaking Bad S02E10")
	require.NotNil(t, info)
	assert.Equal(t, "Breaking Bad", info.SeriesName)
	assert.Equal(t, 2, info.Season)
	assert.Equal(t, 10, info.Episode)
}

func TestExtractSeriesInfoAltFormat(t *testing.T) {
	c := New(100)
	info := c.ExtractSeriesInfo("Breaking Bad 1x01")
	require.NotNil(t, info)
	assert.Equal(t, "Breaking Bad", info.SeriesName)
	assert.Equal(t, 1, info.Season)
	assert.Equal(t, 1, info.Episode)
}

func TestExtractSeriesInfoCachesMisses(t *testing.T) {
	c := New(100)
	assert.Nil(t, c.ExtractSeriesInfo("Pasárgada"))
	// Second call hits the cache and should remain nil, not recompute into
	// a spurious match.
	assert.Nil(t, c.ExtractSeriesInfo("Pasárgada"))
}

func TestExtractSeriesInfoEvictsUnderCapacity(t *testing.T) {
	c := New(1)
	c.ExtractSeriesInfo("Show A S01E01")
	c.ExtractSeriesInfo("Show B S01E01")
	// Capacity 1: "Show A" should have been evicted, but the cache must
	// not panic or error on re-lookup, and should recompute correctly.
	info := c.ExtractSeriesInfo("Show A S01E01")
	require.NotNil(t, info)
	assert.Equal(t, "Show A", info.SeriesName)
}

func TestCleanTitle(t *testing.T) {
	got := CleanTitle("Matrix [Legendado] 1080p Dublado | x264")
	assert.Equal(t, "Matrix", got)
}
