package m3u

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayidiomas/ativeplay-mvp/internal/classifier"
)

// fakeWriter records every item handed to it, standing in for the
// persistent store's bulk writer in tests.
type fakeWriter struct {
	items    []Item
	finished bool
}

func (w *fakeWriter) WriteItem(_ context.Context, item Item) error {
	w.items = append(w.items, item)
	return nil
}

func (w *fakeWriter) Finish(context.Context) (int, error) {
	w.finished = true
	return len(w.items), nil
}

func parse(t *testing.T, body string) (Result, *fakeWriter) {
	t.Helper()
	w := &fakeWriter{}
	cls := classifier.New(100)
	result, err := Parse(context.Background(), strings.NewReader(body), cls, w, NoopProgress{}, nil, Options{})
	require.NoError(t, err)
	return result, w
}

// E1 from spec §8: duplicate URL is skipped; distinct URL under the same
// group is retained.
func TestParseDedup(t *testing.T) {
	body := `#EXTM3U
#EXTINF:-1 group-title="A",X
http://x/1
#EXTINF:-1 group-title="A",X
http://x/1
#EXTINF:-1 group-title="A",Y
http://x/2
`
	result, w := parse(t, body)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 0, result.Stats.Live)
	assert.Equal(t, 0, result.Stats.Movie)
	assert.Equal(t, 0, result.Stats.Series)
	assert.Equal(t, 2, result.Stats.Unknown)
	assert.Equal(t, 1, result.Stats.Groups)
	assert.Len(t, w.items, 2)
	assert.True(t, w.finished)
}

// E2 from spec §8: contiguous episodes of the same series are
// run-length-encoded into a single series with ordered seasons.
func TestParseSeriesRLE(t *testing.T) {
	body := `#EXTM3U
#EXTINF:-1 group-title="Series",Breaking Bad S01E01
http://x/bb-s01e01
#EXTINF:-1 group-title="Series",Breaking Bad S01E02
http://x/bb-s01e02
#EXTINF:-1 group-title="Series",Breaking Bad S02E01
http://x/bb-s02e01
`
	result, _ := parse(t, body)
	require.Len(t, result.Series, 1)
	s := result.Series[0]
	assert.Equal(t, "Breaking Bad", s.Name)
	assert.Equal(t, 3, s.TotalEpisodes)
	assert.Equal(t, 2, s.TotalSeasons)
	assert.Equal(t, 1, s.FirstSeason)
	assert.Equal(t, 2, s.LastSeason)
	require.Len(t, s.SeasonsData, 2)
	assert.Equal(t, 1, s.SeasonsData[0].SeasonNumber)
	assert.Len(t, s.SeasonsData[0].Episodes, 2)
	assert.Equal(t, 2, s.SeasonsData[1].SeasonNumber)
	assert.Len(t, s.SeasonsData[1].Episodes, 1)
}

// Two runs of the same series separated by an unrelated item still merge
// into one series record (accumulator merge, not just RLE-adjacent).
func TestParseSeriesRunsMergeAcrossInterruption(t *testing.T) {
	body := `#EXTM3U
#EXTINF:-1 group-title="Series",Breaking Bad S01E01
http://x/bb-s01e01
#EXTINF:-1 group-title="Movies",Matrix (1999)
http://x/matrix
#EXTINF:-1 group-title="Series",Breaking Bad S01E02
http://x/bb-s01e02
`
	result, _ := parse(t, body)
	require.Len(t, result.Series, 1)
	assert.Equal(t, 2, result.Series[0].TotalEpisodes)
}

func TestParseEmptyPlaylistSucceedsWithZeroCounts(t *testing.T) {
	result, w := parse(t, "#EXTM3U\n")
	assert.Equal(t, 0, result.Stats.Total)
	assert.Equal(t, 0, result.Stats.Groups)
	assert.Empty(t, result.Groups)
	assert.Empty(t, result.Series)
	assert.True(t, w.finished)
}

func TestParseMissingHeaderFails(t *testing.T) {
	w := &fakeWriter{}
	cls := classifier.New(10)
	_, err := Parse(context.Background(), strings.NewReader("#EXTINF:-1,X\nhttp://x/1\n"), cls, w, NoopProgress{}, nil, Options{})
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseLineTooLongFails(t *testing.T) {
	longLine := "#EXTINF:-1 group-title=\"" + strings.Repeat("a", 40*1024) + "\",X"
	body := "#EXTM3U\n" + longLine + "\nhttp://x/1\n"
	w := &fakeWriter{}
	cls := classifier.New(10)
	_, err := Parse(context.Background(), strings.NewReader(body), cls, w, NoopProgress{}, nil, Options{MaxLineBytes: 32 * 1024})
	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestParseDefaultGroupAppliedWhenMissing(t *testing.T) {
	body := "#EXTM3U\n#EXTINF:-1,NoGroup\nhttp://x/1\n"
	result, _ := parse(t, body)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Sem Grupo", result.Groups[0].Name)
}

func TestParseNormalizesWhitespace(t *testing.T) {
	body := "#EXTM3U\n#EXTINF:-1 group-title=\"A   B\",X    Y\nhttp://x/1\n"
	result, w := parse(t, body)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "A B", result.Groups[0].Name)
	assert.Equal(t, "X Y", w.items[0].Name)
}

func TestParseSortOrderIsMonotonicAmongRetained(t *testing.T) {
	body := `#EXTM3U
#EXTINF:-1 group-title="A",X
http://x/1
#EXTINF:-1 group-title="A",X
http://x/1
#EXTINF:-1 group-title="A",Y
http://x/2
`
	_, w := parse(t, body)
	require.Len(t, w.items, 2)
	assert.Equal(t, 0, w.items[0].SortOrder)
	assert.Equal(t, 1, w.items[1].SortOrder)
}
