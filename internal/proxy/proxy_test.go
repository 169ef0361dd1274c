package proxy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteManifestRewritesDataLinesAndKeyURI(t *testing.T) {
	body := strings.Join([]string{
		"#EXTM3U",
		"#EXT-X-KEY:METHOD=AES-128,URI=\"key.bin\"",
		"",
		"#EXTINF:10.0,",
		"segment1.ts",
		"segment2.ts",
	}, "\n")

	out, err := RewriteManifest(body, "http://origin.example/live/index.m3u8", "http://referer.example", "https://proxy.example")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "#EXTM3U", lines[0])
	assert.Contains(t, lines[1], `URI="https://proxy.example/api/proxy/hls?`)
	assert.Contains(t, lines[1], "url=http%3A%2F%2Forigin.example%2Flive%2Fkey.bin")
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "#EXTINF:10.0,", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "https://proxy.example/api/proxy/hls?url=http%3A%2F%2Forigin.example%2Flive%2Fsegment1.ts"))
	assert.Contains(t, lines[4], "referer=http%3A%2F%2Freferer.example")
	assert.True(t, strings.HasPrefix(lines[5], "https://proxy.example/api/proxy/hls?url=http%3A%2F%2Forigin.example%2Flive%2Fsegment2.ts"))
}

func TestIsManifestDetectsByContentTypeAndExtension(t *testing.T) {
	assert.True(t, isManifest("application/vnd.apple.mpegurl", "http://x/y"))
	assert.True(t, isManifest("", "http://x/y.m3u8"))
	assert.True(t, isManifest("", "http://x/y.m3u"))
	assert.False(t, isManifest("video/mp2t", "http://x/y.ts"))
}

func TestGuessContentTypeByExtension(t *testing.T) {
	assert.Equal(t, "application/vnd.apple.mpegurl", guessContentType("http://x/a.m3u8"))
	assert.Equal(t, "video/mp4", guessContentType("http://x/a.mp4?token=1"))
	assert.Equal(t, "video/x-matroska", guessContentType("http://x/a.mkv"))
	assert.Equal(t, "video/x-msvideo", guessContentType("http://x/a.avi"))
	assert.Equal(t, "video/MP2T", guessContentType("http://x/a.ts"))
}

func TestParseRangeHeader(t *testing.T) {
	start, end, ok := ParseRangeHeader("bytes=0-499")
	require.True(t, ok)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(499), end)

	_, _, ok = ParseRangeHeader("not-a-range")
	assert.False(t, ok)
}
