package sourcedetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCredentialsValid(t *testing.T) {
	creds, ok := ExtractCredentials("http://example.com:8080/get.php?username=testuser&password=testpass&type=m3u_plus&output=ts")
	require.True(t, ok)
	assert.Equal(t, "http://example.com:8080", creds.Server)
	assert.Equal(t, "testuser", creds.Username)
	assert.Equal(t, "testpass", creds.Password)
}

func TestExtractCredentialsHTTPSNoPort(t *testing.T) {
	creds, ok := ExtractCredentials("https://secure.example.com/get.php?username=user&password=pass")
	require.True(t, ok)
	assert.Equal(t, "https://secure.example.com", creds.Server)
}

func TestExtractCredentialsNotXtream(t *testing.T) {
	_, ok := ExtractCredentials("http://example.com/playlist.m3u")
	assert.False(t, ok)

	_, ok = ExtractCredentials("http://example.com/api/streams?username=user&password=pass")
	assert.False(t, ok)
}

func TestExtractCredentialsMissingParams(t *testing.T) {
	_, ok := ExtractCredentials("http://example.com/get.php?username=user")
	assert.False(t, ok)

	_, ok = ExtractCredentials("http://example.com/get.php?password=pass")
	assert.False(t, ok)
}

func TestParseDuration(t *testing.T) {
	secs, ok := ParseDuration("01:30:00")
	require.True(t, ok)
	assert.Equal(t, 5400, secs)

	secs, ok = ParseDuration("90 min")
	require.True(t, ok)
	assert.Equal(t, 5400, secs)

	secs, ok = ParseDuration("5400")
	require.True(t, ok)
	assert.Equal(t, 5400, secs)
}

func TestNormalizeRating(t *testing.T) {
	assert.Equal(t, 8.5, NormalizeRating(85))
	assert.Equal(t, 8.5, NormalizeRating(8.5))
}

func TestSplitCSVField(t *testing.T) {
	got := SplitCSVField("Alice, Bob ,  Carol ")
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, got)
}

func TestTimestampRoundTrip(t *testing.T) {
	iso, ok := UnixToISO8601("1700000000")
	require.True(t, ok)
	back, ok := ISO8601ToUnix(iso)
	require.True(t, ok)
	assert.Equal(t, "1700000000", back)
}
