// Package hashutil provides the stable identifiers used throughout the
// ingestion pipeline: the playlist hash (SHA1 of its URL) and the
// cheaper dedup hash used in the parser's hot loop.
package hashutil

import (
	"crypto/sha1"
	"encoding/hex"
	"hash/fnv"
)

// PlaylistHash returns the lowercase hex SHA1 of url. This is the
// playlist's externally visible identifier; it is derived purely from
// URL text, so identical URLs collide deterministically.
func PlaylistHash(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// GroupHash returns the lowercase hex SHA1 of a normalized group name.
func GroupHash(normalizedName string) string {
	sum := sha1.Sum([]byte(normalizedName))
	return hex.EncodeToString(sum[:])
}

// SeriesHash returns the lowercase hex SHA1 of "group_seriesName".
func SeriesHash(normalizedGroup, seriesName string) string {
	sum := sha1.Sum([]byte(normalizedGroup + "_" + seriesName))
	return hex.EncodeToString(sum[:])
}

// ItemHash returns the lowercase hex SHA1 of a stream URL. Used as the
// item's stable identifier when the URL itself is not reused elsewhere.
func ItemHash(streamURL string) string {
	sum := sha1.Sum([]byte(streamURL))
	return hex.EncodeToString(sum[:])
}

// DedupKey returns a cheap 64-bit hash of url for use as an in-memory
// set key during the parse hot loop, where a full SHA1 per item would be
// wasteful. Collisions are acceptable here only in the probabilistic
// sense FNV-1a provides for this workload's scale (tens of thousands to
// low millions of URLs per playlist).
func DedupKey(url string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(url))
	return h.Sum64()
}
