package cleanup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerDefaultsIntervalAndWatchKeep(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, time.Hour, w.interval())
	assert.Equal(t, defaultWatchHistoryKeep, w.watchKeep())
}

func TestWorkerHonorsConfiguredIntervalAndWatchKeep(t *testing.T) {
	w := &Worker{Interval: 5 * time.Minute, WatchKeep: 25}
	assert.Equal(t, 5*time.Minute, w.interval())
	assert.Equal(t, 25, w.watchKeep())
}
