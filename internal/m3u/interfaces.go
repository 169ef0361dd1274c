package m3u

import "context"

// ItemWriter receives classified items as the parser discovers them,
// without the m3u package needing to import the persistent store
// package directly. The orchestrator supplies a concrete implementation
// backed by a bulk-copy streaming writer.
type ItemWriter interface {
	WriteItem(ctx context.Context, item Item) error
	// Finish flushes any buffered rows and returns the total item count
	// written.
	Finish(ctx context.Context) (int, error)
}

// ProgressReporter publishes incremental parse progress without the m3u
// package importing the coordination-store package directly.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, itemsParsed, groupsCount, seriesCount int, phase string)
}

// NoopProgress discards progress reports; useful for tests or one-off
// parses where no coordination store is wired in.
type NoopProgress struct{}

func (NoopProgress) ReportProgress(context.Context, int, int, int, string) {}
