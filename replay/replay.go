// Package replay drives an engine from recorded bar data.
package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yanun0323/logs"

	"github.com/rustyeddy/papertrader/market"
)

// Feed yields snapshots in timestamp order. ok is false once exhausted.
type Feed interface {
	Next() (snap market.Snapshot, at time.Time, ok bool, err error)
}

// Ticker consumes snapshots.
type Ticker interface {
	Tick(snap market.Snapshot, now time.Time) error
}

// Options tunes a replay.
type Options struct {
	// From and To bound the replayed timestamps. Zero values are open.
	From time.Time
	To   time.Time

	// StopOnError aborts on the first rejected tick instead of logging it.
	StopOnError bool
}

// Stats summarizes a replay.
type Stats struct {
	Ticks   int
	Skipped int
	First   time.Time
	Last    time.Time
}

// Run feeds every snapshot from feed into t until the feed is exhausted or
// ctx is done.
func Run(ctx context.Context, feed Feed, t Ticker, opts Options) (Stats, error) {
	var stats Stats

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		snap, at, ok, err := feed.Next()
		if err != nil {
			return stats, fmt.Errorf("read feed: %w", err)
		}
		if !ok {
			return stats, nil
		}

		if !opts.From.IsZero() && at.Before(opts.From) {
			stats.Skipped++
			continue
		}
		if !opts.To.IsZero() && at.After(opts.To) {
			return stats, nil
		}

		if err := t.Tick(snap, at); err != nil {
			if opts.StopOnError {
				return stats, fmt.Errorf("tick at %s: %w", at.Format(time.RFC3339), err)
			}
			logs.Warnf("tick at %s: %v", at.Format(time.RFC3339), err)
			stats.Skipped++
			continue
		}

		if stats.Ticks == 0 {
			stats.First = at
		}
		stats.Last = at
		stats.Ticks++
	}
}

// CSV replays a bar CSV file into t.
func CSV(ctx context.Context, path string, t Ticker, opts Options) (Stats, error) {
	feed, err := market.NewCSVFeed(path)
	if err != nil {
		return Stats{}, err
	}
	defer feed.Close()

	stats, err := Run(ctx, feed, t, opts)
	if errors.Is(err, context.Canceled) {
		logs.Infof("replay of %s cancelled after %d ticks", path, stats.Ticks)
	}
	return stats, err
}
