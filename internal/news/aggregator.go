// ABOUTME: Fans headline fetches out across sources and assembles the ordered Result
// ABOUTME: A failure or panic in one source never cancels or taints the others

package news

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Aggregator fetches headlines from a fixed set of sources.
type Aggregator struct {
	sources []Source
	fetcher HeadlineFetcher
	logger  *slog.Logger
}

// NewAggregator creates an aggregator over sources using fetcher.
func NewAggregator(sources []Source, fetcher HeadlineFetcher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	srcs := make([]Source, len(sources))
	copy(srcs, sources)
	return &Aggregator{
		sources: srcs,
		fetcher: fetcher,
		logger:  logger.With("component", "aggregator"),
	}
}

// Sources returns the configured sources in order.
func (a *Aggregator) Sources() []Source {
	out := make([]Source, len(a.sources))
	copy(out, a.sources)
	return out
}

// Select applies the advisory source filter. Names that match no configured
// source are ignored; an empty filter, or one that matches nothing, selects
// every source.
func (a *Aggregator) Select(filter []string) []Source {
	if len(filter) == 0 {
		return a.Sources()
	}

	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		wanted[name] = true
	}

	var selected []Source
	for _, src := range a.sources {
		if wanted[src.Name] {
			selected = append(selected, src)
		}
	}
	if len(selected) == 0 {
		a.logger.Debug("source filter matched nothing, using all sources", "filter", filter)
		return a.Sources()
	}
	return selected
}

// Fetch retrieves headlines for the selected sources concurrently and returns
// them in configured order. Individual source failures yield empty lists; the
// only error is the caller's context ending before the fetches complete.
func (a *Aggregator) Fetch(ctx context.Context, filter []string) (Result, error) {
	selected := a.Select(filter)
	result := make(Result, len(selected))

	var g errgroup.Group
	for i, src := range selected {
		result[i] = SourceHeadlines{Source: src.Name, Headlines: []string{}}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("headline fetch panicked", "source", src.Name, "panic", fmt.Sprint(r))
				}
			}()
			if headlines := a.fetcher.FetchHeadlines(ctx, src); headlines != nil {
				result[i].Headlines = headlines
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
