// Package router selects provider order for search and stream resolution,
// failing over between sources and tracking per-source performance.
package router

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/streamify/streamify/internal/song"
	"github.com/streamify/streamify/internal/source"
)

const (
	failurePenalty = 20
	minScore       = 10
	unknownScore   = 50
)

// ErrAllSourcesFailed reports stream-resolution exhaustion. Unlike search,
// stream resolution never falls back to the embedded catalog: playing an
// unrelated embedded file instead of the requested track would be worse
// than failing.
var ErrAllSourcesFailed = errors.New("all sources failed to resolve a stream url")

// Router fans requests out over the stream sources. Search tries a fixed
// priority order and degrades to the embedded catalog; stream resolution
// starts at the song's own source and walks a fixed fallback list.
type Router struct {
	piped      source.StreamSource
	invidious  source.StreamSource
	youtube    source.StreamSource
	soundcloud source.StreamSource
	embedded   source.StreamSource

	mu     sync.Mutex
	scores map[song.Source]float64

	chartsMu      sync.RWMutex
	charts        []song.Song
	refreshTicker *time.Ticker
	stopRefresh   chan struct{}
	onRefresh     func([]song.Song)
}

func New(piped, invidious, youtube, soundcloud, embedded source.StreamSource) *Router {
	return &Router{
		piped:      piped,
		invidious:  invidious,
		youtube:    youtube,
		soundcloud: soundcloud,
		embedded:   embedded,
		scores: map[song.Source]float64{
			song.SourcePiped:      100,
			song.SourceInvidious:  80,
			song.SourceYouTube:    60,
			song.SourceSoundCloud: 70,
			song.SourceEmbedded:   90,
		},
	}
}

// Search tries sources in fixed priority order, short-circuiting on the
// first non-empty result. Failing sources are penalized and skipped. The
// embedded catalog is the terminal fallback, so "no results" only happens
// when even its filter matches nothing.
func (r *Router) Search(ctx context.Context, query string, limit int) []song.Song {
	order := []struct {
		id  song.Source
		src source.StreamSource
	}{
		{song.SourcePiped, r.piped},
		{song.SourceInvidious, r.invidious},
		{song.SourceYouTube, r.youtube},
	}

	for _, c := range order {
		start := time.Now()
		results, err := c.src.Search(ctx, query, limit)
		if err != nil {
			log.Warn().Err(err).Str("source", string(c.id)).Msg("Search failed")
			r.penalize(c.id)
			continue
		}
		r.recordSuccess(c.id, time.Since(start))
		if len(results) > 0 {
			log.Debug().Str("source", string(c.id)).Int("count", len(results)).Msg("Search succeeded")
			return results
		}
	}

	log.Debug().Str("query", query).Msg("All sources empty or failing, using embedded catalog")
	results, _ := r.embedded.Search(ctx, query, limit)
	return results
}

// StreamURL resolves a playable URL for a song, trying the provider that
// produced it first. Ids are provider-scoped, so the fallback chain is a
// best-effort guess that only covers providers sharing the same id
// namespace; soundcloud and embedded are excluded from it and reached only
// via the song's own source tag.
func (r *Router) StreamURL(ctx context.Context, s song.Song) (string, error) {
	primary := s.Source
	if primary == "" {
		primary = song.SourcePiped
	}

	if url, ok := r.tryStream(ctx, primary, s.ID, true); ok {
		return url, nil
	}

	for _, fb := range []song.Source{song.SourcePiped, song.SourceInvidious, song.SourceYouTube} {
		if fb == primary {
			continue
		}
		if url, ok := r.tryStream(ctx, fb, s.ID, false); ok {
			log.Debug().Str("source", string(fb)).Str("id", s.ID).Msg("Stream resolved via fallback")
			return url, nil
		}
	}

	return "", ErrAllSourcesFailed
}

func (r *Router) tryStream(ctx context.Context, id song.Source, songID string, penalizeFailure bool) (string, bool) {
	src := r.sourceFor(id)
	if src == nil {
		return "", false
	}

	start := time.Now()
	url, err := src.StreamURL(ctx, songID)
	if err != nil {
		log.Warn().Err(err).Str("source", string(id)).Str("id", songID).Msg("Stream resolution failed")
		if penalizeFailure {
			r.penalize(id)
		}
		return "", false
	}
	if url == "" {
		log.Debug().Str("source", string(id)).Str("id", songID).Msg("Song unknown to source")
		return "", false
	}

	r.recordSuccess(id, time.Since(start))
	return url, true
}

func (r *Router) sourceFor(id song.Source) source.StreamSource {
	switch id {
	case song.SourcePiped:
		return r.piped
	case song.SourceInvidious:
		return r.invidious
	case song.SourceYouTube:
		return r.youtube
	case song.SourceSoundCloud:
		return r.soundcloud
	case song.SourceEmbedded:
		return r.embedded
	default:
		return nil
	}
}

// Recommendations asks the backend index, degrading to the embedded
// catalog so the caller always has something to offer.
func (r *Router) Recommendations(ctx context.Context, id string) []song.Song {
	if recs := r.youtube.Recommendations(ctx, id); len(recs) > 0 {
		return recs
	}
	return r.embedded.Recommendations(ctx, id)
}

// Charts fetches trending content and refreshes the cached copy.
func (r *Router) Charts(ctx context.Context) []song.Song {
	charts := r.youtube.Charts(ctx)
	if len(charts) == 0 {
		charts = r.embedded.Charts(ctx)
	}

	r.chartsMu.Lock()
	r.charts = make([]song.Song, len(charts))
	copy(r.charts, charts)
	r.chartsMu.Unlock()

	return charts
}

// CachedCharts returns the last fetched charts without touching the network.
func (r *Router) CachedCharts() []song.Song {
	r.chartsMu.RLock()
	defer r.chartsMu.RUnlock()
	result := make([]song.Song, len(r.charts))
	copy(result, r.charts)
	return result
}

func (r *Router) StartPeriodicChartsRefresh(interval time.Duration, callback func([]song.Song)) {
	r.StopPeriodicChartsRefresh()

	r.chartsMu.Lock()
	r.onRefresh = callback
	r.stopRefresh = make(chan struct{})
	r.refreshTicker = time.NewTicker(interval)
	ticker := r.refreshTicker
	stopCh := r.stopRefresh
	r.chartsMu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				r.refreshChartsInBackground()
			case <-stopCh:
				ticker.Stop()
				return
			}
		}
	}()

	log.Debug().Dur("interval", interval).Msg("Started periodic charts refresh")
}

func (r *Router) StopPeriodicChartsRefresh() {
	r.chartsMu.Lock()
	defer r.chartsMu.Unlock()

	if r.stopRefresh != nil {
		close(r.stopRefresh)
		r.stopRefresh = nil
	}
}

func (r *Router) refreshChartsInBackground() {
	charts := r.Charts(context.Background())

	r.chartsMu.RLock()
	callback := r.onRefresh
	r.chartsMu.RUnlock()

	if callback != nil {
		callback(charts)
	}
	log.Debug().Int("count", len(charts)).Msg("Charts refreshed in background")
}

// recordSuccess rescores a source from its latest response time. The score
// is a fresh speed measure, not a smoothed average.
func (r *Router) recordSuccess(id song.Source, elapsed time.Duration) {
	score := 100 - float64(elapsed.Milliseconds())/100
	if score < minScore {
		score = minScore
	}

	r.mu.Lock()
	r.scores[id] = score
	r.mu.Unlock()
}

func (r *Router) penalize(id song.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.scores[id]
	if !ok {
		current = unknownScore
	}
	current -= failurePenalty
	if current < minScore {
		current = minScore
	}
	r.scores[id] = current
}

// SourceStats returns a read-only snapshot of the performance table. The
// scores are advisory; they do not alter the fixed try-order.
func (r *Router) SourceStats() map[song.Source]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make(map[song.Source]float64, len(r.scores))
	for k, v := range r.scores {
		stats[k] = v
	}
	return stats
}
