// Package source implements the content providers songs are searched on
// and streamed from.
package source

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamify/streamify/internal/song"
)

// requestTimeout bounds every provider network call so a slow mirror fails
// over instead of stalling playback.
const requestTimeout = 5 * time.Second

// StreamSource is the capability contract every provider implements.
type StreamSource interface {
	// Search returns best-effort matches for a text query. No results is
	// an empty slice, not an error; errors indicate transport or parse
	// failure of the provider as a whole.
	Search(ctx context.Context, query string, limit int) ([]song.Song, error)

	// StreamURL resolves a playable URL for a provider-scoped id. It
	// returns "" with a nil error when the id is simply unknown to this
	// provider; a non-nil error means transport failure. Callers treat
	// both the same (try the next provider), the distinction exists for
	// diagnostics.
	StreamURL(ctx context.Context, id string) (string, error)

	// Recommendations returns related tracks. Best effort: empty on
	// failure, never an error.
	Recommendations(ctx context.Context, id string) []song.Song

	// Charts returns trending/default content. Best effort: empty on
	// failure, never an error.
	Charts(ctx context.Context) []song.Song
}

func newClient() *resty.Client {
	return resty.New().SetTimeout(requestTimeout)
}

// rotation is a round-robin cursor over a mirror list. The cursor is
// shared across all calls on a provider, not reset between search and
// stream resolution.
type rotation struct {
	mu   sync.Mutex
	next int
}

func (r *rotation) pick(mirrors []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := mirrors[r.next%len(mirrors)]
	r.next++
	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
