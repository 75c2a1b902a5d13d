package router

import (
	"context"
	"errors"
	"testing"

	"github.com/streamify/streamify/internal/song"
)

// stubSource scripts one provider's behavior and records calls.
type stubSource struct {
	searchResults []song.Song
	searchErr     error
	streamURL     string
	streamErr     error

	searchCalls int
	streamCalls int
}

func (s *stubSource) Search(ctx context.Context, query string, limit int) ([]song.Song, error) {
	s.searchCalls++
	return s.searchResults, s.searchErr
}

func (s *stubSource) StreamURL(ctx context.Context, id string) (string, error) {
	s.streamCalls++
	return s.streamURL, s.streamErr
}

func (s *stubSource) Recommendations(ctx context.Context, id string) []song.Song {
	return s.searchResults
}

func (s *stubSource) Charts(ctx context.Context) []song.Song {
	return s.searchResults
}

func songsNamed(src song.Source, ids ...string) []song.Song {
	out := make([]song.Song, len(ids))
	for i, id := range ids {
		out[i] = song.Song{ID: id, Title: id, Source: src}
	}
	return out
}

func newTestRouter(piped, invidious, youtube, soundcloud, embedded *stubSource) *Router {
	return New(piped, invidious, youtube, soundcloud, embedded)
}

func TestSearchPriorityOrder(t *testing.T) {
	piped := &stubSource{searchResults: songsNamed(song.SourcePiped, "p1")}
	invidious := &stubSource{searchResults: songsNamed(song.SourceInvidious, "i1")}
	youtube := &stubSource{}
	embedded := &stubSource{}

	r := newTestRouter(piped, invidious, youtube, &stubSource{}, embedded)
	results := r.Search(context.Background(), "q", 10)

	if len(results) != 1 || results[0].ID != "p1" {
		t.Fatalf("Search() = %v, want piped's result", results)
	}
	if invidious.searchCalls != 0 {
		t.Error("invidious should not be consulted when piped succeeds")
	}
}

func TestSearchFailsOverAndPenalizes(t *testing.T) {
	piped := &stubSource{searchErr: errors.New("down")}
	invidious := &stubSource{searchResults: songsNamed(song.SourceInvidious, "i1")}

	r := newTestRouter(piped, invidious, &stubSource{}, &stubSource{}, &stubSource{})
	results := r.Search(context.Background(), "q", 10)

	if len(results) != 1 || results[0].ID != "i1" {
		t.Fatalf("Search() = %v, want invidious's result", results)
	}

	stats := r.SourceStats()
	if stats[song.SourcePiped] != 80 {
		t.Errorf("piped score after failure = %v, want 80 (100-20)", stats[song.SourcePiped])
	}
	if stats[song.SourceInvidious] < 10 {
		t.Errorf("invidious score = %v, want a fresh success score", stats[song.SourceInvidious])
	}
}

func TestSearchSkipsEmptyResults(t *testing.T) {
	piped := &stubSource{searchResults: []song.Song{}}
	invidious := &stubSource{searchResults: songsNamed(song.SourceInvidious, "i1")}

	r := newTestRouter(piped, invidious, &stubSource{}, &stubSource{}, &stubSource{})
	results := r.Search(context.Background(), "q", 10)

	if len(results) != 1 || results[0].ID != "i1" {
		t.Fatalf("empty piped results should fall through, got %v", results)
	}
}

func TestSearchEmbeddedFallback(t *testing.T) {
	failing := func() *stubSource { return &stubSource{searchErr: errors.New("down")} }
	embedded := &stubSource{searchResults: songsNamed(song.SourceEmbedded, "e1", "e2")}

	r := newTestRouter(failing(), failing(), failing(), &stubSource{}, embedded)
	results := r.Search(context.Background(), "q", 10)

	if len(results) != 2 || results[0].Source != song.SourceEmbedded {
		t.Fatalf("Search() = %v, want embedded catalog results", results)
	}
}

func TestStreamURLUsesPrimarySource(t *testing.T) {
	piped := &stubSource{streamURL: "https://piped/stream"}
	invidious := &stubSource{streamURL: "https://invidious/stream"}

	r := newTestRouter(piped, invidious, &stubSource{}, &stubSource{}, &stubSource{})

	url, err := r.StreamURL(context.Background(), song.Song{ID: "x", Source: song.SourceInvidious})
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if url != "https://invidious/stream" {
		t.Errorf("StreamURL() = %q, want the song's own source first", url)
	}
	if piped.streamCalls != 0 {
		t.Error("piped should not be consulted when the primary source resolves")
	}
}

func TestStreamURLFallbackPenalizesOnlyPrimary(t *testing.T) {
	piped := &stubSource{streamErr: errors.New("down")}
	invidious := &stubSource{streamErr: errors.New("also down")}
	youtube := &stubSource{streamURL: "https://backend/stream"}
	embedded := &stubSource{streamURL: "https://embedded/never"}

	r := newTestRouter(piped, invidious, youtube, &stubSource{}, embedded)

	url, err := r.StreamURL(context.Background(), song.Song{ID: "x", Source: song.SourcePiped})
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if url != "https://backend/stream" {
		t.Errorf("StreamURL() = %q, want the backend fallback", url)
	}
	if embedded.streamCalls != 0 {
		t.Error("embedded must never participate in stream fallback")
	}

	stats := r.SourceStats()
	if stats[song.SourcePiped] != 80 {
		t.Errorf("piped (primary) score = %v, want 80", stats[song.SourcePiped])
	}
	if stats[song.SourceInvidious] != 80 {
		t.Errorf("invidious (fallback) score = %v, want untouched 80", stats[song.SourceInvidious])
	}
}

func TestStreamURLAllFail(t *testing.T) {
	failing := func() *stubSource { return &stubSource{streamErr: errors.New("down")} }

	r := newTestRouter(failing(), failing(), failing(), failing(), failing())

	_, err := r.StreamURL(context.Background(), song.Song{ID: "x", Source: song.SourcePiped})
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("StreamURL() error = %v, want ErrAllSourcesFailed", err)
	}
}

func TestStreamURLEmbeddedSong(t *testing.T) {
	embedded := &stubSource{streamURL: "https://embedded/stream"}

	r := newTestRouter(&stubSource{}, &stubSource{}, &stubSource{}, &stubSource{}, embedded)

	url, err := r.StreamURL(context.Background(), song.Song{ID: "embedded-1", Source: song.SourceEmbedded})
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if url != "https://embedded/stream" {
		t.Errorf("StreamURL() = %q", url)
	}
}

func TestStreamURLDefaultsToPiped(t *testing.T) {
	piped := &stubSource{streamURL: "https://piped/stream"}

	r := newTestRouter(piped, &stubSource{}, &stubSource{}, &stubSource{}, &stubSource{})

	url, err := r.StreamURL(context.Background(), song.Song{ID: "x"})
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if url != "https://piped/stream" || piped.streamCalls != 1 {
		t.Errorf("untagged songs should resolve via piped first")
	}
}

func TestSourceStatsInitialScores(t *testing.T) {
	r := newTestRouter(&stubSource{}, &stubSource{}, &stubSource{}, &stubSource{}, &stubSource{})

	want := map[song.Source]float64{
		song.SourcePiped:      100,
		song.SourceInvidious:  80,
		song.SourceYouTube:    60,
		song.SourceSoundCloud: 70,
		song.SourceEmbedded:   90,
	}

	stats := r.SourceStats()
	for src, score := range want {
		if stats[src] != score {
			t.Errorf("initial score for %s = %v, want %v", src, stats[src], score)
		}
	}
}

func TestSourceStatsIsSnapshot(t *testing.T) {
	r := newTestRouter(&stubSource{}, &stubSource{}, &stubSource{}, &stubSource{}, &stubSource{})

	stats := r.SourceStats()
	stats[song.SourcePiped] = -1

	if r.SourceStats()[song.SourcePiped] != 100 {
		t.Error("mutating the returned map must not affect router state")
	}
}

func TestPenaltyFloor(t *testing.T) {
	failing := &stubSource{searchErr: errors.New("down")}
	embedded := &stubSource{}

	r := newTestRouter(failing, &stubSource{searchErr: errors.New("down")}, &stubSource{searchErr: errors.New("down")}, &stubSource{}, embedded)

	// Drive the score down past the floor.
	for i := 0; i < 10; i++ {
		r.Search(context.Background(), "q", 5)
	}

	if got := r.SourceStats()[song.SourcePiped]; got != 10 {
		t.Errorf("score after repeated failures = %v, want floor of 10", got)
	}
}

func TestChartsCachesResults(t *testing.T) {
	youtube := &stubSource{searchResults: songsNamed(song.SourceYouTube, "c1", "c2")}

	r := newTestRouter(&stubSource{}, &stubSource{}, youtube, &stubSource{}, &stubSource{})

	if got := r.CachedCharts(); len(got) != 0 {
		t.Fatalf("CachedCharts() before any fetch = %v, want empty", got)
	}

	charts := r.Charts(context.Background())
	if len(charts) != 2 {
		t.Fatalf("Charts() = %v, want 2 songs", charts)
	}

	cached := r.CachedCharts()
	if len(cached) != 2 || cached[0].ID != "c1" {
		t.Errorf("CachedCharts() = %v, want the fetched charts", cached)
	}
}

func TestChartsEmbeddedFallback(t *testing.T) {
	embedded := &stubSource{searchResults: songsNamed(song.SourceEmbedded, "e1")}

	r := newTestRouter(&stubSource{}, &stubSource{}, &stubSource{}, &stubSource{}, embedded)

	charts := r.Charts(context.Background())
	if len(charts) != 1 || charts[0].Source != song.SourceEmbedded {
		t.Fatalf("Charts() = %v, want the embedded fallback", charts)
	}
}

func TestRecommendationsFallback(t *testing.T) {
	embedded := &stubSource{searchResults: songsNamed(song.SourceEmbedded, "e1")}

	r := newTestRouter(&stubSource{}, &stubSource{}, &stubSource{}, &stubSource{}, embedded)

	recs := r.Recommendations(context.Background(), "x")
	if len(recs) != 1 || recs[0].ID != "e1" {
		t.Fatalf("Recommendations() = %v, want the embedded fallback", recs)
	}
}
