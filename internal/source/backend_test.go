package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streamify/streamify/internal/song"
)

func TestBackendSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "query" {
			t.Errorf("q = %q, want query", got)
		}
		w.Write([]byte(`{"songs": [
			{"id": "yt1", "title": "Song One", "artist": "Artist", "album": "Album", "duration": 215, "thumbnail": "https://example.com/t.jpg"},
			{"id": "yt2", "title": "Song Two", "artist": "Other", "duration": 60}
		]}`))
	}))
	defer server.Close()

	b := NewBackend(server.URL)
	songs, err := b.Search(context.Background(), "query", 20)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(songs) != 2 {
		t.Fatalf("Search() returned %d songs, want 2", len(songs))
	}

	first := songs[0]
	if first.ID != "yt1" || first.Title != "Song One" || first.Album != "Album" {
		t.Errorf("unexpected first song: %+v", first)
	}
	if first.Duration != "3:35" {
		t.Errorf("Duration = %q, want 3:35", first.Duration)
	}
	if first.Source != song.SourceYouTube {
		t.Errorf("Source = %q, want %q", first.Source, song.SourceYouTube)
	}
	if songs[1].Album != "YouTube Music" {
		t.Errorf("missing album should default to YouTube Music, got %q", songs[1].Album)
	}
}

func TestBackendStreamURLCaching(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/stream-url/yt1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"streamUrl": "https://cdn.example.com/stream"}`))
	}))
	defer server.Close()

	b := NewBackend(server.URL)

	for i := 0; i < 3; i++ {
		url, err := b.StreamURL(context.Background(), "yt1")
		if err != nil {
			t.Fatalf("StreamURL() error = %v", err)
		}
		if url != "https://cdn.example.com/stream" {
			t.Errorf("StreamURL() = %q", url)
		}
	}

	if hits != 1 {
		t.Errorf("backend hit %d times, want 1 (later calls served from cache)", hits)
	}
}

func TestBackendStreamURLEmbeddedID(t *testing.T) {
	// Embedded ids never reach the network.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %q", r.URL.Path)
	}))
	defer server.Close()

	b := NewBackend(server.URL)
	url, err := b.StreamURL(context.Background(), "embedded-1")
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if url != embeddedCatalog[0].StreamURL {
		t.Errorf("StreamURL() = %q, want the embedded catalog url", url)
	}
}

func TestBackendStreamURLUnknownID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	b := NewBackend(server.URL)
	url, err := b.StreamURL(context.Background(), "missing")
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if url != "" {
		t.Errorf("StreamURL() = %q, want empty for unknown id", url)
	}
}

func TestBackendChartsBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	b := NewBackend(server.URL)
	if charts := b.Charts(context.Background()); charts != nil {
		t.Errorf("Charts() on failing backend = %v, want nil", charts)
	}
	if recs := b.Recommendations(context.Background(), "x"); recs != nil {
		t.Errorf("Recommendations() on failing backend = %v, want nil", recs)
	}
}

func TestBackendCharts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/charts" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"songs": [{"id": "c1", "title": "Trending", "artist": "Someone", "duration": 180}]}`))
	}))
	defer server.Close()

	b := NewBackend(server.URL)
	charts := b.Charts(context.Background())
	if len(charts) != 1 || charts[0].ID != "c1" {
		t.Fatalf("Charts() = %v, want one song with id c1", charts)
	}
}

func TestIsEmbeddedID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"embedded-1", true},
		{"embedded-8", true},
		{"12345", true},
		{"dQw4w9WgXcQ", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isEmbeddedID(tt.id); got != tt.want {
			t.Errorf("isEmbeddedID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
