package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/streamify/streamify/internal/song"
)

const DefaultBackendURL = "http://localhost:3001/api"

// Backend proxies search, charts, recommendations and stream-url issuance
// through the local backend process, which fans out to an external music
// index and pipes audio bytes itself. From here it is just another network
// boundary that can be slow or fail.
type Backend struct {
	client *resty.Client

	cacheMu     sync.Mutex
	streamCache map[string]string
}

func NewBackend(baseURL string) *Backend {
	return &Backend{
		client:      newClient().SetBaseURL(baseURL),
		streamCache: make(map[string]string),
	}
}

type backendSong struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	Duration  int    `json:"duration"`
	Thumbnail string `json:"thumbnail"`
}

type backendSongs struct {
	Songs []json.RawMessage `json:"songs"`
}

func (b *Backend) Search(ctx context.Context, query string, limit int) ([]song.Song, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("backend search failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("backend search returned status %d", resp.StatusCode())
	}

	var payload backendSongs
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse backend search response: %w", err)
	}

	return parseBackendSongs(payload.Songs, limit), nil
}

func (b *Backend) StreamURL(ctx context.Context, id string) (string, error) {
	b.cacheMu.Lock()
	if url, ok := b.streamCache[id]; ok {
		b.cacheMu.Unlock()
		return url, nil
	}
	b.cacheMu.Unlock()

	// Embedded-style ids never reach the external index; answer them from
	// the local catalog directly.
	if isEmbeddedID(id) {
		for _, s := range embeddedCatalog {
			if s.ID == id {
				return s.StreamURL, nil
			}
		}
		return "", nil
	}

	resp, err := b.client.R().
		SetContext(ctx).
		Get("/stream-url/" + id)
	if err != nil {
		return "", fmt.Errorf("backend stream-url failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", nil
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("backend stream-url returned status %d", resp.StatusCode())
	}

	var payload struct {
		StreamURL string `json:"streamUrl"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", fmt.Errorf("failed to parse backend stream-url response: %w", err)
	}
	if payload.StreamURL == "" {
		return "", nil
	}

	b.cacheMu.Lock()
	b.streamCache[id] = payload.StreamURL
	b.cacheMu.Unlock()

	return payload.StreamURL, nil
}

func (b *Backend) Recommendations(ctx context.Context, id string) []song.Song {
	path := "/recommendations"
	if id != "" {
		path += "/" + id
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("limit", "10").
		Get(path)
	if err != nil || !resp.IsSuccess() {
		log.Debug().Err(err).Msg("Backend recommendations unavailable")
		return nil
	}

	var payload backendSongs
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		log.Debug().Err(err).Msg("Backend recommendations unparseable")
		return nil
	}
	return parseBackendSongs(payload.Songs, 0)
}

func (b *Backend) Charts(ctx context.Context) []song.Song {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("limit", "20").
		Get("/charts")
	if err != nil || !resp.IsSuccess() {
		log.Debug().Err(err).Msg("Backend charts unavailable")
		return nil
	}

	var payload backendSongs
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		log.Debug().Err(err).Msg("Backend charts unparseable")
		return nil
	}
	return parseBackendSongs(payload.Songs, 0)
}

func parseBackendSongs(items []json.RawMessage, limit int) []song.Song {
	songs := make([]song.Song, 0, len(items))

	for _, raw := range items {
		if limit > 0 && len(songs) >= limit {
			break
		}

		var item backendSong
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Debug().Err(err).Msg("Skipping malformed backend song")
			continue
		}
		if item.ID == "" {
			log.Debug().Msg("Skipping backend song without id")
			continue
		}

		songs = append(songs, song.Song{
			ID:       item.ID,
			Title:    firstNonEmpty(item.Title, "Unknown Title"),
			Artist:   firstNonEmpty(item.Artist, "Unknown Artist"),
			Album:    firstNonEmpty(item.Album, "YouTube Music"),
			Duration: song.FormatDuration(item.Duration),
			CoverURL: firstNonEmpty(item.Thumbnail, defaultCover),
			Source:   song.SourceYouTube,
		})
	}

	return songs
}

func isEmbeddedID(id string) bool {
	if strings.HasPrefix(id, "embedded-") {
		return true
	}
	if _, err := strconv.Atoi(id); err == nil {
		return true
	}
	return false
}
