package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/streamify/streamify/internal/song"
)

const defaultCover = "https://via.placeholder.com/400"

// Piped is a mirrored provider backed by public Piped API instances.
// Every call rotates to the next mirror; a failed mirror falls through to
// the remaining ones within the same attempt, and the call errors only
// when the whole list is exhausted.
type Piped struct {
	mirrors []string
	client  *resty.Client
	cursor  rotation
}

func NewPiped() *Piped {
	return &Piped{
		mirrors: []string{
			"https://pipedapi.kavin.rocks",
			"https://pipedapi.tokhmi.xyz",
			"https://piped-api.lunar.icu",
		},
		client: newClient(),
	}
}

func (p *Piped) Search(ctx context.Context, query string, limit int) ([]song.Song, error) {
	var lastErr error

	for range p.mirrors {
		mirror := p.cursor.pick(p.mirrors)

		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParam("q", query).
			SetQueryParam("filter", "music_songs").
			Get(mirror + "/search")
		if err != nil {
			log.Warn().Err(err).Str("mirror", mirror).Msg("Piped search request failed")
			lastErr = err
			continue
		}
		if !resp.IsSuccess() {
			lastErr = fmt.Errorf("mirror %s returned status %d", mirror, resp.StatusCode())
			log.Warn().Str("mirror", mirror).Int("status", resp.StatusCode()).Msg("Piped search rejected")
			continue
		}

		var payload struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			lastErr = fmt.Errorf("mirror %s: %w", mirror, err)
			log.Warn().Err(err).Str("mirror", mirror).Msg("Piped search response unparseable")
			continue
		}

		songs := parsePipedItems(payload.Items, limit)
		log.Debug().Str("mirror", mirror).Int("count", len(songs)).Msg("Piped search succeeded")
		return songs, nil
	}

	return nil, fmt.Errorf("all piped mirrors failed: %w", lastErr)
}

func (p *Piped) StreamURL(ctx context.Context, id string) (string, error) {
	var lastErr error

	for range p.mirrors {
		mirror := p.cursor.pick(p.mirrors)

		resp, err := p.client.R().
			SetContext(ctx).
			Get(mirror + "/streams/" + id)
		if err != nil {
			log.Warn().Err(err).Str("mirror", mirror).Msg("Piped stream request failed")
			lastErr = err
			continue
		}
		if resp.StatusCode() == http.StatusNotFound {
			// The id does not exist on this network at all, no mirror
			// will do better.
			return "", nil
		}
		if !resp.IsSuccess() {
			lastErr = fmt.Errorf("mirror %s returned status %d", mirror, resp.StatusCode())
			continue
		}

		var payload struct {
			AudioStreams []struct {
				URL      string `json:"url"`
				MimeType string `json:"mimeType"`
			} `json:"audioStreams"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			lastErr = fmt.Errorf("mirror %s: %w", mirror, err)
			continue
		}

		for _, s := range payload.AudioStreams {
			if strings.Contains(s.MimeType, "audio/mp4") || strings.Contains(s.MimeType, "audio/webm") {
				if s.URL != "" {
					return s.URL, nil
				}
			}
		}
		lastErr = fmt.Errorf("mirror %s: no audio stream in response", mirror)
	}

	return "", fmt.Errorf("all piped mirrors failed for stream: %w", lastErr)
}

func (p *Piped) Recommendations(ctx context.Context, id string) []song.Song {
	return nil
}

func (p *Piped) Charts(ctx context.Context) []song.Song {
	return nil
}

// parsePipedItems converts raw search items, skipping any item that is
// malformed or has no usable id so one bad entry cannot poison a batch.
func parsePipedItems(items []json.RawMessage, limit int) []song.Song {
	songs := make([]song.Song, 0, len(items))

	for _, raw := range items {
		if limit > 0 && len(songs) >= limit {
			break
		}

		var item struct {
			URL          string `json:"url"`
			ID           string `json:"id"`
			Title        string `json:"title"`
			UploaderName string `json:"uploaderName"`
			Uploader     string `json:"uploader"`
			Duration     int    `json:"duration"`
			Thumbnail    string `json:"thumbnail"`
			ThumbnailURL string `json:"thumbnailUrl"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Debug().Err(err).Msg("Skipping malformed piped search item")
			continue
		}

		id := item.ID
		if strings.HasPrefix(item.URL, "/watch?v=") {
			id = strings.TrimPrefix(item.URL, "/watch?v=")
		}
		if id == "" {
			log.Debug().Msg("Skipping piped search item without id")
			continue
		}

		songs = append(songs, song.Song{
			ID:       id,
			Title:    firstNonEmpty(item.Title, "Unknown Title"),
			Artist:   firstNonEmpty(item.UploaderName, item.Uploader, "Unknown Artist"),
			Duration: song.FormatDuration(item.Duration),
			CoverURL: firstNonEmpty(item.Thumbnail, item.ThumbnailURL, defaultCover),
			Source:   song.SourcePiped,
		})
	}

	return songs
}
