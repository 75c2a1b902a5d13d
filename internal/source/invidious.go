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

// Invidious is the second mirrored provider family. Same failover shape as
// Piped: rotate mirrors per call, walk the whole list before giving up.
type Invidious struct {
	mirrors []string
	client  *resty.Client
	cursor  rotation
}

func NewInvidious() *Invidious {
	return &Invidious{
		mirrors: []string{
			"https://invidious.snopyta.org",
			"https://yewtu.be",
			"https://invidious.kavin.rocks",
		},
		client: newClient(),
	}
}

func (v *Invidious) Search(ctx context.Context, query string, limit int) ([]song.Song, error) {
	var lastErr error

	for range v.mirrors {
		mirror := v.cursor.pick(v.mirrors)

		resp, err := v.client.R().
			SetContext(ctx).
			SetQueryParam("q", query).
			SetQueryParam("type", "video").
			SetQueryParam("page", "1").
			Get(mirror + "/api/v1/search")
		if err != nil {
			log.Warn().Err(err).Str("mirror", mirror).Msg("Invidious search request failed")
			lastErr = err
			continue
		}
		if !resp.IsSuccess() {
			lastErr = fmt.Errorf("mirror %s returned status %d", mirror, resp.StatusCode())
			log.Warn().Str("mirror", mirror).Int("status", resp.StatusCode()).Msg("Invidious search rejected")
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(resp.Body(), &items); err != nil {
			lastErr = fmt.Errorf("mirror %s: %w", mirror, err)
			continue
		}

		songs := parseInvidiousItems(items, limit)
		log.Debug().Str("mirror", mirror).Int("count", len(songs)).Msg("Invidious search succeeded")
		return songs, nil
	}

	return nil, fmt.Errorf("all invidious mirrors failed: %w", lastErr)
}

func (v *Invidious) StreamURL(ctx context.Context, id string) (string, error) {
	var lastErr error

	for range v.mirrors {
		mirror := v.cursor.pick(v.mirrors)

		resp, err := v.client.R().
			SetContext(ctx).
			Get(mirror + "/api/v1/videos/" + id)
		if err != nil {
			log.Warn().Err(err).Str("mirror", mirror).Msg("Invidious stream request failed")
			lastErr = err
			continue
		}
		if resp.StatusCode() == http.StatusNotFound {
			return "", nil
		}
		if !resp.IsSuccess() {
			lastErr = fmt.Errorf("mirror %s returned status %d", mirror, resp.StatusCode())
			continue
		}

		var payload struct {
			AdaptiveFormats []struct {
				URL          string `json:"url"`
				Type         string `json:"type"`
				AudioQuality string `json:"audioQuality"`
			} `json:"adaptiveFormats"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			lastErr = fmt.Errorf("mirror %s: %w", mirror, err)
			continue
		}

		// Prefer medium-quality AAC, then any audio format.
		var fallback string
		for _, f := range payload.AdaptiveFormats {
			if f.URL == "" || !strings.HasPrefix(f.Type, "audio") {
				continue
			}
			if f.AudioQuality == "AUDIO_QUALITY_MEDIUM" && strings.Contains(f.Type, "audio/mp4") {
				return f.URL, nil
			}
			if fallback == "" {
				fallback = f.URL
			}
		}
		if fallback != "" {
			return fallback, nil
		}
		lastErr = fmt.Errorf("mirror %s: no audio format in response", mirror)
	}

	return "", fmt.Errorf("all invidious mirrors failed for stream: %w", lastErr)
}

func (v *Invidious) Recommendations(ctx context.Context, id string) []song.Song {
	return nil
}

func (v *Invidious) Charts(ctx context.Context) []song.Song {
	return nil
}

func parseInvidiousItems(items []json.RawMessage, limit int) []song.Song {
	songs := make([]song.Song, 0, len(items))

	for _, raw := range items {
		if limit > 0 && len(songs) >= limit {
			break
		}

		var item struct {
			Type            string `json:"type"`
			VideoID         string `json:"videoId"`
			Title           string `json:"title"`
			Author          string `json:"author"`
			LengthSeconds   int    `json:"lengthSeconds"`
			VideoThumbnails []struct {
				URL string `json:"url"`
			} `json:"videoThumbnails"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Debug().Err(err).Msg("Skipping malformed invidious search item")
			continue
		}
		if item.Type != "video" || item.VideoID == "" {
			continue
		}

		cover := fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", item.VideoID)
		if len(item.VideoThumbnails) > 0 && item.VideoThumbnails[0].URL != "" {
			cover = item.VideoThumbnails[0].URL
		}

		songs = append(songs, song.Song{
			ID:       item.VideoID,
			Title:    firstNonEmpty(item.Title, "Unknown Title"),
			Artist:   firstNonEmpty(item.Author, "Unknown Artist"),
			Duration: song.FormatDuration(item.LengthSeconds),
			CoverURL: cover,
			Source:   song.SourceInvidious,
		})
	}

	return songs
}
