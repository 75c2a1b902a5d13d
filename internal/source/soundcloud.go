package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/streamify/streamify/internal/song"
)

const soundCloudAPI = "https://api-v2.soundcloud.com"

// Public widget client id, not a secret.
const soundCloudClientID = "iZIs9mchVcX5lhVRyQGGAYlNPVldzAoX"

// SoundCloud resolves streams in two hops: track metadata first, then the
// transcoding endpoint it references. It only participates in stream
// resolution for songs it produced itself.
type SoundCloud struct {
	client   *resty.Client
	clientID string
}

func NewSoundCloud() *SoundCloud {
	return &SoundCloud{
		client:   newClient().SetBaseURL(soundCloudAPI),
		clientID: soundCloudClientID,
	}
}

func (s *SoundCloud) Search(ctx context.Context, query string, limit int) ([]song.Song, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("client_id", s.clientID).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/search/tracks")
	if err != nil {
		return nil, fmt.Errorf("soundcloud search failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("soundcloud search returned status %d", resp.StatusCode())
	}

	var payload struct {
		Collection []json.RawMessage `json:"collection"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse soundcloud search response: %w", err)
	}

	return parseSoundCloudTracks(payload.Collection, limit), nil
}

func (s *SoundCloud) StreamURL(ctx context.Context, id string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("client_id", s.clientID).
		Get("/tracks/" + id)
	if err != nil {
		return "", fmt.Errorf("soundcloud track lookup failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", nil
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("soundcloud track lookup returned status %d", resp.StatusCode())
	}

	var track struct {
		Media struct {
			Transcodings []struct {
				URL string `json:"url"`
			} `json:"transcodings"`
		} `json:"media"`
	}
	if err := json.Unmarshal(resp.Body(), &track); err != nil {
		return "", fmt.Errorf("failed to parse soundcloud track: %w", err)
	}
	if len(track.Media.Transcodings) == 0 || track.Media.Transcodings[0].URL == "" {
		return "", nil
	}

	streamResp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("client_id", s.clientID).
		Get(track.Media.Transcodings[0].URL)
	if err != nil {
		return "", fmt.Errorf("soundcloud transcoding lookup failed: %w", err)
	}
	if !streamResp.IsSuccess() {
		return "", fmt.Errorf("soundcloud transcoding returned status %d", streamResp.StatusCode())
	}

	var stream struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(streamResp.Body(), &stream); err != nil {
		return "", fmt.Errorf("failed to parse soundcloud stream payload: %w", err)
	}
	return stream.URL, nil
}

func (s *SoundCloud) Recommendations(ctx context.Context, id string) []song.Song {
	return nil
}

func (s *SoundCloud) Charts(ctx context.Context) []song.Song {
	return nil
}

func parseSoundCloudTracks(items []json.RawMessage, limit int) []song.Song {
	songs := make([]song.Song, 0, len(items))

	for _, raw := range items {
		if limit > 0 && len(songs) >= limit {
			break
		}

		var track struct {
			ID         int64  `json:"id"`
			Title      string `json:"title"`
			Streamable bool   `json:"streamable"`
			Duration   int64  `json:"duration"` // milliseconds
			ArtworkURL string `json:"artwork_url"`
			User       struct {
				Username  string `json:"username"`
				AvatarURL string `json:"avatar_url"`
			} `json:"user"`
			PublisherMetadata struct {
				AlbumTitle string `json:"album_title"`
			} `json:"publisher_metadata"`
		}
		if err := json.Unmarshal(raw, &track); err != nil {
			log.Debug().Err(err).Msg("Skipping malformed soundcloud track")
			continue
		}
		if !track.Streamable || track.ID == 0 {
			continue
		}

		cover := strings.Replace(track.ArtworkURL, "-large", "-t500x500", 1)
		songs = append(songs, song.Song{
			ID:       strconv.FormatInt(track.ID, 10),
			Title:    firstNonEmpty(track.Title, "Unknown Title"),
			Artist:   firstNonEmpty(track.User.Username, "Unknown Artist"),
			Album:    track.PublisherMetadata.AlbumTitle,
			Duration: song.FormatDuration(int(track.Duration / 1000)),
			CoverURL: firstNonEmpty(cover, track.User.AvatarURL),
			Source:   song.SourceSoundCloud,
		})
	}

	return songs
}
