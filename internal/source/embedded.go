package source

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/streamify/streamify/internal/song"
)

// embeddedCatalog is the royalty-free library shipped with the player.
// It is the last-resort search fallback and the offline demo content.
var embeddedCatalog = []song.Song{
	{
		ID: "embedded-1", Title: "Chill Lofi Beat", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "3:24",
		CoverURL:  "https://picsum.photos/seed/music1/400/400",
		StreamURL: "https://commondatastorage.googleapis.com/codeskulptor-demos/DDR_assets/Kangaroo_MusiQue_-_The_Neverwritten_Role_Playing_Game.mp3",
		Source:    song.SourceEmbedded,
	},
	{
		ID: "embedded-2", Title: "Energetic Rock", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "2:45",
		CoverURL:  "https://picsum.photos/seed/music2/400/400",
		StreamURL: "https://commondatastorage.googleapis.com/codeskulptor-assets/Epoq-Lepidoptera.ogg",
		Source:    song.SourceEmbedded,
	},
	{
		ID: "embedded-3", Title: "Ambient Dreams", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "4:12",
		CoverURL:  "https://picsum.photos/seed/music3/400/400",
		StreamURL: "https://commondatastorage.googleapis.com/codeskulptor-demos/pyman_assets/ateapill.ogg",
		Source:    song.SourceEmbedded,
	},
	{
		ID: "embedded-4", Title: "Midnight Jazz", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "5:03",
		CoverURL:  "https://picsum.photos/seed/music4/400/400",
		StreamURL: "https://commondatastorage.googleapis.com/codeskulptor-demos/DDR_assets/Sevish_-__nbsp_.mp3",
		Source:    song.SourceEmbedded,
	},
	{
		ID: "embedded-5", Title: "Synth Horizon", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "3:20",
		CoverURL:  "https://picsum.photos/seed/music5/400/400",
		StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
		Source:    song.SourceEmbedded,
	},
	{
		ID: "embedded-6", Title: "Morning Acoustic", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "3:23",
		CoverURL:  "https://picsum.photos/seed/music6/400/400",
		StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3",
		Source:    song.SourceEmbedded,
	},
	{
		ID: "embedded-7", Title: "Deep Focus", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "3:18",
		CoverURL:  "https://picsum.photos/seed/music7/400/400",
		StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3",
		Source:    song.SourceEmbedded,
	},
	{
		ID: "embedded-8", Title: "Night Drive", Artist: "Streamify",
		Album: "Embedded Collection", Duration: "3:35",
		CoverURL:  "https://picsum.photos/seed/music8/400/400",
		StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-4.mp3",
		Source:    song.SourceEmbedded,
	},
}

// Embedded serves the in-process catalog. Zero network, never fails.
type Embedded struct{}

func NewEmbedded() *Embedded {
	return &Embedded{}
}

func (e *Embedded) Search(ctx context.Context, query string, limit int) ([]song.Song, error) {
	log.Debug().Str("query", query).Msg("Searching embedded catalog")

	q := strings.ToLower(query)
	results := make([]song.Song, 0, len(embeddedCatalog))
	for _, s := range embeddedCatalog {
		if limit > 0 && len(results) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Artist), q) {
			results = append(results, s)
		}
	}
	return results, nil
}

func (e *Embedded) StreamURL(ctx context.Context, id string) (string, error) {
	for _, s := range embeddedCatalog {
		if s.ID == id {
			return s.StreamURL, nil
		}
	}
	return "", nil
}

func (e *Embedded) Recommendations(ctx context.Context, id string) []song.Song {
	return e.Charts(ctx)
}

func (e *Embedded) Charts(ctx context.Context) []song.Song {
	charts := make([]song.Song, len(embeddedCatalog))
	copy(charts, embeddedCatalog)
	return charts
}
