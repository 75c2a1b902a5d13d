// Package song defines the data structures for playable tracks.
package song

import "fmt"

// Source identifies the provider a Song was produced by. Song IDs are only
// unique within a single provider's namespace, so the tag travels with the
// song to pick the right provider for stream resolution.
type Source string

const (
	SourcePiped      Source = "piped"
	SourceInvidious  Source = "invidious"
	SourceYouTube    Source = "youtube"
	SourceSoundCloud Source = "soundcloud"
	SourceEmbedded   Source = "embedded"
)

// Song represents a playable track as produced by a stream source.
// Instances are treated as immutable once constructed.
type Song struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	CoverURL  string `json:"coverUrl"`
	Duration  string `json:"duration"` // Display string, e.g. "3:45"
	StreamURL string `json:"streamUrl,omitempty"`
	Source    Source `json:"source,omitempty"`
}

// FormatDuration renders a duration in seconds as "m:ss" for display.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
