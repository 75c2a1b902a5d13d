package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/rs/zerolog/log"

	"github.com/streamify/streamify/internal/cache"
)

const (
	fetchTimeout     = 60 * time.Second
	progressInterval = 500 * time.Millisecond
)

// Fetcher downloads audio bytes, reading and writing through the disk
// cache. Preloading a track just warms the same cache the next Load hits.
type Fetcher struct {
	client *resty.Client
	cache  *cache.Cache
}

// NewFetcher creates a Fetcher. A nil cache disables caching but not fetching.
func NewFetcher(c *cache.Cache) *Fetcher {
	return &Fetcher{
		client: resty.New().SetTimeout(fetchTimeout),
		cache:  c,
	}
}

// Fetch returns the full audio body for a stream URL, from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		if data := f.cache.GetAudio(url); data != nil {
			log.Debug().Str("url", url).Int("bytes", len(data)).Msg("Audio served from cache")
			return data, nil
		}
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("audio fetch returned status %d", resp.StatusCode())
	}

	data := resp.Body()
	if f.cache != nil {
		if err := f.cache.SaveAudio(url, data); err != nil {
			log.Debug().Err(err).Str("url", url).Msg("Failed to cache audio")
		}
	}
	return data, nil
}

// Prefetch warms the cache without decoding.
func (f *Fetcher) Prefetch(ctx context.Context, url string) error {
	_, err := f.Fetch(ctx, url)
	return err
}

type bytesReadSeekCloser struct {
	*bytes.Reader
}

func (bytesReadSeekCloser) Close() error { return nil }

// StreamElement decodes one track at a time and exposes transport controls
// over it. It implements beep.Streamer so the playback graph can bind it;
// while unloaded or stopped it streams silence, leaving lifecycle decisions
// to its owner.
type StreamElement struct {
	fetcher *Fetcher

	mu         sync.Mutex
	streamer   beep.StreamSeekCloser
	out        beep.Streamer
	sampleRate beep.SampleRate
	playing    bool
	endedFired bool

	onEnded      func()
	onProgress   func(seconds float64)
	lastProgress time.Time
}

func NewStreamElement(fetcher *Fetcher) *StreamElement {
	return &StreamElement{fetcher: fetcher}
}

// Load fetches and decodes a track, replacing any current one. The whole
// body is held in memory so the decoder can seek freely.
func (e *StreamElement) Load(ctx context.Context, url string) error {
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(bytesReadSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}

	var out beep.Streamer = streamer
	if format.SampleRate != GraphSampleRate {
		out = beep.Resample(4, format.SampleRate, GraphSampleRate, streamer)
		log.Debug().Msgf("Resampling %d Hz -> %d Hz", format.SampleRate, GraphSampleRate)
	}

	e.mu.Lock()
	if e.streamer != nil {
		e.streamer.Close()
	}
	e.streamer = streamer
	e.out = out
	e.sampleRate = format.SampleRate
	e.playing = false
	e.endedFired = false
	e.lastProgress = time.Time{}
	e.mu.Unlock()

	log.Debug().Str("url", url).Int("bytes", len(data)).Msg("Track loaded")
	return nil
}

// Stream feeds decoded samples to the graph. It always reports ok; an
// exhausted or missing track degrades to silence and fires the ended
// callback exactly once per load.
func (e *StreamElement) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()

	if e.streamer == nil || !e.playing {
		e.mu.Unlock()
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}

	n, _ := e.out.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	var ended func()
	var progress func(float64)
	var position float64

	if n == 0 {
		e.playing = false
		if !e.endedFired {
			e.endedFired = true
			ended = e.onEnded
		}
	} else if e.onProgress != nil && time.Since(e.lastProgress) >= progressInterval {
		e.lastProgress = time.Now()
		progress = e.onProgress
		position = float64(e.streamer.Position()) / float64(e.sampleRate)
	}
	e.mu.Unlock()

	// Callbacks run off the audio path; they may call back into the element.
	if ended != nil {
		go ended()
	}
	if progress != nil {
		go progress(position)
	}

	return len(samples), true
}

func (e *StreamElement) Err() error {
	return nil
}

func (e *StreamElement) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return
	}
	e.playing = true
}

func (e *StreamElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

func (e *StreamElement) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Seek moves the playhead to an absolute position in seconds. Non-finite
// values are ignored; finite ones are clamped to the track bounds.
func (e *StreamElement) Seek(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return
	}

	pos := int(seconds * float64(e.sampleRate))
	if pos < 0 {
		pos = 0
	}
	if max := e.streamer.Len(); pos > max {
		pos = max
	}

	if err := e.streamer.Seek(pos); err != nil {
		log.Debug().Err(err).Float64("seconds", seconds).Msg("Seek failed")
		return
	}
	e.endedFired = false
}

// CurrentTime returns the playhead position in seconds.
func (e *StreamElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}
	return float64(e.streamer.Position()) / float64(e.sampleRate)
}

// Duration returns the track length in seconds, 0 when nothing is loaded.
func (e *StreamElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}
	return float64(e.streamer.Len()) / float64(e.sampleRate)
}

func (e *StreamElement) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

func (e *StreamElement) OnProgress(fn func(seconds float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onProgress = fn
}

// ClearSource drops the loaded track, releasing the decoder.
func (e *StreamElement) ClearSource() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	e.out = nil
	e.playing = false
	e.endedFired = false
}
