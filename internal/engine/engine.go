// Package engine implements the playback engine: queue management, playback
// modes, track loading with retry, gapless preload and the sleep timer. It
// drives an audio graph and stream element through small interfaces so the
// whole state machine is testable without an audio device.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/streamify/streamify/internal/audio"
	"github.com/streamify/streamify/internal/song"
)

const (
	// previousRestartThreshold is how far into a track Previous restarts it
	// instead of going back.
	previousRestartThreshold = 3.0

	// preloadProgressThreshold is the playback fraction at which the next
	// track starts preloading when gapless is enabled.
	preloadProgressThreshold = 0.8

	defaultRetryDelay     = 2 * time.Second
	defaultSleepFade      = 5 * time.Second
	defaultSleepFadeSteps = 50

	MaxCrossfadeSeconds = 10.0
)

// Resolver turns songs into playable stream URLs and answers catalog queries.
type Resolver interface {
	StreamURL(ctx context.Context, s song.Song) (string, error)
	Search(ctx context.Context, query string, limit int) []song.Song
	Recommendations(ctx context.Context, id string) []song.Song
	Charts(ctx context.Context) []song.Song
}

// Graph is the output chain the engine controls: pause gate, volume stage,
// equalizer and visualization taps.
type Graph interface {
	Start() error
	SetPaused(paused bool)
	SetGain(gain float64)
	SetBand(band audio.Band, gainDB float64)
	ApplyPreset(name string) error
	AudioData() []byte
	WaveformData() []byte
}

// Element is the single decoded track the engine plays through the graph.
type Element interface {
	Load(ctx context.Context, url string) error
	Play()
	Pause()
	Seek(seconds float64)
	CurrentTime() float64
	Duration() float64
	Playing() bool
	OnEnded(fn func())
	OnProgress(fn func(seconds float64))
	ClearSource()
}

// Preloader warms the audio cache for an upcoming track.
type Preloader interface {
	Prefetch(ctx context.Context, url string) error
}

// Mode is the queue traversal mode.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeShuffle   Mode = "shuffle"
	ModeRepeatOne Mode = "repeat-one"
	ModeRepeatAll Mode = "repeat-all"
)

type State int

const (
	StateIdle State = iota
	StateBuffering
	StatePlaying
	StatePaused
	StateStalled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateBuffering:
		return "BUFFERING"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StateStalled:
		return "STALLED"
	default:
		return "UNKNOWN"
	}
}

// Engine is the playback engine. All public methods are safe for concurrent
// use; listener callbacks run outside the engine lock.
type Engine struct {
	resolver  Resolver
	graph     Graph
	element   Element
	preloader Preloader

	mu            sync.Mutex
	queue         []song.Song
	originalOrder []song.Song
	currentIndex  int
	mode          Mode
	state         State
	volume        float64

	generation uint64
	cancelLoad context.CancelFunc
	started    bool

	gapless          bool
	preloading       bool
	preloadedID      string
	crossfadeSeconds float64
	radioMode        bool

	sleepTimer     *time.Timer
	sleepDeadline  time.Time
	savedVolume    float64
	sleepFade      time.Duration
	sleepFadeSteps int

	listeners map[string]func()
	rng       *rand.Rand

	retryDelay time.Duration
}

func New(resolver Resolver, graph Graph, element Element, preloader Preloader) *Engine {
	e := &Engine{
		resolver:       resolver,
		graph:          graph,
		element:        element,
		preloader:      preloader,
		currentIndex:   -1,
		mode:           ModeNormal,
		state:          StateIdle,
		volume:         1,
		gapless:        true,
		listeners:      make(map[string]func()),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		retryDelay:     defaultRetryDelay,
		sleepFade:      defaultSleepFade,
		sleepFadeSteps: defaultSleepFadeSteps,
	}

	element.OnEnded(e.handleTrackEnd)
	element.OnProgress(e.handleProgress)
	return e
}

// Subscribe registers a listener invoked after every state change. The
// returned function unsubscribes it.
func (e *Engine) Subscribe(fn func()) func() {
	id := uuid.NewString()

	e.mu.Lock()
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// snapshotListeners must be called with the lock held; the snapshot is
// invoked after unlocking so listeners can call back into the engine.
func (e *Engine) snapshotListeners() []func() {
	fns := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// SetQueue replaces the queue and remembers it as the canonical order.
// Playback does not start; currentIndex is positioned for the next Play.
func (e *Engine) SetQueue(songs []song.Song, startIndex int) {
	e.mu.Lock()

	e.queue = make([]song.Song, len(songs))
	copy(e.queue, songs)
	e.originalOrder = make([]song.Song, len(songs))
	copy(e.originalOrder, songs)

	if len(songs) == 0 {
		e.currentIndex = -1
	} else {
		if startIndex < 0 {
			startIndex = 0
		}
		if startIndex >= len(songs) {
			startIndex = len(songs) - 1
		}
		e.currentIndex = startIndex
	}
	e.preloadedID = ""

	// A queue replacement while shuffling gets shuffled too, with the
	// start song pinned to the front.
	if e.mode == ModeShuffle {
		e.shuffleQueueLocked(true)
	}

	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// AddToQueue appends a song to both the live queue and the canonical order.
func (e *Engine) AddToQueue(s song.Song) {
	e.mu.Lock()
	e.queue = append(e.queue, s)
	e.originalOrder = append(e.originalOrder, s)
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// RemoveFromQueue removes the song at index. Removing the current song does
// not interrupt playback; the index keeps pointing at it until the next
// transition.
func (e *Engine) RemoveFromQueue(index int) {
	e.mu.Lock()
	if index < 0 || index >= len(e.queue) {
		e.mu.Unlock()
		return
	}

	removed := e.queue[index]
	e.queue = append(e.queue[:index], e.queue[index+1:]...)

	for i, s := range e.originalOrder {
		if s.ID == removed.ID {
			e.originalOrder = append(e.originalOrder[:i], e.originalOrder[i+1:]...)
			break
		}
	}

	if index < e.currentIndex {
		e.currentIndex--
	} else if e.currentIndex >= len(e.queue) {
		e.currentIndex = len(e.queue) - 1
	}

	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// ReorderQueue moves the song at from to position to, keeping currentIndex
// attached to the same song.
func (e *Engine) ReorderQueue(from, to int) {
	e.mu.Lock()
	n := len(e.queue)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		e.mu.Unlock()
		return
	}

	moved := e.queue[from]
	e.queue = append(e.queue[:from], e.queue[from+1:]...)
	e.queue = append(e.queue[:to], append([]song.Song{moved}, e.queue[to:]...)...)

	switch {
	case e.currentIndex == from:
		e.currentIndex = to
	case from < e.currentIndex && to >= e.currentIndex:
		e.currentIndex--
	case from > e.currentIndex && to <= e.currentIndex:
		e.currentIndex++
	}

	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// ClearQueue stops playback and empties the queue.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	e.generation++
	e.queue = nil
	e.originalOrder = nil
	e.currentIndex = -1
	e.state = StateIdle
	e.preloadedID = ""
	e.element.Pause()
	e.element.ClearSource()
	e.graph.SetPaused(true)
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// Play starts or resumes playback. From idle it loads the current queue
// position; from pause it just resumes.
func (e *Engine) Play() {
	e.mu.Lock()

	switch e.state {
	case StatePaused:
		e.ensureStartedLocked()
		e.element.Play()
		e.graph.SetPaused(false)
		e.state = StatePlaying
		ls := e.snapshotListeners()
		e.mu.Unlock()
		runAll(ls)
		return
	case StatePlaying, StateBuffering:
		e.mu.Unlock()
		return
	}

	if len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}
	idx := e.currentIndex
	if idx < 0 {
		idx = 0
	}
	e.loadAndPlayLocked(idx)
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// PlayFrom starts playback at a queue position.
func (e *Engine) PlayFrom(index int) {
	e.mu.Lock()
	if index < 0 || index >= len(e.queue) {
		e.mu.Unlock()
		return
	}
	e.loadAndPlayLocked(index)
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// PlaySong plays a song. When it is not already queued it is inserted
// right after the current track, so the rest of the queue still follows.
func (e *Engine) PlaySong(s song.Song) {
	e.mu.Lock()
	idx := -1
	for i, q := range e.queue {
		if q.ID == s.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = e.currentIndex + 1
		if idx > len(e.queue) {
			idx = len(e.queue)
		}
		e.queue = append(e.queue[:idx], append([]song.Song{s}, e.queue[idx:]...)...)
		e.insertAfterCurrentInOriginalLocked(s)
	}
	e.loadAndPlayLocked(idx)
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// insertAfterCurrentInOriginalLocked mirrors a queue insertion into the
// canonical order, placing the song after the current one so leaving
// shuffle keeps it adjacent.
func (e *Engine) insertAfterCurrentInOriginalLocked(s song.Song) {
	pos := len(e.originalOrder)
	if e.currentIndex >= 0 && e.currentIndex < len(e.queue) {
		curID := e.queue[e.currentIndex].ID
		for i, o := range e.originalOrder {
			if o.ID == curID {
				pos = i + 1
				break
			}
		}
	}
	e.originalOrder = append(e.originalOrder[:pos], append([]song.Song{s}, e.originalOrder[pos:]...)...)
}

func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state != StatePlaying && e.state != StateBuffering {
		e.mu.Unlock()
		return
	}
	e.element.Pause()
	e.graph.SetPaused(true)
	e.state = StatePaused
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

func (e *Engine) TogglePlay() {
	e.mu.Lock()
	playing := e.state == StatePlaying || e.state == StateBuffering
	e.mu.Unlock()

	if playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// Next advances to the following track. At the tail it wraps in repeat-all
// mode; otherwise playback stops with the playhead reset to the start.
func (e *Engine) Next() {
	e.mu.Lock()
	e.advanceLocked()
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

func (e *Engine) advanceLocked() {
	if len(e.queue) == 0 {
		return
	}

	next := e.currentIndex + 1
	if next >= len(e.queue) {
		if e.mode == ModeRepeatAll {
			e.loadAndPlayLocked(0)
			return
		}
		// End of queue: stop, rewind, keep the track loaded.
		e.element.Pause()
		e.element.Seek(0)
		e.graph.SetPaused(true)
		e.state = StatePaused
		return
	}
	e.loadAndPlayLocked(next)
}

// Previous restarts the current track when more than three seconds in,
// otherwise steps back. At the head it always restarts.
func (e *Engine) Previous() {
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}

	if e.element.CurrentTime() > previousRestartThreshold || e.currentIndex <= 0 {
		e.element.Seek(0)
		ls := e.snapshotListeners()
		e.mu.Unlock()
		runAll(ls)
		return
	}

	e.loadAndPlayLocked(e.currentIndex - 1)
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// Seek moves the playhead; invalid positions are ignored by the element.
func (e *Engine) Seek(seconds float64) {
	e.element.Seek(seconds)
}

// SetVolume sets output volume on a 0..1 scale, clamped.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	e.mu.Lock()
	e.volume = v
	e.graph.SetGain(v)
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// SetMode switches the traversal mode. Entering shuffle reshuffles the
// queue while keeping the current song in place; leaving it restores the
// canonical order with the index following the current song.
func (e *Engine) SetMode(mode Mode) {
	e.mu.Lock()
	if mode == e.mode {
		e.mu.Unlock()
		return
	}

	leaving := e.mode == ModeShuffle
	e.mode = mode

	if mode == ModeShuffle {
		e.shuffleQueueLocked(false)
	} else if leaving {
		e.restoreOrderLocked()
	}

	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// shuffleQueueLocked does a Fisher-Yates shuffle and then a single repair
// pass that breaks up adjacent tracks by the same artist where possible.
// The current song keeps its identity: with pinCurrent it moves to the
// front of the shuffled order, otherwise currentIndex just follows it.
func (e *Engine) shuffleQueueLocked(pinCurrent bool) {
	n := len(e.queue)
	if n < 2 {
		return
	}

	currentID := ""
	if e.currentIndex >= 0 && e.currentIndex < n {
		currentID = e.queue[e.currentIndex].ID
	}

	for i := n - 1; i > 0; i-- {
		j := e.rng.Intn(i + 1)
		e.queue[i], e.queue[j] = e.queue[j], e.queue[i]
	}

	if pinCurrent && currentID != "" {
		for i, s := range e.queue {
			if s.ID == currentID {
				e.queue[0], e.queue[i] = e.queue[i], e.queue[0]
				break
			}
		}
		e.currentIndex = 0
	}

	// Best-effort artist spreading: one pass, swapping an offender with a
	// random later element. A pathological queue (all one artist) is left
	// as-is. Swaps only touch index 1 onward, so a pinned front stays put.
	for i := 1; i < n; i++ {
		if e.queue[i].Artist == "" || e.queue[i].Artist != e.queue[i-1].Artist {
			continue
		}
		if i+1 >= n {
			break
		}
		j := i + 1 + e.rng.Intn(n-i-1)
		e.queue[i], e.queue[j] = e.queue[j], e.queue[i]
	}

	if !pinCurrent && currentID != "" {
		for i, s := range e.queue {
			if s.ID == currentID {
				e.currentIndex = i
				break
			}
		}
	}
	e.preloadedID = ""
}

func (e *Engine) restoreOrderLocked() {
	currentID := ""
	if e.currentIndex >= 0 && e.currentIndex < len(e.queue) {
		currentID = e.queue[e.currentIndex].ID
	}

	e.queue = make([]song.Song, len(e.originalOrder))
	copy(e.queue, e.originalOrder)

	if currentID != "" {
		for i, s := range e.queue {
			if s.ID == currentID {
				e.currentIndex = i
				break
			}
		}
	}
	e.preloadedID = ""
}

func (e *Engine) ensureStartedLocked() {
	if e.started {
		return
	}
	if err := e.graph.Start(); err != nil {
		log.Error().Err(err).Msg("Failed to start audio graph")
		return
	}
	e.graph.SetGain(e.volume)
	e.started = true
}

// loadAndPlayLocked kicks off an async load of the song at index. A
// generation counter guards against stale completions: any load finishing
// after a newer one started is silently discarded.
func (e *Engine) loadAndPlayLocked(index int) {
	e.ensureStartedLocked()

	e.generation++
	gen := e.generation

	if e.cancelLoad != nil {
		e.cancelLoad()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelLoad = cancel

	e.currentIndex = index
	e.state = StateBuffering
	e.preloadedID = ""
	s := e.queue[index]

	go e.load(ctx, gen, s)
}

func (e *Engine) load(ctx context.Context, gen uint64, s song.Song) {
	var lastErr error

	// One retry after a short delay, then give up and stall.
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Str("title", s.Title).Msgf("Load failed, retrying in %v", e.retryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.retryDelay):
			}
		}

		url, err := e.resolver.StreamURL(ctx, s)
		if err != nil {
			lastErr = err
			continue
		}

		if !e.isCurrentGeneration(gen) {
			return
		}

		if err := e.element.Load(ctx, url); err != nil {
			lastErr = err
			continue
		}

		e.mu.Lock()
		if gen != e.generation {
			e.mu.Unlock()
			return
		}
		e.element.Play()
		e.graph.SetPaused(false)
		e.state = StatePlaying
		ls := e.snapshotListeners()
		e.mu.Unlock()
		runAll(ls)

		log.Debug().Str("title", s.Title).Str("artist", s.Artist).Msg("Now playing")
		return
	}

	if ctx.Err() != nil {
		return
	}

	// Stall rather than auto-skip: a broken network would otherwise chew
	// through the whole queue.
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.state = StateStalled
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)

	log.Error().Err(lastErr).Str("title", s.Title).Msg("Track failed to load")
}

func (e *Engine) isCurrentGeneration(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// handleTrackEnd runs when the element exhausts its track. Repeat-one loops
// the loaded track without touching the resolver.
func (e *Engine) handleTrackEnd() {
	e.mu.Lock()

	if e.mode == ModeRepeatOne {
		e.element.Seek(0)
		e.element.Play()
		e.state = StatePlaying
		ls := e.snapshotListeners()
		e.mu.Unlock()
		runAll(ls)
		return
	}

	e.advanceLocked()
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)
}

// handleProgress watches playback position and triggers the gapless preload
// once a track is 80% done. Preloading is best-effort and idempotent per
// upcoming track.
func (e *Engine) handleProgress(seconds float64) {
	duration := e.element.Duration()
	if duration <= 0 || seconds/duration < preloadProgressThreshold {
		return
	}

	e.mu.Lock()
	if !e.gapless || e.preloading || e.preloader == nil {
		e.mu.Unlock()
		return
	}

	next := e.currentIndex + 1
	if next >= len(e.queue) {
		if e.mode != ModeRepeatAll || len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		next = 0
	}

	target := e.queue[next]
	if target.ID == e.preloadedID {
		e.mu.Unlock()
		return
	}
	e.preloading = true
	e.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		url, err := e.resolver.StreamURL(ctx, target)
		if err == nil {
			err = e.preloader.Prefetch(ctx, url)
		}

		e.mu.Lock()
		e.preloading = false
		if err == nil {
			e.preloadedID = target.ID
		}
		e.mu.Unlock()

		if err != nil {
			log.Debug().Err(err).Str("title", target.Title).Msg("Preload failed")
		} else {
			log.Debug().Str("title", target.Title).Msg("Next track preloaded")
		}
	}()
}

// SetEQ adjusts a single equalizer band in dB.
func (e *Engine) SetEQ(band audio.Band, gainDB float64) {
	e.graph.SetBand(band, gainDB)
}

// ApplyEQPreset applies a named equalizer preset.
func (e *Engine) ApplyEQPreset(name string) error {
	return e.graph.ApplyPreset(name)
}

// SetGaplessEnabled toggles preloading of upcoming tracks.
func (e *Engine) SetGaplessEnabled(enabled bool) {
	e.mu.Lock()
	e.gapless = enabled
	if !enabled {
		e.preloadedID = ""
	}
	e.mu.Unlock()
}

func (e *Engine) GaplessEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gapless
}

// SetCrossfadeDuration stores the crossfade length, clamped to 0..10
// seconds. The transition hook consuming it is not wired yet; the stored
// value only round-trips through settings.
func (e *Engine) SetCrossfadeDuration(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if seconds > MaxCrossfadeSeconds {
		seconds = MaxCrossfadeSeconds
	}

	e.mu.Lock()
	e.crossfadeSeconds = seconds
	e.mu.Unlock()
}

func (e *Engine) CrossfadeDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.crossfadeSeconds
}

// SetRadioMode stores the endless-mix flag.
func (e *Engine) SetRadioMode(enabled bool) {
	e.mu.Lock()
	e.radioMode = enabled
	e.mu.Unlock()
}

func (e *Engine) RadioMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.radioMode
}

// SetSleepTimer arms a one-shot timer that fades volume out over a few
// seconds, pauses playback and restores the previous volume. Re-arming
// replaces any pending timer.
func (e *Engine) SetSleepTimer(d time.Duration) {
	e.mu.Lock()
	if e.sleepTimer != nil {
		e.sleepTimer.Stop()
	}
	e.savedVolume = e.volume
	e.sleepDeadline = time.Now().Add(d)
	e.sleepTimer = time.AfterFunc(d, e.sleepFire)
	e.mu.Unlock()

	log.Debug().Dur("duration", d).Msg("Sleep timer set")
}

// ClearSleepTimer cancels a pending sleep timer.
func (e *Engine) ClearSleepTimer() {
	e.mu.Lock()
	if e.sleepTimer != nil {
		e.sleepTimer.Stop()
		e.sleepTimer = nil
	}
	e.sleepDeadline = time.Time{}
	e.mu.Unlock()
}

// SleepTimerRemaining reports time left on the pending sleep timer, zero
// when none is armed.
func (e *Engine) SleepTimerRemaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sleepTimer == nil || e.sleepDeadline.IsZero() {
		return 0
	}
	remaining := time.Until(e.sleepDeadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (e *Engine) sleepFire() {
	e.mu.Lock()
	saved := e.savedVolume
	steps := e.sleepFadeSteps
	fade := e.sleepFade
	e.mu.Unlock()

	// Linear fade to silence, then pause and put the volume back so the
	// next Play resumes audibly.
	for i := 1; i <= steps; i++ {
		gain := saved * (1 - float64(i)/float64(steps))
		e.graph.SetGain(gain)
		time.Sleep(fade / time.Duration(steps))
	}

	e.mu.Lock()
	e.element.Pause()
	e.graph.SetPaused(true)
	if e.state == StatePlaying || e.state == StateBuffering {
		e.state = StatePaused
	}
	// Restore whatever the volume is now, not the level captured when the
	// timer was armed: a SetVolume issued mid-fade wins.
	e.graph.SetGain(e.volume)
	e.sleepTimer = nil
	e.sleepDeadline = time.Time{}
	ls := e.snapshotListeners()
	e.mu.Unlock()
	runAll(ls)

	log.Debug().Msg("Sleep timer fired, playback paused")
}

// Search queries the sources through the resolver.
func (e *Engine) Search(ctx context.Context, query string, limit int) []song.Song {
	return e.resolver.Search(ctx, query, limit)
}

// Recommendations returns follow-up songs for an id, or general ones when
// id is empty.
func (e *Engine) Recommendations(ctx context.Context, id string) []song.Song {
	return e.resolver.Recommendations(ctx, id)
}

// Charts returns trending songs.
func (e *Engine) Charts(ctx context.Context) []song.Song {
	return e.resolver.Charts(ctx)
}

func (e *Engine) CurrentSong() (song.Song, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentIndex < 0 || e.currentIndex >= len(e.queue) {
		return song.Song{}, false
	}
	return e.queue[e.currentIndex], true
}

func (e *Engine) Queue() []song.Song {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]song.Song, len(e.queue))
	copy(out, e.queue)
	return out
}

func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentIndex
}

func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Engine) CurrentTime() float64 {
	return e.element.CurrentTime()
}

func (e *Engine) Duration() float64 {
	return e.element.Duration()
}

// AudioData exposes the frequency visualization bytes from the graph.
func (e *Engine) AudioData() []byte {
	return e.graph.AudioData()
}

// WaveformData exposes the waveform visualization bytes from the graph.
func (e *Engine) WaveformData() []byte {
	return e.graph.WaveformData()
}
