package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	// GraphSampleRate is the fixed output rate; inputs at other rates are
	// resampled before they reach the graph.
	GraphSampleRate   = beep.SampleRate(44100)
	SpeakerBufferSize = time.Millisecond * 250
)

// Graph is the persistent playback chain: a swappable input feeds the
// equalizer, an analyser tap, a volume stage and a pause control. The chain
// is registered with the speaker once and survives track changes by
// emitting silence whenever no input is bound.
type Graph struct {
	mu    sync.Mutex
	input beep.Streamer

	eq       *Equalizer
	analyser *Analyser
	volume   *effects.Volume
	ctrl     *beep.Ctrl

	started bool
	gain    float64
}

func NewGraph() *Graph {
	g := &Graph{
		eq:       NewEqualizer(float64(GraphSampleRate)),
		analyser: NewAnalyser(),
		gain:     1,
	}
	g.volume = &effects.Volume{
		Streamer: beep.Streamer(g),
		Base:     2,
		Volume:   0,
		Silent:   false,
	}
	g.ctrl = &beep.Ctrl{
		Streamer: g.volume,
		Paused:   false,
	}
	return g
}

// Start initializes the audio device on first use and attaches the chain.
// Subsequent calls are no-ops.
func (g *Graph) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return nil
	}

	if err := speaker.Init(GraphSampleRate, GraphSampleRate.N(SpeakerBufferSize)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	speaker.Play(g.ctrl)
	g.started = true

	log.Debug().Msgf("Audio graph started at %d Hz, buffer %v", GraphSampleRate, SpeakerBufferSize)
	return nil
}

// lock takes the speaker mutex when the graph is live so chain mutations
// cannot race the audio callback.
func (g *Graph) lock() func() {
	g.mu.Lock()
	started := g.started
	g.mu.Unlock()

	if started {
		speaker.Lock()
		return speaker.Unlock
	}
	return func() {}
}

// Stream pulls from the bound input through the equalizer and analyser.
// It always reports ok so the speaker never drops the chain; missing or
// exhausted input becomes silence.
func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	input := g.input
	g.mu.Unlock()

	n := 0
	if input != nil {
		n, _ = input.Stream(samples)
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	if n > 0 {
		g.eq.process(samples[:n])
		g.analyser.push(samples[:n])
	}

	return len(samples), true
}

func (g *Graph) Err() error {
	return nil
}

// Bind swaps in a new input streamer, replacing any previous one.
func (g *Graph) Bind(s beep.Streamer) {
	unlock := g.lock()
	defer unlock()

	g.mu.Lock()
	g.input = s
	g.mu.Unlock()
	g.analyser.setActive(s != nil)
}

// Unbind detaches the current input; the graph keeps streaming silence.
func (g *Graph) Unbind() {
	g.Bind(nil)
}

func (g *Graph) SetPaused(paused bool) {
	unlock := g.lock()
	defer unlock()

	g.ctrl.Paused = paused
}

func (g *Graph) Paused() bool {
	unlock := g.lock()
	defer unlock()

	return g.ctrl.Paused
}

// SetGain sets the output level on a 0..1 scale. The volume stage works in
// powers of two, so the linear gain maps through log2; zero mutes outright.
func (g *Graph) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}

	unlock := g.lock()
	defer unlock()

	g.mu.Lock()
	g.gain = gain
	g.mu.Unlock()

	if gain == 0 {
		g.volume.Silent = true
		return
	}
	g.volume.Silent = false
	g.volume.Volume = math.Log2(gain)
}

func (g *Graph) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gain
}

// SetBand adjusts one equalizer band in dB, clamped to +/-10.
func (g *Graph) SetBand(band Band, gainDB float64) {
	unlock := g.lock()
	defer unlock()

	g.eq.SetBand(band, gainDB)
}

func (g *Graph) BandGain(band Band) float64 {
	unlock := g.lock()
	defer unlock()

	return g.eq.BandGain(band)
}

// ApplyPreset sets all three bands from a named preset.
func (g *Graph) ApplyPreset(name string) error {
	preset, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown equalizer preset: %s", name)
	}

	unlock := g.lock()
	defer unlock()

	g.eq.SetBand(BandBass, preset.Bass)
	g.eq.SetBand(BandMid, preset.Mid)
	g.eq.SetBand(BandTreble, preset.Treble)

	log.Debug().Str("preset", name).Msg("Equalizer preset applied")
	return nil
}

// AudioData returns frequency-domain visualization bytes from the analyser tap.
func (g *Graph) AudioData() []byte {
	return g.analyser.AudioData()
}

// WaveformData returns time-domain visualization bytes from the analyser tap.
func (g *Graph) WaveformData() []byte {
	return g.analyser.WaveformData()
}
