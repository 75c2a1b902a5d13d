package audio

import (
	"math"
	"sync"
)

const (
	analyserWindow = 256
	analyserBins   = analyserWindow / 2
)

// Analyser keeps a rolling window of the most recent mono-mixed samples and
// derives visualization data from it on demand. It sits as a passive tap in
// the playback graph; when nothing has streamed through it yet, it reports
// neutral data instead of garbage.
type Analyser struct {
	mu     sync.Mutex
	window [analyserWindow]float64
	pos    int
	filled bool
	active bool
}

func NewAnalyser() *Analyser {
	return &Analyser{}
}

// push mixes a batch of stereo samples into the rolling window.
func (a *Analyser) push(samples [][2]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active = true
	for i := range samples {
		a.window[a.pos] = (samples[i][0] + samples[i][1]) / 2
		a.pos++
		if a.pos == analyserWindow {
			a.pos = 0
			a.filled = true
		}
	}
}

// setActive marks whether audio is flowing. Inactive analysers report
// neutral data regardless of window contents.
func (a *Analyser) setActive(active bool) {
	a.mu.Lock()
	a.active = active
	a.mu.Unlock()
}

// snapshot returns the window in chronological order.
func (a *Analyser) snapshot() ([]float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active {
		return nil, false
	}

	out := make([]float64, analyserWindow)
	if a.filled {
		n := copy(out, a.window[a.pos:])
		copy(out[n:], a.window[:a.pos])
	} else {
		copy(out, a.window[:a.pos])
	}
	return out, true
}

// WaveformData returns time-domain bytes centered at 128, one per window
// sample. Silence maps to a flat line of 128s.
func (a *Analyser) WaveformData() []byte {
	out := make([]byte, analyserWindow)
	window, ok := a.snapshot()
	if !ok {
		for i := range out {
			out[i] = 128
		}
		return out
	}

	for i := range out {
		v := 128 + window[i]*127
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// AudioData returns frequency-domain magnitudes as bytes, one per bin up to
// the Nyquist frequency. Computed with a direct DFT over the small window;
// at 128 bins this is cheap enough to run per UI frame.
func (a *Analyser) AudioData() []byte {
	out := make([]byte, analyserBins)
	window, ok := a.snapshot()
	if !ok {
		return out
	}

	n := float64(len(window))
	for bin := 0; bin < analyserBins; bin++ {
		var re, im float64
		for i, s := range window {
			angle := 2 * math.Pi * float64(bin) * float64(i) / n
			re += s * math.Cos(angle)
			im -= s * math.Sin(angle)
		}
		magnitude := 2 * math.Sqrt(re*re+im*im) / n

		v := magnitude * 255
		if v > 255 {
			v = 255
		}
		out[bin] = byte(v)
	}
	return out
}
