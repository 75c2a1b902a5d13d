package audio

import "math"

const (
	bassFreq   = 200.0
	midFreq    = 1000.0
	trebleFreq = 3000.0

	midQ       = 1.0
	shelfSlope = 1.0

	// MaxBandGainDB bounds each equalizer band to +/-10 dB.
	MaxBandGainDB = 10.0
)

// Band identifies one of the three equalizer bands.
type Band int

const (
	BandBass Band = iota
	BandMid
	BandTreble
)

func (b Band) String() string {
	switch b {
	case BandBass:
		return "bass"
	case BandMid:
		return "mid"
	case BandTreble:
		return "treble"
	default:
		return "unknown"
	}
}

// ClampGainDB limits a band gain to the supported range.
func ClampGainDB(db float64) float64 {
	if db < -MaxBandGainDB {
		return -MaxBandGainDB
	}
	if db > MaxBandGainDB {
		return MaxBandGainDB
	}
	return db
}

// biquad is a stereo second-order IIR filter in Direct Form I. Coefficients
// are pre-normalized by a0.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 [2]float64
	y1, y2 [2]float64
}

func (f *biquad) reset() {
	f.x1, f.x2 = [2]float64{}, [2]float64{}
	f.y1, f.y2 = [2]float64{}, [2]float64{}
}

func (f *biquad) setIdentity() {
	f.b0, f.b1, f.b2 = 1, 0, 0
	f.a1, f.a2 = 0, 0
}

// process filters samples in place, keeping per-channel history across calls.
func (f *biquad) process(samples [][2]float64) {
	for i := range samples {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch] = f.x1[ch]
			f.x1[ch] = x
			f.y2[ch] = f.y1[ch]
			f.y1[ch] = y
			samples[i][ch] = y
		}
	}
}

// The filter designs below follow the RBJ audio EQ cookbook.

func (f *biquad) setLowShelf(sampleRate, freq, gainDB float64) {
	if gainDB == 0 {
		f.setIdentity()
		return
	}

	A := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / 2 * math.Sqrt((A+1/A)*(1/shelfSlope-1)+2)
	sqrtA := math.Sqrt(A)

	b0 := A * ((A + 1) - (A-1)*cosw0 + 2*sqrtA*alpha)
	b1 := 2 * A * ((A - 1) - (A+1)*cosw0)
	b2 := A * ((A + 1) - (A-1)*cosw0 - 2*sqrtA*alpha)
	a0 := (A + 1) + (A-1)*cosw0 + 2*sqrtA*alpha
	a1 := -2 * ((A - 1) + (A+1)*cosw0)
	a2 := (A + 1) + (A-1)*cosw0 - 2*sqrtA*alpha

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

func (f *biquad) setHighShelf(sampleRate, freq, gainDB float64) {
	if gainDB == 0 {
		f.setIdentity()
		return
	}

	A := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / 2 * math.Sqrt((A+1/A)*(1/shelfSlope-1)+2)
	sqrtA := math.Sqrt(A)

	b0 := A * ((A + 1) + (A-1)*cosw0 + 2*sqrtA*alpha)
	b1 := -2 * A * ((A - 1) + (A+1)*cosw0)
	b2 := A * ((A + 1) + (A-1)*cosw0 - 2*sqrtA*alpha)
	a0 := (A + 1) - (A-1)*cosw0 + 2*sqrtA*alpha
	a1 := 2 * ((A - 1) - (A+1)*cosw0)
	a2 := (A + 1) - (A-1)*cosw0 - 2*sqrtA*alpha

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

func (f *biquad) setPeaking(sampleRate, freq, q, gainDB float64) {
	if gainDB == 0 {
		f.setIdentity()
		return
	}

	A := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / (2 * q)

	b0 := 1 + alpha*A
	b1 := -2 * cosw0
	b2 := 1 - alpha*A
	a0 := 1 + alpha/A
	a1 := -2 * cosw0
	a2 := 1 - alpha/A

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

// Equalizer chains a bass low-shelf, a mid peaking filter and a treble
// high-shelf. Zero-gain bands collapse to identity filters.
type Equalizer struct {
	sampleRate float64
	bass       biquad
	mid        biquad
	treble     biquad
	gains      [3]float64
}

func NewEqualizer(sampleRate float64) *Equalizer {
	eq := &Equalizer{sampleRate: sampleRate}
	eq.bass.setIdentity()
	eq.mid.setIdentity()
	eq.treble.setIdentity()
	return eq
}

// SetBand updates one band's gain in dB, clamped to +/-10.
func (eq *Equalizer) SetBand(band Band, gainDB float64) {
	gainDB = ClampGainDB(gainDB)

	switch band {
	case BandBass:
		eq.bass.setLowShelf(eq.sampleRate, bassFreq, gainDB)
		eq.bass.reset()
	case BandMid:
		eq.mid.setPeaking(eq.sampleRate, midFreq, midQ, gainDB)
		eq.mid.reset()
	case BandTreble:
		eq.treble.setHighShelf(eq.sampleRate, trebleFreq, gainDB)
		eq.treble.reset()
	default:
		return
	}
	eq.gains[band] = gainDB
}

// BandGain returns the current gain of a band in dB.
func (eq *Equalizer) BandGain(band Band) float64 {
	if band < BandBass || band > BandTreble {
		return 0
	}
	return eq.gains[band]
}

func (eq *Equalizer) process(samples [][2]float64) {
	if eq.gains[BandBass] != 0 {
		eq.bass.process(samples)
	}
	if eq.gains[BandMid] != 0 {
		eq.mid.process(samples)
	}
	if eq.gains[BandTreble] != 0 {
		eq.treble.process(samples)
	}
}

// Preset holds per-band gains in dB.
type Preset struct {
	Bass   float64
	Mid    float64
	Treble float64
}

// Presets are the named equalizer curves selectable from settings.
var Presets = map[string]Preset{
	"flat":       {0, 0, 0},
	"rock":       {5, -2, 4},
	"pop":        {3, 2, 3},
	"jazz":       {2, 3, 2},
	"classical":  {-2, 2, 4},
	"electronic": {6, -1, 5},
	"bassBoost":  {8, 0, 2},
	"vocalBoost": {-2, 6, 3},
}
