package audio

import (
	"math"
	"testing"
)

const testSampleRate = 44100.0

func sineWave(freq float64, n int) [][2]float64 {
	samples := make([][2]float64, n)
	for i := range samples {
		v := 0.5 * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
		samples[i] = [2]float64{v, v}
	}
	return samples
}

func rms(samples [][2]float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s[0] * s[0]
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestClampGainDB(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{5, 5},
		{-5, -5},
		{10, 10},
		{-10, -10},
		{15, 10},
		{-15, -10},
	}

	for _, tt := range tests {
		if got := ClampGainDB(tt.in); got != tt.want {
			t.Errorf("ClampGainDB(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEqualizerFlatIsPassthrough(t *testing.T) {
	eq := NewEqualizer(testSampleRate)

	samples := sineWave(440, 1024)
	original := make([][2]float64, len(samples))
	copy(original, samples)

	eq.process(samples)

	for i := range samples {
		if samples[i] != original[i] {
			t.Fatalf("flat equalizer altered sample %d: %v != %v", i, samples[i], original[i])
		}
	}
}

func TestEqualizerBassBoostRaisesLowFrequencies(t *testing.T) {
	eq := NewEqualizer(testSampleRate)
	eq.SetBand(BandBass, 10)

	// A 50 Hz tone sits well below the 200 Hz shelf corner; +10 dB should
	// roughly triple its amplitude once the filter settles.
	samples := sineWave(50, 8820)
	before := rms(samples[4410:])
	eq.process(samples)
	after := rms(samples[4410:])

	if after < before*2 {
		t.Errorf("bass boost gain = %.2fx, want at least 2x", after/before)
	}
}

func TestEqualizerTrebleCutLowersHighFrequencies(t *testing.T) {
	eq := NewEqualizer(testSampleRate)
	eq.SetBand(BandTreble, -10)

	samples := sineWave(10000, 8820)
	before := rms(samples[4410:])
	eq.process(samples)
	after := rms(samples[4410:])

	if after > before*0.6 {
		t.Errorf("treble cut left %.2fx of the signal, want under 0.6x", after/before)
	}
}

func TestEqualizerBassBoostLeavesHighsAlone(t *testing.T) {
	eq := NewEqualizer(testSampleRate)
	eq.SetBand(BandBass, 10)

	samples := sineWave(10000, 8820)
	before := rms(samples[4410:])
	eq.process(samples)
	after := rms(samples[4410:])

	ratio := after / before
	if ratio < 0.8 || ratio > 1.2 {
		t.Errorf("low shelf changed a 10 kHz tone by %.2fx, want close to 1x", ratio)
	}
}

func TestEqualizerBandGainClamped(t *testing.T) {
	eq := NewEqualizer(testSampleRate)

	eq.SetBand(BandMid, 25)
	if got := eq.BandGain(BandMid); got != MaxBandGainDB {
		t.Errorf("BandGain after over-range set = %v, want %v", got, MaxBandGainDB)
	}

	eq.SetBand(BandMid, -25)
	if got := eq.BandGain(BandMid); got != -MaxBandGainDB {
		t.Errorf("BandGain after under-range set = %v, want %v", got, -MaxBandGainDB)
	}
}

func TestEqualizerZeroGainResetsToIdentity(t *testing.T) {
	eq := NewEqualizer(testSampleRate)
	eq.SetBand(BandBass, 8)
	eq.SetBand(BandBass, 0)

	samples := sineWave(50, 1024)
	original := make([][2]float64, len(samples))
	copy(original, samples)

	eq.process(samples)

	for i := range samples {
		if samples[i] != original[i] {
			t.Fatalf("zeroed band still altered sample %d", i)
		}
	}
}

func TestPresets(t *testing.T) {
	names := []string{"flat", "rock", "pop", "jazz", "classical", "electronic", "bassBoost", "vocalBoost"}

	for _, name := range names {
		preset, ok := Presets[name]
		if !ok {
			t.Errorf("preset %q missing", name)
			continue
		}
		for _, gain := range []float64{preset.Bass, preset.Mid, preset.Treble} {
			if gain < -MaxBandGainDB || gain > MaxBandGainDB {
				t.Errorf("preset %q has out-of-range gain %v", name, gain)
			}
		}
	}

	if flat := Presets["flat"]; flat.Bass != 0 || flat.Mid != 0 || flat.Treble != 0 {
		t.Errorf("flat preset = %+v, want all zeros", flat)
	}
}

func TestBandString(t *testing.T) {
	if BandBass.String() != "bass" || BandMid.String() != "mid" || BandTreble.String() != "treble" {
		t.Error("Band.String() returned unexpected names")
	}
}
