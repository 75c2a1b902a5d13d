package audio

import (
	"math"
	"testing"
)

func TestWaveformDataNeutralWhenInactive(t *testing.T) {
	a := NewAnalyser()

	data := a.WaveformData()
	if len(data) != analyserWindow {
		t.Fatalf("WaveformData() length = %d, want %d", len(data), analyserWindow)
	}
	for i, b := range data {
		if b != 128 {
			t.Fatalf("inactive waveform byte %d = %d, want 128", i, b)
		}
	}
}

func TestAudioDataZeroWhenInactive(t *testing.T) {
	a := NewAnalyser()

	data := a.AudioData()
	if len(data) != analyserBins {
		t.Fatalf("AudioData() length = %d, want %d", len(data), analyserBins)
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("inactive audio byte %d = %d, want 0", i, b)
		}
	}
}

func TestWaveformDataTracksSamples(t *testing.T) {
	a := NewAnalyser()

	// A constant positive level should land above the 128 midline.
	samples := make([][2]float64, analyserWindow)
	for i := range samples {
		samples[i] = [2]float64{0.5, 0.5}
	}
	a.push(samples)

	data := a.WaveformData()
	level := 128 + 0.5*127.0
	want := byte(level)
	for i, b := range data {
		if b != want {
			t.Fatalf("waveform byte %d = %d, want %d", i, b, want)
		}
	}
}

func TestWaveformDataSilenceAfterActivation(t *testing.T) {
	a := NewAnalyser()

	samples := make([][2]float64, analyserWindow)
	a.push(samples)

	for i, b := range a.WaveformData() {
		if b != 128 {
			t.Fatalf("silent waveform byte %d = %d, want 128", i, b)
		}
	}
}

func TestAudioDataDetectsTone(t *testing.T) {
	a := NewAnalyser()

	// A sine aligned to bin 8 of the window should dominate that bin.
	const bin = 8
	samples := make([][2]float64, analyserWindow)
	for i := range samples {
		v := 0.5 * math.Sin(2*math.Pi*bin*float64(i)/analyserWindow)
		samples[i] = [2]float64{v, v}
	}
	a.push(samples)

	data := a.AudioData()
	if data[bin] < 100 {
		t.Errorf("tone bin magnitude = %d, want at least 100", data[bin])
	}

	for i, b := range data {
		if i == bin {
			continue
		}
		if b > data[bin]/2 {
			t.Errorf("off-tone bin %d magnitude = %d, should be well below the tone bin %d", i, b, data[bin])
		}
	}
}

func TestAnalyserDeactivate(t *testing.T) {
	a := NewAnalyser()

	samples := make([][2]float64, 64)
	for i := range samples {
		samples[i] = [2]float64{0.9, 0.9}
	}
	a.push(samples)
	a.setActive(false)

	for _, b := range a.WaveformData() {
		if b != 128 {
			t.Fatal("deactivated analyser should report neutral waveform")
		}
	}
}
