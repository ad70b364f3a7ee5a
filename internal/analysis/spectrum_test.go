package analysis

import (
	"math"
	"testing"
)

func TestPadPow2(t *testing.T) {
	got := PadPow2(make([]float64, 5))
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	got = PadPow2(make([]float64, 8))
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
}

func TestFFTConstantSignal(t *testing.T) {
	data := []float64{1, 1, 1, 1}
	f := FFT(data)
	if math.Abs(real(f[0])-4) > 1e-9 {
		t.Errorf("DC bin = %v, want 4", f[0])
	}
	for i := 1; i < len(f); i++ {
		if math.Abs(real(f[i])) > 1e-9 || math.Abs(imag(f[i])) > 1e-9 {
			t.Errorf("bin %d = %v, want 0", i, f[i])
		}
	}
}

func TestDominantFindsSineFrequency(t *testing.T) {
	const (
		sampleRate = 128.0
		sineFreq   = 4.0
	)
	data := make([]float64, 512)
	for i := range data {
		ti := float64(i) / sampleRate
		data[i] = 2.5 + math.Sin(2*math.Pi*sineFreq*ti)
	}

	freq, power := Dominant(data, sampleRate)
	if power <= 0 {
		t.Fatal("no dominant frequency found")
	}
	if math.Abs(freq-sineFreq) > sampleRate/float64(len(data)) {
		t.Errorf("freq = %.3f, want %.3f", freq, sineFreq)
	}
}

func TestDominantShortTrace(t *testing.T) {
	if freq, power := Dominant([]float64{1, 2}, 100); freq != 0 || power != 0 {
		t.Errorf("got %v, %v; want 0, 0", freq, power)
	}
}
