package kinescope

import (
	"math"
	"testing"
)

// sliceSource is an in-memory PCMSource backed by a flat interleaved
// stereo buffer, for tests that need a concrete, deterministic source.
type sliceSource struct {
	samples []float32 // interleaved [L, R, L, R, ...]
}

func (s *sliceSource) ReadAt(dst []float32, sampleOffset int64) int {
	frames := len(dst) / 2
	written := 0
	for i := 0; i < frames; i++ {
		srcIdx := (sampleOffset + int64(i)) * 2
		if srcIdx < 0 || int(srcIdx)+1 >= len(s.samples) {
			continue
		}
		dst[i*2] = s.samples[srcIdx]
		dst[i*2+1] = s.samples[srcIdx+1]
		written = i + 1
	}
	return written
}

func (s *sliceSource) DurationSamples() int64 { return int64(len(s.samples) / 2) }

func sineSource(freq, sr float64, n int) *sliceSource {
	buf := make([]float32, n*2)
	for i := 0; i < n; i++ {
		v := float32(math.Sin(2 * math.Pi * freq * float64(i) / sr))
		buf[i*2] = v
		buf[i*2+1] = v
	}
	return &sliceSource{samples: buf}
}

func TestSamplePositionForMonotonicAndDriftFree(t *testing.T) {
	fps := 29.97
	var prev int64
	for f := 0.0; f < 1000; f++ {
		got := samplePositionFor(f, fps)
		if f > 0 && got < prev {
			t.Fatalf("samplePositionFor(%v) = %d, should be non-decreasing (prev %d)", f, got, prev)
		}
		prev = got
	}
	// After exactly one second of 29.97fps frames, the sample position
	// should land within rounding distance of one second of audio -- no
	// compounding drift from accumulating per-frame deltas.
	oneSecond := samplePositionFor(fps, fps)
	if math.Abs(float64(oneSecond)-InternalSampleRate) > 1 {
		t.Errorf("samplePositionFor(fps, fps) = %d, want ~%d", oneSecond, int64(InternalSampleRate))
	}
}

func TestMixRangeSampleCountMatchesFrameBoundaries(t *testing.T) {
	m := &AudioMixer{FPS: 30}
	fps := 30.0
	for f := 0.0; f < 5; f++ {
		out := m.MixRange(f, f+1, fps)
		want := int(samplePositionFor(f+1, fps) - samplePositionFor(f, fps))
		if len(out) != want*2 {
			t.Errorf("frame %v: MixRange produced %d samples, want %d", f, len(out)/2, want)
		}
	}
}

func TestMixTrackSumsOverlappingTracks(t *testing.T) {
	src := &sliceSource{samples: []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}}
	tr1 := NewAudioTrack(src, 0)
	tr2 := NewAudioTrack(src, 0)
	m := &AudioMixer{Tracks: []*AudioTrack{tr1, tr2}, FPS: 30}
	out := m.MixRange(0, 1, 30)
	if len(out) == 0 {
		t.Fatal("expected non-empty mix output")
	}
	if out[0] < 0.9 || out[0] > 1.1 {
		t.Errorf("two unity-volume tracks of 0.5 should sum to ~1.0, got %v", out[0])
	}
}

func TestMixTrackHonorsStartTime(t *testing.T) {
	src := &sliceSource{samples: make([]float32, 4*InternalSampleRate)}
	for i := range src.samples {
		src.samples[i] = 1
	}
	tr := NewAudioTrack(src, 2.0) // starts 2 seconds into the composition
	m := &AudioMixer{Tracks: []*AudioTrack{tr}, FPS: 30}

	before := m.MixRange(0, 1, 30) // well before start time
	for _, v := range before {
		if v != 0 {
			t.Fatalf("track should be silent before its start time, got %v", v)
		}
	}
}

func TestMixTrackLoopsWithinDuration(t *testing.T) {
	src := &sliceSource{samples: []float32{1, 1, -1, -1}} // 2 frames: +1, -1
	tr := NewAudioTrack(src, 0)
	tr.Loop = true
	m := &AudioMixer{Tracks: []*AudioTrack{tr}, FPS: InternalSampleRate / 2}
	// Ask for many more samples than the source holds; looping should
	// keep producing non-zero output instead of going silent past the end.
	out := m.MixRange(0, 8, InternalSampleRate/2)
	allZero := true
	for _, v := range out {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Error("looped track should not go silent past its source duration")
	}
}

func TestBandEnergySilenceIsZero(t *testing.T) {
	src := &sliceSource{samples: make([]float32, bandWindowSamples*2)}
	tr := NewAudioTrack(src, 0)
	if got := tr.BandEnergy(AudioBass, 0.01); got != 0 {
		t.Errorf("BandEnergy on silence = %v, want 0", got)
	}
}

func TestBandEnergyNoSourceIsZero(t *testing.T) {
	tr := NewAudioTrack(nil, 0)
	if got := tr.BandEnergy(AudioMids, 1.0); got != 0 {
		t.Errorf("BandEnergy with nil source = %v, want 0", got)
	}
}

func TestBandEnergyIsClampedToUnitRange(t *testing.T) {
	src := sineSource(100, InternalSampleRate, bandWindowSamples*4)
	tr := NewAudioTrack(src, 0)
	got := tr.BandEnergy(AudioBass, 0.02)
	if got < 0 || got > 1 {
		t.Fatalf("BandEnergy = %v, want value clamped to [0, 1]", got)
	}
}

func TestBandEnergyBassToneScoresHigherOnBassThanHighs(t *testing.T) {
	src := sineSource(80, InternalSampleRate, bandWindowSamples*4)
	tr := NewAudioTrack(src, 0)
	tSec := float64(bandWindowSamples) / InternalSampleRate
	bass := tr.BandEnergy(AudioBass, tSec)
	highs := tr.BandEnergy(AudioHighs, tSec)
	if bass <= highs {
		t.Errorf("an 80Hz tone should score higher on AudioBass (%v) than AudioHighs (%v)", bass, highs)
	}
}

func TestBandEnergyHighToneScoresHigherOnHighsThanBass(t *testing.T) {
	src := sineSource(8000, InternalSampleRate, bandWindowSamples*4)
	tr := NewAudioTrack(src, 0)
	tSec := float64(bandWindowSamples) / InternalSampleRate
	bass := tr.BandEnergy(AudioBass, tSec)
	highs := tr.BandEnergy(AudioHighs, tSec)
	if highs <= bass {
		t.Errorf("an 8kHz tone should score higher on AudioHighs (%v) than AudioBass (%v)", highs, bass)
	}
}

func TestEuclideanModIntAlwaysNonNegative(t *testing.T) {
	if got := euclideanModInt(-3, 5); got != 2 {
		t.Errorf("euclideanModInt(-3, 5) = %d, want 2", got)
	}
	if got := euclideanModInt(7, 5); got != 2 {
		t.Errorf("euclideanModInt(7, 5) = %d, want 2", got)
	}
}
