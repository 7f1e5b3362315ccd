package kinescope

import "math"

// InternalSampleRate is the mixer's fixed internal rate (spec §4.8:
// "interleaved stereo f32 at a fixed internal rate (48 kHz)").
const InternalSampleRate = 48000

// samplePositionFor implements the drift-free sample-count formula (spec
// §4.1): sample_position_for(f) = round(f * sample_rate / fps). Using
// this for every frame boundary — rather than accumulating
// samples-per-frame incrementally — is what keeps audio and video
// sample-exactly aligned over arbitrarily long renders: rounding error
// never compounds because each boundary is computed fresh from f=0.
func samplePositionFor(frame float64, fps float64) int64 {
	return int64(math.Round(frame * InternalSampleRate / fps))
}

// AudioTrack is one PCM source the mixer can sum into its output buffer
// (spec §4.8: "{start_time, trim_start, volume (Animatable), loop?}").
type AudioTrack struct {
	Source     PCMSource
	StartTime  float64 // composition-relative time the track begins playing
	TrimStart  float64 // seconds to skip at the start of Source
	Volume     Keyframed[Float64]
	Loop       bool
	loopLength float64 // not read by the mixer; loop wraparound uses Source.DurationSamples()
}

// PCMSource supplies interleaved stereo f32 samples at InternalSampleRate.
// Concrete decoders (e.g. a WAV/MP3 reader) implement this; tests can
// supply an in-memory slice-backed implementation.
type PCMSource interface {
	// ReadAt fills dst with samples starting at the given sample offset
	// (not byte offset; one "sample" here means one interleaved L/R pair).
	// Returns the number of stereo frames written; short reads past the
	// end of the source are zero-filled by the caller, not by ReadAt.
	ReadAt(dst []float32, sampleOffset int64) (framesWritten int)
	// DurationSamples reports the source's total length for looping and
	// trimming; implementations backing an infinite/live source return
	// -1, disabling looping for that track.
	DurationSamples() int64
}

// NewAudioTrack constructs a track at unity volume, not looping.
func NewAudioTrack(source PCMSource, startTime float64) *AudioTrack {
	return &AudioTrack{
		Source:    source,
		StartTime: startTime,
		Volume:    Keyframed[Float64]{Keyframes: []Keyframe[Float64]{{Frame: 0, ValueStart: 1}}},
	}
}

// AudioMixer sums time-sliced PCM tracks, plus any Nested sources, into a
// frame-sized buffer (spec §4.8). Nested compositions in a scene are mixed
// in by Director.MixAudio, which calls each CompositionElement's MixAudio.
type AudioMixer struct {
	Tracks []*AudioTrack
	FPS    float64

	// Nested holds extra sources summed into every mix; each entry mixes
	// its own content on demand, translated into this mixer's time frame.
	// Nothing in this package appends to it.
	Nested []NestedMix
}

// NestedMix describes a nested composition's contribution to the parent
// mixer: Mix is invoked with the window already translated by the
// composition's local start time (spec §4.8: "recurse into the child
// mixer with translated time window").
type NestedMix struct {
	Mix func(fromFrame, toFrame float64) []float32
}

// MixFrame produces exactly the number of stereo sample pairs the
// drift-free formula assigns to frame `frame` at fps, i.e.
// samplePositionFor(frame+1, fps) - samplePositionFor(frame, fps) frames
// of interleaved [L, R] f32 samples.
func (m *AudioMixer) MixFrame(frame float64, fps float64) []float32 {
	return m.MixRange(frame, frame+1, fps)
}

// MixRange mixes the sample range covering composition time [fromFrame,
// toFrame) at fps, matching the mix_audio(t, t+1/fps) contract (spec
// §4.1). fromFrame/toFrame are measured in frame units (t*fps), not
// seconds, to keep every caller computing offsets from the same
// frame-indexed formula.
func (m *AudioMixer) MixRange(fromFrame, toFrame float64, fps float64) []float32 {
	startSample := samplePositionFor(fromFrame, fps)
	endSample := samplePositionFor(toFrame, fps)
	n := int(endSample - startSample)
	if n <= 0 {
		return nil
	}
	out := make([]float32, n*2)

	fromTime := fromFrame / fps
	toTime := toFrame / fps

	for _, tr := range m.Tracks {
		mixTrack(out, tr, fromTime, toTime)
	}
	for _, nested := range m.Nested {
		sub := nested.Mix(fromFrame, toFrame)
		for i := 0; i < len(out) && i < len(sub); i++ {
			out[i] += sub[i]
		}
	}
	return out
}

func mixTrack(out []float32, tr *AudioTrack, fromTime, toTime float64) {
	if tr.Source == nil {
		return
	}
	trackFrom := fromTime - tr.StartTime
	n := len(out) / 2

	duration := tr.Source.DurationSamples()
	for i := 0; i < n; i++ {
		tSec := trackFrom + float64(i)/InternalSampleRate
		if tSec < 0 {
			continue
		}
		srcSample := int64(math.Round((tSec + tr.TrimStart) * InternalSampleRate))
		if tr.Loop && duration > 0 {
			srcSample = euclideanModInt(srcSample, duration)
		} else if duration >= 0 && srcSample >= duration {
			continue
		}
		frac := make([]float32, 2)
		if tr.Source.ReadAt(frac, srcSample) == 0 {
			continue
		}
		vol := float64(tr.Volume.Eval(tSec * 1000))
		out[i*2] += frac[0] * float32(vol)
		out[i*2+1] += frac[1] * float32(vol)
	}
	_ = toTime
}

func euclideanModInt(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// AudioBand selects a frequency range for BandEnergy, backing the
// scene-builder's `track.bass/mids/highs(time)` sugar (spec §6).
type AudioBand uint8

const (
	AudioBass AudioBand = iota
	AudioMids
	AudioHighs
)

// band edge frequencies (Hz), chosen to roughly split music into a
// kick/bass range, a vocal/instrument midrange, and cymbals/air.
const (
	bassCutoff = 250.0
	highCutoff = 4000.0
)

// bandWindowSamples is the analysis window BandEnergy reads around the
// query time: long enough to resolve bassCutoff (a full 250Hz cycle is
// ~192 samples at 48kHz) without smearing across more than ~21ms.
const bandWindowSamples = 1024

// BandEnergy estimates track's normalized [0,1] energy in band, centered
// on tSec, for driving a node property via BindAudio. There is no FFT or
// audio-analysis library anywhere in the reference corpus (an ebiten game
// engine has no use for one), so band separation is done with a pair of
// one-pole RC filters — the same cheap, well-understood technique a game
// engine's VU-meter effect would use — rather than pulling in a DSP
// library or hand-rolling an FFT.
func (tr *AudioTrack) BandEnergy(band AudioBand, tSec float64) float64 {
	if tr.Source == nil {
		return 0
	}
	centerSample := int64(math.Round(tSec * InternalSampleRate))
	start := centerSample - bandWindowSamples/2
	if start < 0 {
		start = 0
	}
	buf := make([]float32, bandWindowSamples*2)
	n := tr.Source.ReadAt(buf, start)
	if n == 0 {
		return 0
	}
	mono := make([]float64, n)
	for i := 0; i < n; i++ {
		mono[i] = float64(buf[i*2]+buf[i*2+1]) / 2
	}
	switch band {
	case AudioBass:
		mono = onePoleLowpass(mono, bassCutoff, InternalSampleRate)
	case AudioHighs:
		mono = onePoleHighpass(mono, highCutoff, InternalSampleRate)
	default:
		mono = onePoleHighpass(mono, bassCutoff, InternalSampleRate)
		mono = onePoleLowpass(mono, highCutoff, InternalSampleRate)
	}
	return clampBandEnergy(rms(mono))
}

// onePoleLowpass applies a first-order RC lowpass with the given cutoff
// (Hz) at sample rate sr, passing frequencies below cutoff through
// largely unattenuated.
func onePoleLowpass(x []float64, cutoff, sr float64) []float64 {
	rc := 1 / (2 * math.Pi * cutoff)
	dt := 1 / sr
	alpha := dt / (rc + dt)
	y := make([]float64, len(x))
	prev := 0.0
	for i, v := range x {
		prev += alpha * (v - prev)
		y[i] = prev
	}
	return y
}

// onePoleHighpass applies the complementary first-order RC highpass,
// passing frequencies above cutoff.
func onePoleHighpass(x []float64, cutoff, sr float64) []float64 {
	rc := 1 / (2 * math.Pi * cutoff)
	dt := 1 / sr
	alpha := rc / (rc + dt)
	y := make([]float64, len(x))
	prevX, prevY := 0.0, 0.0
	for i, v := range x {
		cur := alpha * (prevY + v - prevX)
		y[i] = cur
		prevY = cur
		prevX = v
	}
	return y
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// bandReferenceLevel is the RMS level treated as "full scale" (1.0) for
// BandEnergy's output; full-scale sine RMS is ~0.707, but music rarely
// drives a single band that hard, so a lower reference keeps typical
// material usable without every caller rescaling it themselves.
const bandReferenceLevel = 0.3

func clampBandEnergy(v float64) float64 {
	v /= bandReferenceLevel
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
