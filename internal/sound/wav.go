package sound

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)

	clickFreq     = 1800.0
	clickLength   = 12 * time.Millisecond
	clickDecay    = 3 * time.Millisecond
	chimeFreq     = 880.0
	chimeLength   = 400 * time.Millisecond
	chimeDecay    = 120 * time.Millisecond
	tailAfterStop = 450 * time.Millisecond
)

// Options tunes the rendered track.
type Options struct {
	SampleRate beep.SampleRate
	// Volume is a linear gain; zero means 1 and negative mutes.
	Volume float64
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Volume == 0 {
		o.Volume = 1
	}
	return o
}

// Track builds the soundtrack of a spin: a ratchet click at every boundary
// crossing and a chime when the wheel settles. It returns the streamer and its
// length in samples.
func Track(plan spin.Plan, opts Options) (beep.Streamer, int) {
	opts = opts.withDefaults()
	rate := opts.SampleRate

	clicksAt := Clicks(plan)
	starts := make([]int, 0, len(clicksAt))
	for _, at := range clicksAt {
		starts = append(starts, rate.N(at))
	}
	length := rate.N(plan.Duration + tailAfterStop)

	clicks := newPings(starts, clickFreq, rate.N(clickLength), rate.N(clickDecay), rate, length)
	chime := beep.Seq(
		beep.Silence(rate.N(plan.Duration)),
		newPings([]int{0}, chimeFreq, rate.N(chimeLength), rate.N(chimeDecay), rate, rate.N(chimeLength)),
	)
	mixed := beep.Mix(volume(clicks, 0.6), volume(chime, 0.4))
	return beep.Take(length, volume(mixed, opts.Volume)), length
}

// WriteWAV encodes the spin's soundtrack as 16-bit stereo WAV.
func WriteWAV(w io.WriteSeeker, plan spin.Plan, opts Options) error {
	opts = opts.withDefaults()
	s, _ := Track(plan, opts)
	format := beep.Format{SampleRate: opts.SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("sound: encode wav: %w", err)
	}
	return nil
}

func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// pings is a sine burst with exponential decay starting at each offset.
// Overlapping bursts add.
type pings struct {
	starts []int
	freq   float64
	span   int
	decay  float64
	rate   beep.SampleRate
	length int
	pos    int
	first  int
}

func newPings(starts []int, freq float64, span, decay int, rate beep.SampleRate, length int) *pings {
	if decay < 1 {
		decay = 1
	}
	return &pings{
		starts: starts,
		freq:   freq,
		span:   span,
		decay:  float64(decay),
		rate:   rate,
		length: length,
	}
}

func (p *pings) Stream(samples [][2]float64) (int, bool) {
	if p.pos >= p.length {
		return 0, false
	}
	for i := range samples {
		if p.pos >= p.length {
			return i, true
		}
		for p.first < len(p.starts) && p.starts[p.first]+p.span <= p.pos {
			p.first++
		}
		var v float64
		for j := p.first; j < len(p.starts) && p.starts[j] <= p.pos; j++ {
			k := float64(p.pos - p.starts[j])
			v += math.Sin(2*math.Pi*p.freq*k/float64(p.rate)) * math.Exp(-k/p.decay)
		}
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		samples[i][0], samples[i][1] = v, v
		p.pos++
	}
	return len(samples), true
}

func (p *pings) Err() error { return nil }
