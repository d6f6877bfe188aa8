package sound

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

func TestClicksAtSegmentBoundaries(t *testing.T) {
	for _, dir := range []spin.Direction{spin.Clockwise, spin.CounterClockwise} {
		for _, easing := range []spin.Easing{spin.EaseLinear, spin.EaseOutQuad, spin.EaseInOutCubic} {
			plan := spin.NewPlan(2, 8, 2*time.Second, dir, easing)
			clicks := Clicks(plan)

			s := spin.AngleBySegment(8)
			want := int(math.Floor((math.Abs(plan.Target)-s/2)/s)) + 1
			if len(clicks) != want {
				t.Fatalf("%s/%s: %d clicks, want %d", dir, easing, len(clicks), want)
			}
			for i, at := range clicks {
				if at < 0 || at > plan.Duration {
					t.Fatalf("click %d at %v outside the spin", i, at)
				}
				if i > 0 && at < clicks[i-1] {
					t.Fatalf("clicks not ordered: %v then %v", clicks[i-1], at)
				}
				// At each click a segment edge sits under the pointer.
				off := math.Mod(math.Abs(plan.AngleAt(at))-s/2, s)
				if off > 1e-3 && off < s-1e-3 {
					t.Fatalf("%s/%s click %d: %.4f degrees off a boundary", dir, easing, i, off)
				}
				// A degree above the edge the knob is close to full deflection.
				if tilt := math.Abs(wheel.KnobTilt(plan.AngleAt(at)+1, 8)); tilt < 25 {
					t.Fatalf("%s/%s click %d: knob tilt %.2f, want a kick", dir, easing, i, tilt)
				}
			}
		}
	}
}

func TestClicksLinearSpacing(t *testing.T) {
	plan := spin.NewPlan(0, 4, time.Second, spin.Clockwise, spin.EaseLinear)
	clicks := Clicks(plan)
	if len(clicks) < 2 {
		t.Fatalf("got %d clicks", len(clicks))
	}
	step := time.Duration(float64(time.Second) * 90 / plan.Target)
	for i := 1; i < len(clicks); i++ {
		gap := clicks[i] - clicks[i-1]
		if diff := gap - step; diff > time.Microsecond || diff < -time.Microsecond {
			t.Fatalf("gap %d = %v, want %v", i, gap, step)
		}
	}
}

func TestClicksEmptyPlan(t *testing.T) {
	if got := Clicks(spin.Plan{}); got != nil {
		t.Fatalf("Clicks(zero plan) = %v, want nil", got)
	}
}

func TestTrackLength(t *testing.T) {
	plan := spin.NewPlan(1, 6, 500*time.Millisecond, spin.Clockwise, spin.EaseOutQuad)
	rate := beep.SampleRate(8000)
	s, n := Track(plan, Options{SampleRate: rate})
	if want := rate.N(plan.Duration + tailAfterStop); n != want {
		t.Fatalf("length = %d, want %d", n, want)
	}

	buf := make([][2]float64, 512)
	total, loud := 0, false
	for {
		k, ok := s.Stream(buf)
		for _, smp := range buf[:k] {
			if smp[0] < -1 || smp[0] > 1 {
				t.Fatalf("sample %v out of range", smp)
			}
			if math.Abs(smp[0]) > 0.05 {
				loud = true
			}
		}
		total += k
		if !ok || k == 0 {
			break
		}
	}
	if total != n {
		t.Fatalf("streamed %d samples, want %d", total, n)
	}
	if !loud {
		t.Fatal("track is silent")
	}
}

func TestWriteWAV(t *testing.T) {
	plan := spin.NewPlan(0, 4, 300*time.Millisecond, spin.Clockwise, spin.EaseOutQuad)
	path := filepath.Join(t.TempDir(), "spin.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAV(f, plan, Options{SampleRate: 8000}); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 44 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Fatalf("not a WAV file: % x", data[:min(len(data), 16)])
	}
	r := bytes.NewReader(data[22:])
	var channels uint16
	var sampleRate uint32
	if err := binary.Read(r, binary.LittleEndian, &channels); err != nil {
		t.Fatal(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &sampleRate); err != nil {
		t.Fatal(err)
	}
	if channels != 2 || sampleRate != 8000 {
		t.Fatalf("header channels=%d rate=%d, want 2 and 8000", channels, sampleRate)
	}
	wantData := beep.SampleRate(8000).N(plan.Duration+tailAfterStop) * 4
	if len(data)-44 != wantData {
		t.Fatalf("data bytes = %d, want %d", len(data)-44, wantData)
	}
}

func TestWAVMatchesFile(t *testing.T) {
	plan := spin.NewPlan(3, 5, 200*time.Millisecond, spin.CounterClockwise, spin.EaseLinear)
	opts := Options{SampleRate: 8000}

	mem, err := WAV(plan, opts)
	if err != nil {
		t.Fatalf("WAV() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "spin.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAV(f, plan, opts); err != nil {
		t.Fatal(err)
	}
	f.Close()
	disk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(mem, disk) {
		t.Fatalf("in-memory WAV (%d bytes) differs from file (%d bytes)", len(mem), len(disk))
	}
}

func TestSeekBuffer(t *testing.T) {
	var b seekBuffer
	b.Write([]byte("hello world"))
	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("J"))
	if _, err := b.Seek(-5, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("W"))
	if got := string(b.data); got != "Jello World" {
		t.Fatalf("data = %q", got)
	}
	if _, err := b.Seek(-100, io.SeekCurrent); err == nil {
		t.Fatal("want error for negative position")
	}
}
