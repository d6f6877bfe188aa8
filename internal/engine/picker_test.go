package engine

import "testing"

func TestFloatToIndex(t *testing.T) {
	tests := []struct {
		f    float64
		n    int
		want int
	}{
		{0, 10, 0},
		{0.0999, 10, 0},
		{0.1, 10, 1},
		{0.999999, 10, 9},
		{0.5, 1, 0},
		{0.5, 3, 1},
	}
	for _, tt := range tests {
		if got := FloatToIndex(tt.f, tt.n); got != tt.want {
			t.Errorf("FloatToIndex(%v, %d) = %d, want %d", tt.f, tt.n, got, tt.want)
		}
	}
}

func TestFairPickerMatchesVerify(t *testing.T) {
	seeds := Seeds{Server: "server-seed", Client: "client-seed"}
	for nonce := uint64(1); nonce <= 50; nonce++ {
		p := FairPicker{Seeds: seeds, Nonce: nonce}
		got := p.Pick(12)
		proof := Verify(seeds, nonce, 12)
		if got != proof.Index {
			t.Fatalf("nonce %d: Pick = %d, Verify.Index = %d", nonce, got, proof.Index)
		}
		if proof.ServerSeedHash != HashServerSeed(seeds.Server) {
			t.Fatalf("nonce %d: proof hash mismatch", nonce)
		}
		if got < 0 || got >= 12 {
			t.Fatalf("nonce %d: index %d out of range", nonce, got)
		}
	}
}

func TestCryptoPickerRange(t *testing.T) {
	var p CryptoPicker
	for i := 0; i < 1000; i++ {
		if idx := p.Pick(7); idx < 0 || idx >= 7 {
			t.Fatalf("CryptoPicker.Pick(7) = %d", idx)
		}
	}
}

func TestSeededPickerReproducible(t *testing.T) {
	a := NewSeededPicker(42)
	b := NewSeededPicker(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Pick(37), b.Pick(37); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
