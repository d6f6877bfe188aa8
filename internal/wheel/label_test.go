package wheel

import (
	"math"
	"reflect"
	"testing"
	"unicode/utf8"
)

func TestWrapLabel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"short", "Win", []string{"Win"}},
		{"exact limit", "Jackpot!", []string{"Jackpot!"}},
		{"two words fit", "10 coins", []string{"10 coins"}},
		{"seventeen chars", "Grand prize today", []string{"Grand", "prize", "today"}},
		{"long single word", "Supercalifragilistic", []string{"Supercalifragilistic"}},
		{"long word in middle", "Big Supercalifragilistic win", []string{"Big", "Supercalifragilistic", "win"}},
		{"packs short words", "a b c d e f g h", []string{"a b c d", "e f g h"}},
		{"empty", "", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapLabel(tt.text, MaxCharsPerLine)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WrapLabel(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWrapLabelLineLimit(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	for _, line := range WrapLabel(text, MaxCharsPerLine) {
		if utf8.RuneCountInString(line) > MaxCharsPerLine {
			t.Errorf("line %q exceeds %d chars", line, MaxCharsPerLine)
		}
	}
}

func TestLayoutLabel(t *testing.T) {
	segs, _ := Build([]string{"Grand prize today", "B", "C", "D"}, 100, 200, nil)

	l := LayoutLabel(segs[0], 4)
	if len(l.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", l.Lines)
	}
	wantFirst := segs[0].Centroid.Y - 2*FontSize*0.6
	if math.Abs(l.FirstLineY-wantFirst) > 1e-9 {
		t.Errorf("FirstLineY = %f, want %f", l.FirstLineY, wantFirst)
	}
	if math.Abs(l.LineHeight-FontSize*1.2) > 1e-9 {
		t.Errorf("LineHeight = %f", l.LineHeight)
	}
	if l.Rotation != 45 {
		t.Errorf("Rotation = %f, want 45", l.Rotation)
	}

	pts := l.LinePositions()
	if pts[2].Y-pts[0].Y != 2*l.LineHeight {
		t.Errorf("lines are not evenly spaced: %+v", pts)
	}

	if r := LayoutLabel(segs[3], 4).Rotation; r != 3*90+45 {
		t.Errorf("Rotation for segment 3 = %f", r)
	}
}
