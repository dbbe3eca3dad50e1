package geom

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPointOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"later row smaller x", Pt(0, 1), Pt(5, 0), false},
		{"same column next row", Pt(0, 0), Pt(0, 1), true},
		{"same row", Pt(1, 3), Pt(2, 3), true},
		{"equal", Pt(4, 4), Pt(4, 4), false},
		{"negative row first", Pt(100, -1), Pt(-100, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Less(tt.b); got != tt.want {
				t.Errorf("%v.Less(%v): got %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompare_Antisymmetric(t *testing.T) {
	points := []Point{Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(-3, 7), Pt(32767, -32768)}
	for _, a := range points {
		for _, b := range points {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%v,%v)=%d but Compare(%v,%v)=%d", a, b, Compare(a, b), b, a, Compare(b, a))
			}
		}
	}
}

func TestPointArithmeticSaturates(t *testing.T) {
	tests := []struct {
		name string
		got  Point
		want Point
	}{
		{"add", Pt(1, 2).Add(Pt(3, 4)), Pt(4, 6)},
		{"add overflow", Pt(math.MaxInt16, 0).Add(Pt(1, 0)), Pt(math.MaxInt16, 0)},
		{"sub underflow", Pt(0, math.MinInt16).Sub(Pt(0, 1)), Pt(0, math.MinInt16)},
		{"sub", Pt(5, 5).Sub(Pt(2, 7)), Pt(3, -2)},
		{"scale", Pt(3, -4).Scale(2), Pt(6, -8)},
		{"scale overflow", Pt(20000, -20000).Scale(4), Pt(math.MaxInt16, math.MinInt16)},
		{"scale negative factor", Pt(20000, 1).Scale(-4), Pt(math.MinInt16, -4)},
		{"scale huge factor", Pt(2, 0).Scale(math.MaxInt), Pt(math.MaxInt16, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestPointJSON(t *testing.T) {
	b, err := json.Marshal(Pt(-3, 12))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != "[-3,12]" {
		t.Errorf("Marshal: got %s, want [-3,12]", b)
	}

	var p Point
	if err := json.Unmarshal([]byte("[7,-8]"), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p != Pt(7, -8) {
		t.Errorf("Unmarshal: got %v, want (7,-8)", p)
	}

	for _, bad := range []string{"[1]", "[1,2,3]", "[40000,0]", `"1,2"`} {
		if err := json.Unmarshal([]byte(bad), &p); err == nil {
			t.Errorf("Unmarshal(%s): expected error", bad)
		}
	}
}

func TestColorJSONRoundTrip(t *testing.T) {
	tests := []struct {
		color Color
		wire  string
	}{
		{RGB(255, 128, 0), "[255,128,0]"},
		{RGBA(255, 128, 0, 254), "[255,128,0,254]"},
		{RGBA(0, 0, 0, 0), "[0,0,0,0]"},
		{RGB(0, 0, 0), "[0,0,0]"},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			b, err := json.Marshal(tt.color)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(b) != tt.wire {
				t.Errorf("Marshal: got %s, want %s", b, tt.wire)
			}
			var back Color
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if back != tt.color {
				t.Errorf("round trip: got %+v, want %+v", back, tt.color)
			}
		})
	}
}

func TestColorJSONRoundTrip_AllAlphas(t *testing.T) {
	for a := 0; a <= 255; a++ {
		c := RGBA(10, 20, 30, uint8(a))
		b, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var elems []int
		if err := json.Unmarshal(b, &elems); err != nil {
			t.Fatalf("not an array: %s", b)
		}
		wantLen := 4
		if a == 255 {
			wantLen = 3
		}
		if len(elems) != wantLen {
			t.Errorf("alpha %d: got %d elements, want %d", a, len(elems), wantLen)
		}
		var back Color
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if back != c {
			t.Errorf("alpha %d: got %+v, want %+v", a, back, c)
		}
	}
}

func TestColorUnmarshal_Invalid(t *testing.T) {
	for _, bad := range []string{"[1,2]", "[1,2,3,4,5]", "[256,0,0]", "[-1,0,0]", `"#FF0000"`} {
		var c Color
		if err := json.Unmarshal([]byte(bad), &c); err == nil {
			t.Errorf("Unmarshal(%s): expected error", bad)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#FF8040", RGB(255, 128, 64), false},
		{"ff8040", RGB(255, 128, 64), false},
		{"#FF000080", RGBA(255, 0, 0, 128), false},
		{"#FFF", Color{}, true},
		{"#GG0000", Color{}, true},
		{"", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHex(%q): expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q): got %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorHexAndHSL(t *testing.T) {
	if got := RGB(255, 128, 64).Hex(); got != "#FF8040" {
		t.Errorf("Hex: got %s, want #FF8040", got)
	}
	if got := RGBA(255, 0, 0, 128).Hex(); got != "#FF000080" {
		t.Errorf("Hex: got %s, want #FF000080", got)
	}

	tests := []struct {
		name    string
		color   Color
		h, s, l int
	}{
		{"red", RGB(255, 0, 0), 0, 100, 50},
		{"green", RGB(0, 255, 0), 120, 100, 50},
		{"blue", RGB(0, 0, 255), 240, 100, 50},
		{"white", RGB(255, 255, 255), 0, 0, 100},
		{"black", RGB(0, 0, 0), 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, l := tt.color.HSL()
			if h != tt.h || s != tt.s || l != tt.l {
				t.Errorf("HSL: got (%d,%d,%d), want (%d,%d,%d)", h, s, l, tt.h, tt.s, tt.l)
			}
		})
	}
}

func TestColorDistance(t *testing.T) {
	red := RGB(255, 0, 0)
	if d := red.Distance(red); d != 0 {
		t.Errorf("distance to self: got %f, want 0", d)
	}
	if red.Distance(RGB(250, 5, 5)) >= red.Distance(RGB(0, 0, 255)) {
		t.Error("near-red should be closer to red than blue is")
	}
}

func TestRangeRect(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		min, max Point
		ok       bool
	}{
		{"through", Through(Pt(0, 0), Pt(2, 1)), Pt(0, 0), Pt(2, 1), true},
		{"between", Between(Pt(0, 0), Pt(3, 2)), Pt(0, 0), Pt(2, 1), true},
		{"all", All(), MinPoint, MaxPoint, true},
		{"from", From(Pt(5, 6)), Pt(5, 6), MaxPoint, true},
		{"empty half-open", Between(Pt(1, 1), Pt(1, 5)), Point{}, Point{}, false},
		{"inverted", Through(Pt(3, 3), Pt(1, 1)), Point{}, Point{}, false},
		{"excluded at min", UpTo(Pt(math.MinInt16, 0)), Point{}, Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, ok := tt.r.Rect()
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && (min != tt.min || max != tt.max) {
				t.Errorf("Rect: got %v-%v, want %v-%v", min, max, tt.min, tt.max)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := Through(Pt(0, 0), Pt(2, 1))
	if !r.Contains(Pt(2, 0)) {
		t.Error("expected (2,0) inside")
	}
	if r.Contains(Pt(5, 0)) {
		t.Error("expected (5,0) outside: x beyond right edge")
	}
	if r.Contains(Pt(0, 2)) {
		t.Error("expected (0,2) outside")
	}
}
