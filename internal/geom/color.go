package geom

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit, non-premultiplied RGBA color.
type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// RGB returns a fully opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA returns a color with an explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts any image/color value to a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Opaque reports whether the alpha channel is 255.
func (c Color) Opaque() bool {
	return c.A == 255
}

// RGBA implements image/color.Color with premultiplied 16-bit components.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Compare orders colors by (R, G, B, A).
func (c Color) Compare(o Color) int {
	x := uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
	y := uint32(o.R)<<24 | uint32(o.G)<<16 | uint32(o.B)<<8 | uint32(o.A)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// Hex formats the color as #RRGGBB, or #RRGGBBAA when not opaque.
func (c Color) Hex() string {
	hex := strings.ToUpper(c.colorful().Hex())
	if c.Opaque() {
		return hex
	}
	return fmt.Sprintf("%s%02X", hex, c.A)
}

// HSL returns hue in degrees and saturation/lightness in percent.
func (c Color) HSL() (h, s, l int) {
	hf, sf, lf := c.colorful().Hsl()
	return int(hf + 0.5), int(sf*100 + 0.5), int(lf*100 + 0.5)
}

// Distance is the CIEDE2000 perceptual distance between the RGB parts of
// two colors. Alpha is ignored.
func (c Color) Distance(o Color) float64 {
	return c.colorful().DistanceCIEDE2000(o.colorful())
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA"; the leading '#' is optional.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	switch len(s) {
	case 7:
		cf, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := cf.RGB255()
		return RGB(r, g, b), nil
	case 9:
		c, err := ParseHex(s[:7])
		if err != nil {
			return Color{}, err
		}
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		c.A = uint8(a)
		return c, nil
	default:
		return Color{}, fmt.Errorf("invalid hex color length: %q", s)
	}
}

// MarshalJSON encodes opaque colors as [r,g,b] and others as [r,g,b,a].
func (c Color) MarshalJSON() ([]byte, error) {
	if c.Opaque() {
		return json.Marshal([3]uint8{c.R, c.G, c.B})
	}
	return json.Marshal([4]uint8{c.R, c.G, c.B, c.A})
}

// UnmarshalJSON accepts both the 3- and 4-element forms.
func (c *Color) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	raw := make([]uint8, 0, len(ints))
	for _, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("color: channel %d out of range", v)
		}
		raw = append(raw, uint8(v))
	}
	switch len(raw) {
	case 3:
		*c = RGB(raw[0], raw[1], raw[2])
	case 4:
		*c = RGBA(raw[0], raw[1], raw[2], raw[3])
	default:
		return fmt.Errorf("color: expected 3 or 4 elements, got %d", len(raw))
	}
	return nil
}
