package colour

import (
	"image/color"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "with hash", input: "#2A7DC7", want: DefaultBase},
		{name: "without hash", input: "2a7dc7", want: DefaultBase},
		{name: "short form", input: "#fff", want: RGB{1, 1, 1}},
		{name: "surrounding space", input: "  #000000 ", want: RGB{0, 0, 0}},
		{name: "too short", input: "#12", wantErr: true},
		{name: "not hex", input: "#gggggg", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !rgbApproxEqual(got, tt.want, 1e-12) {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRGBHex(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want string
	}{
		{DefaultBase, "#2a7dc7"},
		{RGB{0, 0, 0}, "#000000"},
		{RGB{1, 1, 1}, "#ffffff"},
		{RGB{1.5, -0.2, 0.5}, "#ff0080"},
	}
	for _, tt := range tests {
		if got := tt.rgb.Hex(); got != tt.want {
			t.Errorf("%+v.Hex() = %q, want %q", tt.rgb, got, tt.want)
		}
	}
}

func TestRGBClamp(t *testing.T) {
	got := RGB{R: 1.2, G: -0.3, B: 0.4}.Clamp()
	want := RGB{R: 1, G: 0, B: 0.4}
	if got != want {
		t.Errorf("Clamp() = %+v, want %+v", got, want)
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.RGBA{R: 42, G: 125, B: 199, A: 255})
	if !rgbApproxEqual(got, DefaultBase, 1e-9) {
		t.Errorf("FromColor() = %+v, want %+v", got, DefaultBase)
	}

	// RGB satisfies color.Color and survives the trip through 16-bit channels.
	var c color.Color = DefaultBase
	if back := FromColor(c); !rgbApproxEqual(back, DefaultBase, 1e-4) {
		t.Errorf("FromColor(RGB) = %+v, want %+v", back, DefaultBase)
	}

	if got := FromColor(color.RGBA{}); got != (RGB{}) {
		t.Errorf("FromColor(transparent) = %+v, want zero", got)
	}
}

func TestSwatcher(t *testing.T) {
	plain := NewSwatcher(termenv.Ascii)
	if plain.Enabled() {
		t.Error("Ascii swatcher should be disabled")
	}
	if got := plain.Swatch(DefaultBase, 4); got != "" {
		t.Errorf("Ascii Swatch() = %q, want empty", got)
	}
	if got := plain.SwatchWithText(DefaultBase, "ab", 6); got != "  ab  " {
		t.Errorf("Ascii SwatchWithText() = %q, want %q", got, "  ab  ")
	}

	rich := NewSwatcher(termenv.TrueColor)
	got := rich.Swatch(DefaultBase, 4)
	if !strings.Contains(got, "    ") || !strings.HasPrefix(got, termenv.CSI) {
		t.Errorf("TrueColor Swatch() = %q, want escape-wrapped block", got)
	}
	if label := rich.FormatWithLabel(DefaultBase, "base", 2); !strings.HasSuffix(label, "#2a7dc7") {
		t.Errorf("FormatWithLabel() = %q, want hex suffix", label)
	}
}
