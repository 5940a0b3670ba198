package ui

import (
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float in [Min, Max], snapped to Step and shown with
// Precision decimals.
type Slider struct {
	Label     string
	Value     float64
	Min, Max  float64
	Step      float64
	Precision int
	X, Y      float64
	W, H      float64

	changed bool
}

// NewSlider creates a slider; value is snapped like any user input.
func NewSlider(x, y, w float64, label string, min, max, step float64, precision int, value float64) *Slider {
	s := &Slider{
		Label:     label,
		Min:       min,
		Max:       max,
		Step:      step,
		Precision: precision,
		X:         x,
		Y:         y,
		W:         w,
		H:         12,
	}
	s.Value = s.Snap(value)
	return s
}

// Snap clamps v to the range and rounds it to the nearest step.
func (s *Slider) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return s.Min
	}
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// SetFromRatio sets the value at fraction p of the track, 0 being Min.
func (s *Slider) SetFromRatio(p float64) {
	v := s.Snap(s.Min + p*(s.Max-s.Min))
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// Text is the value formatted with the slider's precision.
func (s *Slider) Text() string {
	return strconv.FormatFloat(s.Value, 'f', s.Precision, 64)
}

// Changed reports whether the value moved since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if float64(mx) >= s.X && float64(mx) <= s.X+s.W &&
		float64(my) >= s.Y && float64(my) <= s.Y+s.H {
		s.SetFromRatio((float64(mx) - s.X) / s.W)
	}
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}
