package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight  = 30
	headerHeight = 25
	labelHeight  = 15
)

// UIWidget is anything the panel can stack
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
}

// row is one line of the panel: a section header or a widget with its label.
type row struct {
	y      float64
	header string
	label  func() string
	widget UIWidget
}

// UIPanel stacks the settings widgets top to bottom under section headers.
// Positions are fixed when a widget is added.
type UIPanel struct {
	X, Y          float64 // Panel position
	Width, Height float64 // Panel dimensions

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
	HeaderColor color.RGBA

	rows    []row
	next    float64 // y of the next row
	sliders []*Slider
	boxes   []*Checkbox
}

// NewUIPanel creates a new UI panel
func NewUIPanel(x, y, width, height float64) *UIPanel {
	return &UIPanel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
		HeaderColor: color.RGBA{R: 60, G: 60, B: 70, A: 255},
		next:        y + titleHeight,
	}
}

// AddSection adds a section header
func (p *UIPanel) AddSection(title string) {
	p.rows = append(p.rows, row{y: p.next, header: title})
	p.next += headerHeight
}

// EndSection leaves a small gap after a section
func (p *UIPanel) EndSection() {
	p.next += 5
}

func (p *UIPanel) add(w UIWidget, label func() string, height float64) {
	p.rows = append(p.rows, row{y: p.next, label: label, widget: w})
	p.next += height
}

// AddSlider adds a slider labelled with its current value
func (p *UIPanel) AddSlider(label string, min, max, step float64, precision int, value float64) *Slider {
	s := NewSlider(p.X+10, p.next+labelHeight, p.Width-20, label, min, max, step, precision, value)
	p.sliders = append(p.sliders, s)
	p.add(s, func() string { return label + ": " + s.Text() }, labelHeight+s.H+10)
	return s
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, p.next+labelHeight, label, value)
	p.boxes = append(p.boxes, c)
	p.add(c, func() string { return label }, labelHeight+c.Size+5)
	return c
}

// AddButton adds a full width button to the panel
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, p.next, p.Width-20, 24, label, onClick)
	p.add(b, nil, b.Height+5)
	return b
}

// Changed reports whether any slider or checkbox changed since the last call.
func (p *UIPanel) Changed() bool {
	changed := false
	for _, s := range p.sliders {
		changed = s.Changed() || changed
	}
	for _, c := range p.boxes {
		changed = c.Changed() || changed
	}
	return changed
}

// Update handles input for all widgets
func (p *UIPanel) Update() {
	for _, r := range p.rows {
		if r.widget != nil {
			r.widget.Update()
		}
	}
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)

	ebitenutil.DebugPrintAt(screen, "Settings", int(p.X+10), int(p.Y+5))

	for _, r := range p.rows {
		if r.widget == nil {
			vector.FillRect(screen,
				float32(p.X+5), float32(r.y),
				float32(p.Width-10), 20,
				p.HeaderColor, true)
			ebitenutil.DebugPrintAt(screen, r.header, int(p.X+10), int(r.y+3))
			continue
		}
		if r.label != nil {
			ebitenutil.DebugPrintAt(screen, r.label(), int(p.X+10), int(r.y))
		}
		r.widget.Draw(screen)
	}
}
