package ui

import (
	"math"
	"testing"
)

func TestSlider_SnapAndText(t *testing.T) {
	tests := []struct {
		name      string
		min, max  float64
		step      float64
		precision int
		in        float64
		want      string
	}{
		{"cohesion factor default", 0, 0.0001, 1e-6, 6, 0.00001, "0.000010"},
		{"rounds to step", 0.001, 0.1, 1e-4, 4, 0.01004, "0.0100"},
		{"visual range", 0.01, 1, 1e-3, 3, 0.1, "0.100"},
		{"clamped high", 0, 0.1, 1e-5, 6, 3, "0.100000"},
		{"clamped low", 0.01, 1, 1e-3, 3, -1, "0.010"},
		{"nan", 0.01, 1, 1e-3, 3, math.NaN(), "0.010"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSlider(0, 0, 100, tt.name, tt.min, tt.max, tt.step, tt.precision, tt.in)
			if got := s.Text(); got != tt.want {
				t.Errorf("Text() = %q; want %q", got, tt.want)
			}
			if s.Value < tt.min || s.Value > tt.max {
				t.Errorf("Value %v outside [%v, %v]", s.Value, tt.min, tt.max)
			}
		})
	}
}

func TestSlider_SetFromRatio(t *testing.T) {
	s := NewSlider(0, 0, 200, "Separation Range", 0.001, 0.1, 1e-4, 4, 0.01)
	if s.Changed() {
		t.Error("new slider reports a change")
	}

	s.SetFromRatio(1)
	if s.Text() != "0.1000" || !s.Changed() {
		t.Errorf("after ratio 1: %s, changed=%v", s.Text(), s.changed)
	}
	if s.Changed() {
		t.Error("Changed() should reset after being read")
	}

	s.SetFromRatio(1)
	if s.Changed() {
		t.Error("same position reported as a change")
	}
}

func TestCheckbox_Toggle(t *testing.T) {
	c := NewCheckbox(0, 0, "Cohesion", true)
	c.Toggle()
	if c.Value || !c.Changed() {
		t.Errorf("Value = %v; want false and a change", c.Value)
	}
	if c.Changed() {
		t.Error("Changed() should reset after being read")
	}
}

func TestButton_FiresOncePerPress(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 50, 20, "Stop", func() { clicks++ })

	for _, down := range []bool{true, true, true, false, true, false} {
		b.Press(down)
	}
	if clicks != 2 {
		t.Errorf("clicks = %d; want 2", clicks)
	}
}

func TestUIPanel_StacksWidgetsAndReportsChanges(t *testing.T) {
	p := NewUIPanel(10, 10, 280, 600)

	p.AddSection("Cohesion")
	cb := p.AddCheckbox("Cohesion", true)
	s := p.AddSlider("Cohesion Factor", 0, 0.0001, 1e-6, 6, 0.00001)
	p.EndSection()
	p.AddSection("Simulation")
	b := p.AddButton("Stop", nil)
	p.EndSection()

	if !(cb.Y < s.Y && s.Y < b.Y) {
		t.Errorf("widgets not stacked: checkbox %v, slider %v, button %v", cb.Y, s.Y, b.Y)
	}
	if p.Changed() {
		t.Error("fresh panel reports a change")
	}

	cb.Toggle()
	s.SetFromRatio(0.5)
	if !p.Changed() {
		t.Error("Changed() = false after edits")
	}
	// both widgets were reset in the same call
	if cb.Changed() || s.Changed() {
		t.Error("panel did not reset every widget")
	}
	if got := s.Text(); got != "0.000050" {
		t.Errorf("slider = %s; want 0.000050", got)
	}
}
