package telemetry

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"
)

const eps = 1e-12

func TestMeasure(t *testing.T) {
	tests := []struct {
		name             string
		pop              behavior.Population
		wantSpeed        float64
		wantStdDev       float64
		wantPolarization float64
		wantCentroid     geometry.Vector2D
		wantNearest      float64
	}{
		{
			name: "empty",
			pop:  nil,
		},
		{
			name:             "single agent",
			pop:              behavior.Population{{Pos: geometry.Vector2D{X: 0.5}, Vel: geometry.Vector2D{Y: 0.001}}},
			wantSpeed:        0.001,
			wantPolarization: 1,
			wantCentroid:     geometry.Vector2D{X: 0.5},
		},
		{
			name: "aligned pair",
			pop: behavior.Population{
				{Pos: geometry.Vector2D{X: -0.1}, Vel: geometry.Vector2D{X: 0.001}},
				{Pos: geometry.Vector2D{X: 0.1}, Vel: geometry.Vector2D{X: 0.001}},
			},
			wantSpeed:        0.001,
			wantPolarization: 1,
			wantNearest:      0.2,
		},
		{
			name: "opposed pair",
			pop: behavior.Population{
				{Pos: geometry.Vector2D{Y: 0.2}, Vel: geometry.Vector2D{X: 0.001}},
				{Pos: geometry.Vector2D{Y: 0.4}, Vel: geometry.Vector2D{X: -0.0005}},
			},
			wantSpeed:        0.00075,
			wantStdDev:       math.Sqrt(2) * 0.00025,
			wantPolarization: 0,
			wantCentroid:     geometry.Vector2D{Y: 0.3},
			wantNearest:      0.2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Measure(7, tt.pop)
			if s.Frame != 7 || s.Agents != len(tt.pop) {
				t.Errorf("frame/agents = %d/%d; want 7/%d", s.Frame, s.Agents, len(tt.pop))
			}
			checks := []struct {
				field     string
				got, want float64
			}{
				{"MeanSpeed", s.MeanSpeed, tt.wantSpeed},
				{"SpeedStdDev", s.SpeedStdDev, tt.wantStdDev},
				{"Polarization", s.Polarization, tt.wantPolarization},
				{"CentroidX", s.CentroidX, tt.wantCentroid.X},
				{"CentroidY", s.CentroidY, tt.wantCentroid.Y},
				{"MeanNearest", s.MeanNearest, tt.wantNearest},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.want) > eps {
					t.Errorf("%s = %v; want %v", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestRecorder_WritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf, 10)

	pop := behavior.Population{
		{Pos: geometry.Vector2D{X: -0.1}, Vel: geometry.Vector2D{X: 0.001}},
		{Pos: geometry.Vector2D{X: 0.1}, Vel: geometry.Vector2D{Y: 0.001}},
	}
	for frame := uint64(1); frame <= 30; frame++ {
		if err := r.Observe(frame, pop); err != nil {
			t.Fatalf("Observe(%d): %v", frame, err)
		}
	}
	if r.Rows() != 3 {
		t.Errorf("Rows = %d; want 3", r.Rows())
	}
	if n := strings.Count(buf.String(), "mean_speed"); n != 1 {
		t.Errorf("header written %d times; want 1", n)
	}

	var rows []Sample
	if err := gocsv.UnmarshalString(buf.String(), &rows); err != nil {
		t.Fatalf("UnmarshalString: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows; want 3", len(rows))
	}
	for i, want := range []uint64{10, 20, 30} {
		if rows[i].Frame != want {
			t.Errorf("row %d frame = %d; want %d", i, rows[i].Frame, want)
		}
	}
}

func TestOpenRecorder(t *testing.T) {
	r, err := OpenRecorder("", 1)
	if err != nil || r != nil {
		t.Fatalf("OpenRecorder(\"\") = %v, %v; want nil, nil", r, err)
	}
	// a nil recorder is a no-op
	if err := r.Observe(1, nil); err != nil {
		t.Errorf("nil Observe: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "run")
	r, err = OpenRecorder(dir, 0)
	if err != nil {
		t.Fatalf("OpenRecorder: %v", err)
	}
	if err := r.Observe(1, behavior.Population{{}}); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(b), "\n"); lines != 2 {
		t.Errorf("telemetry.csv has %d lines; want header and one row", lines)
	}
}
