package simulation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/render"
)

// failingRenderer refuses to initialise.
type failingRenderer struct{ submits int }

func (f *failingRenderer) Init(int, render.Layout) error { return errors.New("no GPU") }
func (f *failingRenderer) Submit([]float32)              { f.submits++ }

func testConfig(population int, layout string) *Config {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Population = population
	cfg.Layout = layout
	return cfg
}

func TestDriver_Lifecycle(t *testing.T) {
	d := NewDriver(testConfig(10, "matrix"), behavior.DefaultSettings(), &render.BufferRenderer{}, nil)

	if d.State() != Uninitialized {
		t.Fatalf("State = %v; want uninitialized", d.State())
	}
	if err := d.Frame(0); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Frame before Start = %v; want ErrNotRunning", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v; want ErrAlreadyRunning", err)
	}
	if err := d.Frame(0); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	d.Stop()
	d.Stop()
	if !d.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
	if err := d.Frame(time.Second); !errors.Is(err, ErrStopped) {
		t.Errorf("Frame after Stop = %v; want ErrStopped", err)
	}
	if d.Frames() != 1 {
		t.Errorf("Frames = %d; want 1", d.Frames())
	}
}

func TestDriver_RendererInitFailure(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		renderer render.Renderer
	}{
		{"renderer error", testConfig(10, "matrix"), &failingRenderer{}},
		{"empty population", testConfig(0, "matrix"), &render.BufferRenderer{}},
		{"unknown layout", testConfig(10, "quaternion"), &render.BufferRenderer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDriver(tt.cfg, behavior.DefaultSettings(), tt.renderer, nil)
			if err := d.Start(); !errors.Is(err, ErrRendererInit) {
				t.Fatalf("Start = %v; want ErrRendererInit", err)
			}
			if d.State() != Uninitialized {
				t.Errorf("State = %v; want uninitialized", d.State())
			}
			if err := d.Frame(0); !errors.Is(err, ErrNotRunning) {
				t.Errorf("Frame = %v; want ErrNotRunning", err)
			}
		})
	}
}

func TestDriver_FirstFrameDoesNotMove(t *testing.T) {
	d := NewDriver(testConfig(20, "transform"), behavior.DefaultSettings(), &render.BufferRenderer{}, nil)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	before := append(behavior.Population(nil), d.Population()...)

	// a large first timestamp must not turn into a large step
	if err := d.Frame(5 * time.Second); err != nil {
		t.Fatal(err)
	}
	for i, a := range d.Population() {
		if !a.Pos.EqTol(before[i].Pos, 1e-9) {
			t.Errorf("agent %d moved on the first frame: %v -> %v", i, before[i].Pos, a.Pos)
		}
	}
}

func TestDriver_SubmitsOneBufferPerFrame(t *testing.T) {
	for _, layout := range []render.Layout{render.LayoutMatrix, render.LayoutTransform} {
		t.Run(layout.String(), func(t *testing.T) {
			r := &render.BufferRenderer{}
			d := NewDriver(testConfig(25, layout.String()), behavior.DefaultSettings(), r, nil)
			if err := d.Start(); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 3; i++ {
				if err := d.Frame(time.Duration(i) * 16 * time.Millisecond); err != nil {
					t.Fatal(err)
				}
			}

			buf, frames := r.Last()
			if frames != 3 {
				t.Errorf("frames = %d; want 3", frames)
			}
			if len(buf) != 25*layout.Stride() {
				t.Fatalf("len(buf) = %d; want %d", len(buf), 25*layout.Stride())
			}
			for i, a := range d.Population() {
				tr := render.InstanceTransformAt(buf, i, layout)
				if math.Abs(tr.X-a.Pos.X) > 1e-6 || math.Abs(tr.Y-a.Pos.Y) > 1e-6 {
					t.Errorf("instance %d at (%v, %v); agent at %v", i, tr.X, tr.Y, a.Pos)
				}
			}
		})
	}
}

func TestDriver_SameSeedSameFlock(t *testing.T) {
	d := NewDriver(testConfig(50, "matrix"), behavior.DefaultSettings(), &render.BufferRenderer{}, nil)
	if err := d.Run(context.Background(), &SteppedClock{}, 1, nil); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Run before Start = %v; want ErrNotRunning", err)
	}

	a := startedRun(t, 50, 30)
	b := startedRun(t, 50, 30)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("agent %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func startedRun(t *testing.T, population int, frames uint64) behavior.Population {
	t.Helper()
	d := NewDriver(testConfig(population, "matrix"), behavior.DefaultSettings(), &render.BufferRenderer{}, nil)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	if err := d.Run(context.Background(), &SteppedClock{Step: 16 * time.Millisecond}, frames, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.Frames() != frames {
		t.Errorf("Frames = %d; want %d", d.Frames(), frames)
	}
	return d.Population()
}

func TestDriver_RunStopsOnSignalAndContext(t *testing.T) {
	d := NewDriver(testConfig(5, "transform"), behavior.DefaultSettings(), &render.BufferRenderer{}, nil)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	err := d.Run(context.Background(), &SteppedClock{Step: time.Millisecond}, 0, func(d *Driver) {
		if d.Frames() == 4 {
			d.Stop()
		}
	})
	if err != nil || d.Frames() != 4 {
		t.Errorf("Run = %v after %d frames; want nil after 4", err, d.Frames())
	}

	d2 := NewDriver(testConfig(5, "transform"), behavior.DefaultSettings(), &render.BufferRenderer{}, nil)
	if err := d2.Start(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d2.Run(ctx, NewMonotonicClock(), 0, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run with cancelled context = %v; want context.Canceled", err)
	}
}

func TestDriver_SettingsReadEveryFrame(t *testing.T) {
	settings := behavior.NewAtomicSettings(behavior.Settings{})
	cfg := testConfig(2, "matrix")
	d := NewDriver(cfg, settings, &render.BufferRenderer{}, nil)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	pop := d.Population()
	pop[0] = behavior.Agent{Pos: geometry.Vector2D{X: -0.05}}
	pop[1] = behavior.Agent{Pos: geometry.Vector2D{X: 0.05}}

	_ = d.Frame(0)
	_ = d.Frame(time.Millisecond)
	if !pop[0].Vel.IsZero() {
		t.Fatalf("agent moved with every rule off: %v", pop[0].Vel)
	}

	settings.Store(behavior.Settings{CohesionEnabled: true, CohesionFactor: 0.0001, VisualRange: 0.5})
	_ = d.Frame(2 * time.Millisecond)
	if pop[0].Vel.X <= 0 {
		t.Errorf("agent 0 vel = %v; want a pull towards agent 1", pop[0].Vel)
	}
}

func TestSteppedClock(t *testing.T) {
	c := &SteppedClock{Step: 10 * time.Millisecond}
	for i, want := range []time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond} {
		if got := c.Now(); got != want {
			t.Errorf("call %d: Now() = %v; want %v", i, got, want)
		}
	}
}

func BenchmarkDriverFrame(b *testing.B) {
	d := NewDriver(testConfig(200, "matrix"), behavior.DefaultSettings(), &render.BufferRenderer{}, nil)
	if err := d.Start(); err != nil {
		b.Fatal(err)
	}
	clock := &SteppedClock{Step: 16 * time.Millisecond}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Frame(clock.Now())
	}
}
