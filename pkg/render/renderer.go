package render

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"
)

// Renderer is the drawing side of the simulation.
//
// Init is called once before the first frame; an error there is fatal for the
// whole simulation. Submit is called once per frame with count*layout.Stride()
// floats in agent index order. The buffer is reused by the caller after Submit
// returns, so a Renderer that keeps it must copy it.
type Renderer interface {
	Init(count int, layout Layout) error
	Submit(buf []float32)
}

// ErrNoInstances is returned by Init when there is nothing to draw.
var ErrNoInstances = errors.New("renderer needs at least one instance")

func checkInit(count int, layout Layout) error {
	if count <= 0 {
		return ErrNoInstances
	}
	if layout.Stride() == 0 {
		return fmt.Errorf("unsupported instance layout %s", layout)
	}
	return nil
}

// BirdMesh is the sprite drawn for each agent: two triangles forming a chevron
// pointing along +X, with radius r. Vertices are in model space.
func BirdMesh(r float64) [6]geometry.Vector2D {
	d := r / math.Sqrt2
	return [6]geometry.Vector2D{
		{X: 0, Y: 0},
		{X: -d, Y: -d},
		{X: r, Y: 0},
		{X: r, Y: 0},
		{X: -d, Y: d},
		{X: 0, Y: 0},
	}
}

// DefaultMesh is BirdMesh at the agent size used by the edge avoidance.
var DefaultMesh = BirdMesh(behavior.AgentSize)

// BufferRenderer keeps a copy of the last submitted frame. It is what headless
// runs and tests draw into.
type BufferRenderer struct {
	mu     sync.Mutex
	count  int
	layout Layout
	frames int
	last   []float32
}

var _ Renderer = (*BufferRenderer)(nil)

// Init validates the instance count and layout.
func (b *BufferRenderer) Init(count int, layout Layout) error {
	if err := checkInit(count, layout); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count, b.layout = count, layout
	b.last = make([]float32, count*layout.Stride())
	return nil
}

// Submit copies buf.
func (b *BufferRenderer) Submit(buf []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = append(b.last[:0], buf...)
	b.frames++
}

// Last returns a copy of the most recent frame and how many frames were submitted.
func (b *BufferRenderer) Last() ([]float32, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float32, len(b.last))
	copy(out, b.last)
	return out, b.frames
}

// Layout reports the layout given to Init.
func (b *BufferRenderer) Layout() Layout {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.layout
}
