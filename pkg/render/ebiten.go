package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"
)

// maxInstancesPerBatch keeps every vertex index of one DrawTriangles call
// inside uint16.
const maxInstancesPerBatch = (1<<16 - 1) / len(DefaultMesh)

// EbitenRenderer draws every instance of a frame as one batch of triangles
// sharing the same source image, the ebiten equivalent of one instanced draw.
//
// Submit may be called from the simulation goroutine while Draw runs on the
// ebiten goroutine: frames cross over on a one-slot channel that always holds
// the newest frame.
type EbitenRenderer struct {
	mesh  [6]geometry.Vector2D
	color color.RGBA

	layout Layout
	count  int

	frames  chan []float32
	current []float32

	src      *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
	af       *affine
}

var _ Renderer = (*EbitenRenderer)(nil)

// NewEbitenRenderer returns a renderer drawing mesh in red.
func NewEbitenRenderer(mesh [6]geometry.Vector2D) *EbitenRenderer {
	return &EbitenRenderer{
		mesh:  mesh,
		color: colornames.Red,
		af:    newAffine(),
	}
}

// Init allocates the vertex and index buffers for count instances.
func (r *EbitenRenderer) Init(count int, layout Layout) error {
	if err := checkInit(count, layout); err != nil {
		return err
	}
	r.count, r.layout = count, layout
	r.frames = make(chan []float32, 1)

	r.src = ebiten.NewImage(3, 3)
	r.src.Fill(color.White)

	batch := min(count, maxInstancesPerBatch)
	r.vertices = make([]ebiten.Vertex, batch*len(r.mesh))
	r.indices = make([]uint16, batch*len(r.mesh))
	for i := range r.indices {
		r.indices[i] = uint16(i)
	}
	return nil
}

// Submit hands a copy of buf to the draw side, replacing any frame not drawn yet.
func (r *EbitenRenderer) Submit(buf []float32) {
	frame := make([]float32, len(buf))
	copy(frame, buf)

	select {
	case r.frames <- frame:
	default:
		// UI busy, replace the stale frame
		select {
		case <-r.frames:
		default:
		}
		select {
		case r.frames <- frame:
		default:
		}
	}
}

// Draw renders the newest submitted frame onto screen. World space [-1, 1]²
// is stretched over the whole screen, +Y up.
func (r *EbitenRenderer) Draw(screen *ebiten.Image) {
	select {
	case f := <-r.frames:
		r.current = f
	default:
	}
	if r.current == nil {
		return
	}

	w := float64(screen.Bounds().Dx())
	h := float64(screen.Bounds().Dy())
	cr := float32(r.color.R) / 255
	cg := float32(r.color.G) / 255
	cb := float32(r.color.B) / 255
	ca := float32(r.color.A) / 255

	op := &ebiten.DrawTrianglesOptions{}
	for start := 0; start < r.count; start += maxInstancesPerBatch {
		end := min(start+maxInstancesPerBatch, r.count)
		n := 0
		for i := start; i < end; i++ {
			m := r.af.instance(r.current, i, r.layout)
			for _, v := range r.mesh {
				p := m.Apply(v)
				r.vertices[n] = ebiten.Vertex{
					DstX:   float32((p.X + 1) / 2 * w),
					DstY:   float32((1 - p.Y) / 2 * h),
					SrcX:   1,
					SrcY:   1,
					ColorR: cr,
					ColorG: cg,
					ColorB: cb,
					ColorA: ca,
				}
				n++
			}
		}
		screen.DrawTriangles(r.vertices[:n], r.indices[:n], r.src, op)
	}
}
