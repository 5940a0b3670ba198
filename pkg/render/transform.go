// Package render turns agents into per-instance transforms and hands them to
// whatever draws them.
//
// Two buffer layouts exist, matching the two ways a vertex shader can consume
// an instance: LayoutTransform packs {translateX, translateY, rotation}, and
// LayoutMatrix packs a full 3x3 affine matrix in column-major order. Either way
// the rotation aligns the sprite's +X axis with the agent's velocity.
package render

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"
)

// Layout selects the per-instance record written into the flat buffer.
type Layout int

const (
	LayoutMatrix    Layout = iota // 9 floats, column-major 3x3
	LayoutTransform               // 3 floats: tx, ty, rotation
)

// Stride is the number of floats per instance.
func (l Layout) Stride() int {
	switch l {
	case LayoutTransform:
		return 3
	case LayoutMatrix:
		return 9
	}
	return 0
}

func (l Layout) String() string {
	switch l {
	case LayoutTransform:
		return "transform"
	case LayoutMatrix:
		return "matrix"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout is the inverse of String.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "matrix", "":
		return LayoutMatrix, nil
	case "transform":
		return LayoutTransform, nil
	}
	return 0, fmt.Errorf("unknown instance layout %q (want matrix or transform)", s)
}

// InstanceTransform places one sprite.
type InstanceTransform struct {
	X, Y     float64
	Rotation float64
}

// TransformOf builds the transform for a: translation is the position and the
// rotation is -atan2(vel.y, vel.x), the convention of the matrix below.
func TransformOf(a behavior.Agent) InstanceTransform {
	return InstanceTransform{
		X:        a.Pos.X,
		Y:        a.Pos.Y,
		Rotation: -math.Atan2(a.Vel.Y, a.Vel.X),
	}
}

// Heading recovers the velocity heading the transform was built from.
func Heading(t InstanceTransform) float64 {
	return -t.Rotation
}

// Matrix is a 2D affine matrix in column-major order, the layout a GPU
// mat3 attribute expects.
type Matrix [9]float64

// Apply transforms the point p.
func (m Matrix) Apply(p geometry.Vector2D) geometry.Vector2D {
	return geometry.Vector2D{
		X: m[0]*p.X + m[3]*p.Y + m[6],
		Y: m[1]*p.X + m[4]*p.Y + m[7],
	}
}

// Transform decodes the translation and rotation back out of m.
func (m Matrix) Transform() InstanceTransform {
	return InstanceTransform{X: m[6], Y: m[7], Rotation: math.Atan2(-m[1], m[0])}
}

// affine builds translate·rotate products, reusing its gonum workspaces.
type affine struct {
	t, r, m *mat.Dense
}

func newAffine() *affine {
	af := &affine{
		t: mat.NewDense(3, 3, nil),
		r: mat.NewDense(3, 3, nil),
		m: mat.NewDense(3, 3, nil),
	}
	af.t.Set(0, 0, 1)
	af.t.Set(1, 1, 1)
	af.t.Set(2, 2, 1)
	af.r.Set(2, 2, 1)
	return af
}

// matrix returns T(x, y) · R(rotation), where R is stored with columns
// (c, -s, 0) and (s, c, 0): rotating by -rotation in math convention, i.e.
// by the agent's heading.
func (af *affine) matrix(tr InstanceTransform) Matrix {
	c, s := math.Cos(tr.Rotation), math.Sin(tr.Rotation)

	af.t.Set(0, 2, tr.X)
	af.t.Set(1, 2, tr.Y)

	af.r.Set(0, 0, c)
	af.r.Set(0, 1, s)
	af.r.Set(1, 0, -s)
	af.r.Set(1, 1, c)

	af.m.Mul(af.t, af.r)

	var out Matrix
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			out[col*3+row] = af.m.At(row, col)
		}
	}
	return out
}

// MatrixOf builds the column-major affine matrix for tr.
func MatrixOf(tr InstanceTransform) Matrix {
	return newAffine().matrix(tr)
}

// Producer writes agents into a flat float32 buffer in agent index order.
type Producer struct {
	layout Layout
	af     *affine
}

// NewProducer returns a Producer for layout.
func NewProducer(layout Layout) *Producer {
	return &Producer{layout: layout, af: newAffine()}
}

// Layout reports the record layout written by p.
func (p *Producer) Layout() Layout { return p.layout }

// Resize returns buf grown or shrunk to hold count instances.
func (p *Producer) Resize(buf []float32, count int) []float32 {
	n := count * p.layout.Stride()
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

// Put writes agent a as instance i of buf.
func (p *Producer) Put(buf []float32, i int, a behavior.Agent) {
	tr := TransformOf(a)
	switch p.layout {
	case LayoutTransform:
		rec := buf[i*3 : i*3+3]
		rec[0] = float32(tr.X)
		rec[1] = float32(tr.Y)
		rec[2] = float32(tr.Rotation)
	case LayoutMatrix:
		m := p.af.matrix(tr)
		rec := buf[i*9 : i*9+9]
		for k, v := range m {
			rec[k] = float32(v)
		}
	}
}

// Fill writes every agent of pop into buf, reusing its storage when it can.
func (p *Producer) Fill(buf []float32, pop behavior.Population) []float32 {
	buf = p.Resize(buf, len(pop))
	for i := range pop {
		p.Put(buf, i, pop[i])
	}
	return buf
}

// InstanceMatrix reads instance i of a buffer in layout l as a matrix.
func InstanceMatrix(buf []float32, i int, l Layout) Matrix {
	return newAffine().instance(buf, i, l)
}

func (af *affine) instance(buf []float32, i int, l Layout) Matrix {
	switch l {
	case LayoutTransform:
		rec := buf[i*3 : i*3+3]
		return af.matrix(InstanceTransform{X: float64(rec[0]), Y: float64(rec[1]), Rotation: float64(rec[2])})
	default:
		var m Matrix
		for k, v := range buf[i*9 : i*9+9] {
			m[k] = float64(v)
		}
		return m
	}
}

// InstanceTransformAt reads instance i of a buffer in layout l.
func InstanceTransformAt(buf []float32, i int, l Layout) InstanceTransform {
	if l == LayoutTransform {
		rec := buf[i*3 : i*3+3]
		return InstanceTransform{X: float64(rec[0]), Y: float64(rec[1]), Rotation: float64(rec[2])}
	}
	return InstanceMatrix(buf, i, l).Transform()
}

// Fill writes pop into buf in layout l, growing buf only when needed.
func Fill(buf []float32, pop behavior.Population, l Layout) []float32 {
	return NewProducer(l).Fill(buf, pop)
}
