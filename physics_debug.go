package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
)

// shapeOutliner draws the park's collision shapes as outlines in screen
// space. Enabled with -debug.
type shapeOutliner struct {
	screen *ebiten.Image
}

func (d *shapeOutliner) line(a, b cp.Vector, c cp.FColor) {
	pa, pb := toScreen(a), toScreen(b)
	vector.StrokeLine(d.screen, pa.X, pa.Y, pb.X, pb.Y, 1, toRGBA(c), false)
}

func (d *shapeOutliner) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	const steps = 16
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / steps)
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, outline)
		prev = cur
	}
}

func (d *shapeOutliner) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fill)
}

func (d *shapeOutliner) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, outline)
}

func (d *shapeOutliner) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], outline)
	}
}

func (d *shapeOutliner) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	p := toScreen(pos)
	vector.FillCircle(d.screen, p.X, p.Y, float32(size/2), toRGBA(fill), false)
}

func (d *shapeOutliner) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *shapeOutliner) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *shapeOutliner) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape != nil && shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *shapeOutliner) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *shapeOutliner) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *shapeOutliner) Data() interface{} {
	return nil
}

func toRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		return uint8(min(max(v, 0), 1) * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
