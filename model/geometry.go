package model

import "math"

// Point represents a 2D point in PDF user space
type Point struct {
	X, Y float64
}

// BBox is an axis-aligned rectangle in PDF user space (origin bottom-left)
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from its left, bottom, width and height
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// BBoxFromCorners creates a normalized bounding box from two opposite corners.
// Negative widths produced by "re" operators with negative extents end up here.
func BBoxFromCorners(p1, p2 Point) BBox {
	return BBox{
		X:      math.Min(p1.X, p2.X),
		Y:      math.Min(p1.Y, p2.Y),
		Width:  math.Abs(p2.X - p1.X),
		Height: math.Abs(p2.Y - p1.Y),
	}
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 { return b.X + b.Width }

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 { return b.Y + b.Height }

// Contains reports whether p lies inside b (edges included)
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.Right() && p.Y >= b.Y && p.Y <= b.Top()
}

// ContainsBox reports whether other lies fully inside b, allowing tol points of slack
func (b BBox) ContainsBox(other BBox, tol float64) bool {
	return other.X >= b.X-tol && other.Right() <= b.Right()+tol &&
		other.Y >= b.Y-tol && other.Top() <= b.Top()+tol
}

// Intersects reports whether two boxes share interior area. Boxes that only
// touch along an edge do not intersect.
func (b BBox) Intersects(other BBox) bool {
	return b.X < other.Right() && other.X < b.Right() &&
		b.Y < other.Top() && other.Y < b.Top()
}

// Union returns the smallest box containing both boxes. The zero BBox acts as
// an identity so callers can accumulate from an empty value.
func (b BBox) Union(other BBox) BBox {
	if b.IsZero() {
		return other
	}
	if other.IsZero() {
		return b
	}
	x := math.Min(b.X, other.X)
	y := math.Min(b.Y, other.Y)
	return BBox{
		X:      x,
		Y:      y,
		Width:  math.Max(b.Right(), other.Right()) - x,
		Height: math.Max(b.Top(), other.Top()) - y,
	}
}

// Expand grows the box by margin on every side
func (b BBox) Expand(margin float64) BBox {
	return BBox{X: b.X - margin, Y: b.Y - margin, Width: b.Width + 2*margin, Height: b.Height + 2*margin}
}

// IsZero reports whether b is the zero value
func (b BBox) IsZero() bool {
	return b == BBox{}
}

// Matrix is a PDF affine transformation [a b c d e f]
type Matrix [6]float64

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Transform maps a point through the matrix
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m x other. In PDF terms, applying "cm" with matrix m to a
// current transformation other yields m.Multiply(other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// TransformBox maps the unit-free rectangle b through m and returns the
// bounding box of the four transformed corners.
func (m Matrix) TransformBox(b BBox) BBox {
	corners := [4]Point{
		m.Transform(Point{b.X, b.Y}),
		m.Transform(Point{b.Right(), b.Y}),
		m.Transform(Point{b.X, b.Top()}),
		m.Transform(Point{b.Right(), b.Top()}),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ScaleY returns the vertical scale factor of the matrix
func (m Matrix) ScaleY() float64 {
	return math.Hypot(m[2], m[3])
}

// ScaleX returns the horizontal scale factor of the matrix
func (m Matrix) ScaleX() float64 {
	return math.Hypot(m[0], m[1])
}
