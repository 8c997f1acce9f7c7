package gooey

// VertexStride is the number of float64 values per vertex record: x, y, u, v.
const VertexStride = 4

// SetupStep is the name of the pose that supplies texture coordinates for
// every other pose of an animator.
const SetupStep = "__setup__"

// VertexBuffer is the renderable shape of a body part at one instant: a flat
// slice of (x, y, u, v) records. u and v are normalized texture coordinates.
//
// A body part owns exactly one VertexBuffer. The animator and chain builder
// write positions into it; the render layer reads it once per frame.
type VertexBuffer struct {
	Data []float64
}

// NewVertexBuffer copies data into a new buffer. len(data) should be a
// multiple of VertexStride; a trailing partial record is ignored by Len.
func NewVertexBuffer(data []float64) *VertexBuffer {
	b := &VertexBuffer{Data: make([]float64, len(data))}
	copy(b.Data, data)
	return b
}

// Len returns the number of complete vertex records.
func (b *VertexBuffer) Len() int {
	return len(b.Data) / VertexStride
}

// XY returns the position of vertex i.
func (b *VertexBuffer) XY(i int) (x, y float64) {
	j := i * VertexStride
	return b.Data[j], b.Data[j+1]
}

// SetXY sets the position of vertex i. Texture coordinates are untouched.
func (b *VertexBuffer) SetXY(i int, x, y float64) {
	j := i * VertexStride
	b.Data[j] = x
	b.Data[j+1] = y
}

// UV returns the texture coordinates of vertex i.
func (b *VertexBuffer) UV(i int) (u, v float64) {
	j := i * VertexStride
	return b.Data[j+2], b.Data[j+3]
}

// Clone returns a deep copy of the buffer.
func (b *VertexBuffer) Clone() *VertexBuffer {
	return NewVertexBuffer(b.Data)
}

// Bounds scans the positions and returns their axis-aligned bounding box.
func (b *VertexBuffer) Bounds() Rect {
	n := b.Len()
	if n == 0 {
		return Rect{}
	}
	minX, minY := b.XY(0)
	maxX, maxY := minX, minY
	for i := 1; i < n; i++ {
		x, y := b.XY(i)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Centroid returns the mean position of the vertices from index `from` to the
// end. Triangle-fan meshes pass 1 to skip the hub vertex.
func (b *VertexBuffer) Centroid(from int) Vec2 {
	n := b.Len()
	if from >= n {
		return Vec2{}
	}
	var sx, sy float64
	for i := from; i < n; i++ {
		x, y := b.XY(i)
		sx += x
		sy += y
	}
	count := float64(n - from)
	return Vec2{X: sx / count, Y: sy / count}
}

// RightmostX returns the largest x coordinate after adding offsetX, never
// less than zero.
func (b *VertexBuffer) RightmostX(offsetX float64) float64 {
	right := 0.0
	for i := 0; i < b.Len(); i++ {
		x, _ := b.XY(i)
		x += offsetX
		if x > right {
			right = x
		}
	}
	return right
}

// FanIndices generates triangle-fan indices for n vertices with vertex 0 as
// the hub, closing the fan back onto vertex 1. Returns nil for n < 3.
func FanIndices(n int) []uint16 {
	if n < 3 {
		return nil
	}
	rim := n - 1
	inds := make([]uint16, 0, rim*3)
	for i := 0; i < rim; i++ {
		a := uint16(i + 1)
		b := uint16((i+1)%rim + 1)
		inds = append(inds, 0, a, b)
	}
	return inds
}
