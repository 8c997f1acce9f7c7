// Package render submits gooey vertex buffers to Ebitengine.
//
// The root package keeps positions in physics space (Y up) and texture
// coordinates normalized. This package is the only place those records become
// ebiten.Vertex values, so the simulation can run headless.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/gooey"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vertices converts buf into ebiten vertices, appending to dst[:0] and
// returning the result. Positions are mapped through m. Texture coordinates
// are scaled to an image of imgW x imgH pixels; v grows upward, so v=1 is the
// top row of the image.
//
// The tint is premultiplied into the vertex color.
func Vertices(buf *gooey.VertexBuffer, m gooey.Affine, tint Color, imgW, imgH float64, dst []ebiten.Vertex) []ebiten.Vertex {
	dst = dst[:0]
	if buf == nil {
		return dst
	}
	ca := float32(tint.A)
	cr := float32(tint.R) * ca
	cg := float32(tint.G) * ca
	cb := float32(tint.B) * ca

	for i := range buf.Len() {
		x, y := buf.XY(i)
		u, v := buf.UV(i)
		wx, wy := m.Apply(x, y)
		dst = append(dst, ebiten.Vertex{
			DstX:   float32(wx),
			DstY:   float32(wy),
			SrcX:   float32(u * imgW),
			SrcY:   float32((1 - v) * imgH),
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	return dst
}

var whitePixelImage *ebiten.Image

// whitePixel returns a lazily-initialized 1x1 white pixel image. Used for
// parts drawn without a texture.
func whitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// Mesh draws vertex buffers onto a target image. It reuses its vertex slice
// between calls; a Mesh is not safe for concurrent use.
type Mesh struct {
	verts []ebiten.Vertex
	op    ebiten.DrawTrianglesOptions
}

// Draw renders buf with the given triangle indices. A nil img fills the
// triangles with the tint alone.
func (r *Mesh) Draw(dst, img *ebiten.Image, buf *gooey.VertexBuffer, indices []uint16, m gooey.Affine, tint Color) {
	if buf == nil || buf.Len() == 0 || len(indices) < 3 {
		return
	}
	w, h := 1.0, 1.0
	if img == nil {
		img = whitePixel()
	} else {
		b := img.Bounds()
		w, h = float64(b.Dx()), float64(b.Dy())
	}
	r.verts = Vertices(buf, m, tint, w, h, r.verts)
	r.op.AntiAlias = true
	dst.DrawTriangles(r.verts, indices, img, &r.op)
}

// Part draws a mesh part at its own transform, composed with view.
func (r *Mesh) Part(dst, img *ebiten.Image, p gooey.MeshPart, view gooey.Affine, tint Color) {
	r.Draw(dst, img, p.Mesh(), p.Indices(), view.Mul(p.Transform()), tint)
}

var shared Mesh

// DrawMesh renders buf using a package-level vertex scratch buffer. It must
// only be called from the game's Draw goroutine.
func DrawMesh(dst, img *ebiten.Image, buf *gooey.VertexBuffer, indices []uint16, m gooey.Affine, tint Color) {
	shared.Draw(dst, img, buf, indices, m, tint)
}
