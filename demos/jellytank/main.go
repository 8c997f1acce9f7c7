// jellytank fills a wrapping tank with pulsing jellies built from an embedded
// creature document. Click to steer every jelly toward the cursor, press
// Space to pause and D to toggle step logging.
package main

import (
	_ "embed"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/gooey"
	"github.com/phanxgames/gooey/render"
)

const (
	screenW    = 1280
	screenH    = 720
	jellyCount = 6
	textureDim = 128

	// Seconds between random heading changes.
	wanderEvery = 4.0
)

//go:embed jelly.json
var jellyJSON []byte

var tints = []render.Color{
	{R: 0.95, G: 0.55, B: 0.85, A: 0.9},
	{R: 0.55, G: 0.80, B: 1.00, A: 0.9},
	{R: 0.75, G: 1.00, B: 0.70, A: 0.9},
	{R: 1.00, G: 0.85, B: 0.55, A: 0.9},
}

type game struct {
	env      *gooey.Environment
	textures map[string]*ebiten.Image
	mesh     render.Mesh
	view     gooey.Affine
	wander   float64
	debug    bool
}

func newGame() (*game, error) {
	doc, err := gooey.LoadCreatureDocument(jellyJSON)
	if err != nil {
		return nil, err
	}

	g := &game{
		env: gooey.NewEnvironment(gooey.EnvironmentConfig{
			Bounds: gooey.Rect{Width: screenW, Height: screenH},
		}),
		textures: map[string]*ebiten.Image{
			"bell":  radialTexture(1.0, 0.35),
			"skirt": radialTexture(0.7, 0.1),
		},
		view: gooey.FlipY(screenH),
	}

	for range jellyCount {
		doc.ID = g.env.NextID()
		doc.Pos = [2]float64{rand.Float64() * screenW, rand.Float64() * screenH}
		doc.Angle = rand.Float64()*360 - 180
		doc.Scale = 0.6 + rand.Float64()*0.6
		c, err := gooey.AssembleCreature(doc)
		if err != nil {
			slog.Warn("jelly assembled with errors", "id", doc.ID, "err", err)
		}
		if c == nil {
			continue
		}
		if err := g.env.AddCreature(c); err != nil {
			return nil, err
		}
	}
	g.env.SetEventSink(logSink{})
	return g, nil
}

func (g *game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.env.SetPaused(!g.env.Paused())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.debug = !g.debug
		level := slog.LevelInfo
		if g.debug {
			level = slog.LevelDebug
		}
		gooey.SetLogger(newLogger(level))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.steerToCursor()
	}

	g.wander += dt
	if g.wander >= wanderEvery {
		g.wander = 0
		for _, c := range g.env.Creatures() {
			if rand.IntN(2) == 0 {
				c.Orient(rand.Float64()*360-180, 0.5+rand.Float64()*0.5)
			}
		}
	}

	g.env.Animate(dt)
	g.env.Step(dt)
	return nil
}

// steerToCursor orients every jelly toward the mouse, in physics space.
func (g *game) steerToCursor() {
	mx, my := ebiten.CursorPosition()
	tx, ty := g.view.Invert().Apply(float64(mx), float64(my))
	for _, c := range g.env.Creatures() {
		p := c.Pos()
		angle := math.Atan2(ty-p.Y, tx-p.X) * 180 / math.Pi
		c.Orient(angle, 1)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 10, G: 18, B: 38, A: 255})

	for i, c := range g.env.Creatures() {
		tint := tints[i%len(tints)]
		parts := c.Parts()
		// Trailing parts first so the bell sits on top.
		for j := len(parts) - 1; j >= 0; j-- {
			mp, ok := parts[j].(gooey.MeshPart)
			if !ok {
				continue
			}
			g.mesh.Part(screen, g.textures[mp.Image()], mp, g.view, tint)
		}
	}

	status := ""
	if g.env.Paused() {
		status = "\npaused"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\njellies: %d%s",
		ebiten.ActualFPS(), ebiten.ActualTPS(), len(g.env.Creatures()), status))
}

func (g *game) Layout(_, _ int) (int, int) {
	return screenW, screenH
}

// radialTexture builds a soft disc that fades from core alpha at the center to
// rim alpha at the edge.
func radialTexture(core, rim float64) *ebiten.Image {
	pix := make([]byte, textureDim*textureDim*4)
	half := float64(textureDim) / 2
	for y := range textureDim {
		for x := range textureDim {
			d := math.Hypot(float64(x)+0.5-half, float64(y)+0.5-half) / half
			a := core + (rim-core)*math.Min(d, 1)
			if d > 1 {
				a = rim
			}
			// Faint rings read as muscle bands once the mesh deforms.
			band := 0.85 + 0.15*math.Cos(d*math.Pi*6)
			v := byte(255 * a * band)
			i := (y*textureDim + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, byte(255*a)
		}
	}
	img := ebiten.NewImage(textureDim, textureDim)
	img.WritePixels(pix)
	return img
}

// logSink reports creature events through the default logger.
type logSink struct{}

func (logSink) EmitEvent(e gooey.CreatureEvent) {
	if e.Type == gooey.EventCreatureFault {
		slog.Warn("creature fault", "id", e.CreatureID, "err", e.Err)
		return
	}
	slog.Debug("creature event", "type", e.Type, "id", e.CreatureID, "x", e.X, "y", e.Y)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	gooey.SetLogger(newLogger(slog.LevelInfo))
	slog.SetDefault(newLogger(slog.LevelInfo))

	g, err := newGame()
	if err != nil {
		log.Fatal(err)
	}
	defer g.env.Destroy()

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("gooey: jelly tank")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
