package main

import (
	"flag"
	"image/color"
	"log"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/teamstor/team-stor-engine/assets"
	"github.com/teamstor/team-stor-engine/debugui"
	debugui_ebiten "github.com/teamstor/team-stor-engine/debugui/ebiten"
	"github.com/teamstor/team-stor-engine/engine"
	"github.com/teamstor/team-stor-engine/input"
)

const sampleRate = 48000

func main() {
	configPath := flag.String("config", "engine.yaml", "Path to the engine configuration file.")
	dataDir := flag.String("data", "", "Override the data directory from the config.")
	inspector := flag.Bool("inspector", true, "Show the runtime inspector overlay.")
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	audioCtx := audio.NewContext(sampleRate)
	cache := assets.NewCache(cfg.DataDir, assets.NewEbitenRegistry(audioCtx))
	defer cache.Dispose()

	if err := cache.Watch(); err != nil {
		log.Printf("Hot reload disabled: %v", err)
	}
	cache.OnChange(func(change assets.Change) {
		log.Printf("Reloaded %s", change.Key)
	})

	store := input.NewStore(input.NewEbitenDevices())
	loop, err := engine.NewLoop(cfg, store)
	if err != nil {
		log.Fatalf("Failed to build loop: %v", err)
	}
	loop.OnTransition(func(old, new engine.Context) {
		cache.SweepTransition(old, new)
	})

	demo := &demoContext{cache: cache}
	if cfg.ShowIntro {
		logo, _ := assets.TryGet[*ebiten.Image](cache, "logo.png", assets.Retain())
		loop.SetContext(engine.NewIntro(demo, logo))
	} else {
		loop.SetContext(demo)
	}

	ebiten.SetWindowTitle(cfg.WindowTitle)
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)

	var game ebiten.Game = loop
	if *inspector {
		backend := debugui_ebiten.NewImguiBackend()
		backend.CreateWindow(cfg.WindowTitle, cfg.WindowWidth, cfg.WindowHeight)
		imgui.CurrentIO().SetIniFilename("")

		game = &inspectedGame{
			loop:      loop,
			backend:   backend,
			inspector: debugui.NewInspector(loop, cache, 120),
		}
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("Engine exited with error: %v", err)
	}
}

// demoContext bounces a square around the viewport. Movement is
// integrated in fixed updates and rendered at the interpolated position
// so the demo doubles as a smoke test for the accumulator.
type demoContext struct {
	engine.ContextState

	cache *assets.Cache
	logo  *ebiten.Image

	x, y         float64
	prevX, prevY float64
	vx, vy       float64
}

const (
	squareSize  = 48.0
	squareSpeed = 220.0
)

func (c *demoContext) Enter(prev engine.Context) {
	c.logo, _ = assets.TryGet[*ebiten.Image](c.cache, "logo.png", assets.Retain())

	w, h := c.Loop().Viewport()
	c.x = float64(w) / 2
	c.y = float64(h) / 2
	c.prevX, c.prevY = c.x, c.y
	c.vx, c.vy = squareSpeed, squareSpeed*0.75
}

func (c *demoContext) Leave(next engine.Context) {}

func (c *demoContext) Update(dt, total float64, tick uint64) {
	in := c.Loop().Input().Variable()

	if in.KeyPressed(ebiten.KeyEscape) {
		c.Loop().Quit()
	}
	if in.KeyPressed(ebiten.KeySpace) {
		c.vx, c.vy = -c.vx, -c.vy
	}
}

func (c *demoContext) FixedUpdate(tick uint64) {
	step := c.Loop().Clock().FixedStep()
	w, h := c.Loop().Viewport()

	c.prevX, c.prevY = c.x, c.y
	c.x += c.vx * step
	c.y += c.vy * step

	if c.x < 0 || c.x+squareSize > float64(w) {
		c.vx = -c.vx
	}
	if c.y < 0 || c.y+squareSize > float64(h) {
		c.vy = -c.vy
	}
}

func (c *demoContext) Draw(screen *ebiten.Image) {
	alpha := c.Loop().Clock().Alpha()
	x := c.prevX + (c.x-c.prevX)*alpha
	y := c.prevY + (c.y-c.prevY)*alpha

	vector.DrawFilledRect(screen, float32(x), float32(y), squareSize, squareSize,
		color.RGBA{R: 0x3c, G: 0xb4, B: 0x4b, A: 0xff}, false)

	if c.logo != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(16, 16)
		screen.DrawImage(c.logo, op)
	}
}

// inspectedGame layers the Dear ImGui inspector on top of the loop.
type inspectedGame struct {
	loop      *engine.Loop
	backend   *debugui_ebiten.ImguiBackend
	inspector *debugui.Inspector
}

func (g *inspectedGame) Update() error {
	g.backend.BeginFrame()
	err := g.loop.Update()
	g.inspector.Render()
	g.backend.EndFrame()
	return err
}

func (g *inspectedGame) Draw(screen *ebiten.Image) {
	g.loop.Draw(screen)
	g.backend.Draw(screen)
}

func (g *inspectedGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Layout(outsideWidth, outsideHeight)
	return g.loop.Layout(outsideWidth, outsideHeight)
}
