package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"

	"github.com/milk9111/parkkeeper/config"
	"github.com/milk9111/parkkeeper/fsm"
	"github.com/milk9111/parkkeeper/keeper"
	"github.com/milk9111/parkkeeper/menu"
	"github.com/milk9111/parkkeeper/park"
	"github.com/milk9111/parkkeeper/prefabs"
	"github.com/milk9111/parkkeeper/system"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// pixels per world unit
	worldScale = 3.2
)

type Game struct {
	frames int

	world     *system.World
	scheduler *system.Scheduler
	reloader  *system.Reloader
	screen    *menuScreen

	logger       *slog.Logger
	hasClipboard bool
	debug        bool
}

func NewGame(cfg config.Config, logger *slog.Logger, metrics *fsm.Metrics, hasClipboard bool) (*Game, error) {
	opts := []fsm.Option{
		fsm.WithLogger(logger),
		fsm.WithObserver(fsm.LogObserver{Logger: logger}),
		fsm.WithObserver(metrics),
	}

	g := &Game{
		world:        system.NewWorld(park.DefaultLayout(), cfg.KeeperTuning(), logger),
		scheduler:    system.DefaultScheduler(gooseKeys{}),
		logger:       logger,
		hasClipboard: hasClipboard,
		debug:        cfg.Debug,
	}
	g.screen = newMenuScreen(g)

	km, err := keeper.Load(opts...)
	if err != nil {
		return nil, err
	}
	g.world.SetKeeper(km)

	mm, err := menu.Load(opts...)
	if err != nil {
		return nil, err
	}
	g.world.SetMenu(mm, menu.NewContext(g.screen, g.world.Park.Score, cfg.RoundSeconds))

	if cfg.Watch {
		w, err := prefabs.NewWatcher(cfg.PrefabDir, filepath.Join(cfg.PrefabDir, "scripts"))
		if err != nil {
			logger.Warn("hot reload disabled", "dir", cfg.PrefabDir, "err", err)
		} else {
			g.reloader = &system.Reloader{Watcher: w, Options: opts}
		}
	}
	return g, nil
}

func (g *Game) Close() {
	if g.reloader != nil {
		_ = g.reloader.Watcher.Close()
	}
}

func (g *Game) Update() error {
	g.frames++

	g.reloader.Apply(g.world)
	g.world.DT = 1 / float64(ebiten.TPS())

	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.copyDiagram()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.restart()
	}
	if ui := g.screen.active(); ui != nil {
		ui.Update()
	}

	if err := g.scheduler.Update(g.world); err != nil {
		return err
	}
	if g.screen.quit {
		return ebiten.Termination
	}
	return nil
}

// restart goes back to the manual screen with a fresh park, as on launch.
func (g *Game) restart() {
	g.world.Reset()
	g.screen.reset()
	g.logger.Info("game restarted")
}

func (g *Game) copyDiagram() {
	diagram := g.world.Diagram()
	if !g.hasClipboard {
		g.logger.Info("machine diagram", "mermaid", diagram)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(diagram))
	g.logger.Info("copied machine diagram to clipboard")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkolivegreen)

	layout := g.world.Park.Layout()
	g.fillBB(screen, layout.Island, colornames.Steelblue)
	for _, wall := range layout.Walls {
		g.fillBB(screen, wall, colornames.Saddlebrown)
	}

	home := toScreen(layout.KeeperHome)
	vector.StrokeRect(screen, home.X-12, home.Y-12, 24, 24, 2, colornames.Khaki, false)

	path := g.world.KeeperCtx.Waypoints
	for i := 1; i < len(path); i++ {
		a, b := toScreen(path[i-1]), toScreen(path[i])
		vector.StrokeLine(screen, a.X, a.Y, b.X, b.Y, 2, colornames.Red, true)
	}

	apple := toScreen(g.world.Park.ApplePosition())
	vector.FillCircle(screen, apple.X, apple.Y, 6, colornames.Crimson, true)
	goose := toScreen(g.world.Park.GoosePosition())
	vector.FillCircle(screen, goose.X, goose.Y, 4*worldScale, colornames.White, true)
	k := toScreen(g.world.Park.KeeperPosition())
	vector.FillCircle(screen, k.X, k.Y, 4*worldScale, colornames.Orange, true)

	if g.debug {
		g.world.Park.DrawDebug(&shapeOutliner{screen: screen})
	}

	mode := "1P"
	if g.screen.doubleOn {
		mode = "2P"
	}
	hud := fmt.Sprintf("%s  score %d  time %.0f/%.0f", mode, g.world.Park.Score(), g.world.MenuCtx.Elapsed, g.world.MenuCtx.RoundSeconds)
	if g.debug {
		hud += fmt.Sprintf("\nFrames: %d    FPS: %.2f\n%s\nF2 copies the state diagrams, F5 restarts", g.frames, ebiten.ActualFPS(), g.world)
	}
	ebitenutil.DebugPrint(screen, hud)

	if ui := g.screen.active(); ui != nil {
		ui.Draw(screen)
	}
}

func (g *Game) fillBB(screen *ebiten.Image, bb cp.BB, c color.Color) {
	tl := toScreen(cp.Vector{X: bb.L, Y: bb.T})
	w := float32((bb.R - bb.L) * worldScale)
	h := float32((bb.T - bb.B) * worldScale)
	vector.FillRect(screen, tl.X, tl.Y, w, h, c, false)
}

type screenPoint struct {
	X, Y float32
}

// toScreen maps world coordinates (origin at the park center, y up) to
// pixels.
func toScreen(v cp.Vector) screenPoint {
	return screenPoint{
		X: float32(baseWidth/2 + v.X*worldScale),
		Y: float32(baseHeight/2 - v.Y*worldScale),
	}
}

// gooseKeys steers the goose with WASD or the arrow keys.
type gooseKeys struct{}

func (gooseKeys) GooseDirection() cp.Vector {
	var dir cp.Vector
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dir.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dir.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dir.Y++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dir.Y--
	}
	return dir
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
