package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/image/colornames"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/render"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/ui"
)

// Game is the ebiten host: every Update sends the edited settings and one
// tick to the world actor, every Draw shows the newest submitted frame.
type Game struct {
	ctx      context.Context
	System   actor.ActorSystem
	worldPID *actor.PID
	driver   *Driver
	renderer *render.EbitenRenderer
	cfg      *Config
	logger   log.Logger

	// UI Controls
	panel *ui.UIPanel

	widgetCohesion         *ui.Checkbox
	widgetCohesionFactor   *ui.Slider
	widgetSeparation       *ui.Checkbox
	widgetSeparationFactor *ui.Slider
	widgetSeparationRange  *ui.Slider
	widgetAlignment        *ui.Checkbox
	widgetAlignmentFactor  *ui.Slider
	widgetVisualRange      *ui.Slider

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame spawns the world actor on system and builds the settings panel.
// The error is fatal: it means the renderer could not be initialised.
func NewGame(ctx context.Context, cfg *Config, system actor.ActorSystem, logger log.Logger) (*Game, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	settings := behavior.NewAtomicSettings(cfg.Settings)
	renderer := render.NewEbitenRenderer(render.DefaultMesh)
	driver := NewDriver(cfg, settings, renderer, logger)

	worldPID, err := system.Spawn(ctx, "world", NewWorldActor(driver, settings))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:      ctx,
		System:   system,
		worldPID: worldPID,
		driver:   driver,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
	g.buildPanel(cfg.Settings)
	return g, nil
}

func (g *Game) buildPanel(s behavior.Settings) {
	panel := ui.NewUIPanel(10, 10, 260, float64(g.cfg.WindowHeight)-20)

	panel.AddSection("Cohesion")
	g.widgetCohesion = panel.AddCheckbox("Cohesion", s.CohesionEnabled)
	g.widgetCohesionFactor = panel.AddSlider("Cohesion Factor", 0, 0.0001, 0.000001, 6, s.CohesionFactor)
	panel.EndSection()

	panel.AddSection("Separation")
	g.widgetSeparation = panel.AddCheckbox("Separation", s.SeparationEnabled)
	g.widgetSeparationFactor = panel.AddSlider("Separation Factor", 0, 0.1, 0.000001, 6, s.SeparationFactor)
	g.widgetSeparationRange = panel.AddSlider("Separation Range", 0.001, 0.1, 0.0001, 4, s.SeparationRange)
	panel.EndSection()

	panel.AddSection("Alignment")
	g.widgetAlignment = panel.AddCheckbox("Alignment", s.AlignmentEnabled)
	g.widgetAlignmentFactor = panel.AddSlider("Alignment Factor", 0, 0.1, 0.00001, 6, s.AlignmentFactor)
	panel.EndSection()

	panel.AddSection("Perception")
	g.widgetVisualRange = panel.AddSlider("Visual Range", 0.01, 1, 0.001, 3, s.VisualRange)
	panel.EndSection()

	panel.AddSection("Simulation")
	panel.AddButton("Stop", g.driver.Stop)
	panel.EndSection()

	g.panel = panel
}

// Settings reads the values currently shown by the panel.
func (g *Game) Settings() behavior.Settings {
	return behavior.Settings{
		CohesionEnabled:   g.widgetCohesion.Value,
		CohesionFactor:    g.widgetCohesionFactor.Value,
		SeparationEnabled: g.widgetSeparation.Value,
		SeparationFactor:  g.widgetSeparationFactor.Value,
		SeparationRange:   g.widgetSeparationRange.Value,
		AlignmentEnabled:  g.widgetAlignment.Value,
		AlignmentFactor:   g.widgetAlignmentFactor.Value,
		VisualRange:       g.widgetVisualRange.Value,
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		g.driver.Stop()
	}
	if g.driver.Stopped() {
		return ebiten.Termination
	}

	g.panel.Update()
	if g.panel.Changed() {
		patch, err := NewSettingsPatch(g.Settings())
		if err != nil {
			return err
		}
		if err := actor.Tell(g.ctx, g.worldPID, patch); err != nil {
			return fmt.Errorf("failed to send settings: %w", err)
		}
	}

	// Trigger Simulation Step
	if err := actor.Tell(g.ctx, g.worldPID, NewTick(time.Now())); err != nil {
		return fmt.Errorf("failed to send tick: %w", err)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(colornames.Black)
	g.renderer.Draw(screen)
	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nAgents: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.cfg.Population,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.WindowWidth-150, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.WindowWidth, g.cfg.WindowHeight }
