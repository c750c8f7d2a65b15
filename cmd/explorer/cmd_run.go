package main

import (
	"errors"
	"os"

	"property-explorer/internal/debug"
	"property-explorer/internal/fonts"
	"property-explorer/internal/graphics"
	"property-explorer/internal/imagery"
	"property-explorer/internal/interaction"
	"property-explorer/internal/render"
	"property-explorer/internal/scene"
	"property-explorer/internal/ui"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// inspectorCSS overrides the built-in inspector style when present.
const inspectorCSS = "assets/ui/explorer.css"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the explorer window for a feed",
	Long: `run opens the 3D explorer. Right mouse button + WASD/mouse moves the camera,
left click selects a property and opens its details, Esc closes them. F1 shows FPS,
F2 scene stats, F3 the recent log.`,
	RunE: runExplorer,
}

func runExplorer(cmd *cobra.Command, args []string) error {
	feed, err := loadFeed(feedPath)
	if err != nil {
		return err
	}
	l := log.Logger

	provider := imagery.NewGoogleProvider(googleOptions(cfg), l)
	sc := scene.New(provider, sceneOptions(cfg), l)
	defer sc.Close()
	sc.Rebuild(feed.Properties, weightsFor(feed, cfg.Weights))

	view := render.NewView(rl.NewVector3(60, 45, 60))
	view.GridVisible = cfg.Scene.GridVisible
	renderer := render.NewRenderer(l)

	inspector := ui.NewInspector()
	engine := ui.New()
	if err := engine.LoadCSS(inspectorCSS); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.Warn("inspector stylesheet not loaded, using built-in", zap.Error(err))
		}
		sheet, _ := ui.ParseCSS(ui.DefaultCSS)
		engine.SetStylesheet(sheet)
	}
	ic := interaction.New(sc, &view.Camera, inspector, interactionOptions(cfg), l)

	dbg := debug.New()
	dbg.ShowFPS = cfg.Debug.ShowFPS
	dbg.ShowMemAlloc = cfg.Debug.ShowMemAlloc
	dbg.ShowStats = cfg.Debug.ShowStats

	var panelRev uint64
	update := func(dt float32) bool {
		dbg.HandleInput()
		if rl.IsKeyPressed(rl.KeyEscape) {
			ic.Close()
		}
		view.Update(ic.State() == interaction.StateSelected)
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !overInspector(inspector) {
			ic.Click(rl.GetScreenToWorldRay(rl.GetMousePosition(), view.Camera))
		}
		ic.Update(dt)
		sc.Tick(view.Camera, dt)
		dbg.Update(sc.Stats(), log.Recent)
		return true
	}
	draw := func() {
		view.Draw(func() { renderer.Draw(view.Camera, sc) })
		renderer.DrawLabels(view.Camera, sc)
		if rev := inspector.Revision(); rev != panelRev {
			panelRev = rev
			engine.SetNodes(inspector.AppendNodes(nil))
		}
		engine.Draw()
		dbg.Draw()
	}

	l.Info("explorer starting", zap.Int("properties", len(feed.Properties)), zap.String("feed", feedPath))
	graphics.Run(graphics.Window{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		TargetFPS:  cfg.Window.TargetFPS,
		MSAA:       true,
	}, graphics.Hooks{
		Init: func() {
			path, err := fonts.Find(cfg.Window.Font)
			if err != nil {
				l.Debug("no font found, using raylib default", zap.String("font", cfg.Window.Font))
				return
			}
			if err := engine.LoadFont(path); err != nil {
				l.Warn("font not loaded", zap.String("path", path), zap.Error(err))
				return
			}
			dbg.SetFont(engine.Font())
		},
		Update: update,
		Draw:   draw,
		Close: func() {
			l.Info("explorer closed", zap.Any("stats", sc.Stats()))
			sc.Close()
			renderer.Close()
			view.Close()
		},
	})
	return nil
}

// overInspector reports whether the mouse is over the open detail panel.
func overInspector(in *ui.Inspector) bool {
	if !in.Visible() {
		return false
	}
	return rl.GetMousePosition().X >= float32(rl.GetScreenWidth()-ui.InspectorWidth)
}
