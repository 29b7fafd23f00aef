package main

import (
	"fmt"
	"os"

	"crystal-engine/internal/debug"
	"crystal-engine/internal/engineconfig"
	"crystal-engine/internal/env"
	"crystal-engine/internal/game"
	"crystal-engine/internal/graphics"
	"crystal-engine/internal/logger"
	"crystal-engine/internal/scene"
	"crystal-engine/internal/terminal"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	logPath    string
	seed       uint64
}

func main() {
	if err := env.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "game",
		Short:        "Block shooter on the crystal-engine physics core",
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			return play(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", env.Get(env.ConfigVar, engineconfig.EngineConfigPath), "engine config file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&opts.logPath, "log", env.Get(env.LogVar, logger.LogFilePath), "log file")
	root.PersistentFlags().Uint64Var(&opts.seed, "seed", 1, "random seed for explosions")

	root.AddCommand(&cobra.Command{
		Use:   "play",
		Short: "Open the window and play (default)",
		RunE: func(*cobra.Command, []string) error {
			return play(opts)
		},
	})
	root.AddCommand(newSimulateCmd(opts))
	return root
}

// loadGame reads the config, falling back to defaults with a logged warning when the file is bad.
func loadGame(opts *options, log *logger.Logger) (*game.Game, engineconfig.EnginePrefs) {
	cfg, err := engineconfig.Load(opts.configPath)
	if err != nil {
		log.Logf("config: %v; using defaults", err)
	}
	return game.New(cfg, log, opts.seed), cfg
}

func play(opts *options) error {
	log := logger.New(opts.logPath)
	g, cfg := loadGame(opts, log)
	if err := g.Setup(); err != nil {
		return err
	}

	term := terminal.New(log, g.Commands())
	scn := scene.New()
	scn.SetGridVisible(cfg.GridVisible)
	dbg := debug.New()
	dbg.ShowFPS = cfg.ShowFPS
	dbg.ShowMemAlloc = cfg.ShowMemAlloc
	dbg.ShowStats = cfg.ShowStats

	update := func(dt float32) {
		term.Update()
		if !term.IsOpen() {
			scn.Update()
			g.SetAim(scn.Aim())
			handleKeys(g, log)
		}
		g.Step(dt)
	}
	draw := func() {
		scn.Draw(g)
		term.Draw()
		dbg.Draw(g.Stats)
	}
	graphics.Run(graphics.Window{Width: 1280, Height: 720, Title: "crystal-engine", TargetFPS: 60}, update, draw)
	return nil
}

// handleKeys maps the game keys: left click or space shoots, B drops a box, P pauses.
func handleKeys(g *game.Game, log *logger.Logger) {
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) || rl.IsKeyPressed(rl.KeySpace) {
		if _, err := g.ShootBullet(g.Aim()); err != nil {
			log.Log(err.Error())
		}
	}
	if rl.IsKeyPressed(rl.KeyB) {
		if _, err := g.SpawnBox(game.Vector3{Y: 6}, game.BoxSpec{}); err != nil {
			log.Log(err.Error())
		}
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.TogglePause()
	}
}

func newSimulateCmd(opts *options) *cobra.Command {
	var (
		frames int
		dt     float32
		every  int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the starting scene headless and print the box trajectories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if frames <= 0 || dt <= 0 || every <= 0 {
				return errors.New("frames, dt and every must be positive")
			}
			log := logger.Discard()
			g, _ := loadGame(opts, log)
			if err := g.Setup(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for frame := 1; frame <= frames; frame++ {
				g.Step(dt)
				if frame%every == 0 || frame == frames {
					report(g, frame, log)
				}
			}
			for _, line := range log.Lines() {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 300, "number of frames to simulate")
	cmd.Flags().Float32Var(&dt, "dt", 1.0/60, "frame time in seconds")
	cmd.Flags().IntVar(&every, "every", 30, "report every N frames")
	return cmd
}

func report(g *game.Game, frame int, log *logger.Logger) {
	for _, b := range g.World.Bodies() {
		if b.Tag == game.GroundTag {
			continue
		}
		p, v := b.Position(), b.Velocity()
		log.Logf("frame %d %s %d pos (%.3f, %.3f, %.3f) vel (%.3f, %.3f, %.3f) awake %t",
			frame, b.Tag, b.ID(), p.X, p.Y, p.Z, v.X, v.Y, v.Z, b.Awake())
	}
	s := g.Stats()
	log.Logf("frame %d contacts %d compactions %d", frame, s.Contacts, s.Compactions)
}
