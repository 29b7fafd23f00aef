package game

import (
	"crystal-engine/internal/commands"
	"crystal-engine/internal/mapgen"
	"crystal-engine/internal/vecmath"

	"github.com/spf13/pflag"
)

// vectorFlags binds --<prefix>x, --<prefix>y and --<prefix>z to v.
func vectorFlags(fs *pflag.FlagSet, prefix string, v *Vector3, def Vector3, what string) {
	fs.Float32Var(&v.X, prefix+"x", def.X, what+" x")
	fs.Float32Var(&v.Y, prefix+"y", def.Y, what+" y")
	fs.Float32Var(&v.Z, prefix+"z", def.Z, what+" z")
}

func changed(fs *pflag.FlagSet, prefix string) bool {
	return fs.Changed(prefix+"x") || fs.Changed(prefix+"y") || fs.Changed(prefix+"z")
}

// registerCommands adds the console commands:
//
//	cmd spawn [--x --y --z] [--hx --hy --hz] [--vx --vy --vz] [--no-sleep] [--weightless]
//	cmd shoot [--x --y --z] [--dx --dy --dz]
//	cmd explode [--x --y --z]
//	cmd gravity [--y]
//	cmd terrain [--width --depth --height --seed]
//	cmd pause
//	cmd stats
func (g *Game) registerCommands() {
	var pos, half, vel Vector3
	spawn := commands.NewFlagSet("spawn")
	vectorFlags(spawn, "", &pos, vecmath.V3(0, 5, 0), "position")
	vectorFlags(spawn, "h", &half, Vector3{}, "half size")
	vectorFlags(spawn, "v", &vel, Vector3{}, "velocity")
	noSleep := spawn.Bool("no-sleep", false, "keep the box awake")
	weightless := spawn.Bool("weightless", false, "spawn without gravity")
	g.reg.Register("spawn", spawn, func([]string) error {
		spec := BoxSpec{HalfSize: half, Velocity: vel, Weightless: *weightless}
		if *noSleep {
			spec.Sleep = SleepNever
		}
		_, err := g.SpawnBox(pos, spec)
		return err
	})

	var origin, dir Vector3
	shoot := commands.NewFlagSet("shoot")
	vectorFlags(shoot, "", &origin, Vector3{}, "origin")
	vectorFlags(shoot, "d", &dir, Vector3{}, "direction")
	g.reg.Register("shoot", shoot, func([]string) error {
		aimOrigin, aimDir := g.Aim()
		if !changed(shoot, "") {
			origin = aimOrigin
		}
		if !changed(shoot, "d") {
			dir = aimDir
		}
		body, err := g.ShootBullet(origin, dir)
		if err == nil {
			g.log.Logf("bullet %d fired", body.ID())
		}
		return err
	})

	var at Vector3
	explode := commands.NewFlagSet("explode")
	vectorFlags(explode, "", &at, Vector3{}, "position")
	g.reg.Register("explode", explode, func([]string) error {
		g.Explode(at)
		return nil
	})

	gravity := commands.NewFlagSet("gravity")
	gy := gravity.Float32("y", -9.81, "vertical acceleration of boxes")
	g.reg.Register("gravity", gravity, func([]string) error {
		g.SetGravity(*gy)
		return nil
	})

	terrainOpts := mapgen.DefaultHeightMapOptions()
	terrain := commands.NewFlagSet("terrain")
	width := terrain.Int("width", terrainOpts.Width, "tiles along x")
	depth := terrain.Int("depth", terrainOpts.Depth, "tiles along z")
	height := terrain.Float32("height", terrainOpts.HeightScale, "tallest block")
	seed := terrain.Int64("seed", terrainOpts.Seed, "noise seed")
	g.reg.Register("terrain", terrain, func([]string) error {
		opts := terrainOpts
		opts.Width, opts.Depth, opts.HeightScale, opts.Seed = *width, *depth, *height, *seed
		_, err := g.SpawnTerrain(opts)
		return err
	})

	g.reg.Register("pause", nil, func([]string) error {
		g.TogglePause()
		if g.paused {
			g.log.Log("paused")
		} else {
			g.log.Log("resumed")
		}
		return nil
	})

	g.reg.Register("stats", nil, func([]string) error {
		s := g.Stats()
		g.log.Logf("bodies %d (active %d), colliders %d, contacts %d, iterations %d, effects %d, particles %d",
			s.Bodies, s.Active, s.Colliders, s.Contacts, s.Iterations, s.Effects, s.Particles)
		return nil
	})
}

// SetGravity changes the vertical acceleration of every live box and of boxes spawned later. Bullets and
// weightless boxes keep their own.
func (g *Game) SetGravity(y Real) {
	g.boxDefaults.Acceleration = vecmath.V3(0, y, 0)
	for _, b := range g.World.Bodies() {
		if b.Tag != BoxTag {
			continue
		}
		if _, ok := g.weightless[b.ID()]; ok {
			continue
		}
		b.SetAcceleration(g.boxDefaults.Acceleration)
		b.SetAwake(true)
	}
	g.log.Logf("gravity set to %.2f", y)
}
