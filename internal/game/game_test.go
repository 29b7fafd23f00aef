package game

import (
	"strings"
	"testing"

	"crystal-engine/internal/commands"
	"crystal-engine/internal/engineconfig"
	"crystal-engine/internal/physics"
	"crystal-engine/internal/vecmath"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, edit func(*engineconfig.EnginePrefs)) *Game {
	t.Helper()
	cfg := engineconfig.Default()
	if edit != nil {
		edit(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return New(cfg, nil, 7)
}

func run(t *testing.T, g *Game, line string) {
	t.Helper()
	args, ok := commands.Parse(line)
	require.True(t, ok)
	require.NoError(t, g.Commands().Execute(args))
}

func TestSetupBuildsScene(t *testing.T) {
	g := newGame(t, nil)
	require.NoError(t, g.Setup())

	s := g.Stats()
	assert.Equal(t, 3, s.Bodies)
	assert.Equal(t, 3, s.Colliders)

	bodies := g.World.Bodies()
	assert.Equal(t, GroundTag, bodies[0].Tag)
	assert.False(t, bodies[0].HasFiniteMass())
	assert.Equal(t, vecmath.V3(0, 5, 0), bodies[1].Position())
	assert.Equal(t, vecmath.V3(2, 0, -1), bodies[2].Velocity())
}

func TestSpawnBoxFillsDefaults(t *testing.T) {
	g := newGame(t, nil)
	b, err := g.SpawnBox(vecmath.V3(1, 2, 3), BoxSpec{HalfSize: vecmath.V3(1, 2, 1)})
	require.NoError(t, err)

	assert.Equal(t, BoxTag, b.Tag)
	assert.InDelta(t, 2, b.Mass(), 1e-5)
	assert.InDelta(t, 0.98, b.LinearDamping(), 1e-6)
	assert.InDelta(t, 0.8, b.AngularDamping(), 1e-6)
	assert.Equal(t, vecmath.V3(0, -9.81, 0), b.Acceleration())
	assert.True(t, b.CanSleep())
	assert.IsType(t, &physics.Box{}, g.World.AttachedCollider(b))

	_, err = g.SpawnBox(Vector3{}, BoxSpec{HalfSize: vecmath.V3(-1, 1, 1)})
	assert.True(t, errors.Is(err, physics.ErrInvalidArgument))
}

func TestSpawnBoxOverrides(t *testing.T) {
	g := newGame(t, nil)
	awake, err := g.SpawnBox(Vector3{}, BoxSpec{Sleep: SleepNever})
	require.NoError(t, err)
	assert.False(t, awake.CanSleep())

	floating, err := g.SpawnBox(vecmath.V3(3, 0, 0), BoxSpec{Weightless: true})
	require.NoError(t, err)
	assert.True(t, floating.Acceleration().IsZero())
	assert.True(t, floating.CanSleep())

	plain, err := g.SpawnBox(vecmath.V3(6, 0, 0), BoxSpec{})
	require.NoError(t, err)

	g.SetGravity(-5)
	assert.True(t, floating.Acceleration().IsZero(), "weightless boxes ignore gravity changes")
	assert.Equal(t, vecmath.V3(0, -5, 0), plain.Acceleration())
	assert.Equal(t, vecmath.V3(0, -5, 0), awake.Acceleration())

	bullet, err := g.ShootBullet(Vector3{}, vecmath.V3(1, 0, 0))
	require.NoError(t, err)
	assert.False(t, bullet.CanSleep())

	run(t, g, "cmd spawn --y 9 --no-sleep --weightless")
	last := g.World.Bodies()[len(g.World.Bodies())-1]
	assert.Equal(t, vecmath.V3(0, 9, 0), last.Position())
	assert.False(t, last.CanSleep())
	assert.True(t, last.Acceleration().IsZero())

	run(t, g, "cmd spawn --y 9")
	last = g.World.Bodies()[len(g.World.Bodies())-1]
	assert.True(t, last.CanSleep(), "flags reset between invocations")
	assert.Equal(t, vecmath.V3(0, -5, 0), last.Acceleration())
}

func TestShootBulletRejectsZeroDirection(t *testing.T) {
	g := newGame(t, nil)
	_, err := g.ShootBullet(Vector3{}, Vector3{})
	assert.True(t, errors.Is(err, physics.ErrInvalidArgument))

	b, err := g.ShootBullet(Vector3{}, vecmath.V3(0, 0, -2))
	require.NoError(t, err)
	assert.Equal(t, BulletTag, b.Tag)
	assert.Equal(t, vecmath.V3(0, 0, -3), b.Velocity())
	assert.Equal(t, vecmath.V3(0, -1, 0), b.Acceleration())
}

func TestBulletHitExplodesBox(t *testing.T) {
	g := newGame(t, func(c *engineconfig.EnginePrefs) { c.FixedStep = 0 })
	_, err := g.SpawnBox(Vector3{}, BoxSpec{HalfSize: vecmath.V3(1, 1, 1)})
	require.NoError(t, err)
	_, err = g.ShootBullet(vecmath.V3(0.5, 0, 0), vecmath.V3(1, 0, 0))
	require.NoError(t, err)

	require.Equal(t, 1, g.Step(1.0/60))

	assert.Equal(t, 0, g.World.ActiveBodyCount(), "box and bullet are both deleted")
	require.Len(t, g.Particles.Effects(), 1)
	s := g.Stats()
	assert.Equal(t, 1, s.Effects)
	assert.Equal(t, particlesPerExplosion, s.Particles)
}

const particlesPerExplosion = 20

func TestBoxesAloneDoNotExplode(t *testing.T) {
	g := newGame(t, nil)
	_, err := g.SpawnBox(Vector3{}, BoxSpec{})
	require.NoError(t, err)
	_, err = g.SpawnBox(vecmath.V3(0.5, 0, 0), BoxSpec{})
	require.NoError(t, err)

	g.Step(1.0 / 60)
	assert.Equal(t, 2, g.World.ActiveBodyCount())
	assert.Empty(t, g.Particles.Effects())
}

func TestStepAccumulatesFixedSteps(t *testing.T) {
	g := newGame(t, func(c *engineconfig.EnginePrefs) {
		c.FixedStep = 0.01
		c.MaxFrameDuration = 0.05
	})
	assert.Equal(t, 3, g.Step(0.035))
	assert.Equal(t, 5, g.Step(1), "long frames are clamped")
	assert.Equal(t, 0, g.Step(0))

	g.Pause()
	assert.Equal(t, 0, g.Step(0.02))
	g.Resume()
	assert.Equal(t, 2, g.Step(0.02))
}

func TestBoxComesToRestOnGround(t *testing.T) {
	g := newGame(t, nil)
	_, err := g.SpawnGround()
	require.NoError(t, err)
	box, err := g.SpawnBox(vecmath.V3(0, 2, 0), BoxSpec{})
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		g.Step(1.0 / 60)
	}
	assert.InDelta(t, 0.5, box.Position().Y, 0.1)
	assert.Less(t, box.Velocity().Magnitude(), Real(0.2))
}

func TestConsoleCommands(t *testing.T) {
	g := newGame(t, nil)

	run(t, g, "cmd spawn --x 3 --y 2 --hx 1 --hy 1 --hz 1")
	bodies := g.World.Bodies()
	require.Len(t, bodies, 1)
	box := bodies[0]
	assert.Equal(t, vecmath.V3(3, 2, 0), box.Position())

	run(t, g, "cmd gravity --y -1")
	assert.Equal(t, vecmath.V3(0, -1, 0), box.Acceleration())

	g.SetAim(vecmath.V3(0, 1, 9), vecmath.V3(0, 0, -5))
	run(t, g, "cmd shoot")
	bodies = g.World.Bodies()
	require.Len(t, bodies, 2)
	bullet := bodies[1]
	assert.Equal(t, vecmath.V3(0, 1, 9), bullet.Position())
	assert.Equal(t, vecmath.V3(0, -1, 0), bullet.Acceleration(), "bullets keep their own gravity")

	run(t, g, "cmd explode --y 3")
	assert.Len(t, g.Particles.Effects(), 1)

	run(t, g, "cmd pause")
	assert.True(t, g.Paused())

	run(t, g, "cmd stats")
	lines := g.Logger().Lines()
	assert.True(t, strings.Contains(lines[len(lines)-1], "bodies 2 (active 2)"), lines[len(lines)-1])
}

func TestTerrainCatchesFallingBox(t *testing.T) {
	g := newGame(t, nil)
	_, err := g.SpawnGround()
	require.NoError(t, err)
	run(t, g, "cmd terrain --width 3 --depth 3 --height 1 --seed 4")
	require.Equal(t, 10, g.World.BodyCount())

	var top Real
	for _, b := range g.World.Bodies() {
		if b.Tag != TerrainTag {
			continue
		}
		assert.False(t, b.HasFiniteMass())
		if b.Position().X == 0 && b.Position().Z == 0 {
			top = 2 * b.Position().Y
		}
	}
	require.Greater(t, top, Real(0))

	box, err := g.SpawnBox(vecmath.V3(0, top+1, 0), BoxSpec{HalfSize: vecmath.V3(0.3, 0.3, 0.3)})
	require.NoError(t, err)
	for i := 0; i < 120; i++ {
		g.Step(1.0 / 60)
	}
	assert.Greater(t, box.Position().Y, top, "the box lands on the centre block")
}
