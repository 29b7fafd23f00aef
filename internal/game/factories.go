package game

import (
	"crystal-engine/internal/particles"
	"crystal-engine/internal/physics"
	"crystal-engine/internal/vecmath"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// Body tags used by the collision callbacks.
const (
	GroundTag = "Ground"
	BoxTag    = "Box"
	BulletTag = "Bullet"
)

const (
	bulletHalfSize = 0.1
	bulletSpeed    = 3
	bulletGravity  = -1
)

// SleepMode chooses whether a box may fall asleep. The zero value takes the game's default.
type SleepMode int

const (
	SleepDefault SleepMode = iota
	SleepAllowed
	SleepNever
)

// BoxSpec describes a box to spawn. Zero fields take the game's defaults; Sleep and Weightless
// express the overrides a zero value cannot.
type BoxSpec struct {
	HalfSize Vector3
	// Density times the product of the half sizes gives the mass.
	Density        Real
	LinearDamping  Real
	AngularDamping Real
	Acceleration   Vector3
	Velocity       Vector3
	Rotation       Vector3
	Sleep          SleepMode
	// Weightless drops the acceleration, including the default gravity, and keeps the box out of
	// later gravity changes.
	Weightless bool
	Tag        string
}

// DefaultBox is a unit-density half-metre cube falling under gravity that may go to sleep.
func DefaultBox(gravity Real) BoxSpec {
	return BoxSpec{
		HalfSize:       vecmath.V3(0.5, 0.5, 0.5),
		Density:        1,
		LinearDamping:  0.98,
		AngularDamping: 0.8,
		Acceleration:   vecmath.V3(0, gravity, 0),
		Sleep:          SleepAllowed,
		Tag:            BoxTag,
	}
}

// resolve fills the zero fields of spec from the game's defaults.
func (g *Game) resolve(spec BoxSpec) (BoxSpec, error) {
	merged := g.boxDefaults
	if err := copier.CopyWithOption(&merged, &spec, copier.Option{IgnoreEmpty: true}); err != nil {
		return BoxSpec{}, errors.Wrap(err, "merge box spec")
	}
	if merged.Weightless {
		merged.Acceleration = Vector3{}
	}
	return merged, nil
}

// SpawnGround adds the immovable ground plane y = 0.
func (g *Game) SpawnGround() (*physics.RigidBody, error) {
	body := physics.NewStaticBody(Vector3{})
	body.Tag = GroundTag
	if err := g.World.AddRigidBody(body, physics.NewPlane(body, vecmath.Up, 0)); err != nil {
		return nil, err
	}
	return body, nil
}

// SpawnBox adds a box at position. A box hit by a bullet is deleted and explodes.
func (g *Game) SpawnBox(position Vector3, spec BoxSpec) (*physics.RigidBody, error) {
	spec, err := g.resolve(spec)
	if err != nil {
		return nil, err
	}
	body, err := g.newBox(position, spec)
	if err != nil {
		return nil, err
	}
	if err := g.World.AddCallback(body, g.onBoxHit); err != nil {
		return nil, err
	}
	g.log.Logf("spawned %s %d at (%.2f, %.2f, %.2f)", spec.Tag, body.ID(), position.X, position.Y, position.Z)
	return body, nil
}

// ShootBullet fires a small box from origin along direction. Bullets are deleted on their first contact.
func (g *Game) ShootBullet(origin, direction Vector3) (*physics.RigidBody, error) {
	if direction.IsZero() {
		return nil, errors.Wrap(physics.ErrInvalidArgument, "shoot: zero direction")
	}
	spec := BoxSpec{
		HalfSize:     vecmath.V3(bulletHalfSize, bulletHalfSize, bulletHalfSize),
		Acceleration: vecmath.V3(0, bulletGravity, 0),
		Velocity:     direction.Normalized().Scale(bulletSpeed),
		Sleep:        SleepNever,
		Tag:          BulletTag,
	}
	spec, err := g.resolve(spec)
	if err != nil {
		return nil, err
	}
	body, err := g.newBox(origin, spec)
	if err != nil {
		return nil, err
	}
	if err := g.World.AddCallback(body, g.onBulletHit); err != nil {
		return nil, err
	}
	return body, nil
}

// Explode starts an explosion at position and returns it.
func (g *Game) Explode(position Vector3) *particles.Explosion {
	e := particles.NewExplosion(g.Particles, g.rng, g.explosion)
	e.Init(position)
	e.Play()
	g.log.Logf("explosion at (%.2f, %.2f, %.2f)", position.X, position.Y, position.Z)
	return e
}

func (g *Game) newBox(position Vector3, spec BoxSpec) (*physics.RigidBody, error) {
	half := spec.HalfSize
	if half.X <= 0 || half.Y <= 0 || half.Z <= 0 {
		return nil, errors.Wrapf(physics.ErrInvalidArgument, "box half size %v", half)
	}
	mass := spec.Density * half.X * half.Y * half.Z

	body := physics.NewRigidBody()
	body.Tag = spec.Tag
	body.SetPosition(position)
	body.SetVelocity(spec.Velocity)
	body.SetRotation(spec.Rotation)
	body.SetAcceleration(spec.Acceleration)
	body.SetDamping(spec.LinearDamping, spec.AngularDamping)
	if err := body.SetMass(mass); err != nil {
		return nil, err
	}
	if err := body.SetInertiaTensor(vecmath.BlockInertiaTensor3(half, mass)); err != nil {
		return nil, err
	}
	body.SetCanSleep(spec.Sleep != SleepNever)
	body.CalculateDerivedData()

	if err := g.World.AddRigidBody(body, physics.NewBox(body, half)); err != nil {
		return nil, err
	}
	if spec.Weightless {
		g.weightless[body.ID()] = struct{}{}
	}
	return body, nil
}

func (g *Game) onBoxHit(w *physics.World, self, other physics.Collider) {
	bullet := other.Body()
	if bullet == nil || bullet.Tag != BulletTag {
		return
	}
	if !w.DeleteBody(self.Body()) {
		return
	}
	delete(g.weightless, self.Body().ID())
	g.Explode(bullet.Position())
}

func (g *Game) onBulletHit(w *physics.World, self, _ physics.Collider) {
	w.DeleteBody(self.Body())
}
