package physics

import "crystal-engine/internal/vecmath"

// ForceGenerator adds forces to a body once per step.
// Implementations must be comparable (pointer types) so registrations can be removed by identity.
type ForceGenerator interface {
	UpdateForce(body *RigidBody, duration Real)
}

type forceRegistration struct {
	body *RigidBody
	gen  ForceGenerator
}

// ForceRegistry holds (body, generator) pairs. It does not own either side.
type ForceRegistry struct {
	registrations []forceRegistration
}

// Add registers gen to act on body. Duplicate registrations are kept and applied once each.
func (r *ForceRegistry) Add(body *RigidBody, gen ForceGenerator) {
	r.registrations = append(r.registrations, forceRegistration{body, gen})
}

// Remove drops the first registration matching both body and gen. It reports whether one was found.
func (r *ForceRegistry) Remove(body *RigidBody, gen ForceGenerator) bool {
	for i, reg := range r.registrations {
		if reg.body == body && reg.gen == gen {
			r.registrations = append(r.registrations[:i], r.registrations[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveBody drops every registration targeting body.
func (r *ForceRegistry) RemoveBody(body *RigidBody) int {
	kept := r.registrations[:0]
	for _, reg := range r.registrations {
		if reg.body != body {
			kept = append(kept, reg)
		}
	}
	removed := len(r.registrations) - len(kept)
	clear(r.registrations[len(kept):])
	r.registrations = kept
	return removed
}

// Clear removes all registrations.
func (r *ForceRegistry) Clear() {
	r.registrations = nil
}

func (r *ForceRegistry) Len() int {
	return len(r.registrations)
}

// UpdateForces calls every generator for its body, in registration order. Inactive bodies are skipped.
func (r *ForceRegistry) UpdateForces(duration Real) {
	for _, reg := range r.registrations {
		if !reg.body.Active() {
			continue
		}
		reg.gen.UpdateForce(reg.body, duration)
	}
}

// Gravity applies mass-scaled gravity to finite-mass bodies.
type Gravity struct {
	Gravity Vector3
}

func NewGravity(g Vector3) *Gravity {
	return &Gravity{Gravity: g}
}

func (g *Gravity) UpdateForce(body *RigidBody, _ Real) {
	// A resting body is held by its contacts; gravity alone does not wake it.
	if !body.HasFiniteMass() || !body.Awake() {
		return
	}
	body.AddForce(g.Gravity.Scale(body.Mass()))
}

// ConstantForce applies the same force through the centre of mass every step.
type ConstantForce struct {
	Force Vector3
}

func NewConstantForce(f Vector3) *ConstantForce {
	return &ConstantForce{Force: f}
}

func (c *ConstantForce) UpdateForce(body *RigidBody, _ Real) {
	if !body.HasFiniteMass() {
		return
	}
	body.AddForce(c.Force)
}

// Spring connects a point on the body to a point on Other with a Hooke's law spring.
// Connection points are in each body's local space.
type Spring struct {
	ConnectionPoint      Vector3
	Other                *RigidBody
	OtherConnectionPoint Vector3
	SpringConstant       Real
	RestLength           Real
}

func (s *Spring) UpdateForce(body *RigidBody, _ Real) {
	lws := body.PointInWorldSpace(s.ConnectionPoint)
	ows := s.Other.PointInWorldSpace(s.OtherConnectionPoint)
	applySpring(body, lws, ows, s.SpringConstant, s.RestLength, false)
}

// AnchoredSpring connects a point on the body to a fixed world-space anchor.
type AnchoredSpring struct {
	ConnectionPoint Vector3
	Anchor          Vector3
	SpringConstant  Real
	RestLength      Real
}

func (s *AnchoredSpring) UpdateForce(body *RigidBody, _ Real) {
	lws := body.PointInWorldSpace(s.ConnectionPoint)
	applySpring(body, lws, s.Anchor, s.SpringConstant, s.RestLength, false)
}

// Bungee is a spring that only pulls: no force while the connection is shorter than RestLength.
type Bungee struct {
	ConnectionPoint      Vector3
	Other                *RigidBody
	OtherConnectionPoint Vector3
	SpringConstant       Real
	RestLength           Real
}

func (s *Bungee) UpdateForce(body *RigidBody, _ Real) {
	lws := body.PointInWorldSpace(s.ConnectionPoint)
	ows := s.Other.PointInWorldSpace(s.OtherConnectionPoint)
	applySpring(body, lws, ows, s.SpringConstant, s.RestLength, true)
}

// applySpring adds -k(|d| - rest)·d̂ at point, where d = point - other.
func applySpring(body *RigidBody, point, other Vector3, k, rest Real, pullOnly bool) {
	d := point.Sub(other)
	length := d.Magnitude()
	if length == 0 {
		return
	}
	extension := length - rest
	if pullOnly && extension <= 0 {
		return
	}
	body.AddForceAtPoint(d.Scale(-k*extension/length), point)
}

// Aero applies an aerodynamic force from a body-space tensor, given the air velocity relative to the body.
type Aero struct {
	Tensor   Matrix3
	Position Vector3
	// Windspeed is read every step; nil means still air.
	Windspeed *Vector3
}

func NewAero(tensor Matrix3, position Vector3, windspeed *Vector3) *Aero {
	return &Aero{Tensor: tensor, Position: position, Windspeed: windspeed}
}

func (a *Aero) UpdateForce(body *RigidBody, _ Real) {
	a.updateForceFromTensor(body, a.Tensor)
}

func (a *Aero) updateForceFromTensor(body *RigidBody, tensor Matrix3) {
	velocity := body.Velocity()
	if a.Windspeed != nil {
		velocity = velocity.Add(*a.Windspeed)
	}
	bodyVel := body.DirectionInLocalSpace(velocity)
	bodyForce := tensor.Transform(bodyVel)
	force := body.DirectionInWorldSpace(bodyForce)
	body.AddForceAtBodyPoint(force, a.Position)
}

// AeroControl is an aerodynamic surface whose tensor blends between Min, the base tensor and Max
// according to a control setting in [-1, 1].
type AeroControl struct {
	Aero
	Max     Matrix3
	Min     Matrix3
	control Real
}

func NewAeroControl(base, min, max Matrix3, position Vector3, windspeed *Vector3) *AeroControl {
	return &AeroControl{
		Aero: Aero{Tensor: base, Position: position, Windspeed: windspeed},
		Max:  max,
		Min:  min,
	}
}

// SetControl sets the control surface deflection, clamped to [-1, 1].
func (a *AeroControl) SetControl(value Real) {
	a.control = min(max(value, -1), 1)
}

func (a *AeroControl) Control() Real {
	return a.control
}

// CurrentTensor returns the tensor for the current control setting.
func (a *AeroControl) CurrentTensor() Matrix3 {
	switch {
	case a.control <= -1:
		return a.Min
	case a.control >= 1:
		return a.Max
	case a.control < 0:
		return vecmath.LinearInterpolate(a.Min, a.Tensor, a.control+1)
	case a.control > 0:
		return vecmath.LinearInterpolate(a.Tensor, a.Max, a.control)
	}
	return a.Tensor
}

func (a *AeroControl) UpdateForce(body *RigidBody, _ Real) {
	a.updateForceFromTensor(body, a.CurrentTensor())
}

// Buoyancy applies an upward force at CentreOfBuoyancy proportional to how much of the body lies below
// WaterHeight. MaxDepth is the depth at which the body is fully submerged.
type Buoyancy struct {
	CentreOfBuoyancy Vector3
	MaxDepth         Real
	Volume           Real
	WaterHeight      Real
	LiquidDensity    Real
}

func NewBuoyancy(cOfB Vector3, maxDepth, volume, waterHeight, liquidDensity Real) *Buoyancy {
	if liquidDensity == 0 {
		liquidDensity = 1000
	}
	return &Buoyancy{
		CentreOfBuoyancy: cOfB,
		MaxDepth:         maxDepth,
		Volume:           volume,
		WaterHeight:      waterHeight,
		LiquidDensity:    liquidDensity,
	}
}

func (b *Buoyancy) UpdateForce(body *RigidBody, _ Real) {
	depth := body.PointInWorldSpace(b.CentreOfBuoyancy).Y
	if depth >= b.WaterHeight+b.MaxDepth {
		return
	}

	var force Vector3
	if depth <= b.WaterHeight-b.MaxDepth {
		force.Y = b.LiquidDensity * b.Volume
	} else {
		force.Y = b.LiquidDensity * b.Volume * (b.WaterHeight + b.MaxDepth - depth) / (2 * b.MaxDepth)
	}
	body.AddForceAtBodyPoint(force, b.CentreOfBuoyancy)
}

// Drag opposes velocity with k1·|v| + k2·|v|².
type Drag struct {
	K1, K2 Real
}

func NewDrag(k1, k2 Real) *Drag {
	return &Drag{K1: k1, K2: k2}
}

func (d *Drag) UpdateForce(body *RigidBody, _ Real) {
	v := body.Velocity()
	speed := v.Magnitude()
	if speed == 0 {
		return
	}
	coeff := d.K1*speed + d.K2*speed*speed
	body.AddForce(v.Scale(-coeff / speed))
}
