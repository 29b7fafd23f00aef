package physics

import (
	"crystal-engine/internal/logger"

	"github.com/pkg/errors"
)

// CollisionCallback is called when the watched collider (self) generates contacts with other.
// Callbacks may add or delete bodies; deletions take effect immediately for pair generation and
// the lists are compacted on a later frame.
type CollisionCallback func(w *World, self, other Collider)

type callbackEntry struct {
	collider ColliderID
	fn       CollisionCallback
}

// Stats is a snapshot of the world's bookkeeping.
type Stats struct {
	Bodies      int
	Active      int
	Colliders   int
	Contacts    int
	Iterations  int
	Compactions int
}

// World owns rigid bodies and their colliders, generates contacts between colliders, resolves them
// and dispatches collision callbacks.
type World struct {
	bodies    []*RigidBody
	colliders []Collider
	callbacks []callbackEntry

	// Body and collider association by id.
	bodyByID      map[BodyID]*RigidBody
	colliderByID  map[ColliderID]Collider
	colliderOf    map[BodyID]ColliderID
	ownerOf       map[ColliderID]BodyID
	activeBodies  int
	compactions   int
	lastContacts  int
	saturatedLast bool

	forces   ForceRegistry
	resolver *ContactResolver
	data     *CollisionData

	maxContacts         int
	iterations          int
	calculateIterations bool
	collectGap          int
	sleepEpsilon        Real

	log *logger.Logger
}

// Option configures a World.
type Option func(*World)

// WithMaxContacts sets the per-frame contact capacity (default 20).
func WithMaxContacts(n int) Option {
	return func(w *World) { w.maxContacts = n }
}

// WithIterations fixes the resolver iterations. 0 (the default) means four per contact, every frame.
func WithIterations(n int) Option {
	return func(w *World) { w.iterations = n }
}

// WithCollectGap sets how many deleted bodies may accumulate before the lists are compacted (default 2).
func WithCollectGap(n int) Option {
	return func(w *World) { w.collectGap = n }
}

// WithContactDefaults sets the friction and restitution given to every new contact, and the frame tolerance.
func WithContactDefaults(friction, restitution, tolerance Real) Option {
	return func(w *World) {
		w.data.Friction = friction
		w.data.Restitution = restitution
		w.data.Tolerance = tolerance
	}
}

// WithSleepEpsilon sets the sleep threshold given to bodies as they are added.
func WithSleepEpsilon(eps Real) Option {
	return func(w *World) { w.sleepEpsilon = eps }
}

// WithLogger makes the world log compaction passes and contact buffer saturation.
func WithLogger(l *logger.Logger) Option {
	return func(w *World) { w.log = l }
}

// NewWorld returns an empty world.
func NewWorld(opts ...Option) *World {
	w := &World{
		bodyByID:     make(map[BodyID]*RigidBody),
		colliderByID: make(map[ColliderID]Collider),
		colliderOf:   make(map[BodyID]ColliderID),
		ownerOf:      make(map[ColliderID]BodyID),
		data: &CollisionData{
			Friction:    0.9,
			Restitution: 0.2,
			Tolerance:   0.1,
		},
		maxContacts:  20,
		collectGap:   2,
		sleepEpsilon: DefaultSleepEpsilon,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.maxContacts < 1 {
		w.maxContacts = 1
	}
	w.data.Reset(w.maxContacts)
	w.calculateIterations = w.iterations <= 0
	w.resolver = NewContactResolver(w.iterations)
	return w
}

// ForceRegistry returns the registry applied at the start of every RunPhysics.
func (w *World) ForceRegistry() *ForceRegistry {
	return &w.forces
}

// Resolver exposes the contact resolver, e.g. to tune its epsilons.
func (w *World) Resolver() *ContactResolver {
	return w.resolver
}

// AddRigidBody adds body, and collider if non-nil, and records their association. The collider is
// attached to body. Adding a body twice is an error.
func (w *World) AddRigidBody(body *RigidBody, collider Collider) error {
	if body == nil {
		return errors.Wrap(ErrInvalidArgument, "add rigid body: nil body")
	}
	if _, ok := w.bodyByID[body.id]; ok {
		return errors.Wrapf(ErrInvalidArgument, "add rigid body: body %d already in world", body.id)
	}
	if collider != nil {
		if _, ok := w.colliderByID[collider.ID()]; ok {
			return errors.Wrapf(ErrInvalidArgument, "add rigid body: collider %d already in world", collider.ID())
		}
	}

	body.active = true
	body.sleepEpsilon = w.sleepEpsilon
	if body.awake {
		body.motion = 2 * w.sleepEpsilon
	}
	w.bodies = append(w.bodies, body)
	w.bodyByID[body.id] = body
	w.activeBodies++

	if collider != nil {
		p := collider.primitive()
		p.body = body
		p.active = true
		collider.CalculateInternals()
		w.colliders = append(w.colliders, collider)
		w.colliderByID[p.id] = collider
		w.colliderOf[body.id] = p.id
		w.ownerOf[p.id] = body.id
	}
	return nil
}

// DeleteBody marks body and its collider inactive. Storage is reclaimed by a later compaction.
// It reports false if the body is not a live member of this world.
func (w *World) DeleteBody(body *RigidBody) bool {
	if body == nil || !body.active {
		return false
	}
	if _, ok := w.bodyByID[body.id]; !ok {
		return false
	}
	body.active = false
	w.activeBodies--
	if c := w.AttachedCollider(body); c != nil {
		c.primitive().active = false
	}
	return true
}

// AddCallback watches body's collider; fn is called with that collider as self whenever it
// generates contacts. The body must have a collider in this world.
func (w *World) AddCallback(body *RigidBody, fn CollisionCallback) error {
	if body == nil || fn == nil {
		return errors.Wrap(ErrInvalidArgument, "add callback: nil body or callback")
	}
	id, ok := w.colliderOf[body.id]
	if !ok {
		return errors.Wrapf(ErrInvalidArgument, "add callback: body %d has no collider in world", body.id)
	}
	w.callbacks = append(w.callbacks, callbackEntry{collider: id, fn: fn})
	return nil
}

// Body resolves an id handle. It returns false once the body has been deleted.
func (w *World) Body(id BodyID) (*RigidBody, bool) {
	b, ok := w.bodyByID[id]
	if !ok || !b.active {
		return nil, false
	}
	return b, true
}

// Collider resolves an id handle. It returns false once the collider has been deleted.
func (w *World) Collider(id ColliderID) (Collider, bool) {
	c, ok := w.colliderByID[id]
	if !ok || !c.Active() {
		return nil, false
	}
	return c, true
}

// AttachedCollider returns body's collider, or nil.
func (w *World) AttachedCollider(body *RigidBody) Collider {
	id, ok := w.colliderOf[body.id]
	if !ok {
		return nil
	}
	return w.colliderByID[id]
}

// Bodies returns the active bodies in insertion order.
func (w *World) Bodies() []*RigidBody {
	out := make([]*RigidBody, 0, w.activeBodies)
	for _, b := range w.bodies {
		if b.active {
			out = append(out, b)
		}
	}
	return out
}

// Colliders returns the active colliders in insertion order.
func (w *World) Colliders() []Collider {
	out := make([]Collider, 0, len(w.colliders))
	for _, c := range w.colliders {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out
}

// BodyCount includes deleted bodies that have not been compacted yet.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

func (w *World) ActiveBodyCount() int {
	return w.activeBodies
}

// Contacts returns the contacts from the last GenerateContacts. The slice is reused next frame.
func (w *World) Contacts() []Contact {
	return w.data.Contacts()
}

func (w *World) Stats() Stats {
	return Stats{
		Bodies:      len(w.bodies),
		Active:      w.activeBodies,
		Colliders:   len(w.colliders),
		Contacts:    w.lastContacts,
		Iterations:  w.resolver.VelocityIterationsUsed,
		Compactions: w.compactions,
	}
}

// StartFrame clears force accumulators and refreshes derived data for every active body and collider.
func (w *World) StartFrame() {
	for _, b := range w.bodies {
		if !b.active {
			continue
		}
		b.ClearAccumulators()
		b.CalculateDerivedData()
	}
	for _, c := range w.colliders {
		if c.Active() {
			c.CalculateInternals()
		}
	}
}

// RemoveInactiveBodies compacts the body, collider and callback lists, forgets deleted ids and
// re-links every remaining collider to its body through the id table.
func (w *World) RemoveInactiveBodies() {
	removedBodies := 0
	kept := w.bodies[:0]
	for _, b := range w.bodies {
		if b.active {
			kept = append(kept, b)
			continue
		}
		delete(w.bodyByID, b.id)
		w.forces.RemoveBody(b)
		removedBodies++
	}
	clear(w.bodies[len(kept):])
	w.bodies = kept

	keptColliders := w.colliders[:0]
	for _, c := range w.colliders {
		if c.Active() {
			keptColliders = append(keptColliders, c)
			continue
		}
		id := c.ID()
		if owner, ok := w.ownerOf[id]; ok {
			delete(w.colliderOf, owner)
		}
		delete(w.ownerOf, id)
		delete(w.colliderByID, id)
	}
	clear(w.colliders[len(keptColliders):])
	w.colliders = keptColliders

	keptCallbacks := w.callbacks[:0]
	for _, cb := range w.callbacks {
		if _, ok := w.colliderByID[cb.collider]; ok {
			keptCallbacks = append(keptCallbacks, cb)
		}
	}
	clear(w.callbacks[len(keptCallbacks):])
	w.callbacks = keptCallbacks

	for _, c := range w.colliders {
		p := c.primitive()
		owner, ok := w.ownerOf[p.id]
		if !ok {
			continue
		}
		p.body = w.bodyByID[owner]
	}

	w.activeBodies = len(w.bodies)
	w.compactions++
	if w.log != nil {
		w.log.Logf("physics: compacted %d bodies, %d remain", removedBodies, len(w.bodies))
	}
}

// GenerateContacts compacts the lists if enough bodies were deleted, then tests every pair of
// active colliders and dispatches callbacks for pairs that touch. It returns the contact count.
func (w *World) GenerateContacts() int {
	w.data.Reset(w.maxContacts)
	if len(w.bodies)-w.activeBodies >= w.collectGap {
		w.RemoveInactiveBodies()
	}

	colliders := w.colliders
	boxes := make([]aabb, len(colliders))
	for i, c := range colliders {
		if c.Active() {
			c.CalculateInternals()
			boxes[i] = bounds(c)
		}
	}

	for i := 0; i < len(colliders); i++ {
		a := colliders[i]
		for j := i + 1; j < len(colliders) && a.Active(); j++ {
			b := colliders[j]
			if !b.Active() || (immovable(a) && immovable(b)) || !boxes[i].overlaps(boxes[j]) {
				continue
			}
			if Collide(a, b, w.data) > 0 {
				w.dispatch(a, b)
			}
		}
	}

	w.lastContacts = w.data.Len()
	saturated := w.data.ContactsLeft() == 0
	if saturated && !w.saturatedLast && w.log != nil {
		w.log.Logf("physics: contact buffer full (%d), further contacts dropped", w.maxContacts)
	}
	w.saturatedLast = saturated
	return w.lastContacts
}

// immovable reports whether c is scenery: no body or a body of infinite mass. Pairs of scenery are never tested.
func immovable(c Collider) bool {
	b := c.Body()
	return b == nil || !b.HasFiniteMass()
}

// dispatch calls the callbacks watching either collider. Callbacks registered during dispatch run
// from the next pair on.
func (w *World) dispatch(a, b Collider) {
	callbacks := w.callbacks
	for _, cb := range callbacks {
		switch cb.collider {
		case a.ID():
			cb.fn(w, a, b)
		case b.ID():
			cb.fn(w, b, a)
		}
	}
}

// RunPhysics applies forces, integrates active bodies, generates contacts and resolves them.
func (w *World) RunPhysics(duration Real) {
	w.forces.UpdateForces(duration)
	for _, b := range w.bodies {
		if b.active {
			b.Integrate(duration)
		}
	}

	used := w.GenerateContacts()
	if w.calculateIterations {
		w.resolver.SetIterations(used*4, used*4)
	}
	w.resolver.ResolveContacts(w.data.Contacts(), duration)
}
