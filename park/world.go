package park

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	wallCategory  uint = 1 << 0
	actorCategory uint = 1 << 1

	actorRadius = 4.0
	actorMass   = 1.0
	damping     = 0.2
)

// Layout is the static description of a park.
type Layout struct {
	Bounds      cp.BB
	KeeperHome  cp.Vector
	GooseSpawn  cp.Vector
	AppleSpawn  cp.Vector
	Island      cp.BB
	Walls       []cp.BB
	PickupRange float64
	GooseSpeed  float64
}

// DefaultLayout is the standard park: keeper hut in one corner, goose
// start and apple across the water, island in the middle.
func DefaultLayout() Layout {
	return Layout{
		Bounds:     cp.BB{L: -100, B: -100, R: 100, T: 100},
		KeeperHome: cp.Vector{X: 70, Y: -70},
		GooseSpawn: cp.Vector{X: -60, Y: 60},
		AppleSpawn: cp.Vector{X: -80, Y: -20},
		Island:     cp.BB{L: -15, B: -15, R: 15, T: 15},
		Walls: []cp.BB{
			{L: -40, B: 20, R: -30, T: 90},
			{L: 30, B: -90, R: 40, T: -20},
		},
		PickupRange: 6,
		GooseSpeed:  40,
	}
}

// World is the physics side of the park: the keeper and goose bodies live in
// a chipmunk space surrounded by static walls. The apple is a point that the
// goose carries once close enough.
type World struct {
	layout Layout
	space  *cp.Space
	keeper *cp.Body
	goose  *cp.Body

	apple     cp.Vector
	carrying  bool
	delivered bool
	scored    bool
	score     int
}

// NewWorld builds the space for layout and places every actor at its spawn.
func NewWorld(layout Layout) *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetDamping(damping)

	w := &World{layout: layout, space: space}

	bounds := layout.Bounds
	border := []cp.BB{
		{L: bounds.L - 10, B: bounds.B - 10, R: bounds.L, T: bounds.T + 10},
		{L: bounds.R, B: bounds.B - 10, R: bounds.R + 10, T: bounds.T + 10},
		{L: bounds.L, B: bounds.B - 10, R: bounds.R, T: bounds.B},
		{L: bounds.L, B: bounds.T, R: bounds.R, T: bounds.T + 10},
	}
	for _, bb := range append(border, layout.Walls...) {
		shape := cp.NewBox2(space.StaticBody, bb, 0)
		shape.SetFriction(0.8)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, wallCategory, cp.ALL_CATEGORIES))
		space.AddShape(shape)
	}

	w.keeper = w.addActor(layout.KeeperHome)
	w.goose = w.addActor(layout.GooseSpawn)
	w.Reset()
	return w
}

func (w *World) addActor(pos cp.Vector) *cp.Body {
	body := cp.NewBody(actorMass, math.Inf(1))
	body.SetPosition(pos)
	w.space.AddBody(body)
	shape := cp.NewCircle(body, actorRadius, cp.Vector{})
	shape.SetFriction(0.8)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, actorCategory, cp.ALL_CATEGORIES))
	w.space.AddShape(shape)
	return body
}

// Reset puts the keeper, goose and apple back at their spawns and clears
// the score.
func (w *World) Reset() {
	w.teleport(w.keeper, w.layout.KeeperHome)
	w.teleport(w.goose, w.layout.GooseSpawn)
	w.apple = w.layout.AppleSpawn
	w.carrying = false
	w.delivered = false
	w.scored = false
	w.score = 0
}

func (w *World) teleport(body *cp.Body, pos cp.Vector) {
	body.SetPosition(pos)
	body.SetVelocityVector(cp.Vector{})
	body.SetForce(cp.Vector{})
	body.EachShape(func(s *cp.Shape) { s.CacheBB() })
}

// Step advances the physics by dt seconds and resolves apple pickup and
// scoring.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.space.Step(dt)

	goosePos := w.goose.Position()
	if !w.carrying && goosePos.DistanceSq(w.apple) <= w.layout.PickupRange*w.layout.PickupRange {
		w.carrying = true
	}
	if w.carrying {
		w.apple = goosePos
		if !w.delivered && w.layout.Island.ContainsVect(goosePos) {
			w.delivered = true
			w.scored = true
		}
	}
}

// MoveGoose sets the goose velocity from an input direction. A zero
// direction stops it.
func (w *World) MoveGoose(dir cp.Vector) {
	if dir.LengthSq() == 0 {
		w.goose.SetVelocityVector(cp.Vector{})
		return
	}
	w.goose.SetVelocityVector(dir.Normalize().Mult(w.layout.GooseSpeed))
}

func (w *World) KeeperPosition() cp.Vector { return w.keeper.Position() }
func (w *World) GoosePosition() cp.Vector  { return w.goose.Position() }
func (w *World) KeeperHome() cp.Vector     { return w.layout.KeeperHome }
func (w *World) ApplePosition() cp.Vector  { return w.apple }
func (w *World) Layout() Layout            { return w.layout }

func (w *World) SetKeeperPosition(p cp.Vector) {
	w.teleport(w.keeper, p)
}

func (w *World) SetGoosePosition(p cp.Vector) {
	w.teleport(w.goose, p)
}

// ApplyKeeperForce pushes the keeper through its center of mass.
func (w *World) ApplyKeeperForce(f cp.Vector) {
	w.keeper.ApplyForceAtWorldPoint(f, w.keeper.Position())
}

func (w *World) GooseHasApple() bool {
	return w.carrying
}

// ReturnApple takes the apple from the goose and puts it back at its spawn.
func (w *World) ReturnApple() {
	w.carrying = false
	w.delivered = false
	w.scored = false
	w.apple = w.layout.AppleSpawn
}

// ConsumeAppleScored reports whether the goose brought the apple to the
// island since the last call, clearing the report. A carried apple scores
// once until it is returned.
func (w *World) ConsumeAppleScored() bool {
	if !w.scored {
		return false
	}
	w.scored = false
	return true
}

func (w *World) AddScore(n int) { w.score += n }
func (w *World) Score() int     { return w.score }

// LineOfSight reports whether the segment from a to b crosses no wall.
func (w *World) LineOfSight(a, b cp.Vector) bool {
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, wallCategory)
	info := w.space.SegmentQueryFirst(a, b, 0, filter)
	return info.Shape == nil
}

// DrawDebug renders every shape in the space through d.
func (w *World) DrawDebug(d cp.Drawer) {
	cp.DrawSpace(w.space, d)
}
