// Package keeper drives the park keeper NPC: it waits at home until the
// goose comes close, chases it along a navigation path, takes back a stolen
// apple and walks home again.
package keeper

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/parkkeeper/fsm"
)

// Flag values written by the behaviors. Each one selects a single outgoing
// transition of the keeper machine.
const (
	FlagChase    = 0 // detect -> move
	FlagTouch    = 1 // move -> touch
	FlagGiveUp   = 2 // move -> return
	FlagReturned = 3 // touch -> return
	FlagHome     = 4 // return -> detect
)

// State names used by the definition and the diagram.
const (
	StateMove   = "move"
	StateDetect = "detect"
	StateReturn = "return"
	StateTouch  = "touch"
)

// Park is the physics world as seen by the keeper.
type Park interface {
	KeeperPosition() cp.Vector
	GoosePosition() cp.Vector
	KeeperHome() cp.Vector
	SetKeeperPosition(p cp.Vector)
	ApplyKeeperForce(f cp.Vector)
	GooseHasApple() bool
	ReturnApple()
	ConsumeAppleScored() bool
	AddScore(n int)
	LineOfSight(a, b cp.Vector) bool
}

// Pathfinder returns world-space waypoints from start to end.
type Pathfinder interface {
	FindPath(start, end cp.Vector) ([]cp.Vector, bool)
}

type Tuning struct {
	DetectRangeSq float64
	LoseRangeSq   float64
	Steering      float64
	ScorePoints   int
	RequireSight  bool
}

func DefaultTuning() Tuning {
	return Tuning{
		DetectRangeSq: 1000,
		LoseRangeSq:   40000,
		Steering:      0.5,
		ScorePoints:   10,
	}
}

// Context is the state shared by the keeper behaviors and the machine's
// transition predicates.
type Context struct {
	Flag   int
	Park   Park
	Nav    Pathfinder
	Tuning Tuning

	// Waypoints is the last path computed by Move, kept for debug drawing.
	Waypoints []cp.Vector

	// Err holds the first failure of a scripted behavior since the last
	// TakeErr call.
	Err error
}

func NewContext(park Park, nav Pathfinder, tuning Tuning) *Context {
	return &Context{Flag: FlagHome, Park: park, Nav: nav, Tuning: tuning}
}

// Reset puts the flag back to its post-init value and forgets the path.
func (c *Context) Reset() {
	c.Flag = FlagHome
	c.Waypoints = nil
}

// TakeErr returns and clears the pending script error.
func (c *Context) TakeErr() error {
	err := c.Err
	c.Err = nil
	return err
}

func readFlag(c *Context) int { return c.Flag }

func distanceSq(a, b cp.Vector) float64 {
	return a.DistanceSq(b)
}

// Detect raises FlagChase once the goose is within detection range.
func Detect(c *Context) {
	keeper, goose := c.Park.KeeperPosition(), c.Park.GoosePosition()
	if distanceSq(keeper, goose) >= c.Tuning.DetectRangeSq {
		return
	}
	if c.Tuning.RequireSight && !c.Park.LineOfSight(keeper, goose) {
		return
	}
	c.Flag = FlagChase
}

// Move steers the keeper along the path to the goose. Every waypoint after
// the first pulls the keeper with a force proportional to its offset.
func Move(c *Context) {
	keeper, goose := c.Park.KeeperPosition(), c.Park.GoosePosition()

	path, found := c.Nav.FindPath(keeper, goose)
	c.Waypoints = path
	if !found || (c.Tuning.LoseRangeSq > 0 && distanceSq(keeper, goose) > c.Tuning.LoseRangeSq) {
		c.Flag = FlagGiveUp
		return
	}

	for _, wp := range path[min(1, len(path)):] {
		c.Park.ApplyKeeperForce(wp.Sub(keeper).Mult(c.Tuning.Steering))
	}

	if c.Park.ConsumeAppleScored() {
		c.Park.AddScore(c.Tuning.ScorePoints)
		c.Flag = FlagTouch
	}
}

// Touch takes the apple back if the goose is carrying it.
func Touch(c *Context) {
	if c.Park.GooseHasApple() {
		c.Park.ReturnApple()
		c.Flag = FlagReturned
	}
}

// Return teleports the keeper home.
func Return(c *Context) {
	c.Park.SetKeeperPosition(c.Park.KeeperHome())
	c.Waypoints = nil
	c.Flag = FlagHome
}

// DefaultDefinition is the built-in keeper graph. The prefab file carries
// the same graph with Touch implemented as a script.
func DefaultDefinition() fsm.Definition {
	eq := func(n float64) fsm.Condition {
		return fsm.Condition{Value: "flag", Op: "==", Than: n}
	}
	return fsm.Definition{
		Name:    "park_keeper",
		Initial: StateDetect,
		States: []fsm.StateDefinition{
			{Name: StateMove, Behavior: StateMove},
			{Name: StateDetect, Behavior: StateDetect},
			{Name: StateReturn, Behavior: StateReturn},
			{Name: StateTouch, Behavior: StateTouch},
		},
		Transitions: []fsm.TransitionDefinition{
			{From: StateDetect, To: StateMove, When: eq(FlagChase)},
			{From: StateMove, To: StateTouch, When: eq(FlagTouch)},
			{From: StateMove, To: StateReturn, When: eq(FlagGiveUp)},
			{From: StateTouch, To: StateReturn, When: eq(FlagReturned)},
			{From: StateReturn, To: StateDetect, When: eq(FlagHome)},
		},
	}
}
