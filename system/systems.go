package system

import (
	"github.com/jakecoffman/cp"
)

// GooseInput reports the direction the player is steering the goose.
type GooseInput interface {
	GooseDirection() cp.Vector
}

// InputSystem copies player input onto the goose.
type InputSystem struct {
	Input GooseInput
}

func NewInputSystem(input GooseInput) *InputSystem {
	return &InputSystem{Input: input}
}

func (s *InputSystem) Name() string { return "input" }

func (s *InputSystem) Update(w *World) error {
	if s.Input == nil || !w.Playing() {
		w.Park.MoveGoose(cp.Vector{})
		return nil
	}
	w.Park.MoveGoose(s.Input.GooseDirection())
	return nil
}

// PhysicsSystem steps the park by the frame time.
type PhysicsSystem struct{}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{}
}

func (s *PhysicsSystem) Name() string { return "physics" }

func (s *PhysicsSystem) Update(w *World) error {
	if !w.Playing() {
		return nil
	}
	w.Park.Step(w.DT)
	return nil
}

// KeeperSystem ticks the keeper machine after physics so its behaviors see
// this frame's positions.
type KeeperSystem struct{}

func NewKeeperSystem() *KeeperSystem {
	return &KeeperSystem{}
}

func (s *KeeperSystem) Name() string { return "keeper" }

func (s *KeeperSystem) Update(w *World) error {
	if w.Keeper == nil || !w.Playing() {
		return nil
	}
	if err := w.Keeper.Tick(w.KeeperCtx); err != nil {
		return err
	}
	return w.KeeperCtx.TakeErr()
}

// MenuSystem ticks the menu machine last, once the round state for this
// frame is known.
type MenuSystem struct{}

func NewMenuSystem() *MenuSystem {
	return &MenuSystem{}
}

func (s *MenuSystem) Name() string { return "menu" }

func (s *MenuSystem) Update(w *World) error {
	if w.Menu == nil || w.MenuCtx == nil {
		return nil
	}
	w.MenuCtx.DT = w.DT
	return w.Menu.Tick(w.MenuCtx)
}

// DefaultScheduler returns the frame order used by the game: input,
// physics, keeper, menu.
func DefaultScheduler(input GooseInput) *Scheduler {
	return NewScheduler(
		NewInputSystem(input),
		NewPhysicsSystem(),
		NewKeeperSystem(),
		NewMenuSystem(),
	)
}
