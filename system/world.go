// Package system ties the park, the keeper machine and the menu machine
// together and steps them once per frame in a fixed order.
package system

import (
	"fmt"
	"log/slog"

	"github.com/milk9111/parkkeeper/fsm"
	"github.com/milk9111/parkkeeper/keeper"
	"github.com/milk9111/parkkeeper/menu"
	"github.com/milk9111/parkkeeper/nav"
	"github.com/milk9111/parkkeeper/park"
)

// NavCellSize is the side of a navigation grid cell in world units.
const NavCellSize = 5.0

// World owns everything a frame touches.
type World struct {
	Park *park.World
	Nav  *nav.Grid

	Keeper    *fsm.Machine[*keeper.Context]
	KeeperCtx *keeper.Context
	Menu      *fsm.Machine[*menu.Context]
	MenuCtx   *menu.Context

	// DT is the length of the current frame in seconds.
	DT float64

	logger *slog.Logger
}

// NewWorld builds the park for layout and its navigation grid. The machines
// are attached with SetKeeper and SetMenu.
func NewWorld(layout park.Layout, tuning keeper.Tuning, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	grid := nav.NewGrid(layout.Bounds, NavCellSize)
	for _, wall := range layout.Walls {
		grid.Block(wall)
	}
	pw := park.NewWorld(layout)
	return &World{
		Park:      pw,
		Nav:       grid,
		KeeperCtx: keeper.NewContext(pw, grid, tuning),
		logger:    logger,
	}
}

// SetKeeper installs m as the keeper machine. If a keeper machine was
// already running, m continues from the state with the same name.
func (w *World) SetKeeper(m *fsm.Machine[*keeper.Context]) {
	restoreActive(m, w.Keeper, w.logger)
	w.Keeper = m
}

// SetMenu installs m as the menu machine, continuing from the state with
// the same name as the current one.
func (w *World) SetMenu(m *fsm.Machine[*menu.Context], ctx *menu.Context) {
	restoreActive(m, w.Menu, w.logger)
	w.Menu = m
	if ctx != nil {
		w.MenuCtx = ctx
	}
}

func restoreActive[C any](next, prev *fsm.Machine[C], logger *slog.Logger) {
	if next == nil || prev == nil {
		return
	}
	name := prev.ActiveName()
	id, ok := next.StateByName(name)
	if !ok {
		logger.Warn("reloaded machine lost the active state, starting over",
			"machine", next.Name(), "state", name)
		return
	}
	if err := next.SetActive(id); err != nil {
		logger.Warn("restore active state", "machine", next.Name(), "err", err)
	}
}

// Playing reports whether a round is in progress. The park and the keeper
// are frozen on the manual and exit screens.
func (w *World) Playing() bool {
	if w.Menu == nil {
		return true
	}
	switch w.Menu.ActiveName() {
	case menu.StateSinglePlayerRun, menu.StateDoublePlayerSetup:
		return true
	}
	return false
}

// ResetRound puts the park and the keeper back to their starting state.
func (w *World) ResetRound() {
	w.Park.Reset()
	w.KeeperCtx.Reset()
	if w.Keeper != nil {
		w.Keeper.Reset()
	}
}

// Reset re-initializes the whole game, menu included.
func (w *World) Reset() {
	w.ResetRound()
	if w.MenuCtx != nil {
		w.MenuCtx.Reset()
	}
	if w.Menu != nil {
		w.Menu.Reset()
	}
}

// Diagram renders both machines as Mermaid state diagrams.
func (w *World) Diagram() string {
	out := ""
	if w.Keeper != nil {
		out += w.Keeper.Mermaid()
	}
	if w.Menu != nil {
		if out != "" {
			out += "\n"
		}
		out += w.Menu.Mermaid()
	}
	return out
}

func (w *World) String() string {
	return fmt.Sprintf("keeper=%s menu=%s score=%d", activeName(w.Keeper), activeName(w.Menu), w.Park.Score())
}

func activeName[C any](m *fsm.Machine[C]) string {
	if m == nil {
		return "-"
	}
	return m.ActiveName()
}
