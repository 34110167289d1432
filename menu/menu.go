// Package menu runs the front-end flow: manual screen, single-player round,
// two-player setup and the end-of-round replay/exit prompt.
package menu

import (
	"github.com/milk9111/parkkeeper/fsm"
	"github.com/milk9111/parkkeeper/prefabs"
)

const (
	FlagStartSingle = 0 // manual_select -> single_player_run
	FlagBackToMenu  = 1 // single_player_run -> manual_select
	FlagRoundOver   = 2 // single_player_run -> exit_confirm
	FlagReplay      = 3 // exit_confirm -> single_player_run
	FlagStartDouble = 4 // manual_select -> double_player_setup
)

const (
	StateSinglePlayerRun   = "single_player_run"
	StateDoublePlayerSetup = "double_player_setup"
	StateManualSelect      = "manual_select"
	StateExitConfirm       = "exit_confirm"
)

type Button int

const (
	ButtonNone Button = iota
	ButtonSingle
	ButtonDouble
	ButtonReplay
	ButtonExit
)

func (b Button) String() string {
	switch b {
	case ButtonSingle:
		return "single"
	case ButtonDouble:
		return "double"
	case ButtonReplay:
		return "replay"
	case ButtonExit:
		return "exit"
	default:
		return "none"
	}
}

// UI is what the menu behaviors need from the screen and the game.
type UI interface {
	// Clicked returns the button pressed since the last call.
	Clicked() Button
	EscapePressed() bool

	FocusManual()
	FocusGoose()
	ShowEndButtons(score int)
	HideEndButtons()

	// StartDoublePlayer switches the world to two-player mode and
	// re-initializes it.
	StartDoublePlayer()
	Quit()
}

type Context struct {
	Flag         int
	UI           UI
	Score        func() int
	RoundSeconds float64

	// DT is the frame time in seconds, set by the caller before each tick.
	DT      float64
	Elapsed float64

	doubleReady bool
}

func NewContext(ui UI, score func() int, roundSeconds float64) *Context {
	return &Context{Flag: FlagBackToMenu, UI: ui, Score: score, RoundSeconds: roundSeconds}
}

// Reset returns the context to its post-init values.
func (c *Context) Reset() {
	c.Flag = FlagBackToMenu
	c.Elapsed = 0
	c.doubleReady = false
}

func readFlag(c *Context) int { return c.Flag }

func ManualSelect(c *Context) {
	c.doubleReady = false
	c.UI.FocusManual()

	switch c.UI.Clicked() {
	case ButtonSingle:
		c.UI.FocusGoose()
		c.Flag = FlagStartSingle
	case ButtonDouble:
		c.Flag = FlagStartDouble
	}
}

// SinglePlayerRun advances the round timer. The round ends once it passes
// RoundSeconds, even if escape was pressed on the same frame.
func SinglePlayerRun(c *Context) {
	if c.UI.EscapePressed() {
		c.Flag = FlagBackToMenu
	}
	c.Elapsed += c.DT
	if c.Elapsed > c.RoundSeconds {
		c.Flag = FlagRoundOver
	}
}

// DoublePlayerSetup prepares the two-player world once per entry into the
// state; later ticks are no-ops.
func DoublePlayerSetup(c *Context) {
	if c.doubleReady {
		return
	}
	c.doubleReady = true
	c.UI.StartDoublePlayer()
	c.UI.FocusGoose()
}

func ExitConfirm(c *Context) {
	c.UI.FocusManual()
	score := 0
	if c.Score != nil {
		score = c.Score()
	}
	c.UI.ShowEndButtons(score)

	switch c.UI.Clicked() {
	case ButtonReplay:
		c.UI.HideEndButtons()
		c.UI.FocusGoose()
		c.Elapsed = 0
		c.Flag = FlagReplay
	case ButtonExit:
		c.UI.Quit()
	}
}

func Registry() fsm.Registry[*Context] {
	return fsm.Registry[*Context]{
		Behaviors: map[string]fsm.Behavior[*Context]{
			StateSinglePlayerRun:   SinglePlayerRun,
			StateDoublePlayerSetup: DoublePlayerSetup,
			StateManualSelect:      ManualSelect,
			StateExitConfirm:       ExitConfirm,
		},
		Ints: map[string]func(*Context) int{
			"flag": readFlag,
		},
	}
}

func DefaultDefinition() fsm.Definition {
	eq := func(n float64) fsm.Condition {
		return fsm.Condition{Value: "flag", Op: "==", Than: n}
	}
	return fsm.Definition{
		Name:    "menu",
		Initial: StateManualSelect,
		States: []fsm.StateDefinition{
			{Name: StateSinglePlayerRun, Behavior: StateSinglePlayerRun},
			{Name: StateDoublePlayerSetup, Behavior: StateDoublePlayerSetup},
			{Name: StateManualSelect, Behavior: StateManualSelect},
			{Name: StateExitConfirm, Behavior: StateExitConfirm},
		},
		Transitions: []fsm.TransitionDefinition{
			{From: StateManualSelect, To: StateSinglePlayerRun, When: eq(FlagStartSingle)},
			{From: StateSinglePlayerRun, To: StateManualSelect, When: eq(FlagBackToMenu)},
			{From: StateSinglePlayerRun, To: StateExitConfirm, When: eq(FlagRoundOver)},
			{From: StateExitConfirm, To: StateSinglePlayerRun, When: eq(FlagReplay)},
			{From: StateManualSelect, To: StateDoublePlayerSetup, When: eq(FlagStartDouble)},
		},
	}
}

func New(def fsm.Definition, opts ...fsm.Option) (*fsm.Machine[*Context], error) {
	return fsm.Compile(def, Registry(), opts...)
}

// Load builds the menu machine from its prefab definition.
func Load(opts ...fsm.Option) (*fsm.Machine[*Context], error) {
	def, err := prefabs.LoadMachine(prefabs.MenuMachineFile)
	if err != nil {
		return nil, err
	}
	return New(def, opts...)
}
