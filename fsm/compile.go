package fsm

import (
	"fmt"
	"math"
)

// Definition is a serializable description of a machine. Behaviors and
// compared values are referenced by name and resolved through a Registry.
type Definition struct {
	Name        string                 `yaml:"name"`
	Initial     string                 `yaml:"initial"`
	States      []StateDefinition      `yaml:"states"`
	Transitions []TransitionDefinition `yaml:"transitions"`
}

type StateDefinition struct {
	Name     string `yaml:"name"`
	Behavior string `yaml:"behavior"`
	Script   string `yaml:"script"`
}

type TransitionDefinition struct {
	From string    `yaml:"from"`
	To   string    `yaml:"to"`
	When Condition `yaml:"when"`
}

// Condition compares the named registry value against Than. The value name
// "always" needs no operator and always holds.
type Condition struct {
	Value string  `yaml:"value"`
	Op    string  `yaml:"op"`
	Than  float64 `yaml:"than"`
}

const alwaysValue = "always"

// Registry resolves the names used in a Definition.
type Registry[C any] struct {
	Behaviors map[string]Behavior[C]
	Ints      map[string]func(C) int
	Floats    map[string]func(C) float64
	// Scripts builds a behavior from a script path. Optional.
	Scripts func(path string) (Behavior[C], error)
}

// Compile builds a ready-to-tick machine from def. The returned machine has
// its initial state set.
func Compile[C any](def Definition, reg Registry[C], opts ...Option) (*Machine[C], error) {
	if def.Initial == "" {
		return nil, fmt.Errorf("fsm: compile %s: missing initial state", def.Name)
	}

	m := New[C](def.Name, opts...)
	for _, sd := range def.States {
		b, err := resolveBehavior(sd, reg)
		if err != nil {
			return nil, fmt.Errorf("fsm: compile %s: state %q: %w", def.Name, sd.Name, err)
		}
		if sd.Name == "" {
			return nil, fmt.Errorf("fsm: compile %s: state without name", def.Name)
		}
		if _, err := m.AddState(sd.Name, b); err != nil {
			return nil, fmt.Errorf("fsm: compile %s: %w", def.Name, err)
		}
	}

	for i, td := range def.Transitions {
		from, ok := m.StateByName(td.From)
		if !ok {
			return nil, fmt.Errorf("fsm: compile %s: transition %d: %w: %q", def.Name, i, ErrUnknownState, td.From)
		}
		to, ok := m.StateByName(td.To)
		if !ok {
			return nil, fmt.Errorf("fsm: compile %s: transition %d: %w: %q", def.Name, i, ErrUnknownState, td.To)
		}
		when, err := resolveCondition(td.When, reg)
		if err != nil {
			return nil, fmt.Errorf("fsm: compile %s: transition %s->%s: %w", def.Name, td.From, td.To, err)
		}
		if when == nil {
			m.logger.Warn("fsm: transition has no operator and will never fire",
				"machine", def.Name, "from", td.From, "to", td.To)
			when = Never[C]()
		}
		if _, err := m.AddTransition(from, to, when); err != nil {
			return nil, fmt.Errorf("fsm: compile %s: %w", def.Name, err)
		}
	}

	initial, ok := m.StateByName(def.Initial)
	if !ok {
		return nil, fmt.Errorf("fsm: compile %s: initial: %w: %q", def.Name, ErrUnknownState, def.Initial)
	}
	if err := m.SetInitial(initial); err != nil {
		return nil, err
	}
	return m, nil
}

func resolveBehavior[C any](sd StateDefinition, reg Registry[C]) (Behavior[C], error) {
	switch {
	case sd.Behavior != "" && sd.Script != "":
		return nil, fmt.Errorf("both behavior %q and script %q set", sd.Behavior, sd.Script)
	case sd.Script != "":
		if reg.Scripts == nil {
			return nil, fmt.Errorf("%w: no script loader for %q", ErrUnknownBehavior, sd.Script)
		}
		return reg.Scripts(sd.Script)
	case sd.Behavior != "":
		b, ok := reg.Behaviors[sd.Behavior]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBehavior, sd.Behavior)
		}
		return b, nil
	}
	return nil, nil
}

// resolveCondition returns a nil predicate for a condition with no operator.
func resolveCondition[C any](c Condition, reg Registry[C]) (Predicate[C], error) {
	if c.Value == alwaysValue {
		return Always[C](), nil
	}
	op, err := ParseOp(c.Op)
	if err != nil {
		return nil, err
	}

	if read, ok := reg.Ints[c.Value]; ok {
		if c.Than != math.Trunc(c.Than) {
			return nil, fmt.Errorf("value %q is an integer, got threshold %v", c.Value, c.Than)
		}
		if math.Abs(c.Than) >= math.MaxInt {
			return nil, fmt.Errorf("value %q: threshold %v out of int range", c.Value, c.Than)
		}
		if op == OpNone {
			return nil, nil
		}
		return Compare(c.Value, read, op, int(c.Than)), nil
	}
	if read, ok := reg.Floats[c.Value]; ok {
		if op == OpNone {
			return nil, nil
		}
		return Compare(c.Value, read, op, c.Than), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownValue, c.Value)
}
