package fsm

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNoActiveState   = errors.New("fsm: no active state")
	ErrUnknownState    = errors.New("fsm: unknown state")
	ErrDuplicateState  = errors.New("fsm: duplicate state name")
	ErrUnknownBehavior = errors.New("fsm: unknown behavior")
	ErrUnknownValue    = errors.New("fsm: unknown value")
	ErrInvalidOp       = errors.New("fsm: invalid comparison operator")
)

// StateID is a handle into a Machine's state arena.
type StateID int

// TransitionID is a handle into a Machine's transition arena.
type TransitionID int

// NoState is the StateID of a machine that has not been set up yet.
const NoState StateID = -1

// Behavior is the per-tick logic of a state.
type Behavior[C any] func(ctx C)

type state[C any] struct {
	name     string
	behavior Behavior[C]
}

type transition[C any] struct {
	from StateID
	to   StateID
	when Predicate[C]
}

// Machine is a predicate-transition state machine over a context of type C.
// It is not safe for concurrent use; callers tick it from one goroutine.
type Machine[C any] struct {
	name        string
	states      []state[C]
	transitions []transition[C]
	// outgoing[s] lists transitions whose source is s, in registration order.
	outgoing [][]TransitionID

	initial StateID
	active  StateID
	ticks   uint64

	logger    *slog.Logger
	observers []Observer
}

type options struct {
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Machine.
type Option func(*options)

// WithLogger sets the logger used for transition debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an observer notified on every tick and transition.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// New creates an empty machine. States and transitions must be added and an
// initial state set before the first Tick.
func New[C any](name string, opts ...Option) *Machine[C] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Machine[C]{
		name:      name,
		initial:   NoState,
		active:    NoState,
		logger:    o.logger,
		observers: o.observers,
	}
}

func (m *Machine[C]) Name() string {
	return m.name
}

// AddState appends a state and returns its handle. name may be empty; when
// set it must be unique within the machine.
func (m *Machine[C]) AddState(name string, b Behavior[C]) (StateID, error) {
	if name != "" {
		if _, ok := m.StateByName(name); ok {
			return NoState, fmt.Errorf("%w: %q", ErrDuplicateState, name)
		}
	}
	id := StateID(len(m.states))
	m.states = append(m.states, state[C]{name: name, behavior: b})
	m.outgoing = append(m.outgoing, nil)
	return id, nil
}

// AddTransition registers an edge from -> to guarded by when. Transitions out
// of the same state are evaluated in the order they were added.
func (m *Machine[C]) AddTransition(from, to StateID, when Predicate[C]) (TransitionID, error) {
	if !m.owns(from) {
		return -1, fmt.Errorf("%w: source %d", ErrUnknownState, from)
	}
	if !m.owns(to) {
		return -1, fmt.Errorf("%w: destination %d", ErrUnknownState, to)
	}
	id := TransitionID(len(m.transitions))
	m.transitions = append(m.transitions, transition[C]{from: from, to: to, when: when})
	m.outgoing[from] = append(m.outgoing[from], id)
	return id, nil
}

// SetInitial designates the state Reset returns to and makes it active.
func (m *Machine[C]) SetInitial(id StateID) error {
	if !m.owns(id) {
		return fmt.Errorf("%w: %d", ErrUnknownState, id)
	}
	m.initial = id
	m.active = id
	return nil
}

// SetActive forces the active state. On a machine with no initial state yet,
// id also becomes the initial state; otherwise the initial state is kept.
func (m *Machine[C]) SetActive(id StateID) error {
	if !m.owns(id) {
		return fmt.Errorf("%w: %d", ErrUnknownState, id)
	}
	if m.initial == NoState {
		m.initial = id
	}
	m.active = id
	return nil
}

// Reset returns the machine to its initial state and clears the tick count.
func (m *Machine[C]) Reset() {
	m.active = m.initial
	m.ticks = 0
}

// Tick runs the active state's behavior once, then takes at most one of its
// outgoing transitions: the first, in registration order, whose predicate
// holds. The destination becomes active for the next Tick.
func (m *Machine[C]) Tick(ctx C) error {
	if !m.owns(m.active) {
		return ErrNoActiveState
	}
	current := m.active
	m.ticks++

	if b := m.states[current].behavior; b != nil {
		b(ctx)
	}
	for _, obs := range m.observers {
		obs.ObserveTick(m.name, m.states[current].name)
	}

	for _, tid := range m.outgoing[current] {
		t := m.transitions[tid]
		if !evaluate(t.when, ctx) {
			continue
		}
		m.active = t.to
		m.logger.Debug("fsm: transition",
			"machine", m.name,
			"from", m.StateName(t.from),
			"to", m.StateName(t.to),
			"tick", m.ticks,
		)
		ev := TransitionEvent{
			Machine:    m.name,
			Transition: tid,
			From:       t.from,
			To:         t.to,
			FromName:   m.states[t.from].name,
			ToName:     m.states[t.to].name,
			Tick:       m.ticks,
		}
		for _, obs := range m.observers {
			obs.ObserveTransition(ev)
		}
		break
	}
	return nil
}

// Active returns the current state, or NoState before setup.
func (m *Machine[C]) Active() StateID {
	return m.active
}

// ActiveName returns the name of the current state.
func (m *Machine[C]) ActiveName() string {
	if !m.owns(m.active) {
		return ""
	}
	return m.states[m.active].name
}

func (m *Machine[C]) Initial() StateID {
	return m.initial
}

// Ticks reports how many ticks ran since creation or the last Reset.
func (m *Machine[C]) Ticks() uint64 {
	return m.ticks
}

// States returns every state handle in insertion order.
func (m *Machine[C]) States() []StateID {
	out := make([]StateID, len(m.states))
	for i := range m.states {
		out[i] = StateID(i)
	}
	return out
}

// StateByName looks a state up by its label.
func (m *Machine[C]) StateByName(name string) (StateID, bool) {
	if name == "" {
		return NoState, false
	}
	for i, s := range m.states {
		if s.name == name {
			return StateID(i), true
		}
	}
	return NoState, false
}

// StateName returns the label of id, or "#<id>" for unnamed states.
func (m *Machine[C]) StateName(id StateID) string {
	if !m.owns(id) {
		return ""
	}
	if n := m.states[id].name; n != "" {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

// Outgoing returns the transitions leaving id in evaluation order.
func (m *Machine[C]) Outgoing(id StateID) []TransitionID {
	if !m.owns(id) {
		return nil
	}
	return append([]TransitionID(nil), m.outgoing[id]...)
}

// Transition returns the endpoints of a transition.
func (m *Machine[C]) Transition(id TransitionID) (from, to StateID, ok bool) {
	if id < 0 || int(id) >= len(m.transitions) {
		return NoState, NoState, false
	}
	t := m.transitions[id]
	return t.from, t.to, true
}

func (m *Machine[C]) owns(id StateID) bool {
	return id >= 0 && int(id) < len(m.states)
}
