package fsm

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustState[C any](t *testing.T, m *Machine[C], name string, b Behavior[C]) StateID {
	t.Helper()
	id, err := m.AddState(name, b)
	require.NoError(t, err)
	return id
}

func mustTransition[C any](t *testing.T, m *Machine[C], from, to StateID, p Predicate[C]) TransitionID {
	t.Helper()
	id, err := m.AddTransition(from, to, p)
	require.NoError(t, err)
	return id
}

func TestTickWithoutActiveState(t *testing.T) {
	m := New[*flagCtx]("empty", WithLogger(slogt.New(t)))
	calls := 0
	mustState(t, m, "a", func(*flagCtx) { calls++ })

	err := m.Tick(&flagCtx{})
	require.ErrorIs(t, err, ErrNoActiveState)
	assert.Equal(t, 0, calls)
	assert.Equal(t, NoState, m.Active())
	assert.Zero(t, m.Ticks())
}

func TestTickRunsBehaviorThenTransitions(t *testing.T) {
	m := New[*flagCtx]("order", WithLogger(slogt.New(t)))
	var trace []string
	a := mustState(t, m, "a", func(c *flagCtx) {
		trace = append(trace, "a")
		c.Flag = 1
	})
	b := mustState(t, m, "b", func(c *flagCtx) {
		trace = append(trace, "b")
	})
	mustTransition(t, m, a, b, Compare("flag", readFlag, Equals, 1))
	require.NoError(t, m.SetInitial(a))

	ctx := &flagCtx{}
	require.NoError(t, m.Tick(ctx))

	// a's behavior wrote the flag, the predicate saw it, b did not run yet.
	assert.Equal(t, []string{"a"}, trace)
	assert.Equal(t, b, m.Active())

	require.NoError(t, m.Tick(ctx))
	assert.Equal(t, []string{"a", "b"}, trace)
}

func TestRegistrationOrderWins(t *testing.T) {
	m := New[*flagCtx]("order", WithLogger(slogt.New(t)))
	src := mustState(t, m, "src", nil)
	x := mustState(t, m, "x", nil)
	y := mustState(t, m, "y", nil)
	mustTransition(t, m, src, x, Always[*flagCtx]())
	mustTransition(t, m, src, y, Always[*flagCtx]())

	for i := 0; i < 10; i++ {
		require.NoError(t, m.SetActive(src))
		require.NoError(t, m.Tick(&flagCtx{}))
		require.Equal(t, x, m.Active())
	}
}

func TestAtMostOneTransitionPerTick(t *testing.T) {
	m := New[*flagCtx]("chain", WithLogger(slogt.New(t)))
	a := mustState(t, m, "a", nil)
	b := mustState(t, m, "b", nil)
	c := mustState(t, m, "c", nil)
	mustTransition(t, m, a, b, Always[*flagCtx]())
	mustTransition(t, m, b, c, Always[*flagCtx]())
	require.NoError(t, m.SetInitial(a))

	require.NoError(t, m.Tick(&flagCtx{}))
	assert.Equal(t, b, m.Active())
	require.NoError(t, m.Tick(&flagCtx{}))
	assert.Equal(t, c, m.Active())
}

func TestSinkStateIsSteady(t *testing.T) {
	m := New[*flagCtx]("sink", WithLogger(slogt.New(t)))
	calls := 0
	idle := mustState(t, m, "idle", func(c *flagCtx) { calls++ })
	require.NoError(t, m.SetInitial(idle))

	ctx := &flagCtx{}
	for i := 0; i < 25; i++ {
		ctx.Flag = i
		require.NoError(t, m.Tick(ctx))
		require.Equal(t, idle, m.Active())
	}
	assert.Equal(t, 25, calls)
	assert.Equal(t, uint64(25), m.Ticks())
}

func TestNoTransitionKeepsState(t *testing.T) {
	m := New[*flagCtx]("hold", WithLogger(slogt.New(t)))
	a := mustState(t, m, "a", nil)
	b := mustState(t, m, "b", nil)
	mustTransition(t, m, a, b, Compare("flag", readFlag, Equals, 9))
	mustTransition(t, m, a, b, nil)
	mustTransition(t, m, a, b, Compare[*flagCtx, int]("flag", nil, Equals, 0))
	require.NoError(t, m.SetInitial(a))

	require.NoError(t, m.Tick(&flagCtx{}))
	assert.Equal(t, a, m.Active())
}

func TestActiveAlwaysOwned(t *testing.T) {
	m := New[*flagCtx]("cycle", WithLogger(slogt.New(t)))
	ids := make([]StateID, 4)
	for i := range ids {
		ids[i] = mustState(t, m, "", func(c *flagCtx) { c.Flag = (c.Flag + 1) % 4 })
	}
	for i := range ids {
		next := ids[(i+1)%len(ids)]
		mustTransition(t, m, ids[i], next, Compare("flag", readFlag, Equals, (i+1)%4))
	}
	require.NoError(t, m.SetInitial(ids[0]))

	ctx := &flagCtx{}
	owned := map[StateID]bool{}
	for _, id := range m.States() {
		owned[id] = true
	}
	for i := 0; i < 40; i++ {
		require.NoError(t, m.Tick(ctx))
		require.True(t, owned[m.Active()], "active %d not owned", m.Active())
	}
	assert.Equal(t, "#2", m.StateName(ids[2]))
}

func TestConstructionRejectsForeignHandles(t *testing.T) {
	m := New[*flagCtx]("strict", WithLogger(slogt.New(t)))
	a := mustState(t, m, "a", nil)

	_, err := m.AddTransition(a, StateID(7), Always[*flagCtx]())
	require.ErrorIs(t, err, ErrUnknownState)
	_, err = m.AddTransition(NoState, a, Always[*flagCtx]())
	require.ErrorIs(t, err, ErrUnknownState)
	require.ErrorIs(t, m.SetInitial(StateID(3)), ErrUnknownState)
	require.ErrorIs(t, m.SetActive(NoState), ErrUnknownState)

	_, err = m.AddState("a", nil)
	require.ErrorIs(t, err, ErrDuplicateState)
	assert.Empty(t, m.Outgoing(a))
}

func TestResetReturnsToInitial(t *testing.T) {
	m := New[*flagCtx]("reset", WithLogger(slogt.New(t)))
	a := mustState(t, m, "a", nil)
	b := mustState(t, m, "b", nil)
	mustTransition(t, m, a, b, Always[*flagCtx]())
	require.NoError(t, m.SetInitial(a))
	require.NoError(t, m.Tick(&flagCtx{}))
	require.Equal(t, b, m.Active())

	m.Reset()
	assert.Equal(t, a, m.Active())
	assert.Equal(t, "a", m.ActiveName())
	assert.Zero(t, m.Ticks())

	require.NoError(t, m.SetActive(b))
	assert.Equal(t, a, m.Initial())
}

func TestSetActiveInitial(t *testing.T) {
	tests := []struct {
		name        string
		setInitial  bool
		wantInitial string
	}{
		{"fresh_machine_adopts_active", false, "b"},
		{"existing_initial_kept", true, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New[*flagCtx]("set_active", WithLogger(slogt.New(t)))
			a := mustState(t, m, "a", nil)
			b := mustState(t, m, "b", nil)
			if tt.setInitial {
				require.NoError(t, m.SetInitial(a))
			}

			require.NoError(t, m.SetActive(b))
			assert.Equal(t, "b", m.ActiveName())
			assert.Equal(t, tt.wantInitial, m.StateName(m.Initial()))

			m.Reset()
			assert.Equal(t, tt.wantInitial, m.ActiveName())
		})
	}
}

type recordingObserver struct {
	ticks       []string
	transitions []TransitionEvent
}

func (r *recordingObserver) ObserveTick(_, state string) { r.ticks = append(r.ticks, state) }

func (r *recordingObserver) ObserveTransition(ev TransitionEvent) {
	r.transitions = append(r.transitions, ev)
}

func TestObserversSeeTicksAndTransitions(t *testing.T) {
	rec := &recordingObserver{}
	m := New[*flagCtx]("watched", WithLogger(slogt.New(t)), WithObserver(rec), WithObserver(LogObserver{Logger: slogt.New(t)}))
	a := mustState(t, m, "a", nil)
	b := mustState(t, m, "b", nil)
	tid := mustTransition(t, m, a, b, Compare("flag", readFlag, Equals, 1))
	require.NoError(t, m.SetInitial(a))

	ctx := &flagCtx{}
	require.NoError(t, m.Tick(ctx))
	ctx.Flag = 1
	require.NoError(t, m.Tick(ctx))
	require.NoError(t, m.Tick(ctx))

	assert.Equal(t, []string{"a", "a", "b"}, rec.ticks)
	require.Len(t, rec.transitions, 1)
	ev := rec.transitions[0]
	assert.Equal(t, "watched", ev.Machine)
	assert.Equal(t, tid, ev.Transition)
	assert.Equal(t, "a", ev.FromName)
	assert.Equal(t, "b", ev.ToName)
	assert.Equal(t, uint64(2), ev.Tick)

	from, to, ok := m.Transition(tid)
	require.True(t, ok)
	assert.Equal(t, a, from)
	assert.Equal(t, b, to)
}
