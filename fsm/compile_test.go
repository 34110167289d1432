package fsm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() Registry[*flagCtx] {
	return Registry[*flagCtx]{
		Behaviors: map[string]Behavior[*flagCtx]{
			"bump": func(c *flagCtx) { c.Flag++ },
		},
		Ints: map[string]func(*flagCtx) int{
			"flag": readFlag,
		},
		Floats: map[string]func(*flagCtx) float64{
			"speed": func(c *flagCtx) float64 { return c.Speed },
		},
	}
}

func TestCompileBuildsTickableMachine(t *testing.T) {
	def := Definition{
		Name:    "counter",
		Initial: "low",
		States: []StateDefinition{
			{Name: "low", Behavior: "bump"},
			{Name: "high"},
		},
		Transitions: []TransitionDefinition{
			{From: "low", To: "high", When: Condition{Value: "flag", Op: ">", Than: 2}},
			{From: "high", To: "low", When: Condition{Value: "speed", Op: "lt", Than: 0.5}},
		},
	}

	m, err := Compile(def, testRegistry(), WithLogger(slogt.New(t)))
	require.NoError(t, err)
	assert.Equal(t, "counter", m.Name())
	assert.Equal(t, "low", m.ActiveName())

	ctx := &flagCtx{Speed: 1}
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Tick(ctx))
	}
	assert.Equal(t, "high", m.ActiveName())
	assert.Equal(t, 3, ctx.Flag)

	require.NoError(t, m.Tick(ctx))
	assert.Equal(t, "high", m.ActiveName())
	ctx.Speed = 0.1
	require.NoError(t, m.Tick(ctx))
	assert.Equal(t, "low", m.ActiveName())
}

func TestCompileMissingOpIsDeadTransition(t *testing.T) {
	def := Definition{
		Name:    "dead",
		Initial: "a",
		States:  []StateDefinition{{Name: "a"}, {Name: "b"}},
		Transitions: []TransitionDefinition{
			{From: "a", To: "b", When: Condition{Value: "flag", Than: 0}},
		},
	}
	m, err := Compile(def, testRegistry(), WithLogger(slogt.New(t)))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Tick(&flagCtx{}))
	}
	assert.Equal(t, "a", m.ActiveName())
}

func TestCompileAlways(t *testing.T) {
	def := Definition{
		Name:        "always",
		Initial:     "a",
		States:      []StateDefinition{{Name: "a"}, {Name: "b"}},
		Transitions: []TransitionDefinition{{From: "a", To: "b", When: Condition{Value: "always"}}},
	}
	m, err := Compile(def, testRegistry(), WithLogger(slogt.New(t)))
	require.NoError(t, err)
	require.NoError(t, m.Tick(&flagCtx{}))
	assert.Equal(t, "b", m.ActiveName())
}

func TestCompileErrors(t *testing.T) {
	base := func() Definition {
		return Definition{
			Name:        "bad",
			Initial:     "a",
			States:      []StateDefinition{{Name: "a"}, {Name: "b"}},
			Transitions: []TransitionDefinition{{From: "a", To: "b", When: Condition{Value: "flag", Op: "==", Than: 1}}},
		}
	}

	cases := []struct {
		name   string
		mutate func(d *Definition)
		target error
		substr string
	}{
		{"missing_initial", func(d *Definition) { d.Initial = "" }, nil, "missing initial"},
		{"unknown_initial", func(d *Definition) { d.Initial = "zzz" }, ErrUnknownState, ""},
		{"unknown_behavior", func(d *Definition) { d.States[0].Behavior = "fly" }, ErrUnknownBehavior, ""},
		{"script_without_loader", func(d *Definition) { d.States[0].Script = "x.tengo" }, ErrUnknownBehavior, ""},
		{"both_behavior_and_script", func(d *Definition) {
			d.States[0].Behavior = "bump"
			d.States[0].Script = "x.tengo"
		}, nil, "both behavior"},
		{"duplicate_state", func(d *Definition) { d.States[1].Name = "a" }, ErrDuplicateState, ""},
		{"unnamed_state", func(d *Definition) { d.States[1].Name = "" }, nil, "without name"},
		{"unknown_from", func(d *Definition) { d.Transitions[0].From = "q" }, ErrUnknownState, ""},
		{"unknown_to", func(d *Definition) { d.Transitions[0].To = "q" }, ErrUnknownState, ""},
		{"unknown_value", func(d *Definition) { d.Transitions[0].When.Value = "mood" }, ErrUnknownValue, ""},
		{"bad_op", func(d *Definition) { d.Transitions[0].When.Op = "=>" }, ErrInvalidOp, ""},
		{"fractional_int_threshold", func(d *Definition) { d.Transitions[0].When.Than = 1.5 }, nil, "integer"},
		{"huge_int_threshold", func(d *Definition) { d.Transitions[0].When.Than = 1e19 }, nil, "out of int range"},
		{"huge_negative_int_threshold", func(d *Definition) { d.Transitions[0].When.Than = -1e19 }, nil, "out of int range"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := base()
			c.mutate(&d)
			_, err := Compile(d, testRegistry(), WithLogger(slogt.New(t)))
			require.Error(t, err)
			if c.target != nil {
				assert.True(t, errors.Is(err, c.target), "got %v", err)
			}
			if c.substr != "" {
				assert.Contains(t, err.Error(), c.substr)
			}
		})
	}
}

func TestCompileScriptLoader(t *testing.T) {
	reg := testRegistry()
	var loaded []string
	reg.Scripts = func(path string) (Behavior[*flagCtx], error) {
		loaded = append(loaded, path)
		return func(c *flagCtx) { c.Flag = 42 }, nil
	}
	def := Definition{
		Name:    "scripted",
		Initial: "a",
		States:  []StateDefinition{{Name: "a", Script: "set.tengo"}},
	}
	m, err := Compile(def, reg, WithLogger(slogt.New(t)))
	require.NoError(t, err)
	assert.Equal(t, []string{"set.tengo"}, loaded)

	ctx := &flagCtx{}
	require.NoError(t, m.Tick(ctx))
	assert.Equal(t, 42, ctx.Flag)
}

func TestMermaid(t *testing.T) {
	def := Definition{
		Name:    "diagram",
		Initial: "detect",
		States:  []StateDefinition{{Name: "detect"}, {Name: "move"}},
		Transitions: []TransitionDefinition{
			{From: "detect", To: "move", When: Condition{Value: "flag", Op: "==", Than: 0}},
			{From: "move", To: "detect", When: Condition{Value: "always"}},
		},
	}
	m, err := Compile(def, testRegistry(), WithLogger(slogt.New(t)))
	require.NoError(t, err)

	out := m.Mermaid()
	assert.True(t, strings.HasPrefix(out, "stateDiagram-v2\n"))
	assert.Contains(t, out, "%% diagram")
	assert.Contains(t, out, `state "detect" as s0`)
	assert.Contains(t, out, `state "move" as s1`)
	assert.Contains(t, out, "[*] --> s0")
	assert.Contains(t, out, "s0 --> s1: flag == 0")
	assert.Contains(t, out, "s1 --> s0: always")
	assert.Contains(t, out, "class s0 active")
}

func TestMermaidKeepsSimilarNamesApart(t *testing.T) {
	tests := []struct {
		name  string
		names []string
	}{
		{"dash_and_underscore", []string{"a-b", "a_b"}},
		{"space_and_underscore", []string{"go home", "go_home"}},
		{"hash_and_s", []string{"#1", "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New[*flagCtx]("names", WithLogger(slogt.New(t)))
			a := mustState(t, m, tt.names[0], nil)
			b := mustState(t, m, tt.names[1], nil)
			mustTransition(t, m, a, b, Always[*flagCtx]())
			require.NoError(t, m.SetInitial(a))

			out := m.Mermaid()
			assert.Contains(t, out, fmt.Sprintf("state \"%s\" as s0", tt.names[0]))
			assert.Contains(t, out, fmt.Sprintf("state \"%s\" as s1", tt.names[1]))
			assert.Contains(t, out, "s0 --> s1: always")
			assert.NotContains(t, out, "s0 --> s0")
		})
	}
}

func TestMermaidEscapesQuotes(t *testing.T) {
	m := New[*flagCtx]("quotes", WithLogger(slogt.New(t)))
	mustState(t, m, `say "hi"`, nil)
	assert.Contains(t, m.Mermaid(), `state "say #quot;hi#quot;" as s0`)
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	m := New[*flagCtx]("metered", WithLogger(slogt.New(t)), WithObserver(metrics))
	a := mustState(t, m, "a", nil)
	b := mustState(t, m, "b", nil)
	mustTransition(t, m, a, b, Always[*flagCtx]())
	require.NoError(t, m.SetInitial(a))

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Tick(&flagCtx{}))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ticks.WithLabelValues("metered", "a")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ticks.WithLabelValues("metered", "b")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues("metered", "a", "b")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveTick("x", "y")
		nilMetrics.ObserveTransition(TransitionEvent{})
	})
}
