package script

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Runtime is a compiled tengo script that exposes a run(engine) function.
// Each Run call hands the script a fresh engine map of host functions.
type Runtime struct {
	name     string
	compiled *tengo.Compiled
}

const dispatch = `
if __run {
	run(__engine)
}
`

// Compile prepares src for repeated execution. The script must define a
// function named run taking the engine map.
func Compile(name string, src []byte) (*Runtime, error) {
	s := tengo.NewScript([]byte(string(src) + "\n" + dispatch))
	_ = s.Add("__run", false)
	_ = s.Add("__engine", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	// Evaluate top-level declarations once so a missing run() is reported
	// at load time rather than on the first tick.
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("script: init %s: %w", name, err)
	}
	if !compiled.IsDefined("run") {
		return nil, fmt.Errorf("script: %s does not define run", name)
	}
	return &Runtime{name: name, compiled: compiled}, nil
}

func (rt *Runtime) Name() string {
	return rt.name
}

// Run executes the script's run function with engine bound to __engine.
func (rt *Runtime) Run(engine map[string]tengo.Object) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("script: nil runtime")
	}
	if err := rt.compiled.Set("__run", true); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", &tengo.ImmutableMap{Value: engine}); err != nil {
		return err
	}
	if err := rt.compiled.Run(); err != nil {
		return fmt.Errorf("script: run %s: %w", rt.name, err)
	}
	return nil
}

// Func wraps a Go function as a tengo callable.
func Func(name string, fn func(args ...tengo.Object) (tengo.Object, error)) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: fn}
}

// Bool converts a Go bool to a tengo value.
func Bool(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

// ArgInt reads args[i] as an integer.
func ArgInt(args []tengo.Object, i int) (int, error) {
	if i >= len(args) {
		return 0, tengo.ErrWrongNumArguments
	}
	v, ok := tengo.ToInt(args[i])
	if !ok {
		return 0, tengo.ErrInvalidArgumentType{Name: fmt.Sprintf("arg%d", i), Expected: "int", Found: args[i].TypeName()}
	}
	return v, nil
}
