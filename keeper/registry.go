package keeper

import (
	"fmt"

	"github.com/d5/tengo/v2"

	"github.com/milk9111/parkkeeper/fsm"
	"github.com/milk9111/parkkeeper/prefabs"
	"github.com/milk9111/parkkeeper/script"
)

// ScriptSource returns the source of a named script.
type ScriptSource func(name string) ([]byte, error)

// Registry exposes the keeper behaviors and the flag to machine
// definitions. Scripts are read through src; a nil src disables them.
func Registry(src ScriptSource) fsm.Registry[*Context] {
	reg := fsm.Registry[*Context]{
		Behaviors: map[string]fsm.Behavior[*Context]{
			StateMove:   Move,
			StateDetect: Detect,
			StateReturn: Return,
			StateTouch:  Touch,
		},
		Ints: map[string]func(*Context) int{
			"flag": readFlag,
		},
	}
	if src != nil {
		reg.Scripts = func(name string) (fsm.Behavior[*Context], error) {
			data, err := src(name)
			if err != nil {
				return nil, fmt.Errorf("keeper: load script %s: %w", name, err)
			}
			rt, err := script.Compile(name, data)
			if err != nil {
				return nil, err
			}
			return scriptBehavior(rt), nil
		}
	}
	return reg
}

func scriptBehavior(rt *script.Runtime) fsm.Behavior[*Context] {
	return func(c *Context) {
		if err := rt.Run(engine(c)); err != nil && c.Err == nil {
			c.Err = err
		}
	}
}

// engine binds the keeper context to the functions a script can call.
func engine(c *Context) map[string]tengo.Object {
	return map[string]tengo.Object{
		"flag": script.Func("flag", func(args ...tengo.Object) (tengo.Object, error) {
			return &tengo.Int{Value: int64(c.Flag)}, nil
		}),
		"set_flag": script.Func("set_flag", func(args ...tengo.Object) (tengo.Object, error) {
			v, err := script.ArgInt(args, 0)
			if err != nil {
				return nil, err
			}
			c.Flag = v
			return tengo.UndefinedValue, nil
		}),
		"goose_has_apple": script.Func("goose_has_apple", func(args ...tengo.Object) (tengo.Object, error) {
			return script.Bool(c.Park.GooseHasApple()), nil
		}),
		"return_apple": script.Func("return_apple", func(args ...tengo.Object) (tengo.Object, error) {
			c.Park.ReturnApple()
			return tengo.UndefinedValue, nil
		}),
		"add_score": script.Func("add_score", func(args ...tengo.Object) (tengo.Object, error) {
			v, err := script.ArgInt(args, 0)
			if err != nil {
				return nil, err
			}
			c.Park.AddScore(v)
			return tengo.UndefinedValue, nil
		}),
		"distance_sq": script.Func("distance_sq", func(args ...tengo.Object) (tengo.Object, error) {
			d := distanceSq(c.Park.KeeperPosition(), c.Park.GoosePosition())
			return &tengo.Float{Value: d}, nil
		}),
	}
}

// New compiles def against the keeper registry.
func New(def fsm.Definition, src ScriptSource, opts ...fsm.Option) (*fsm.Machine[*Context], error) {
	return fsm.Compile(def, Registry(src), opts...)
}

// Load builds the keeper machine from its prefab definition and scripts.
func Load(opts ...fsm.Option) (*fsm.Machine[*Context], error) {
	def, err := prefabs.LoadMachine(prefabs.KeeperMachineFile)
	if err != nil {
		return nil, err
	}
	return New(def, prefabs.LoadScript, opts...)
}
