package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/parkkeeper/fsm"
)

const (
	KeeperMachineFile = "park_keeper.yaml"
	MenuMachineFile   = "menu.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadMachine reads a state machine definition.
func LoadMachine(filename string) (fsm.Definition, error) {
	def, err := LoadSpec[fsm.Definition](filename)
	if err != nil {
		return fsm.Definition{}, err
	}
	if def.Name == "" {
		return fsm.Definition{}, fmt.Errorf("prefabs: %s: machine has no name", filename)
	}
	return def, nil
}
