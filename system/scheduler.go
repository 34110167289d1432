package system

import "fmt"

// System is one step of the frame update.
type System interface {
	Name() string
	Update(w *World) error
}

// Scheduler runs systems in registration order. The first failing system
// stops the frame.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := make([]System, 0, len(systems))
	for _, s := range systems {
		if s != nil {
			copied = append(copied, s)
		}
	}
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(w *World) error {
	for _, system := range s.systems {
		if err := system.Update(w); err != nil {
			return fmt.Errorf("%s: %w", system.Name(), err)
		}
	}
	return nil
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
