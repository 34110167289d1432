package fsm

import "log/slog"

// TransitionEvent describes a transition taken during a Tick.
type TransitionEvent struct {
	Machine    string
	Transition TransitionID
	From       StateID
	To         StateID
	FromName   string
	ToName     string
	Tick       uint64
}

// Observer receives notifications from Tick. Observers run synchronously
// inside Tick and must not call back into the machine.
type Observer interface {
	ObserveTick(machine, state string)
	ObserveTransition(ev TransitionEvent)
}

// LogObserver logs every transition at info level.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) ObserveTick(string, string) {}

func (o LogObserver) ObserveTransition(ev TransitionEvent) {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("state changed",
		"machine", ev.Machine,
		"from", ev.FromName,
		"to", ev.ToName,
		"tick", ev.Tick,
	)
}
