package fsm

import (
	"cmp"
	"fmt"
	"strings"
)

// Op is the comparison a Comparison applies between its live and fixed operand.
type Op uint8

const (
	// OpNone is the zero Op. Comparisons carrying it never evaluate true.
	OpNone Op = iota
	GreaterThan
	LessThan
	Equals
	NotEquals
)

func (o Op) String() string {
	switch o {
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case Equals:
		return "=="
	case NotEquals:
		return "!="
	default:
		return "none"
	}
}

// ParseOp maps the YAML spelling of an operator to an Op. An empty string
// yields OpNone without error.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return OpNone, nil
	case ">", "gt", "greater_than":
		return GreaterThan, nil
	case "<", "lt", "less_than":
		return LessThan, nil
	case "==", "eq", "equals":
		return Equals, nil
	case "!=", "ne", "not_equals":
		return NotEquals, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrInvalidOp, s)
}

func compare[T cmp.Ordered](op Op, a, b T) bool {
	switch op {
	case GreaterThan:
		return a > b
	case LessThan:
		return a < b
	case Equals:
		return a == b
	case NotEquals:
		return a != b
	default:
		return false
	}
}

// Predicate decides whether a transition should be taken.
// Implementations must not mutate ctx.
type Predicate[C any] interface {
	Evaluate(ctx C) bool
}

// Comparison compares a live read of the context with a fixed value.
// Read is called on every evaluation; nothing is cached.
type Comparison[C any, T cmp.Ordered] struct {
	Name  string
	Read  func(C) T
	Op    Op
	Value T
}

// Compare builds a Comparison. name is only used for diagrams and logs.
func Compare[C any, T cmp.Ordered](name string, read func(C) T, op Op, value T) Comparison[C, T] {
	return Comparison[C, T]{Name: name, Read: read, Op: op, Value: value}
}

func (p Comparison[C, T]) Evaluate(ctx C) bool {
	if p.Read == nil {
		return false
	}
	return compare(p.Op, p.Read(ctx), p.Value)
}

func (p Comparison[C, T]) String() string {
	name := p.Name
	if name == "" {
		name = "value"
	}
	return fmt.Sprintf("%s %s %v", name, p.Op, p.Value)
}

// Ref compares the value behind ptr with value, ignoring the context.
// A nil ptr yields a comparison that never fires.
func Ref[C any, T cmp.Ordered](name string, ptr *T, op Op, value T) Comparison[C, T] {
	var read func(C) T
	if ptr != nil {
		read = func(C) T { return *ptr }
	}
	return Compare(name, read, op, value)
}

// Func adapts a plain function. A nil function never fires.
type Func[C any] func(ctx C) bool

func (f Func[C]) Evaluate(ctx C) bool {
	if f == nil {
		return false
	}
	return f(ctx)
}

type constant[C any] bool

func (c constant[C]) Evaluate(C) bool { return bool(c) }

func (c constant[C]) String() string {
	if c {
		return "always"
	}
	return "never"
}

// Always returns a predicate that is true on every evaluation.
func Always[C any]() Predicate[C] {
	return constant[C](true)
}

// Never returns a predicate that is false on every evaluation.
func Never[C any]() Predicate[C] {
	return constant[C](false)
}

func evaluate[C any](p Predicate[C], ctx C) bool {
	if p == nil {
		return false
	}
	return p.Evaluate(ctx)
}

func describePredicate[C any](p Predicate[C]) string {
	if p == nil {
		return "never"
	}
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}
