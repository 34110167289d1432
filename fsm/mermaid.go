package fsm

import (
	"fmt"
	"strings"
)

// Mermaid renders the machine as a mermaid stateDiagram-v2. Nodes are keyed
// by StateID (s0, s1, ...) and labelled with the state name, so distinct
// names never share a node. The initial state is marked with an entry arrow
// and the active state is highlighted.
func (m *Machine[C]) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	if m.name != "" {
		sb.WriteString(fmt.Sprintf("    %%%% %s\n", m.name))
	}
	for i := range m.states {
		id := StateID(i)
		sb.WriteString(fmt.Sprintf("    state \"%s\" as %s\n", mermaidLabel(m.StateName(id)), mermaidID(id)))
	}
	if m.owns(m.initial) {
		sb.WriteString(fmt.Sprintf("    [*] --> %s\n", mermaidID(m.initial)))
	}
	for i := range m.states {
		from := StateID(i)
		for _, tid := range m.outgoing[from] {
			t := m.transitions[tid]
			label := mermaidLabel(describePredicate(t.when))
			if label != "" {
				label = ": " + label
			}
			sb.WriteString(fmt.Sprintf("    %s --> %s%s\n", mermaidID(t.from), mermaidID(t.to), label))
		}
	}
	if m.owns(m.active) {
		sb.WriteString(fmt.Sprintf("    class %s active\n", mermaidID(m.active)))
		sb.WriteString("    classDef active fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
	}
	return sb.String()
}

func mermaidID(id StateID) string {
	return fmt.Sprintf("s%d", id)
}

// mermaidLabel escapes characters that would end a quoted label.
func mermaidLabel(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "\n", " ").Replace(s)
}
