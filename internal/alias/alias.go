// Package alias maps in-battle nicknames onto canonical combatant names.
//
// Resolution rewrites identity fields ("p1a: Nick" and "[of] p1a: Nick")
// rather than substituting raw text, so a nickname that happens to be a
// substring of other text is left alone. Text outside identity fields (a
// move name equal to a nickname, for example) is never rewritten.
package alias

import (
	"strings"

	"github.com/pable/go-battle-stats/internal/protocol"
)

type key struct{ side, nickname string }

// Map holds the nickname bindings of one match.
type Map struct {
	bindings map[key]string
	reserved map[key]bool
}

func New() *Map {
	return &Map{bindings: make(map[key]string), reserved: make(map[key]bool)}
}

// Reserve marks canonical names of a side's roster. A reserved name is never
// accepted as a nickname, which keeps resolution idempotent.
func (m *Map) Reserve(side string, names ...string) {
	for _, n := range names {
		m.reserved[key{side, n}] = true
	}
}

// Record binds nickname to canonical for side. The first binding for a
// nickname wins; identical names and reserved names are ignored.
func (m *Map) Record(side, nickname, canonical string) bool {
	if nickname == canonical || nickname == "" {
		return false
	}
	k := key{side, nickname}
	if m.reserved[k] {
		return false
	}
	if _, ok := m.bindings[k]; ok {
		return false
	}
	m.bindings[k] = canonical
	return true
}

// Lookup returns the canonical name bound to a side's nickname.
func (m *Map) Lookup(side, nickname string) (string, bool) {
	c, ok := m.bindings[key{side, nickname}]
	return c, ok
}

func (m *Map) Len() int { return len(m.bindings) }

// Bindings returns "side: nickname" -> canonical.
func (m *Map) Bindings() map[string]string {
	out := make(map[string]string, len(m.bindings))
	for k, v := range m.bindings {
		out[k.side+": "+k.nickname] = v
	}
	return out
}

// ResolveAll rewrites every identity field bound in m across lines.
func (m *Map) ResolveAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = m.ResolveLine(l)
	}
	return out
}

// ResolveLine rewrites the identity fields of one line, fused or not.
func (m *Map) ResolveLine(line string) string {
	if len(m.bindings) == 0 {
		return line
	}
	if strings.Contains(line, protocol.FuseMarker) {
		parts := strings.Split(line, protocol.FuseMarker)
		for i, p := range parts {
			parts[i] = m.resolveSingle(p)
		}
		return strings.Join(parts, protocol.FuseMarker)
	}
	return m.resolveSingle(line)
}

func (m *Map) resolveSingle(line string) string {
	tag, fields := protocol.Split(line)
	switch tag {
	case "", "c", "c:", "chat", "j", "J", "join", "player", "poke":
		return line
	}
	changed := false
	for i, f := range fields {
		if r, ok := m.resolveField(f); ok {
			fields[i] = r
			changed = true
		}
	}
	if !changed {
		return line
	}
	return "|" + strings.Join(fields, "|")
}

func (m *Map) resolveField(f string) (string, bool) {
	prefix := ""
	if rest, ok := strings.CutPrefix(f, "[of] "); ok {
		prefix, f = "[of] ", rest
	}
	side, name, ok := protocol.ParseIdent(f)
	if !ok {
		return "", false
	}
	canonical, ok := m.bindings[key{side, name}]
	if !ok {
		return "", false
	}
	pos, _, _ := strings.Cut(f, ": ")
	return prefix + pos + ": " + canonical, true
}
