// Package health tracks the health percentage of every combatant in one match.
package health

import "fmt"

// Start is the health every combatant begins a match with.
const Start = 100

// Tracker holds current health per canonical combatant name. A Tracker
// belongs to exactly one match.
type Tracker struct {
	current map[string]int
	total   map[string]int
}

// New returns a tracker with every named combatant at full health.
func New(names []string) *Tracker {
	t := &Tracker{
		current: make(map[string]int, len(names)),
		total:   make(map[string]int, len(names)),
	}
	for _, n := range names {
		t.current[n] = Start
	}
	return t
}

// Apply records a new health reading and returns new minus previous health.
// A faint is a reading of zero regardless of hp. Referencing a combatant the
// tracker was not built with panics.
func (t *Tracker) Apply(name string, hp int, fainted bool) int {
	prev, ok := t.current[name]
	if !ok {
		panic(fmt.Sprintf("health: unknown combatant %q", name))
	}
	if fainted {
		hp = 0
	}
	hp = min(max(hp, 0), Start)
	delta := hp - prev
	t.current[name] = hp
	t.total[name] += delta
	return delta
}

// Current returns the last recorded health.
func (t *Tracker) Current(name string) (int, bool) {
	hp, ok := t.current[name]
	return hp, ok
}

// Total returns the running sum of deltas applied to name.
func (t *Tracker) Total(name string) int {
	return t.total[name]
}

// Knows reports whether name was part of the match roster.
func (t *Tracker) Knows(name string) bool {
	_, ok := t.current[name]
	return ok
}
