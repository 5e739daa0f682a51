package protocol

import (
	"strconv"
	"strings"
)

type handler func(tag string, fields []string) Event

// handlers dispatches on the tag that follows the leading pipe.
var handlers = map[string]handler{
	"player":    classifyPlayer,
	"poke":      classifyReveal,
	"switch":    classifySwitch,
	"drag":      classifySwitch,
	"replace":   classifySwitch,
	"c":         classifyChat,
	"chat":      classifyChat,
	"c:":        classifyChat,
	"j":         classifyJoin,
	"J":         classifyJoin,
	"join":      classifyJoin,
	"-boost":    classifyBoost,
	"-unboost":  classifyBoost,
	"-setboost": classifyBoost,
	"-heal":     classifyHeal,
	"-sethp":    classifyHeal,
	"-damage":   classifyDamage,
	"move":      classifyMove,
	"faint":     classifyFaint,
}

// causeRule maps a "[from]" annotation onto a damage cause. Rules are
// evaluated in order, most specific first.
type causeRule struct {
	match func(from string, hp Health) bool
	cause Cause
}

var causeRules = []causeRule{
	{func(from string, hp Health) bool { return from == "tox" || (from == "psn" && hp.Status == "tox") }, CauseToxic},
	{func(from string, _ Health) bool { return from == "psn" }, CausePoison},
	{func(from string, _ Health) bool { return from == "brn" }, CauseBurn},
	{func(from string, _ Health) bool { return strings.HasPrefix(from, "item:") }, CauseItem},
	{func(from string, _ Health) bool { return from == "Stealth Rock" }, CauseStealthRock},
	{func(from string, _ Health) bool { return from == "Spikes" }, CauseSpikes},
	{func(from string, _ Health) bool { return from == "Recoil" || from == "recoil" }, CauseRecoil},
}

func causeOf(from string, hp Health) Cause {
	for _, r := range causeRules {
		if r.match(from, hp) {
			return r.cause
		}
	}
	return CauseOther
}

// Split returns the pipe-separated fields of a line and its tag.
// The leading empty field is dropped.
func Split(line string) (tag string, fields []string) {
	rest, ok := strings.CutPrefix(line, "|")
	if !ok {
		return "", nil
	}
	fields = strings.Split(rest, "|")
	return fields[0], fields
}

// Classify returns the event carried by one preprocessed line. Lines that
// carry no trackable statistic yield an Event with KindNone.
func Classify(line string) Event {
	if strings.Contains(line, FuseMarker) {
		return classifyFused(strings.Split(line, FuseMarker))
	}
	tag, fields := Split(line)
	h, ok := handlers[tag]
	if !ok {
		return Event{Kind: KindNone, Tag: tag}
	}
	return h(tag, fields)
}

func none(tag string) Event { return Event{Kind: KindNone, Tag: tag} }

// |player|p1|Name|avatar|rating
func classifyPlayer(tag string, f []string) Event {
	if len(f) < 3 || strings.TrimSpace(f[2]) == "" {
		return none(tag)
	}
	return Event{Kind: KindPlayer, Tag: tag, Side: f[1], Subject: f[2]}
}

// |poke|p1|Garchomp, F|item
func classifyReveal(tag string, f []string) Event {
	if len(f) < 3 {
		return none(tag)
	}
	species, gender := ParseDetails(f[2])
	return Event{Kind: KindReveal, Tag: tag, Side: f[1], Subject: species, Gender: gender}
}

// |switch|p1a: Nick|Garchomp, L50, F|100/100
func classifySwitch(tag string, f []string) Event {
	if len(f) < 3 {
		return none(tag)
	}
	side, name, ok := ParseIdent(f[1])
	if !ok {
		return none(tag)
	}
	species, gender := ParseDetails(f[2])
	ev := Event{Kind: KindSwitch, Tag: tag, Side: side, Subject: name, Text: species, Gender: gender}
	if len(f) > 3 {
		if hp, err := ParseHealth(f[3]); err == nil {
			ev.HP, ev.HasHP = hp, true
		}
	}
	return ev
}

// |c|☆User|message, |c:|timestamp|User|message
func classifyChat(tag string, f []string) Event {
	user, msg := 1, 2
	if tag == "c:" {
		user, msg = 2, 3
	}
	if len(f) <= msg {
		return none(tag)
	}
	return Event{Kind: KindChat, Tag: tag, Subject: f[user], Text: strings.Join(f[msg:], "|")}
}

// |j|☆User
func classifyJoin(tag string, f []string) Event {
	if len(f) < 2 || strings.TrimSpace(f[1]) == "" {
		return none(tag)
	}
	return Event{Kind: KindJoin, Tag: tag, Subject: f[1]}
}

// |-boost|p1a: X|atk|2, |-unboost|...|1, |-setboost|...|6
func classifyBoost(tag string, f []string) Event {
	if len(f) < 4 {
		return none(tag)
	}
	if tag == "-unboost" && hasField(f[4:], "[of]") {
		return none(tag)
	}
	side, name, ok := ParseIdent(f[1])
	if !ok {
		return none(tag)
	}
	n, err := strconv.Atoi(strings.TrimSpace(f[3]))
	if err != nil {
		return none(tag)
	}
	if tag == "-unboost" {
		n = -n
	}
	return Event{Kind: KindBoost, Tag: tag, Side: side, Subject: name, Value: n}
}

// |-heal|p1a: X|90/100|[from] item: Leftovers, |-sethp|p1a: X|50/100
func classifyHeal(tag string, f []string) Event {
	ev, ok := healthEvent(tag, f)
	if !ok {
		return none(tag)
	}
	ev.Kind = KindHeal
	if tag == "-sethp" {
		ev.Kind = KindSetHP
	}
	return ev
}

// |-damage|p1a: X|88/100 tox|[from] psn
func classifyDamage(tag string, f []string) Event {
	ev, ok := healthEvent(tag, f)
	if !ok {
		return none(tag)
	}
	ev.Kind = KindDamage
	if from, ok := fieldValue(f[3:], "[from]"); ok {
		ev.Source = from
		ev.Cause = causeOf(from, ev.HP)
	}
	return ev
}

func healthEvent(tag string, f []string) (Event, bool) {
	if len(f) < 3 {
		return Event{}, false
	}
	side, name, ok := ParseIdent(f[1])
	if !ok {
		return Event{}, false
	}
	hp, err := ParseHealth(f[2])
	if err != nil {
		return Event{}, false
	}
	return Event{Tag: tag, Side: side, Subject: name, HP: hp, HasHP: true}, true
}

// |move|p1a: A|Earthquake|p2a: B
func classifyMove(tag string, f []string) Event {
	if len(f) < 3 {
		return none(tag)
	}
	side, attacker, ok := ParseIdent(f[1])
	if !ok {
		return none(tag)
	}
	targetSide, target := side, attacker
	if len(f) > 3 {
		if ts, t, ok := ParseIdent(f[3]); ok {
			targetSide, target = ts, t
		}
	}
	return Event{Kind: KindMove, Tag: tag, Side: side, Subject: attacker, TargetSide: targetSide, Target: target, Text: f[2]}
}

// |faint|p2a: X
func classifyFaint(tag string, f []string) Event {
	if len(f) < 2 {
		return none(tag)
	}
	side, name, ok := ParseIdent(f[1])
	if !ok {
		return none(tag)
	}
	return Event{Kind: KindFaint, Tag: tag, Side: side, Subject: name, HP: Health{Fainted: true}, HasHP: true}
}

// classifyFused reads a move line joined with its annotation and damage
// result lines. The last damage result wins.
func classifyFused(parts []string) Event {
	tag, f := Split(parts[0])
	if tag != "move" {
		return none(tag)
	}
	ev := classifyMove(tag, f)
	if ev.Kind != KindMove {
		return ev
	}
	for _, p := range parts[1:] {
		ptag, pf := Split(p)
		switch ptag {
		case "-crit":
			ev.Crit = true
		case "-supereffective":
			ev.Effectiveness = 1
		case "-resisted":
			ev.Effectiveness = -1
		case "-damage":
			d, ok := healthEvent(ptag, pf)
			if !ok || d.Side != ev.TargetSide || d.Subject != ev.Target {
				continue
			}
			ev.HP, ev.HasHP, ev.Damaged = d.HP, true, true
		}
	}
	return ev
}
