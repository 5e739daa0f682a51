package parser

import (
	"fmt"
	"strings"

	"github.com/pable/go-battle-stats/internal/alias"
	"github.com/pable/go-battle-stats/internal/model"
	"github.com/pable/go-battle-stats/internal/protocol"
)

// Preprocessed is a battle body ready for the accumulator.
type Preprocessed struct {
	Players [2]model.Player
	Lines   []string
	Aliases *alias.Map
}

// significant lists the tags the accumulator acts on. Everything else is
// dropped after fusion.
var significant = map[string]bool{
	"player": true, "poke": true,
	"switch": true, "drag": true, "replace": true,
	"c": true, "c:": true, "chat": true,
	"j": true, "J": true, "join": true,
	"-boost": true, "-unboost": true, "-setboost": true,
	"-heal": true, "-sethp": true, "-damage": true,
	"move": true, "faint": true,
}

// annotations are folded onto the preceding move line.
var annotations = map[string]bool{
	"-crit": true, "-supereffective": true, "-resisted": true,
}

// Preprocess reads declarations and rosters, binds nicknames, resolves them
// across the body, fuses move/damage lines and drops insignificant lines.
func Preprocess(body []string) (*Preprocessed, error) {
	players, err := declarations(body)
	if err != nil {
		return nil, err
	}

	aliases := alias.New()
	for _, p := range players {
		names := make([]string, len(p.Roster))
		for i, c := range p.Roster {
			names[i] = c.Name
		}
		aliases.Reserve(p.Side, names...)
	}
	if err := bindAliases(body, players, aliases); err != nil {
		return nil, err
	}

	resolved := aliases.ResolveAll(body)
	fused := Fuse(resolved)

	lines := make([]string, 0, len(fused))
	for _, l := range fused {
		tag, _ := protocol.Split(l)
		if significant[tag] {
			lines = append(lines, l)
		}
	}
	return &Preprocessed{Players: players, Lines: lines, Aliases: aliases}, nil
}

// declarations reads the first named |player| line of each side and the
// |poke| team preview.
func declarations(body []string) ([2]model.Player, error) {
	var players [2]model.Player
	for _, l := range body {
		ev := protocol.Classify(l)
		idx := sideIndex(ev.Side)
		if idx < 0 {
			continue
		}
		switch ev.Kind {
		case protocol.KindPlayer:
			if players[idx].Name != "" {
				continue
			}
			players[idx].Name = ev.Subject
			players[idx].Key = NormalizeName(ev.Subject)
			players[idx].Side = ev.Side
		case protocol.KindReveal:
			if rosterIndex(players[idx].Roster, ev.Subject) >= 0 {
				continue
			}
			players[idx].Roster = append(players[idx].Roster, model.Combatant{
				Name:   ev.Subject,
				Gender: ev.Gender,
			})
		}
	}
	for i := range players {
		p := &players[i]
		if p.Name == "" {
			return players, fmt.Errorf("%w: missing |player| declaration for p%d", ErrStructure, i+1)
		}
		if len(p.Roster) == 0 {
			return players, fmt.Errorf("%w: no |poke| reveals for %s", ErrStructure, p.Name)
		}
		for j := range p.Roster {
			p.Roster[j].Owner = p.Key
		}
	}
	if players[0].Key == players[1].Key {
		return players, fmt.Errorf("%w: both sides normalize to %q", ErrStructure, players[0].Key)
	}
	return players, nil
}

func bindAliases(body []string, players [2]model.Player, aliases *alias.Map) error {
	for _, l := range body {
		ev := protocol.Classify(l)
		if ev.Kind != protocol.KindSwitch {
			continue
		}
		idx := sideIndex(ev.Side)
		if idx < 0 {
			continue
		}
		canonical, ok := matchRoster(players[idx].Roster, ev.Text)
		if !ok {
			return fmt.Errorf("%w: %s switched in %q which was never revealed", ErrStructure, players[idx].Name, ev.Text)
		}
		aliases.Record(ev.Side, ev.Subject, canonical)
	}
	return nil
}

// matchRoster finds the roster name for a switch-in species. Team preview
// hides some formes ("Urshifu-*"), so a forme matches its base entry.
func matchRoster(roster []model.Combatant, species string) (string, bool) {
	if rosterIndex(roster, species) >= 0 {
		return species, true
	}
	for _, c := range roster {
		base := strings.TrimSuffix(c.Name, "-*")
		if species == base || strings.HasPrefix(species, base+"-") || strings.HasPrefix(base, species+"-") {
			return c.Name, true
		}
	}
	return "", false
}

func rosterIndex(roster []model.Combatant, name string) int {
	for i, c := range roster {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func sideIndex(side string) int {
	switch side {
	case "p1":
		return 0
	case "p2":
		return 1
	}
	return -1
}

// Fuse joins each move line with the annotation lines and unattributed damage
// lines on the move's target that immediately follow it.
func Fuse(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		tag, f := protocol.Split(lines[i])
		if tag != "move" || len(f) < 2 {
			out = append(out, lines[i])
			continue
		}
		target := f[1]
		if len(f) > 3 {
			if _, _, ok := protocol.ParseIdent(f[3]); ok {
				target = f[3]
			}
		}
		var sb strings.Builder
		sb.WriteString(lines[i])
		j := i + 1
		for ; j < len(lines); j++ {
			if !fusable(lines[j], target) {
				break
			}
			sb.WriteString(protocol.FuseMarker)
			sb.WriteString(lines[j])
		}
		out = append(out, sb.String())
		i = j - 1
	}
	return out
}

func fusable(line, target string) bool {
	tag, f := protocol.Split(line)
	if annotations[tag] {
		return true
	}
	if tag != "-damage" || len(f) < 3 {
		return false
	}
	for _, extra := range f[3:] {
		if strings.HasPrefix(extra, "[from]") {
			return false
		}
	}
	return samePosition(f[1], target)
}

// samePosition compares identities by side and name, ignoring the slot letter.
func samePosition(a, b string) bool {
	sa, na, ok1 := protocol.ParseIdent(a)
	sb, nb, ok2 := protocol.ParseIdent(b)
	return ok1 && ok2 && sa == sb && na == nb
}
