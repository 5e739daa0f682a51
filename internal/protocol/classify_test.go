package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-battle-stats/internal/model"
)

func TestParseHealth(t *testing.T) {
	cases := []struct {
		in      string
		pct     int
		fainted bool
		status  string
	}{
		{"100/100", 100, false, ""},
		{"70/100", 70, false, ""},
		{"88/100 tox", 88, false, "tox"},
		{"0 fnt", 0, true, "fnt"},
		{"171/341", 50, false, ""},
		{"1/341", 1, false, ""},
		{"0/100", 0, true, ""},
	}
	for _, c := range cases {
		h, err := ParseHealth(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.pct, h.Percent, c.in)
		assert.Equal(t, c.fainted, h.Fainted, c.in)
		assert.Equal(t, c.status, h.Status, c.in)
	}
}

func TestParseHealth_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "10/0", "10/x"} {
		_, err := ParseHealth(in)
		assert.Error(t, err, in)
	}
}

func TestParseIdent(t *testing.T) {
	side, name, ok := ParseIdent("p2a: Mr. Mime: Galar")
	require.True(t, ok)
	assert.Equal(t, "p2", side)
	assert.Equal(t, "Mr. Mime: Galar", name)

	_, _, ok = ParseIdent("Garchomp")
	assert.False(t, ok)
}

func TestParseDetails(t *testing.T) {
	species, g := ParseDetails("Garchomp, L50, F, shiny")
	assert.Equal(t, "Garchomp", species)
	assert.Equal(t, model.GenderFemale, g)

	species, g = ParseDetails("Magnezone")
	assert.Equal(t, "Magnezone", species)
	assert.Equal(t, model.GenderGenderless, g)
}

func TestClassify_Declarations(t *testing.T) {
	ev := Classify("|player|p1|Player One|266|1500")
	assert.Equal(t, KindPlayer, ev.Kind)
	assert.Equal(t, "p1", ev.Side)
	assert.Equal(t, "Player One", ev.Subject)

	assert.Equal(t, KindNone, Classify("|player|p1|").Kind)

	ev = Classify("|poke|p2|Clefable, M|")
	assert.Equal(t, KindReveal, ev.Kind)
	assert.Equal(t, "Clefable", ev.Subject)
	assert.Equal(t, model.GenderMale, ev.Gender)

	ev = Classify("|switch|p1a: Chompy|Garchomp, L50, F|100/100")
	assert.Equal(t, KindSwitch, ev.Kind)
	assert.Equal(t, "Chompy", ev.Subject)
	assert.Equal(t, "Garchomp", ev.Text)
	assert.True(t, ev.HasHP)
	assert.Equal(t, 100, ev.HP.Percent)
}

func TestClassify_ChatAndJoin(t *testing.T) {
	ev := Classify("|c|☆PlayerOne|hello there")
	assert.Equal(t, KindChat, ev.Kind)
	assert.Equal(t, "☆PlayerOne", ev.Subject)
	assert.Equal(t, "hello there", ev.Text)

	ev = Classify("|c|PlayerOne|a|b")
	assert.Equal(t, "a|b", ev.Text, "pipes inside a message belong to the message")

	ev = Classify("|c:|1700000000|+Mod|hi")
	assert.Equal(t, KindChat, ev.Kind)
	assert.Equal(t, "+Mod", ev.Subject)
	assert.Equal(t, "hi", ev.Text)

	ev = Classify("|j|☆PlayerTwo")
	assert.Equal(t, KindJoin, ev.Kind)
	assert.Equal(t, "☆PlayerTwo", ev.Subject)
}

func TestClassify_Boosts(t *testing.T) {
	ev := Classify("|-boost|p1a: Garchomp|atk|2")
	assert.Equal(t, KindBoost, ev.Kind)
	assert.Equal(t, 2, ev.Value)

	ev = Classify("|-unboost|p2a: Clefable|def|1")
	assert.Equal(t, KindBoost, ev.Kind)
	assert.Equal(t, -1, ev.Value)

	ev = Classify("|-setboost|p1a: Azumarill|atk|6|[from] move: Belly Drum")
	assert.Equal(t, KindBoost, ev.Kind)
	assert.Equal(t, 6, ev.Value)

	assert.Equal(t, KindNone, Classify("|-copyboost|p1a: A|p2a: B|[from] move: Psych Up").Kind)
	assert.Equal(t, KindNone, Classify("|-unboost|p2a: Clefable|atk|1|[from] ability: Intimidate|[of] p1a: Gyarados").Kind)
}

func TestClassify_DamageCauses(t *testing.T) {
	cases := []struct {
		line  string
		cause Cause
	}{
		{"|-damage|p1a: Garchomp|88/100 tox|[from] psn", CauseToxic},
		{"|-damage|p1a: Garchomp|88/100 psn|[from] psn", CausePoison},
		{"|-damage|p1a: Garchomp|94/100 brn|[from] brn", CauseBurn},
		{"|-damage|p1a: Garchomp|90/100|[from] item: Life Orb", CauseItem},
		{"|-damage|p1a: Garchomp|88/100|[from] Stealth Rock", CauseStealthRock},
		{"|-damage|p1a: Garchomp|88/100|[from] Spikes", CauseSpikes},
		{"|-damage|p1a: Garchomp|75/100|[from] Recoil", CauseRecoil},
		{"|-damage|p1a: Garchomp|94/100|[from] Sandstorm", CauseOther},
		{"|-damage|p1a: Garchomp|60/100", CauseNone},
	}
	for _, c := range cases {
		ev := Classify(c.line)
		require.Equal(t, KindDamage, ev.Kind, c.line)
		assert.Equal(t, c.cause, ev.Cause, c.line)
		assert.Equal(t, "Garchomp", ev.Subject, c.line)
	}
}

func TestClassify_Heal(t *testing.T) {
	ev := Classify("|-heal|p2a: Clefable|90/100|[from] item: Leftovers")
	assert.Equal(t, KindHeal, ev.Kind)
	assert.Equal(t, 90, ev.HP.Percent)

	ev = Classify("|-sethp|p2a: Clefable|50/100|[from] move: Pain Split")
	assert.Equal(t, KindSetHP, ev.Kind)
}

func TestClassify_FusedMove(t *testing.T) {
	line := "|move|p1a: Garchomp|Earthquake|p2a: Heatran" + FuseMarker +
		"|-supereffective|p2a: Heatran" + FuseMarker +
		"|-crit|p2a: Heatran" + FuseMarker +
		"|-damage|p2a: Heatran|0 fnt"
	ev := Classify(line)
	require.Equal(t, KindMove, ev.Kind)
	assert.Equal(t, "Garchomp", ev.Subject)
	assert.Equal(t, "Heatran", ev.Target)
	assert.Equal(t, "Earthquake", ev.Text)
	assert.True(t, ev.Damaged)
	assert.True(t, ev.HP.Fainted)
	assert.True(t, ev.Crit)
	assert.Equal(t, 1, ev.Effectiveness)
}

func TestClassify_MoveWithoutResult(t *testing.T) {
	ev := Classify("|move|p2a: Clefable|Moonblast|p1a: Garchomp|[miss]")
	require.Equal(t, KindMove, ev.Kind)
	assert.False(t, ev.Damaged)
	assert.Equal(t, "Garchomp", ev.Target)

	ev = Classify("|move|p2a: Clefable|Calm Mind|")
	assert.Equal(t, "Clefable", ev.Target, "untargeted moves target the user")
}

func TestClassify_Unknown(t *testing.T) {
	for _, line := range []string{"|turn|3", "|-crit|p1a: X", "", "not a protocol line", "|upkeep"} {
		assert.Equal(t, KindNone, Classify(line).Kind, line)
	}
}
