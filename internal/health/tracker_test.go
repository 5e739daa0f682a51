package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestApply_Delta(t *testing.T) {
	tr := New([]string{"Garchomp", "Heatran"})
	assert.Equal(t, -30, tr.Apply("Heatran", 70, false))
	assert.Equal(t, 20, tr.Apply("Heatran", 90, false))
	hp, ok := tr.Current("Heatran")
	assert.True(t, ok)
	assert.Equal(t, 90, hp)
	assert.Equal(t, 0, tr.Total("Garchomp"))
}

func TestApply_FaintUsesPreviousHealth(t *testing.T) {
	tr := New([]string{"Heatran"})
	tr.Apply("Heatran", 42, false)
	assert.Equal(t, -42, tr.Apply("Heatran", 80, true))
	hp, _ := tr.Current("Heatran")
	assert.Equal(t, 0, hp)
	assert.Equal(t, 0, tr.Apply("Heatran", 0, true), "fainting twice never goes below zero")
}

func TestApply_UnknownCombatantPanics(t *testing.T) {
	tr := New([]string{"Heatran"})
	assert.Panics(t, func() { tr.Apply("Missingno", 50, false) })
	assert.False(t, tr.Knows("Missingno"))
}

// The running delta sum always equals final health minus starting health.
func TestApply_DeltasSumToFinalHealth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := New([]string{"A"})
		readings := rapid.SliceOf(rapid.IntRange(0, 100)).Draw(t, "readings")
		sum := 0
		for _, r := range readings {
			fainted := r == 0
			d := tr.Apply("A", r, fainted)
			if d < -Start || d > Start {
				t.Fatalf("delta %d out of range", d)
			}
			sum += d
		}
		final, _ := tr.Current("A")
		if sum != final-Start {
			t.Fatalf("sum of deltas %d != final-start %d", sum, final-Start)
		}
		if tr.Total("A") != sum {
			t.Fatalf("Total %d != %d", tr.Total("A"), sum)
		}
	})
}

func TestApply_FaintDeltaIsNegativePrevious(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := New([]string{"A"})
		prev := rapid.IntRange(0, 100).Draw(t, "prev")
		tr.Apply("A", prev, prev == 0)
		if d := tr.Apply("A", rapid.IntRange(0, 100).Draw(t, "noise"), true); d != -prev {
			t.Fatalf("faint delta %d, want %d", d, -prev)
		}
	})
}
