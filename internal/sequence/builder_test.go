package sequence

import (
	"math/rand"
	"testing"

	"github.com/perceptlab/buttonbox/internal/models"
)

func TestBuildRoster(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)))
	conditions, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(conditions) != 8 {
		t.Fatalf("Expected 8 conditions, got %d", len(conditions))
	}

	seen := make(map[string]bool)
	for _, c := range conditions {
		if seen[c.Name] {
			t.Errorf("Duplicate condition name %q", c.Name)
		}
		seen[c.Name] = true

		if len(c.Trials) != 10 {
			t.Errorf("Condition %q has %d trials, want 10", c.Name, len(c.Trials))
		}
	}

	for _, name := range []string{
		"Go - Feet Apart", "No Go - Feet Apart", "No Shift - Feet Apart", "Shift - Feet Apart",
		"Go - Feet Together", "No Go - Feet Together", "No Shift - Feet Together", "Shift - Feet Together",
	} {
		if !seen[name] {
			t.Errorf("Missing condition %q", name)
		}
	}
}

func TestMixedConditionCounts(t *testing.T) {
	b := New(rand.New(rand.NewSource(2)))
	conditions, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, c := range conditions {
		counts := make(map[models.Pattern]int)
		for _, tr := range c.Trials {
			counts[tr.Pattern]++
		}

		switch c.Name {
		case "No Go - Feet Apart", "No Go - Feet Together":
			if counts[models.PatternGoBlue] != 8 || counts[models.PatternStopRed] != 2 {
				t.Errorf("Condition %q counts = %v, want 8 GO_BLUE + 2 STOP_RED", c.Name, counts)
			}
		case "Shift - Feet Apart", "Shift - Feet Together":
			if counts[models.PatternOnlyBlue] != 8 || counts[models.PatternOnlyRed] != 2 {
				t.Errorf("Condition %q counts = %v, want 8 ONLY_BLUE + 2 ONLY_RED", c.Name, counts)
			}
		case "Go - Feet Apart", "Go - Feet Together":
			if counts[models.PatternGoBlue] != 10 {
				t.Errorf("Condition %q counts = %v, want 10 GO_BLUE", c.Name, counts)
			}
		case "No Shift - Feet Apart", "No Shift - Feet Together":
			if counts[models.PatternOnlyBlue] != 10 {
				t.Errorf("Condition %q counts = %v, want 10 ONLY_BLUE", c.Name, counts)
			}
		}
	}
}

func TestNoAdjacentInterruptsOverRepeatedBuilds(t *testing.T) {
	// The adjacency rule must hold for every shuffle outcome, so check a
	// large number of independently seeded builds.
	for seed := int64(0); seed < 500; seed++ {
		b := New(rand.New(rand.NewSource(seed)))
		conditions, err := b.Build()
		if err != nil {
			t.Fatalf("Build with seed %d failed: %v", seed, err)
		}
		for _, c := range conditions {
			for i := 0; i < len(c.Trials)-1; i++ {
				if c.Trials[i].Pattern.Interrupt() && c.Trials[i+1].Pattern.Interrupt() {
					t.Fatalf("Seed %d condition %q: adjacent interrupt trials at %d/%d",
						seed, c.Name, i, i+1)
				}
			}
		}
	}
}

func TestConditionOrderIsShuffled(t *testing.T) {
	// Two differently seeded builds should produce different orders at least
	// once across several tries; identical orders every time would mean the
	// roster shuffle is missing.
	base := orderOf(t, 100)
	for seed := int64(101); seed < 110; seed++ {
		if orderOf(t, seed) != base {
			return
		}
	}
	t.Error("Condition order identical across 10 seeds; roster shuffle appears inert")
}

func orderOf(t *testing.T, seed int64) string {
	t.Helper()
	b := New(rand.New(rand.NewSource(seed)))
	conditions, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var order string
	for _, c := range conditions {
		order += c.Name + "|"
	}
	return order
}
