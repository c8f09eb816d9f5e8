package lint

import "testing"

func TestLevelOrdering(t *testing.T) {
	if !(LevelNote < LevelHelp && LevelHelp < LevelWarning && LevelWarning < LevelError) {
		t.Fatal("levels are not ordered note < help < warning < error")
	}
	if !LevelError.MeetsOrExceeds(LevelWarning) {
		t.Error("error should meet a warning threshold")
	}
	if LevelNote.MeetsOrExceeds(LevelWarning) {
		t.Error("note should not meet a warning threshold")
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"note", "help", "warning", "error"} {
		level, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if level.String() != name {
			t.Errorf("round trip %q -> %v", name, level)
		}
	}
	if _, err := ParseLevel("fatal"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSafetyOrdering(t *testing.T) {
	if !(SafetySafe < SafetyPotentiallyUnsafe && SafetyPotentiallyUnsafe < SafetyUnsafe) {
		t.Fatal("safety classes are not ordered safe < potentially-unsafe < unsafe")
	}
}

func TestFixableThreshold(t *testing.T) {
	issue := Issue{Fixes: []Fix{{Safety: SafetyPotentiallyUnsafe}}}
	if issue.Fixable(SafetySafe) {
		t.Error("potentially unsafe fix should not be fixable at the safe threshold")
	}
	if !issue.Fixable(SafetyPotentiallyUnsafe) {
		t.Error("fix at exactly the threshold should be fixable")
	}
	if !issue.Fixable(SafetyUnsafe) {
		t.Error("fix below the threshold should be fixable")
	}
}
