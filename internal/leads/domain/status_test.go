package domain

import "testing"

func TestStatusLevels(t *testing.T) {
	cases := []struct {
		status Status
		level  int
	}{
		{StatusNew, 0},
		{StatusContacted, 1},
		{StatusQualified, 2},
		{StatusConverted, 3},
		{StatusLost, -1},
	}
	for _, c := range cases {
		if got := c.status.Level(); got != c.level {
			t.Fatalf("level of %s: expected %d, got %d", c.status, c.level, got)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range All() {
		if !s.IsValid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if Status("Archived").IsValid() {
		t.Fatal("expected Archived to be invalid")
	}
	if Status("").IsValid() {
		t.Fatal("expected empty status to be invalid")
	}
}

func TestUnknownStatusUsesLostSentinelLevel(t *testing.T) {
	if got := Status("Archived").Level(); got != LostLevel {
		t.Fatalf("expected sentinel level %d, got %d", LostLevel, got)
	}
}
