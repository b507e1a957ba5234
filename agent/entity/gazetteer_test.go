package entity

import "testing"

func TestDefaultGazetteerParses(t *testing.T) {
	t.Parallel()

	gaz := DefaultGazetteer()
	if len(gaz.Locations) == 0 || len(gaz.Outlets) == 0 {
		t.Fatalf("embedded gazetteer is incomplete: %d locations, %d outlets", len(gaz.Locations), len(gaz.Outlets))
	}
}

func TestMatchLocationCanonicalizesAliases(t *testing.T) {
	t.Parallel()

	gaz := DefaultGazetteer()

	got, ok := gaz.MatchLocation("any outlets in pj today")
	if !ok || got != "petaling jaya" {
		t.Fatalf("MatchLocation = %q, %v", got, ok)
	}

	if _, ok := gaz.MatchLocation("nothing to see"); ok {
		t.Fatal("unexpected location match")
	}
}

func TestOutletPlausible(t *testing.T) {
	t.Parallel()

	gaz := DefaultGazetteer()

	cases := []struct {
		phrase string
		want   bool
	}{
		{"SS 2", true},
		{"ss2", true},
		{"SS 2!", true},
		{"the one utama one", true},
		{"pickles", false},
		{"random words", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := gaz.OutletPlausible(tc.phrase); got != tc.want {
			t.Fatalf("OutletPlausible(%q) = %v, want %v", tc.phrase, got, tc.want)
		}
	}
}

func TestParseGazetteerRejectsEmptyCanonical(t *testing.T) {
	t.Parallel()

	_, err := parseGazetteer([]byte("locations:\n  - canonical: \"  \"\n"))
	if err == nil {
		t.Fatal("expected error for empty canonical")
	}
}
