package reference

import (
	"strings"
	"testing"
)

func TestCountryBaselines(t *testing.T) {
	baselines := CountryBaselines()
	if len(baselines) == 0 {
		t.Fatal("expected baseline entries")
	}
	var totalShare float64
	for code, b := range baselines {
		if len(code) != 2 || code != strings.ToUpper(code) {
			t.Errorf("baseline key %q is not an upper-case alpha-2 code", code)
		}
		if b.PopulationShare <= 0 || b.PopulationShare >= 1 {
			t.Errorf("%s: population share %v out of range", code, b.PopulationShare)
		}
		if b.InternetPenetration <= 0 || b.InternetPenetration > 1 {
			t.Errorf("%s: penetration %v out of range", code, b.InternetPenetration)
		}
		totalShare += b.PopulationShare
	}
	if totalShare >= 1 {
		t.Errorf("population shares sum to %v, want < 1", totalShare)
	}

	// Mutating the returned map must not touch the embedded table.
	baselines["US"] = CountryBaseline{}
	if CountryBaselines()["US"].PopulationShare == 0 {
		t.Error("mutation leaked into embedded table")
	}
}
