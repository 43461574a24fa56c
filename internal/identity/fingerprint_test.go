package identity

import "testing"

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"142 min", 142},
		{"142min", 142},
		{"  88 MIN", 88},
		{"1 h 30 min", 30},
		{"N/A", 0},
		{"", 0},
		{"ninety minutes-ish", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseMinutes(tt.input); got != tt.expected {
				t.Errorf("ParseMinutes(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"1994", 1994},
		{"1994-10-14", 1994},
		{"2023-07-14", 2023},
		{"94", 94},
		{"14 Oct 1994", 0},
		{"N/A", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseYear(tt.input); got != tt.expected {
				t.Errorf("ParseYear(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFromOMDB(t *testing.T) {
	fp := FromOMDB("tt0111161", "The Shawshank Redemption", "142 min", "", "1994")
	if fp.IMDBID != "tt0111161" {
		t.Errorf("IMDBID = %q", fp.IMDBID)
	}
	if fp.RuntimeMinutes != 142 {
		t.Errorf("RuntimeMinutes = %d, want 142", fp.RuntimeMinutes)
	}
	if fp.Year != 1994 {
		t.Errorf("Year = %d, want 1994", fp.Year)
	}
	if len(fp.TitleVec) == 0 {
		t.Error("expected title vector")
	}
}

func TestFromOMDBReleasedBeatsYearField(t *testing.T) {
	// A non-empty release date is used even when it fails to parse.
	fp := FromOMDB("", "Heat", "170 min", "15 Dec 1995", "1995")
	if fp.Year != 0 {
		t.Errorf("Year = %d, want 0", fp.Year)
	}
}

func TestFromTMDB(t *testing.T) {
	fp := FromTMDB(" tt0133093 ", "The Matrix", 136, "1999-03-31")
	if fp.IMDBID != "tt0133093" {
		t.Errorf("IMDBID = %q, want trimmed id", fp.IMDBID)
	}
	if fp.RuntimeMinutes != 136 || fp.Year != 1999 {
		t.Errorf("runtime/year = %d/%d, want 136/1999", fp.RuntimeMinutes, fp.Year)
	}
}

func TestBlankTitleHasNoVector(t *testing.T) {
	fp := FromRecord("", "   ", 0, 0)
	if fp.TitleVec != nil {
		t.Error("expected nil vector for blank title")
	}
}
