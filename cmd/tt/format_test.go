package main

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer string than allowed", 10, "a longe..."},
		{"abc", 2, "ab"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("1736500000000")
	if err != nil || id != 1736500000000 {
		t.Errorf("parseID = %d, %v", id, err)
	}
	if _, err := parseID("abc"); err == nil {
		t.Error("non-numeric id accepted")
	}
	if _, err := parseID(""); err == nil {
		t.Error("empty id accepted")
	}
}
