package ui

import "testing"

func TestGetTheme_FallsBackToDefault(t *testing.T) {
	if got := GetTheme("nope").Name; got != DefaultThemeName {
		t.Fatalf("GetTheme unknown = %q, want %q", got, DefaultThemeName)
	}
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames = %v, want 3 themes", names)
	}
	current := names[0]
	for range names {
		current = NextTheme(current)
	}
	if current != names[0] {
		t.Fatalf("cycling %d times ended at %q, want %q", len(names), current, names[0])
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme unknown = %q, want %q", got, names[0])
	}
}

func TestThemes_DefineStatusColors(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range []string{"idle", "loading", "succeeded", "failed", "offline"} {
			if th.StatusColors[status] == "" {
				t.Fatalf("theme %s has no color for %s", name, status)
			}
		}
	}
}
