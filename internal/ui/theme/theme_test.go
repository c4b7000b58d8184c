package theme

import "testing"

func TestDefaultIsMidnight(t *testing.T) {
	if Current.Theme.Name != "midnight" {
		t.Errorf("default theme = %q, want midnight", Current.Theme.Name)
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		th, ok := ByName(name)
		if !ok || th.Name != name {
			t.Errorf("ByName(%q) = %q, %v", name, th.Name, ok)
		}
	}
	if _, ok := ByName("solarized"); ok {
		t.Error("unknown theme should not resolve")
	}
}

func TestNextWraps(t *testing.T) {
	themes := Available()
	name := themes[0].Name
	for range themes {
		name = Next(name).Name
	}
	if name != themes[0].Name {
		t.Errorf("cycling through all themes ended at %q", name)
	}
	if Next("unknown").Name != themes[0].Name {
		t.Error("unknown name should restart at the first theme")
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme(Midnight)

	SetTheme(Dracula)
	if Current.Theme.Name != "dracula" {
		t.Errorf("Current = %q after SetTheme(Dracula)", Current.Theme.Name)
	}
	if Current.Styles.ErrorText.GetForeground() != Dracula.Error {
		t.Error("styles not rebuilt from the new theme")
	}
}
