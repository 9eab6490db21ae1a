package theme

import "testing"

func TestCurrentFollowsMode(t *testing.T) {
	defer func(prev bool) { darkMode = prev }(darkMode)

	darkMode = false
	if Current() != Light || IsDark() {
		t.Fatalf("expected light colors, got %+v", Current())
	}
	darkMode = true
	if Current() != Dark || !IsDark() {
		t.Fatalf("expected dark colors, got %+v", Current())
	}
}

func TestColorSetsAreComplete(t *testing.T) {
	for name, c := range map[string]Colors{"light": Light, "dark": Dark} {
		for field, v := range map[string]string{
			"AppBg": c.AppBg, "Surface": c.Surface, "Border": c.Border, "Primary": c.Primary,
			"Danger": c.Danger, "Accent": c.Accent, "Text": c.Text, "TextMuted": c.TextMuted,
		} {
			if len(v) != 7 || v[0] != '#' {
				t.Fatalf("%s %s: want #rrggbb, got %q", name, field, v)
			}
		}
	}
	if Light.AppBg == Dark.AppBg || Light.Text == Dark.Text {
		t.Fatalf("light and dark must differ in background and text")
	}
}
