package anchor

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Overview", "overview"},
		{"Getting Started", "getting-started"},
		{"  Spaces   Everywhere  ", "spaces-everywhere"},
		{"C++ & Go: A Comparison!", "c-go-a-comparison"},
		{"Résumé Überblick", "resume-uberblick"},
		{"version 2.0.1", "version-2-0-1"},
		{"___", ""},
		{"", ""},
		{"UPPER", "upper"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		if got := Slugify("Café Déjà Vu"); got != "cafe-deja-vu" {
			t.Fatalf("Slugify drifted: %q", got)
		}
	}
}
