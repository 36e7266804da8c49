package catalog

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Comptabilité générale":     "comptabilite-generale",
		"  Go -- for   Beginners! ": "go-for-beginners",
		"Épargne & Crédit 2025":     "epargne-credit-2025",
		"日本語":                       "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q): want=%q got=%q", in, want, got)
		}
	}
}
