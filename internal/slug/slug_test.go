package slug

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Go", "go"},
		{"  GO ", "go"},
		{"Machine Learning", "machine-learning"},
		{"machine_learning", "machine-learning"},
		{"a -- b", "a-b"},
		{"Café", "cafe"},
		{"Ünïcödé", "unicode"},
		{"C++", "c"},
		{"Node.js", "nodejs"},
		{"-edge-", "edge"},
		{"ﬁle", "file"},
		{"Ⅻ", "xii"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_Equivalence(t *testing.T) {
	groups := [][]string{
		{"Go", "go", "GO ", " go"},
		{"résumé", "Resume", "RÉSUMÉ", "resume"},
		{"Naïve Bayes", "naive bayes", "NAIVE  BAYES"},
	}
	for _, g := range groups {
		want := Normalize(g[0])
		for _, s := range g[1:] {
			if got := Normalize(s); got != want {
				t.Errorf("Normalize(%q) = %q, want %q (same as %q)", s, got, want, g[0])
			}
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Go", "Machine Learning", "Café au lait", "C#", "ﬁ", "Ⅻ", "__x__", "a - b _ c",
		"日本語", "emoji 🚀 launch", "ß", "İstanbul",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalize_PunctuationOnlyIsEmpty(t *testing.T) {
	for _, in := range []string{"!!!", "...", "🚀", "🔥🔥", "&*()", " - _ - ", "✓"} {
		if got := Normalize(in); got != "" {
			t.Errorf("Normalize(%q) = %q, want empty", in, got)
		}
	}
}
