package sentiment

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyDefaultLexicon(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	tests := []struct {
		text     string
		expected Label
	}{
		{"", Neutral},
		{"no signal words here", Neutral},
		{"This is an amazing and powerful tool, I love it", Positive},
		{"This is terrible, full of bugs and errors", Negative},
		{"Great start but the end of the road is a problem", Negative},
		{"AMAZING results, HUGE gains", Positive},
		{"love it, hate it", Neutral},
	}

	for _, tt := range tests {
		got := classifier.Classify(tt.text)
		if got != tt.expected {
			t.Errorf("Classify(%q): expected %s, got %s", tt.text, tt.expected, got)
		}
	}
}

func TestScoreCountsEachPhraseOnce(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	score := classifier.Score("great great great, awesome")

	if score.Positive != 2 {
		t.Errorf("Expected positive score 2, got %d", score.Positive)
	}
	if score.Negative != 0 {
		t.Errorf("Expected negative score 0, got %d", score.Negative)
	}
}

func TestScoreMatchesSubstrings(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	// "errors" contains "error" and "futures" contains "future"
	score := classifier.Score("errors in futures")

	if score.Positive != 1 || score.Negative != 1 {
		t.Errorf("Expected 1/1, got %d/%d", score.Positive, score.Negative)
	}
}

func TestScoreMultiWordPhrases(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	score := classifier.Score("It Can't Handle load and has a long way to go")

	if score.Negative != 2 {
		t.Errorf("Expected negative score 2, got %d", score.Negative)
	}
}

func TestClassifyUnicodeCaseFolding(t *testing.T) {
	classifier := NewClassifier(Lexicon{
		Positive: []string{"straße"},
	})

	if got := classifier.Classify("Die STRASSE ist schön"); got != Positive {
		t.Errorf("Expected positive, got %s", got)
	}
}

func TestClassifyIgnoresBlankPhrases(t *testing.T) {
	classifier := NewClassifier(Lexicon{
		Positive: []string{"", "  "},
		Negative: []string{"bad"},
	})

	if got := classifier.Classify("anything"); got != Neutral {
		t.Errorf("Expected neutral, got %s", got)
	}
}

func TestLoadLexicon(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "lexicon.yml")

	content := `
positive:
  - "ship it"
  - "fast"
negative:
  - "slow"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lexicon, err := LoadLexicon(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(lexicon.Positive) != 2 {
		t.Errorf("Expected 2 positive phrases, got %d", len(lexicon.Positive))
	}
	if len(lexicon.Negative) != 1 {
		t.Errorf("Expected 1 negative phrase, got %d", len(lexicon.Negative))
	}

	classifier := NewClassifier(lexicon)
	if got := classifier.Classify("Fast build, ship it"); got != Positive {
		t.Errorf("Expected positive, got %s", got)
	}
}

func TestLoadLexiconErrors(t *testing.T) {
	tempDir := t.TempDir()

	if _, err := LoadLexicon(filepath.Join(tempDir, "missing.yml")); err == nil {
		t.Error("Expected error for missing file")
	}

	invalid := filepath.Join(tempDir, "invalid.yml")
	if err := os.WriteFile(invalid, []byte("positive: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLexicon(invalid); err == nil {
		t.Error("Expected error for invalid YAML")
	}

	empty := filepath.Join(tempDir, "empty.yml")
	if err := os.WriteFile(empty, []byte("positive: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLexicon(empty); err == nil {
		t.Error("Expected error for empty lexicon")
	}
}
