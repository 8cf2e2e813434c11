package sentiment

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Classifier labels text by counting which lexicon phrases it contains.
// Each phrase contributes at most once, however often it appears.
type Classifier struct {
	positive []string
	negative []string
}

func NewClassifier(lexicon Lexicon) *Classifier {
	return &Classifier{
		positive: foldAll(lexicon.Positive),
		negative: foldAll(lexicon.Negative),
	}
}

func (c *Classifier) Classify(text string) Label {
	return c.Score(text).Label()
}

func (c *Classifier) Score(text string) Score {
	if text == "" {
		return Score{}
	}

	folded := fold(text)

	return Score{
		Positive: countMatches(folded, c.positive),
		Negative: countMatches(folded, c.negative),
	}
}

func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("failed to read lexicon: %w", err)
	}

	var lexicon Lexicon
	if err := yaml.Unmarshal(data, &lexicon); err != nil {
		return Lexicon{}, fmt.Errorf("failed to parse lexicon YAML: %w", err)
	}

	if len(lexicon.Positive) == 0 && len(lexicon.Negative) == 0 {
		return Lexicon{}, fmt.Errorf("lexicon %s has no phrases", path)
	}

	return lexicon, nil
}

func countMatches(text string, phrases []string) int {
	count := 0
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			count++
		}
	}
	return count
}

func foldAll(phrases []string) []string {
	folded := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		folded = append(folded, fold(phrase))
	}
	return folded
}

// Casers keep state, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
