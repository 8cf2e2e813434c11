package sentiment

type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

type Lexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

type Score struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

func (s Score) Label() Label {
	switch {
	case s.Positive > s.Negative:
		return Positive
	case s.Negative > s.Positive:
		return Negative
	default:
		return Neutral
	}
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{
			"great", "excellent", "amazing", "love", "recommend", "future",
			"gains", "powerful", "saved", "happy", "success", "awesome",
		},
		Negative: []string{
			"bad", "terrible", "disappointing", "hate", "avoid", "problem",
			"long way", "bugs", "end of", "can't handle", "failed", "error",
		},
	}
}
