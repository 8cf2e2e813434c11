package insight

import (
	"context"
	"errors"

	"github.com/lysyi3m/trend-comb/app/post"
)

var (
	// ErrUnavailable means no provider can be reached with the current
	// configuration, e.g. missing or rejected credentials.
	ErrUnavailable       = errors.New("insight provider unavailable")
	ErrProvider          = errors.New("insight provider error")
	ErrMalformedResponse = errors.New("malformed insight provider response")
	ErrNoPosts           = errors.New("no posts to synthesize")
)

// Synthesizer condenses a deduplicated set of posts into one Insight.
type Synthesizer interface {
	Synthesize(ctx context.Context, posts []post.Post) (Insight, error)
}

type Insight struct {
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	HotScore        int       `json:"hot_score"`
	Summary         string    `json:"summary"`
	TopMentions     []Mention `json:"top_mentions"`
	Insights        Findings  `json:"insights"`
	EmotionAnalysis Emotions  `json:"emotion_analysis"`
}

type Mention struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type Findings struct {
	PainPoints    []Point `json:"pain_points"`
	Opportunities []Point `json:"opportunities"`
	MVPPlan       Plan    `json:"mvp_plan"`
}

type Point struct {
	Text string `json:"text"`
}

type Plan struct {
	Goal string `json:"goal"`
}

// Emotions are percentages of the analysed posts.
type Emotions struct {
	Joy     int `json:"joy"`
	Sadness int `json:"sadness"`
	Anger   int `json:"anger"`
	Sarcasm int `json:"sarcasm"`
	Neutral int `json:"neutral"`
}
