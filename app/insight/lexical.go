package insight

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lysyi3m/trend-comb/app/post"
	"github.com/lysyi3m/trend-comb/app/sentiment"
)

const maxFindings = 3

// LexicalSynthesizer builds an insight offline from sentiment counts and the
// most liked posts. It backs mock mode and deployments without an LLM key.
type LexicalSynthesizer struct {
	classifier *sentiment.Classifier
}

var _ Synthesizer = (*LexicalSynthesizer)(nil)

func NewLexicalSynthesizer(classifier *sentiment.Classifier) *LexicalSynthesizer {
	return &LexicalSynthesizer{classifier: classifier}
}

func (s *LexicalSynthesizer) Synthesize(ctx context.Context, posts []post.Post) (Insight, error) {
	if len(posts) == 0 {
		return Insight{}, ErrNoPosts
	}
	if err := ctx.Err(); err != nil {
		return Insight{}, err
	}

	var positive, negative []post.Post
	counts := map[sentiment.Label]int{}
	totalLikes := 0

	for _, p := range posts {
		label := s.classifier.Classify(p.Text)
		counts[label]++
		totalLikes += p.Likes

		switch label {
		case sentiment.Positive:
			positive = append(positive, p)
		case sentiment.Negative:
			negative = append(negative, p)
		}
	}

	mood := dominantMood(counts)

	return Insight{
		Title:       fmt.Sprintf("%s conversation across %s", mood, strings.Join(platformsOf(posts), " and ")),
		Category:    mood,
		HotScore:    hotScore(len(posts), totalLikes),
		Summary:     summarize(len(posts), counts),
		TopMentions: topMentions(posts, maxMentions),
		Insights: Findings{
			PainPoints:    findings(negative),
			Opportunities: findings(positive),
			MVPPlan:       Plan{Goal: mvpGoal(negative, positive)},
		},
		EmotionAnalysis: emotions(len(posts), counts),
	}, nil
}

func dominantMood(counts map[sentiment.Label]int) string {
	pos, neg := counts[sentiment.Positive], counts[sentiment.Negative]
	switch {
	case pos > neg && pos >= counts[sentiment.Neutral]:
		return "Positive"
	case neg > pos && neg >= counts[sentiment.Neutral]:
		return "Critical"
	case pos == 0 && neg == 0:
		return "Neutral"
	default:
		return "Mixed"
	}
}

func platformsOf(posts []post.Post) []string {
	var platforms []string
	for _, p := range posts {
		if !slices.Contains(platforms, string(p.Platform)) {
			platforms = append(platforms, string(p.Platform))
		}
	}
	return platforms
}

// hotScore grows with volume and logarithmically with engagement, capped at 100.
func hotScore(postCount, totalLikes int) int {
	score := float64(postCount) + 10*math.Log10(float64(totalLikes)+1)
	return min(int(math.Round(score)), 100)
}

func summarize(total int, counts map[sentiment.Label]int) string {
	return fmt.Sprintf("%d posts analysed: %d positive, %d negative, %d neutral.",
		total, counts[sentiment.Positive], counts[sentiment.Negative], counts[sentiment.Neutral])
}

func findings(posts []post.Post) []Point {
	ranked := rankByLikes(posts)
	if len(ranked) > maxFindings {
		ranked = ranked[:maxFindings]
	}

	points := make([]Point, 0, len(ranked))
	for _, p := range ranked {
		points = append(points, Point{Text: truncate(p.Text, maxMentionText)})
	}
	return points
}

func mvpGoal(negative, positive []post.Post) string {
	switch {
	case len(negative) > 0:
		return "Solve the most discussed complaint: " + truncate(rankByLikes(negative)[0].Text, 120)
	case len(positive) > 0:
		return "Build on what users praise most: " + truncate(rankByLikes(positive)[0].Text, 120)
	default:
		return "Collect more signal before committing to an MVP."
	}
}

// emotions reports joy, anger and neutral as shares of all posts. Rounding
// slack goes to neutral so the values add up to 100.
func emotions(total int, counts map[sentiment.Label]int) Emotions {
	share := func(n int) int {
		return int(math.Round(float64(n) * 100 / float64(total)))
	}

	joy := share(counts[sentiment.Positive])
	anger := min(share(counts[sentiment.Negative]), 100-joy)

	return Emotions{
		Joy:     joy,
		Anger:   anger,
		Neutral: 100 - joy - anger,
	}
}
