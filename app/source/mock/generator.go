package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/lysyi3m/trend-comb/app/post"
)

// MaxPosts bounds a single generated batch.
const MaxPosts = 50

var (
	tweetTemplates = []string{
		"{query} is revolutionizing {industry}. The future is here! #{tag}",
		"Just launched our new {product} built around {query}. Excited to see the impact!",
		"The potential of {query} in {field} is incredible. We're just getting started.",
		"Honestly {query} has been a problem for our {industry} team, too many bugs so far.",
		"Our latest {query} experiment in {field} shows promising results. Great work everyone!",
		"Not sure {query} can handle {industry} workloads yet. Long way to go.",
		"Proud to announce our {query}-powered {product} is now live!",
		"Would recommend {query} to anyone working in {field}.",
	}

	redditTemplates = []string{
		"Discussion: how {query} is changing {industry}",
		"What are your thoughts on {query} for {field}?",
		"{query} in production: lessons learned after a year",
		"Is {query} worth it for a small {industry} shop?",
		"Terrible experience migrating our {product} to {query}",
		"Technical deep dive: {query} and {field}",
		"I love how simple {query} made our {product}",
	}

	industries = []string{"healthcare", "finance", "education", "transportation", "manufacturing", "retail", "logistics"}
	products   = []string{"chatbot", "recommendation system", "analytics platform", "automation tool", "mobile app"}
	fields     = []string{"data processing", "content creation", "fraud detection", "customer support", "edge computing"}
)

type GeneratorOption func(*Generator)

func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// Generator produces synthetic posts for offline runs. The same query always
// yields the same posts.
type Generator struct {
	platform post.Platform
	now      func() time.Time
}

func NewGenerator(platform post.Platform, opts ...GeneratorOption) *Generator {
	g := &Generator{
		platform: platform,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Fetch(ctx context.Context, query string, limit int) ([]post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	faker := gofakeit.New(g.seed(query))
	now := g.now().UTC().Truncate(time.Hour)
	count := min(limit, MaxPosts)

	posts := make([]post.Post, 0, count)
	for i := 0; i < count; i++ {
		posts = append(posts, g.generate(faker, query, now, i))
	}

	return posts, nil
}

func (g *Generator) generate(faker *gofakeit.Faker, query string, now time.Time, i int) post.Post {
	author := strings.ToLower(faker.Username())
	createdAt := now.Add(-time.Duration(faker.Number(0, 7*24*60)) * time.Minute)

	var text, url string
	switch g.platform {
	case post.PlatformReddit:
		text = fill(faker, faker.RandomString(redditTemplates), query)
		url = fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/", faker.RandomString(fields), faker.LetterN(7))
	default:
		text = fill(faker, faker.RandomString(tweetTemplates), query)
		url = fmt.Sprintf("https://x.com/%s/status/%d%04d", author, faker.Number(100000000, 999999999), i)
	}

	return post.Post{
		Platform:  g.platform,
		Author:    author,
		Text:      text,
		URL:       strings.ReplaceAll(url, " ", "_"),
		Likes:     faker.Number(0, 10000),
		CreatedAt: createdAt,
	}
}

func (g *Generator) seed(query string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(string(g.platform) + ":" + strings.ToLower(query)))
	return int64(h.Sum64())
}

func fill(faker *gofakeit.Faker, template, query string) string {
	return strings.NewReplacer(
		"{query}", query,
		"{tag}", strings.ReplaceAll(query, " ", ""),
		"{industry}", faker.RandomString(industries),
		"{product}", faker.RandomString(products),
		"{field}", faker.RandomString(fields),
	).Replace(template)
}
