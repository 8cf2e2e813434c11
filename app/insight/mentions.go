package insight

import (
	"slices"
	"strings"

	"github.com/lysyi3m/trend-comb/app/post"
)

const (
	maxMentions    = 5
	maxMentionText = 280
)

// rankByLikes returns a copy of posts ordered by likes, most liked first.
// Ties keep input order.
func rankByLikes(posts []post.Post) []post.Post {
	ranked := slices.Clone(posts)
	slices.SortStableFunc(ranked, func(a, b post.Post) int {
		return b.Likes - a.Likes
	})
	return ranked
}

func topMentions(posts []post.Post, n int) []Mention {
	ranked := rankByLikes(posts)
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	mentions := make([]Mention, 0, len(ranked))
	for _, p := range ranked {
		mentions = append(mentions, toMention(p))
	}
	return mentions
}

func toMention(p post.Post) Mention {
	return Mention{
		Text:     truncate(p.Text, maxMentionText),
		Author:   p.Author,
		Platform: string(p.Platform),
		URL:      p.URL,
	}
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}
