package tasks

import (
	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/post"
)

// toRecords labels every post and tags it with the query it was found for.
func toRecords(query string, posts []post.Post, classifier Classifier) []database.Post {
	records := make([]database.Post, 0, len(posts))
	for _, p := range posts {
		records = append(records, database.Post{
			Platform:  string(p.Platform),
			Author:    p.Author,
			Text:      p.Text,
			URL:       p.URL,
			Likes:     p.Likes,
			CreatedAt: p.CreatedAt,
			Sentiment: string(classifier.Classify(p.Text)),
			Query:     query,
		})
	}
	return records
}
