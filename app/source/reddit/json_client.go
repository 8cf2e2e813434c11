package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/trend-comb/app/post"
)

// JSONClient searches reddit through the public search.json listing.
type JSONClient struct {
	options
}

func NewJSONClient(opts ...ClientOption) *JSONClient {
	return &JSONClient{options: newOptions(opts)}
}

func (c *JSONClient) Fetch(ctx context.Context, query string, limit int) ([]post.Post, error) {
	posts := make([]post.Post, 0, limit)
	after := ""

	for page := 0; page < maxPages && len(posts) < limit; page++ {
		result, err := c.search(ctx, query, min(limit-len(posts), pageSize), after)
		if err != nil {
			return nil, err
		}

		for _, child := range result.Data.Children {
			posts = append(posts, c.toPost(child.Data))
		}

		if result.Data.After == "" || len(result.Data.Children) == 0 {
			break
		}
		after = result.Data.After
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}

	return posts, nil
}

func (c *JSONClient) search(ctx context.Context, query string, limit int, after string) (*listing, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "new")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}

	body, err := c.get(ctx, c.baseURL+"/search.json?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var result listing
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode reddit listing: %w", err)
	}

	return &result, nil
}

func (c *JSONClient) toPost(l link) post.Post {
	text := strings.TrimSpace(l.Title)
	if text == "" {
		text = strings.TrimSpace(l.Selftext)
	}

	createdAt := c.now().UTC()
	if l.CreatedUTC > 0 {
		sec, frac := math.Modf(l.CreatedUTC)
		createdAt = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}

	permalink := ""
	if l.Permalink != "" {
		permalink = c.baseURL + l.Permalink
	}

	return post.Post{
		Platform:  post.PlatformReddit,
		Author:    l.Author,
		Text:      text,
		URL:       permalink,
		Likes:     max(l.Score, 0),
		CreatedAt: createdAt,
	}
}
