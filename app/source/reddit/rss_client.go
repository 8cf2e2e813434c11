package reddit

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/trend-comb/app/post"
)

// RSSClient searches reddit through the search.rss Atom feed. The feed
// carries no scores, so every post reports zero likes.
type RSSClient struct {
	options
	parser *gofeed.Parser
}

func NewRSSClient(opts ...ClientOption) *RSSClient {
	return &RSSClient{
		options: newOptions(opts),
		parser:  gofeed.NewParser(),
	}
}

func (c *RSSClient) Fetch(ctx context.Context, query string, limit int) ([]post.Post, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "new")
	params.Set("limit", strconv.Itoa(min(limit, pageSize)))

	body, err := c.get(ctx, c.baseURL+"/search.rss?"+params.Encode(), "application/atom+xml, application/rss+xml")
	if err != nil {
		return nil, err
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse reddit feed: %w", err)
	}

	posts := make([]post.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		posts = append(posts, c.toPost(item))
		if len(posts) == limit {
			break
		}
	}

	return posts, nil
}

func (c *RSSClient) toPost(item *gofeed.Item) post.Post {
	text := strings.TrimSpace(item.Title)
	if text == "" {
		text = htmlToText(item.Content)
	}
	if text == "" {
		text = htmlToText(item.Description)
	}

	author := ""
	if item.Author != nil {
		author = strings.TrimPrefix(item.Author.Name, "/u/")
	}

	createdAt := c.now().UTC()
	switch {
	case item.PublishedParsed != nil:
		createdAt = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		createdAt = item.UpdatedParsed.UTC()
	}

	return post.Post{
		Platform:  post.PlatformReddit,
		Author:    author,
		Text:      text,
		URL:       item.Link,
		CreatedAt: createdAt,
	}
}

func htmlToText(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
