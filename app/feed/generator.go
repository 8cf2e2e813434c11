package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/trend-comb/app/database"
)

const titleLength = 80

// Channel describes the RSS channel built for one watch.
type Channel struct {
	Name     string
	Query    string
	SelfLink string
}

// Generator renders archived posts as an RSS 2.0 document.
type Generator struct {
	version string
	now     func() time.Time
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version, now: time.Now}
}

// Run renders posts in the order given; the newest post should come first.
func (g *Generator) Run(channel Channel, posts []database.Post) (string, error) {
	if channel.Name == "" {
		return "", fmt.Errorf("channel name is required")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", fmt.Sprintf("Trend Comb: %s", channel.Name), 4)
	g.writeElement(&buf, "link", channel.SelfLink, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Posts collected for \"%s\"", channel.Query), 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	lastBuildDate := g.now().In(time.Local)
	if len(posts) > 0 {
		lastBuildDate = cmp.Or(posts[0].IngestedAt, posts[0].CreatedAt, lastBuildDate)
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Trend-Comb/%s", g.version), 4)

	for _, p := range posts {
		g.writeItem(&buf, p)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, p database.Post) {
	buf.WriteString("    <item>\n")

	if p.URL != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(p.URL)))
		xml.EscapeText(buf, []byte(p.URL))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", g.title(p.Text), 6)

	if g.isURL(p.URL) {
		g.writeElement(buf, "link", p.URL, 6)
	}

	g.writeElement(buf, "description", cmp.Or(p.Text, "No text available"), 6)
	g.writeElement(buf, "pubDate", p.CreatedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "author", p.Author, 6)
	g.writeElement(buf, "category", p.Platform, 6)
	g.writeElement(buf, "category", p.Sentiment, 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// title is the first line of the text, cut to titleLength runes.
func (g *Generator) title(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if utf8.RuneCountInString(line) <= titleLength {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:titleLength])) + "…"
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
