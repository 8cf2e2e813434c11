package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/trend-comb/app/database"
)

type rssDocument struct {
	Channel struct {
		Title         string `xml:"title"`
		Description   string `xml:"description"`
		LastBuildDate string `xml:"lastBuildDate"`
		Generator     string `xml:"generator"`
		Items         []struct {
			GUID       string   `xml:"guid"`
			Title      string   `xml:"title"`
			Link       string   `xml:"link"`
			PubDate    string   `xml:"pubDate"`
			Author     string   `xml:"author"`
			Categories []string `xml:"category"`
		} `xml:"item"`
	} `xml:"channel"`
}

func testChannel() Channel {
	return Channel{Name: "golang", Query: "golang", SelfLink: "http://localhost:8080/feeds/golang"}
}

func TestGeneratorRun(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []database.Post{
		{Platform: "twitter", Author: "gopher", Text: "Generics & <iterators> land", URL: "https://x.com/gopher/status/1", CreatedAt: created, Sentiment: "positive", IngestedAt: created.Add(time.Minute)},
		{Platform: "reddit", Text: "Thread about errors", URL: "https://www.reddit.com/r/golang/comments/2", CreatedAt: created.Add(-time.Hour), Sentiment: "neutral"},
	}

	output, err := NewGenerator("1.2.0").Run(testChannel(), posts)
	if err != nil {
		t.Fatal(err)
	}

	var doc rssDocument
	if err := xml.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("Expected valid XML, got %v", err)
	}

	if doc.Channel.Title != "Trend Comb: golang" {
		t.Errorf("Expected channel title, got '%s'", doc.Channel.Title)
	}
	if doc.Channel.Generator != "Trend-Comb/1.2.0" {
		t.Errorf("Expected generator with version, got '%s'", doc.Channel.Generator)
	}
	if doc.Channel.LastBuildDate != created.Add(time.Minute).Format(time.RFC1123Z) {
		t.Errorf("Expected last build date from newest post, got '%s'", doc.Channel.LastBuildDate)
	}

	if len(doc.Channel.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(doc.Channel.Items))
	}

	first := doc.Channel.Items[0]
	if first.Title != "Generics & <iterators> land" {
		t.Errorf("Expected escaped title to round-trip, got '%s'", first.Title)
	}
	if first.GUID != "https://x.com/gopher/status/1" || first.Link != first.GUID {
		t.Errorf("Expected URL as guid and link, got %s and %s", first.GUID, first.Link)
	}
	if first.Author != "gopher" {
		t.Errorf("Expected author 'gopher', got '%s'", first.Author)
	}
	if len(first.Categories) != 2 || first.Categories[0] != "twitter" || first.Categories[1] != "positive" {
		t.Errorf("Expected platform and sentiment categories, got %v", first.Categories)
	}
	if doc.Channel.Items[1].Author != "" {
		t.Errorf("Expected no author element, got '%s'", doc.Channel.Items[1].Author)
	}
}

func TestGeneratorEmptyChannel(t *testing.T) {
	g := NewGenerator("dev")
	fixed := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	output, err := g.Run(testChannel(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(output, "<item>") {
		t.Error("Expected no items")
	}
	if !strings.Contains(output, `<atom:link href="http://localhost:8080/feeds/golang"`) {
		t.Error("Expected self link")
	}

	if _, err := g.Run(Channel{}, nil); err == nil {
		t.Error("Expected error for channel without name")
	}
}

func TestGeneratorTitle(t *testing.T) {
	g := NewGenerator("dev")

	if got := g.title("first line\nsecond line"); got != "first line" {
		t.Errorf("Expected first line, got '%s'", got)
	}

	long := strings.Repeat("ü", 100)
	got := g.title(long)
	if got != strings.Repeat("ü", titleLength)+"…" {
		t.Errorf("Expected title cut to %d runes, got %d", titleLength, len([]rune(got)))
	}
}
