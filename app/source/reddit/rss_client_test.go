package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>reddit search: golang</title>
  <entry>
    <author><name>/u/gopher</name><uri>https://www.reddit.com/user/gopher</uri></author>
    <id>t3_abc</id>
    <link href="https://www.reddit.com/r/golang/comments/abc/generics/"/>
    <published>2024-12-10T07:00:30+00:00</published>
    <updated>2024-12-10T07:00:30+00:00</updated>
    <title>Generics are great</title>
    <content type="html">&lt;p&gt;some body&lt;/p&gt;</content>
  </entry>
  <entry>
    <author><name>/u/anon</name></author>
    <id>t3_def</id>
    <link href="https://www.reddit.com/r/golang/comments/def/"/>
    <updated>2024-12-11T08:00:00+00:00</updated>
    <title></title>
    <content type="html">&lt;div&gt;&lt;p&gt;Body   text&lt;/p&gt; &lt;p&gt;only&lt;/p&gt;&lt;/div&gt;</content>
  </entry>
</feed>`

func TestRSSClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.rss" {
			t.Errorf("Expected path /search.rss, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "golang" {
			t.Errorf("Expected q 'golang', got %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(testAtomFeed))
	}))
	defer server.Close()

	client := NewRSSClient(WithBaseURL(server.URL))

	posts, err := client.Fetch(context.Background(), "golang", 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}

	if posts[0].Text != "Generics are great" {
		t.Errorf("Expected title as text, got %q", posts[0].Text)
	}
	if posts[0].Author != "gopher" {
		t.Errorf("Expected author 'gopher', got %q", posts[0].Author)
	}
	if posts[0].URL != "https://www.reddit.com/r/golang/comments/abc/generics/" {
		t.Errorf("Unexpected URL %q", posts[0].URL)
	}
	if !posts[0].CreatedAt.Equal(time.Date(2024, 12, 10, 7, 0, 30, 0, time.UTC)) {
		t.Errorf("Unexpected created_at %v", posts[0].CreatedAt)
	}
	if posts[0].Likes != 0 {
		t.Errorf("Expected 0 likes, got %d", posts[0].Likes)
	}

	if posts[1].Text != "Body text only" {
		t.Errorf("Expected text extracted from content, got %q", posts[1].Text)
	}
}

func TestRSSClientFetchRespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testAtomFeed))
	}))
	defer server.Close()

	client := NewRSSClient(WithBaseURL(server.URL))

	posts, err := client.Fetch(context.Background(), "golang", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Errorf("Expected 1 post, got %d", len(posts))
	}
}

func TestRSSClientFetchInvalidFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not a feed"))
	}))
	defer server.Close()

	client := NewRSSClient(WithBaseURL(server.URL))
	if _, err := client.Fetch(context.Background(), "golang", 10); err == nil {
		t.Error("Expected error for invalid feed")
	}
}

func TestHTMLToText(t *testing.T) {
	if got := htmlToText(""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
	if got := htmlToText("<p>Hello <b>world</b></p>\n<p>again</p>"); got != "Hello world again" {
		t.Errorf("Unexpected text %q", got)
	}
}
