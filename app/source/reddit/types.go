package reddit

// listing and link are private JSON parsing structs for reddit search results.
type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data link `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type link struct {
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}
