package twitter

// searchResponse and tweet are private JSON parsing structs for the
// twitterapi.io advanced search endpoint.
type searchResponse struct {
	Tweets      []tweet `json:"tweets"`
	HasNextPage bool    `json:"has_next_page"`
	NextCursor  string  `json:"next_cursor"`
}

type tweet struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Text      string `json:"text"`
	LikeCount int    `json:"likeCount"`
	CreatedAt string `json:"createdAt"`
	Author    struct {
		UserName string `json:"userName"`
		Name     string `json:"name"`
	} `json:"author"`
}
