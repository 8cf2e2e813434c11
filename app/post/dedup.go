package post

// Dedup drops every post whose URL was already seen earlier in the input.
// Survivors keep their relative order.
func Dedup(posts []Post) []Post {
	seen := make(map[string]struct{}, len(posts))
	unique := make([]Post, 0, len(posts))

	for _, p := range posts {
		if _, ok := seen[p.URL]; ok {
			continue
		}
		seen[p.URL] = struct{}{}
		unique = append(unique, p)
	}

	return unique
}
