package models

// NewsArticle is one article from the news adapter. Fields mirror the
// subset of the upstream payload we consume.
type NewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
	Country     string `json:"country,omitempty"`
	PublishedAt string `json:"published_at"`
}

// Genre is a movie genre (id, name) pair.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
