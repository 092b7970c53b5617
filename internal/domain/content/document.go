package content

// TocEntry references one h2–h4 heading of a rendered document.
type TocEntry struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Stats describes the source markdown of a post, not its rendered form.
type Stats struct {
	WordCount          int `json:"wordCount"`
	ReadingTimeMinutes int `json:"readingTimeMinutes"`
	HeadingCount       int `json:"headingCount"`
	CodeBlockCount     int `json:"codeBlockCount"`
	ImageCount         int `json:"imageCount"`
}

type PostSummary struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Excerpt  string   `json:"excerpt"`
	Featured string   `json:"featured"`
	Tags     []string `json:"tags"`
}

// Post is a fully rendered post. It is rebuilt on every lookup and never
// mutated afterwards.
type Post struct {
	PostSummary

	RawBody string     `json:"-"`
	HTML    string     `json:"html"`
	TOC     []TocEntry `json:"headings"`
	Stats   Stats      `json:"stats"`
}

type TimelineEntry struct {
	Year     string `json:"year"`
	Place    string `json:"place"`
	Role     string `json:"role,omitempty"`
	Category string `json:"category,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type PageSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type Page struct {
	PageSummary

	LastUpdated string          `json:"lastUpdated"`
	RawBody     string          `json:"-"`
	HTML        string          `json:"html"`
	TOC         []TocEntry      `json:"headings"`
	Timeline    []TimelineEntry `json:"timeline"`
}

// TagCount is a tag in its canonical (first seen) casing.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
