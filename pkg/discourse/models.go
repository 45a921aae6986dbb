package discourse

import "forumdump/pkg/errors"

// CategoriesResponse is the payload of /categories.json
type CategoriesResponse struct {
	CategoryList CategoryList `json:"category_list"`
}

// CategoryList wraps the categories of a listing
type CategoryList struct {
	Categories []Category `json:"categories"`
}

// Category is a listing entry; ID and Slug may be absent in partial listings
type Category struct {
	ID   *int64 `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Validate reports the first missing identifying field
func (c Category) Validate() error {
	if c.Slug == "" {
		return errors.Missing("category", "slug")
	}
	if c.ID == nil || *c.ID == 0 {
		return errors.Missing("category", "id")
	}
	return nil
}

// TopicListResponse is the payload of a category or subcategory detail
type TopicListResponse struct {
	TopicList TopicList `json:"topic_list"`
}

// TopicList wraps the topics embedded in a category detail
type TopicList struct {
	Topics []Topic `json:"topics"`
}

// Topic is a listing entry
type Topic struct {
	ID    *int64 `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Validate reports the first missing identifying field
func (t Topic) Validate() error {
	if t.Slug == "" {
		return errors.Missing("topic", "slug")
	}
	if t.ID == nil || *t.ID == 0 {
		return errors.Missing("topic", "id")
	}
	return nil
}

// TopicDetail is the payload of /t/{id}.json
type TopicDetail struct {
	ID         int64       `json:"id"`
	Slug       string      `json:"slug"`
	PostStream *PostStream `json:"post_stream"`
}

// PostStream holds the posts of a topic
type PostStream struct {
	Posts []Post `json:"posts"`
}

// Post carries the rendered HTML of a single post
type Post struct {
	ID     int64  `json:"id"`
	Cooked string `json:"cooked"`
}

// Posts returns the posts of the topic, or nil when the artifact carries no post stream
func (d *TopicDetail) Posts() []Post {
	if d == nil || d.PostStream == nil {
		return nil
	}
	return d.PostStream.Posts
}
