package forumtest

import "fmt"

// Topic is a topic of the fake forum. A zero ID or empty Slug is left out of listings.
type Topic struct {
	ID     int64
	Slug   string
	Cooked []string
}

// Subcategory is a subcategory of the fake forum
type Subcategory struct {
	ID     int64
	Slug   string
	Topics []Topic
}

// Category is a top-level category. Topics is its own listing, which may differ
// from the union of its subcategories' listings.
type Category struct {
	ID            int64
	Slug          string
	Topics        []Topic
	Subcategories []Subcategory
}

// Forum is a whole fake forum
type Forum struct {
	Categories []Category
}

// Install registers every resource of f on s
func (s *Server) Install(f Forum) {
	var categories []map[string]interface{}
	details := make(map[int64]Topic)

	for _, cat := range f.Categories {
		categories = append(categories, entry(cat.ID, cat.Slug))
		s.JSON(fmt.Sprintf("/c/%d.json", cat.ID), TopicListing(cat.Topics...))
		collect(details, cat.Topics)

		var subs []map[string]interface{}
		for _, sub := range cat.Subcategories {
			subs = append(subs, entry(sub.ID, sub.Slug))
			s.JSON(fmt.Sprintf("/c/%d/%d.json", cat.ID, sub.ID), TopicListing(sub.Topics...))
			collect(details, sub.Topics)
		}
		s.JSON(fmt.Sprintf("/categories.json?parent_category_id=%d", cat.ID), Listing(subs...))
	}

	s.JSON("/categories.json", Listing(categories...))

	for id, topic := range details {
		s.JSON(fmt.Sprintf("/t/%d.json", id), TopicDetail(topic))
	}
}

func collect(into map[int64]Topic, topics []Topic) {
	for _, t := range topics {
		if t.ID != 0 {
			into[t.ID] = t
		}
	}
}

func entry(id int64, slug string) map[string]interface{} {
	e := map[string]interface{}{}
	if id != 0 {
		e["id"] = id
	}
	if slug != "" {
		e["slug"] = slug
	}
	return e
}

// Listing builds a category listing payload
func Listing(entries ...map[string]interface{}) map[string]interface{} {
	if entries == nil {
		entries = []map[string]interface{}{}
	}
	return map[string]interface{}{
		"category_list": map[string]interface{}{"categories": entries},
	}
}

// TopicListing builds a category detail payload embedding topics
func TopicListing(topics ...Topic) map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(topics))
	for _, t := range topics {
		list = append(list, entry(t.ID, t.Slug))
	}
	return map[string]interface{}{
		"topic_list": map[string]interface{}{"topics": list},
	}
}

// TopicDetail builds a topic payload with one post per cooked fragment
func TopicDetail(t Topic) map[string]interface{} {
	posts := make([]map[string]interface{}, 0, len(t.Cooked))
	for i, cooked := range t.Cooked {
		posts = append(posts, map[string]interface{}{"id": i + 1, "cooked": cooked})
	}
	return map[string]interface{}{
		"id":          t.ID,
		"slug":        t.Slug,
		"post_stream": map[string]interface{}{"posts": posts},
	}
}
