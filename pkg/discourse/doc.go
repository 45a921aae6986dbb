// Package discourse is a minimal client for the public JSON API of a Discourse forum.
//
// It only performs GET requests, each paced by a ratelimit.Limiter. Transient
// failures are retried according to rate_limit.max_attempts, which defaults to one try.
// Response bodies are returned verbatim as json.RawMessage so callers can persist
// them unchanged; the typed views in models.go are decoded on demand.
//
// Endpoints used by the archiver:
//
//	/categories.json                          top-level categories
//	/c/{id}.json                              category detail with topic listing
//	/categories.json?parent_category_id={id}  subcategories of a category
//	/c/{cat}/{sub}.json                       subcategory detail with topic listing
//	/t/{id}.json                              topic with its post stream
package discourse
