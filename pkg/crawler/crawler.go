package crawler

import (
	"context"
	"fmt"

	"forumdump/pkg/cache"
	"forumdump/pkg/discourse"
	"forumdump/pkg/errors"
	"forumdump/pkg/layout"
	"forumdump/pkg/logger"
)

// ErrRootUnavailable is returned when the top-level category listing cannot be obtained
var ErrRootUnavailable = errors.ErrRootUnavailable

const (
	depthRoot = iota
	depthCategory
	depthSubcategory
	depthTopic
)

// Diff is the outcome of reconciling one category's topic listings
type Diff struct {
	Category          string
	Equal             bool
	SubcategoryTopics int
	CategoryTopics    int
	Loners            []int64
}

// Report summarizes a crawl
type Report struct {
	Categories    int
	Subcategories int
	Topics        int
	Loners        int
	Dropped       int
	Unavailable   int
	Diffs         []Diff
}

// Crawler walks categories, subcategories and topics of one forum into the archive
type Crawler struct {
	cache  *cache.Cache
	host   string
	logger logger.Logger
}

// New creates a crawler archiving the forum at host through c
func New(c *cache.Cache, host string, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Crawler{
		cache:  c,
		host:   host,
		logger: log.WithField("host", host),
	}
}

// Run crawls the whole forum depth-first. Unavailable categories, subcategories and
// topics are skipped; only an unavailable root listing aborts the run.
func (c *Crawler) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	root := layout.Root(c.host)

	res, err := c.cache.FetchAndSave(ctx, depthRoot, discourse.CategoriesPath, root)
	if err != nil {
		return report, err
	}
	if !res.OK() {
		report.Unavailable++
		return report, fmt.Errorf("%w: %s", ErrRootUnavailable, discourse.CategoriesPath)
	}

	var listing discourse.CategoriesResponse
	if err := res.Decode(&listing); err != nil {
		return report, err
	}

	for _, category := range listing.CategoryList.Categories {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := category.Validate(); err != nil {
			c.drop(report, depthCategory, err)
			continue
		}
		if err := c.crawlCategory(ctx, root.WithCategory(category.Slug), *category.ID, report); err != nil {
			return report, err
		}
	}

	c.logger.InfoWithFields("crawl finished", map[string]interface{}{
		"categories":    report.Categories,
		"subcategories": report.Subcategories,
		"topics":        report.Topics,
		"loners":        report.Loners,
		"dropped":       report.Dropped,
		"unavailable":   report.Unavailable,
	})

	return report, nil
}

func (c *Crawler) crawlCategory(ctx context.Context, pos layout.Position, categoryID int64, report *Report) error {
	res, err := c.cache.FetchAndSave(ctx, depthCategory, discourse.CategoryPath(categoryID), pos)
	if err != nil {
		return err
	}
	if !res.OK() {
		report.Unavailable++
		return nil
	}

	var detail discourse.TopicListResponse
	if err := res.Decode(&detail); err != nil {
		return err
	}
	categoryTopics := detail.TopicList.Topics

	subRes, err := c.cache.FetchAndSave(ctx, depthCategory, discourse.SubcategoriesPath(categoryID), pos)
	if err != nil {
		return err
	}
	if !subRes.OK() {
		// Without the subcategory listing loners cannot be told apart from classified topics.
		report.Unavailable++
		return nil
	}
	report.Categories++

	var subListing discourse.CategoriesResponse
	if err := subRes.Decode(&subListing); err != nil {
		return err
	}

	var fromSubcategories []discourse.Topic
	for _, sub := range subListing.CategoryList.Categories {
		if err := sub.Validate(); err != nil {
			c.drop(report, depthSubcategory, err)
			continue
		}

		topics, ok, err := c.crawlSubcategory(ctx, pos.WithSubcategory(sub.Slug), categoryID, *sub.ID, report)
		if err != nil {
			return err
		}
		if ok {
			fromSubcategories = append(fromSubcategories, topics...)
		}
	}

	diff := reconcile(pos.Category, categoryTopics, fromSubcategories)
	report.Diffs = append(report.Diffs, diff)
	logger.LogDiff(c.logger, depthCategory, diff.Equal, diff.SubcategoryTopics, diff.CategoryTopics)

	if len(diff.Loners) == 0 {
		return nil
	}

	logger.LogLoners(c.logger.WithField("category", pos.Category), depthCategory, diff.Loners)
	loners := selectTopics(categoryTopics, diff.Loners)

	archived, err := c.crawlTopics(ctx, pos.WithSubcategory(layout.OrphanSubcategory), loners, report)
	report.Loners += archived
	return err
}

func (c *Crawler) crawlSubcategory(ctx context.Context, pos layout.Position, categoryID, subcategoryID int64, report *Report) ([]discourse.Topic, bool, error) {
	res, err := c.cache.FetchAndSave(ctx, depthSubcategory, discourse.SubcategoryPath(categoryID, subcategoryID), pos)
	if err != nil {
		return nil, false, err
	}
	if !res.OK() {
		report.Unavailable++
		return nil, false, nil
	}
	report.Subcategories++

	var detail discourse.TopicListResponse
	if err := res.Decode(&detail); err != nil {
		return nil, false, err
	}

	topics := detail.TopicList.Topics
	if _, err := c.crawlTopics(ctx, pos, topics, report); err != nil {
		return nil, false, err
	}
	return topics, true, nil
}

// crawlTopics archives the full detail of every addressable topic and returns how many are on disk
func (c *Crawler) crawlTopics(ctx context.Context, pos layout.Position, topics []discourse.Topic, report *Report) (int, error) {
	archived := 0
	for _, topic := range topics {
		if err := topic.Validate(); err != nil {
			c.drop(report, depthTopic, err)
			continue
		}

		res, err := c.cache.FetchAndSave(ctx, depthTopic, discourse.TopicPath(*topic.ID), pos.WithTopic(topic.Slug))
		if err != nil {
			return archived, err
		}
		if !res.OK() {
			report.Unavailable++
			continue
		}
		archived++
		report.Topics++
	}
	return archived, nil
}

func (c *Crawler) drop(report *Report, depth int, err error) {
	report.Dropped++
	c.logger.WithError(err).Debug(logger.Indent(depth, "dropping listing entry"))
}

// reconcile compares a category's own topic listing with the union of its subcategories'
// listings and returns the ids listed only at category level, in listing order.
func reconcile(category string, categoryTopics, fromSubcategories []discourse.Topic) Diff {
	diff := Diff{
		Category:          category,
		Equal:             len(fromSubcategories) == len(categoryTopics),
		SubcategoryTopics: len(fromSubcategories),
		CategoryTopics:    len(categoryTopics),
	}

	classified := make(map[int64]struct{}, len(fromSubcategories))
	for _, t := range fromSubcategories {
		if t.ID != nil {
			classified[*t.ID] = struct{}{}
		}
	}

	seen := make(map[int64]struct{})
	for _, t := range categoryTopics {
		if t.Validate() != nil {
			continue
		}
		id := *t.ID
		if _, ok := classified[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		diff.Loners = append(diff.Loners, id)
	}

	return diff
}

// selectTopics returns the first listing entry of each id in ids, in ids order
func selectTopics(topics []discourse.Topic, ids []int64) []discourse.Topic {
	byID := make(map[int64]discourse.Topic, len(topics))
	for _, t := range topics {
		if t.ID == nil {
			continue
		}
		if _, ok := byID[*t.ID]; !ok {
			byID[*t.ID] = t
		}
	}

	selected := make([]discourse.Topic, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			selected = append(selected, t)
		}
	}
	return selected
}
