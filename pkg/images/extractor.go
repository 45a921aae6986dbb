package images

import (
	"context"
	"encoding/json"
	"path/filepath"

	"forumdump/pkg/discourse"
	"forumdump/pkg/logger"
	"forumdump/pkg/storage"
)

// Image is a selected image URL and the directory of the topic that references it
type Image struct {
	URL string
	Dir string
}

// WalkStats counts what a walk went through
type WalkStats struct {
	Artifacts int
	Topics    int
	Posts     int
	Skipped   int
	Images    int
}

// Extractor scans archived topic artifacts for images
type Extractor struct {
	store  *storage.Manager
	logger logger.Logger
	stats  WalkStats
}

// NewExtractor creates an extractor reading artifacts through store
func NewExtractor(store *storage.Manager, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{store: store, logger: log}
}

type postStreamView struct {
	PostStream *discourse.PostStream `json:"post_stream"`
}

// Walk visits every JSON artifact below dir and returns the images of every topic post.
// Artifacts that cannot be read or decoded are logged and skipped.
func (e *Extractor) Walk(ctx context.Context, dir string) ([]Image, error) {
	e.stats = WalkStats{}
	var found []Image

	err := e.store.WalkJSON(dir, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.stats.Artifacts++

		raw, err := storage.ReadJSONFile(path)
		if err != nil {
			e.skip(path, err)
			return nil
		}

		var view postStreamView
		if err := json.Unmarshal(raw, &view); err != nil {
			e.skip(path, err)
			return nil
		}
		if view.PostStream == nil {
			return nil
		}
		e.stats.Topics++

		topicDir := filepath.Dir(path)
		for _, post := range view.PostStream.Posts {
			e.stats.Posts++
			urls, err := ExtractFromHTML(post.Cooked)
			if err != nil {
				e.logger.WithError(err).WithField("path", path).Warn("skipping post")
				continue
			}
			for _, u := range urls {
				found = append(found, Image{URL: u, Dir: topicDir})
			}
		}
		return nil
	})
	if err != nil {
		return found, err
	}

	e.stats.Images = len(found)
	e.logger.InfoWithFields("image scan finished", map[string]interface{}{
		"artifacts": e.stats.Artifacts,
		"topics":    e.stats.Topics,
		"posts":     e.stats.Posts,
		"skipped":   e.stats.Skipped,
		"images":    e.stats.Images,
	})

	return found, nil
}

func (e *Extractor) skip(path string, err error) {
	e.stats.Skipped++
	e.logger.WithError(err).WithField("path", path).Warn("skipping artifact")
}

// Stats returns the counters of the last walk
func (e *Extractor) Stats() WalkStats {
	return e.stats
}
