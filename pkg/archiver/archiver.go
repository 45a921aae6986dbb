package archiver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"forumdump/internal/downloader"
	"forumdump/pkg/cache"
	"forumdump/pkg/config"
	"forumdump/pkg/crawler"
	"forumdump/pkg/discourse"
	"forumdump/pkg/images"
	"forumdump/pkg/layout"
	"forumdump/pkg/logger"
	"forumdump/pkg/ratelimit"
	"forumdump/pkg/storage"
)

// Archiver wires the client, cache and store for one forum. The crawl and the
// image phase share nothing but the archive directory.
type Archiver struct {
	config  *config.Config
	host    string
	client  *discourse.Client
	store   *storage.Manager
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// New creates an archiver for the forum at baseURL
func New(cfg *config.Config, baseURL string, log logger.Logger) (*Archiver, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	host, err := layout.HostFromBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewInterval(cfg.RateLimit.RequestDelay)
	client, err := discourse.NewClient(baseURL, cfg, limiter, log)
	if err != nil {
		return nil, err
	}

	return &Archiver{
		config:  cfg,
		host:    host,
		client:  client,
		store:   store,
		limiter: limiter,
		logger:  log.WithField("host", host),
	}, nil
}

// Host returns the forum host, which names the archive directory
func (a *Archiver) Host() string {
	return a.host
}

// HostDir returns the archive directory of the forum
func (a *Archiver) HostDir() string {
	return filepath.Join(a.store.Root(), a.host)
}

// Crawl archives categories, subcategories and topics as JSON
func (a *Archiver) Crawl(ctx context.Context) (*crawler.Report, cache.Stats, error) {
	a.logger.InfoWithFields("starting crawl", map[string]interface{}{
		"base_url": a.client.BaseURL(),
		"archive":  a.HostDir(),
		"delay":    a.config.RateLimit.RequestDelay,
	})

	c := cache.New(a.client, a.store, a.logger)
	report, err := crawler.New(c, a.host, a.logger).Run(ctx)
	return report, c.Stats(), err
}

// Pictures downloads the highest-resolution variant of every image in the archived topics
func (a *Archiver) Pictures(ctx context.Context) (images.WalkStats, downloader.Summary, error) {
	dir := a.HostDir()
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return images.WalkStats{}, downloader.Summary{}, fmt.Errorf("no archive found at %s; run the json command first", dir)
	}

	extractor := images.NewExtractor(a.store, a.logger)
	found, err := extractor.Walk(ctx, dir)
	if err != nil {
		return extractor.Stats(), downloader.Summary{}, err
	}

	jobs := make([]downloader.Job, 0, len(found))
	for _, img := range found {
		jobs = append(jobs, downloader.Job{URL: img.URL, Dir: img.Dir})
	}

	a.limiter.Reset()
	summary, err := downloader.New(a.client, a.store, a.config.Output.OverwriteImages, a.logger).Run(ctx, jobs)
	return extractor.Stats(), summary, err
}
