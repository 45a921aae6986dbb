package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"forumdump/pkg/logger"
)

// Job is a single image to fetch into Dir
type Job struct {
	URL string
	Dir string
}

// Outcome classifies what happened to a job
type Outcome string

const (
	OutcomeSaved   Outcome = "saved"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result represents the result of a download job
type Result struct {
	Job      Job
	Path     string
	Outcome  Outcome
	Error    error
	Duration time.Duration
	Size     int
}

// Summary aggregates the results of a run
type Summary struct {
	Total   int
	Saved   int
	Skipped int
	Failed  int
	Bytes   int64
	Results []Result
}

// ImageClient downloads image bytes
type ImageClient interface {
	ResolveURL(ref string) (string, error)
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// ImageStorage persists downloaded images
type ImageStorage interface {
	HasFile(path string) bool
	SaveFile(path string, r io.Reader) error
}

// Downloader fetches images one at a time
type Downloader struct {
	client    ImageClient
	storage   ImageStorage
	overwrite bool
	logger    logger.Logger
}

// New creates a downloader. With overwrite unset, images already on disk are not requested again.
func New(client ImageClient, storage ImageStorage, overwrite bool, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		client:    client,
		storage:   storage,
		overwrite: overwrite,
		logger:    log,
	}
}

// Run processes jobs in order. A failing job is logged and counted; only
// cancellation of ctx stops the run early.
func (d *Downloader) Run(ctx context.Context, jobs []Job) (Summary, error) {
	summary := Summary{Total: len(jobs)}
	d.logger.InfoWithFields(fmt.Sprintf("saving %d pics", len(jobs)), map[string]interface{}{
		"overwrite": d.overwrite,
	})

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := d.processJob(ctx, job)
		if result.Outcome == OutcomeFailed && ctx.Err() != nil {
			return summary, ctx.Err()
		}

		switch result.Outcome {
		case OutcomeSaved:
			summary.Saved++
			summary.Bytes += int64(result.Size)
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}

	d.logger.InfoWithFields("image download finished", map[string]interface{}{
		"total":   summary.Total,
		"saved":   summary.Saved,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
		"bytes":   summary.Bytes,
	})

	return summary, nil
}

// processJob handles a single download job
func (d *Downloader) processJob(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Job: job, Outcome: OutcomeFailed}

	fail := func(err error) Result {
		result.Error = err
		result.Duration = time.Since(start)
		logger.LogFetchError(d.logger.WithField("dir", job.Dir), 0, job.URL, err)
		return result
	}

	resolved, err := d.client.ResolveURL(job.URL)
	if err != nil {
		return fail(err)
	}

	name, err := FileName(resolved)
	if err != nil {
		return fail(err)
	}
	result.Path = filepath.Join(job.Dir, name)

	if !d.overwrite && d.storage.HasFile(result.Path) {
		result.Outcome = OutcomeSkipped
		result.Duration = time.Since(start)
		logger.LogSkipped(d.logger, 0, result.Path)
		return result
	}

	data, err := d.client.Download(ctx, resolved)
	if err != nil {
		return fail(fmt.Errorf("download failed: %w", err))
	}
	result.Size = len(data)

	if err := d.storage.SaveFile(result.Path, bytes.NewReader(data)); err != nil {
		return fail(fmt.Errorf("save failed: %w", err))
	}

	result.Outcome = OutcomeSaved
	result.Duration = time.Since(start)
	logger.LogSaved(d.logger.WithField("size", result.Size), 0, resolved, result.Path)

	return result
}

// FileName is the basename of the URL path; the query string is ignored
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("image URL %q has no file name", rawURL)
	}
	return name, nil
}
