package archiver

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"forumdump/internal/forumtest"
	"forumdump/pkg/config"
	"forumdump/pkg/errors"
	"forumdump/pkg/layout"
	"forumdump/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.RateLimit.RequestDelay = 0
	cfg.Download.Timeout = 5 * time.Second
	return cfg
}

func picForum() forumtest.Forum {
	return forumtest.Forum{Categories: []forumtest.Category{{
		ID:   1,
		Slug: "general",
		Topics: []forumtest.Topic{
			{ID: 1, Slug: "hello"},
			{ID: 2, Slug: "pinned", Cooked: []string{`<img srcset="/uploads/p1.png 1x, /uploads/p2.png 2x">`}},
		},
		Subcategories: []forumtest.Subcategory{{
			ID: 10, Slug: "news",
			Topics: []forumtest.Topic{{ID: 1, Slug: "hello", Cooked: []string{
				`<p>look</p><img srcset="/uploads/a.jpg, /uploads/a@2x.jpg 2x">`,
			}}},
		}},
	}}}
}

func TestCrawlThenPictures(t *testing.T) {
	srv := forumtest.NewServer(t)
	srv.Install(picForum())
	srv.Bytes("/uploads/a@2x.jpg", "image/jpeg", []byte("A2"))
	srv.Bytes("/uploads/p2.png", "image/png", []byte("P2"))

	cfg := testConfig(t)
	a, err := New(cfg, srv.URL, logger.NewNopLogger())
	require.NoError(t, err)

	host, err := layout.HostFromBaseURL(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, host, a.Host())
	assert.Equal(t, filepath.Join(cfg.Output.BaseDirectory, host), a.HostDir())

	report, stats, err := a.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Topics)
	assert.Equal(t, 1, report.Loners)
	assert.Equal(t, 6, stats.Fetched)

	walk, summary, err := a.Pictures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, walk.Topics)
	assert.Equal(t, 2, summary.Saved)

	data, err := os.ReadFile(filepath.Join(a.HostDir(), "general", "news", "hello", "a@2x.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "A2", string(data))

	data, err = os.ReadFile(filepath.Join(a.HostDir(), "general", layout.OrphanSubcategory, "pinned", "p2.png"))
	require.NoError(t, err)
	assert.Equal(t, "P2", string(data))

	// Both phases are resumable: nothing is requested again.
	srv.ResetRequests()
	_, stats, err = a.Crawl(context.Background())
	require.NoError(t, err)
	_, summary, err = a.Pictures(context.Background())
	require.NoError(t, err)
	assert.Zero(t, srv.RequestCount())
	assert.Equal(t, 6, stats.Skipped)
	assert.Equal(t, 2, summary.Skipped)
}

func TestPicturesOverwrite(t *testing.T) {
	srv := forumtest.NewServer(t)
	srv.Install(picForum())
	srv.Bytes("/uploads/a@2x.jpg", "image/jpeg", []byte("A2"))
	srv.Bytes("/uploads/p2.png", "image/png", []byte("P2"))

	cfg := testConfig(t)
	cfg.Output.OverwriteImages = true
	a, err := New(cfg, srv.URL, logger.NewNopLogger())
	require.NoError(t, err)

	_, _, err = a.Crawl(context.Background())
	require.NoError(t, err)
	_, _, err = a.Pictures(context.Background())
	require.NoError(t, err)

	srv.ResetRequests()
	_, summary, err := a.Pictures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 2, srv.RequestCount())
}

func TestPicturesWithoutArchive(t *testing.T) {
	a, err := New(testConfig(t), "https://forum.example.com", logger.NewNopLogger())
	require.NoError(t, err)

	_, _, err = a.Pictures(context.Background())
	assert.ErrorContains(t, err, "run the json command first")
}

func TestCrawlRootUnavailable(t *testing.T) {
	srv := forumtest.NewServer(t)
	srv.Fail("/categories.json", http.StatusServiceUnavailable)

	a, err := New(testConfig(t), srv.URL, logger.NewNopLogger())
	require.NoError(t, err)

	_, _, err = a.Crawl(context.Background())
	assert.ErrorIs(t, err, errors.ErrRootUnavailable)
}

func TestNewRejectsBaseURLWithoutHost(t *testing.T) {
	_, err := New(testConfig(t), "forum.example.com", logger.NewNopLogger())
	assert.ErrorIs(t, err, errors.ErrInvalidBaseURL)
}
