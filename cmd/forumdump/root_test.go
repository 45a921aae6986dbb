package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"forumdump/internal/forumtest"
	"forumdump/pkg/layout"
	"forumdump/pkg/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args and returns everything printed to the terminal
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	saved := ui.Output
	ui.Output = &out
	t.Cleanup(func() { ui.Output = saved })

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func smallForum() forumtest.Forum {
	install := forumtest.Topic{ID: 30, Slug: "install", Cooked: []string{`<img srcset="/uploads/i.png, /uploads/i@3x.png 3x">`}}
	return forumtest.Forum{Categories: []forumtest.Category{{
		ID:     3,
		Slug:   "support",
		Topics: []forumtest.Topic{install, {ID: 31, Slug: "faq"}},
		Subcategories: []forumtest.Subcategory{{
			ID: 4, Slug: "linux",
			Topics: []forumtest.Topic{install},
		}},
	}}}
}

func TestUnknownSubcommandPrintsUsage(t *testing.T) {
	out, err := run(t, "mirror", "https://forum.example.com")
	require.NoError(t, err)

	assert.Contains(t, out, "unknown subcommand: mirror")
	assert.Contains(t, out, "Usage:")
}

func TestNoArgumentsPrintsUsage(t *testing.T) {
	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestWrongArgumentCount(t *testing.T) {
	for _, sub := range []string{"json", "pics"} {
		t.Run(sub, func(t *testing.T) {
			out, err := run(t, sub)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "expects exactly one base URL")
			assert.Contains(t, out, "Usage:")

			_, err = run(t, sub, "https://a.example.com", "https://b.example.com")
			assert.Error(t, err)
		})
	}
}

func TestJSONThenPics(t *testing.T) {
	srv := forumtest.NewServer(t)
	srv.Install(smallForum())
	srv.Bytes("/uploads/i@3x.png", "image/png", []byte("PNG3"))

	outDir := t.TempDir()
	common := []string{"--output", outDir, "--delay", "0", "--no-logo", "--log-level", "error"}

	out, err := run(t, append([]string{"json", srv.URL}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Crawl completed")

	host, err := layout.HostFromBaseURL(srv.URL)
	require.NoError(t, err)
	hostDir := filepath.Join(outDir, host)

	assert.FileExists(t, filepath.Join(hostDir, "categories.json"))
	assert.FileExists(t, filepath.Join(hostDir, "support", "linux", "install", "30.json"))
	assert.FileExists(t, filepath.Join(hostDir, "support", layout.OrphanSubcategory, "faq", "31.json"))

	out, err = run(t, append([]string{"pics", srv.URL}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Image download completed")

	data, err := os.ReadFile(filepath.Join(hostDir, "support", "linux", "install", "i@3x.png"))
	require.NoError(t, err)
	assert.Equal(t, "PNG3", string(data))

	srv.ResetRequests()
	_, err = run(t, append([]string{"json", srv.URL}, common...)...)
	require.NoError(t, err)
	_, err = run(t, append([]string{"pics", srv.URL}, common...)...)
	require.NoError(t, err)
	assert.Zero(t, srv.RequestCount())
}

func TestPicsWithoutArchive(t *testing.T) {
	_, err := run(t, "pics", "https://forum.example.com", "--output", t.TempDir(), "--no-logo", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run the json command first")
}

func TestJSONRejectsBadConfig(t *testing.T) {
	_, err := run(t, "json", "https://forum.example.com", "--log-level", "loud", "--no-logo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestConfigInitShowValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "forumdump.yaml")

	out, err := run(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")
	assert.FileExists(t, path)

	_, err = run(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = run(t, "config", "show", "--config", path, "--delay", "3s")
	require.NoError(t, err)
	assert.Contains(t, out, "request_delay: 3s")
	assert.Contains(t, out, "user_agent:")
	assert.Contains(t, out, path)

	out, err = run(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestConfigValidateReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  max_attempts: 0\n"), 0644))

	_, err := run(t, "config", "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max attempts must be at least 1")
}
