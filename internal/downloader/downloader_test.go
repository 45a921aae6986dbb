package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"forumdump/internal/forumtest"
	"forumdump/pkg/discourse"
	"forumdump/pkg/logger"
	"forumdump/pkg/ratelimit"
	"forumdump/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockClient is a mock implementation of the forum client
type MockClient struct {
	mu        sync.Mutex
	downloads []string
	failures  map[string]error
}

func (m *MockClient) ResolveURL(ref string) (string, error) {
	if strings.HasPrefix(ref, "/") {
		return "https://forum.example.com" + ref, nil
	}
	return ref, nil
}

func (m *MockClient) Download(ctx context.Context, rawURL string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads = append(m.downloads, rawURL)
	if err := m.failures[rawURL]; err != nil {
		return nil, err
	}
	return []byte("image:" + rawURL), nil
}

// MockStorage keeps files in memory
type MockStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{files: make(map[string][]byte)}
}

func (m *MockStorage) HasFile(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *MockStorage) SaveFile(path string, r io.Reader) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func TestRunSavesNextToTopic(t *testing.T) {
	client := &MockClient{}
	store := NewMockStorage()
	log := logger.NewTestLogger()

	jobs := []Job{
		{URL: "/uploads/original/a.jpg", Dir: "archive/t1"},
		{URL: "https://cdn.example.com/b.png?v=2", Dir: "archive/t2"},
	}

	summary, err := New(client, store, false, log).Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, []byte("image:https://forum.example.com/uploads/original/a.jpg"), store.files[filepath.Join("archive/t1", "a.jpg")])
	assert.Contains(t, store.files, filepath.Join("archive/t2", "b.png"))
	assert.True(t, log.HasMessage("saving 2 pics"))
	assert.Equal(t, 2, log.Count("[SAVED] "))
}

func TestRunSkipsExistingUnlessOverwrite(t *testing.T) {
	store := NewMockStorage()
	store.files[filepath.Join("archive/t1", "a.jpg")] = []byte("old")
	jobs := []Job{{URL: "/a.jpg", Dir: "archive/t1"}}

	client := &MockClient{}
	summary, err := New(client, store, false, logger.NewNopLogger()).Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, client.downloads)
	assert.Equal(t, []byte("old"), store.files[filepath.Join("archive/t1", "a.jpg")])

	summary, err = New(client, store, true, logger.NewNopLogger()).Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)
	assert.Len(t, client.downloads, 1)
	assert.NotEqual(t, []byte("old"), store.files[filepath.Join("archive/t1", "a.jpg")])
}

func TestDuplicateURLsAreEachProcessed(t *testing.T) {
	client := &MockClient{}
	jobs := []Job{{URL: "/a.jpg", Dir: "t1"}, {URL: "/a.jpg", Dir: "t1"}}

	summary, err := New(client, NewMockStorage(), true, logger.NewNopLogger()).Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Saved)
	assert.Len(t, client.downloads, 2)
}

func TestFailuresAreCountedNotFatal(t *testing.T) {
	client := &MockClient{failures: map[string]error{
		"https://forum.example.com/broken.jpg": fmt.Errorf("status 404"),
	}}
	store := NewMockStorage()
	log := logger.NewTestLogger()

	jobs := []Job{
		{URL: "/broken.jpg", Dir: "t1"},
		{URL: "https://forum.example.com/", Dir: "t1"},
		{URL: "/fine.jpg", Dir: "t1"},
	}

	summary, err := New(client, store, false, log).Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 1, summary.Saved)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	assert.ErrorContains(t, summary.Results[0].Error, "status 404")
	assert.Equal(t, OutcomeSaved, summary.Results[2].Outcome)
	assert.Len(t, log.GetMessagesByLevel("ERROR"), 2)
}

func TestSaveFailure(t *testing.T) {
	store := NewMockStorage()
	store.saveErr = fmt.Errorf("disk full")

	summary, err := New(&MockClient{}, store, false, logger.NewNopLogger()).Run(context.Background(), []Job{{URL: "/a.jpg", Dir: "t"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.ErrorContains(t, summary.Results[0].Error, "save failed")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &MockClient{}
	summary, err := New(client, NewMockStorage(), false, logger.NewNopLogger()).Run(ctx, []Job{{URL: "/a.jpg", Dir: "t"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Saved)
	assert.Empty(t, client.downloads)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://forum.example.com/uploads/default/original/2X/a/abc.jpeg", "abc.jpeg", false},
		{"https://cdn.example.com/b.png?width=100", "b.png", false},
		{"https://forum.example.com/", "", true},
		{"https://forum.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := FileName(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunAgainstServerAndDisk(t *testing.T) {
	srv := forumtest.NewServer(t)
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	srv.Bytes("/uploads/pic.png", "image/png", png)

	client, err := discourse.NewClient(srv.URL, nil, ratelimit.Unlimited(), logger.NewNopLogger())
	require.NoError(t, err)
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	dir := filepath.Join(store.Root(), "host", "general", "news", "hello")
	d := New(client, store, false, logger.NewNopLogger())

	summary, err := d.Run(context.Background(), []Job{{URL: "/uploads/pic.png", Dir: dir}})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Saved)

	data, err := os.ReadFile(filepath.Join(dir, "pic.png"))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(png, data))

	srv.ResetRequests()
	summary, err = d.Run(context.Background(), []Job{{URL: "/uploads/pic.png", Dir: dir}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, srv.RequestCount())
}
