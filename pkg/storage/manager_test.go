package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"forumdump/pkg/errors"
	"forumdump/pkg/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicKey(t *testing.T) layout.Key {
	t.Helper()
	pos := layout.Root("forum.example.com").WithCategory("general").WithSubcategory("news").WithTopic("hello")
	key, err := layout.KeyFor(pos, "/t/5.json")
	require.NoError(t, err)
	return key
}

func TestWriteAndReadJSON(t *testing.T) {
	root := t.TempDir()
	manager, err := NewManager(root)
	require.NoError(t, err)

	key := topicKey(t)
	assert.False(t, manager.Exists(key))

	raw := json.RawMessage(`{"id":5,"post_stream":{"posts":[{"cooked":"<p>é</p>","score":1.50}]}}`)
	path, err := manager.WriteJSON(key, raw)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "forum.example.com", "general", "news", "hello", "5.json"), path)
	assert.True(t, manager.Exists(key))
	assert.Equal(t, 1, manager.GetWrittenCount())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n  \"id\": 5,")
	// Values are kept byte-for-byte.
	assert.Contains(t, string(content), `"<p>é</p>"`)
	assert.Contains(t, string(content), `1.50`)

	back, err := manager.ReadJSON(key)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(back))
}

func TestWriteJSONRejectsInvalidPayload(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = manager.WriteJSON(topicKey(t), json.RawMessage(`{"id":`))
	assert.ErrorIs(t, err, errors.ErrDecodeFailure)
	assert.False(t, manager.Exists(topicKey(t)))
}

func TestReadJSONDecodeFailure(t *testing.T) {
	root := t.TempDir()
	manager, err := NewManager(root)
	require.NoError(t, err)

	key := topicKey(t)
	require.NoError(t, os.MkdirAll(key.Dir(root), 0755))
	require.NoError(t, os.WriteFile(key.Path(root), []byte("not json"), 0644))

	_, err = manager.ReadJSON(key)
	assert.ErrorIs(t, err, errors.ErrDecodeFailure)
}

func TestSaveFileLeavesNoTemporaryFiles(t *testing.T) {
	root := t.TempDir()
	manager, err := NewManager(root)
	require.NoError(t, err)

	path := filepath.Join(root, "forum.example.com", "general", "news", "hello", "photo.jpg")
	require.NoError(t, manager.SaveFile(path, bytes.NewReader([]byte("first"))))
	require.NoError(t, manager.SaveFile(path, bytes.NewReader([]byte("second"))))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Dir(path)))
}

func TestWalkJSON(t *testing.T) {
	root := t.TempDir()
	manager, err := NewManager(root)
	require.NoError(t, err)

	host := filepath.Join(root, "forum.example.com")
	for _, rel := range []string{"categories.json", "general/1.json", "general/news/hello/5.json", "general/news/hello/photo.jpg"} {
		require.NoError(t, manager.SaveFile(filepath.Join(host, rel), bytes.NewReader([]byte("{}"))))
	}

	var seen []string
	require.NoError(t, manager.WalkJSON(host, func(path string) error {
		rel, err := filepath.Rel(host, path)
		require.NoError(t, err)
		seen = append(seen, filepath.ToSlash(rel))
		return nil
	}))

	assert.Equal(t, []string{"categories.json", "general/1.json", "general/news/hello/5.json"}, seen)
}
