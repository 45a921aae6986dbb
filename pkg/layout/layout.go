package layout

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"forumdump/pkg/errors"
)

// OrphanSubcategory is the synthetic subcategory holding topics that no real subcategory lists.
const OrphanSubcategory = "_topics_without_a_subcategory"

// Level names one level of the forum hierarchy
type Level int

const (
	LevelHost Level = iota
	LevelCategory
	LevelSubcategory
	LevelTopic
)

func (l Level) String() string {
	switch l {
	case LevelHost:
		return "host"
	case LevelCategory:
		return "category"
	case LevelSubcategory:
		return "subcategory"
	case LevelTopic:
		return "topic"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Position is a point in the hierarchy. It is a value: the With* methods return copies.
type Position struct {
	Host        string
	Category    string
	Subcategory string
	Topic       string
}

// Root returns the position of the forum root
func Root(host string) Position {
	return Position{Host: host}
}

// WithCategory returns a copy positioned at category slug
func (p Position) WithCategory(slug string) Position {
	p.Category = slug
	p.Subcategory = ""
	p.Topic = ""
	return p
}

// WithSubcategory returns a copy positioned at subcategory slug
func (p Position) WithSubcategory(slug string) Position {
	p.Subcategory = slug
	p.Topic = ""
	return p
}

// WithTopic returns a copy positioned at topic slug
func (p Position) WithTopic(slug string) Position {
	p.Topic = slug
	return p
}

func (p Position) level(l Level) string {
	switch l {
	case LevelHost:
		return p.Host
	case LevelCategory:
		return p.Category
	case LevelSubcategory:
		return p.Subcategory
	case LevelTopic:
		return p.Topic
	}
	return ""
}

// Require returns an error naming the first of levels that is empty
func (p Position) Require(levels ...Level) error {
	for _, l := range levels {
		if p.level(l) == "" {
			return errors.Missing(l.String(), "slug")
		}
	}
	return nil
}

// Segments returns the non-empty levels in hierarchy order
func (p Position) Segments() []string {
	segments := make([]string, 0, 4)
	for _, s := range []string{p.Host, p.Category, p.Subcategory, p.Topic} {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Key is the cache key of a persisted artifact: directory segments plus a file name
type Key struct {
	Segments []string
	Name     string
}

// KeyFor derives the cache key of resourcePath stored at pos.
//
//	/categories.json                        -> categories.json
//	/c/7.json                               -> 7.json
//	/c/7/12.json                            -> 7_12.json
//	/categories.json?parent_category_id=7   -> categories_parent_category_id-7.json
//
// Every level above the deepest one set must be present too; a gap yields
// ErrMissingIdentifier instead of a shortened path.
func KeyFor(pos Position, resourcePath string) (Key, error) {
	required := []Level{LevelHost}
	switch {
	case pos.Topic != "":
		required = append(required, LevelCategory, LevelSubcategory)
	case pos.Subcategory != "":
		required = append(required, LevelCategory)
	}
	if err := pos.Require(required...); err != nil {
		return Key{}, err
	}

	name, err := FileName(resourcePath)
	if err != nil {
		return Key{}, err
	}

	return Key{Segments: pos.Segments(), Name: name}, nil
}

// FileName maps a resource path onto the basename it is persisted under
func FileName(resourcePath string) (string, error) {
	u, err := url.Parse(resourcePath)
	if err != nil {
		return "", fmt.Errorf("invalid resource path %q: %w", resourcePath, err)
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "", fmt.Errorf("resource path %q has no file name", resourcePath)
	}

	// Drop the route prefix ("c", "t") and keep the ids.
	if len(parts) > 1 {
		parts = parts[1:]
	}
	name := strings.Join(parts, "_")

	if u.RawQuery != "" {
		ext := path.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		name = stem + "_" + foldQuery(u.Query()) + ext
	}

	return name, nil
}

func foldQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range values[k] {
			parts = append(parts, k+"-"+v)
		}
	}
	return strings.Join(parts, "_")
}

// Dir returns the directory of the key below root
func (k Key) Dir(root string) string {
	return filepath.Join(append([]string{root}, k.Segments...)...)
}

// Path returns the file path of the key below root
func (k Key) Path(root string) string {
	return filepath.Join(k.Dir(root), k.Name)
}

func (k Key) String() string {
	return path.Join(append(append([]string{}, k.Segments...), k.Name)...)
}

// HostFromBaseURL returns the host of base, which names the archive root directory
func HostFromBaseURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host; include the scheme, e.g. https://%s", errors.ErrInvalidBaseURL, base, strings.TrimPrefix(base, "//"))
	}
	return u.Host, nil
}
