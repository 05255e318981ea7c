package menu

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when the menu file does not exist.
var ErrNotFound = errors.New("menu file not found")

// Catalog serves the menu JSON file and its search index. The file is
// re-read when its modification time or size changes.
type Catalog struct {
	Path string
	opts []Option

	mu      sync.RWMutex
	modTime time.Time
	size    int64
	raw     []byte
	index   *Index
}

// NewCatalog returns a catalog backed by the JSON file at path.
func NewCatalog(path string, opts ...Option) *Catalog {
	return &Catalog{Path: path, opts: opts}
}

// Raw returns the menu file contents.
func (c *Catalog) Raw() ([]byte, error) {
	raw, _, err := c.current()
	return raw, err
}

// Search returns up to k items ranked against q.
func (c *Catalog) Search(q string, k int) ([]Result, error) {
	_, idx, err := c.current()
	if err != nil {
		return nil, err
	}
	return idx.TopK(q, k), nil
}

func (c *Catalog) current() ([]byte, *Index, error) {
	fi, err := os.Stat(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	c.mu.RLock()
	if c.raw != nil && fi.ModTime().Equal(c.modTime) && fi.Size() == c.size {
		raw, idx := c.raw, c.index
		c.mu.RUnlock()
		return raw, idx, nil
	}
	c.mu.RUnlock()

	raw, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	items, err := ExtractItems(raw)
	if err != nil {
		return nil, nil, err
	}
	idx := NewIndex(items, c.opts...)

	c.mu.Lock()
	c.raw, c.index = raw, idx
	c.modTime, c.size = fi.ModTime(), fi.Size()
	c.mu.Unlock()
	return raw, idx, nil
}

// ExtractItems walks an arbitrary menu document and returns every JSON
// object that has a string "name". The category of an item is the "category"
// or "name"-less "title" of the closest enclosing object, or the key it was
// found under. Object keys are visited in sorted order.
func ExtractItems(raw []byte) ([]Item, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	var out []Item
	walk(root, "", &out)
	return out, nil
}

func walk(v any, category string, out *[]Item) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			walk(e, category, out)
		}
	case map[string]any:
		if name, ok := t["name"].(string); ok && name != "" {
			it := Item{Name: name, Category: category}
			it.Description, _ = t["description"].(string)
			if c, ok := t["category"].(string); ok && c != "" {
				it.Category = c
			}
			it.Raw, _ = json.Marshal(t)
			*out = append(*out, it)
			return
		}
		if c, ok := t["category"].(string); ok && c != "" {
			category = c
		} else if c, ok := t["title"].(string); ok && c != "" {
			category = c
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := category
			if child == "" {
				child = k
			}
			walk(t[k], child, out)
		}
	}
}
