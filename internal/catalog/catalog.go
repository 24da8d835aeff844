package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ohare93/formula/internal/document"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultURL serves the demo autocomplete list
const DefaultURL = "https://652f91320b8d8ddac0b2b62b.mockapi.io/autocomplete"

// Item is an autocomplete candidate
type Item struct {
	ID       string
	Name     string
	Category string
	Value    document.Value
}

// rawItem mirrors the wire shape; value may be a number or a string
type rawItem struct {
	ID       string      `json:"id" yaml:"id"`
	Name     string      `json:"name" yaml:"name"`
	Category string      `json:"category" yaml:"category"`
	Value    interface{} `json:"value" yaml:"value"`
}

func (r rawItem) item() (Item, error) {
	it := Item{ID: r.ID, Name: r.Name, Category: r.Category}
	switch v := r.Value.(type) {
	case float64:
		it.Value = document.NumberValue(v)
	case int:
		it.Value = document.NumberValue(float64(v))
	case string:
		it.Value = document.TextValue(v)
	case nil:
		it.Value = document.TextValue("")
	default:
		return Item{}, fmt.Errorf("item %s: unsupported value type %T", r.ID, v)
	}
	return it, nil
}

func convert(raw []rawItem) ([]Item, error) {
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		it, err := r.item()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// Source delivers the candidate list
type Source interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// NewSource prefers a local file over a URL
func NewSource(url, file string) Source {
	if file != "" {
		return &FileSource{Path: file}
	}
	if url == "" {
		url = DefaultURL
	}
	return &HTTPSource{URL: url}
}

// HTTPSource fetches a JSON array with a GET request
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Item, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("network response was not ok: %s", resp.Status)
	}

	var raw []rawItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return convert(raw)
}

func (s *HTTPSource) String() string {
	return s.URL
}

// FileSource reads a JSON or YAML list from disk
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var raw []rawItem
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", s.Path, err)
	}
	return convert(raw)
}

func (s *FileSource) String() string {
	return s.Path
}

// Cache fetches the source once and keeps the outcome
type Cache struct {
	source Source
	logger *zap.Logger

	mu     sync.Mutex
	loaded bool
	items  []Item
	err    error
}

// NewCache wraps a source
func NewCache(source Source, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{source: source, logger: logger}
}

// Load fetches on first use and returns the cached outcome afterwards
func (c *Cache) Load(ctx context.Context) ([]Item, error) {
	c.mu.Lock()
	if c.loaded {
		defer c.mu.Unlock()
		return c.items, c.err
	}
	c.mu.Unlock()
	return c.Reload(ctx)
}

// Reload fetches again and replaces the cached outcome
func (c *Cache) Reload(ctx context.Context) ([]Item, error) {
	items, err := c.source.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.items, c.err = items, err
	if err != nil {
		c.logger.Error("catalog fetch failed", zap.Stringer("source", describe(c.source)), zap.Error(err))
	} else {
		c.logger.Info("catalog loaded", zap.Stringer("source", describe(c.source)), zap.Int("items", len(items)))
	}
	return items, err
}

// Items returns the cached items, nil until a load succeeded
func (c *Cache) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Err returns the error of the last load
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

type stringer string

func (s stringer) String() string { return string(s) }

func describe(src Source) fmt.Stringer {
	if s, ok := src.(fmt.Stringer); ok {
		return s
	}
	return stringer(fmt.Sprintf("%T", src))
}

// Filter returns the items whose name contains query, ignoring case, in source
// order. An empty query or an unloaded list matches nothing.
func Filter(items []Item, query string) []Item {
	if query == "" || len(items) == 0 {
		return nil
	}
	q := strings.ToLower(query)
	var matches []Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			matches = append(matches, it)
		}
	}
	return matches
}
