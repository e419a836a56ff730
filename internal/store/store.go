package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/watcher"
)

// DefaultCacheSize is the number of templates cached when none is given.
const DefaultCacheSize = 64

// EnvSearchPath is the colon-separated search path consulted after the
// configured directories.
const EnvSearchPath = "FHICL_FILE_PATH"

// ErrTemplateNotFound matches every lookup failure with errors.Is.
var ErrTemplateNotFound = daqerrors.Sentinel(daqerrors.ErrCodeTemplateNotFound)

// Store loads base templates by name.
type Store interface {
	Load(name string) (string, error)
}

// Entry describes one resolvable template.
type Entry struct {
	Name string
	// Source is the absolute file path, or "embedded" for the built-in set.
	Source string
}

// EmbeddedSource is the Entry.Source of templates from the fallback FS.
const EmbeddedSource = "embedded"

// FileStore is a Store backed by directories and an optional fallback FS.
// It is safe for concurrent use.
type FileStore struct {
	dirs     []string
	fallback fs.FS
	cache    *lru.Cache[string, string]
	logger   *slog.Logger
	changes  chan []string

	active  atomic.Pointer[watcher.DirWatcher]
	dropped atomic.Uint64
}

// Option configures a FileStore.
type Option func(*fileStoreConfig)

type fileStoreConfig struct {
	dirs      []string
	fallback  fs.FS
	cacheSize int
	useEnv    bool
	logger    *slog.Logger
}

// WithDirs appends search directories.
func WithDirs(dirs ...string) Option {
	return func(c *fileStoreConfig) {
		c.dirs = append(c.dirs, dirs...)
	}
}

// WithFallback sets the file system consulted after every directory.
func WithFallback(fsys fs.FS) Option {
	return func(c *fileStoreConfig) {
		c.fallback = fsys
	}
}

// WithCacheSize sets the LRU capacity.
func WithCacheSize(n int) Option {
	return func(c *fileStoreConfig) {
		c.cacheSize = n
	}
}

// WithEnvSearchPath appends the directories listed in FHICL_FILE_PATH.
func WithEnvSearchPath() Option {
	return func(c *fileStoreConfig) {
		c.useEnv = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *fileStoreConfig) {
		c.logger = logger
	}
}

// New creates a FileStore.
func New(opts ...Option) *FileStore {
	cfg := &fileStoreConfig{
		cacheSize: DefaultCacheSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.useEnv {
		cfg.dirs = append(cfg.dirs, filepath.SplitList(os.Getenv(EnvSearchPath))...)
	}
	if cfg.cacheSize <= 0 {
		cfg.cacheSize = DefaultCacheSize
	}

	dirs := make([]string, 0, len(cfg.dirs))
	seen := make(map[string]bool)
	for _, d := range cfg.dirs {
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	cache, _ := lru.New[string, string](cfg.cacheSize)
	return &FileStore{
		dirs:     dirs,
		fallback: cfg.fallback,
		cache:    cache,
		logger:   cfg.logger,
		changes:  make(chan []string, 16),
	}
}

// Dirs returns the search directories in order.
func (s *FileStore) Dirs() []string {
	return append([]string(nil), s.dirs...)
}

// Load returns the text of the named template.
func (s *FileStore) Load(name string) (string, error) {
	text, _, err := s.load(name)
	return text, err
}

// Resolve returns the text and source of the named template.
func (s *FileStore) Resolve(name string) (Entry, string, error) {
	text, source, err := s.load(name)
	if err != nil {
		return Entry{}, "", err
	}
	return Entry{Name: name, Source: source}, text, nil
}

func (s *FileStore) load(name string) (text, source string, err error) {
	if !validName(name) {
		return "", "", notFound(name, s.dirs)
	}

	source, err = s.locate(name)
	if err != nil {
		return "", "", err
	}

	if cached, ok := s.cache.Get(name); ok {
		return cached, source, nil
	}

	var data []byte
	if source == EmbeddedSource {
		data, err = fs.ReadFile(s.fallback, name)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return "", "", daqerrors.New(daqerrors.ErrCodeTemplateNotFound,
			fmt.Sprintf("template %q could not be read", name), err).
			WithDetail("source", source)
	}

	text = string(data)
	s.cache.Add(name, text)
	s.logger.Debug("loaded template",
		slog.String("name", name),
		slog.String("source", source),
		slog.Int("bytes", len(data)))
	return text, source, nil
}

// locate finds the first source holding name.
func (s *FileStore) locate(name string) (string, error) {
	for _, dir := range s.dirs {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("skipping unreadable template candidate",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
	if s.fallback != nil {
		if info, err := fs.Stat(s.fallback, name); err == nil && !info.IsDir() {
			return EmbeddedSource, nil
		}
	}
	return "", notFound(name, s.dirs)
}

// List returns every resolvable template, sorted by name. A name present in
// several places is reported once, with the source Load would use.
func (s *FileStore) List() ([]Entry, error) {
	found := make(map[string]string)

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, daqerrors.New(daqerrors.ErrCodeTemplateNotFound,
				fmt.Sprintf("list template directory %s", dir), err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".fcl") {
				continue
			}
			if _, ok := found[e.Name()]; !ok {
				found[e.Name()] = filepath.Join(dir, e.Name())
			}
		}
	}

	if s.fallback != nil {
		matches, err := fs.Glob(s.fallback, "*.fcl")
		if err != nil {
			return nil, daqerrors.InternalError("list embedded templates", err)
		}
		for _, m := range matches {
			if _, ok := found[m]; !ok {
				found[m] = EmbeddedSource
			}
		}
	}

	out := make([]Entry, 0, len(found))
	for name, source := range found {
		out = append(out, Entry{Name: name, Source: source})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Invalidate drops name from the cache.
func (s *FileStore) Invalidate(name string) {
	s.cache.Remove(name)
}

// Purge empties the cache.
func (s *FileStore) Purge() {
	s.cache.Purge()
}

// Cached reports whether name is currently cached.
func (s *FileStore) Cached(name string) bool {
	return s.cache.Contains(name)
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}

func notFound(name string, dirs []string) error {
	return daqerrors.New(daqerrors.ErrCodeTemplateNotFound,
		fmt.Sprintf("template %q not found", name), nil).
		WithDetail("template", name).
		WithDetail("search_path", strings.Join(dirs, string(os.PathListSeparator))).
		WithSuggestion("add the directory holding it to templates.search_path or " + EnvSearchPath)
}
