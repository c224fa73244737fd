// Package codebase is the file discovery / iteration driver spec.md
// explicitly excludes from the parser's core: it walks a directory tree,
// runs the declaration parser over each source file against one shared
// builder.Graph, and exposes the aggregated result. It also wraps the
// driver with an fsnotify-based watcher and a bbolt-backed content-hash
// cache (see watcher.go and cache.go).
//
// Grounded on the teacher's java/codebase/codebase.go aggregation loop,
// generalized from Java's classfile/source scan to this module's
// lexer+declparser pipeline.
package codebase

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dhamidi/declscan/builder"
	"github.com/dhamidi/declscan/declparser"
	"github.com/dhamidi/declscan/lexer"
	"github.com/dhamidi/declscan/model"
)

// FileInfo records the outcome of parsing one source file.
type FileInfo struct {
	Path     string
	ParseErr error
}

// Codebase aggregates the parse results of every source file under a
// root directory into a single builder.Graph.
type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	graph   *builder.Graph
	files   map[string]*FileInfo

	ignoreAnnotations bool
	cache             *Cache
}

// Option configures a Codebase at construction time.
type Option func(*Codebase)

// WithIgnoreAnnotations propagates declparser.WithIgnoreAnnotations to
// every file the Codebase parses.
func WithIgnoreAnnotations() Option {
	return func(c *Codebase) { c.ignoreAnnotations = true }
}

// WithCache attaches a persistent content-hash cache. ScanFile
// consults it to skip reparsing a file this Codebase has already parsed
// when its content hash is unchanged since the cache was last updated
// for that path.
func WithCache(cache *Cache) Option {
	return func(c *Codebase) { c.cache = cache }
}

// New returns a Codebase rooted at rootDir, backed by a fresh
// builder.Graph.
func New(rootDir string, opts ...Option) *Codebase {
	c := &Codebase{
		rootDir: rootDir,
		graph:   builder.New(),
		files:   make(map[string]*FileInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RootDir returns the directory this Codebase was constructed with.
func (c *Codebase) RootDir() string { return c.rootDir }

// Graph returns the shared builder.Graph every parsed file contributes
// to.
func (c *Codebase) Graph() *builder.Graph { return c.graph }

// sourceExtensions lists the file suffixes ScanAll treats as source
// files belonging to this language.
var sourceExtensions = map[string]bool{
	".php":  true,
	".phtml": true,
	".inc":  true,
}

// ScanAll walks the root directory, parsing every recognized source
// file, and resolves forward references once the walk completes.
func (c *Codebase) ScanAll() error {
	err := filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}
		c.ScanFile(path)
		return nil
	})
	c.graph.ResolveReferences()
	return err
}

// ScanFile reads and parses a single file, recording the outcome even
// when parsing fails so later lookups can report why a file has no
// declarations. A file that cannot be read is not recorded.
func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.UpdateFile(path, content)
}

// UpdateFile (re)parses path using the given content, without touching
// disk. Used by Watcher for incremental rescans and by the LSP server
// for unsaved-buffer contents.
func (c *Codebase) UpdateFile(path string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A cache hit only lets us skip reparsing a file this process has
	// already built into Graph this run — without that, a cold-started
	// process with an empty Graph would skip a file entirely just
	// because an earlier run's cache still remembers its hash.
	if c.cache != nil {
		if _, already := c.files[path]; already {
			if unchanged, err := c.cache.Unchanged(path, content); err == nil && unchanged {
				return nil
			}
		}
	}

	tz := lexer.New(content, path)
	var parserOpts []declparser.Option
	if c.ignoreAnnotations {
		parserOpts = append(parserOpts, declparser.WithIgnoreAnnotations())
	}
	p := declparser.New(tz, c.graph, parserOpts...)

	parseErr := p.Parse()
	c.files[path] = &FileInfo{Path: path, ParseErr: parseErr}
	if parseErr != nil {
		return fmt.Errorf("parsing %s: %w", path, parseErr)
	}
	if c.cache != nil {
		c.cache.Put(path, content)
	}
	return nil
}

// RemoveFile drops a file's parse record. It does not retract the
// declarations already built into Graph — spec.md's builder contract
// has no retraction operation, so a removed file's declarations remain
// in Graph; ScanAll parses into the same Graph and does not clear them.
func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
	if c.cache != nil {
		c.cache.Delete(path)
	}
}

// FileInfo returns the parse record for path, if one exists.
func (c *Codebase) FileInfo(path string) (*FileInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fi, ok := c.files[path]
	return fi, ok
}

// AllPackages returns every package the codebase has built so far.
func (c *Codebase) AllPackages() []*model.Package {
	return c.graph.AllPackages()
}

// FindType looks up a class or interface by qualified name.
func (c *Codebase) FindType(fqn string) (*model.Type, bool) {
	return c.graph.FindType(fqn)
}
