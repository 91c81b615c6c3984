package locale

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/phrasebook"
)

// DefaultLocale is used when no default locale is configured.
const DefaultLocale = "en"

// SynonymsName is the base file name (without extension) that marks a
// message file as a synonym batch in LoadDir.
const SynonymsName = "synonyms"

// ErrInvalidLayout reports a message file that is not inside a locale
// directory.
var ErrInvalidLayout = errors.New("locale: file outside a locale directory")

// Registry multiplexes one Resolver per locale and resolves keys through a
// fallback chain: requested locale, its base language, any configured
// fallbacks, then the default locale. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]*phrasebook.Resolver
	fallbacks map[string][]string
	matcher   *matcher
	def       string
	log       *slog.Logger
}

// Option configures the Registry during construction.
type Option func(*Registry)

// WithDefaultLocale sets the locale used as the last resort of every
// fallback chain.
func WithDefaultLocale(loc string) Option {
	return func(g *Registry) {
		if loc != "" {
			g.def = phrasebook.Normalize(loc)
		}
	}
}

// WithLogger sets the diagnostic sink shared by all per-locale Resolvers.
func WithLogger(log *slog.Logger) Option {
	return func(g *Registry) {
		if log != nil {
			g.log = log
		}
	}
}

// WithFallbacks configures the fallback chain for a locale at construction
// time, same semantics as SetFallbacks.
func WithFallbacks(loc string, chain ...string) Option {
	return func(g *Registry) {
		g.setFallbacks(loc, chain)
	}
}

// NewRegistry creates a Registry with no locales registered. Resolvers are
// created on demand by Resolver or LoadDir.
func NewRegistry(opts ...Option) *Registry {
	g := &Registry{
		resolvers: make(map[string]*phrasebook.Resolver),
		fallbacks: make(map[string][]string),
		def:       DefaultLocale,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Default returns the default locale.
func (g *Registry) Default() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.def
}

// Resolver returns the Resolver for loc, creating an empty one on first use.
// Locale tags are normalized, so "en-US" and "EN-us" share a Resolver.
func (g *Registry) Resolver(loc string) *phrasebook.Resolver {
	key := phrasebook.Normalize(loc)

	g.mu.RLock()
	r, ok := g.resolvers[key]
	g.mu.RUnlock()
	if ok {
		return r
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok = g.resolvers[key]; ok {
		return r
	}
	r = phrasebook.New(phrasebook.WithLogger(g.log))
	g.resolvers[key] = r
	g.matcher = nil
	return r
}

// SetFallbacks replaces the fallback chain for a locale. Empty entries,
// duplicates, and the locale itself are dropped.
func (g *Registry) SetFallbacks(loc string, chain ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setFallbacks(loc, chain)
}

func (g *Registry) setFallbacks(loc string, chain []string) {
	if loc == "" {
		return
	}
	key := phrasebook.Normalize(loc)

	seen := map[string]struct{}{key: {}}
	clean := make([]string, 0, len(chain))
	for _, fb := range chain {
		fb = phrasebook.Normalize(fb)
		if fb == "" {
			continue
		}
		if _, dup := seen[fb]; dup {
			continue
		}
		seen[fb] = struct{}{}
		clean = append(clean, fb)
	}
	g.fallbacks[key] = clean
}

// Fallbacks returns a copy of the configured fallback chain for a locale.
func (g *Registry) Fallbacks(loc string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	chain := g.fallbacks[phrasebook.Normalize(loc)]
	if len(chain) == 0 {
		return nil
	}
	out := make([]string, len(chain))
	copy(out, chain)
	return out
}

// Locales returns the registered locales: the default locale first (whether
// or not it holds messages yet), the rest sorted alphabetically.
func (g *Registry) Locales() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.localesLocked()
}

func (g *Registry) localesLocked() []string {
	out := make([]string, 0, len(g.resolvers)+1)
	out = append(out, g.def)

	rest := make([]string, 0, len(g.resolvers))
	for loc := range g.resolvers {
		if loc != g.def {
			rest = append(rest, loc)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Translation resolves key for loc, walking the fallback chain until one
// layer yields a message. The boolean reports whether any layer resolved
// the key.
func (g *Registry) Translation(loc, key string) (string, bool) {
	for _, candidate := range g.chain(loc) {
		g.mu.RLock()
		r := g.resolvers[candidate]
		g.mu.RUnlock()
		if r == nil {
			continue
		}
		if msg, ok := r.Translation(key); ok {
			return msg, true
		}
	}
	return "", false
}

// Catalog returns the merged message table for loc: the fallback chain is
// applied weakest layer first, so a stronger layer overrides the same key
// the way a later load would.
func (g *Registry) Catalog(loc string) map[string]string {
	chain := g.chain(loc)
	out := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		g.mu.RLock()
		r := g.resolvers[chain[i]]
		g.mu.RUnlock()
		if r == nil {
			continue
		}
		maps.Copy(out, r.Snapshot())
	}
	return out
}

// chain returns the lookup order for loc: the locale itself, its base
// language, configured fallbacks, then the default locale, deduplicated.
func (g *Registry) chain(loc string) []string {
	key := phrasebook.Normalize(loc)

	g.mu.RLock()
	fallbacks := g.fallbacks[key]
	def := g.def
	g.mu.RUnlock()

	out := make([]string, 0, len(fallbacks)+3)
	seen := make(map[string]struct{}, len(fallbacks)+3)
	add := func(candidate string) {
		if candidate == "" {
			return
		}
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	add(key)
	add(baseLocale(key))
	for _, fb := range fallbacks {
		add(fb)
	}
	add(def)
	return out
}

// LoadDir loads every message file under fsys using the layout
// {locale}/{name}.{json,yaml,yml,toml}. Files whose base name is
// SynonymsName load into the locale's synonym table, everything else into
// its translation table, all under prefix. Files are parsed concurrently
// but merged in walk order, so a later file overrides an earlier one the
// same way sequential loads would. Unknown extensions are skipped.
func (g *Registry) LoadDir(fsys fs.FS, prefix string) error {
	type batch struct {
		loc      string
		src      phrasebook.Source
		entries  map[string]any
		synonyms bool
	}

	var batches []*batch
	err := fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		src, ok := sourceFor(fsys, filePath)
		if !ok {
			return nil
		}

		dir := path.Dir(filePath)
		if dir == "." || dir == "" {
			return fmt.Errorf("%w: %q", ErrInvalidLayout, filePath)
		}

		name := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
		batches = append(batches, &batch{
			loc:      path.Base(dir),
			src:      src,
			synonyms: name == SynonymsName,
		})
		return nil
	})
	if err != nil {
		return err
	}

	var eg errgroup.Group
	for _, b := range batches {
		eg.Go(func() error {
			entries, err := b.src()
			if err != nil {
				return err
			}
			b.entries = entries
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, b := range batches {
		r := g.Resolver(b.loc)
		if b.synonyms {
			_ = r.LoadSynonyms(prefix, phrasebook.Static(b.entries))
		} else {
			_ = r.LoadTranslations(prefix, phrasebook.Static(b.entries))
		}
	}
	return nil
}

func sourceFor(fsys fs.FS, name string) (phrasebook.Source, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return phrasebook.JSONFile(fsys, name), true
	case ".yaml", ".yml":
		return phrasebook.YAMLFile(fsys, name), true
	case ".toml":
		return phrasebook.TOMLFile(fsys, name), true
	default:
		return nil, false
	}
}

// baseLocale strips the region from a locale tag (e.g. "en-us" → "en").
// Returns the input unchanged if there is no region.
func baseLocale(loc string) string {
	if i := strings.IndexByte(loc, '-'); i > 0 {
		return loc[:i]
	}
	return loc
}
