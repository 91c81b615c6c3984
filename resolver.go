package phrasebook

import (
	"io"
	"log/slog"
	"maps"
	"strings"
	"sync"
)

// MetadataKey is the reserved entry key that carries batch metadata
// (authorship, locale notes) in message files. Entries under this key are
// never merged into the translation table.
const MetadataKey = "@metadata"

// Normalize returns the canonical lookup form of a key: the raw key
// lower-cased. Two keys that differ only in letter case address the same
// entry. Normalize is idempotent and total.
func Normalize(key string) string {
	return strings.ToLower(key)
}

// Resolver resolves message strings by key with case-insensitive lookup and
// one-hop synonym redirection. Loads are batch merges under the write lock,
// so a concurrent lookup observes either the pre-load or the post-load
// table, never a partial merge.
type Resolver struct {
	mu           sync.RWMutex
	translations map[string]string
	synonyms     map[string]string
	missing      func(key string)
	log          *slog.Logger
}

// Option configures the Resolver during construction.
type Option func(*Resolver)

// WithLogger sets the diagnostic sink for skipped entries and other
// non-fatal load conditions. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithTranslations merges a translation batch at construction time, applying
// prefix the same way LoadTranslations does.
func WithTranslations(prefix string, entries map[string]any) Option {
	return func(r *Resolver) {
		r.mergeTranslations(prefix, entries)
	}
}

// WithSynonyms merges a synonym batch at construction time, applying prefix
// the same way LoadSynonyms does.
func WithSynonyms(prefix string, entries map[string]any) Option {
	return func(r *Resolver) {
		r.mergeSynonyms(prefix, entries)
	}
}

// WithMissingKeyHandler sets a handler called with the normalized key when
// Translation misses both tables. Useful for detecting untranslated keys
// during development or monitoring gaps in message coverage.
func WithMissingKeyHandler(handler func(key string)) Option {
	return func(r *Resolver) {
		r.missing = handler
	}
}

// New creates a Resolver. The zero configuration is an empty table with a
// discard diagnostic sink; instances are independent, so tests can construct
// isolated Resolvers instead of sharing process-wide state.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		translations: make(map[string]string),
		synonyms:     make(map[string]string),
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// LoadTranslations pulls a raw key→value mapping from src and merges it into
// the translation table under prefix. If the Source fails, the error is
// returned and nothing is merged. Within a batch, the reserved MetadataKey
// entry is always skipped, a non-string value drops that entry with a
// diagnostic, and every surviving entry overwrites any prior value for its
// normalized key.
func (r *Resolver) LoadTranslations(prefix string, src Source) error {
	entries, err := src()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeTranslations(prefix, entries)
	return nil
}

// MergeTranslations merges a pre-built key→value mapping directly: no prefix
// is applied, keys are normalized, values are stored as-is. Used for merging
// in caller-supplied overrides.
func (r *Resolver) MergeTranslations(entries map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range entries {
		if key == MetadataKey {
			continue
		}
		r.translations[Normalize(key)] = value
	}
}

// LoadSynonyms pulls a raw alias→target mapping from src and merges it into
// the synonym table under prefix. Both the alias key and the target it points
// at receive the prefix, so synonym files can be written in terms of
// un-prefixed local keys. Existing entries are overwritten silently.
func (r *Resolver) LoadSynonyms(prefix string, src Source) error {
	entries, err := src()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeSynonyms(prefix, entries)
	return nil
}

// MergeSynonyms merges a pre-built alias→target mapping directly: alias keys
// are normalized, target values are stored exactly as given. Callers are
// responsible for supplying already-normalized targets.
func (r *Resolver) MergeSynonyms(entries map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, target := range entries {
		if key == MetadataKey {
			continue
		}
		r.synonyms[Normalize(key)] = target
	}
}

// Translation returns the message for key. A direct entry wins over synonym
// redirection; a synonym is followed at most one hop. The boolean reports
// whether a message was found — absence is a normal outcome, not an error.
func (r *Resolver) Translation(key string) (string, bool) {
	k := Normalize(key)

	r.mu.RLock()
	msg, ok := r.translations[k]
	if !ok {
		if target, redirected := r.synonyms[k]; redirected {
			msg, ok = r.translations[target]
		}
	}
	r.mu.RUnlock()

	if !ok {
		if r.missing != nil {
			r.missing(k)
		}
		return "", false
	}
	return msg, true
}

// Len reports the number of direct translation entries.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.translations)
}

// Snapshot returns a copy of the resolved message table: every direct entry
// plus every synonym whose target currently resolves, with direct entries
// taking precedence over aliases of the same name. The returned map is
// detached from the Resolver.
func (r *Resolver) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.translations)+len(r.synonyms))
	maps.Copy(out, r.translations)
	for alias, target := range r.synonyms {
		if _, direct := out[alias]; direct {
			continue
		}
		if msg, ok := r.translations[target]; ok {
			out[alias] = msg
		}
	}
	return out
}

// mergeTranslations merges raw entries under prefix. Callers hold the write
// lock (or own the Resolver exclusively during construction).
func (r *Resolver) mergeTranslations(prefix string, entries map[string]any) {
	for key, value := range entries {
		if key == MetadataKey {
			continue
		}
		msg, ok := value.(string)
		if !ok {
			r.log.Warn("phrasebook: skipping non-string message value",
				slog.String("prefix", prefix),
				slog.String("key", key),
			)
			continue
		}
		r.translations[Normalize(prefix+key)] = msg
	}
}

// mergeSynonyms merges raw alias entries under prefix. Callers hold the
// write lock (or own the Resolver exclusively during construction).
func (r *Resolver) mergeSynonyms(prefix string, entries map[string]any) {
	for key, value := range entries {
		if key == MetadataKey {
			continue
		}
		target, ok := value.(string)
		if !ok {
			r.log.Warn("phrasebook: skipping non-string synonym target",
				slog.String("prefix", prefix),
				slog.String("key", key),
			)
			continue
		}
		r.synonyms[Normalize(prefix+key)] = Normalize(prefix + target)
	}
}
