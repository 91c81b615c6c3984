// Package phrasebook resolves human-readable message strings by key for
// visual programming toolkits, with locale and customization overlays and
// synonym redirection so several keys can share one underlying message.
//
// The package is built around the Resolver: a layered string table with
// case-insensitive keying, prefixed bulk loading, override-on-load
// semantics, and two-level lookup (direct translation first, then one-hop
// synonym redirection). Values are opaque strings; there is no
// pluralization, formatting, or interpolation.
//
// # Basic Usage
//
// Construct a Resolver, load message batches, and look keys up:
//
//	r := phrasebook.New(
//		phrasebook.WithTranslations("blocks_", map[string]any{
//			"controls_if": "if %1 then",
//			"@metadata":   map[string]any{"locale": "en"},
//		}),
//	)
//
//	msg, ok := r.Translation("Blocks_Controls_If")
//	// msg == "if %1 then", ok == true
//
// Lookup is case-insensitive: keys are normalized (lower-cased) on load and
// on lookup, so "FOO", "Foo", and "foo" address the same entry. Loading a
// key that already exists overwrites its previous value.
//
// # Synonyms
//
// A synonym maps an alias key to a target key. The prefix is applied to both
// sides, so synonym files can be written in terms of un-prefixed local keys:
//
//	_ = r.LoadSynonyms("blocks_", phrasebook.Static(map[string]any{
//		"controls_if_short": "controls_if",
//	}))
//
//	msg, ok = r.Translation("blocks_controls_if_short")
//	// resolves through the synonym to "if %1 then"
//
// Redirection is a single hop: a synonym pointing at another synonym does
// not chain, and a synonym pointing at a missing target yields a plain miss.
//
// # Sources
//
// The Resolver never reads files itself. Batches arrive through a Source, a
// function that yields an already-parsed mapping or an error. JSONFile,
// YAMLFile, and TOMLFile read from any fs.FS; Static wraps an in-memory
// mapping for tests and inline overrides:
//
//	//go:embed locales
//	var localeFS embed.FS
//
//	if err := r.LoadTranslations("blocks_", phrasebook.JSONFile(localeFS, "locales/en/messages.json")); err != nil {
//		// ErrResourceNotFound or ErrSourceUnreadable; nothing was merged
//	}
//
// A failed Source merges nothing. Within a successfully produced batch, the
// reserved "@metadata" entry is always skipped, and entries whose value is
// not a string are dropped individually with a diagnostic on the configured
// logger — never an error.
//
// # Thread Safety
//
// All operations are synchronous, in-memory map work guarded by a
// read-write lock. A load in progress is never observed as a partial write
// by a concurrent lookup.
//
// For per-locale catalogs with fallback chains and HTTP export, see the
// locale and web subpackages.
package phrasebook
