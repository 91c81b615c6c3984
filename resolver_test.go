package phrasebook_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phrasebook"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{"", "foo", "Foo Bar", "ÄÖÜ", "p_Controls_IF", "@metadata"} {
			require.Equal(t, phrasebook.Normalize(s), phrasebook.Normalize(phrasebook.Normalize(s)))
		}
	})

	t.Run("folds case", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, phrasebook.Normalize("foo"), phrasebook.Normalize("Foo"))
		require.Equal(t, phrasebook.Normalize("foo"), phrasebook.Normalize("FOO"))
		require.Equal(t, "foo", phrasebook.Normalize("FoO"))
	})
}

func TestResolverTranslation(t *testing.T) {
	t.Parallel()

	t.Run("returns direct hit", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(phrasebook.WithTranslations("", map[string]any{
			"greeting": "Hello",
		}))

		msg, ok := r.Translation("greeting")
		require.True(t, ok)
		require.Equal(t, "Hello", msg)
	})

	t.Run("is case-insensitive round trip", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New()
		require.NoError(t, r.LoadTranslations("", phrasebook.Static(map[string]any{
			"Hello": "world",
		})))

		for _, key := range []string{"hello", "HELLO", "HeLLo"} {
			msg, ok := r.Translation(key)
			require.True(t, ok, "key %q", key)
			require.Equal(t, "world", msg)
		}
	})

	t.Run("missing key is a plain miss", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New()

		msg, ok := r.Translation("nope")
		require.False(t, ok)
		require.Empty(t, msg)
	})

	t.Run("last write wins on reload", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New()
		require.NoError(t, r.LoadTranslations("ui_", phrasebook.Static(map[string]any{"title": "Old"})))
		require.NoError(t, r.LoadTranslations("ui_", phrasebook.Static(map[string]any{"title": "New"})))

		msg, ok := r.Translation("ui_title")
		require.True(t, ok)
		require.Equal(t, "New", msg)
		require.Equal(t, 1, r.Len())
	})

	t.Run("direct entry wins over synonym", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(
			phrasebook.WithTranslations("", map[string]any{
				"k": "direct",
				"t": "via synonym",
			}),
			phrasebook.WithSynonyms("", map[string]any{"k": "t"}),
		)

		msg, ok := r.Translation("k")
		require.True(t, ok)
		require.Equal(t, "direct", msg)
	})

	t.Run("follows synonym one hop under shared prefix", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New()
		require.NoError(t, r.LoadSynonyms("p_", phrasebook.Static(map[string]any{"a": "b"})))
		require.NoError(t, r.LoadTranslations("p_", phrasebook.Static(map[string]any{"b": "hello"})))

		msg, ok := r.Translation("p_a")
		require.True(t, ok)
		require.Equal(t, "hello", msg)
	})

	t.Run("does not chain synonyms", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(
			phrasebook.WithSynonyms("", map[string]any{"a": "b", "b": "c"}),
			phrasebook.WithTranslations("", map[string]any{"c": "end"}),
		)

		_, ok := r.Translation("a")
		require.False(t, ok)

		msg, ok := r.Translation("b")
		require.True(t, ok)
		require.Equal(t, "end", msg)
	})

	t.Run("dangling synonym yields absent", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(phrasebook.WithSynonyms("", map[string]any{"alias": "never_loaded"}))

		msg, ok := r.Translation("alias")
		require.False(t, ok)
		require.Empty(t, msg)
	})

	t.Run("calls missing key handler with normalized key", func(t *testing.T) {
		t.Parallel()
		var missed []string
		r := phrasebook.New(
			phrasebook.WithTranslations("", map[string]any{"present": "yes"}),
			phrasebook.WithMissingKeyHandler(func(key string) {
				missed = append(missed, key)
			}),
		)

		_, ok := r.Translation("Present")
		require.True(t, ok)
		require.Empty(t, missed)

		_, ok = r.Translation("ABSENT")
		require.False(t, ok)
		require.Equal(t, []string{"absent"}, missed)
	})
}

func TestResolverLoadTranslations(t *testing.T) {
	t.Parallel()

	t.Run("applies prefix before normalization", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New()
		require.NoError(t, r.LoadTranslations("Blocks_", phrasebook.Static(map[string]any{
			"Controls_If": "if %1 then",
		})))

		msg, ok := r.Translation("blocks_controls_if")
		require.True(t, ok)
		require.Equal(t, "if %1 then", msg)
	})

	t.Run("skips metadata entry", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New()
		require.NoError(t, r.LoadTranslations("x_", phrasebook.Static(map[string]any{
			"@metadata": "looks like a message but is not one",
			"k":         "v",
		})))

		_, ok := r.Translation("x_@metadata")
		require.False(t, ok)
		require.Equal(t, 1, r.Len())
	})

	t.Run("skips non-string values without failing the batch", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		r := phrasebook.New(phrasebook.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		require.NoError(t, r.LoadTranslations("x_", phrasebook.Static(map[string]any{
			"k":    42,
			"ok":   "kept",
			"deep": map[string]any{"nested": "nope"},
		})))

		_, ok := r.Translation("x_k")
		require.False(t, ok)
		_, ok = r.Translation("x_deep")
		require.False(t, ok)

		msg, ok := r.Translation("x_ok")
		require.True(t, ok)
		require.Equal(t, "kept", msg)

		assert.Contains(t, buf.String(), "non-string message value")
	})

	t.Run("source failure merges nothing", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(phrasebook.WithTranslations("", map[string]any{"kept": "before"}))

		failing := phrasebook.Source(func() (map[string]any, error) {
			return nil, fmt.Errorf("%w: %q", phrasebook.ErrResourceNotFound, "missing.json")
		})

		err := r.LoadTranslations("x_", failing)
		require.Error(t, err)
		require.ErrorIs(t, err, phrasebook.ErrResourceNotFound)

		require.Equal(t, 1, r.Len())
		msg, ok := r.Translation("kept")
		require.True(t, ok)
		require.Equal(t, "before", msg)
	})
}

func TestResolverLoadSynonyms(t *testing.T) {
	t.Parallel()

	t.Run("prefixes both sides", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(phrasebook.WithTranslations("p_", map[string]any{"target": "msg"}))
		require.NoError(t, r.LoadSynonyms("p_", phrasebook.Static(map[string]any{
			"Alias": "Target",
		})))

		msg, ok := r.Translation("P_ALIAS")
		require.True(t, ok)
		require.Equal(t, "msg", msg)
	})

	t.Run("skips non-string targets", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		r := phrasebook.New(phrasebook.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		require.NoError(t, r.LoadSynonyms("", phrasebook.Static(map[string]any{
			"bad": 7,
		})))

		_, ok := r.Translation("bad")
		require.False(t, ok)
		assert.Contains(t, buf.String(), "non-string synonym target")
	})

	t.Run("overwrites silently", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(phrasebook.WithTranslations("", map[string]any{
			"first":  "1",
			"second": "2",
		}))
		require.NoError(t, r.LoadSynonyms("", phrasebook.Static(map[string]any{"a": "first"})))
		require.NoError(t, r.LoadSynonyms("", phrasebook.Static(map[string]any{"a": "second"})))

		msg, ok := r.Translation("a")
		require.True(t, ok)
		require.Equal(t, "2", msg)
	})
}

func TestResolverMerge(t *testing.T) {
	t.Parallel()

	t.Run("merge translations normalizes keys only", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New()
		r.MergeTranslations(map[string]string{
			"Custom_Override": "Value As-Is",
			"@metadata":       "still skipped",
		})

		msg, ok := r.Translation("custom_override")
		require.True(t, ok)
		require.Equal(t, "Value As-Is", msg)
		require.Equal(t, 1, r.Len())
	})

	t.Run("merge synonyms stores targets as given", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(phrasebook.WithTranslations("", map[string]any{"canonical": "msg"}))

		// Caller supplies an already-normalized target.
		r.MergeSynonyms(map[string]string{"Alias": "canonical"})
		msg, ok := r.Translation("alias")
		require.True(t, ok)
		require.Equal(t, "msg", msg)

		// A non-normalized target is kept verbatim and therefore dangles.
		r.MergeSynonyms(map[string]string{"other": "Canonical"})
		_, ok = r.Translation("other")
		require.False(t, ok)
	})
}

func TestResolverSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("materializes resolving synonyms", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(
			phrasebook.WithTranslations("", map[string]any{"b": "hello"}),
			phrasebook.WithSynonyms("", map[string]any{
				"a":        "b",
				"dangling": "nowhere",
			}),
		)

		snap := r.Snapshot()
		require.Equal(t, map[string]string{
			"a": "hello",
			"b": "hello",
		}, snap)
	})

	t.Run("returned map is detached", func(t *testing.T) {
		t.Parallel()
		r := phrasebook.New(phrasebook.WithTranslations("", map[string]any{"k": "v"}))

		snap := r.Snapshot()
		snap["k"] = "mutated"
		snap["new"] = "entry"

		msg, ok := r.Translation("k")
		require.True(t, ok)
		require.Equal(t, "v", msg)
		require.Equal(t, 1, r.Len())
	})
}

func TestResolverConcurrency(t *testing.T) {
	t.Parallel()

	r := phrasebook.New()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 50 {
				_ = r.LoadTranslations("c_", phrasebook.Static(map[string]any{
					fmt.Sprintf("key_%d_%d", i, j): "value",
				}))
			}
		}()
		go func() {
			defer wg.Done()
			for j := range 50 {
				_, _ = r.Translation(fmt.Sprintf("c_key_%d_%d", i, j))
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 8*50, r.Len())
}
