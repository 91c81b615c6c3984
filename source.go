package phrasebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Source produces one already-parsed batch of raw entries. The Resolver does
// no I/O and no parsing itself; everything it merges arrives through a
// Source, so tests can inject in-memory fixtures instead of real files.
//
// A Source either yields a complete mapping or an error; it never yields a
// partial mapping. Errors wrap ErrResourceNotFound or ErrSourceUnreadable.
type Source func() (map[string]any, error)

// Static returns a Source that yields entries as-is.
func Static(entries map[string]any) Source {
	return func() (map[string]any, error) {
		return entries, nil
	}
}

// JSONFile returns a Source that reads a JSON object from fsys.
func JSONFile(fsys fs.FS, name string) Source {
	return fileSource(fsys, name, json.Unmarshal)
}

// YAMLFile returns a Source that reads a YAML mapping from fsys.
func YAMLFile(fsys fs.FS, name string) Source {
	return fileSource(fsys, name, yaml.Unmarshal)
}

// TOMLFile returns a Source that reads a TOML table from fsys.
func TOMLFile(fsys fs.FS, name string) Source {
	return fileSource(fsys, name, toml.Unmarshal)
}

func fileSource(fsys fs.FS, name string, unmarshal func([]byte, any) error) Source {
	return func() (map[string]any, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, name)
			}
			return nil, fmt.Errorf("%w: reading %q: %s", ErrSourceUnreadable, name, err)
		}

		var entries map[string]any
		if err := unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: parsing %q: %s", ErrSourceUnreadable, name, err)
		}
		return entries, nil
	}
}
