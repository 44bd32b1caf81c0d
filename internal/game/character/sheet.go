package character

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadSheet reads a single YAML entity sheet.
//
// Postcondition: returns a parsed Entity (not yet validated, ID may be empty)
// or an error naming path.
func LoadSheet(path string) (*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", path, err)
	}
	var e Entity
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing sheet %q: %w", path, err)
	}
	if e.Kind == "" {
		e.Kind = KindCharacter
	}
	return &e, nil
}

// LoadSheets reads every *.yaml / *.yml sheet in dir in lexicographic order.
//
// Precondition: dir is a readable directory.
func LoadSheets(dir string) ([]*Entity, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading sheet dir %q: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	out := make([]*Entity, 0, len(paths))
	for _, p := range paths {
		e, err := LoadSheet(p)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
