package scripts

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultExclude lists the bundled scripts that are never loaded.
var DefaultExclude = []string{"**/example" + Extension, "**/template" + Extension}

// Bundle is the set of scripts shipped with the application. The manifest
// is a YAML (or JSON) list of script paths relative to the manifest, either
// at the top level or under a "scripts" key.
type Bundle struct {
	fs       afero.Fs
	manifest string
	exclude  []string
}

type manifestFile struct {
	Scripts []string `yaml:"scripts"`
}

// NewBundle creates a bundle reading manifest from fs. Paths matching one
// of the exclude patterns are skipped.
func NewBundle(fs afero.Fs, manifest string, exclude []string) *Bundle {
	return &Bundle{fs: fs, manifest: manifest, exclude: exclude}
}

// Entries returns the manifest paths that are not excluded, in manifest
// order. A missing manifest yields no entries.
func (b *Bundle) Entries() ([]string, error) {
	if b == nil || b.manifest == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(b.fs, b.manifest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read bundle manifest: %w", err)
	}

	var paths []string
	if err := yaml.Unmarshal(data, &paths); err != nil {
		var mf manifestFile
		if err2 := yaml.Unmarshal(data, &mf); err2 != nil {
			return nil, fmt.Errorf("parse bundle manifest: %w", err)
		}
		paths = mf.Scripts
	}

	entries := make([]string, 0, len(paths))
	for _, p := range paths {
		p = path.Clean(filepath.ToSlash(strings.TrimSpace(p)))
		if p == "." || b.excluded(p) {
			continue
		}
		entries = append(entries, p)
	}
	return entries, nil
}

func (b *Bundle) excluded(p string) bool {
	for _, pattern := range b.exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// FetchUserScripts implements Repository. The namespace of a bundled
// script is its file name without extension.
func (b *Bundle) FetchUserScripts(ctx context.Context, namespace string) ([]Record, error) {
	entries, err := b.Entries()
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(b.manifest)

	records := []Record{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ns := strings.TrimSuffix(path.Base(entry), path.Ext(entry))
		if namespace != "" && ns != namespace {
			continue
		}
		full := filepath.Join(base, filepath.FromSlash(entry))
		data, err := afero.ReadFile(b.fs, full)
		if err != nil {
			return nil, fmt.Errorf("read bundled script %s: %w", entry, err)
		}
		rec := Record{ID: entry, Namespace: ns, Script: string(data)}
		if info, err := b.fs.Stat(full); err == nil {
			rec.Updated = info.ModTime().UTC()
		}
		records = append(records, rec)
	}
	return records, nil
}
