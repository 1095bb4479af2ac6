package scripts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
)

// DirRepository keeps one <namespace>.gos file per namespace in a
// directory.
type DirRepository struct {
	fs  afero.Fs
	dir string
}

// NewDirRepository creates a repository over dir.
func NewDirRepository(fs afero.Fs, dir string) *DirRepository {
	return &DirRepository{fs: fs, dir: dir}
}

// Dir returns the script directory.
func (r *DirRepository) Dir() string {
	return r.dir
}

func (r *DirRepository) path(namespace string) string {
	return filepath.Join(r.dir, namespace+Extension)
}

func (r *DirRepository) read(namespace string) (Record, error) {
	path := r.path(namespace)
	info, err := r.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return Record{}, err
	}
	// The id is derived from the modification time so repeated reads of an
	// unchanged file agree.
	id, err := ulid.New(ulid.Timestamp(info.ModTime()), nil)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:        id.String(),
		Namespace: namespace,
		Script:    string(data),
		Updated:   info.ModTime().UTC(),
	}, nil
}

// FetchUserScripts implements Repository.
func (r *DirRepository) FetchUserScripts(ctx context.Context, namespace string) ([]Record, error) {
	if namespace != "" {
		rec, err := r.read(namespace)
		if errors.Is(err, ErrNotFound) {
			return []Record{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", namespace, err)
		}
		return []Record{rec}, nil
	}

	names, err := r.Namespaces(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(names))
	for _, name := range names {
		rec, err := r.read(name)
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", name, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Namespaces lists the namespaces that have a script, sorted.
func (r *DirRepository) Namespaces(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read script directory: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), Extension) {
			names = append(names, strings.TrimSuffix(e.Name(), Extension))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Save writes the script of rec.Namespace.
func (r *DirRepository) Save(ctx context.Context, rec Record) (Record, error) {
	if err := ValidateNamespace(rec.Namespace); err != nil {
		return Record{}, err
	}
	if err := r.fs.MkdirAll(r.dir, 0755); err != nil {
		return Record{}, fmt.Errorf("create script directory: %w", err)
	}
	if err := afero.WriteFile(r.fs, r.path(rec.Namespace), []byte(rec.Script), 0644); err != nil {
		return Record{}, fmt.Errorf("write script: %w", err)
	}
	now := time.Now()
	_ = r.fs.Chtimes(r.path(rec.Namespace), now, now)
	return r.read(rec.Namespace)
}

// Delete removes the script of namespace.
func (r *DirRepository) Delete(ctx context.Context, namespace string) error {
	if err := r.fs.Remove(r.path(namespace)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
