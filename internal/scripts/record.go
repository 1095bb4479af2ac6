// Package scripts provides the sources of user scripts: script
// repositories, the bundled-scripts manifest and a directory watcher.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Extension is the file extension of script sources.
const Extension = ".gos"

var (
	ErrNotFound         = errors.New("script not found")
	ErrInvalidNamespace = errors.New("invalid script namespace")
)

// Record is one user script. Each namespace has at most one script.
type Record struct {
	ID        string    `json:"id"`
	Namespace string    `json:"namespace"`
	Script    string    `json:"script"`
	Updated   time.Time `json:"updated"`
}

// NewRecord creates a record with a fresh id.
func NewRecord(namespace, script string) Record {
	return Record{
		ID:        ulid.Make().String(),
		Namespace: namespace,
		Script:    script,
		Updated:   time.Now().UTC(),
	}
}

// Repository fetches user scripts.
type Repository interface {
	// FetchUserScripts returns the script of namespace, or every script
	// when namespace is empty. A namespace without a script yields an
	// empty result.
	FetchUserScripts(ctx context.Context, namespace string) ([]Record, error)
}

// Store is a Repository that can be edited.
type Store interface {
	Repository
	Save(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, namespace string) error
	Namespaces(ctx context.Context) ([]string, error)
}

// ValidateNamespace rejects names that cannot serve as a script key.
func ValidateNamespace(namespace string) error {
	if strings.TrimSpace(namespace) == "" || strings.ContainsAny(namespace, `/\`) || strings.HasPrefix(namespace, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	return nil
}
