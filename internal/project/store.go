package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/metre/internal/model"
)

// ErrNotFound is returned by Store.Get and Store.Delete for unknown keys.
var ErrNotFound = errors.New("project: not found")

// Key namespaces used by the helpers below.
const (
	projectPrefix = "projects/"
	catalogueKey  = "catalogue"
)

// Store is a small key-value store holding serialized projects and the catalogue.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open returns the store for backend ("json" or "sqlite") rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case model.StorageJSON, "":
		return NewFileStore(filepath.Join(dataDir, "store"))
	case model.StorageSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, "metre.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// PutProject stores p under its id.
func PutProject(ctx context.Context, s Store, p model.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	return s.Put(ctx, projectPrefix+p.ID, data)
}

// GetProject loads the project with the given id.
func GetProject(ctx context.Context, s Store, id string) (model.Project, error) {
	data, err := s.Get(ctx, projectPrefix+id)
	if err != nil {
		return model.Project{}, err
	}
	return decodeProject(data)
}

// DeleteProject removes a stored project.
func DeleteProject(ctx context.Context, s Store, id string) error {
	return s.Delete(ctx, projectPrefix+id)
}

// ProjectIDs lists the ids of the stored projects.
func ProjectIDs(ctx context.Context, s Store) ([]string, error) {
	keys, err := s.List(ctx, projectPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, projectPrefix))
	}
	return ids, nil
}

// PutCatalogue stores the catalogue as YAML.
func PutCatalogue(ctx context.Context, s Store, cat model.Catalogue) error {
	data, err := MarshalCatalogue(cat, true)
	if err != nil {
		return fmt.Errorf("failed to encode catalogue: %w", err)
	}
	return s.Put(ctx, catalogueKey, data)
}

// GetCatalogue loads the stored catalogue, or the default one when none is stored.
func GetCatalogue(ctx context.Context, s Store) (model.Catalogue, error) {
	data, err := s.Get(ctx, catalogueKey)
	if errors.Is(err, ErrNotFound) {
		return model.DefaultCatalogue(), nil
	}
	if err != nil {
		return model.Catalogue{}, err
	}
	return UnmarshalCatalogue(data, true)
}
