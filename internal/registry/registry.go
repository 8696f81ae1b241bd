// Package registry maintains the durable, versioned catalog of trained model
// artifacts. It stores metadata only; artifact bytes live in each version's
// model directory. The on-disk format is a single JSON file shared with the
// trainer, kept sorted by validation accuracy descending so that the best
// version is always element 0.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"textclassd/internal/common/fsutil"
	"textclassd/pkg/types"
)

// Registry is an append-only catalog of model versions backed by one JSON
// file. Append re-sorts and persists atomically; there is no deletion or
// in-place edit.
type Registry struct {
	mu     sync.RWMutex
	path   string
	models []types.ModelVersion
	latest string
}

// Load reads an existing registry file. An absent file is reported as a
// not-found error and a present-but-unparsable file as corrupt; neither is
// ever treated as an empty registry.
func Load(path string) (*Registry, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundError{path: p}
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var file types.RegistryFile
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, corruptError{path: p, err: err}
	}
	r := &Registry{path: p, models: file.Models, latest: file.Latest}
	r.sortLocked()
	return r, nil
}

// New creates an empty in-memory registry that will persist to path on the
// first successful Append. Used by trainer-side tooling; the serving path
// always goes through Load.
func New(path string) (*Registry, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &Registry{path: p}, nil
}

// Append validates the version identifier is unused, inserts the record,
// re-sorts by validation accuracy descending, updates the latest pointer and
// persists the whole file atomically. On any failure the in-memory state is
// left unchanged.
func (r *Registry) Append(v types.ModelVersion) error {
	if v.Version == "" {
		return fmt.Errorf("empty model version identifier")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.models {
		if m.Version == v.Version {
			return duplicateVersionError{id: v.Version}
		}
	}

	next := make([]types.ModelVersion, 0, len(r.models)+1)
	next = append(next, r.models...)
	next = append(next, v)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].ValAccuracy > next[j].ValAccuracy
	})

	if err := persist(r.path, types.RegistryFile{Models: next, Latest: v.Version}); err != nil {
		return err
	}
	r.models = next
	r.latest = v.Version
	return nil
}

// Best returns the highest-accuracy version (element 0).
func (r *Registry) Best() (types.ModelVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.models) == 0 {
		return types.ModelVersion{}, noModelsError{}
	}
	return r.models[0], nil
}

// Get looks up a version by identifier.
func (r *Registry) Get(id string) (types.ModelVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.models {
		if m.Version == id {
			return m, nil
		}
	}
	return types.ModelVersion{}, versionNotFoundError{id: id}
}

// List returns a copy of the ordered sequence.
func (r *Registry) List() []types.ModelVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ModelVersion, len(r.models))
	copy(out, r.models)
	return out
}

// Latest returns the identifier most recently appended, or "" when empty.
func (r *Registry) Latest() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Len returns the number of catalogued versions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

func (r *Registry) sortLocked() {
	sort.SliceStable(r.models, func(i, j int) bool {
		return r.models[i].ValAccuracy > r.models[j].ValAccuracy
	})
}

// persist writes the registry file via a temp file in the same directory
// followed by rename, so readers never observe a partial write.
func persist(path string, file types.RegistryFile) error {
	b, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("registry dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("temp registry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close registry: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
