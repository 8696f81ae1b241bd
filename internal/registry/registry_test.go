package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textclassd/pkg/types"
)

func version(id string, acc float64) types.ModelVersion {
	return types.ModelVersion{
		Version:           id,
		Path:              "models/registry/" + id,
		ValAccuracy:       acc,
		VocabSize:         100,
		NumClasses:        3,
		Classes:           []string{"a", "b", "c"},
		MaxSequenceLength: 16,
		CreatedAt:         "2025-08-12T14:30:55",
		Status:            "active",
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(filepath.Join(t.TempDir(), "registry.json"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return r
}

func TestAppendKeepsSortedByAccuracyDesc(t *testing.T) {
	r := newTestRegistry(t)
	for _, v := range []types.ModelVersion{
		version("v1", 0.80),
		version("v2", 0.92),
		version("v3", 0.85),
	} {
		if err := r.Append(v); err != nil {
			t.Fatalf("append %s: %v", v.Version, err)
		}
		// sorted after every call
		list := r.List()
		for i := 1; i < len(list); i++ {
			if list[i-1].ValAccuracy < list[i].ValAccuracy {
				t.Fatalf("registry not sorted after append %s: %+v", v.Version, list)
			}
		}
	}
	best, err := r.Best()
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best.Version != "v2" {
		t.Fatalf("expected best v2, got %s", best.Version)
	}
	if r.Latest() != "v3" {
		t.Fatalf("expected latest v3, got %s", r.Latest())
	}
}

func TestAppendDuplicateVersionRejected(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Append(version("v1", 0.80)); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := r.Append(version("v1", 0.99))
	if err == nil || !IsDuplicateVersion(err) {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
	// stored sequence unchanged
	list := r.List()
	if len(list) != 1 || list[0].ValAccuracy != 0.80 {
		t.Fatalf("sequence altered by failed append: %+v", list)
	}
}

func TestBestEmptyRegistry(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Best()
	if err == nil || !IsNoModels(err) {
		t.Fatalf("expected no models error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Append(version("v1", 0.80)); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := r.Get("v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != "v1" {
		t.Fatalf("unexpected version: %+v", got)
	}
	_, err = r.Get("v9")
	if err == nil || !IsVersionNotFound(err) {
		t.Fatalf("expected version not found, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "registry.json"))
	if err == nil || !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "registry.json")
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(p)
	if err == nil || !IsCorrupt(err) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
}

func TestAppendPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "registry.json")
	r, err := New(p)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := r.Append(version("v1", 0.80)); err != nil {
		t.Fatalf("append v1: %v", err)
	}
	if err := r.Append(version("v2", 0.92)); err != nil {
		t.Fatalf("append v2: %v", err)
	}

	r2, err := Load(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	list := r2.List()
	if len(list) != 2 || list[0].Version != "v2" || list[1].Version != "v1" {
		t.Fatalf("unexpected reloaded order: %+v", list)
	}
	if r2.Latest() != "v2" {
		t.Fatalf("expected latest v2 after reload, got %s", r2.Latest())
	}
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	r, err := New(filepath.Join(dir, "registry.json"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := r.Append(version("v1", 0.80)); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".registry-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 || entries[0].Name() != "registry.json" {
		t.Fatalf("unexpected dir contents: %v", entries)
	}
}

func TestLoadSortsUnsortedFile(t *testing.T) {
	// A file written by an older trainer may not be sorted; Load restores the
	// ordering invariant.
	dir := t.TempDir()
	p := filepath.Join(dir, "registry.json")
	content := `{"models":[
		{"model_version":"v1","model_path":"m/v1","val_accuracy":0.7,"classes":["a"],"created_at":"2025-01-01T00:00:00","status":"active"},
		{"model_version":"v2","model_path":"m/v2","val_accuracy":0.9,"classes":["a"],"created_at":"2025-01-02T00:00:00","status":"active"}
	],"latest":"v2"}`
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	best, err := r.Best()
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best.Version != "v2" {
		t.Fatalf("expected best v2, got %s", best.Version)
	}
}

func TestAppendEmptyIdentifierRejected(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Append(types.ModelVersion{ValAccuracy: 0.5}); err == nil {
		t.Fatalf("expected error for empty identifier")
	}
}
