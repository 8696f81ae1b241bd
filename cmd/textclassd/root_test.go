package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRegistry(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	content := `{
  "models": [
    {"model_version": "v1", "model_path": "models/v1", "val_accuracy": 0.80, "vocab_size": 100, "num_classes": 3, "classes": ["a","b","c"], "max_sequence_length": 16, "status": "active"},
    {"model_version": "v2", "model_path": "models/v2", "val_accuracy": 0.92, "vocab_size": 100, "num_classes": 3, "classes": ["a","b","c"], "max_sequence_length": 16, "status": "active"}
  ],
  "latest": "v2"
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	return path
}

func TestModelsCommand(t *testing.T) {
	path := writeRegistry(t)
	root := buildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"models", "--registry", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "v2") || !strings.Contains(got, "0.9200") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	// Best version first
	if strings.Index(got, "v2") > strings.Index(got, "v1") {
		t.Fatalf("expected v2 listed before v1:\n%s", got)
	}
}

func TestModelsCommand_MissingRegistry(t *testing.T) {
	root := buildRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"models", "--registry", filepath.Join(t.TempDir(), "absent.json")})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for missing registry")
	}
}

func TestVersionCommand(t *testing.T) {
	root := buildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "textclassd") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestResolveConfig_FlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	content := "addr: ':9999'\nworkers: 2\nmax_batch_size: 50\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	root := buildRootCmd()
	serve, _, err := root.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("find serve: %v", err)
	}
	if err := root.PersistentFlags().Set("config", cfgPath); err != nil {
		t.Fatalf("set config: %v", err)
	}
	serve.Flags().AddFlagSet(root.PersistentFlags())
	if err := serve.Flags().Set("addr", ":7777"); err != nil {
		t.Fatalf("set addr: %v", err)
	}
	cfg, err := resolveConfig(serve)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":7777" {
		t.Fatalf("addr=%q, flag should win over file", cfg.Addr)
	}
	if cfg.Workers != 2 || cfg.MaxBatchSize != 50 {
		t.Fatalf("file values lost: %+v", cfg)
	}
}
