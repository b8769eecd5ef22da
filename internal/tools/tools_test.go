package tools

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAllCoversChainStages(t *testing.T) {
	want := []string{"subfinder", "dnsx", "naabu", "httpx", "katana"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("All() returned %d tools, want %d", len(all), len(want))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("All()[%d].Name = %q, want %q", i, all[i].Name, name)
		}
		if all[i].Module == "" {
			t.Errorf("tool %s has no install module", name)
		}
	}
}

func TestResolveInFindsBinary(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "subfinder")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	path, ok := resolveIn([]string{"", t.TempDir(), dir}, "subfinder")
	if !ok {
		t.Fatal("expected binary to be found")
	}
	if path != bin {
		t.Errorf("resolved %q, want %q", path, bin)
	}
}

func TestResolveInIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "naabu"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, ok := resolveIn([]string{dir}, "naabu"); ok {
		t.Error("a directory must not resolve as a binary")
	}
}

func TestResolveInMissing(t *testing.T) {
	if _, ok := resolveIn([]string{t.TempDir()}, "katana"); ok {
		t.Error("expected miss for empty directory")
	}
}
