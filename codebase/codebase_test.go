package codebase

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestScanAllAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.php", `<?php namespace App; class A extends B {}`)
	writeFile(t, dir, "b.php", `<?php namespace App; class B {}`)

	cb := New(dir)
	if err := cb.ScanAll(); err != nil {
		t.Fatalf("ScanAll: %v", err)
	}

	a, ok := cb.FindType(`App\A`)
	if !ok {
		t.Fatalf(`expected type App\A`)
	}
	if a.Parent == nil || a.Parent.Resolved == nil {
		t.Fatalf("expected App\\A's parent reference to resolve to App\\B once both files are scanned")
	}
	if a.Parent.Resolved.QualifiedName != `App\B` {
		t.Fatalf("expected parent App\\B, got %s", a.Parent.Resolved.QualifiedName)
	}
}

func TestScanFileRecordsParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.php", `<?php class 123 {}`)

	cb := New(dir)
	if err := cb.ScanFile(path); err == nil {
		t.Fatalf("expected a parse error")
	}

	fi, ok := cb.FileInfo(path)
	if !ok {
		t.Fatalf("expected a recorded FileInfo even on parse failure")
	}
	if fi.ParseErr == nil {
		t.Fatalf("expected FileInfo.ParseErr to be set")
	}
}

func TestUpdateFileReparsesChangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.php")

	cb := New(dir)
	if err := cb.UpdateFile(path, []byte(`<?php class C {}`)); err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if _, ok := cb.FindType("+global::C"); !ok {
		t.Fatalf("expected class C after first update")
	}

	if err := cb.UpdateFile(path, []byte(`<?php class C { function m(){} }`)); err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	typ, ok := cb.FindType("+global::C")
	if !ok || len(typ.Methods) != 1 {
		t.Fatalf("expected class C to have one method after reparse")
	}
}

func TestRemoveFileDropsFileInfo(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "d.php", `<?php class D {}`)

	cb := New(dir)
	if err := cb.ScanFile(path); err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	cb.RemoveFile(path)
	if _, ok := cb.FileInfo(path); ok {
		t.Fatalf("expected FileInfo to be gone after RemoveFile")
	}
}

func TestCacheSkipsReparseOfUnchangedFileWithinSameRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "e.php", `<?php class E {}`)

	cachePath := filepath.Join(dir, "cache.db")
	cache, err := OpenCache(cachePath, dir)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	cb := New(dir, WithCache(cache))
	if err := cb.ScanFile(path); err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	unchanged, err := cache.Unchanged(path, []byte(`<?php class E {}`))
	if err != nil {
		t.Fatalf("Unchanged: %v", err)
	}
	if !unchanged {
		t.Fatalf("expected the cache to record E's content hash after the first scan")
	}

	// A second scan of the same, unchanged file takes the cache-skip path
	// in UpdateFile and must still leave the class registered.
	if err := cb.ScanFile(path); err != nil {
		t.Fatalf("second ScanFile: %v", err)
	}
	if _, ok := cb.FindType("+global::E"); !ok {
		t.Fatalf("expected class E to remain after a cache-skipped rescan")
	}
}
