package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewBackupStorageLayout(t *testing.T) {
	base := t.TempDir()
	storage := NewBackupStorage(base, "my-workspace")

	if !strings.HasPrefix(storage.BackupPath, filepath.Join(base, "my-workspace")) {
		t.Errorf("BackupPath = %q, want under %q", storage.BackupPath, filepath.Join(base, "my-workspace"))
	}
	if !isBackupDirName(filepath.Base(storage.BackupPath)) {
		t.Errorf("run directory %q should match the backup timestamp format", filepath.Base(storage.BackupPath))
	}

	if err := storage.CreateDirectories(); err != nil {
		t.Fatalf("CreateDirectories() error = %v", err)
	}
	for _, dir := range []string{
		storage.JSONPagesPath,
		storage.JSONDatabasesPath,
		storage.MarkdownPath,
		storage.FilesPath,
	} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("missing directory %s: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestSavePageJSONRoundTrip(t *testing.T) {
	storage := testStorage(t)

	data := &PageData{
		Page: Page{ID: "page-1", Parent: ParentRef{Type: "workspace", Workspace: true}},
		Blocks: []Block{
			{ID: "b1", Type: "paragraph", Paragraph: &RichTextValue{RichText: plainText("hello")}},
		},
	}
	if err := storage.SavePageJSON("page-1", data); err != nil {
		t.Fatalf("SavePageJSON() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(storage.JSONPagesPath, "page-1.json"))
	if err != nil {
		t.Fatalf("reading saved JSON: %v", err)
	}

	var loaded PageData
	if err := json.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("saved JSON is invalid: %v", err)
	}
	if loaded.Page.ID != "page-1" {
		t.Errorf("loaded page ID = %q, want page-1", loaded.Page.ID)
	}
	if len(loaded.Blocks) != 1 || loaded.Blocks[0].Paragraph == nil {
		t.Errorf("loaded blocks = %+v, want the paragraph back", loaded.Blocks)
	}
}

func TestSaveManifest(t *testing.T) {
	storage := testStorage(t)

	manifest := &Manifest{Status: StatusCompleted, Errors: []HarvestError{}}
	if err := storage.SaveManifest(manifest); err != nil {
		t.Fatalf("SaveManifest() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(storage.BackupPath, "manifest.json"))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	if !strings.Contains(string(raw), `"status": "completed"`) {
		t.Errorf("manifest JSON %s missing status", raw)
	}
}
