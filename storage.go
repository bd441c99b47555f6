package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Run directories are named with this timestamp so retention can sort them
// lexically.
const backupTimestampFormat = "2006-01-02_150405"

// BackupStorage lays out and owns the directory tree for one backup run:
// raw JSON keyed by item ID, downloaded files, and rendered markdown.
type BackupStorage struct {
	BackupPath        string
	JSONPagesPath     string
	JSONDatabasesPath string
	MarkdownPath      string
	FilesPath         string
}

// NewBackupStorage creates storage rooted at a fresh timestamped directory
// for the workspace. Directories are created by CreateDirectories.
func NewBackupStorage(basePath, workspaceName string) *BackupStorage {
	backupPath := filepath.Join(basePath, workspaceName, time.Now().Format(backupTimestampFormat))
	return &BackupStorage{
		BackupPath:        backupPath,
		JSONPagesPath:     filepath.Join(backupPath, "json", "pages"),
		JSONDatabasesPath: filepath.Join(backupPath, "json", "databases"),
		MarkdownPath:      filepath.Join(backupPath, "markdown"),
		FilesPath:         filepath.Join(backupPath, "files"),
	}
}

// CreateDirectories creates the full run directory structure.
func (s *BackupStorage) CreateDirectories() error {
	for _, path := range []string{s.JSONPagesPath, s.JSONDatabasesPath, s.MarkdownPath, s.FilesPath} {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating backup directory %s: %w", path, err)
		}
	}
	log.Printf("Created backup directory: %s", s.BackupPath)
	return nil
}

// SavePageJSON persists a fetched page tree, keyed by page ID.
func (s *BackupStorage) SavePageJSON(pageID string, data *PageData) error {
	return writeJSON(filepath.Join(s.JSONPagesPath, pageID+".json"), data)
}

// SaveDatabaseJSON persists a fetched database or data source, keyed by ID.
func (s *BackupStorage) SaveDatabaseJSON(databaseID string, data *DatabaseData) error {
	return writeJSON(filepath.Join(s.JSONDatabasesPath, databaseID+".json"), data)
}

// SaveManifest persists the run manifest at the backup root.
func (s *BackupStorage) SaveManifest(manifest *Manifest) error {
	return writeJSON(filepath.Join(s.BackupPath, "manifest.json"), manifest)
}

// FilePath returns the destination for a downloaded file.
func (s *BackupStorage) FilePath(filename string) string {
	return filepath.Join(s.FilesPath, filename)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
