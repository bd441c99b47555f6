package main

import (
	"fmt"
	"log"
	"time"
)

// runBackup backs up every configured workspace (or just the named one),
// then applies retention and notifications. One workspace failing never
// blocks the others.
func runBackup(config *Config, workspaceName, backupPath string) error {
	workspaces := config.Workspaces
	if workspaceName != "" {
		workspaces = nil
		for _, ws := range config.Workspaces {
			if ws.Name == workspaceName {
				workspaces = append(workspaces, ws)
			}
		}
		if len(workspaces) == 0 {
			return &ConfigError{Message: fmt.Sprintf("workspace %q is not configured", workspaceName)}
		}
	}

	for _, ws := range workspaces {
		stats, err := backupWorkspace(&ws, backupPath)
		if err != nil {
			log.Printf("Backup failed for workspace %s: %v", ws.Name, err)
			stats = &BackupStats{
				Status: StatusFailed,
				Errors: []HarvestError{{Category: "backup", ID: ws.Name, Message: err.Error()}},
			}
		} else {
			deleted := pruneOldBackups(backupPath, ws.Name, config.RetentionCount)
			if deleted > 0 {
				log.Printf("Retention pruned %d old backup(s) for %s", deleted, ws.Name)
			}
		}

		if config.Notifications.DiscordWebhookURL != "" && shouldNotify(config.Notifications.NotifyOn, stats.Status) {
			sendDiscordNotification(config.Notifications.DiscordWebhookURL, ws.Name, stats)
		}
	}
	return nil
}

// backupWorkspace runs the full pipeline for one workspace: discovery,
// harvesting, file downloads, markdown rendering, and the manifest.
func backupWorkspace(ws *WorkspaceConfig, backupPath string) (*BackupStats, error) {
	token, err := ws.Token()
	if err != nil {
		return nil, err
	}

	log.Printf("Starting backup for workspace: %s", ws.Name)
	start := time.Now()

	client := NewNotionClient(token, NewRateLimiter(defaultCallsPerSecond))
	storage := NewBackupStorage(backupPath, ws.Name)
	if err := storage.CreateDirectories(); err != nil {
		return nil, err
	}

	stats, err := executeBackup(client, storage, start)
	if err != nil {
		return nil, err
	}

	log.Printf("Backup %s for %s: %d pages, %d databases, %d files (%d bytes), %d errors in %.1fs",
		stats.Status, ws.Name, stats.Pages, stats.Databases, stats.Files,
		stats.TotalBytes, len(stats.Errors), stats.Duration)
	return stats, nil
}

// executeBackup drives the pipeline phases in order against an existing
// client and storage. Split out so the orchestration is testable against a
// fake API server.
func executeBackup(client *NotionClient, storage *BackupStorage, start time.Time) (*BackupStats, error) {
	content, err := client.DiscoverContent()
	if err != nil {
		return nil, fmt.Errorf("discovering workspace content: %w", err)
	}
	log.Printf("Discovered %d pages and %d databases", len(content.Pages), len(content.Databases))

	// Parent links captured at discovery time drive markdown tree layout.
	parentMap := make(map[string]string, len(content.Pages))
	for _, page := range content.Pages {
		parentMap[page.ID] = page.ParentPageID()
	}

	var allErrors []HarvestError

	pageData, pageFailures := harvestPages(client, storage, content.Pages)
	allErrors = append(allErrors, pageFailures...)

	databaseIDs := make([]string, 0, len(content.Databases))
	for _, db := range content.Databases {
		databaseIDs = append(databaseIDs, db.ID)
	}
	databaseData, dbFailures := harvestDatabases(client, storage, "database", databaseIDs, fetchDatabaseWithRows)
	allErrors = append(allErrors, dbFailures...)

	var dataSourceIDs []string
	for _, db := range databaseData {
		for _, ds := range db.Database.DataSources {
			dataSourceIDs = append(dataSourceIDs, ds.ID)
		}
	}
	dataSourceData, dsFailures := harvestDatabases(client, storage, "data_source", dataSourceIDs, fetchDataSourceWithRows)
	allErrors = append(allErrors, dsFailures...)

	var allBlocks []Block
	for _, data := range pageData {
		allBlocks = append(allBlocks, data.Blocks...)
	}
	filesDownloaded, totalBytes, fileFailures := downloadFilesFromBlocks(allBlocks, storage.FilesPath)
	allErrors = append(allErrors, fileFailures...)

	writer := NewMarkdownWriter(storage.MarkdownPath, storage.FilesPath)
	pagesWritten, renderFailures := writeMarkdownTree(writer, pageData, parentMap)
	allErrors = append(allErrors, renderFailures...)
	if pagesWritten < len(pageData) {
		log.Printf("Rendered %d of %d pages to markdown", pagesWritten, len(pageData))
	}

	manifest := createManifest(start, len(pageData), len(databaseData)+len(dataSourceData), filesDownloaded, allErrors)
	if err := storage.SaveManifest(manifest); err != nil {
		return nil, fmt.Errorf("saving manifest: %w", err)
	}

	return &BackupStats{
		Pages:      len(pageData),
		Databases:  len(databaseData) + len(dataSourceData),
		Files:      filesDownloaded,
		TotalBytes: totalBytes,
		Errors:     allErrors,
		Status:     manifest.Status,
		BackupPath: storage.BackupPath,
		Duration:   manifest.DurationSeconds,
	}, nil
}
