package main

import (
	"log"
	"os"
	"path/filepath"
	"sort"
)

// isBackupDirName reports whether a directory name matches the run
// timestamp format YYYY-MM-DD_HHMMSS (e.g. 2024-01-15_030000).
func isBackupDirName(name string) bool {
	if len(name) != 17 {
		return false
	}
	if name[4] != '-' || name[7] != '-' || name[10] != '_' {
		return false
	}
	for i, c := range name {
		if i == 4 || i == 7 || i == 10 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// backupDirs lists a workspace's run directories, oldest first.
func backupDirs(workspacePath string) []string {
	entries, err := os.ReadDir(workspacePath)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && isBackupDirName(entry.Name()) {
			dirs = append(dirs, filepath.Join(workspacePath, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs
}

// pruneOldBackups deletes run directories beyond the retention count,
// oldest first, and returns how many were deleted.
func pruneOldBackups(backupsPath, workspaceName string, retentionCount int) int {
	workspacePath := filepath.Join(backupsPath, workspaceName)
	dirs := backupDirs(workspacePath)

	toDelete := len(dirs) - retentionCount
	if toDelete <= 0 {
		return 0
	}

	deleted := 0
	for _, dir := range dirs[:toDelete] {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("Failed to delete backup %s: %v", dir, err)
			continue
		}
		log.Printf("Deleted old backup: %s", dir)
		deleted++
	}
	return deleted
}
