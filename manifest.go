package main

import (
	"math"
	"time"
)

// Run status derived from aggregate counts. A run never ends in partial
// silent success: it is clean, completed with warnings, or failed.
const (
	StatusCompleted             = "completed"
	StatusCompletedWithWarnings = "completed_with_warnings"
	StatusFailed                = "failed"
)

// Manifest summarizes one backup run for downstream consumers (notifier,
// retention pruner, humans).
type Manifest struct {
	Timestamp         string         `json:"timestamp"`
	DurationSeconds   float64        `json:"duration_seconds"`
	PagesBackedUp     int            `json:"pages_backed_up"`
	DatabasesBackedUp int            `json:"databases_backed_up"`
	FilesDownloaded   int            `json:"files_downloaded"`
	Errors            []HarvestError `json:"errors"`
	Status            string         `json:"status"`
}

// createManifest computes the run manifest. Status is failed only when
// nothing at all succeeded despite recorded errors.
func createManifest(startTime time.Time, pages, databases, files int, errs []HarvestError) *Manifest {
	status := StatusCompleted
	if len(errs) > 0 {
		if pages+databases+files == 0 {
			status = StatusFailed
		} else {
			status = StatusCompletedWithWarnings
		}
	}
	if errs == nil {
		errs = []HarvestError{}
	}

	duration := time.Since(startTime).Seconds()
	return &Manifest{
		Timestamp:         startTime.UTC().Format(time.RFC3339),
		DurationSeconds:   math.Round(duration*100) / 100,
		PagesBackedUp:     pages,
		DatabasesBackedUp: databases,
		FilesDownloaded:   files,
		Errors:            errs,
		Status:            status,
	}
}
