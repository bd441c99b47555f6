package main

import (
	"log"
	"sync"
)

// API worker pool size. Throughput is still bounded by the rate limiter.
const maxAPIWorkers = 3

type pageOutcome struct {
	data *PageData
	fail *HarvestError
}

type databaseOutcome struct {
	data *DatabaseData
	fail *HarvestError
}

// harvestPages fetches and persists every page through a fixed-size worker
// pool. Workers report outcomes over a channel to the single aggregating
// receiver; a failing page becomes a failure record and never aborts its
// siblings.
func harvestPages(client *NotionClient, storage *BackupStorage, pages []Page) ([]PageData, []HarvestError) {
	if len(pages) == 0 {
		return nil, nil
	}

	jobs := make(chan Page)
	outcomes := make(chan pageOutcome)

	var wg sync.WaitGroup
	for w := 0; w < maxAPIWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				data, err := fetchPageWithBlocks(client, page.ID)
				if err != nil {
					outcomes <- pageOutcome{fail: &HarvestError{Category: "page", ID: page.ID, Message: err.Error()}}
					continue
				}
				if err := storage.SavePageJSON(page.ID, data); err != nil {
					outcomes <- pageOutcome{fail: &HarvestError{Category: "page", ID: page.ID, Message: err.Error()}}
					continue
				}
				outcomes <- pageOutcome{data: data}
			}
		}()
	}

	go func() {
		for _, page := range pages {
			jobs <- page
		}
		close(jobs)
		wg.Wait()
		close(outcomes)
	}()

	var results []PageData
	var failures []HarvestError
	for outcome := range outcomes {
		if outcome.fail != nil {
			log.Printf("Failed to fetch page %s: %s", outcome.fail.ID, outcome.fail.Message)
			failures = append(failures, *outcome.fail)
			continue
		}
		results = append(results, *outcome.data)
	}
	return results, failures
}

// harvestDatabases fetches and persists databases or data sources (the
// category label distinguishes them in failure records) through the same
// pool and isolation policy as harvestPages.
func harvestDatabases(
	client *NotionClient,
	storage *BackupStorage,
	category string,
	ids []string,
	fetch func(*NotionClient, string) (*DatabaseData, error),
) ([]DatabaseData, []HarvestError) {
	if len(ids) == 0 {
		return nil, nil
	}

	jobs := make(chan string)
	outcomes := make(chan databaseOutcome)

	var wg sync.WaitGroup
	for w := 0; w < maxAPIWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				data, err := fetch(client, id)
				if err != nil {
					outcomes <- databaseOutcome{fail: &HarvestError{Category: category, ID: id, Message: err.Error()}}
					continue
				}
				if err := storage.SaveDatabaseJSON(id, data); err != nil {
					outcomes <- databaseOutcome{fail: &HarvestError{Category: category, ID: id, Message: err.Error()}}
					continue
				}
				outcomes <- databaseOutcome{data: data}
			}
		}()
	}

	go func() {
		for _, id := range ids {
			jobs <- id
		}
		close(jobs)
		wg.Wait()
		close(outcomes)
	}()

	var results []DatabaseData
	var failures []HarvestError
	for outcome := range outcomes {
		if outcome.fail != nil {
			log.Printf("Failed to fetch %s %s: %s", category, outcome.fail.ID, outcome.fail.Message)
			failures = append(failures, *outcome.fail)
			continue
		}
		results = append(results, *outcome.data)
	}
	return results, failures
}
