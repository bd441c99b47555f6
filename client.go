package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	notionBaseURL    = "https://api.notion.com/v1"
	notionAPIVersion = "2022-06-28"

	// Page size for all paginated endpoints.
	searchPageSize = 100

	// Attempt ceiling for rate-limited requests.
	maxAPIRetries = 3
)

// APIError is a non-success response from the Notion API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API status %d: %s", e.StatusCode, e.Body)
}

// NotionClient is an authenticated facade over the Notion API. Every call
// passes through the shared rate limiter and retries automatically on 429
// using the server's Retry-After hint; other failures propagate to the
// caller for per-item isolation.
type NotionClient struct {
	token      string
	baseURL    string
	apiVersion string
	limiter    *RateLimiter
	httpClient *http.Client
}

// NewNotionClient creates a client for one workspace token. The limiter is
// passed explicitly so all callers share one call budget and tests can
// inject a fast one.
func NewNotionClient(token string, limiter *RateLimiter) *NotionClient {
	return &NotionClient{
		token:      token,
		baseURL:    notionBaseURL,
		apiVersion: notionAPIVersion,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// call performs one rate-limited API request, decoding the response into
// out. On 429 it sleeps for the server-provided Retry-After (default 1s)
// and retries up to maxAPIRetries attempts.
func (nc *NotionClient) call(method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request payload: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAPIRetries; attempt++ {
		nc.limiter.Acquire()

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, nc.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+nc.token)
		req.Header.Set("Notion-Version", nc.apiVersion)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := nc.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("performing request: %w", err)
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
			if attempt == maxAPIRetries {
				break
			}
			retryAfter := time.Second
			if v := resp.Header.Get("Retry-After"); v != "" {
				if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
					retryAfter = time.Duration(secs) * time.Second
				}
			}
			log.Printf("Rate limited, retrying in %s (attempt %d/%d)", retryAfter, attempt, maxAPIRetries)
			time.Sleep(retryAfter)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
		}
		return nil
	}
	return fmt.Errorf("rate limit retries exhausted after %d attempts: %w", maxAPIRetries, lastErr)
}

// paginatedList is the envelope shared by all paginated endpoints.
type paginatedList struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor"`
}

// WorkspaceContent is everything discovery found: all pages and databases
// shared with the integration.
type WorkspaceContent struct {
	Pages     []Page
	Databases []Database
}

// DiscoverContent finds all accessible pages and databases via the
// paginated search endpoint.
func (nc *NotionClient) DiscoverContent() (*WorkspaceContent, error) {
	log.Printf("Discovering workspace content...")

	content := &WorkspaceContent{}
	cursor := ""
	for {
		payload := map[string]any{"page_size": searchPageSize}
		if cursor != "" {
			payload["start_cursor"] = cursor
		}

		var result paginatedList
		if err := nc.call(http.MethodPost, "/search", payload, &result); err != nil {
			return nil, fmt.Errorf("searching workspace: %w", err)
		}

		for _, raw := range result.Results {
			var kind struct {
				Object string `json:"object"`
			}
			if err := json.Unmarshal(raw, &kind); err != nil {
				continue
			}
			switch kind.Object {
			case "page":
				var page Page
				if err := json.Unmarshal(raw, &page); err == nil {
					content.Pages = append(content.Pages, page)
				}
			case "database":
				var db Database
				if err := json.Unmarshal(raw, &db); err == nil {
					content.Databases = append(content.Databases, db)
				}
			}
		}

		if !result.HasMore {
			break
		}
		cursor = result.NextCursor
	}

	log.Printf("Found %d pages and %d databases", len(content.Pages), len(content.Databases))
	return content, nil
}

// GetPage retrieves a page's metadata and properties by ID.
func (nc *NotionClient) GetPage(pageID string) (*Page, error) {
	var page Page
	if err := nc.call(http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, fmt.Errorf("retrieving page %s: %w", pageID, err)
	}
	return &page, nil
}

// GetBlocks retrieves all direct children of a block or page, following
// pagination cursors strictly in the order the API returns them.
func (nc *NotionClient) GetBlocks(blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		path := fmt.Sprintf("/blocks/%s/children?page_size=%d", blockID, searchPageSize)
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}

		var result struct {
			Results    []Block `json:"results"`
			HasMore    bool    `json:"has_more"`
			NextCursor string  `json:"next_cursor"`
		}
		if err := nc.call(http.MethodGet, path, nil, &result); err != nil {
			return nil, fmt.Errorf("listing children of %s: %w", blockID, err)
		}

		blocks = append(blocks, result.Results...)
		if !result.HasMore {
			break
		}
		cursor = result.NextCursor
	}
	return blocks, nil
}

// GetDatabase retrieves a database's schema by ID.
func (nc *NotionClient) GetDatabase(databaseID string) (*Database, error) {
	var db Database
	if err := nc.call(http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return nil, fmt.Errorf("retrieving database %s: %w", databaseID, err)
	}
	return &db, nil
}

// QueryDatabase retrieves all rows of a database.
func (nc *NotionClient) QueryDatabase(databaseID string) ([]Page, error) {
	return nc.queryRows("/databases/" + databaseID + "/query")
}

// GetDataSource retrieves a data source's schema by ID.
func (nc *NotionClient) GetDataSource(dataSourceID string) (*Database, error) {
	var ds Database
	if err := nc.call(http.MethodGet, "/data_sources/"+dataSourceID, nil, &ds); err != nil {
		return nil, fmt.Errorf("retrieving data source %s: %w", dataSourceID, err)
	}
	return &ds, nil
}

// QueryDataSource retrieves all rows of a data source.
func (nc *NotionClient) QueryDataSource(dataSourceID string) ([]Page, error) {
	return nc.queryRows("/data_sources/" + dataSourceID + "/query")
}

func (nc *NotionClient) queryRows(path string) ([]Page, error) {
	var rows []Page
	cursor := ""
	for {
		payload := map[string]any{"page_size": searchPageSize}
		if cursor != "" {
			payload["start_cursor"] = cursor
		}

		var result struct {
			Results    []Page `json:"results"`
			HasMore    bool   `json:"has_more"`
			NextCursor string `json:"next_cursor"`
		}
		if err := nc.call(http.MethodPost, path, payload, &result); err != nil {
			return nil, fmt.Errorf("querying rows: %w", err)
		}

		rows = append(rows, result.Results...)
		if !result.HasMore {
			break
		}
		cursor = result.NextCursor
	}
	return rows, nil
}
