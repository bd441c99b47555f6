package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// testClient builds a client pointed at a test server with an effectively
// unthrottled limiter.
func testClient(serverURL string) *NotionClient {
	client := NewNotionClient("test-token", NewRateLimiter(10000))
	client.baseURL = serverURL
	return client
}

func TestCallSetsHeaders(t *testing.T) {
	var gotAuth, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.call(http.MethodGet, "/pages/abc", nil, nil); err != nil {
		t.Fatalf("call() error = %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
	if gotVersion != notionAPIVersion {
		t.Errorf("Notion-Version = %q, want %q", gotVersion, notionAPIVersion)
	}
}

func TestCallRetriesOn429(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id":"page-1"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	var page Page
	if err := client.call(http.MethodGet, "/pages/page-1", nil, &page); err != nil {
		t.Fatalf("call() error = %v", err)
	}

	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
	if page.ID != "page-1" {
		t.Errorf("page.ID = %q, want %q", page.ID, "page-1")
	}
}

func TestCallGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.call(http.MethodGet, "/pages/x", nil, nil)

	if err == nil {
		t.Fatal("call() should fail when every attempt is rate limited")
	}
	if calls != maxAPIRetries {
		t.Errorf("server saw %d calls, want %d", calls, maxAPIRetries)
	}
}

func TestCallNonRetryableErrorPropagates(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.call(http.MethodGet, "/pages/x", nil, nil)

	if err == nil {
		t.Fatal("call() should return error on 401")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("call() error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("APIError.StatusCode = %d, want %d", apiErr.StatusCode, http.StatusUnauthorized)
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on auth errors)", calls)
	}
}

func TestCallGoesThroughRateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewNotionClient("test-token", NewRateLimiter(50)) // 20ms interval
	client.baseURL = server.URL

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := client.call(http.MethodGet, "/pages/x", nil, nil); err != nil {
			t.Fatalf("call() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("3 calls took %v, want at least 40ms under the limiter", elapsed)
	}
}

func TestDiscoverContentPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)

		if payload["start_cursor"] == nil {
			fmt.Fprint(w, `{
				"results": [
					{"object": "page", "id": "p1"},
					{"object": "database", "id": "d1"}
				],
				"has_more": true,
				"next_cursor": "cur-2"
			}`)
			return
		}
		if payload["start_cursor"] != "cur-2" {
			t.Errorf("start_cursor = %v, want cur-2", payload["start_cursor"])
		}
		fmt.Fprint(w, `{
			"results": [{"object": "page", "id": "p2"}],
			"has_more": false,
			"next_cursor": null
		}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	content, err := client.DiscoverContent()
	if err != nil {
		t.Fatalf("DiscoverContent() error = %v", err)
	}

	if len(content.Pages) != 2 {
		t.Errorf("got %d pages, want 2", len(content.Pages))
	}
	if len(content.Databases) != 1 {
		t.Errorf("got %d databases, want 1", len(content.Databases))
	}
	if content.Pages[0].ID != "p1" || content.Pages[1].ID != "p2" {
		t.Errorf("page order = [%s %s], want [p1 p2]", content.Pages[0].ID, content.Pages[1].ID)
	}
}

func TestGetBlocksFollowsCursorsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("start_cursor")
		switch cursor {
		case "":
			fmt.Fprint(w, `{
				"results": [{"id": "b1", "type": "paragraph"}, {"id": "b2", "type": "paragraph"}],
				"has_more": true,
				"next_cursor": "cur"
			}`)
		case "cur":
			fmt.Fprint(w, `{
				"results": [{"id": "b3", "type": "paragraph"}],
				"has_more": false,
				"next_cursor": null
			}`)
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	blocks, err := client.GetBlocks("parent")
	if err != nil {
		t.Fatalf("GetBlocks() error = %v", err)
	}

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	for i, want := range []string{"b1", "b2", "b3"} {
		if blocks[i].ID != want {
			t.Errorf("blocks[%d].ID = %q, want %q", i, blocks[i].ID, want)
		}
	}
}

func TestQueryDatabasePaginates(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			fmt.Fprint(w, `{"results": [{"id": "row1"}], "has_more": true, "next_cursor": "c2"}`)
			return
		}
		fmt.Fprint(w, `{"results": [{"id": "row2"}], "has_more": false, "next_cursor": null}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	rows, err := client.QueryDatabase("db1")
	if err != nil {
		t.Fatalf("QueryDatabase() error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != "row1" || rows[1].ID != "row2" {
		t.Errorf("row order = [%s %s], want [row1 row2]", rows[0].ID, rows[1].ID)
	}
}
