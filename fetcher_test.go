package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchBlocksRecursiveDescendsContainers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blocks/root/children":
			fmt.Fprint(w, `{
				"results": [
					{"id": "toggle-1", "type": "toggle", "has_children": true, "toggle": {"rich_text": []}},
					{"id": "para-1", "type": "paragraph", "has_children": false, "paragraph": {"rich_text": []}}
				],
				"has_more": false
			}`)
		case "/blocks/toggle-1/children":
			fmt.Fprint(w, `{
				"results": [
					{"id": "nested-1", "type": "paragraph", "has_children": false, "paragraph": {"rich_text": []}}
				],
				"has_more": false
			}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	blocks, err := fetchBlocksRecursive(client, "root")
	if err != nil {
		t.Fatalf("fetchBlocksRecursive() error = %v", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("got %d top-level blocks, want 2", len(blocks))
	}
	if len(blocks[0].Children) != 1 {
		t.Fatalf("toggle has %d children, want 1", len(blocks[0].Children))
	}
	if blocks[0].Children[0].ID != "nested-1" {
		t.Errorf("nested block ID = %q, want %q", blocks[0].Children[0].ID, "nested-1")
	}
	if blocks[1].Children != nil {
		t.Error("leaf paragraph should have nil children")
	}
}

func TestFetchBlocksRecursiveSkipsNonContainers(t *testing.T) {
	var childCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blocks/root/children" {
			// child_page reports has_children but must not be recursed into;
			// the child page is harvested as its own root.
			fmt.Fprint(w, `{
				"results": [
					{"id": "cp-1", "type": "child_page", "has_children": true, "child_page": {"title": "Sub"}}
				],
				"has_more": false
			}`)
			return
		}
		childCalls++
		fmt.Fprint(w, `{"results": [], "has_more": false}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	blocks, err := fetchBlocksRecursive(client, "root")
	if err != nil {
		t.Fatalf("fetchBlocksRecursive() error = %v", err)
	}

	if childCalls != 0 {
		t.Errorf("made %d child fetches for a child_page block, want 0", childCalls)
	}
	if blocks[0].Children != nil {
		t.Error("child_page block should not have materialized children")
	}
}

func TestFetchBlocksRecursiveEmptyChildrenNonNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blocks/root/children" {
			fmt.Fprint(w, `{
				"results": [
					{"id": "tg", "type": "toggle", "has_children": true, "toggle": {"rich_text": []}}
				],
				"has_more": false
			}`)
			return
		}
		fmt.Fprint(w, `{"results": [], "has_more": false}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	blocks, err := fetchBlocksRecursive(client, "root")
	if err != nil {
		t.Fatalf("fetchBlocksRecursive() error = %v", err)
	}

	if blocks[0].Children == nil {
		t.Error("container with has_children should end with non-nil (empty) children")
	}
	if len(blocks[0].Children) != 0 {
		t.Errorf("got %d children, want 0", len(blocks[0].Children))
	}
}

func TestFetchPageWithBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pages/p1":
			fmt.Fprint(w, `{"id": "p1", "parent": {"type": "workspace", "workspace": true}}`)
		case "/blocks/p1/children":
			fmt.Fprint(w, `{
				"results": [{"id": "b1", "type": "paragraph", "paragraph": {"rich_text": []}}],
				"has_more": false
			}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	data, err := fetchPageWithBlocks(client, "p1")
	if err != nil {
		t.Fatalf("fetchPageWithBlocks() error = %v", err)
	}

	if data.Page.ID != "p1" {
		t.Errorf("page ID = %q, want %q", data.Page.ID, "p1")
	}
	if len(data.Blocks) != 1 {
		t.Errorf("got %d blocks, want 1", len(data.Blocks))
	}
}

func TestFetchDatabaseWithRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/databases/d1":
			fmt.Fprint(w, `{"id": "d1", "parent": {"type": "workspace"}, "data_sources": [{"id": "ds1"}]}`)
		case "/databases/d1/query":
			fmt.Fprint(w, `{"results": [{"id": "row1"}, {"id": "row2"}], "has_more": false}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	data, err := fetchDatabaseWithRows(client, "d1")
	if err != nil {
		t.Fatalf("fetchDatabaseWithRows() error = %v", err)
	}

	if data.Database.ID != "d1" {
		t.Errorf("database ID = %q, want %q", data.Database.ID, "d1")
	}
	if len(data.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(data.Rows))
	}
	if len(data.Database.DataSources) != 1 || data.Database.DataSources[0].ID != "ds1" {
		t.Errorf("data sources = %+v, want one entry ds1", data.Database.DataSources)
	}
}
