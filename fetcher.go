package main

import (
	"fmt"
	"log"
)

// containerBlockTypes are the block types that can own child blocks. Other
// types are never recursed into, even if the API flags children on them.
var containerBlockTypes = map[string]bool{
	"paragraph":          true,
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"toggle":             true,
	"to_do":              true,
	"quote":              true,
	"callout":            true,
	"synced_block":       true,
	"template":           true,
	"column":             true,
	"column_list":        true,
	"table":              true,
	"table_row":          true,
}

// fetchBlocksRecursive materializes the full block tree under a parent.
// Pagination is handled per level by the client; recursion descends only
// into container blocks whose has_children flag is set. Depth is bounded
// only by the real tree, and recursion stays sequential within one tree so
// the call budget remains legible (parallelism is applied across roots).
func fetchBlocksRecursive(client *NotionClient, blockID string) ([]Block, error) {
	blocks, err := client.GetBlocks(blockID)
	if err != nil {
		return nil, err
	}

	for i := range blocks {
		block := &blocks[i]
		if !block.HasChildren || !containerBlockTypes[block.Type] {
			continue
		}
		children, err := fetchBlocksRecursive(client, block.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching children of block %s: %w", block.ID, err)
		}
		if children == nil {
			// has_children implies a resolved (possibly empty) sequence.
			children = []Block{}
		}
		block.Children = children
	}
	return blocks, nil
}

// fetchPageWithBlocks fetches a page's properties and its complete block tree.
func fetchPageWithBlocks(client *NotionClient, pageID string) (*PageData, error) {
	log.Printf("Fetching page %s", pageID)

	page, err := client.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	blocks, err := fetchBlocksRecursive(client, pageID)
	if err != nil {
		return nil, err
	}
	return &PageData{Page: *page, Blocks: blocks}, nil
}

// fetchDatabaseWithRows fetches a database's schema and all its rows.
func fetchDatabaseWithRows(client *NotionClient, databaseID string) (*DatabaseData, error) {
	log.Printf("Fetching database %s", databaseID)

	db, err := client.GetDatabase(databaseID)
	if err != nil {
		return nil, err
	}
	rows, err := client.QueryDatabase(databaseID)
	if err != nil {
		return nil, err
	}
	return &DatabaseData{Database: *db, Rows: rows}, nil
}

// fetchDataSourceWithRows fetches a data source's schema and all its rows.
func fetchDataSourceWithRows(client *NotionClient, dataSourceID string) (*DatabaseData, error) {
	log.Printf("Fetching data source %s", dataSourceID)

	ds, err := client.GetDataSource(dataSourceID)
	if err != nil {
		return nil, err
	}
	rows, err := client.QueryDataSource(dataSourceID)
	if err != nil {
		return nil, err
	}
	return &DatabaseData{Database: *ds, Rows: rows}, nil
}
