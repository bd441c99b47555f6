package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedWhitespace  = regexp.MustCompile(`\s+`)
)

// sanitizeFilename converts a page title to a safe filename.
func sanitizeFilename(name string, maxLength int) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "-")
	safe = repeatedWhitespace.ReplaceAllString(safe, " ")
	safe = strings.Trim(safe, ". ")

	if safe == "" {
		safe = "Untitled"
	}
	if len(safe) > maxLength {
		safe = strings.TrimRight(safe[:maxLength], ". ")
	}
	return safe
}

// MarkdownWriter writes rendered pages under a directory tree mirroring
// the page hierarchy: a parent page's file becomes a directory holding its
// children's files.
type MarkdownWriter struct {
	markdownPath string
	filesPath    string
	pagePaths    map[string]string
}

// NewMarkdownWriter creates a writer rooted at markdownPath, computing
// file links relative to filesPath.
func NewMarkdownWriter(markdownPath, filesPath string) *MarkdownWriter {
	return &MarkdownWriter{
		markdownPath: markdownPath,
		filesPath:    filesPath,
		pagePaths:    make(map[string]string),
	}
}

// relativeFilesPath computes the link prefix from a markdown file's
// directory to the downloaded-files directory.
func (w *MarkdownWriter) relativeFilesPath(mdFilePath string) string {
	rel, err := filepath.Rel(filepath.Dir(mdFilePath), w.filesPath)
	if err != nil {
		return "../files"
	}
	return filepath.ToSlash(rel)
}

// WritePage renders one page to disk and records its path. When parentID
// names an already-written page, the file nests under that page's
// directory; otherwise it lands at the markdown root. Name collisions
// within a directory get an incrementing numeric suffix.
func (w *MarkdownWriter) WritePage(page *Page, blocks []Block, parentID string) (string, error) {
	title := pageTitle(page)
	safeTitle := sanitizeFilename(title, 100)

	outputDir := w.markdownPath
	if parentID != "" {
		if parentPath, ok := w.pagePaths[parentID]; ok {
			outputDir = strings.TrimSuffix(parentPath, ".md")
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, safeTitle+".md")
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			break
		}
		filePath = filepath.Join(outputDir, fmt.Sprintf("%s (%d).md", safeTitle, counter))
	}

	frontmatter, err := pageFrontmatter(page)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(frontmatter)
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString(blocksToMarkdown(blocks, w.relativeFilesPath(filePath), 0))

	if err := os.WriteFile(filePath, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing markdown %s: %w", filePath, err)
	}

	w.pagePaths[page.ID] = filePath
	log.Printf("Wrote markdown: %s", filePath)
	return filePath, nil
}

// PagePath returns the path a page was written to, if it was.
func (w *MarkdownWriter) PagePath(pageID string) (string, bool) {
	path, ok := w.pagePaths[pageID]
	return path, ok
}

// writeMarkdownTree renders all harvested pages, parents strictly before
// children. A page whose declared parent is missing from the harvested set
// (or is itself) falls back to root placement; a page that fails to render
// is recorded and still counts as visited so its descendants proceed with
// the root fallback instead of blocking.
func writeMarkdownTree(writer *MarkdownWriter, pages []PageData, parentMap map[string]string) (int, []HarvestError) {
	pagesByID := make(map[string]*PageData, len(pages))
	for i := range pages {
		pagesByID[pages[i].Page.ID] = &pages[i]
	}

	written := 0
	visited := make(map[string]bool, len(pages))
	var failures []HarvestError

	var writePage func(pageID string)
	writePage = func(pageID string) {
		if visited[pageID] {
			return
		}
		data, ok := pagesByID[pageID]
		if !ok {
			return
		}
		visited[pageID] = true

		parentID := parentMap[pageID]
		if parentID == pageID {
			// A self-referencing parent degrades to root placement.
			parentID = ""
		}
		if parentID != "" {
			if _, known := pagesByID[parentID]; known {
				writePage(parentID)
			}
		}

		if _, err := writer.WritePage(&data.Page, data.Blocks, parentID); err != nil {
			log.Printf("Failed to write markdown for page %s: %v", pageID, err)
			failures = append(failures, HarvestError{Category: "markdown", ID: pageID, Message: err.Error()})
			return
		}
		written++
	}

	for pageID := range pagesByID {
		writePage(pageID)
	}
	return written, failures
}
