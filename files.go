package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// Binary downloads are not subject to the API call budget, so the
	// download pool is larger than the API pool.
	maxDownloadWorkers = 10

	downloadTimeout    = 30 * time.Second
	maxDownloadRetries = 3
)

// fileBlockTypes are the media block types that can reference a
// downloadable file.
var fileBlockTypes = map[string]bool{
	"image": true,
	"video": true,
	"file":  true,
	"pdf":   true,
	"audio": true,
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// FileRef is one downloadable file discovered in a block tree, together
// with the block that owns it.
type FileRef struct {
	URL     string
	BlockID string
	Type    string
}

// mediaValue returns the file payload when the block is a media block.
func (b *Block) mediaValue() *FileValue {
	switch b.Type {
	case "image":
		return b.Image
	case "video":
		return b.Video
	case "file":
		return b.File
	case "pdf":
		return b.PDF
	case "audio":
		return b.Audio
	}
	return nil
}

// extractFileRefs walks blocks depth-first (including children) and
// collects one FileRef per media block. Hosted URLs are preferred over
// external ones; blocks carrying neither contribute nothing.
func extractFileRefs(blocks []Block) []FileRef {
	var refs []FileRef
	for i := range blocks {
		block := &blocks[i]
		if fileBlockTypes[block.Type] {
			if media := block.mediaValue(); media != nil {
				switch {
				case media.File != nil:
					refs = append(refs, FileRef{URL: media.File.URL, BlockID: block.ID, Type: block.Type})
				case media.External != nil:
					refs = append(refs, FileRef{URL: media.External.URL, BlockID: block.ID, Type: block.Type})
				}
			}
		}
		if len(block.Children) > 0 {
			refs = append(refs, extractFileRefs(block.Children)...)
		}
	}
	return refs
}

// isHexString reports whether s is a non-degenerate hex encoding.
func isHexString(s string) bool {
	if len(s) == 0 || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// generateFilename derives the deterministic local filename for a file:
// an 8-hex-character digest of "blockID:url" joined with a sanitized base
// name from the URL path. Pure function of its inputs, so the renderer can
// recompute it independently of the downloader.
func generateFilename(rawURL, blockID string) string {
	name := "file"
	if parsed, err := url.Parse(rawURL); err == nil {
		p := parsed.Path
		if decoded, derr := url.PathUnescape(p); derr == nil {
			p = decoded
		}
		name = path.Base(p)
	}

	// Notion URLs can carry query params inside the last path segment.
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}

	// Notion's image proxy hex-encodes external URLs into a long path
	// segment; recover the true base name when possible.
	if len(name) > 50 && isHexString(name) {
		if recovered, ok := decodeProxyName(name); ok {
			name = recovered
		}
	}

	if name == "" || name == "/" || name == "." {
		name = "file"
	}

	sum := sha256.Sum256([]byte(blockID + ":" + rawURL))
	shortHash := hex.EncodeToString(sum[:4])

	// Filesystem name limit is 255; stay well under.
	maxNameLen := 200 - len(shortHash) - 1
	if len(name) > maxNameLen {
		ext := path.Ext(name)
		if ext != "" && len(ext)+3 < maxNameLen {
			name = name[:maxNameLen-len(ext)-3] + "..." + ext
		} else {
			name = name[:maxNameLen-3] + "..."
		}
	}

	return shortHash + "-" + name
}

// decodeProxyName hex-decodes a proxy-encoded path segment and extracts
// the base name of the URL inside. Failing silently is fine; the caller
// keeps the encoded name.
func decodeProxyName(encoded string) (string, bool) {
	decoded, err := hex.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	inner := string(decoded)
	if !utf8.ValidString(inner) {
		return "", false
	}
	if !strings.HasPrefix(inner, "http://") && !strings.HasPrefix(inner, "https://") {
		return "", false
	}
	parsed, err := url.Parse(inner)
	if err != nil {
		return "", false
	}
	p := parsed.Path
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	name := path.Base(p)
	if name == "" || name == "/" || name == "." {
		return "", false
	}
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	return name, true
}

// downloadFile streams a file to destination, retrying transient failures.
// The destination is only considered written when the full body has been
// copied; a partial write on the final failing attempt is left on disk but
// reported as an error.
func downloadFile(client *http.Client, rawURL, destination string) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= maxDownloadRetries; attempt++ {
		size, err := tryDownload(client, rawURL, destination)
		if err == nil {
			return size, nil
		}
		lastErr = err
		log.Printf("Download attempt %d/%d failed: %v", attempt, maxDownloadRetries, err)
	}
	return 0, fmt.Errorf("download failed after %d attempts: %w", maxDownloadRetries, lastErr)
}

func tryDownload(client *http.Client, rawURL, destination string) (int64, error) {
	resp, err := client.Get(rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	out, err := os.Create(destination)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		return size, err
	}
	if closeErr != nil {
		return size, closeErr
	}
	return size, nil
}

type downloadOutcome struct {
	size int64
	fail *HarvestError
}

// downloadFilesFromBlocks extracts every file reference from the block
// trees and downloads them through a worker pool, aggregating success
// count, total bytes, and per-file failure records.
func downloadFilesFromBlocks(blocks []Block, filesPath string) (int, int64, []HarvestError) {
	refs := extractFileRefs(blocks)
	if len(refs) == 0 {
		return 0, 0, nil
	}

	client := &http.Client{Timeout: downloadTimeout}
	jobs := make(chan FileRef)
	outcomes := make(chan downloadOutcome)

	var wg sync.WaitGroup
	for w := 0; w < maxDownloadWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				filename := generateFilename(ref.URL, ref.BlockID)
				size, err := downloadFile(client, ref.URL, filepath.Join(filesPath, filename))
				if err != nil {
					outcomes <- downloadOutcome{fail: &HarvestError{
						Category: "file",
						URL:      ref.URL,
						BlockID:  ref.BlockID,
						Message:  err.Error(),
					}}
					continue
				}
				outcomes <- downloadOutcome{size: size}
			}
		}()
	}

	go func() {
		for _, ref := range refs {
			jobs <- ref
		}
		close(jobs)
		wg.Wait()
		close(outcomes)
	}()

	downloaded := 0
	completed := 0
	var totalBytes int64
	var failures []HarvestError
	for outcome := range outcomes {
		completed++
		if outcome.fail != nil {
			log.Printf("Failed to download file from block %s", outcome.fail.BlockID)
			failures = append(failures, *outcome.fail)
		} else {
			downloaded++
			totalBytes += outcome.size
		}
		if completed == len(refs) || completed%10 == 0 {
			log.Printf("Downloading files... %d/%d", completed, len(refs))
		}
	}
	return downloaded, totalBytes, failures
}
