package ocr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir reads all per-page OCR sidecar JSON files from dir, sorted by
// filename so pages arrive in document order. Each file holds one Page.
func LoadDir(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ocr dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no ocr page files in %s", dir)
	}

	pages := make([]Page, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var page Page
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		if page.Image == "" {
			page.Image = strings.TrimSuffix(filepath.Base(p), ".json")
		}
		pages = append(pages, page)
	}
	return pages, nil
}
