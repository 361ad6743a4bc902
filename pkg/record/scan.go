package record

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"case-scraper/pkg/utils"
)

// CaseFile is one record file found under a corpus root
type CaseFile struct {
	Path string // As walked, rooted at the scan root
	Rel  string // Slash-separated, relative to the scan root
	Year int    // First four-digit path component of Rel, 0 when none
}

// InYear reports whether the file falls inside [start, end]; a zero bound is open
func (f CaseFile) InYear(start, end int) bool {
	if start > 0 && f.Year < start {
		return false
	}
	if end > 0 && f.Year > end {
		return false
	}
	return true
}

// ScanFiles lists every *.json file under root whose lowercased name contains
// none of the skip fragments, sorted by relative path
func ScanFiles(root string, skip ...string) ([]CaseFile, error) {
	var files []CaseFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		lower := strings.ToLower(d.Name())
		for _, frag := range skip {
			if strings.Contains(lower, frag) {
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, CaseFile{Path: path, Rel: rel, Year: yearOf(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %w", utils.ErrFilesystem, root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

func yearOf(rel string) int {
	for _, part := range strings.Split(rel, "/") {
		if len(part) != 4 || strings.TrimLeft(part, "0123456789") != "" {
			continue
		}
		year, _ := strconv.Atoi(part)
		return year
	}
	return 0
}
