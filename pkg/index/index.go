package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"case-scraper/pkg/models"
	"case-scraper/pkg/record"
	"case-scraper/pkg/utils"
)

// File names containing any of these are not case records
var skipNames = []string{"index", "report", "progress", "validation"}

// Index maps case id (record filename stem) to its projection
type Index map[string]models.IndexEntry

// Result summarizes one Update
type Result struct {
	New     int
	Updated int
	Total   int
	ByYear  map[int]int // Entries per year across the whole merged index
	Failed  []string    // Relative paths that could not be read
}

// Builder rebuilds the case index from the record files under a root
type Builder struct {
	root    string
	workers int
	log     *logrus.Entry
}

// NewBuilder creates a Builder for the corpus under root
func NewBuilder(root string, log *logrus.Entry) *Builder {
	return &Builder{root: root, workers: runtime.NumCPU(), log: log}
}

// Update scans the records in [startYear, endYear] (zero bounds are open),
// merges them into the index at indexPath and writes it back.
func (b *Builder) Update(ctx context.Context, indexPath string, startYear, endYear int) (*Result, error) {
	idx, err := Load(indexPath)
	if err != nil {
		return nil, err
	}
	if len(idx) > 0 {
		b.log.WithField("entries", len(idx)).Info("Loaded existing index")
	}

	all, err := record.ScanFiles(b.root, skipNames...)
	if err != nil {
		return nil, err
	}
	var files []record.CaseFile
	for _, f := range all {
		if f.Year != 0 && f.InYear(startYear, endYear) {
			files = append(files, f)
		}
	}
	b.log.WithField("files", len(files)).Info("Found case files")

	// Reads fan out; the merge below runs in scan order
	recs := make([]*models.CaseRecord, len(files))
	errs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs[i], errs[i] = record.Load(f.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInterrupted, err)
	}

	res := &Result{ByYear: make(map[int]int)}
	for i, f := range files {
		if errs[i] != nil {
			b.log.WithError(errs[i]).WithField("file", f.Rel).Warn("Skipping unreadable case file")
			res.Failed = append(res.Failed, f.Rel)
			continue
		}
		id := utils.FileStem(f.Rel)
		if _, exists := idx[id]; exists {
			res.Updated++
		} else {
			res.New++
		}
		idx[id] = models.NewIndexEntry(id, f.Rel, recs[i])
	}

	if err := idx.Save(indexPath); err != nil {
		return nil, err
	}

	res.Total = len(idx)
	for _, e := range idx {
		if e.Year != 0 {
			res.ByYear[e.Year]++
		}
	}
	b.log.WithFields(logrus.Fields{
		"new":     res.New,
		"updated": res.Updated,
		"total":   res.Total,
		"path":    indexPath,
	}).Info("Index saved")
	return res, nil
}

// Load reads an index file; a missing file is an empty index
func Load(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Index{}, nil
		}
		return nil, fmt.Errorf("%w: reading index %s: %w", utils.ErrFilesystem, path, err)
	}
	idx := Index{}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: index %s: %w", utils.ErrParsing, path, err)
	}
	return idx, nil
}

// Save writes the index as indented JSON, keys sorted
func (idx Index) Save(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("%w: encoding index: %w", utils.ErrParsing, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating %s: %w", utils.ErrFilesystem, dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing index %s: %w", utils.ErrFilesystem, path, err)
	}
	return nil
}
