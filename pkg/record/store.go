package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"case-scraper/pkg/models"
	"case-scraper/pkg/utils"
)

// Store persists CaseRecords as {root}/{year}/{month}/{safe_case_number}.json
type Store struct {
	root string
	log  *logrus.Entry
}

// NewStore creates a Store rooted at root
func NewStore(root string, log *logrus.Entry) *Store {
	return &Store{root: root, log: log}
}

// Root returns the output root
func (s *Store) Root() string {
	return s.root
}

// MonthDir returns the directory holding one month's records
func (s *Store) MonthDir(year int, month string) string {
	return filepath.Join(s.root, strconv.Itoa(year), strings.ToLower(month))
}

// PathFor returns where rec is (or would be) persisted
func (s *Store) PathFor(rec *models.CaseRecord) string {
	name := strings.TrimSuffix(rec.Filename, ".html") + ".json"
	return filepath.Join(s.MonthDir(rec.Year, rec.Month), name)
}

// Save writes rec, overwriting any earlier record for the same case number.
// Errors wrap utils.ErrFilesystem.
func (s *Store) Save(rec *models.CaseRecord) (string, error) {
	path := s.PathFor(rec)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", utils.ErrFilesystem, filepath.Dir(path), err)
	}

	data, err := Marshal(rec)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", utils.ErrFilesystem, path, err)
	}

	s.log.WithField("path", path).Debug("Record saved")
	return path, nil
}

// CountMonth returns the number of record files in a month directory; a missing directory counts as zero
func (s *Store) CountMonth(year int, month string) (int, error) {
	entries, err := os.ReadDir(s.MonthDir(year, month))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: listing %s: %w", utils.ErrFilesystem, s.MonthDir(year, month), err)
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			count++
		}
	}
	return count, nil
}

// Marshal encodes a record as indented UTF-8 JSON without HTML escaping
func Marshal(rec *models.CaseRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("%w: JSON encode: %w", utils.ErrParsing, err)
	}
	return buf.Bytes(), nil
}

// Load reads a record file
func Load(path string) (*models.CaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", utils.ErrFilesystem, path, err)
	}
	var rec models.CaseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: JSON in %s: %w", utils.ErrParsing, path, err)
	}
	return &rec, nil
}
