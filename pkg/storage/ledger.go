// Package storage keeps a per-URL ledger of fetch attempts in BadgerDB.
// The ledger is diagnostic: the progress file stays the source of truth for resuming.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"case-scraper/pkg/log"
	"case-scraper/pkg/models"
	"case-scraper/pkg/utils"
)

const urlKeyPrefix = "url:"

// Ledger records the outcome of the last fetch of each listing and detail URL
type Ledger interface {
	Record(pageURL string, entry models.LedgerEntry) error
	Get(pageURL string) (models.PageStatus, *models.LedgerEntry, error)
	Failures() ([]FailedPage, error)
	Close() error
}

// FailedPage is a ledger entry whose last attempt failed
type FailedPage struct {
	URL   string
	Entry models.LedgerEntry
}

// BadgerLedger implements Ledger using BadgerDB
type BadgerLedger struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewBadgerLedger opens (or creates) the ledger database in dir
func NewBadgerLedger(dir string, logger *logrus.Entry) (*BadgerLedger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: cannot create ledger directory %s: %w", utils.ErrDatabase, dir, err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger database at %s: %w", utils.ErrDatabase, dir, err)
	}

	logger.WithField("dir", dir).Info("Attempt ledger opened")
	return &BadgerLedger{db: db, log: logger}, nil
}

// Record stores entry as the latest attempt for pageURL
func (l *BadgerLedger) Record(pageURL string, entry models.LedgerEntry) error {
	if !entry.Status.IsValid() {
		return fmt.Errorf("%w: refusing to record status '%s' for %s", utils.ErrDatabase, entry.Status, pageURL)
	}
	if entry.LastAttempt.IsZero() {
		entry.LastAttempt = time.Now()
	}

	val, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: marshal ledger entry: %w", utils.ErrDatabase, err)
	}

	key := []byte(urlKeyPrefix + pageURL)
	if err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	}); err != nil {
		return fmt.Errorf("%w: writing key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	return nil
}

// Get returns the latest attempt for pageURL, or PageStatusNotFound
func (l *BadgerLedger) Get(pageURL string) (models.PageStatus, *models.LedgerEntry, error) {
	key := []byte(urlKeyPrefix + pageURL)
	var entry *models.LedgerEntry

	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decoded models.LedgerEntry
			if err := json.Unmarshal(val, &decoded); err != nil {
				return err
			}
			entry = &decoded
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.PageStatusNotFound, nil, nil
	}
	if err != nil {
		l.log.WithField("key", string(key)).Errorf("DB View error: %v", err)
		return models.PageStatusDBError, nil, fmt.Errorf("%w: reading key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	return entry.Status, entry, nil
}

// Failures lists every URL whose last attempt failed, ordered by year, month, then URL
func (l *BadgerLedger) Failures() ([]FailedPage, error) {
	var out []FailedPage
	prefix := []byte(urlKeyPrefix)

	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(val []byte) error {
				var entry models.LedgerEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					l.log.Warnf("Skipping undecodable ledger entry '%s': %v", key, err)
					return nil
				}
				if entry.Status == models.PageStatusFailure {
					out = append(out, FailedPage{URL: key[len(urlKeyPrefix):], Entry: entry})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning failures: %w", utils.ErrDatabase, err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Entry, out[j].Entry
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if ai, bi := models.MonthIndex(a.Month), models.MonthIndex(b.Month); ai != bi {
			return ai < bi
		}
		return out[i].URL < out[j].URL
	})
	return out, nil
}

// RunGC runs BadgerDB's value log garbage collection periodically until ctx is done
func (l *BadgerLedger) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				if err := l.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						l.log.Debugf("Value log GC: %v", err)
					}
					break
				}
			}
		}
	}
}

// Close cleanly closes the database
func (l *BadgerLedger) Close() error {
	if l.db == nil {
		return nil
	}
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", utils.ErrDatabase, err)
	}
	l.db = nil
	return nil
}
