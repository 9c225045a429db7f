// Package store archives benchmark reports in LevelDB so past runs can be
// listed and compared.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/colorfulnotion/kernelbench/bench"
	log "github.com/colorfulnotion/kernelbench/log"
)

const runKeyPrefix = "run/"

// ResultsStore wraps LevelDB for benchmark report persistence.
// Thread-safe: LevelDB handles its own synchronization.
type ResultsStore struct {
	db *leveldb.DB
}

// NewResultsStore opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory storage.
func NewResultsStore(path string) (*ResultsStore, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		memStorage := leveldbstorage.NewMemStorage()
		db, err = leveldb.Open(memStorage, nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	return &ResultsStore{db: db}, nil
}

// NewMemoryResultsStore creates an in-memory ResultsStore for testing.
func NewMemoryResultsStore() (*ResultsStore, error) {
	return NewResultsStore("")
}

func (rs *ResultsStore) Close() error {
	return rs.db.Close()
}

// PutReport archives a report under run/<unix-nano>, zero-padded so key
// order matches time order, and returns the key.
func (rs *ResultsStore) PutReport(rep *bench.Report) (string, error) {
	key := fmt.Sprintf("%s%020d", runKeyPrefix, rep.GeneratedAt.UnixNano())
	data, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := rs.db.Put([]byte(key), data, nil); err != nil {
		return "", fmt.Errorf("Put %s: %w", key, err)
	}
	log.Info(log.StoreMonitoring, "archived report", "key", key)
	return key, nil
}

// GetReport retrieves an archived report by key.
func (rs *ResultsStore) GetReport(key string) (*bench.Report, error) {
	data, err := rs.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("no archived run with key %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("Get %s: %w", key, err)
	}
	var rep bench.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", key, err)
	}
	return &rep, nil
}

// Keys returns all archived run keys, newest first.
func (rs *ResultsStore) Keys() ([]string, error) {
	iter := rs.db.NewIterator(nil, nil)
	defer iter.Release()

	prefix := []byte(runKeyPrefix)
	var keys []string
	for ok := iter.Seek(prefix); ok; ok = iter.Next() {
		key := string(iter.Key())
		if !strings.HasPrefix(key, runKeyPrefix) {
			break
		}
		keys = append(keys, key)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("Keys: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}
