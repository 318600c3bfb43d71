// Package storage provides a sqlite-backed cache for procurement lookups,
// keyed by lookup kind + notice number + ordinal. It wraps a live fetcher
// as a decorator: hits skip the network, misses and cache errors fall
// through to the source, and successful lookups are written back.
//
// The cache is an optimization only; the analysis pipeline behaves
// identically with it disabled.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kbidlab/bidscope/internal/logger"
)

// Cache persists lookup payloads to a SQLite database.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.Mutex
}

// Open opens (or creates) the cache database and runs migrations.
func Open(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, ttl: ttl}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS lookups (
		kind       TEXT NOT NULL,
		notice_no  TEXT NOT NULL,
		notice_ord TEXT NOT NULL,
		payload    TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (kind, notice_no, notice_ord)
	)`)
	return err
}

// get loads a cached payload into dest. Returns false on miss, expiry, or
// any decode problem.
func (c *Cache) get(kind, noticeNo, noticeOrd string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var payload string
	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT payload, fetched_at FROM lookups WHERE kind=? AND notice_no=? AND notice_ord=?`,
		kind, noticeNo, noticeOrd,
	).Scan(&payload, &fetchedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Debug("Cache read failed for %s/%s: %v", kind, noticeNo, err)
		}
		return false
	}

	if c.ttl > 0 && time.Since(time.Unix(fetchedAt, 0)) > c.ttl {
		return false
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		logger.Debug("Cache decode failed for %s/%s: %v", kind, noticeNo, err)
		return false
	}
	return true
}

// put stores a payload; failures are logged and otherwise ignored.
func (c *Cache) put(kind, noticeNo, noticeOrd string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Debug("Cache encode failed for %s/%s: %v", kind, noticeNo, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO lookups (kind, notice_no, notice_ord, payload, fetched_at) VALUES (?,?,?,?,?)`,
		kind, noticeNo, noticeOrd, string(payload), time.Now().Unix(),
	)
	if err != nil {
		logger.Debug("Cache write failed for %s/%s: %v", kind, noticeNo, err)
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
