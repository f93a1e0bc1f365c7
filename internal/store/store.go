// Package store provides the persistent key-value storage namespace that
// backs all Techtrail state. Values are stored as JSON text under string
// keys, one row per key.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/techtrail/techtrail/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Well-known keys in the storage namespace.
const (
	KeyTechnologies  = "technologies"
	KeyIsLoggedIn    = "isLoggedIn"
	KeyUsername      = "username"
	KeyTheme         = "theme"
	KeyNotifications = "notifications"
)

// Entry is a single key-value row.
type Entry struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"type:text"`
}

// TableName keeps the table name stable across gorm versions.
func (Entry) TableName() string { return "kv_entries" }

// WriteError wraps a failed persist so callers can tell storage failures
// apart from domain errors. Data loss must be observable.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("store: write %q: %v", e.Key, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Store is a JSON key-value store over a GORM connection.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured backend and migrates the entries table.
func Open(cfg config.StorageConfig) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch cfg.Backend {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.MySQL.User, cfg.MySQL.Password, cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.Database)
		db, err = gorm.Open(mysql.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: connect to %s:%d/%s: %w",
				cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.Database, err)
		}
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create %s: %w", dir, err)
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
		}
	}

	return New(db)
}

// New wraps an existing GORM connection. Used by tests with an in-memory
// sqlite database.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("store: auto-migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Read unmarshals the value stored under key into dest. A missing key or
// undecodable value falls back to fallback; Read never fails to the caller.
func (s *Store) Read(key string, dest any, fallback any) {
	var entry Entry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("store: read %q: %v", key, err)
		}
		assignFallback(dest, fallback)
		return
	}
	if err := json.Unmarshal([]byte(entry.Value), dest); err != nil {
		log.Printf("store: decode %q: %v", key, err)
		assignFallback(dest, fallback)
	}
}

// ReadString returns the string stored under key, or fallback.
func (s *Store) ReadString(key, fallback string) string {
	var v string
	s.Read(key, &v, fallback)
	return v
}

// Write marshals value to JSON and upserts it under key. Failures come back
// as a *WriteError.
func (s *Store) Write(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	entry := Entry{Key: key, Value: string(data)}
	if err := s.db.Save(&entry).Error; err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// Delete removes key from the namespace. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	if err := s.db.Where("key = ?", key).Delete(&Entry{}).Error; err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// assignFallback round-trips fallback through JSON into dest so callers get
// the default in the same shape a stored value would arrive in.
func assignFallback(dest any, fallback any) {
	if fallback == nil {
		return
	}
	data, err := json.Marshal(fallback)
	if err != nil {
		log.Printf("store: marshal fallback: %v", err)
		return
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("store: assign fallback: %v", err)
	}
}
