// Package prefs persists per-visitor display preferences. Visitors are
// identified only by a salted hash of their cookie id.
package prefs

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"
)

// Backend is a key-value store partitioned by hashed visitor.
type Backend interface {
	Get(ctx context.Context, visitor, key string) (string, bool, error)
	Set(ctx context.Context, visitor, key, value string) error
	// Cleanup drops preferences not written for the given number of months
	// and reports how many were removed.
	Cleanup(ctx context.Context, months int) (int64, error)
	Close() error
}

type Options struct {
	Backend         string
	SQLitePath      string
	RedisAddr       string
	Salt            string
	RetentionMonths int
	Timeout         time.Duration
}

// Prefs hands out visitor-scoped stores over one backend.
type Prefs struct {
	backend   Backend
	salt      string
	retention int
	timeout   time.Duration
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options) (*Prefs, error) {
	var (
		backend Backend
		err     error
	)
	switch opts.Backend {
	case "sqlite", "":
		backend, err = OpenSQLite(ctx, opts.SQLitePath)
	case "redis":
		backend, err = OpenRedis(ctx, opts.RedisAddr, retentionTTL(opts.RetentionMonths))
	case "memory":
		backend = NewMemory()
	default:
		return nil, fmt.Errorf("unknown preference backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.Salt == "" {
		opts.Salt = generateSalt()
		log.Println("prefs: PREFS_SALT not set, stored preferences will not survive a restart")
	}
	return New(backend, opts.Salt, opts.RetentionMonths, opts.Timeout), nil
}

func New(backend Backend, salt string, retentionMonths int, timeout time.Duration) *Prefs {
	if retentionMonths <= 0 {
		retentionMonths = 12
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Prefs{backend: backend, salt: salt, retention: retentionMonths, timeout: timeout}
}

// ForVisitor returns the store for one visitor cookie id.
func (p *Prefs) ForVisitor(visitorID string) *Store {
	return &Store{prefs: p, visitor: p.hash(visitorID)}
}

// Cleanup removes preferences older than the retention window.
func (p *Prefs) Cleanup(ctx context.Context) (int64, error) {
	n, err := p.backend.Cleanup(ctx, p.retention)
	if err != nil {
		return 0, fmt.Errorf("cleaning up preferences: %w", err)
	}
	if n > 0 {
		log.Printf("prefs: removed %d preferences older than %d months", n, p.retention)
	}
	return n, nil
}

func (p *Prefs) Close() error { return p.backend.Close() }

// hash is consistent per visitor for a given salt.
func (p *Prefs) hash(visitorID string) string {
	sum := sha256.Sum256([]byte(visitorID + p.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Store is a single visitor's preferences.
type Store struct {
	prefs   *Prefs
	visitor string
}

func (s *Store) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.prefs.timeout)
	defer cancel()
	return s.prefs.backend.Get(ctx, s.visitor, key)
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.prefs.timeout)
	defer cancel()
	return s.prefs.backend.Set(ctx, s.visitor, key, value)
}

func generateSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal("Failed to generate preference salt:", err)
	}
	return hex.EncodeToString(b)
}

func retentionTTL(months int) time.Duration {
	if months <= 0 {
		months = 12
	}
	return time.Duration(months) * 30 * 24 * time.Hour
}
