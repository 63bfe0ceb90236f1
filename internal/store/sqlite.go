package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/shipcam/shipcam/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	// DefaultSuggestionCap bounds suggestion entries kept per type.
	DefaultSuggestionCap = 200
	defaultCacheSize     = 64

	// Fixed-width UTC layout so created_at sorts lexicographically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db            *sql.DB
	cache         *lru.Cache[int64, model.Record]
	suggestionCap int
	log           *slog.Logger
	now           func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSuggestionCap bounds suggestions kept per type. n <= 0 disables pruning.
func WithSuggestionCap(n int) Option {
	return func(s *SQLiteStore) { s.suggestionCap = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection per session.
	db.SetMaxOpenConns(1)

	cache, err := lru.New[int64, model.Record](defaultCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache: %w", err)
	}

	s := &SQLiteStore{
		db:            db,
		cache:         cache,
		suggestionCap: DefaultSuggestionCap,
		log:           slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	drv, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return err
	}
	// m.Close would close s.db through the driver; only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

var recordColumns = []string{"id", "date", "customer", "destination", "notes", "photos", "created_at"}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (model.Record, error) {
	var r model.Record
	var photos, createdAt string

	err := row.Scan(&r.ID, &r.Date, &r.Customer, &r.Destination, &r.Notes, &photos, &createdAt)
	if err != nil {
		return r, err
	}

	r.CreatedAt = parseTime(createdAt)
	if err := json.Unmarshal([]byte(photos), &r.Photos); err != nil {
		return r, fmt.Errorf("decode photos of record %d: %w", r.ID, err)
	}
	return r, nil
}
