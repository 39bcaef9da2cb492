package testdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/deppfellow/estate-storage/internal/config"
	"github.com/deppfellow/estate-storage/internal/database"
	"github.com/deppfellow/estate-storage/internal/model"
	"github.com/deppfellow/estate-storage/internal/repository"
	"github.com/rs/zerolog"
)

// TestDB is an isolated database plus a storage facade over it.
type TestDB struct {
	DB      *database.Database
	Storage *repository.DBStorage
	Config  *config.Config
	t       testing.TB
	log     zerolog.Logger
}

// New creates a private in-memory database with migrations applied.
func New(t testing.TB) *TestDB {
	t.Helper()
	return open(t, config.NewMemoryConfig())
}

// NewFile creates a file-backed database under t.TempDir(), for tests that
// use more than one session at a time.
func NewFile(t testing.TB) *TestDB {
	t.Helper()
	cfg := config.NewMemoryConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "estate.db")
	return open(t, cfg)
}

func open(t testing.TB, cfg *config.Config) *TestDB {
	t.Helper()

	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.WarnLevel)

	db, err := database.New(cfg, &logger, nil)
	if err != nil {
		t.Fatalf("testdb: failed to open database: %v", err)
	}

	tdb := &TestDB{
		DB:     db,
		Config: cfg,
		t:      t,
		log:    logger,
	}
	// Registered first so it runs after every storage cleanup.
	t.Cleanup(tdb.Close)

	tdb.Storage = tdb.NewStorage()
	return tdb
}

// NewStorage returns another reloaded facade over the same database. It is
// closed with the TestDB. In-memory databases hold a single connection, so
// only the default storage can use them; use NewFile for more sessions.
func (tdb *TestDB) NewStorage() *repository.DBStorage {
	tdb.t.Helper()

	if tdb.Storage != nil && tdb.Config.Database.IsMemory() {
		tdb.t.Fatalf("testdb: a second storage on an in-memory database would block; use NewFile")
	}

	store := repository.NewDBStorage(tdb.DB, &tdb.log)
	if err := store.Reload(tdb.ctx()); err != nil {
		tdb.t.Fatalf("testdb: failed to reload storage: %v", err)
	}
	tdb.t.Cleanup(func() { _ = store.Close() })
	return store
}

// MustSave queues every entity on the default storage and commits.
func (tdb *TestDB) MustSave(entities ...model.Entity) {
	tdb.t.Helper()

	for _, e := range entities {
		if err := tdb.Storage.New(e); err != nil {
			tdb.t.Fatalf("testdb: new %s: %v", e.ClassName(), err)
		}
	}
	if err := tdb.Storage.Save(tdb.ctx()); err != nil {
		tdb.t.Fatalf("testdb: save: %v", err)
	}
}

// Close closes the database.
func (tdb *TestDB) Close() {
	_ = tdb.DB.Close()
}

func (tdb *TestDB) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}
