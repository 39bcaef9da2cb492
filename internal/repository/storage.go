package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/estate-storage/internal/database"
	"github.com/deppfellow/estate-storage/internal/errs"
	"github.com/deppfellow/estate-storage/internal/model"
	"github.com/deppfellow/estate-storage/internal/sqlerr"
	"github.com/deppfellow/estate-storage/internal/validation"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DBStorage is the storage facade over one session.
type DBStorage struct {
	db      *database.Database
	log     zerolog.Logger
	builder sq.StatementBuilderType
	sess    *session

	// slowQuery marks queries and flushes logged at warn level. Zero
	// disables the check.
	slowQuery time.Duration
}

// Option configures a DBStorage.
type Option func(*DBStorage)

// WithSlowQueryThreshold sets the duration above which queries are logged
// as slow.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *DBStorage) {
		s.slowQuery = d
	}
}

// NewDBStorage returns a facade with an open session over db. The schema
// is not touched until Reload.
func NewDBStorage(db *database.Database, logger *zerolog.Logger, opts ...Option) *DBStorage {
	s := &DBStorage{
		db:      db,
		log:     logger.With().Str("component", "storage").Logger(),
		builder: db.Dialect.Builder(),
		sess:    newSession(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New queues e for insert. It is visible to Contains immediately and to
// queries after the next flush. New on an entity queued for delete cancels
// the delete instead.
func (s *DBStorage) New(e model.Entity) error {
	if err := s.checkOpen("New"); err != nil {
		return err
	}
	if s.sess.removeDelete(e) {
		return nil
	}
	if s.sess.contains(e) {
		return nil
	}
	if d, ok := e.(model.Defaulter); ok && e.GetID() == 0 {
		d.SetDefaults()
	}
	if err := validation.Entity(e); err != nil {
		return s.fail("New", err)
	}
	s.sess.inserts = append(s.sess.inserts, e)
	return nil
}

// Contains reports whether e is part of the session: queued for insert,
// or loaded/flushed and not queued for delete.
func (s *DBStorage) Contains(e model.Entity) bool {
	if s.sess.closed {
		return false
	}
	return s.sess.contains(e)
}

// Save flushes every pending change and commits. On failure the error is
// returned as is; the caller decides whether to Rollback.
func (s *DBStorage) Save(ctx context.Context) error {
	if err := s.checkOpen("Save"); err != nil {
		return err
	}

	start := time.Now()
	if err := s.flush(ctx); err != nil {
		return s.failCtx(ctx, "Save", err)
	}

	tx := s.sess.tx
	s.sess.tx = nil
	if err := tx.Commit(); err != nil {
		return s.failCtx(ctx, "Save", err)
	}
	s.sess.inserted = make(map[model.Entity]int64)

	elapsed := time.Since(start)
	event := s.log.Debug()
	if s.slowQuery > 0 && elapsed > s.slowQuery {
		event = s.log.Warn().Bool("slow", true)
	}
	event.Dur("elapsed", elapsed).Msg("session committed")
	return nil
}

// Delete queues e for removal on the next flush. An entity that was only
// queued for insert is simply dropped from the queue.
func (s *DBStorage) Delete(e model.Entity) error {
	if err := s.checkOpen("Delete"); err != nil {
		return err
	}
	if s.sess.removeInsert(e) {
		return nil
	}
	if e.GetID() == 0 || s.sess.isPendingDelete(e) {
		return nil
	}
	if _, err := model.ClassOf(e); err != nil {
		return s.fail("Delete", err)
	}
	s.sess.deletes = append(s.sess.deletes, e)
	return nil
}

// Rollback discards pending changes and the open transaction.
func (s *DBStorage) Rollback() error {
	if s.sess.closed {
		return nil
	}
	return s.rollback("Rollback")
}

func (s *DBStorage) rollback(op string) error {
	tx := s.sess.tx
	s.sess.reset()
	if tx == nil {
		return nil
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return s.fail(op, err)
	}
	s.log.Debug().Str("op", op).Msg("session rolled back")
	return nil
}

// Reload creates missing schema objects and opens a new session if the
// current one is closed. Calling it repeatedly is harmless.
func (s *DBStorage) Reload(ctx context.Context) error {
	if s.sess == nil || s.sess.closed {
		s.sess = newSession()
	}

	// Migrations need a connection of their own; with a transaction in
	// flight the schema is already in place.
	if s.sess.tx == nil {
		if err := s.db.Migrate(ctx); err != nil {
			return s.failCtx(ctx, "Reload", err)
		}
	}

	s.log.Info().Str("dialect", s.db.Dialect.Name).Msg("storage session ready")
	return nil
}

// Close rolls back and releases the session. Every later operation fails
// with errs.ErrSessionClosed until Reload.
func (s *DBStorage) Close() error {
	if s.sess.closed {
		return nil
	}
	err := s.rollback("Close")
	s.sess.closed = true
	s.log.Info().Msg("storage session closed")
	return err
}

func (s *DBStorage) checkOpen(op string) error {
	if s.sess == nil || s.sess.closed {
		return errs.NewSessionClosedError(op)
	}
	return nil
}

// fail normalises err, tags it with op and logs store failures.
func (s *DBStorage) fail(op string, err error) error {
	if err == nil {
		return nil
	}

	handled := sqlerr.HandleError(err)

	var storeErr *errs.Error
	if errors.As(handled, &storeErr) && storeErr.Op == "" {
		handled = storeErr.WithOp(op)
	}

	if errs.KindOf(handled) == errs.KindStore {
		s.log.Error().Err(err).Str("op", op).Msg("storage operation failed")
	}
	return handled
}

// failCtx is fail for operations that reach the database. Store failures
// are also noticed on the New Relic transaction carried by ctx, if any.
func (s *DBStorage) failCtx(ctx context.Context, op string, err error) error {
	handled := s.fail(op, err)
	if errs.KindOf(handled) != errs.KindStore {
		return handled
	}
	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.NoticeError(nrpkgerrors.Wrap(pkgerrors.WithStack(handled)))
		txn.AddAttribute("storage.op", op)
	}
	return handled
}
