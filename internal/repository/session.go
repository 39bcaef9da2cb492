package repository

import (
	"context"
	"database/sql"
	"reflect"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/estate-storage/internal/database"
	"github.com/deppfellow/estate-storage/internal/model"
)

// session is the unit of work behind a DBStorage.
//
// The transaction is begun lazily by the first flush and ends on Save,
// Rollback or Close. Until then every flushed change is only visible
// through tx.
type session struct {
	tx     *sql.Tx
	closed bool

	// inserts and deletes are applied, in that order, on the next flush.
	inserts []model.Entity
	deletes []model.Entity

	// identity maps every persisted entity the session knows to the one
	// instance handed out for it; snapshots hold its last flushed record.
	identity  map[model.Key]model.Entity
	snapshots map[model.Key]map[string]any

	// inserted remembers the ids entities had before being inserted by the
	// current transaction, so a rollback can restore them.
	inserted map[model.Entity]int64
}

func newSession() *session {
	return &session{
		identity:  make(map[model.Key]model.Entity),
		snapshots: make(map[model.Key]map[string]any),
		inserted:  make(map[model.Entity]int64),
	}
}

func (ss *session) isPendingInsert(e model.Entity) bool {
	return slices.Contains(ss.inserts, e)
}

func (ss *session) isPendingDelete(e model.Entity) bool {
	return slices.Contains(ss.deletes, e)
}

func (ss *session) contains(e model.Entity) bool {
	if ss.isPendingInsert(e) {
		return true
	}
	if ss.isPendingDelete(e) || e.GetID() == 0 {
		return false
	}
	return ss.identity[model.KeyOf(e)] == e
}

func (ss *session) removeInsert(e model.Entity) bool {
	i := slices.Index(ss.inserts, e)
	if i < 0 {
		return false
	}
	ss.inserts = slices.Delete(ss.inserts, i, i+1)
	return true
}

func (ss *session) removeDelete(e model.Entity) bool {
	i := slices.Index(ss.deletes, e)
	if i < 0 {
		return false
	}
	ss.deletes = slices.Delete(ss.deletes, i, i+1)
	return true
}

// track registers e as the instance for its key and snapshots its record.
func (ss *session) track(e model.Entity) {
	key := model.KeyOf(e)
	ss.identity[key] = e
	ss.snapshots[key] = e.Record()
}

func (ss *session) forget(key model.Key) {
	delete(ss.identity, key)
	delete(ss.snapshots, key)
}

// merge returns the canonical instance for a freshly scanned entity. A
// known key keeps its existing pointer, refreshed with the row's values.
func (ss *session) merge(fresh model.Entity) model.Entity {
	key := model.KeyOf(fresh)
	existing, ok := ss.identity[key]
	if !ok {
		ss.track(fresh)
		return fresh
	}
	reflect.ValueOf(existing).Elem().Set(reflect.ValueOf(fresh).Elem())
	ss.snapshots[key] = existing.Record()
	return existing
}

// dirty returns the columns of e whose value differs from its snapshot.
func (ss *session) dirty(key model.Key, e model.Entity) map[string]any {
	snap := ss.snapshots[key]
	changed := map[string]any{}
	for col, v := range e.Record() {
		if col == "id" {
			continue
		}
		if old, ok := snap[col]; !ok || old != v {
			changed[col] = v
		}
	}
	return changed
}

// reset drops every pending change and the identity map. Entities inserted
// by the aborted transaction get their previous id back.
func (ss *session) reset() {
	for e, id := range ss.inserted {
		e.SetID(id)
	}
	ss.tx = nil
	ss.inserts = nil
	ss.deletes = nil
	ss.identity = make(map[model.Key]model.Entity)
	ss.snapshots = make(map[model.Key]map[string]any)
	ss.inserted = make(map[model.Entity]int64)
}

// begin starts the transaction if none is open. The transaction outlives
// the context of the call that happened to start it.
func (s *DBStorage) begin(ctx context.Context) (*sql.Tx, error) {
	ss := s.sess
	if ss.tx != nil {
		return ss.tx, nil
	}
	tx, err := s.db.DB.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, err
	}
	ss.tx = tx
	return tx, nil
}

// flush writes pending inserts, dirty updates and deletes into the open
// transaction, starting one if needed. Deleting a Property also deletes
// its images.
func (s *DBStorage) flush(ctx context.Context) error {
	ss := s.sess
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	for len(ss.inserts) > 0 {
		e := ss.inserts[0]
		if err := s.insert(ctx, tx, e); err != nil {
			return err
		}
		ss.inserts = ss.inserts[1:]
	}

	for key, e := range ss.identity {
		if ss.isPendingDelete(e) {
			continue
		}
		changed := ss.dirty(key, e)
		if len(changed) == 0 {
			continue
		}
		query, args, err := s.builder.Update(e.TableName()).
			SetMap(changed).
			Where(sq.Eq{"id": e.GetID()}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		ss.snapshots[key] = e.Record()
	}

	for len(ss.deletes) > 0 {
		e := ss.deletes[0]
		if err := s.remove(ctx, tx, e); err != nil {
			return err
		}
		ss.deletes = ss.deletes[1:]
	}

	return nil
}

func (s *DBStorage) insert(ctx context.Context, tx *sql.Tx, e model.Entity) error {
	query, args, err := s.builder.Insert(e.TableName()).
		SetMap(e.Record()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return err
	}
	if e.GetID() != 0 && s.db.Dialect.Name == database.Postgres.Name {
		if err := syncIdentity(ctx, tx, e.TableName(), id); err != nil {
			return err
		}
	}

	s.sess.inserted[e] = e.GetID()
	e.SetID(id)
	s.sess.track(e)
	return nil
}

// syncIdentity moves the postgres identity sequence of table past an
// explicitly inserted id. The sequence never moves backwards.
func syncIdentity(ctx context.Context, tx *sql.Tx, table string, id int64) error {
	const query = `SELECT setval(s.seq, GREATEST($2::bigint, nextval(s.seq)))
		FROM (SELECT pg_get_serial_sequence($1, 'id')::regclass AS seq) s`
	_, err := tx.ExecContext(ctx, query, table, id)
	return err
}

func (s *DBStorage) remove(ctx context.Context, tx *sql.Tx, e model.Entity) error {
	if p, ok := e.(*model.Property); ok {
		if err := s.deleteImages(ctx, tx, p.ID); err != nil {
			return err
		}
	}

	query, args, err := s.builder.Delete(e.TableName()).Where(sq.Eq{"id": e.GetID()}).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	s.sess.forget(model.KeyOf(e))
	return nil
}

func (s *DBStorage) deleteImages(ctx context.Context, tx *sql.Tx, propertyID int64) error {
	query, args, err := s.builder.Delete((*model.PropertyImage)(nil).TableName()).
		Where(sq.Eq{"property_id": propertyID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	for key, e := range s.sess.identity {
		if img, ok := e.(*model.PropertyImage); ok && img.PropertyID == propertyID {
			s.sess.forget(key)
		}
	}
	return nil
}
