package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/estate-storage/internal/filter"
	"github.com/deppfellow/estate-storage/internal/model"
	"github.com/georgysavva/scany/v2/sqlscan"
)

// All returns every persisted instance of class keyed by model.Key, or of
// every registered class when class is "". Pending changes are flushed
// first so the result is the session's view.
func (s *DBStorage) All(ctx context.Context, class string) (map[model.Key]model.Entity, error) {
	if err := s.checkOpen("All"); err != nil {
		return nil, err
	}

	classes := model.Classes()
	if class != "" {
		c, err := model.Lookup(class)
		if err != nil {
			return nil, s.fail("All", err)
		}
		classes = []*model.Class{c}
	}

	out := make(map[model.Key]model.Entity)
	for _, c := range classes {
		items, err := s.find(ctx, "All", c, filter.Spec{})
		if err != nil {
			return nil, err
		}
		for _, e := range items {
			out[model.KeyOf(e)] = e
		}
	}
	return out, nil
}

// GetObject returns the first instance of class matching spec, in spec's
// order, or nil when nothing matches. spec.Limit is ignored.
func (s *DBStorage) GetObject(ctx context.Context, class string, spec filter.Spec) (model.Entity, error) {
	c, err := s.lookup("GetObject", class)
	if err != nil {
		return nil, err
	}
	spec.Limit = 1
	items, err := s.find(ctx, "GetObject", c, spec)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

// GetObjects returns every instance of class matching spec, ordered and
// paginated as spec says. The slice is empty, not nil, when nothing matches.
func (s *DBStorage) GetObjects(ctx context.Context, class string, spec filter.Spec) ([]model.Entity, error) {
	c, err := s.lookup("GetObjects", class)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, "GetObjects", c, spec)
}

// Count returns how many instances of class match spec's conditions.
// Ordering and pagination are ignored.
func (s *DBStorage) Count(ctx context.Context, class string, spec filter.Spec) (int, error) {
	c, err := s.lookup("Count", class)
	if err != nil {
		return 0, err
	}
	b, err := spec.ApplyWhere(c, s.builder.Select("COUNT(*)").From(c.Table))
	if err != nil {
		return 0, s.fail("Count", err)
	}
	return s.count(ctx, "Count", b)
}

// First is GetObject for a concrete entity type.
//
//	p, err := repository.First[*model.Property](ctx, store, spec)
func First[E model.Entity](ctx context.Context, s *DBStorage, spec filter.Spec) (E, error) {
	var zero E
	e, err := s.GetObject(ctx, zero.ClassName(), spec)
	if err != nil || e == nil {
		return zero, err
	}
	return e.(E), nil
}

// Find is GetObjects for a concrete entity type.
func Find[E model.Entity](ctx context.Context, s *DBStorage, spec filter.Spec) ([]E, error) {
	var zero E
	items, err := s.GetObjects(ctx, zero.ClassName(), spec)
	if err != nil {
		return nil, err
	}
	out := make([]E, len(items))
	for i, e := range items {
		out[i] = e.(E)
	}
	return out, nil
}

func (s *DBStorage) lookup(op, class string) (*model.Class, error) {
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	c, err := model.Lookup(class)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return c, nil
}

// find runs spec against c inside the session and returns the canonical
// instances for the rows.
func (s *DBStorage) find(ctx context.Context, op string, c *model.Class, spec filter.Spec) ([]model.Entity, error) {
	b, err := spec.Apply(c, s.builder.Select(c.Columns...).From(c.Table))
	if err != nil {
		return nil, s.fail(op, err)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, s.fail(op, err)
	}

	if err := s.flush(ctx); err != nil {
		return nil, s.failCtx(ctx, op, err)
	}

	start := time.Now()
	rows, err := s.sess.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.failCtx(ctx, op, err)
	}
	items, err := c.ScanAll(rows)
	if err != nil {
		return nil, s.failCtx(ctx, op, err)
	}
	s.logQuery(op, c.Name, len(items), start)

	for i, e := range items {
		items[i] = s.sess.merge(e)
	}
	return items, nil
}

// count runs a single-value COUNT query inside the session.
func (s *DBStorage) count(ctx context.Context, op string, b sq.SelectBuilder) (int, error) {
	var n int
	if err := s.scanScalars(ctx, op, b, func(rows *sql.Rows) error {
		return sqlscan.ScanOne(&n, rows)
	}); err != nil {
		return 0, err
	}
	return n, nil
}

// scanScalars flushes, runs b and hands the rows to scan.
func (s *DBStorage) scanScalars(ctx context.Context, op string, b sq.SelectBuilder, scan func(rows *sql.Rows) error) error {
	if err := s.checkOpen(op); err != nil {
		return err
	}

	query, args, err := b.ToSql()
	if err != nil {
		return s.fail(op, err)
	}
	if err := s.flush(ctx); err != nil {
		return s.failCtx(ctx, op, err)
	}

	start := time.Now()
	rows, err := s.sess.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return s.failCtx(ctx, op, err)
	}
	if err := scan(rows); err != nil {
		return s.failCtx(ctx, op, err)
	}
	s.logQuery(op, "", -1, start)
	return nil
}

func (s *DBStorage) logQuery(op, class string, rows int, start time.Time) {
	elapsed := time.Since(start)
	event := s.log.Debug()
	if s.slowQuery > 0 && elapsed > s.slowQuery {
		event = s.log.Warn().Bool("slow", true)
	}
	if class != "" {
		event = event.Str("class", class)
	}
	if rows >= 0 {
		event = event.Int("rows", rows)
	}
	event.Str("op", op).Dur("elapsed", elapsed).Msg("query executed")
}
