package repository

import (
	"context"
	"database/sql"

	"github.com/deppfellow/estate-storage/internal/filter"
	"github.com/deppfellow/estate-storage/internal/model"
	"github.com/georgysavva/scany/v2/sqlscan"
)

// PropertyQuery is a lazy property search. Nothing runs until one of its
// methods is called, and it can be run any number of times.
type PropertyQuery struct {
	s    *DBStorage
	spec filter.Spec
}

// Properties returns the search for properties matching f, paginated by
// limit and offset (zero limit means unlimited). Results are ordered by id.
func (s *DBStorage) Properties(f filter.PropertyFilter, limit, offset int) *PropertyQuery {
	return &PropertyQuery{s: s, spec: f.Spec().Page(limit, offset)}
}

// All runs the search.
func (q *PropertyQuery) All(ctx context.Context) ([]*model.Property, error) {
	return Find[*model.Property](ctx, q.s, q.spec)
}

// Each runs the search and calls fn for each property in order, stopping
// at the first error fn returns.
func (q *PropertyQuery) Each(ctx context.Context, fn func(*model.Property) error) error {
	items, err := q.All(ctx)
	if err != nil {
		return err
	}
	for _, p := range items {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of properties on this page, computed in the
// database without loading rows.
func (q *PropertyQuery) Count(ctx context.Context) (int, error) {
	if q.spec.Limit == 0 && q.spec.Offset == 0 {
		return q.Total(ctx)
	}

	c, err := q.s.lookup("PropertyQuery.Count", (*model.Property)(nil).ClassName())
	if err != nil {
		return 0, err
	}
	page, err := q.spec.Apply(c, q.s.builder.Select("id").From(c.Table))
	if err != nil {
		return 0, q.s.fail("PropertyQuery.Count", err)
	}
	return q.s.count(ctx, "PropertyQuery.Count", q.s.builder.Select("COUNT(*)").FromSelect(page, "page"))
}

// Total returns the number of matching properties ignoring pagination.
func (q *PropertyQuery) Total(ctx context.Context) (int, error) {
	return q.s.Count(ctx, (*model.Property)(nil).ClassName(), q.spec)
}

// CountProperties returns the number of properties matching f.
func (s *DBStorage) CountProperties(ctx context.Context, f filter.PropertyFilter) (int, error) {
	return s.Properties(f, 0, 0).Total(ctx)
}

// GetPropertyByID returns the property with id, or nil.
func (s *DBStorage) GetPropertyByID(ctx context.Context, id int64) (*model.Property, error) {
	return First[*model.Property](ctx, s, filter.Spec{}.Where("id", filter.Equal, id))
}

// GetPropertiesByUserID returns the properties owned by userID, narrowed
// to listingType when it is not empty.
func (s *DBStorage) GetPropertiesByUserID(ctx context.Context, userID int64, listingType string) ([]*model.Property, error) {
	spec := filter.Spec{}.Where("user_id", filter.Equal, userID)
	if listingType != "" {
		spec = spec.Where("listing_type", filter.Equal, listingType)
	}
	return Find[*model.Property](ctx, s, spec)
}

// DeletePropertyByID deletes the property and all of its images in one
// commit, along with any other pending change. A missing id is a no-op.
// On failure the session is rolled back.
func (s *DBStorage) DeletePropertyByID(ctx context.Context, id int64) error {
	p, err := s.GetPropertyByID(ctx, id)
	if err != nil || p == nil {
		return err
	}
	if err := s.Delete(p); err != nil {
		return err
	}
	if err := s.Save(ctx); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Int64("property_id", id).Msg("rollback after failed delete")
		}
		return err
	}
	return nil
}

// WishlistForUser returns the ids of the properties userID wishlisted, in
// the order they were added. Empty, not nil, when there are none.
func (s *DBStorage) WishlistForUser(ctx context.Context, userID int64) ([]int64, error) {
	table := (*model.Wishlist)(nil).TableName()
	b := s.builder.Select("property_id").From(table).
		Where(filter.Condition{Field: "user_id", Op: filter.Equal, Value: userID}.Sqlizer()).
		OrderBy("id ASC")

	ids := []int64{}
	err := s.scanScalars(ctx, "WishlistForUser", b, func(rows *sql.Rows) error {
		return sqlscan.ScanAll(&ids, rows)
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
