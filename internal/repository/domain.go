package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/estate-storage/internal/filter"
	"github.com/deppfellow/estate-storage/internal/model"
	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetImages returns every image of the property.
func (s *DBStorage) GetImages(ctx context.Context, propertyID int64) ([]*model.PropertyImage, error) {
	return Find[*model.PropertyImage](ctx, s, filter.Spec{}.Where("property_id", filter.Equal, propertyID))
}

// GetImage returns the property's image of the given type, or nil.
func (s *DBStorage) GetImage(ctx context.Context, propertyID int64, imageType string) (*model.PropertyImage, error) {
	spec := filter.Spec{}.
		Where("property_id", filter.Equal, propertyID).
		Where("image_type", filter.Equal, imageType)
	return First[*model.PropertyImage](ctx, s, spec)
}

// GetCountries returns the distinct non-empty countries of all properties,
// sorted.
func (s *DBStorage) GetCountries(ctx context.Context) ([]string, error) {
	return s.distinctPropertyValues(ctx, "GetCountries", "country", nil)
}

// GetCities returns the distinct non-empty cities of properties in country,
// sorted.
func (s *DBStorage) GetCities(ctx context.Context, country string) ([]string, error) {
	return s.distinctPropertyValues(ctx, "GetCities", "city", sq.Eq{"country": country})
}

// GetAgents returns every agent.
func (s *DBStorage) GetAgents(ctx context.Context) ([]*model.Agent, error) {
	return Find[*model.Agent](ctx, s, filter.Spec{})
}

func (s *DBStorage) distinctPropertyValues(ctx context.Context, op, column string, where sq.Sqlizer) ([]string, error) {
	b := s.builder.Select(column).Distinct().
		From((*model.Property)(nil).TableName()).
		Where(sq.NotEq{column: ""}).
		OrderBy(column + " ASC")
	if where != nil {
		b = b.Where(where)
	}

	values := []string{}
	err := s.scanScalars(ctx, op, b, func(rows *sql.Rows) error {
		return sqlscan.ScanAll(&values, rows)
	})
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
