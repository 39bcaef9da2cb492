// Package repository handles all interactions with the database.
//
// DBStorage is the storage facade: one unit of work (session) over a
// *sql.DB, CRUD primitives, a generic filtered query built from
// filter.Spec, and the domain queries of the listing application (property
// search, images, locations, wishlists, agents). Every domain query is a
// filter.Spec run through the same query path as GetObjects.
//
// A DBStorage is not safe for concurrent use. Callers needing concurrency
// create one DBStorage per goroutine over a shared *database.Database.
package repository

import (
	"context"

	"github.com/deppfellow/estate-storage/internal/filter"
	"github.com/deppfellow/estate-storage/internal/model"
)

// Storage is the facade's behaviour, for callers that want to depend on an
// interface rather than *DBStorage.
type Storage interface {
	New(e model.Entity) error
	Contains(e model.Entity) bool
	Save(ctx context.Context) error
	Delete(e model.Entity) error
	Rollback() error
	Reload(ctx context.Context) error
	Close() error

	All(ctx context.Context, class string) (map[model.Key]model.Entity, error)
	GetObject(ctx context.Context, class string, spec filter.Spec) (model.Entity, error)
	GetObjects(ctx context.Context, class string, spec filter.Spec) ([]model.Entity, error)
	Count(ctx context.Context, class string, spec filter.Spec) (int, error)

	Properties(f filter.PropertyFilter, limit, offset int) *PropertyQuery
	CountProperties(ctx context.Context, f filter.PropertyFilter) (int, error)
	GetPropertyByID(ctx context.Context, id int64) (*model.Property, error)
	GetPropertiesByUserID(ctx context.Context, userID int64, listingType string) ([]*model.Property, error)
	DeletePropertyByID(ctx context.Context, id int64) error

	GetImages(ctx context.Context, propertyID int64) ([]*model.PropertyImage, error)
	GetImage(ctx context.Context, propertyID int64, imageType string) (*model.PropertyImage, error)
	GetCountries(ctx context.Context) ([]string, error)
	GetCities(ctx context.Context, country string) ([]string, error)
	WishlistForUser(ctx context.Context, userID int64) ([]int64, error)
	GetAgents(ctx context.Context) ([]*model.Agent, error)
}

var _ Storage = (*DBStorage)(nil)
