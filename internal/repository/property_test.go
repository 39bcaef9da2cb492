package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/estate-storage/internal/filter"
	"github.com/deppfellow/estate-storage/internal/model"
	"github.com/deppfellow/estate-storage/internal/testing/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_PriceRange(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)

	cheap := &model.Property{Name: "p1", PropertyType: "Type1", Country: "Country1", Price: 100}
	pricey := &model.Property{Name: "p2", PropertyType: "Type1", Country: "Country1", Price: 200}
	tdb.MustSave(cheap, pricey)

	f, err := filter.NewPropertyFilter(map[string]any{
		"property_type": "Type1",
		"country":       "Country1",
		"max_price":     150,
		"min_price":     50,
		"unknown_key":   "ignored",
	})
	require.NoError(t, err)

	q := tdb.Storage.Properties(f, 10, 0)
	got, err := q.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, cheap, got[0])

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = tdb.Storage.CountProperties(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProperties_InclusiveBounds(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)
	tdb.MustSave(
		&model.Property{Price: 50},
		&model.Property{Price: 100},
		&model.Property{Price: 150},
		&model.Property{Price: 151},
	)

	n, err := tdb.Storage.CountProperties(ctx, filter.PropertyFilter{
		MinPrice: filter.Price(50),
		MaxPrice: filter.Price(150),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = tdb.Storage.CountProperties(ctx, filter.PropertyFilter{MinPrice: filter.Price(150)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProperties_LocationAndListing(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)
	tdb.MustSave(
		&model.Property{Name: "a", Country: "Kenya", City: "Nairobi", ListingType: "sale"},
		&model.Property{Name: "b", Country: "Kenya", City: "Mombasa", ListingType: "rent"},
		&model.Property{Name: "c", Country: "Ghana", City: "Accra", ListingType: "sale"},
	)

	got, err := tdb.Storage.Properties(filter.PropertyFilter{Country: "Kenya", ListingType: "sale"}, 10, 0).All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)

	got, err = tdb.Storage.Properties(filter.PropertyFilter{City: "Accra"}, 10, 0).All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Name)
}

func TestPropertyQuery_PaginationAndReuse(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)
	for i := 0; i < 5; i++ {
		tdb.MustSave(&model.Property{PropertyType: "Type1", Price: float64(100 + i)})
	}
	f := filter.PropertyFilter{PropertyType: "Type1"}

	page := tdb.Storage.Properties(f, 2, 0)
	n, err := page.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := page.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	last := tdb.Storage.Properties(f, 2, 4)
	n, err = last.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	first, err := page.All(ctx)
	require.NoError(t, err)
	again, err := page.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again, "the query is re-iterable")
	assert.Equal(t, 100.0, first[0].Price)
	assert.Equal(t, 101.0, first[1].Price)

	// New rows show up on the next run of the same query.
	tdb.MustSave(&model.Property{PropertyType: "Type1", Price: 1})
	total, err = page.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
}

func TestPropertyQuery_Each(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)
	tdb.MustSave(&model.Property{Name: "a"}, &model.Property{Name: "b"}, &model.Property{Name: "c"})

	var seen []string
	err := tdb.Storage.Properties(filter.PropertyFilter{}, 0, 0).Each(ctx, func(p *model.Property) error {
		seen = append(seen, p.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	stop := errors.New("stop")
	seen = nil
	err = tdb.Storage.Properties(filter.PropertyFilter{}, 0, 0).Each(ctx, func(p *model.Property) error {
		seen = append(seen, p.Name)
		if p.Name == "b" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestGetImages(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)
	tdb.MustSave(
		&model.PropertyImage{PropertyID: 1, ImageType: "cover", ImageURL: "http://img/1"},
		&model.PropertyImage{PropertyID: 1, ImageType: "gallery", ImageURL: "http://img/2"},
		&model.PropertyImage{PropertyID: 2, ImageType: "cover", ImageURL: "http://img/3"},
	)

	images, err := tdb.Storage.GetImages(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	img, err := tdb.Storage.GetImage(ctx, 1, "gallery")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "http://img/2", img.ImageURL)

	img, err = tdb.Storage.GetImage(ctx, 1, "floorplan")
	require.NoError(t, err)
	assert.Nil(t, img)

	images, err = tdb.Storage.GetImages(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestGetCountriesAndCities(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)

	countries, err := tdb.Storage.GetCountries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, countries)
	assert.Empty(t, countries)

	cities, err := tdb.Storage.GetCities(ctx, "Kenya")
	require.NoError(t, err)
	assert.NotNil(t, cities)
	assert.Empty(t, cities)

	tdb.MustSave(
		&model.Property{Country: "Kenya", City: "Nairobi"},
		&model.Property{Country: "Kenya", City: "Nairobi"},
		&model.Property{Country: "Kenya", City: "Mombasa"},
		&model.Property{Country: "Ghana", City: "Accra"},
		&model.Property{Country: "Ghana", City: "Nairobi West"},
		&model.Property{},
	)

	countries, err = tdb.Storage.GetCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghana", "Kenya"}, countries)

	cities, err = tdb.Storage.GetCities(ctx, "Kenya")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mombasa", "Nairobi"}, cities)

	cities, err = tdb.Storage.GetCities(ctx, "Ghana")
	require.NoError(t, err)
	assert.Equal(t, []string{"Accra", "Nairobi West"}, cities)
}

func TestGetPropertyByID(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)
	prop := &model.Property{Name: "House"}
	tdb.MustSave(prop)

	got, err := tdb.Storage.GetPropertyByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Same(t, prop, got)

	got, err = tdb.Storage.GetPropertyByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetPropertiesByUserID(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)
	tdb.MustSave(
		&model.Property{UserID: 1, Name: "a", ListingType: "sale"},
		&model.Property{UserID: 1, Name: "b", ListingType: "rent"},
		&model.Property{UserID: 2, Name: "c", ListingType: "sale"},
	)

	props, err := tdb.Storage.GetPropertiesByUserID(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, props, 2)

	props, err = tdb.Storage.GetPropertiesByUserID(ctx, 1, "rent")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "b", props[0].Name)

	props, err = tdb.Storage.GetPropertiesByUserID(ctx, 999, "")
	require.NoError(t, err)
	assert.NotNil(t, props)
	assert.Empty(t, props)
}

func TestDeletePropertyByID(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.NewFile(t)
	store := tdb.Storage

	prop := &model.Property{Name: "House"}
	other := &model.Property{Name: "Flat"}
	tdb.MustSave(prop, other)
	tdb.MustSave(
		&model.PropertyImage{PropertyID: prop.ID, ImageType: "cover"},
		&model.PropertyImage{PropertyID: prop.ID, ImageType: "gallery"},
		&model.PropertyImage{PropertyID: prop.ID, ImageType: "floorplan"},
		&model.PropertyImage{PropertyID: other.ID, ImageType: "cover"},
	)

	require.NoError(t, store.DeletePropertyByID(ctx, prop.ID))

	// The delete is committed: a second session sees it.
	reader := tdb.NewStorage()
	got, err := reader.GetPropertyByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	images, err := reader.GetImages(ctx, prop.ID)
	require.NoError(t, err)
	assert.Empty(t, images)

	images, err = reader.GetImages(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, images, 1)
	require.NoError(t, reader.Rollback())

	require.NoError(t, store.DeletePropertyByID(ctx, 999), "missing id is a no-op")
	n, err := store.CountProperties(ctx, filter.PropertyFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWishlistForUser(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)

	ids, err := tdb.Storage.WishlistForUser(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	tdb.MustSave(
		&model.Wishlist{UserID: 1, PropertyID: 1},
		&model.Wishlist{UserID: 2, PropertyID: 3},
		&model.Wishlist{UserID: 1, PropertyID: 2},
	)

	ids, err = tdb.Storage.WishlistForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	ids, err = tdb.Storage.WishlistForUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

func TestGetAgents(t *testing.T) {
	ctx := context.Background()
	tdb := testdb.New(t)

	agents, err := tdb.Storage.GetAgents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, agents)
	assert.Empty(t, agents)

	tdb.MustSave(&model.Agent{Name: "Agent1"}, &model.Agent{Name: "Agent2"})

	agents, err = tdb.Storage.GetAgents(ctx)
	require.NoError(t, err)
	got := make([]string, len(agents))
	for i, a := range agents {
		got[i] = a.Name
	}
	assert.ElementsMatch(t, []string{"Agent1", "Agent2"}, got)
}
