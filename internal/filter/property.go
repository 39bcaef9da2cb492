package filter

import (
	"github.com/deppfellow/estate-storage/internal/errs"
	"github.com/spf13/cast"
)

// PropertyFilter holds the property search terms. Empty strings and nil
// prices are ignored; the price range is inclusive on both ends.
type PropertyFilter struct {
	PropertyType string
	Country      string
	City         string
	ListingType  string
	MinPrice     *float64
	MaxPrice     *float64
}

// NewPropertyFilter reads the recognised search keys from a loosely typed
// map (property_type, country, city, listing_type, min_price, max_price).
// Other keys are ignored. A price that cannot be read as a number is a
// validation error.
func NewPropertyFilter(values map[string]any) (PropertyFilter, error) {
	var f PropertyFilter
	var fieldErrors []errs.FieldError

	for key, dst := range map[string]*string{
		"property_type": &f.PropertyType,
		"country":       &f.Country,
		"city":          &f.City,
		"listing_type":  &f.ListingType,
	} {
		v, ok := values[key]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: key, Error: "must be a string"})
			continue
		}
		*dst = s
	}

	for key, dst := range map[string]**float64{
		"min_price": &f.MinPrice,
		"max_price": &f.MaxPrice,
	} {
		v, ok := values[key]
		if !ok || v == nil {
			continue
		}
		price, err := cast.ToFloat64E(v)
		if err != nil {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: key, Error: "must be a number"})
			continue
		}
		*dst = &price
	}

	if len(fieldErrors) > 0 {
		return PropertyFilter{}, errs.NewValidationError("PropertyFilter", fieldErrors)
	}
	return f, nil
}

// Spec translates the filter into conditions on the Property class.
func (f PropertyFilter) Spec() Spec {
	var s Spec
	if f.PropertyType != "" {
		s = s.Where("property_type", Equal, f.PropertyType)
	}
	if f.Country != "" {
		s = s.Where("country", Equal, f.Country)
	}
	if f.City != "" {
		s = s.Where("city", Equal, f.City)
	}
	if f.ListingType != "" {
		s = s.Where("listing_type", Equal, f.ListingType)
	}
	if f.MinPrice != nil {
		s = s.Where("price", GreaterOrEqual, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		s = s.Where("price", LessOrEqual, *f.MaxPrice)
	}
	return s
}

// Price returns a pointer to v, for building a PropertyFilter inline.
func Price(v float64) *float64 {
	return &v
}
