package contributions

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/pkg/query"
	"github.com/Mranger2024/plasticwatcha/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "contributions", "co").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("latitude", "Latitude").
	Project("longitude", "Longitude").
	Project("beach_name", "BeachName").
	Project("brand_suggestion", "BrandSuggestion").
	Project("plastic_type_suggestion", "PlasticTypeSuggestion").
	Project("notes", "Notes").
	Project("product_image_url", "ProductImageURL").
	Project("backside_image_url", "BacksideImageURL").
	Project("recycling_image_url", "RecyclingImageURL").
	Project("manufacturer_image_url", "ManufacturerImageURL").
	Join("public", "classifications", "cl", "LEFT JOIN", "co.id = cl.contribution_id").
	Project("brand", "VerifiedBrand").
	Project("confidence_level", "Confidence").
	Project("classified_at", "ClassifiedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for contribution queries.
// Nil fields are ignored. Status and UserID use exact matching; BeachName and
// PlasticType use case-insensitive contains matching.
type Filters struct {
	Status      *string    `json:"status,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	BeachName   *string    `json:"beach_name,omitempty"`
	PlasticType *string    `json:"plastic_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("UserID", f.UserID).
		WhereContains("BeachName", f.BeachName).
		WhereContains("PlasticTypeSuggestion", f.PlasticType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if u := values.Get("user_id"); u != "" {
		if id, err := uuid.Parse(u); err == nil {
			f.UserID = &id
		}
	}

	if b := values.Get("beach_name"); b != "" {
		f.BeachName = &b
	}

	if p := values.Get("plastic_type"); p != "" {
		f.PlasticType = &p
	}

	return f
}

func scanContribution(s repository.Scanner) (Contribution, error) {
	var c Contribution
	err := s.Scan(
		&c.ID,
		&c.UserID,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Latitude,
		&c.Longitude,
		&c.BeachName,
		&c.BrandSuggestion,
		&c.PlasticTypeSuggestion,
		&c.Notes,
		&c.ProductImageURL,
		&c.BacksideImageURL,
		&c.RecyclingImageURL,
		&c.ManufacturerImageURL,
		&c.VerifiedBrand,
		&c.Confidence,
		&c.ClassifiedAt,
	)
	return c, err
}
