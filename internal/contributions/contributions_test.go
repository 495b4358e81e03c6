package contributions_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/internal/contributions"
)

func validSubmit() contributions.SubmitCommand {
	return contributions.SubmitCommand{
		UserID:                uuid.New(),
		Latitude:              54.18,
		Longitude:             7.88,
		BrandSuggestion:       "Coca-Cola",
		PlasticTypeSuggestion: "PET",
		ProductImage: contributions.ImagePayload{
			Data:        []byte("jpeg bytes"),
			Filename:    "bottle.jpg",
			ContentType: "image/jpeg",
		},
	}
}

func TestSubmitCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*contributions.SubmitCommand)
		wantErr error
	}{
		{"valid", func(c *contributions.SubmitCommand) {}, nil},
		{"missing user", func(c *contributions.SubmitCommand) {
			c.UserID = uuid.Nil
		}, contributions.ErrInvalidSubmission},
		{"missing product image", func(c *contributions.SubmitCommand) {
			c.ProductImage = contributions.ImagePayload{}
		}, contributions.ErrMissingProductImage},
		{"latitude too low", func(c *contributions.SubmitCommand) {
			c.Latitude = -90.5
		}, contributions.ErrInvalidLocation},
		{"latitude too high", func(c *contributions.SubmitCommand) {
			c.Latitude = 91
		}, contributions.ErrInvalidLocation},
		{"longitude too low", func(c *contributions.SubmitCommand) {
			c.Longitude = -180.1
		}, contributions.ErrInvalidLocation},
		{"longitude too high", func(c *contributions.SubmitCommand) {
			c.Longitude = 181
		}, contributions.ErrInvalidLocation},
		{"boundary coordinates accepted", func(c *contributions.SubmitCommand) {
			c.Latitude = -90
			c.Longitude = 180
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validSubmit()
			tt.mutate(&cmd)

			err := cmd.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	valid := []contributions.Status{
		contributions.StatusPending,
		contributions.StatusClassified,
		contributions.StatusRejected,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false, want true", s)
		}
	}

	for _, s := range []contributions.Status{"", "archived", "PENDING"} {
		if s.Valid() {
			t.Errorf("Status(%q).Valid() = true, want false", s)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", contributions.ErrNotFound, http.StatusNotFound},
		{"duplicate", contributions.ErrDuplicate, http.StatusConflict},
		{"not editable", contributions.ErrNotEditable, http.StatusConflict},
		{"invalid submission", contributions.ErrInvalidSubmission, http.StatusBadRequest},
		{"missing product image", contributions.ErrMissingProductImage, http.StatusBadRequest},
		{"invalid location", contributions.ErrInvalidLocation, http.StatusBadRequest},
		{"file too large", contributions.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", contributions.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contributions.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		userID := uuid.New()
		values := url.Values{
			"status":       {"classified"},
			"user_id":      {userID.String()},
			"beach_name":   {"Helgoland"},
			"plastic_type": {"PET"},
		}

		f := contributions.FiltersFromQuery(values)

		if f.Status == nil || *f.Status != "classified" {
			t.Errorf("Status = %v, want classified", f.Status)
		}
		if f.UserID == nil || *f.UserID != userID {
			t.Errorf("UserID = %v, want %v", f.UserID, userID)
		}
		if f.BeachName == nil || *f.BeachName != "Helgoland" {
			t.Errorf("BeachName = %v, want Helgoland", f.BeachName)
		}
		if f.PlasticType == nil || *f.PlasticType != "PET" {
			t.Errorf("PlasticType = %v, want PET", f.PlasticType)
		}
	})

	t.Run("empty query yields no filters", func(t *testing.T) {
		f := contributions.FiltersFromQuery(url.Values{})

		if f.Status != nil || f.UserID != nil || f.BeachName != nil || f.PlasticType != nil {
			t.Errorf("FiltersFromQuery(empty) = %+v, want all nil", f)
		}
	})

	t.Run("malformed user_id ignored", func(t *testing.T) {
		f := contributions.FiltersFromQuery(url.Values{"user_id": {"not-a-uuid"}})
		if f.UserID != nil {
			t.Errorf("UserID = %v, want nil", f.UserID)
		}
	})
}
