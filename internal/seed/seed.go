// Package seed loads sample listings from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"

	"realestate-hub/internal/forms"
	"realestate-hub/internal/models"

	"gopkg.in/yaml.v3"
)

// Entry is one listing in the seed file
type Entry struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Type        string   `yaml:"type"`
	Status      string   `yaml:"status"`
	Price       float64  `yaml:"price"`
	Currency    string   `yaml:"currency"`
	Bedrooms    *int     `yaml:"bedrooms"`
	Bathrooms   *float64 `yaml:"bathrooms"`
	Area        float64  `yaml:"area"`
	Address     string   `yaml:"address"`
	City        string   `yaml:"city"`
	State       string   `yaml:"state"`
	PostalCode  string   `yaml:"postal_code"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`
	Features    []string `yaml:"features"`
	Images      []string `yaml:"images"`
}

// File is the seed file layout
type File struct {
	Properties []Entry `yaml:"properties"`
}

// Store inserts listings
type Store interface {
	CreateProperty(ctx context.Context, p *models.Property) error
}

// LoadFile reads and parses a seed file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes seed YAML and validates every entry as a property form
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, e := range f.Properties {
		if err := forms.Validate(e.form()); err != nil {
			return nil, fmt.Errorf("seed entry %d (%q): %w", i, e.Title, err)
		}
	}
	return &f, nil
}

func (e Entry) form() forms.PropertyForm {
	price, area := e.Price, e.Area
	return forms.PropertyForm{
		Title:       e.Title,
		Description: e.Description,
		Type:        e.Type,
		Status:      e.Status,
		Price:       &price,
		Currency:    e.Currency,
		Bedrooms:    e.Bedrooms,
		Bathrooms:   e.Bathrooms,
		AreaSize:    &area,
		Address:     e.Address,
		City:        e.City,
		State:       e.State,
		PostalCode:  e.PostalCode,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		Features:    e.Features,
		Images:      e.Images,
	}
}

// Apply inserts every entry as a listing of agentID and returns the created rows
func (f *File) Apply(ctx context.Context, store Store, agentID string) ([]models.Property, error) {
	created := make([]models.Property, 0, len(f.Properties))
	for _, e := range f.Properties {
		p := e.form().ToModel(agentID)
		if err := store.CreateProperty(ctx, p); err != nil {
			return created, fmt.Errorf("failed to insert %q: %w", e.Title, err)
		}
		created = append(created, *p)
	}
	return created, nil
}
