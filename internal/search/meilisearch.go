package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"realestate-hub/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

// SearchClient keeps the property index in Meilisearch in sync and queries it
type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey, index string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	if index == "" {
		index = "properties"
	}

	return &SearchClient{
		client: client,
		index:  index,
	}
}

// propertyDocument is the shape stored in the index
type propertyDocument struct {
	ID            string   `json:"id"`
	AgentID       string   `json:"agent_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	AreaSize      *float64 `json:"area_size,omitempty"`
	AreaUnit      string   `json:"area_unit"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Country       string   `json:"country"`
	Features      []string `json:"features"`
	Images        []string `json:"images"`
	CreatedAtUnix int64    `json:"created_at_unix"`
}

func toDocument(p *models.Property) propertyDocument {
	return propertyDocument{
		ID:            p.ID,
		AgentID:       p.AgentID,
		Title:         p.Title,
		Description:   p.Description,
		Type:          string(p.Type),
		Status:        string(p.Status),
		Price:         p.Price,
		Currency:      p.Currency,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		AreaSize:      p.AreaSize,
		AreaUnit:      p.AreaUnit,
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		Country:       p.Country,
		Features:      p.Features,
		Images:        p.Images,
		CreatedAtUnix: p.CreatedAt.Unix(),
	}
}

func (d propertyDocument) toProperty() models.Property {
	return models.Property{
		ID:          d.ID,
		AgentID:     d.AgentID,
		Title:       d.Title,
		Description: d.Description,
		Type:        models.PropertyType(d.Type),
		Status:      models.PropertyStatus(d.Status),
		Price:       d.Price,
		Currency:    d.Currency,
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		AreaSize:    d.AreaSize,
		AreaUnit:    d.AreaUnit,
		Address:     d.Address,
		City:        d.City,
		State:       d.State,
		Country:     d.Country,
		Features:    d.Features,
		Images:      d.Images,
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create index: %w", err)
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"address",
		"city",
		"state",
		"features",
	})
	if err != nil {
		return fmt.Errorf("failed to update searchable attributes: %w", err)
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"agent_id",
		"type",
		"status",
		"price",
		"bedrooms",
		"bathrooms",
		"city",
	})
	if err != nil {
		return fmt.Errorf("failed to update filterable attributes: %w", err)
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price",
		"created_at_unix",
	})
	if err != nil {
		return fmt.Errorf("failed to update sortable attributes: %w", err)
	}

	return nil
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	_, err := s.client.Index(s.index).AddDocuments([]propertyDocument{toDocument(property)})
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	docs := make([]propertyDocument, 0, len(properties))
	for i := range properties {
		docs = append(docs, toDocument(&properties[i]))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// DeleteProperties removes several properties from the index
func (s *SearchClient) DeleteProperties(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).DeleteDocuments(ids)
	return err
}

// SearchResult is one page of index hits
type SearchResult struct {
	Hits           []models.Property `json:"hits"`
	TotalHits      int64             `json:"total_hits"`
	ProcessingTime int64             `json:"processing_time_ms"`
}

// FilterSearch runs a typo-tolerant search constrained by the criteria
func (s *SearchClient) FilterSearch(c Criteria) (*SearchResult, error) {
	searchReq := &meilisearch.SearchRequest{
		Limit:  int64(c.PageLimit()),
		Offset: int64(c.Offset),
		Sort:   c.MeiliSort(),
	}
	if filter := c.MeiliFilter(); filter != "" {
		searchReq.Filter = filter
	}

	searchRes, err := s.client.Index(s.index).Search(c.MeiliQuery(), searchReq)
	if err != nil {
		return nil, err
	}

	properties := make([]models.Property, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		// Convert hit to JSON then to the document struct
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc propertyDocument
		if err := json.Unmarshal(hitJSON, &doc); err != nil {
			continue
		}
		properties = append(properties, doc.toProperty())
	}

	return &SearchResult{
		Hits:           properties,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}
