// Package search composes property listing queries from user-supplied criteria.
//
// The same Criteria value drives the relational query used by the listing
// endpoints and the filter expression sent to the Meilisearch index.
package search

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"realestate-hub/internal/models"

	"gorm.io/gorm"
)

// Sort orders accepted by the listing endpoints
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// CountFilter constrains an integer-like attribute such as bedrooms.
// AtLeast is set for the "N+" form.
type CountFilter struct {
	Value   float64
	AtLeast bool
}

// Criteria is a set of optional property filters. Zero values mean "no constraint".
type Criteria struct {
	Type      models.PropertyType
	Status    models.PropertyStatus
	MinPrice  *float64
	MaxPrice  *float64
	Bedrooms  *CountFilter
	Bathrooms *CountFilter
	Query     string // free text over title, description, address and city
	Location  string // address or city
	AgentID   string
	Sort      string
	Limit     int
	Offset    int
}

// ParseCriteria reads criteria from query parameters. Unknown enum values,
// unparsable numbers and empty strings are ignored rather than rejected.
func ParseCriteria(v url.Values) Criteria {
	c := Criteria{
		Query:    strings.TrimSpace(v.Get("q")),
		Location: strings.TrimSpace(v.Get("location")),
		AgentID:  strings.TrimSpace(v.Get("agent_id")),
	}

	if t := models.PropertyType(strings.ToLower(v.Get("type"))); t.Valid() {
		c.Type = t
	}
	if s := models.PropertyStatus(strings.ToLower(v.Get("status"))); s.Valid() {
		c.Status = s
	}

	c.MinPrice = parsePrice(v.Get("min_price"))
	c.MaxPrice = parsePrice(v.Get("max_price"))
	c.Bedrooms = parseCount(v.Get("bedrooms"))
	c.Bathrooms = parseCount(v.Get("bathrooms"))

	switch sort := v.Get("sort"); sort {
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc:
		c.Sort = sort
	default:
		c.Sort = SortNewest
	}

	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		c.Limit = n
	}
	if n, err := strconv.Atoi(v.Get("offset")); err == nil && n > 0 {
		c.Offset = n
	}
	return c
}

func parsePrice(raw string) *float64 {
	f, ok := parseAmount(strings.TrimSpace(raw))
	if !ok {
		return nil
	}
	return &f
}

// parseCount reads "3" as exactly three and "3+" as three or more. A bare
// "+" in a query string decodes to a space, so "3 " is also at-least.
func parseCount(raw string) *CountFilter {
	trimmed := strings.TrimSpace(raw)
	atLeast := strings.HasSuffix(trimmed, "+") || (trimmed != "" && strings.HasSuffix(raw, " "))
	f, ok := parseAmount(strings.TrimSpace(strings.TrimSuffix(trimmed, "+")))
	if !ok {
		return nil
	}
	return &CountFilter{Value: f, AtLeast: atLeast}
}

// parseAmount accepts finite, non-negative numbers only
func parseAmount(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// Impossible reports whether the criteria can never match, e.g. min price above max price.
func (c Criteria) Impossible() bool {
	return c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice
}

// Apply adds one WHERE predicate per present criterion. Soft-deleted rows are
// excluded by gorm itself.
func (c Criteria) Apply(db *gorm.DB) *gorm.DB {
	if c.Impossible() {
		return db.Where("1 = 0")
	}
	if c.Type != "" {
		db = db.Where("properties.type = ?", c.Type)
	}
	if c.Status != "" {
		db = db.Where("properties.status = ?", c.Status)
	}
	if c.MinPrice != nil {
		db = db.Where("properties.price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		db = db.Where("properties.price <= ?", *c.MaxPrice)
	}
	if c.Bedrooms != nil {
		db = db.Where("properties.bedrooms "+c.Bedrooms.op()+" ?", c.Bedrooms.Value)
	}
	if c.Bathrooms != nil {
		db = db.Where("properties.bathrooms "+c.Bathrooms.op()+" ?", c.Bathrooms.Value)
	}
	if c.AgentID != "" {
		db = db.Where("properties.agent_id = ?", c.AgentID)
	}
	if c.Query != "" {
		p := likePattern(c.Query)
		db = db.Where("(LOWER(properties.title) LIKE ? ESCAPE '!' OR LOWER(properties.description) LIKE ? ESCAPE '!'"+
			" OR LOWER(properties.address) LIKE ? ESCAPE '!' OR LOWER(properties.city) LIKE ? ESCAPE '!')", p, p, p, p)
	}
	if c.Location != "" {
		p := likePattern(c.Location)
		db = db.Where("(LOWER(properties.address) LIKE ? ESCAPE '!' OR LOWER(properties.city) LIKE ? ESCAPE '!')", p, p)
	}
	return db
}

// ApplyOrder sets the result ordering; newest first unless Sort says otherwise.
func (c Criteria) ApplyOrder(db *gorm.DB) *gorm.DB {
	switch c.Sort {
	case SortOldest:
		return db.Order("properties.created_at ASC").Order("properties.id ASC")
	case SortPriceAsc:
		return db.Order("properties.price ASC").Order("properties.created_at DESC")
	case SortPriceDesc:
		return db.Order("properties.price DESC").Order("properties.created_at DESC")
	default:
		return db.Order("properties.created_at DESC").Order("properties.id DESC")
	}
}

// ApplyPage applies limit and offset, clamping the limit to MaxLimit.
func (c Criteria) ApplyPage(db *gorm.DB) *gorm.DB {
	return db.Limit(c.PageLimit()).Offset(c.Offset)
}

func (c Criteria) PageLimit() int {
	switch {
	case c.Limit <= 0:
		return DefaultLimit
	case c.Limit > MaxLimit:
		return MaxLimit
	default:
		return c.Limit
	}
}

func (f CountFilter) op() string {
	if f.AtLeast {
		return ">="
	}
	return "="
}

// likePattern lowercases s and wraps it for a substring LIKE match using '!' as escape.
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
	return "%" + s + "%"
}

// MeiliFilter translates the criteria into a Meilisearch filter expression.
// Free text is not part of the filter; it is passed as the search query.
func (c Criteria) MeiliFilter() string {
	var filters []string
	if c.Impossible() {
		// Meilisearch has no literal false; an id can never be both values.
		return `id = "" AND id != ""`
	}
	if c.Type != "" {
		filters = append(filters, fmt.Sprintf("type = %q", c.Type))
	}
	if c.Status != "" {
		filters = append(filters, fmt.Sprintf("status = %q", c.Status))
	}
	if c.MinPrice != nil {
		filters = append(filters, "price >= "+formatNumber(*c.MinPrice))
	}
	if c.MaxPrice != nil {
		filters = append(filters, "price <= "+formatNumber(*c.MaxPrice))
	}
	if c.Bedrooms != nil {
		filters = append(filters, "bedrooms "+c.Bedrooms.op()+" "+formatNumber(c.Bedrooms.Value))
	}
	if c.Bathrooms != nil {
		filters = append(filters, "bathrooms "+c.Bathrooms.op()+" "+formatNumber(c.Bathrooms.Value))
	}
	if c.AgentID != "" {
		filters = append(filters, fmt.Sprintf("agent_id = %q", c.AgentID))
	}
	return strings.Join(filters, " AND ")
}

// MeiliQuery is the text handed to the index: free text plus location.
func (c Criteria) MeiliQuery() string {
	return strings.TrimSpace(c.Query + " " + c.Location)
}

// MeiliSort maps Sort onto the index's sortable attributes.
func (c Criteria) MeiliSort() []string {
	switch c.Sort {
	case SortOldest:
		return []string{"created_at_unix:asc"}
	case SortPriceAsc:
		return []string{"price:asc"}
	case SortPriceDesc:
		return []string{"price:desc"}
	default:
		return []string{"created_at_unix:desc"}
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
