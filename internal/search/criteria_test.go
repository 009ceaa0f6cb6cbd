package search_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"realestate-hub/internal/database"
	"realestate-hub/internal/database/dbtest"
	"realestate-hub/internal/models"
	"realestate-hub/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed inserts properties with distinct, increasing creation times
func seed(t *testing.T, db *database.GormDB, agentID string, props ...models.Property) []*models.Property {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*models.Property, 0, len(props))
	for i, p := range props {
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		out = append(out, dbtest.Property(t, db, agentID, p))
	}
	return out
}

func titles(page *database.PropertyPage) []string {
	out := make([]string, 0, len(page.Properties))
	for _, p := range page.Properties {
		out = append(out, p.Title)
	}
	return out
}

func list(t *testing.T, db *database.GormDB, query string) *database.PropertyPage {
	t.Helper()
	v, err := url.ParseQuery(query)
	require.NoError(t, err)
	page, err := db.ListProperties(context.Background(), search.ParseCriteria(v))
	require.NoError(t, err)
	return page
}

func TestCriteria_NoFiltersNewestFirst(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID,
		models.Property{Title: "primera"},
		models.Property{Title: "segunda"},
		models.Property{Title: "tercera"},
	)

	page := list(t, db, "")
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, []string{"tercera", "segunda", "primera"}, titles(page))

	page = list(t, db, "sort=oldest")
	assert.Equal(t, []string{"primera", "segunda", "tercera"}, titles(page))
}

func TestCriteria_MinAboveMaxIsEmpty(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID, models.Property{Title: "casa", Price: 5000})

	page := list(t, db, "min_price=9000&max_price=1000")
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Properties)
}

func TestCriteria_HouseForSaleInRange(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID,
		models.Property{Title: "Casa en Colonia del Valle", Type: models.PropertyTypeHouse, Status: models.PropertyStatusForSale, Price: 8500000},
		models.Property{Title: "Departamento", Type: models.PropertyTypeApartment, Status: models.PropertyStatusForSale, Price: 9000000},
	)

	page := list(t, db, "type=house&status=for_sale&min_price=5000000&max_price=10000000")
	assert.Equal(t, []string{"Casa en Colonia del Valle"}, titles(page))
}

func TestCriteria_FreeTextCaseInsensitive(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID,
		models.Property{Title: "Departamento de lujo", Address: "Av. Presidente Masaryk, Polanco, CDMX"},
		models.Property{Title: "Local comercial", Address: "Av. Tamaulipas, Condesa, CDMX"},
	)

	page := list(t, db, "q=polanco")
	assert.Equal(t, []string{"Departamento de lujo"}, titles(page))

	page = list(t, db, "location=CONDESA")
	assert.Equal(t, []string{"Local comercial"}, titles(page))
}

func TestCriteria_WildcardsAreLiteral(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID,
		models.Property{Title: "100% nueva"},
		models.Property{Title: "Casa amplia"},
	)

	page := list(t, db, "q="+url.QueryEscape("100%"))
	assert.Equal(t, []string{"100% nueva"}, titles(page))

	page = list(t, db, "q=_")
	assert.Empty(t, page.Properties)
}

func TestCriteria_UnknownValuesIgnored(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID, models.Property{Title: "a"}, models.Property{Title: "b"})

	page := list(t, db, "type=castle&status=&min_price=abc&bedrooms=many&sort=random")
	assert.Equal(t, int64(2), page.Total)

	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity", "1e400"} {
		page = list(t, db, "min_price="+url.QueryEscape(raw)+"&max_price="+url.QueryEscape(raw)+
			"&bedrooms="+url.QueryEscape(raw)+"&bathrooms="+url.QueryEscape(raw+"+"))
		assert.Equal(t, int64(2), page.Total, raw)
	}
}

func TestCriteria_BedroomsExactAndAtLeast(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID,
		models.Property{Title: "dos", Bedrooms: dbtest.IntPtr(2)},
		models.Property{Title: "tres", Bedrooms: dbtest.IntPtr(3)},
		models.Property{Title: "cuatro", Bedrooms: dbtest.IntPtr(4)},
		models.Property{Title: "terreno"},
	)

	assert.Equal(t, []string{"tres"}, titles(list(t, db, "bedrooms=3")))
	assert.Equal(t, []string{"cuatro", "tres"}, titles(list(t, db, "bedrooms="+url.QueryEscape("3+"))))
	// an unescaped plus decodes to a space
	assert.Equal(t, []string{"cuatro", "tres"}, titles(list(t, db, "bedrooms=3+")))
}

func TestCriteria_PriceSortAndPaging(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	seed(t, db, agent.ID,
		models.Property{Title: "media", Price: 200},
		models.Property{Title: "barata", Price: 100},
		models.Property{Title: "cara", Price: 300},
	)

	assert.Equal(t, []string{"barata", "media", "cara"}, titles(list(t, db, "sort=price_asc")))

	page := list(t, db, "sort=price_desc&limit=1&offset=1")
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, []string{"media"}, titles(page))
}

func TestCriteria_ExcludesDeleted(t *testing.T) {
	db := dbtest.New(t)
	agent := dbtest.Agent(t, db, "agente@example.com")
	props := seed(t, db, agent.ID, models.Property{Title: "viva"}, models.Property{Title: "borrada"})
	require.NoError(t, db.DeleteProperty(context.Background(), props[1].ID))

	assert.Equal(t, []string{"viva"}, titles(list(t, db, "")))
}

func TestParseCriteria(t *testing.T) {
	v := url.Values{}
	v.Set("type", "HOUSE")
	v.Set("bathrooms", "2+")
	v.Set("limit", "500")

	c := search.ParseCriteria(v)
	assert.Equal(t, models.PropertyTypeHouse, c.Type)
	require.NotNil(t, c.Bathrooms)
	assert.True(t, c.Bathrooms.AtLeast)
	assert.Equal(t, 2.0, c.Bathrooms.Value)
	assert.Equal(t, search.SortNewest, c.Sort)
	assert.Equal(t, search.MaxLimit, c.PageLimit())
	assert.Nil(t, c.MinPrice)

	q, err := url.ParseQuery("bedrooms=3+&bathrooms=+&min_price=NaN&max_price=Inf")
	require.NoError(t, err)
	c = search.ParseCriteria(q)
	require.NotNil(t, c.Bedrooms)
	assert.True(t, c.Bedrooms.AtLeast)
	assert.Equal(t, 3.0, c.Bedrooms.Value)
	assert.Nil(t, c.Bathrooms)
	assert.Nil(t, c.MinPrice)
	assert.Nil(t, c.MaxPrice)
	assert.NotContains(t, c.MeiliFilter(), "NaN")
	assert.NotContains(t, c.MeiliFilter(), "Inf")
}

func TestMeiliFilter(t *testing.T) {
	minPrice, maxPrice := 5000000.0, 10000000.0
	c := search.Criteria{
		Type:     models.PropertyTypeHouse,
		Status:   models.PropertyStatusForSale,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Bedrooms: &search.CountFilter{Value: 3, AtLeast: true},
		Sort:     search.SortPriceAsc,
	}

	assert.Equal(t,
		`type = "house" AND status = "for_sale" AND price >= 5000000 AND price <= 10000000 AND bedrooms >= 3`,
		c.MeiliFilter())
	assert.Equal(t, []string{"price:asc"}, c.MeiliSort())
	assert.Empty(t, search.Criteria{}.MeiliFilter())
	assert.Equal(t, []string{"created_at_unix:desc"}, search.Criteria{}.MeiliSort())

	c.MinPrice, c.MaxPrice = &maxPrice, &minPrice
	assert.True(t, c.Impossible())
	assert.NotEmpty(t, c.MeiliFilter())
}
