package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	t.Parallel()

	p := Paginate(53, 2, 15, 15, "/products")

	assert.Equal(t, 15, p.Count)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 16, p.FirstItem)
	assert.Equal(t, 30, p.LastItem)
	assert.Equal(t, 4, p.LastPage)
	assert.Equal(t, 15, p.PerPage)
	assert.Equal(t, 53, p.Total)
	assert.Equal(t, "/products?page=1", p.FirstPageURL)
	assert.Equal(t, "/products?page=4", p.LastPageURL)
	assert.Equal(t, "/products?page=3", p.NextPageURL)
	assert.Equal(t, "/products?page=1", p.PrevPageURL)
}

func TestPaginate_Edges(t *testing.T) {
	t.Parallel()

	t.Run("first page has no prev link", func(t *testing.T) {
		t.Parallel()
		p := Paginate(30, 1, 15, 15, "/products")
		assert.Empty(t, p.PrevPageURL)
		assert.Equal(t, "/products?page=2", p.NextPageURL)
		assert.Equal(t, 1, p.FirstItem)
	})

	t.Run("last page has no next link", func(t *testing.T) {
		t.Parallel()
		p := Paginate(30, 2, 15, 15, "/products")
		assert.Empty(t, p.NextPageURL)
	})

	t.Run("empty result set", func(t *testing.T) {
		t.Parallel()
		p := Paginate(0, 1, 15, 0, "/products")
		assert.Equal(t, 0, p.FirstItem)
		assert.Equal(t, 0, p.LastItem)
		assert.Equal(t, 1, p.LastPage)
	})

	t.Run("base url with existing query keeps it", func(t *testing.T) {
		t.Parallel()
		p := Paginate(10, 1, 5, 5, "/products?status:publish")
		assert.Equal(t, "/products?status:publish&page=1", p.FirstPageURL)
	})

	t.Run("non-positive page and limit are normalized", func(t *testing.T) {
		t.Parallel()
		p := Paginate(10, 0, 0, 1, "/products")
		assert.Equal(t, 1, p.CurrentPage)
		assert.Equal(t, 1, p.PerPage)
	})
}

func TestParseSearch(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		map[string]string{"status": "publish", "name": "shirt"},
		ParseSearch("status:publish;name:shirt"))

	assert.Equal(t,
		map[string]string{"name": "a:b"},
		ParseSearch("name:a:b"),
		"only the first colon separates key and value")

	assert.Empty(t, ParseSearch(""))
	assert.Empty(t, ParseSearch("no-colon-here"))
	assert.Equal(t, map[string]string{"shop_id": "3"}, ParseSearch(" shop_id : 3 ;"))
}

func TestPageParams(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/products?page=3&limit=25", nil)
	page, limit := PageParams(r, 15)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	r = httptest.NewRequest("GET", "/products", nil)
	page, limit = PageParams(r, 15)
	assert.Equal(t, 1, page)
	assert.Equal(t, 15, limit)

	r = httptest.NewRequest("GET", "/products?page=-2&limit=zero", nil)
	page, limit = PageParams(r, 15)
	assert.Equal(t, 1, page)
	assert.Equal(t, 15, limit)
}
