// Package pagination implements the offset paginator shape shared by the
// list endpoints (products, categories, users). The field names mirror the
// storefront client's expectations, so they must stay as-is.
package pagination

import (
	"fmt"
	"strings"
)

// Paginator describes one page of a larger result set.
type Paginator struct {
	Count        int    `json:"count" example:"15"`
	CurrentPage  int    `json:"current_page" example:"1"`
	FirstItem    int    `json:"firstItem" example:"1"`
	LastItem     int    `json:"lastItem" example:"15"`
	LastPage     int    `json:"last_page" example:"4"`
	PerPage      int    `json:"per_page" example:"15"`
	Total        int    `json:"total" example:"53"`
	FirstPageURL string `json:"first_page_url"`
	LastPageURL  string `json:"last_page_url"`
	NextPageURL  string `json:"next_page_url"`
	PrevPageURL  string `json:"prev_page_url"`
}

// Paginate computes paginator metadata for a page that contains `count` items
// out of `total`, given the 1-based `page` and page size `limit`. `url` is the
// base list URL used to derive the navigation links.
func Paginate(total, page, limit, count int, url string) Paginator {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	lastPage := (total + limit - 1) / limit
	if lastPage < 1 {
		lastPage = 1
	}

	firstItem := 0
	lastItem := 0
	if count > 0 {
		firstItem = (page-1)*limit + 1
		lastItem = firstItem + count - 1
	}

	p := Paginator{
		Count:        count,
		CurrentPage:  page,
		FirstItem:    firstItem,
		LastItem:     lastItem,
		LastPage:     lastPage,
		PerPage:      limit,
		Total:        total,
		FirstPageURL: pageURL(url, 1),
		LastPageURL:  pageURL(url, lastPage),
	}
	if page < lastPage {
		p.NextPageURL = pageURL(url, page+1)
	}
	if page > 1 {
		p.PrevPageURL = pageURL(url, page-1)
	}
	return p
}

func pageURL(base string, page int) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", base, sep, page)
}
