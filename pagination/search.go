package pagination

import (
	"net/http"
	"strconv"
	"strings"
)

// ParseSearch parses the storefront's `search` query parameter, a
// semicolon-separated list of `key:value` pairs ("status:publish;name:shirt").
// Pairs without a colon or with an empty key are skipped.
func ParseSearch(raw string) map[string]string {
	filters := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(pair, ":")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		filters[key] = strings.TrimSpace(value)
	}
	return filters
}

// PageParams reads the `page` and `limit` query parameters, falling back to
// page 1 and the given default page size. Non-positive or unparseable values
// fall back too.
func PageParams(r *http.Request, defaultLimit int) (page, limit int) {
	page = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return page, limit
}
