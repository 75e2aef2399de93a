package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"casetracker/core"
)

// ParsePageRequest extracts page, size and sort parameters from the query.
// page is zero-based; invalid values fall back to the defaults and size is
// capped at maxSize.
func ParsePageRequest(r *http.Request, defaultSize, maxSize int) core.PageRequest {
	query := r.URL.Query()
	req := core.PageRequest{Page: 0, Size: defaultSize}

	if p := query.Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed >= 0 {
			req.Page = parsed
		}
	}

	if s := query.Get("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			req.Size = parsed
		}
	}
	if req.Size > maxSize {
		req.Size = maxSize
	}

	for _, raw := range query["sort"] {
		req.Sort = append(req.Sort, parseSortParam(raw)...)
	}

	return req
}

// parseSortParam parses "prop[,prop...][,asc|desc]"
func parseSortParam(raw string) []core.SortOrder {
	parts := strings.Split(raw, ",")
	direction := core.SortAsc
	if last := strings.TrimSpace(parts[len(parts)-1]); strings.EqualFold(last, "asc") || strings.EqualFold(last, "desc") {
		direction = core.ParseSortDirection(last)
		parts = parts[:len(parts)-1]
	}

	orders := make([]core.SortOrder, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		orders = append(orders, core.SortOrder{Property: p, Direction: direction})
	}
	return orders
}

// writePaginationHeaders sets X-Total-Count and an RFC 5988 Link header with
// first, prev, next and last relations.
func writePaginationHeaders[T any](w http.ResponseWriter, r *http.Request, page *core.Page[T]) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.Total, 10))

	links := make([]string, 0, 4)
	if page.HasNext() {
		links = append(links, pageLink(r.URL, page.Page+1, page.Size, "next"))
	}
	if page.HasPrevious() {
		links = append(links, pageLink(r.URL, page.Page-1, page.Size, "prev"))
	}
	links = append(links,
		pageLink(r.URL, page.TotalPages()-1, page.Size, "last"),
		pageLink(r.URL, 0, page.Size, "first"),
	)
	w.Header().Set("Link", strings.Join(links, ","))
}

func pageLink(base *url.URL, page, size int, rel string) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return fmt.Sprintf("<%s>; rel=\"%s\"", u.RequestURI(), rel)
}
