package core

import (
	"net/url"
	"strconv"
)

// Pagination holds sanitized page-number pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// Clean clamps the parameters to sane values: page >= 1 and
// 1 <= pageSize <= maxSize (defaultSize when not provided).
func (p Pagination) Clean(defaultSize, maxSize int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) Limit() int {
	return p.PageSize
}

// TotalPages returns the number of pages needed for count items.
// An empty result set still counts as one page.
func (p Pagination) TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + p.PageSize - 1) / p.PageSize
}

// Page is the envelope wrapped around every paginated list response.
type Page struct {
	Count      int         `json:"count"`
	TotalPages int         `json:"total_pages"`
	Next       *string     `json:"next"`
	Previous   *string     `json:"previous"`
	Results    interface{} `json:"results"`
}

// NewPage assembles the envelope; next/previous are absolute URLs derived
// from reqURL with the "page" query param swapped, or null at the edges.
func NewPage(results interface{}, count int, p Pagination, reqURL *url.URL) Page {
	totalPages := p.TotalPages(count)
	page := Page{
		Count:      count,
		TotalPages: totalPages,
		Results:    results,
	}
	if p.Page < totalPages {
		page.Next = pageLink(reqURL, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageLink(reqURL, p.Page-1)
	}
	return page
}

func pageLink(reqURL *url.URL, page int) *string {
	u := *reqURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
