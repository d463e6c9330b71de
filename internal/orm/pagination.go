package orm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the first page; pages are 1-based
	DefaultPage = 1
	// DefaultPageSize applies when neither the caller nor the store configures one
	DefaultPageSize = 20
	// PageSizeAllLiteral requests every matching row as one page
	PageSizeAllLiteral = "all"
)

// PageSize is either a positive row count or "all". The zero value means "not set".
type PageSize struct {
	n   uint64
	all bool
}

// PageSizeOf returns a fixed page size
func PageSizeOf(n uint64) PageSize {
	return PageSize{n: n}
}

// PageSizeAll returns the "all" page size
func PageSizeAll() PageSize {
	return PageSize{all: true}
}

// ParsePageSize accepts a positive integer or the literal "all"
func ParsePageSize(raw string) (PageSize, error) {
	raw = strings.TrimSpace(raw)
	if raw == PageSizeAllLiteral {
		return PageSizeAll(), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return PageSize{}, ValidationError("page_size", "must be a positive integer or %q, got %q", PageSizeAllLiteral, raw)
	}
	if n < 1 {
		return PageSize{}, ValidationError("page_size", "must be a positive integer, got %d", n)
	}
	return PageSize{n: uint64(n)}, nil
}

// IsAll reports whether every row is requested
func (p PageSize) IsAll() bool { return p.all }

// IsZero reports whether the page size was left unset
func (p PageSize) IsZero() bool { return !p.all && p.n == 0 }

// Size returns the row count of a fixed page size
func (p PageSize) Size() uint64 { return p.n }

func (p PageSize) String() string {
	if p.all {
		return PageSizeAllLiteral
	}
	return strconv.FormatUint(p.n, 10)
}

// MarshalJSON renders a number, or the string "all"
func (p PageSize) MarshalJSON() ([]byte, error) {
	if p.all {
		return json.Marshal(PageSizeAllLiteral)
	}
	return json.Marshal(p.n)
}

// UnmarshalJSON accepts a number, a numeric string or "all"
func (p *PageSize) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		parsed, err := ParsePageSize(n.String())
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("page_size: %w", err)
	}
	parsed, err := ParsePageSize(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// QueryOptions carries the window, ordering and filters of a list request
type QueryOptions struct {
	Page     int
	PageSize PageSize
	Ordering string
	Filters  map[string]interface{}
}

// Defaults fills unset QueryOptions values
type Defaults struct {
	PageSize PageSize
	Ordering string
}

// SearchMetadata describes the page that was returned
type SearchMetadata struct {
	Page       int      `json:"page"`
	PageSize   PageSize `json:"page_size"`
	Ordering   string   `json:"ordering"`
	TotalCount int64    `json:"total_count"`
	Pages      int64    `json:"pages"`
}

// PageResult is one page of records plus its metadata
type PageResult[T any] struct {
	Founds        []T            `json:"founds"`
	SearchOptions SearchMetadata `json:"search_options"`
}

// PageCount returns how many pages hold total rows: 0 for no rows, 1 for
// "all" or a page size covering every row, ceil(total/size) otherwise.
func PageCount(total int64, size PageSize) int64 {
	if total < 1 {
		return 0
	}
	if size.IsAll() || size.n >= uint64(total) {
		return 1
	}
	n := int64(size.n)
	return (total + n - 1) / n
}

// normalize applies defaults and validates the window. The caller's options are not modified.
func (o QueryOptions) normalize(d Defaults) (QueryOptions, error) {
	out := o

	if out.Page == 0 {
		out.Page = DefaultPage
	}
	if out.Page < 1 {
		return out, ValidationError("page", "must be at least 1, got %d", o.Page)
	}

	if out.PageSize.IsZero() {
		out.PageSize = d.PageSize
	}
	if out.PageSize.IsZero() {
		out.PageSize = PageSizeOf(DefaultPageSize)
	}

	if strings.TrimSpace(out.Ordering) == "" {
		out.Ordering = d.Ordering
	}

	return out, nil
}

// window returns the offset and limit of a fixed page size over total rows.
// ok is false when the page lies past the last page.
func (o QueryOptions) window(total int64) (offset, limit uint64, ok bool) {
	limit = o.PageSize.Size()
	if int64(o.Page-1) >= PageCount(total, o.PageSize) {
		return 0, limit, false
	}
	offset = uint64(o.Page-1) * limit
	return offset, limit, true
}
