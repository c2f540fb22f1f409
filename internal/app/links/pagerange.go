package links

import (
	"fmt"
	"strconv"
	"strings"
)

// PageRange is the client-supplied pagination window: a 0-based,
// inclusive [start,end] descriptor.
type PageRange struct {
	Start int64
	End   int64
}

// Offset returns the window start as a store offset.
func (r PageRange) Offset() int64 { return r.Start }

// Limit returns the window size.
func (r PageRange) Limit() int64 { return r.End - r.Start + 1 }

// ParsePageRange parses a "[start,end]" descriptor. Surrounding
// whitespace inside the brackets is tolerated. Errors are checked in a
// fixed order: format, then negativity, then ordering. Each has its
// own user-visible message.
func ParsePageRange(raw string) (PageRange, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return PageRange{}, &ValidationError{Detail: "range must be of the form [start,end]"}
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return PageRange{}, &ValidationError{Detail: "range must be of the form [start,end]"}
	}
	start, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return PageRange{}, &ValidationError{Detail: "range must be of the form [start,end]"}
	}
	end, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return PageRange{}, &ValidationError{Detail: "range must be of the form [start,end]"}
	}
	if start < 0 || end < 0 {
		return PageRange{}, &ValidationError{Detail: "range values must be non-negative"}
	}
	if start > end {
		return PageRange{}, &ValidationError{Detail: "range start cannot be greater than end"}
	}
	return PageRange{Start: start, End: end}, nil
}

// Page is one fetched window plus what is needed to report the
// Content-Range header: the 0-based start that was requested and the
// total row count regardless of the window.
type Page struct {
	Items []Link
	Start int64
	Total int64
}

// ContentRange renders the window in Content-Range form, 1-based and
// inclusive: "1-10/15" for a populated window, "*/15" for an empty
// one.
func (p Page) ContentRange() string {
	if len(p.Items) == 0 {
		return fmt.Sprintf("*/%d", p.Total)
	}
	return fmt.Sprintf("%d-%d/%d", p.Start+1, p.Start+int64(len(p.Items)), p.Total)
}
