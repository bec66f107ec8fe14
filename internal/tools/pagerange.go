package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// PageRange is a 1-based inclusive page interval. A single page N is the
// interval N-N.
type PageRange struct {
	Start int
	End   int
}

// Single returns true when the range covers exactly one page.
func (r PageRange) Single() bool {
	return r.Start == r.End
}

// PageCount returns the number of pages covered.
func (r PageRange) PageCount() int {
	return r.End - r.Start + 1
}

// Selection renders the range in pdfcpu page-selection syntax.
func (r PageRange) Selection() string {
	if r.Single() {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// PartName returns the entry name used inside a split ZIP:
// split_page_{N}.pdf for single pages, pages_{start}-{end}.pdf otherwise.
func (r PageRange) PartName() string {
	if r.Single() {
		return fmt.Sprintf("split_page_%d.pdf", r.Start)
	}
	return fmt.Sprintf("pages_%d-%d.pdf", r.Start, r.End)
}

// ParsePageRanges parses a comma list of "N" or "A-B" entries, 1-based,
// ascending within each range. Invalid entries (non-numeric, start < 1,
// end < start) are fatal input errors. Ranges stay in submission order.
func ParsePageRanges(spec string) ([]PageRange, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("page range is required")
	}

	var ranges []PageRange
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty entry in page range %q", spec)
		}

		var r PageRange
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid page range entry %q: %w", part, err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid page range entry %q: %w", part, err)
			}
			r = PageRange{Start: start, End: end}
		} else {
			page, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid page range entry %q: %w", part, err)
			}
			r = PageRange{Start: page, End: page}
		}

		if r.Start < 1 {
			return nil, fmt.Errorf("invalid page range entry %q: pages are 1-based", part)
		}
		if r.End < r.Start {
			return nil, fmt.Errorf("invalid page range entry %q: end before start", part)
		}

		ranges = append(ranges, r)
	}
	return ranges, nil
}

// pageSelection renders a list of 1-based page numbers in pdfcpu
// selection syntax.
func pageSelection(pages []int) []string {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p)
	}
	return sel
}

// validatePages checks that every page number is 1-based positive.
func validatePages(pages []int) error {
	if len(pages) == 0 {
		return fmt.Errorf("at least one page is required")
	}
	for _, p := range pages {
		if p < 1 {
			return fmt.Errorf("invalid page number %d: pages are 1-based", p)
		}
	}
	return nil
}
