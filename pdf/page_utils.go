package pdf

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var whitespace = regexp.MustCompile(`\s`)

// ParsePageSpecifier parses a page specification string and returns sorted, distinct 1-based page numbers.
// Supports formats: "1", "1,3", "1-5", "1,3-5,7"
func ParsePageSpecifier(pages string) ([]int, error) {
	pages = whitespace.ReplaceAllString(pages, "")
	if pages == "" {
		return nil, inputErrorf("empty page specification")
	}

	var pageList []int
	for _, part := range strings.Split(pages, ",") {
		if strings.Contains(part, "-") {
			// Range like "1-5"
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, inputErrorf("invalid range: %s", part)
			}

			start, err := strconv.Atoi(rangeParts[0])
			if err != nil {
				return nil, inputErrorf("invalid start page: %s", rangeParts[0])
			}

			end, err := strconv.Atoi(rangeParts[1])
			if err != nil {
				return nil, inputErrorf("invalid end page: %s", rangeParts[1])
			}

			if start > end {
				return nil, inputErrorf("invalid range: start > end (%d > %d)", start, end)
			}

			for i := start; i <= end; i++ {
				pageList = append(pageList, i)
			}
			continue
		}

		pageNum, err := strconv.Atoi(part)
		if err != nil {
			return nil, inputErrorf("invalid page number: %s", part)
		}
		pageList = append(pageList, pageNum)
	}

	// Sort and remove duplicates
	sort.Ints(pageList)
	deduped := []int{}
	for i, page := range pageList {
		if i == 0 || page != pageList[i-1] {
			deduped = append(deduped, page)
		}
	}
	return deduped, nil
}

// ValidatePageNumbers checks if all page numbers are valid for a given total number of pages
func ValidatePageNumbers(pages []int, totalPages int) error {
	for _, page := range pages {
		if page < 1 {
			return inputErrorf("page numbers must be positive, got %d", page)
		}
		if page > totalPages {
			return inputErrorf("page %d exceeds total pages (%d)", page, totalPages)
		}
	}
	return nil
}
