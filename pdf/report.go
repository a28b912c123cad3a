package pdf

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// PageRef selects images of one source page. Page and Images are 1-based, as supplied.
type PageRef struct {
	Page   int
	Images []int
}

// Piece is one report section.
type Piece struct {
	Name        string
	Description string
	Pages       []PageRef
}

// ReportSpec is the ordered report description. Piece, page and image order are preserved.
type ReportSpec struct {
	Pieces []Piece
}

// ParseReportSpec parses a JSON object of the form
//
//	{"<piece>": {"description": "...", "pages": {"<page>": [<index>, ...]}}}
//
// keeping the declared key order. A missing description or pages entry is treated as empty.
func ParseReportSpec(data []byte) (*ReportSpec, error) {
	if !gjson.ValidBytes(data) {
		return nil, inputErrorf("report description is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, inputErrorf("report description must be an object of pieces")
	}

	spec := &ReportSpec{}
	var perr error
	root.ForEach(func(key, value gjson.Result) bool {
		piece, err := parsePiece(key.String(), value)
		if err != nil {
			perr = err
			return false
		}
		spec.Pieces = append(spec.Pieces, piece)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	if len(spec.Pieces) == 0 {
		return nil, inputErrorf("report description has no pieces")
	}
	return spec, nil
}

func parsePiece(name string, value gjson.Result) (Piece, error) {
	piece := Piece{Name: name}
	if !value.IsObject() {
		return piece, inputErrorf("piece %q must be an object", name)
	}

	switch desc := fieldOf(value, "description"); desc.Type {
	case gjson.String:
		piece.Description = desc.String()
	case gjson.Null:
	default:
		return piece, inputErrorf("piece %q: description must be a string", name)
	}

	pages := fieldOf(value, "pages")
	if !pages.Exists() || pages.Type == gjson.Null {
		return piece, nil
	}
	if !pages.IsObject() {
		return piece, inputErrorf("piece %q: pages must be an object of page number to image indices", name)
	}

	var perr error
	pages.ForEach(func(k, v gjson.Result) bool {
		ref, err := parsePageRef(name, k.String(), v)
		if err != nil {
			perr = err
			return false
		}
		piece.Pages = append(piece.Pages, ref)
		return true
	})
	return piece, perr
}

// fieldOf looks key up literally, so keys containing path syntax characters are safe.
func fieldOf(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}

func parsePageRef(piece, key string, value gjson.Result) (PageRef, error) {
	page, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return PageRef{}, inputErrorf("piece %q: page %q is not an integer", piece, key)
	}
	if !value.IsArray() {
		return PageRef{}, inputErrorf("piece %q: page %d must list image indices", piece, page)
	}
	ref := PageRef{Page: page}
	for _, v := range value.Array() {
		f := v.Float()
		if v.Type != gjson.Number || f != math.Trunc(f) {
			return PageRef{}, inputErrorf("piece %q: page %d: image index %s is not an integer", piece, page, v.Raw)
		}
		ref.Images = append(ref.Images, int(v.Int()))
	}
	return ref, nil
}

// ReferencedPages returns the distinct 0-based pages referenced by any piece, ascending. It is never nil.
func (s *ReportSpec) ReferencedPages() []int {
	seen := map[int]bool{}
	pages := []int{}
	for _, piece := range s.Pieces {
		for _, ref := range piece.Pages {
			p := ref.Page - 1
			if p < 0 || seen[p] {
				continue
			}
			seen[p] = true
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

// DisplayName upper-cases the first letter of name and lower-cases the rest ("pieceA" -> "Piecea").
func DisplayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(name[size:])
}
